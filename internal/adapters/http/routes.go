package web

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// defaultPerfWindow is how far back /admin/perf looks when no since is given.
const defaultPerfWindow = time.Hour

// registerRoutes mounts every page and form endpoint on router.
func registerRoutes(router *mux.Router) {
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServerFS(staticFiles())))

	router.HandleFunc("/", handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)
	router.HandleFunc(signupPath, handleSignup).Methods(http.MethodGet, http.MethodPost)

	apps := router.PathPrefix(applicationsPath).Subrouter()
	apps.HandleFunc("", handleApplicationsPage).Methods(http.MethodGet)
	apps.HandleFunc("/view", handleApplicationsView).Methods(http.MethodPost)
	apps.HandleFunc("/inspector/close", handleApplicationInspectorClose).Methods(http.MethodPost)
	apps.HandleFunc("/bulk/approve", handleBulkApprove).Methods(http.MethodPost)
	apps.HandleFunc("/bulk/reject", handleBulkReject).Methods(http.MethodGet, http.MethodPost)
	apps.HandleFunc("/{id}", handleApplicationDetail).Methods(http.MethodGet)
	apps.HandleFunc("/{id}/approve", handleApproveApplication).Methods(http.MethodPost)
	apps.HandleFunc("/{id}/reject", handleRejectApplication).Methods(http.MethodGet, http.MethodPost)

	vols := router.PathPrefix(volunteersPath).Subrouter()
	vols.HandleFunc("", handleVolunteersPage).Methods(http.MethodGet)
	vols.HandleFunc("/view", handleVolunteersView).Methods(http.MethodPost)
	vols.HandleFunc("/inspector/close", handleVolunteerInspectorClose).Methods(http.MethodPost)
	vols.HandleFunc("/email", handleVolunteerEmail).Methods(http.MethodPost)
	vols.HandleFunc("/{id}", handleVolunteerDetail).Methods(http.MethodGet)

	router.HandleFunc("/admin/perf", handlePerf).Methods(http.MethodGet)
}

// handleRoot handles GET /
func handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, signupPath, http.StatusFound)
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePerf handles GET /admin/perf?since=15m
func handlePerf(w http.ResponseWriter, r *http.Request) {
	if perfCollector == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "performance collection is disabled"})
		return
	}
	window := defaultPerfWindow
	if s := r.URL.Query().Get("since"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			http.Error(w, "since must be a positive duration such as 15m", http.StatusBadRequest)
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), 10))
}
