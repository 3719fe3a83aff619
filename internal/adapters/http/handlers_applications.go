package web

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"volunteerdesk/internal/application/orchestrators"
	"volunteerdesk/internal/application/projections"
)

const applicationsPath = "/admin/applications"

var applicationsQuery = projections.VolunteerListQuery{
	EmptyText: "No pending applications found",
	LoadError: "Could not load applications. Try again later.",
}

// rejectConfirmation is the data of the reject confirmation page.
type rejectConfirmation struct {
	Heading string
	Names   []string
	IDs     []string
	Action  string
	Cancel  string
}

func decideDeps(ws *Workspace) orchestrators.DecideApplicationsDeps {
	return orchestrators.DecideApplicationsDeps{Gateway: remote, List: ws.Applications}
}

// handleApplicationsPage handles GET /admin/applications
func handleApplicationsPage(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r)
	ensureLoaded(r.Context(), ws.Applications, r.URL.Query().Get("reload") == "1")
	renderApplications(w, r, ws)
}

func renderApplications(w http.ResponseWriter, r *http.Request, ws *Workspace) {
	result := projections.QueryVolunteerList(ws.Applications.Snapshot(), applicationsQuery, remote)
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}

	var detail *projections.RecordDetail
	if app, open := ws.ApplicationDetail.Current(); open {
		d := projections.BuildRecordDetail(app.Volunteer, remote)
		detail = &d
	}
	renderTemplate(w, r, "applications.html", map[string]any{
		"Title":  "Pending Applications",
		"Nav":    "applications",
		"Base":   applicationsPath,
		"Flash":  ws.TakeFlash(),
		"List":   result,
		"Detail": detail,
	})
}

// handleApplicationsView handles POST /admin/applications/view
func handleApplicationsView(w http.ResponseWriter, r *http.Request) {
	handleListView(w, r, workspaceFor(r).Applications, applicationsPath)
}

// handleApplicationDetail handles GET /admin/applications/{id}
func handleApplicationDetail(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r)
	id := mux.Vars(r)["id"]
	ensureLoaded(r.Context(), ws.Applications, false)

	app, ok := ws.Applications.Find(id)
	if !ok {
		if !isHTMLRequest(r) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "application not found"})
			return
		}
		ws.SetFlash("error", "That application is no longer pending.")
		http.Redirect(w, r, applicationsPath, http.StatusSeeOther)
		return
	}

	ws.ApplicationDetail.Open(app)
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, projections.BuildRecordDetail(app.Volunteer, remote))
		return
	}
	renderApplications(w, r, ws)
}

// handleApplicationInspectorClose handles POST /admin/applications/inspector/close
func handleApplicationInspectorClose(w http.ResponseWriter, r *http.Request) {
	workspaceFor(r).ApplicationDetail.Close()
	redirectOrNoContent(w, r, applicationsPath)
}

// handleApproveApplication handles POST /admin/applications/{id}/approve
func handleApproveApplication(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r)
	id := mux.Vars(r)["id"]

	outcome, err := orchestrators.ExecuteApproveApplications(r.Context(), orchestrators.ApproveApplicationsInput{IDs: []string{id}}, decideDeps(ws))
	if err != nil {
		internalError(w, err)
		return
	}
	closeApplicationDetail(ws, id)
	respondOutcome(w, r, ws, outcome, "Approved")
}

// handleRejectApplication handles GET and POST /admin/applications/{id}/reject
func handleRejectApplication(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r)
	id := mux.Vars(r)["id"]
	self := applicationsPath + "/" + id + "/reject"

	if r.Method == http.MethodGet {
		renderRejectConfirmation(w, r, ws, []string{id}, "Reject this application?", self)
		return
	}

	outcome, err := orchestrators.ExecuteRejectApplications(r.Context(), orchestrators.RejectApplicationsInput{
		IDs:       []string{id},
		Confirmed: r.PostFormValue("confirm") == "yes",
	}, decideDeps(ws))
	if errors.Is(err, orchestrators.ErrConfirmationRequired) {
		confirmationRequired(w, r, self)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	closeApplicationDetail(ws, id)
	respondOutcome(w, r, ws, outcome, "Rejected")
}

// handleBulkApprove handles POST /admin/applications/bulk/approve
func handleBulkApprove(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r)
	outcome, err := orchestrators.ExecuteApproveApplications(r.Context(), orchestrators.ApproveApplicationsInput{
		IDs: ws.Applications.SelectedIDs(),
	}, decideDeps(ws))
	if errors.Is(err, orchestrators.ErrEmptySelection) {
		emptySelection(w, r, ws)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	closeApplicationDetail(ws, outcome.Succeeded...)
	respondOutcome(w, r, ws, outcome, "Approved")
}

// handleBulkReject handles GET and POST /admin/applications/bulk/reject
func handleBulkReject(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r)
	ids := ws.Applications.SelectedIDs()
	const self = applicationsPath + "/bulk/reject"

	if r.Method == http.MethodGet {
		if len(ids) == 0 {
			emptySelection(w, r, ws)
			return
		}
		renderRejectConfirmation(w, r, ws, ids, "Reject the selected applications?", self)
		return
	}

	confirmed := r.PostFormValue("confirm") == "yes"
	// INVARIANT: only the ids listed on the confirmation page are rejected
	if confirmed && len(ids) > 0 && !sameIDs(r.PostForm["id"], ids) {
		if isHTMLRequest(r) {
			ws.SetFlash("error", "The selection changed. Confirm the rejection again.")
		}
		confirmationRequired(w, r, self)
		return
	}

	outcome, err := orchestrators.ExecuteRejectApplications(r.Context(), orchestrators.RejectApplicationsInput{
		IDs:       ids,
		Confirmed: confirmed,
	}, decideDeps(ws))
	switch {
	case errors.Is(err, orchestrators.ErrEmptySelection):
		emptySelection(w, r, ws)
		return
	case errors.Is(err, orchestrators.ErrConfirmationRequired):
		confirmationRequired(w, r, self)
		return
	case err != nil:
		internalError(w, err)
		return
	}
	closeApplicationDetail(ws, outcome.Succeeded...)
	respondOutcome(w, r, ws, outcome, "Rejected")
}

func renderRejectConfirmation(w http.ResponseWriter, r *http.Request, ws *Workspace, ids []string, heading, action string) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if app, ok := ws.Applications.Find(id); ok {
			names = append(names, app.Name+" <"+app.Email+">")
			continue
		}
		names = append(names, id)
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, map[string]any{"confirm": action, "ids": ids})
		return
	}
	renderTemplate(w, r, "reject_confirm.html", map[string]any{
		"Title": "Confirm rejection",
		"Nav":   "applications",
		"Flash": ws.TakeFlash(),
		"Confirm": rejectConfirmation{
			Heading: heading,
			Names:   names,
			IDs:     ids,
			Action:  action,
			Cancel:  applicationsPath,
		},
	})
}

// sameIDs reports whether got and want hold the same set of ids.
func sameIDs(got, want []string) bool {
	set := make(map[string]bool, len(want))
	for _, id := range want {
		set[id] = true
	}
	seen := make(map[string]bool, len(got))
	for _, id := range got {
		if !set[id] {
			return false
		}
		seen[id] = true
	}
	return len(seen) == len(set)
}

func confirmationRequired(w http.ResponseWriter, r *http.Request, confirmPath string) {
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "rejection must be confirmed with confirm=yes"})
		return
	}
	http.Redirect(w, r, confirmPath, http.StatusSeeOther)
}

func emptySelection(w http.ResponseWriter, r *http.Request, ws *Workspace) {
	const msg = "No applications selected."
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": msg})
		return
	}
	ws.SetFlash("error", msg)
	http.Redirect(w, r, applicationsPath, http.StatusSeeOther)
}

func respondOutcome(w http.ResponseWriter, r *http.Request, ws *Workspace, outcome orchestrators.BulkOutcome, verb string) {
	if !isHTMLRequest(r) {
		status := http.StatusOK
		if len(outcome.Succeeded) == 0 {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, newBulkResponse(outcome, verb))
		return
	}
	ws.SetFlash(outcomeKind(outcome), outcomeMessage(outcome, verb))
	http.Redirect(w, r, applicationsPath, http.StatusSeeOther)
}

// closeApplicationDetail closes the inspector when it shows one of ids.
func closeApplicationDetail(ws *Workspace, ids ...string) {
	current, open := ws.ApplicationDetail.Current()
	if !open {
		return
	}
	for _, id := range ids {
		if current.ID == id {
			ws.ApplicationDetail.Close()
			return
		}
	}
}
