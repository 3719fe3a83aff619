// Package devapi is a local stand-in for the volunteer service. It serves the
// same endpoints the front end calls, backed by sqlite and an optional MinIO
// bucket for CV files.
package devapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"volunteerdesk/internal/adapters/email"
	"volunteerdesk/internal/adapters/http/middleware"
	"volunteerdesk/internal/adapters/http/perf"
	"volunteerdesk/internal/adapters/storage/cvfile"
	volunteerstore "volunteerdesk/internal/adapters/storage/volunteer"
	"volunteerdesk/internal/domain/availability"
	"volunteerdesk/internal/domain/volunteer"
)

// DefaultMaxUploadBytes caps a signup body when Deps.MaxUploadBytes is unset.
const DefaultMaxUploadBytes = 10 << 20

// Response messages.
const (
	MsgSignedUp         = "Volunteer signed up!"
	MsgNotFound         = "Application not found."
	MsgCVNotFound       = "CV not found."
	MsgNoRecipients     = "No volunteers selected."
	MsgUnknownVolunteer = "None of the selected volunteers are approved."
	MsgSendFailed       = "Failed to send email."
	MsgInternal         = "Internal server error."
)

// Deps are the stores and services the stand-in needs.
type Deps struct {
	Volunteers     volunteerstore.Store
	CVs            cvfile.Store
	Email          email.Sender
	MaxUploadBytes int64
}

// Handler serves the stand-in endpoints.
type Handler struct {
	volunteers volunteerstore.Store
	cvs        cvfile.Store
	mailer     email.Sender
	maxUpload  int64
	now        func() time.Time
}

// NewHandler creates a Handler.
// PRE: every store in d is non-nil
func NewHandler(d Deps) *Handler {
	maxUpload := d.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Handler{
		volunteers: d.Volunteers,
		cvs:        d.CVs,
		mailer:     d.Email,
		maxUpload:  maxUpload,
		now:        time.Now,
	}
}

// Routes mounts the endpoints on router.
func (h *Handler) Routes(router *mux.Router) {
	router.HandleFunc("/signup", h.handleSignup).Methods(http.MethodPost)
	router.HandleFunc("/applications", h.handleApplications).Methods(http.MethodGet)
	router.HandleFunc("/application/{id}/approve", h.handleDecision(volunteer.StatusApproved)).Methods(http.MethodGet)
	router.HandleFunc("/application/{id}/reject", h.handleDecision(volunteer.StatusRejected)).Methods(http.MethodGet)
	router.HandleFunc("/volunteers", h.handleVolunteers).Methods(http.MethodGet)
	router.HandleFunc("/send-email", h.handleSendEmail).Methods(http.MethodPost)
	router.HandleFunc("/cv/{id}", h.handleCV).Methods(http.MethodGet)
}

// NewRouter returns the full stand-in handler with request timing.
func NewRouter(h *Handler, collector *perf.Collector, slow time.Duration) http.Handler {
	router := mux.NewRouter()
	h.Routes(router)
	return middleware.Chain(router, middleware.Timing(collector, slow))
}

// record is the canonical volunteer record on the wire.
type record struct {
	ID             string           `json:"_id"`
	Name           string           `json:"name"`
	DescParagraph  string           `json:"desc_paragraph"`
	Email          string           `json:"email"`
	PhoneNumber    string           `json:"phone_number"`
	CV             *string          `json:"cv"`
	Role           string           `json:"volunteering_role"`
	Availabilities availability.Set `json:"availabilities"`
	Status         string           `json:"status"`
}

func toRecord(a volunteer.Application) record {
	r := record{
		ID:             a.ID,
		Name:           a.Name,
		DescParagraph:  a.Description,
		Email:          a.Email,
		PhoneNumber:    a.Phone,
		Role:           string(a.Role),
		Availabilities: a.Availabilities,
		Status:         a.Status,
	}
	if a.CVRef != "" {
		cv := a.CVRef
		r.CV = &cv
	}
	return r
}

func toRecords(apps []volunteer.Application) []record {
	out := make([]record, 0, len(apps))
	for _, a := range apps {
		out = append(out, toRecord(a))
	}
	return out
}

type result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err)
	}
}

func writeResult(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, result{Success: status < 400, Message: msg})
}

func internalError(w http.ResponseWriter, op string, err error) {
	slog.Error("devapi_internal_error", "op", op, "error", err)
	writeResult(w, http.StatusInternalServerError, MsgInternal)
}

// handleSignup handles POST /signup
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeResult(w, http.StatusRequestEntityTooLarge, "Upload is too large.")
			return
		}
		writeResult(w, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	app, err := h.applicationFromForm(r)
	if err != nil {
		writeResult(w, http.StatusBadRequest, err.Error())
		return
	}

	cvID, err := h.storeCV(r)
	if err != nil {
		internalError(w, "store_cv", err)
		return
	}
	app.CVRef = cvID

	if err := h.volunteers.Create(r.Context(), app, h.now()); err != nil {
		internalError(w, "create_volunteer", err)
		return
	}
	slog.Info("devapi_signup", "id", app.ID, "role", app.Role, "has_cv", app.HasCV())
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"message":   MsgSignedUp,
		"volunteer": toRecord(app),
	})
}

// applicationFromForm builds a pending application from the submitted fields.
// POST: Returns an error whose text is safe to show to the caller
func (h *Handler) applicationFromForm(r *http.Request) (volunteer.Application, error) {
	name := strings.TrimSpace(r.FormValue("name"))
	addr := strings.TrimSpace(r.FormValue("email"))
	if name == "" || addr == "" {
		return volunteer.Application{}, errors.New("name and email are required")
	}

	role, err := volunteer.ParseRole(r.FormValue("volunteering_role"))
	if err != nil || role == "" {
		names := make([]string, len(volunteer.Roles))
		for i, known := range volunteer.Roles {
			names[i] = string(known)
		}
		return volunteer.Application{}, fmt.Errorf("volunteering_role must be one of %s", strings.Join(names, ", "))
	}

	dates, err := parseAvailabilities(r.FormValue("availabilities"))
	if err != nil {
		return volunteer.Application{}, errors.New("availabilities must be a JSON array of YYYY-MM-DD dates")
	}

	return volunteer.Application{
		Volunteer: volunteer.Volunteer{
			ID:             uuid.New().String(),
			Name:           name,
			Email:          addr,
			Phone:          strings.TrimSpace(r.FormValue("phone_number")),
			Role:           role,
			Description:    r.FormValue("desc_paragraph"),
			Availabilities: dates,
		},
		Status: volunteer.StatusPending,
	}, nil
}

// parseAvailabilities reads the JSON-encoded date list of the form field.
func parseAvailabilities(raw string) (availability.Set, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return availability.Set{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return availability.Set{}, err
	}
	return availability.ParseSet(values)
}

// storeCV saves the uploaded cv part, if any.
// POST: Returns "" when no file was uploaded
func (h *Handler) storeCV(r *http.Request) (string, error) {
	file, hdr, err := r.FormFile("cv")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read cv: %w", err)
	}
	return h.cvs.Put(r.Context(), cvfile.File{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	})
}

// handleApplications handles GET /applications
func (h *Handler) handleApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := h.volunteers.ListByStatus(r.Context(), volunteer.StatusPending)
	if err != nil {
		internalError(w, "list_applications", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": toRecords(apps)})
}

// handleDecision handles GET /application/{id}/approve and /reject
func (h *Handler) handleDecision(status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		err := h.volunteers.Decide(r.Context(), id, status, h.now())
		switch {
		case errors.Is(err, volunteerstore.ErrNotFound):
			writeResult(w, http.StatusNotFound, MsgNotFound)
			return
		case err != nil:
			internalError(w, "decide", err)
			return
		}
		slog.Info("devapi_application_decided", "id", id, "status", status)
		writeResult(w, http.StatusOK, "Application "+status+".")
	}
}

// handleVolunteers handles GET /volunteers
func (h *Handler) handleVolunteers(w http.ResponseWriter, r *http.Request) {
	vols, err := h.volunteers.ListByStatus(r.Context(), volunteer.StatusApproved)
	if err != nil {
		internalError(w, "list_volunteers", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "volunteers": toRecords(vols)})
}

type emailRequest struct {
	VolunteerIDs []string `json:"volunteerIds"`
	Subject      string   `json:"subject"`
	Message      string   `json:"message"`
}

// handleSendEmail handles POST /send-email
func (h *Handler) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeResult(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if len(req.VolunteerIDs) == 0 {
		writeResult(w, http.StatusBadRequest, MsgNoRecipients)
		return
	}

	approved, err := h.volunteers.ListByStatus(r.Context(), volunteer.StatusApproved)
	if err != nil {
		internalError(w, "list_volunteers", err)
		return
	}
	recipients := selectRecipients(approved, req.VolunteerIDs)
	if len(recipients) == 0 {
		writeResult(w, http.StatusBadRequest, MsgUnknownVolunteer)
		return
	}

	html, err := email.RenderMarkdown(req.Message)
	if err != nil {
		internalError(w, "render_message", err)
		return
	}
	reqs := make([]email.SendRequest, 0, len(recipients))
	for _, v := range recipients {
		reqs = append(reqs, email.SendRequest{To: []string{v.Email}, Subject: req.Subject, HTML: html})
	}

	results, err := h.mailer.SendBatch(r.Context(), reqs)
	sent := len(results)
	if err != nil {
		slog.Error("devapi_send_email_failed", "error", err, "sent", sent, "requested", len(reqs))
		if sent == 0 {
			writeResult(w, http.StatusBadGateway, MsgSendFailed)
			return
		}
	}
	writeResult(w, http.StatusOK, SentSummary(sent, len(reqs)))
}

// SentSummary is the message reported after a bulk email.
func SentSummary(sent, total int) string {
	if sent == total {
		return fmt.Sprintf("Email sent to %d volunteer(s).", sent)
	}
	return fmt.Sprintf("Email sent to %d of %d volunteer(s).", sent, total)
}

// selectRecipients keeps the approved volunteers named in ids, once each, in ids order.
func selectRecipients(approved []volunteer.Application, ids []string) []volunteer.Application {
	byID := make(map[string]volunteer.Application, len(approved))
	for _, a := range approved {
		byID[a.ID] = a
	}
	seen := make(map[string]bool, len(ids))
	var out []volunteer.Application
	for _, id := range ids {
		a, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, a)
	}
	return out
}

// handleCV handles GET /cv/{id} where id is the volunteer id
func (h *Handler) handleCV(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	app, err := h.volunteers.GetByID(r.Context(), id)
	if errors.Is(err, volunteerstore.ErrNotFound) || (err == nil && !app.HasCV()) {
		writeResult(w, http.StatusNotFound, MsgCVNotFound)
		return
	}
	if err != nil {
		internalError(w, "get_volunteer", err)
		return
	}

	file, err := h.cvs.Get(r.Context(), app.CVRef)
	if errors.Is(err, cvfile.ErrNotFound) {
		writeResult(w, http.StatusNotFound, MsgCVNotFound)
		return
	}
	if err != nil {
		internalError(w, "get_cv", err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.Filename}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
