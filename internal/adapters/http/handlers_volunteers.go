package web

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"volunteerdesk/internal/application/orchestrators"
	"volunteerdesk/internal/application/projections"
)

const volunteersPath = "/admin/volunteers"

var volunteersQuery = projections.VolunteerListQuery{
	EmptyText: "No volunteers found",
	LoadError: "Could not load volunteers. Try again later.",
}

// handleVolunteersPage handles GET /admin/volunteers
func handleVolunteersPage(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r)
	ensureLoaded(r.Context(), ws.Volunteers, r.URL.Query().Get("reload") == "1")
	renderVolunteers(w, r, ws)
}

func renderVolunteers(w http.ResponseWriter, r *http.Request, ws *Workspace) {
	result := projections.QueryVolunteerList(ws.Volunteers.Snapshot(), volunteersQuery, remote)
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, result)
		return
	}

	var detail *projections.RecordDetail
	if v, open := ws.VolunteerDetail.Current(); open {
		d := projections.BuildRecordDetail(v, remote)
		detail = &d
	}
	renderTemplate(w, r, "volunteers.html", map[string]any{
		"Title":  "Volunteers",
		"Nav":    "volunteers",
		"Base":   volunteersPath,
		"Flash":  ws.TakeFlash(),
		"List":   result,
		"Detail": detail,
		"Draft":  ws.Draft(),
	})
}

// handleVolunteersView handles POST /admin/volunteers/view
func handleVolunteersView(w http.ResponseWriter, r *http.Request) {
	handleListView(w, r, workspaceFor(r).Volunteers, volunteersPath)
}

// handleVolunteerDetail handles GET /admin/volunteers/{id}
func handleVolunteerDetail(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r)
	id := mux.Vars(r)["id"]
	ensureLoaded(r.Context(), ws.Volunteers, false)

	v, ok := ws.Volunteers.Find(id)
	if !ok {
		if !isHTMLRequest(r) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "volunteer not found"})
			return
		}
		ws.SetFlash("error", "That volunteer could not be found.")
		http.Redirect(w, r, volunteersPath, http.StatusSeeOther)
		return
	}

	ws.VolunteerDetail.Open(v)
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, projections.BuildRecordDetail(v, remote))
		return
	}
	renderVolunteers(w, r, ws)
}

// handleVolunteerInspectorClose handles POST /admin/volunteers/inspector/close
func handleVolunteerInspectorClose(w http.ResponseWriter, r *http.Request) {
	workspaceFor(r).VolunteerDetail.Close()
	redirectOrNoContent(w, r, volunteersPath)
}

// handleVolunteerEmail handles POST /admin/volunteers/email
func handleVolunteerEmail(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	draft := EmailDraft{Subject: r.PostFormValue("subject"), Message: r.PostFormValue("message")}
	ws.SetDraft(draft)

	msg, err := orchestrators.ExecuteSendVolunteerEmail(r.Context(), orchestrators.SendVolunteerEmailInput{
		VolunteerIDs: ws.Volunteers.SelectedIDs(),
		Subject:      draft.Subject,
		Message:      draft.Message,
	}, orchestrators.SendVolunteerEmailDeps{Gateway: remote})

	status, kind := http.StatusOK, "success"
	switch {
	case errors.Is(err, orchestrators.ErrNoRecipientsSelected):
		status, kind, msg = http.StatusBadRequest, "error", orchestrators.MsgNoRecipientsSelected
	case err != nil:
		status, kind, msg = http.StatusBadGateway, "error", orchestrators.MsgEmailFailed
	default:
		ws.SetDraft(EmailDraft{})
	}

	if !isHTMLRequest(r) {
		writeJSON(w, status, map[string]string{"message": msg})
		return
	}
	ws.SetFlash(kind, msg)
	http.Redirect(w, r, volunteersPath, http.StatusSeeOther)
}
