package web

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"volunteerdesk/internal/application/orchestrators"
	"volunteerdesk/internal/application/projections"
	"volunteerdesk/internal/domain/availability"
	"volunteerdesk/internal/domain/signup"
	"volunteerdesk/internal/domain/volunteer"
)

const signupPath = "/signup"

// signupView is the data of the signup page.
type signupView struct {
	Name        string
	Email       string
	Phone       string
	Role        string
	Description string
	Errors      map[string]string
	Calendar    projections.SignupCalendar
	Roles       []volunteer.Role
	Accept      string
	HadCV       bool // a CV was attached before a calendar round trip dropped it
}

func newSignupView(form signup.Form, month availability.Date, errs map[string]string) signupView {
	today := availability.FromTime(timeNow(), displayLocation)
	return signupView{
		Name:        form.Name,
		Email:       form.Email,
		Phone:       form.Phone,
		Role:        string(form.Role),
		Description: form.Description,
		Errors:      errs,
		Calendar:    projections.BuildSignupCalendar(month, today, form.Availabilities),
		Roles:       volunteer.Roles,
		Accept:      strings.Join(signup.AcceptedCVExtensions, ","),
	}
}

// handleSignup handles GET and POST /signup
func handleSignup(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFor(r)
	today := availability.FromTime(timeNow(), displayLocation)

	if r.Method == http.MethodGet {
		month := projections.ParseMonth(r.URL.Query().Get("month"), today)
		renderSignup(w, r, http.StatusOK, ws.TakeFlash(), newSignupView(signup.Form{}, month, nil))
		return
	}

	form, err := readSignupForm(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || errors.Is(err, errCVTooLarge) {
			view := newSignupView(form, today, map[string]string{"cv": fmt.Sprintf("The CV must be smaller than %d MB.", maxUploadBytes>>20)})
			renderSignup(w, r, http.StatusRequestEntityTooLarge, nil, view)
			return
		}
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	month := projections.ParseMonth(r.PostFormValue("shown_month"), today)

	// Calendar interactions re-render the form with its values.
	if target := r.PostFormValue("goto_month"); target != "" {
		month = projections.ParseMonth(target, today)
		renderSignupRoundTrip(w, r, form, month)
		return
	}
	if value := r.PostFormValue("toggle"); value != "" {
		d, err := availability.Parse(value)
		if err == nil && !d.Before(today) {
			form.ToggleDate(d)
		}
		renderSignupRoundTrip(w, r, form, month)
		return
	}

	msg, err := orchestrators.ExecuteSubmitSignup(r.Context(), &form, orchestrators.SubmitSignupDeps{Gateway: remote})
	var verr *signup.ValidationError
	switch {
	case errors.As(err, &verr):
		slog.Info("signup_rejected", "fields", len(verr.Fields))
		renderSignup(w, r, http.StatusUnprocessableEntity, nil, newSignupView(form, month, verr.Fields))
		return
	case err != nil:
		renderSignup(w, r, http.StatusBadGateway, &Flash{Kind: "error", Text: orchestrators.MsgSignupFailed}, newSignupView(form, month, nil))
		return
	}

	ws.SetFlash("success", msg)
	http.Redirect(w, r, signupPath, http.StatusSeeOther)
}

func renderSignupRoundTrip(w http.ResponseWriter, r *http.Request, form signup.Form, month availability.Date) {
	view := newSignupView(form, month, nil)
	view.HadCV = form.CV != nil
	renderSignup(w, r, http.StatusOK, nil, view)
}

func renderSignup(w http.ResponseWriter, r *http.Request, status int, flash *Flash, view signupView) {
	renderTemplateStatus(w, r, status, "signup.html", map[string]any{
		"Title":  "Volunteer Signup",
		"Nav":    "signup",
		"Flash":  flash,
		"Signup": view,
	})
}

var errCVTooLarge = errors.New("cv exceeds the upload limit")

// readSignupForm reads the submitted fields, chosen dates and CV.
// PRE: r is a multipart or urlencoded POST
// POST: Unknown roles are kept verbatim so validation reports them; unparsable dates are dropped
func readSignupForm(r *http.Request) (signup.Form, error) {
	// The body is usually parsed already by CSRF; MaxBody caps it before that.
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return signup.Form{}, err
	}

	form := signup.Form{
		Name:        r.PostFormValue("name"),
		Email:       r.PostFormValue("email"),
		Phone:       r.PostFormValue("phone"),
		Description: r.PostFormValue("description"),
	}
	rawRole := r.PostFormValue("role")
	if role, err := volunteer.ParseRole(rawRole); err == nil {
		form.Role = role
	} else {
		form.Role = volunteer.Role(rawRole)
	}

	for _, v := range r.PostForm["availabilities"] {
		if d, err := availability.Parse(v); err == nil {
			form.Availabilities.Add(d)
		}
	}

	file, hdr, err := r.FormFile("cv")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return form, nil
	case err != nil:
		return form, err
	}
	defer file.Close()
	if hdr.Size > maxUploadBytes {
		return form, errCVTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return form, err
	}
	if hdr.Filename != "" || len(data) > 0 {
		form.CV = &signup.Attachment{
			Filename:    hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Data:        data,
		}
	}
	return form, nil
}
