package orchestrators

import (
	"context"
	"errors"
	"testing"

	"volunteerdesk/internal/adapters/gateway"
	"volunteerdesk/internal/domain/availability"
	"volunteerdesk/internal/domain/signup"
	"volunteerdesk/internal/domain/volunteer"
)

type mockSubmitter struct {
	forms []signup.Form
	reply string
	err   error
}

// Signup records the submitted form.
func (m *mockSubmitter) Signup(_ context.Context, form signup.Form) (string, error) {
	m.forms = append(m.forms, form)
	return m.reply, m.err
}

func validForm() *signup.Form {
	d, _ := availability.Parse("2024-03-20")
	return &signup.Form{
		Name:           " Amal ",
		Email:          "a@x.com",
		Phone:          "0211234567",
		Role:           volunteer.RoleCooking,
		Description:    "Keen cook",
		CV:             &signup.Attachment{Filename: "cv.pdf", Data: []byte("%PDF")},
		Availabilities: availability.NewSet(d),
	}
}

func TestExecuteSubmitSignup_InvalidPhoneMakesNoCall(t *testing.T) {
	gw := &mockSubmitter{}
	form := validForm()
	form.Phone = "12345"

	_, err := ExecuteSubmitSignup(context.Background(), form, SubmitSignupDeps{Gateway: gw})
	if !errors.Is(err, signup.ErrValidationFailure) {
		t.Fatalf("expected ErrValidationFailure, got %v", err)
	}
	var verr *signup.ValidationError
	if !errors.As(err, &verr) || verr.Fields["phone"] == "" {
		t.Errorf("expected a phone field error, got %v", err)
	}
	if len(gw.forms) != 0 {
		t.Errorf("expected no call, got %d", len(gw.forms))
	}
	if form.Name != "Amal" || form.Phone != "12345" || form.Availabilities.Len() != 1 {
		t.Errorf("form values were not retained: %+v", form)
	}
}

func TestExecuteSubmitSignup_SuccessResetsForm(t *testing.T) {
	gw := &mockSubmitter{}
	form := validForm()

	msg, err := ExecuteSubmitSignup(context.Background(), form, SubmitSignupDeps{Gateway: gw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg != MsgSignupSucceeded {
		t.Errorf("message = %q", msg)
	}
	if len(gw.forms) != 1 || gw.forms[0].Name != "Amal" {
		t.Errorf("submitted forms = %+v", gw.forms)
	}
	if form.Name != "" || form.CV != nil || form.Availabilities.Len() != 0 {
		t.Errorf("form not reset: %+v", form)
	}
}

func TestExecuteSubmitSignup_RemoteFailureKeepsForm(t *testing.T) {
	gw := &mockSubmitter{err: gateway.ErrNetworkFailure}
	form := validForm()

	_, err := ExecuteSubmitSignup(context.Background(), form, SubmitSignupDeps{Gateway: gw})
	if !errors.Is(err, gateway.ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}
	if form.Email != "a@x.com" {
		t.Errorf("form was cleared after a failed submit")
	}
}
