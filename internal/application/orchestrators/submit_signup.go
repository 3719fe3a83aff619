package orchestrators

import (
	"context"
	"log/slog"

	"volunteerdesk/internal/domain/signup"
)

// SignupSubmitter is the remote surface used to create an application.
type SignupSubmitter interface {
	Signup(ctx context.Context, form signup.Form) (string, error)
}

// SubmitSignupDeps holds dependencies for SubmitSignup.
type SubmitSignupDeps struct {
	Gateway SignupSubmitter
}

// ExecuteSubmitSignup validates the form and, when valid, submits it.
// PRE: form fields are populated from the request
// POST: On validation failure returns *signup.ValidationError with no remote call and form intact;
// on success the form is reset and the service message (or a default) is returned
func ExecuteSubmitSignup(ctx context.Context, form *signup.Form, deps SubmitSignupDeps) (string, error) {
	form.Normalize()
	if err := form.Validate(); err != nil {
		return "", err
	}

	msg, err := deps.Gateway.Signup(ctx, *form)
	if err != nil {
		slog.Error("signup_failed", "email", form.Email, "error", err)
		return "", err
	}
	if msg == "" {
		msg = MsgSignupSucceeded
	}
	form.Reset()
	return msg, nil
}
