package orchestrators

import "errors"

// Bulk action errors
var (
	ErrNoRecipientsSelected = errors.New("no volunteers selected")
	ErrEmptySelection       = errors.New("no applications selected")
	ErrConfirmationRequired = errors.New("rejection requires confirmation")
)

// User-facing messages for outcomes the views report verbatim.
const (
	MsgNoRecipientsSelected = "No volunteers selected."
	MsgEmailFailed          = "Error sending emails."
	MsgSignupFailed         = "Error signing up!"
	MsgSignupSucceeded      = "Volunteer signed up!"
)
