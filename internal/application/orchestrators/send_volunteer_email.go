package orchestrators

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"volunteerdesk/internal/adapters/gateway"
)

// VolunteerEmailer is the remote surface used for bulk email.
type VolunteerEmailer interface {
	SendEmail(ctx context.Context, req gateway.EmailRequest) (string, error)
}

// SendVolunteerEmailInput carries the recipients and content of a bulk email.
type SendVolunteerEmailInput struct {
	VolunteerIDs []string
	Subject      string
	Message      string
}

// SendVolunteerEmailDeps holds dependencies for SendVolunteerEmail.
type SendVolunteerEmailDeps struct {
	Gateway VolunteerEmailer
}

// ExecuteSendVolunteerEmail sends one batched email to every selected volunteer.
// PRE: none
// POST: With no recipients returns ErrNoRecipientsSelected and makes no call;
// otherwise exactly one request carrying the sorted id set, returning the server's message
func ExecuteSendVolunteerEmail(ctx context.Context, input SendVolunteerEmailInput, deps SendVolunteerEmailDeps) (string, error) {
	ids := distinct(input.VolunteerIDs)
	if len(ids) == 0 {
		return "", ErrNoRecipientsSelected
	}
	sort.Strings(ids)

	msg, err := deps.Gateway.SendEmail(ctx, gateway.EmailRequest{
		VolunteerIDs: ids,
		Subject:      strings.TrimSpace(input.Subject),
		Message:      input.Message,
	})
	if err != nil {
		slog.Error("volunteer_email_failed", "recipient_count", len(ids), "error", err)
		return "", err
	}
	slog.Info("volunteer_email_sent", "recipient_count", len(ids))
	return msg, nil
}
