// Package email delivers volunteer emails through an external provider.
package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// SendRequest is one message to one or more recipients.
type SendRequest struct {
	To      []string
	From    string // empty means the sender's default
	Subject string
	HTML    string
	ReplyTo string // empty means the sender's default
}

// SendResult is the provider's acknowledgement of one message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}

// NewSender returns a Resend sender when apiKey is set and a logging no-op sender otherwise.
func NewSender(apiKey, from, replyTo string) Sender {
	if apiKey == "" {
		slog.Warn("email_delivery_disabled", "reason", "no resend key configured")
		return NewNoopSender()
	}
	return NewResendSender(apiKey, from, replyTo)
}

// mdRenderer renders message bodies. Raw HTML in the input is escaped (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// RenderMarkdown converts a plain-text or markdown message body to HTML.
// POST: Line breaks are kept; embedded HTML is escaped
func RenderMarkdown(body string) (string, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render message: %w", err)
	}
	return buf.String(), nil
}
