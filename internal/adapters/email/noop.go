package email

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NoopSender logs messages instead of delivering them and remembers what it was given.
type NoopSender struct {
	mu   sync.Mutex
	sent []SendRequest
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs the email but does not deliver it.
// POST: req is appended to Sent
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	slog.Info("noop_email_send", "to", req.To, "subject", req.Subject)
	s.mu.Lock()
	s.sent = append(s.sent, req)
	s.mu.Unlock()
	return SendResult{MessageID: "noop-" + uuid.NewString(), SentAt: time.Now()}, nil
}

// SendBatch logs each message of the batch.
// POST: Returns one result per request, in order
func (s *NoopSender) SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error) {
	results := make([]SendResult, 0, len(reqs))
	for _, req := range reqs {
		res, _ := s.Send(ctx, req)
		results = append(results, res)
	}
	return results, nil
}

// Sent returns a copy of every request handed to the sender.
func (s *NoopSender) Sent() []SendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SendRequest(nil), s.sent...)
}
