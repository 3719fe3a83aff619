package volunteer

import (
	"context"
	"errors"
	"time"

	domain "volunteerdesk/internal/domain/volunteer"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("volunteer record not found")

// Store persists volunteer records and their review status.
type Store interface {
	Create(ctx context.Context, app domain.Application, createdAt time.Time) error
	GetByID(ctx context.Context, id string) (domain.Application, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Application, error)
	Decide(ctx context.Context, id, status string, at time.Time) error
}
