package volunteer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"volunteerdesk/internal/adapters/storage"
	"volunteerdesk/internal/domain/availability"
	domain "volunteerdesk/internal/domain/volunteer"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const volunteerColumns = `id, name, email, phone_number, desc_paragraph, volunteering_role,
		availabilities, cv_id, status`

// Create inserts a new record.
// PRE: app.ID is unique and app.Role is valid
// POST: The record is stored with app.Status, or pending when empty
func (s *SQLiteStore) Create(ctx context.Context, app domain.Application, createdAt time.Time) error {
	dates, err := json.Marshal(app.Availabilities.Strings())
	if err != nil {
		return fmt.Errorf("encode availabilities: %w", err)
	}
	status := app.Status
	if status == "" {
		status = domain.StatusPending
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO volunteer (id, name, email, phone_number, desc_paragraph, volunteering_role,
		   availabilities, cv_id, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.Name, app.Email, app.Phone, app.Description, string(app.Role),
		string(dates), nullableString(app.CVRef), status, createdAt.UTC().Format(timeLayout))
	return err
}

// GetByID retrieves a record by ID.
// PRE: id is non-empty
// POST: Returns ErrNotFound when no record has that id
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Application, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+volunteerColumns+` FROM volunteer WHERE id = ?`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Application{}, ErrNotFound
	}
	return app, err
}

// ListByStatus returns every record with the given status, oldest first.
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string) ([]domain.Application, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+volunteerColumns+` FROM volunteer WHERE status = ? ORDER BY created_at, id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// Decide moves a pending record to status.
// PRE: status is approved or rejected
// POST: Returns ErrNotFound when no pending record has that id
func (s *SQLiteStore) Decide(ctx context.Context, id, status string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE volunteer SET status = ?, decided_at = ? WHERE id = ? AND status = ?`,
		status, at.UTC().Format(timeLayout), id, domain.StatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanApplication(row scanner) (domain.Application, error) {
	var (
		app   domain.Application
		role  string
		dates string
		cvID  sql.NullString
	)
	if err := row.Scan(&app.ID, &app.Name, &app.Email, &app.Phone, &app.Description, &role,
		&dates, &cvID, &app.Status); err != nil {
		return domain.Application{}, err
	}
	app.Role = domain.Role(role)
	app.CVRef = cvID.String

	var values []string
	if err := json.Unmarshal([]byte(dates), &values); err != nil {
		return domain.Application{}, fmt.Errorf("record %s: availabilities: %w", app.ID, err)
	}
	set, err := availability.ParseSet(values)
	if err != nil {
		return domain.Application{}, fmt.Errorf("record %s: %w", app.ID, err)
	}
	app.Availabilities = set
	return app, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
