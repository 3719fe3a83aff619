package cvfile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"volunteerdesk/internal/adapters/storage"
)

// SQLiteStore keeps CV bytes in the cv_file table.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Put stores f under a new id.
// POST: Returns the id; f.ID is ignored
func (s *SQLiteStore) Put(ctx context.Context, f File) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cv_file (id, filename, content_type, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, f.Filename, contentTypeOrDefault(f.ContentType), f.Data, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get loads a file by id.
// POST: Returns ErrNotFound for an unknown id
func (s *SQLiteStore) Get(ctx context.Context, id string) (File, error) {
	f := File{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT filename, content_type, data FROM cv_file WHERE id = ?`, id).
		Scan(&f.Filename, &f.ContentType, &f.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return File{}, ErrNotFound
	}
	if err != nil {
		return File{}, err
	}
	return f, nil
}
