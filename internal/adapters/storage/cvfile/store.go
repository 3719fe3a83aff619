// Package cvfile stores uploaded CV files.
package cvfile

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no file has the requested id.
var ErrNotFound = errors.New("cv file not found")

// File is one uploaded CV.
type File struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
}

// Store persists CV files and hands out opaque ids for them.
type Store interface {
	Put(ctx context.Context, f File) (string, error)
	Get(ctx context.Context, id string) (File, error)
}

// contentTypeOrDefault falls back to a generic binary type.
func contentTypeOrDefault(ct string) string {
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
