package cvfile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteerdesk/internal/adapters/storage"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := storage.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db)
}

func TestSQLiteStore_PutAndGet(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := s.Put(ctx, File{Filename: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "cv.pdf", got.Filename)
	assert.Equal(t, "application/pdf", got.ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), got.Data)
}

func TestSQLiteStore_DefaultsContentType(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	id, err := s.Put(ctx, File{Filename: "cv.doc", Data: []byte("x")})
	require.NoError(t, err)
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", got.ContentType)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := newTestSQLiteStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewObjectID_KeepsSafeExtension(t *testing.T) {
	assert.True(t, strings.HasSuffix(newObjectID("My CV.PDF"), ".pdf"))
	assert.True(t, strings.HasSuffix(newObjectID("resume.docx"), ".docx"))
	assert.Equal(t, 36, len(newObjectID("noext")))
	assert.Equal(t, 36, len(newObjectID("evil.p/df")), "unsafe extension is dropped")
	assert.True(t, validObjectID(newObjectID("cv.pdf")))
}

func TestValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"3f1c2a9e-0000-4000-8000-000000000000.pdf", true},
		{"abc", true},
		{"", false},
		{"../secret", false},
		{"a/b", false},
		{"a..b", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validObjectID(tt.id), "validObjectID(%q)", tt.id)
	}
}

func TestFilenameFromMetadata(t *testing.T) {
	assert.Equal(t, "Amal CV.pdf", filenameFromMetadata(map[string]string{"filename": "Amal+CV.pdf"}, "id"))
	assert.Equal(t, "x.pdf", filenameFromMetadata(map[string]string{"Filename": "x.pdf"}, "id"))
	assert.Equal(t, "id", filenameFromMetadata(nil, "id"))
}
