package cvfile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	objectPrefix     = "cvs/"
	filenameMetadata = "Filename"
)

// MinIOStore keeps CV files as objects in a MinIO (or S3-compatible) bucket.
type MinIOStore struct {
	client *minio.Client
	bucket string
}

// NewMinIOStore connects to endpoint and makes sure bucket exists.
// PRE: endpoint is host[:port] without a scheme
// POST: Returns an error only when the client cannot be built; an unreachable server is logged
func NewMinIOStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinIOStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	switch {
	case err != nil:
		slog.Warn("minio_bucket_check_failed", "bucket", bucket, "error", err)
	case !exists:
		// CVs are personal data: the bucket stays private and files are served through /cv/{id}.
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			slog.Error("minio_bucket_create_failed", "bucket", bucket, "error", err)
		} else {
			slog.Info("minio_bucket_created", "bucket", bucket)
		}
	}

	slog.Info("minio_store_ready", "endpoint", endpoint, "bucket", bucket)
	return &MinIOStore{client: client, bucket: bucket}, nil
}

// Put uploads f under a new id.
// POST: Returns an id made of a uuid and the original extension
func (s *MinIOStore) Put(ctx context.Context, f File) (string, error) {
	id := newObjectID(f.Filename)
	_, err := s.client.PutObject(ctx, s.bucket, objectPrefix+id,
		bytes.NewReader(f.Data), int64(len(f.Data)),
		minio.PutObjectOptions{
			ContentType:  contentTypeOrDefault(f.ContentType),
			UserMetadata: map[string]string{filenameMetadata: url.QueryEscape(f.Filename)},
		})
	if err != nil {
		return "", fmt.Errorf("failed to upload cv: %w", err)
	}
	slog.Info("cv_uploaded", "id", id, "bytes", len(f.Data))
	return id, nil
}

// Get downloads a file by id.
// POST: Returns ErrNotFound when the object does not exist
func (s *MinIOStore) Get(ctx context.Context, id string) (File, error) {
	if !validObjectID(id) {
		return File{}, ErrNotFound
	}
	obj, err := s.client.GetObject(ctx, s.bucket, objectPrefix+id, minio.GetObjectOptions{})
	if err != nil {
		return File{}, mapMinIOError(err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return File{}, mapMinIOError(err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return File{}, fmt.Errorf("failed to download cv: %w", err)
	}
	return File{
		ID:          id,
		Filename:    filenameFromMetadata(info.UserMetadata, id),
		ContentType: contentTypeOrDefault(info.ContentType),
		Data:        data,
	}, nil
}

func mapMinIOError(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return fmt.Errorf("failed to download cv: %w", err)
}

// newObjectID keeps the upload's extension so downloads open in the right application.
func newObjectID(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if !validObjectID("x" + ext) {
		ext = ""
	}
	return uuid.New().String() + ext
}

// validObjectID rejects ids that could escape the cvs/ prefix.
func validObjectID(id string) bool {
	if id == "" || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
		default:
			return false
		}
	}
	return !strings.Contains(id, "..")
}

// filenameFromMetadata reads the original filename, matching the key case-insensitively.
func filenameFromMetadata(meta map[string]string, fallback string) string {
	for k, v := range meta {
		if strings.EqualFold(k, filenameMetadata) {
			if name, err := url.QueryUnescape(v); err == nil && name != "" {
				return name
			}
		}
	}
	return fallback
}
