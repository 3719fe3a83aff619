package devapi

import (
	"context"
	"fmt"
	"time"

	"volunteerdesk/internal/adapters/email"
	"volunteerdesk/internal/adapters/http/perf"
	"volunteerdesk/internal/adapters/storage"
	"volunteerdesk/internal/adapters/storage/cvfile"
	volunteerstore "volunteerdesk/internal/adapters/storage/volunteer"
	"volunteerdesk/internal/config"
)

// Open builds a Handler from configuration.
// CV files go to MinIO when an endpoint is configured and to the sqlite database otherwise.
// POST: The returned close function releases the database
func Open(ctx context.Context, cfg config.DevAPI, collector *perf.Collector, maxUpload int64, slowQuery time.Duration) (*Handler, func() error, error) {
	db, err := storage.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	var recorder perf.Recorder
	if collector != nil {
		recorder = collector
	}
	timed := storage.NewTimedDB(db, recorder, slowQuery)

	var cvs cvfile.Store = cvfile.NewSQLiteStore(timed)
	if cfg.MinioEndpoint != "" {
		store, err := cvfile.NewMinIOStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			timed.Close()
			return nil, nil, fmt.Errorf("cv store: %w", err)
		}
		cvs = store
	}

	h := NewHandler(Deps{
		Volunteers:     volunteerstore.NewSQLiteStore(timed),
		CVs:            cvs,
		Email:          email.NewSender(cfg.ResendKey, cfg.EmailFrom, cfg.EmailReplyTo),
		MaxUploadBytes: maxUpload,
	})
	return h, timed.Close, nil
}
