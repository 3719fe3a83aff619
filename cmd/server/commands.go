package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"volunteerdesk/internal/adapters/gateway"
	web "volunteerdesk/internal/adapters/http"
	"volunteerdesk/internal/adapters/http/perf"
	"volunteerdesk/internal/config"
	"volunteerdesk/internal/devapi"
)

func serveCmd() *cobra.Command {
	var withDevAPI bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the signup and review web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			collector := perf.NewCollector(perf.DefaultRingSize)
			servers := []*http.Server{newServer(cfg.Addr, newFrontEnd(cfg, collector))}

			if withDevAPI {
				api, closeAPI, err := newDevAPI(ctx, cfg, collector)
				if err != nil {
					return err
				}
				defer closeAPI()
				servers = append(servers, newServer(cfg.DevAPI.Addr, api))
			}

			slog.Info("volunteerdesk_starting", "version", version, "env", cfg.Env, "api", cfg.APIBaseURL, "devapi", withDevAPI)
			return runServers(ctx, servers...)
		},
	}
	cmd.Flags().BoolVar(&withDevAPI, "with-devapi", false, "also run the local stand-in volunteer service")
	return cmd
}

func devapiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devapi",
		Short: "Run the local stand-in volunteer service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			api, closeAPI, err := newDevAPI(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer closeAPI()

			slog.Info("devapi_starting", "version", version, "db", cfg.DevAPI.DBPath, "minio", cfg.DevAPI.MinioEndpoint != "")
			return runServers(ctx, newServer(cfg.DevAPI.Addr, api))
		},
	}
}

// newFrontEnd wires the gateway client into the web handler.
func newFrontEnd(cfg *config.Config, collector *perf.Collector) http.Handler {
	publicURL := cfg.APIPublicURL
	if publicURL == "" {
		publicURL = cfg.DevAPI.PublicURL
	}
	client := gateway.NewClient(cfg.APIBaseURL, publicURL, cfg.GatewayTimeout).WithRecorder(collector)

	return web.NewMux(web.Options{
		Gateway:        client,
		Collector:      collector,
		Location:       cfg.Location(),
		CSRFKey:        []byte(cfg.CSRFKey),
		Secure:         cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins,
		SessionIdle:    cfg.SessionIdleTimeout,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SlowRequest:    cfg.SlowRequestThreshold(),
	})
}

// newDevAPI opens the stand-in's storage and returns its handler.
// Query timings go to collector; its requests are only logged so they do not mix with front-end latency.
func newDevAPI(ctx context.Context, cfg *config.Config, collector *perf.Collector) (http.Handler, func() error, error) {
	h, closeFn, err := devapi.Open(ctx, cfg.DevAPI, collector, cfg.MaxUploadBytes, 0)
	if err != nil {
		return nil, nil, err
	}
	return devapi.NewRouter(h, nil, cfg.SlowRequestThreshold()), closeFn, nil
}
