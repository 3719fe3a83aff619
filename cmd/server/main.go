package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"volunteerdesk/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// shutdownGrace bounds how long in-flight requests may run after a signal.
const shutdownGrace = 10 * time.Second

var (
	configPath string
	cfg        *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "volunteerdesk",
		Short:   "Volunteer Desk - volunteer signup and application review",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			setupLogger(cfg)
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (default $"+config.EnvPrefix+"CONFIG)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(devapiCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger installs the process-wide slog handler.
func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runServers serves every server until ctx is cancelled or one of them fails.
func runServers(ctx context.Context, servers ...*http.Server) error {
	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			slog.Info("server_listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("%s: %w", srv.Addr, err)
			}
		}(srv)
	}

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutdown_started")
	case runErr = <-errCh:
		slog.Error("server_failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown_incomplete", "addr", srv.Addr, "error", err)
		}
	}
	return runErr
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
