package web

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"volunteerdesk/internal/adapters/gateway"
	"volunteerdesk/internal/adapters/http/middleware"
	"volunteerdesk/internal/adapters/http/perf"
	"volunteerdesk/internal/domain/signup"
	"volunteerdesk/internal/domain/volunteer"
)

// Gateway is the remote volunteer service as seen by the handlers.
type Gateway interface {
	Signup(ctx context.Context, form signup.Form) (string, error)
	ListApplications(ctx context.Context) ([]volunteer.Application, error)
	ListVolunteers(ctx context.Context) ([]volunteer.Volunteer, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	SendEmail(ctx context.Context, req gateway.EmailRequest) (string, error)
	CVURL(id string) string
}

// Options configures NewMux.
type Options struct {
	Gateway        Gateway
	Collector      *perf.Collector
	Location       *time.Location // display time zone for the signup calendar
	CSRFKey        []byte         // 32 bytes; a random key is generated when empty
	Secure         bool           // production: cookies are HTTPS-only
	TrustedOrigins []string
	SessionIdle    time.Duration
	MaxUploadBytes int64
	SlowRequest    time.Duration
}

// timeNow is a variable for testability.
var timeNow = time.Now

// Global gateway instance (set by NewMux)
var remote Gateway

// Global workspace store (set by NewMux)
var workspaces *WorkspaceStore

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// displayLocation is the time zone calendar days are taken in.
var displayLocation = time.Local

// maxUploadBytes caps the size of a signup submission.
var maxUploadBytes int64 = 10 << 20

// formOverheadBytes is the room left for the text fields and multipart framing of a signup.
const formOverheadBytes = 1 << 20

// secureCookies marks cookies HTTPS-only.
var secureCookies bool

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// configure installs the package-level dependencies shared by the handlers.
func configure(opts Options) {
	remote = opts.Gateway
	perfCollector = opts.Collector
	if opts.Location != nil {
		displayLocation = opts.Location
	}
	if opts.MaxUploadBytes > 0 {
		maxUploadBytes = opts.MaxUploadBytes
	}
	secureCookies = opts.Secure
	idle := opts.SessionIdle
	if idle <= 0 {
		idle = DefaultWorkspaceIdle
	}
	workspaces = NewWorkspaceStore(idle, func() *Workspace { return NewWorkspace(opts.Gateway) })
}

// csrfKey returns the configured key or, when none is set, a random per-process key.
func csrfKey(configured []byte) []byte {
	if len(configured) > 0 {
		return configured
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate CSRF key: " + err.Error())
	}
	slog.Warn("csrf_random_key", "detail", "forms expire on restart; set VOLUNTEERDESK_CSRF_KEY to keep them")
	return key
}

// NewMux wires HTTP handlers for the app.
// PRE: opts.Gateway is non-nil
func NewMux(opts Options) http.Handler {
	configure(opts)

	router := mux.NewRouter()
	registerRoutes(router)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> ViewSession -> MaxBody -> CSRF -> SecurityHeaders -> Router
	return middleware.Chain(router,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey(opts.CSRFKey), middleware.CSRFOptions{
			Secure:         opts.Secure,
			TrustedOrigins: opts.TrustedOrigins,
		}),
		middleware.MaxBody(maxUploadBytes+formOverheadBytes),
		middleware.ViewSession(opts.Secure),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, opts.SlowRequest),
	)
}
