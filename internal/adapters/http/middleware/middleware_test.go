package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_AllowsThenBlocksThenRefills(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request within the interval should be blocked")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other IPs have their own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("bucket should refill after one interval")
	}
}

func TestRateLimiter_SteadyTrafficUnderTheLimitIsNeverBlocked(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10, time.Second)
	rl.now = func() time.Time { return now }

	for i := range 40 {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d blocked at 1.67 req/s with a 10 req/s limit", i)
		}
		now = now.Add(600 * time.Millisecond)
	}
}

func TestRateLimiter_PartialIntervalCarriesOver(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Second)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(600 * time.Millisecond)
	if rl.Allow("10.0.0.1") {
		t.Fatal("second request inside the first interval should be blocked")
	}
	now = now.Add(600 * time.Millisecond)
	if !rl.Allow("10.0.0.1") {
		t.Error("bucket should refill once a full interval has passed since the first request")
	}
}

func TestRateLimiter_ForgetsIdleVisitors(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, time.Hour)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(visitorTTL + time.Second)
	rl.Allow("10.0.0.2")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Error("idle visitor should have been swept")
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	h := RateLimit(NewRateLimiter(1, time.Hour))(okHandler())

	req := httptest.NewRequest("GET", "/signup", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)

	req.RemoteAddr = "192.0.2.1:6666" // same client, new port
	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)

	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Errorf("codes = %d, %d; want 200, 429", first.Code, second.Code)
	}
}

func TestMaxBody_RejectsDeclaredLengthBeforeReading(t *testing.T) {
	reached := false
	h := MaxBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("0123456789")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("got status %d, want 413", rec.Code)
	}
	if reached {
		t.Error("oversized body reached the next handler")
	}
}

func TestMaxBody_CapsUndeclaredLength(t *testing.T) {
	var readErr error
	h := MaxBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("0123456789"))
	req.ContentLength = -1
	h.ServeHTTP(httptest.NewRecorder(), req)

	var tooLarge *http.MaxBytesError
	if !errors.As(readErr, &tooLarge) {
		t.Errorf("read error = %v, want *http.MaxBytesError", readErr)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler()).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

func TestChain_OrderOuterToInner(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	// Chain wraps in order, so the last middleware runs first.
	Chain(okHandler(), mark("inner"), mark("outer")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("order = %v", order)
	}
}

func TestViewSession_IssuesAndReusesToken(t *testing.T) {
	var seen []string
	h := ViewSession(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := ViewSessionFromContext(r.Context())
		if !ok {
			t.Error("expected a view session in context")
		}
		seen = append(seen, token)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest("GET", "/admin/applications", nil))
	cookies := first.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != viewSessionCookieName {
		t.Fatalf("expected one view-session cookie, got %v", cookies)
	}

	req := httptest.NewRequest("GET", "/admin/applications", nil)
	req.AddCookie(cookies[0])
	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)

	if len(second.Result().Cookies()) != 0 {
		t.Error("a valid cookie should not be reissued")
	}
	if seen[0] != seen[1] {
		t.Errorf("token changed between requests: %v", seen)
	}
}

func TestViewSession_ReplacesForgedToken(t *testing.T) {
	h := ViewSession(false)(okHandler())
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: viewSessionCookieName, Value: "../../etc/passwd"})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "../../etc/passwd" {
		t.Errorf("forged token was not replaced: %v", cookies)
	}
}

func TestCSRF_RejectsPostWithoutToken(t *testing.T) {
	h := CSRF([]byte("0123456789abcdef0123456789abcdef"), CSRFOptions{})(okHandler())

	get := httptest.NewRecorder()
	h.ServeHTTP(get, httptest.NewRequest("GET", "/signup", nil))
	if get.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200", get.Code)
	}

	form := url.Values{"name": {"Amal"}}
	req := httptest.NewRequest("POST", "/signup", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	post := httptest.NewRecorder()
	h.ServeHTTP(post, req)
	if post.Code != http.StatusForbidden {
		t.Errorf("POST status = %d, want 403", post.Code)
	}
}
