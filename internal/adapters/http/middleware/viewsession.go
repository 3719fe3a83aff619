package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const viewSessionContextKey contextKey = "view_session"

const viewSessionCookieName = "volunteerdesk_view"

// ViewSession returns middleware that gives every browser a view-session token.
// The token keys the server-side list state; it grants nothing on its own.
// POST: the request context carries a valid token; a new cookie is set when none was sent
func ViewSession(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(viewSessionCookieName); err == nil {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					token = cookie.Value
				}
			}
			if token == "" {
				token = uuid.NewString()
				SetViewSessionCookie(w, token, secure)
			}
			next.ServeHTTP(w, r.WithContext(ContextWithViewSession(r.Context(), token)))
		})
	}
}

// ViewSessionFromContext extracts the view-session token from the request context.
func ViewSessionFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(viewSessionContextKey).(string)
	return token, ok && token != ""
}

// ContextWithViewSession returns a context carrying token.
func ContextWithViewSession(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, viewSessionContextKey, token)
}

// SetViewSessionCookie sets the view-session cookie on the response.
func SetViewSessionCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     viewSessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}
