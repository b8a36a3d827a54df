package auth

import (
	"context"
	"net/http"
)

type contextKey string

const usernameKey contextKey = "username"

// ContextWithUsername returns a context carrying the authenticated username.
func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// GetUsernameFromContext returns the authenticated username, if any.
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}

// WithIdentity attaches the verified username from the identity cookie to the
// request context. Requests without a valid cookie pass through anonymous —
// item routes are open, identity only attributes writes.
func WithIdentity(service Service, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err == nil {
				if username, verr := service.Verify(cookie.Value); verr == nil {
					r = r.WithContext(ContextWithUsername(r.Context(), username))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
