package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type trustedKey struct{}

// BearerToken returns the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// TrustBearer marks requests carrying the shared cron secret as trusted.
// Requests without it pass through untouched. An empty secret trusts nobody.
func TrustBearer(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				token := BearerToken(r)
				if token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1 {
					r = r.WithContext(WithTrusted(r.Context()))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithTrusted returns a context flagged as coming from a trusted caller.
func WithTrusted(ctx context.Context) context.Context {
	return context.WithValue(ctx, trustedKey{}, true)
}

// IsTrusted reports whether TrustBearer accepted the request's token.
func IsTrusted(ctx context.Context) bool {
	v, _ := ctx.Value(trustedKey{}).(bool)
	return v
}
