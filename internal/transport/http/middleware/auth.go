package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/shukatsu-reminders/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// DevUserHeader carries the caller identity when no JWT provider is configured.
const DevUserHeader = "X-User-ID"

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// Auth returns middleware that validates the Bearer JWT and injects claims into context.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := verifier.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DevIdentity trusts the X-User-ID header. Development only.
func DevIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(DevUserHeader))
		if userID == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing "+DevUserHeader+" header")
			return
		}
		ctx := context.WithValue(r.Context(), ClaimsKey, &jwtinfra.Claims{UserID: userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}
