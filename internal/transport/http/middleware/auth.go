package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rdzcn/weight-tracker/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// Authenticator resolves a bearer credential to an identity, confirming
// the user still exists.
type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*domain.Identity, error)
}

// Auth returns middleware that validates the bearer credential and injects
// the resolved identity into the request context.
func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, `{"error":"missing or invalid authorization header"}`, http.StatusUnauthorized)
				return
			}
			bearer := strings.TrimPrefix(authHeader, "Bearer ")
			identity, err := authn.Authenticate(r.Context(), bearer)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired credential"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *identity)))
		})
	}
}

// WithIdentity returns a context carrying the resolved identity.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext extracts the resolved identity from the request context.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}
