package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-places-api/internal/domain"
)

type contextKey string

const UserKey contextKey = "user"

// BearerResolver turns a raw bearer token into a fully resolved, active user.
type BearerResolver interface {
	ResolveBearer(ctx context.Context, rawToken string) (*domain.User, error)
}

// Auth returns middleware that resolves the Bearer token into an active user
// and injects it into the request context. Expired tokens are rejected with a
// distinct message so clients know to re-login rather than re-verify.
func Auth(resolver BearerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			u, err := resolver.ResolveBearer(r.Context(), tokenStr)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrTokenExpired):
					writeJSONError(w, http.StatusUnauthorized, "token expired")
				case errors.Is(err, domain.ErrInactiveAccount):
					writeJSONError(w, http.StatusForbidden, "account not verified")
				default:
					writeJSONError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserKey).(*domain.User)
	return u, ok
}
