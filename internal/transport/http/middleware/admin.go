package middleware

import (
	"net/http"

	"github.com/go-places-api/internal/domain"
)

// Authorizer decides whether a caller may perform a privileged action.
type Authorizer interface {
	Authorized(u *domain.User, suppliedSecret string) bool
}

// RequireAdminOrSecret returns middleware that allows the request through
// when the authenticated caller is an admin or when the correct server
// secret is supplied via the secret_key query parameter. Must run after Auth.
func RequireAdminOrSecret(authz Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if !authz.Authorized(u, r.URL.Query().Get("secret_key")) {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
