package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-places-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

type stubAuthorizer struct{ secret string }

func (s *stubAuthorizer) Authorized(u *domain.User, suppliedSecret string) bool {
	if u != nil && u.IsAdmin {
		return true
	}
	return s.secret != "" && suppliedSecret == s.secret
}

func adminGateRequest(u *domain.User, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/users"+query, nil)
	if u != nil {
		req = req.WithContext(context.WithValue(req.Context(), UserKey, u))
	}
	return req
}

func TestRequireAdminOrSecret(t *testing.T) {
	mw := RequireAdminOrSecret(&stubAuthorizer{secret: "letmein"})

	tests := []struct {
		name     string
		user     *domain.User
		query    string
		wantCode int
	}{
		{"no user in context", nil, "", http.StatusUnauthorized},
		{"regular user without secret", &domain.User{UserID: "u1"}, "", http.StatusForbidden},
		{"regular user with wrong secret", &domain.User{UserID: "u1"}, "?secret_key=nope", http.StatusForbidden},
		{"regular user with correct secret", &domain.User{UserID: "u1"}, "?secret_key=letmein", http.StatusOK},
		{"admin without secret", &domain.User{UserID: "u2", IsAdmin: true}, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})).ServeHTTP(rec, adminGateRequest(tt.user, tt.query))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
