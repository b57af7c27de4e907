package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-places-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	user *domain.User
	err  error
	seen string
}

func (s *stubResolver) ResolveBearer(_ context.Context, rawToken string) (*domain.User, error) {
	s.seen = rawToken
	return s.user, s.err
}

func authedRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuth_MissingHeader(t *testing.T) {
	mw := Auth(&stubResolver{})
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})).ServeHTTP(rec, authedRequest(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authorization header")
}

func TestAuth_NonBearerScheme(t *testing.T) {
	mw := Auth(&stubResolver{})
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	mw := Auth(&stubResolver{err: domain.ErrTokenExpired})
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})).ServeHTTP(rec, authedRequest("stale"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

func TestAuth_InvalidToken(t *testing.T) {
	mw := Auth(&stubResolver{err: domain.ErrTokenInvalid})
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})).ServeHTTP(rec, authedRequest("forged"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestAuth_InactiveAccount(t *testing.T) {
	mw := Auth(&stubResolver{err: domain.ErrInactiveAccount})
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})).ServeHTTP(rec, authedRequest("unverified"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "account not verified")
}

func TestAuth_ValidToken_InjectsUser(t *testing.T) {
	resolver := &stubResolver{user: &domain.User{UserID: "u1", Email: "alice@example.com", IsActive: true}}
	mw := Auth(resolver)

	var got *domain.User
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		got = u
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, authedRequest("good-token"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "good-token", resolver.seen)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
}
