package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-places-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuthService lets each test pin down just the method it exercises.
type stubAuthService struct {
	registerFn func(ctx context.Context, req domain.RegisterRequest, suppliedSecret string) error
	verifyFn   func(ctx context.Context, email, code string) error
	loginFn    func(ctx context.Context, email, plaintext string) (string, error)
	sendOTPFn  func(ctx context.Context, email string) error
}

func (s *stubAuthService) Register(ctx context.Context, req domain.RegisterRequest, suppliedSecret string) error {
	return s.registerFn(ctx, req, suppliedSecret)
}
func (s *stubAuthService) VerifyRegistration(ctx context.Context, email, code string) error {
	return s.verifyFn(ctx, email, code)
}
func (s *stubAuthService) Login(ctx context.Context, email, plaintext string) (string, error) {
	return s.loginFn(ctx, email, plaintext)
}
func (s *stubAuthService) SendOTP(ctx context.Context, email string) error {
	return s.sendOTPFn(ctx, email)
}
func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.sendOTPFn(ctx, email)
}
func (s *stubAuthService) CompletePasswordReset(context.Context, string, string, string) error {
	return nil
}
func (s *stubAuthService) ChangeEmail(context.Context, string, string, string) error { return nil }
func (s *stubAuthService) ResolveBearer(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrTokenInvalid
}
func (s *stubAuthService) Authorized(*domain.User, string) bool { return false }

func postJSON(t *testing.T, h http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestRegister_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	rec := postJSON(t, h.Register, "/v1/auth/register", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_ValidationFailure(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	rec := postJSON(t, h.Register, "/v1/auth/register",
		`{"name":"Alice","email":"not-an-email","password":"password123"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRegister_DuplicateEmail_409(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(context.Context, domain.RegisterRequest, string) error {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		},
	}
	h := NewAuthHandler(svc)
	rec := postJSON(t, h.Register, "/v1/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_AdminWithoutSecret_403(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(context.Context, domain.RegisterRequest, string) error {
			return fmt.Errorf("admin registration requires the server secret: %w", domain.ErrForbidden)
		},
	}
	h := NewAuthHandler(svc)
	rec := postJSON(t, h.Register, "/v1/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"password123","is_admin":true}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegister_DeliveryFailure_502(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(context.Context, domain.RegisterRequest, string) error {
			return fmt.Errorf("smtp refused: %w", domain.ErrDeliveryFailure)
		},
	}
	h := NewAuthHandler(svc)
	rec := postJSON(t, h.Register, "/v1/auth/register",
		`{"name":"Alice","email":"alice@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not deliver email")
}

func TestRegister_PassesSecretKeyQueryParam(t *testing.T) {
	var gotSecret string
	svc := &stubAuthService{
		registerFn: func(_ context.Context, _ domain.RegisterRequest, suppliedSecret string) error {
			gotSecret = suppliedSecret
			return nil
		},
	}
	h := NewAuthHandler(svc)
	rec := postJSON(t, h.Register, "/v1/auth/register?secret_key=s3cret",
		`{"name":"Alice","email":"alice@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "s3cret", gotSecret)
}

func TestLogin_BadCredentials_401(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(context.Context, string, string) (string, error) {
			return "", fmt.Errorf("login failed: %w", domain.ErrInvalidCredentials)
		},
	}
	h := NewAuthHandler(svc)
	rec := postJSON(t, h.Login, "/v1/auth/login",
		`{"email":"alice@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// Coarse on purpose: the body must not say whether the email exists.
	assert.Contains(t, rec.Body.String(), "incorrect email or password")
}

func TestLogin_OK_ReturnsBearerToken(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(context.Context, string, string) (string, error) {
			return "the-token", nil
		},
	}
	h := NewAuthHandler(svc)
	rec := postJSON(t, h.Login, "/v1/auth/login",
		`{"email":"alice@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"access_token":"the-token"`)
	assert.Contains(t, rec.Body.String(), `"token_type":"bearer"`)
}

func TestVerifyOTP_WrongCode_401(t *testing.T) {
	svc := &stubAuthService{
		verifyFn: func(context.Context, string, string) error {
			return fmt.Errorf("otp verification failed: %w", domain.ErrInvalidOTP)
		},
	}
	h := NewAuthHandler(svc)
	rec := postJSON(t, h.VerifyOTP, "/v1/auth/register/verify-otp",
		`{"email":"alice@example.com","otp":"123456"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid otp")
}

func TestVerifyOTP_OK(t *testing.T) {
	svc := &stubAuthService{
		verifyFn: func(context.Context, string, string) error { return nil },
	}
	h := NewAuthHandler(svc)
	rec := postJSON(t, h.VerifyOTP, "/v1/auth/register/verify-otp",
		`{"email":"alice@example.com","otp":"123456"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "account verified")
}

func TestChangeEmail_NoAuthenticatedUser_401(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})
	rec := postJSON(t, h.ChangeEmail, "/v1/auth/me/change-email",
		`{"new_email":"new@example.com","otp":"123456"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
