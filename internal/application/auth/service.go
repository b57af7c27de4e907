package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-places-api/internal/domain"
	"github.com/go-places-api/internal/pkg/id"
	"github.com/go-places-api/internal/pkg/password"
)

// Service implements the authentication core: registration with OTP email
// verification, login, bearer resolution, password reset, and the
// admin-or-shared-secret authorization gate.
type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest, suppliedSecret string) error
	VerifyRegistration(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, plaintext string) (string, error)
	SendOTP(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	CompletePasswordReset(ctx context.Context, email, code, newPassword string) error
	ChangeEmail(ctx context.Context, userID, newEmail, code string) error
	ResolveBearer(ctx context.Context, rawToken string) (*domain.User, error)
	Authorized(u *domain.User, suppliedSecret string) bool
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	UpdateEmail(ctx context.Context, userID, newEmail string) error
	SetActive(ctx context.Context, userID string, active bool) error
}

type otpStore interface {
	Put(ctx context.Context, o *domain.EmailOTP) error
	Consume(ctx context.Context, email, code string, now int64) (bool, error)
}

type tokenProvider interface {
	Sign(subject string) (string, error)
	Verify(tokenStr string) (string, error)
}

type mailSender interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	users       userStore
	otps        otpStore
	tokens      tokenProvider
	mailer      mailSender
	adminSecret string
	otpTTL      time.Duration
}

type ServiceDeps struct {
	UserRepo    userStore
	OTPRepo     otpStore
	Tokens      tokenProvider
	Mailer      mailSender
	AdminSecret string
	OTPTTL      time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:       deps.UserRepo,
		otps:        deps.OTPRepo,
		tokens:      deps.Tokens,
		mailer:      deps.Mailer,
		adminSecret: deps.AdminSecret,
		otpTTL:      deps.OTPTTL,
	}
}

// Register creates an inactive user and mails a verification code.
// Requesting the admin flag requires the shared secret. A mail delivery
// failure is reported as domain.ErrDeliveryFailure after the user record is
// already persisted, so the caller can retry delivery via SendOTP without
// re-registering.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest, suppliedSecret string) error {
	email := normalizeEmail(req.Email)
	if req.IsAdmin && !s.secretMatches(suppliedSecret) {
		return fmt.Errorf("admin registration requires the server secret: %w", domain.ErrForbidden)
	}
	// Fast-path duplicate check. Only a definite "not found" means the email
	// is available; a store failure must not be mistaken for one. The race
	// two concurrent registrations can still win here is settled by Put,
	// which claims the email atomically.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("email already registered: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	hash, err := password.Hash(req.Password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      req.IsAdmin,
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return err
	}
	return s.SendOTP(ctx, email)
}

// SendOTP issues a fresh verification code for the email and delivers it.
// Storing the code replaces any previous one, so only the latest code is
// ever live for an address.
func (s *service) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	code, err := generateCode()
	if err != nil {
		return err
	}
	o := &domain.EmailOTP{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(s.otpTTL).Unix(),
	}
	if err := s.otps.Put(ctx, o); err != nil {
		return err
	}
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.otpTTL.Minutes()))
	if err := s.mailer.SendEmail(email, "Your verification code", body); err != nil {
		return fmt.Errorf("%v: %w", err, domain.ErrDeliveryFailure)
	}
	return nil
}

// VerifyRegistration consumes the pending code and activates the account.
// The code is single-use: consumption is an atomic check-and-delete at the
// store, so concurrent verifications cannot both succeed.
func (s *service) VerifyRegistration(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	ok, err := s.otps.Consume(ctx, email, code, time.Now().Unix())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("otp verification failed: %w", domain.ErrInvalidOTP)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("no account for verified email: %w", domain.ErrNotFound)
	}
	return s.users.SetActive(ctx, u.UserID, true)
}

// Login checks credentials and mints a bearer token. Unknown email and
// wrong password are reported identically.
func (s *service) Login(ctx context.Context, email, plaintext string) (string, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", fmt.Errorf("login failed: %w", domain.ErrInvalidCredentials)
	}
	if !password.Verify(plaintext, u.PasswordHash) {
		return "", fmt.Errorf("login failed: %w", domain.ErrInvalidCredentials)
	}
	return s.tokens.Sign(u.Email)
}

// RequestPasswordReset issues a reset code. It does not reveal whether the
// email belongs to an account: the code is issued and mailed either way, and
// completing the reset fails later for unknown accounts.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	return s.SendOTP(ctx, email)
}

func (s *service) CompletePasswordReset(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	ok, err := s.otps.Consume(ctx, email, code, time.Now().Unix())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("otp verification failed: %w", domain.ErrInvalidOTP)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, u.UserID, map[string]interface{}{"password_hash": hash})
}

// ChangeEmail moves the account to newEmail after the caller proves control
// of it with the code that was mailed there. The store settles the race
// against a concurrent registration of the same address.
func (s *service) ChangeEmail(ctx context.Context, userID, newEmail, code string) error {
	newEmail = normalizeEmail(newEmail)
	ok, err := s.otps.Consume(ctx, newEmail, code, time.Now().Unix())
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("otp verification failed: %w", domain.ErrInvalidOTP)
	}
	return s.users.UpdateEmail(ctx, userID, newEmail)
}

// ResolveBearer is the single funnel every protected route passes through.
// It verifies the token, loads the subject's account, and requires it to be
// active. Read-only; safe to call on every request.
func (s *service) ResolveBearer(ctx context.Context, rawToken string) (*domain.User, error) {
	subject, err := s.tokens.Verify(rawToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		// Token for a since-deleted account.
		return nil, fmt.Errorf("unknown subject: %w", domain.ErrTokenInvalid)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account not verified: %w", domain.ErrInactiveAccount)
	}
	return u, nil
}

// Authorized is the privileged-action gate: an authenticated admin passes,
// and so does any caller presenting the server's shared secret. Both paths
// are first-class; neither is a fallback for the other.
func (s *service) Authorized(u *domain.User, suppliedSecret string) bool {
	if u != nil && u.IsAdmin {
		return true
	}
	return s.secretMatches(suppliedSecret)
}

func (s *service) secretMatches(supplied string) bool {
	return s.adminSecret != "" && supplied == s.adminSecret
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateCode returns a random 6-digit numeric code from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
