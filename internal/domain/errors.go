package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Authentication outcomes. Login and OTP failures are deliberately uniform
// (one error regardless of which check failed) so responses cannot be used to
// enumerate registered emails. Token failures are split into expired vs
// invalid because clients remediate them differently.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrInactiveAccount    = errors.New("inactive account")
	ErrDeliveryFailure    = errors.New("delivery failure")
)
