package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-places-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload. Subject carries the user's email.
type Claims struct {
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a single process-wide secret
// loaded once at startup. There is no key rotation and no revocation: a
// token is valid until its expiry.
type Provider struct {
	secret []byte
	expiry time.Duration
}

func NewProvider(secret string, expiry time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &Provider{secret: []byte(secret), expiry: expiry}, nil
}

// Sign mints a token for the given subject, expiring after the configured TTL.
func (p *Provider) Sign(subject string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify checks signature then expiry and returns the embedded subject.
// Expired tokens fail with domain.ErrTokenExpired; every other failure
// (forged signature, malformed token, unexpected algorithm, empty subject)
// is reported uniformly as domain.ErrTokenInvalid.
func (p *Provider) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("verify token: %w", domain.ErrTokenExpired)
		}
		return "", fmt.Errorf("verify token: %w", domain.ErrTokenInvalid)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("verify token: %w", domain.ErrTokenInvalid)
	}
	return claims.Subject, nil
}
