// Package jwtmw issues and verifies signed session tokens and provides the
// gin middleware that gates authenticated routes.
package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of a session token. The subject is the user ID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Subject identifies who a token is issued for.
type Subject struct {
	UserID string
	Email  string
	Name   string
}

// Option configures an Issuer or Verifier.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now. Tests use it to pin issuance and expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Issuer mints HS256-signed session tokens.
type Issuer struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewIssuer creates an issuer signing with secret. expiration is the TTL
// used by GenerateToken.
func NewIssuer(secret string, expiration time.Duration, opts ...Option) *Issuer {
	o := buildOptions(opts)
	return &Issuer{
		secret:     []byte(secret),
		expiration: expiration,
		now:        o.now,
	}
}

// TTL returns the lifetime of tokens minted by GenerateToken.
func (g *Issuer) TTL() time.Duration {
	return g.expiration
}

// GenerateToken issues a token with the default TTL.
func (g *Issuer) GenerateToken(userID, email, name string) (string, error) {
	return g.Issue(Subject{UserID: userID, Email: email, Name: name}, g.expiration)
}

// Issue signs a token for sub that expires at iat + ttl. iat is the issue
// time truncated to whole seconds, so the token never expires before it.
func (g *Issuer) Issue(sub Subject, ttl time.Duration) (string, error) {
	if sub.UserID == "" {
		return "", errors.New("subject user id is empty")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %v", ttl)
	}

	// NumericDateは秒精度のため、発行時刻を秒に切り捨ててiatとexpの差をちょうどttlにする
	now := g.now().Truncate(time.Second)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: sub.Email,
		Name:  sub.Name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
