package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken means no token was presented.
	ErrMissingToken = errors.New("missing token")

	// ErrMalformedToken covers unparsable tokens, bad signatures, wrong
	// algorithms and missing claims.
	ErrMalformedToken = errors.New("malformed token")

	// ErrExpiredToken means the signature is valid but exp has passed.
	ErrExpiredToken = errors.New("token expired")
)

// Verifier validates tokens minted by an Issuer sharing the same secret.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a verifier for secret.
func NewVerifier(secret string, opts ...Option) *Verifier {
	o := buildOptions(opts)
	return &Verifier{secret: []byte(secret), now: o.now}
}

// Verify checks the signature first and the expiry second, so a tampered
// token is always reported as malformed, even when it is also expired.
func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMissingToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		// 署名末尾の未使用ビットを書き換えたトークンも拒否する
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(v.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: subject is empty", ErrMalformedToken)
	}

	return claims, nil
}
