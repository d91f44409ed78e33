// Package session keeps server-side session state in Redis.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	jwtmw "rental_backend/internal/platform/jwt"
)

// DenyList records logged-out token IDs until the tokens would have expired.
// It is optional: without it, logout only clears the client cookie.
type DenyList struct {
	client   *redis.Client
	prefix   string
	verifier *jwtmw.Verifier
}

// NewDenyList creates a new DenyList instance.
func NewDenyList(client *redis.Client, prefix string, verifier *jwtmw.Verifier) *DenyList {
	return &DenyList{
		client:   client,
		prefix:   prefix,
		verifier: verifier,
	}
}

// revokedKey returns the Redis key for a revoked token ID.
func (r *DenyList) revokedKey(tokenID string) string {
	return fmt.Sprintf("%s:revoked:%s", r.prefix, tokenID)
}

// Revoke denies token for the rest of its lifetime. Tokens that are already
// invalid or expired need no entry and are ignored.
func (r *DenyList) Revoke(ctx context.Context, token string) error {
	claims, err := r.verifier.Verify(token)
	if err != nil {
		return nil
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, r.revokedKey(claims.ID), claims.Subject, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store revoked token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked.
func (r *DenyList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
