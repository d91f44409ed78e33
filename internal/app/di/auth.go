// Package di はアプリケーションの依存関係を組み立てます。
package di

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	authhandler "rental_backend/internal/feature/auth/transport/handler"
	"rental_backend/internal/feature/auth/usecase"
	"rental_backend/internal/platform/config"
	jwtmw "rental_backend/internal/platform/jwt"
	"rental_backend/internal/platform/password"
	"rental_backend/internal/platform/ratelimiter"
	"rental_backend/internal/platform/session"
)

const (
	loginLimiterPrefix = "auth:login"
	denyListPrefix     = "auth"
)

// Auth holds what the router needs from the auth feature.
type Auth struct {
	Handler  *authhandler.AuthHandler
	Verifier *jwtmw.Verifier
	// Revocations is nil unless the deny-list is enabled.
	Revocations jwtmw.RevocationChecker
}

// NewAuth wires the auth feature. rdb may be nil.
func NewAuth(cfg *config.Config, users usecase.UserRepository, rdb *redis.Client) (*Auth, error) {
	hasher, err := password.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}
	issuer := jwtmw.NewIssuer(cfg.JWTSecret, cfg.SessionTTL)
	verifier := jwtmw.NewVerifier(cfg.JWTSecret)

	opts := []usecase.Option{usecase.WithLoginLimiter(NewLoginLimiter(cfg, rdb))}

	var revocations jwtmw.RevocationChecker
	if denyList := NewDenyList(cfg, rdb, verifier); denyList != nil {
		opts = append(opts, usecase.WithTokenRevoker(denyList))
		revocations = denyList
	}

	authUC := usecase.NewAuthUsecase(users, hasher, issuer, opts...)
	handler := authhandler.NewAuthHandler(authUC, authhandler.CookieConfig{
		TTL:    issuer.TTL(),
		Secure: cfg.IsProduction(),
	})

	return &Auth{Handler: handler, Verifier: verifier, Revocations: revocations}, nil
}

// NewLoginLimiter returns a Redis-backed limiter when Redis is available.
// Otherwise, it falls back to an in-process limiter.
func NewLoginLimiter(cfg *config.Config, rdb *redis.Client) usecase.LoginLimiter {
	if rdb != nil {
		return ratelimiter.NewRedisLimiter(rdb, loginLimiterPrefix, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow)
	}
	return ratelimiter.NewRateLimiter(cfg.LoginMaxAttempts, cfg.LoginAttemptWindow)
}

// NewDenyList returns nil unless SESSION_DENYLIST is on and Redis is up.
func NewDenyList(cfg *config.Config, rdb *redis.Client, verifier *jwtmw.Verifier) *session.DenyList {
	if !cfg.SessionDenyList {
		return nil
	}
	if rdb == nil {
		slog.Warn("SESSION_DENYLIST is set but Redis is unavailable; logout will not revoke tokens")
		return nil
	}
	return session.NewDenyList(rdb, denyListPrefix, verifier)
}
