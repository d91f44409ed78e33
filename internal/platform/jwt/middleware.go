package jwtmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName is the cookie carrying the session token.
	CookieName = "token"

	// ContextUserID is the gin context key holding the authenticated user ID.
	ContextUserID = "userID"

	// ContextClaims is the gin context key holding the verified *Claims.
	ContextClaims = "claims"
)

// RevocationChecker reports whether a token ID was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthRequired returns a Gin middleware function that validates the session
// token and restricts access to authenticated users only.
// revoked may be nil, in which case tokens are accepted until they expire.
func AuthRequired(verifier *Verifier, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifier.Verify(TokenFromRequest(c))
		if err != nil {
			slog.Info("session rejected", "error", err, "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": rejectionMessage(err)})
			return
		}

		if revoked != nil && claims.ID != "" {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				slog.Error("revocation check failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid session"})
				return
			}
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// UserID returns the authenticated user ID set by AuthRequired.
func UserID(c *gin.Context) (string, bool) {
	id := c.GetString(ContextUserID)
	return id, id != ""
}

// TokenFromRequest prefers the session cookie and falls back to a bearer
// header for non-browser clients.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(CookieName); err == nil && token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func rejectionMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "not authenticated"
	case errors.Is(err, ErrExpiredToken):
		return "session expired, please log in again"
	default:
		return "invalid session"
	}
}
