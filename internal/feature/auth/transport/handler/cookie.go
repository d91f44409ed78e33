package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	jwtmw "rental_backend/internal/platform/jwt"
)

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	// TTL must equal the token TTL so cookie and token expire together.
	TTL time.Duration
	// Secure is set in production.
	Secure bool
}

func (cfg CookieConfig) set(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     jwtmw.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.TTL / time.Second),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (cfg CookieConfig) clear(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     jwtmw.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
