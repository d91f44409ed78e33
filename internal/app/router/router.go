package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"rental_backend/internal/app/di"
	jwtmw "rental_backend/internal/platform/jwt"
	platformhandler "rental_backend/internal/platform/http/handler"
)

// NewRouter builds the gin engine. allowedOrigins lists the web front-ends
// allowed to send the session cookie cross-origin; empty disables CORS.
func NewRouter(auth *di.Auth, health *platformhandler.HealthHandler, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.GET("/readyz", health.Ready)
	// 新規ユーザー登録（セッションCookieも発行）
	r.POST("/register", auth.Handler.Register)
	// ログイン（JWT 発行）
	r.POST("/login", auth.Handler.Login)
	// ログアウト（Cookie削除）
	r.POST("/logout", auth.Handler.Logout)

	// 認証必須のルート
	// → Cookie（またはBearerヘッダー）に有効なJWTが必要になる
	authed := r.Group("/")
	authed.Use(jwtmw.AuthRequired(auth.Verifier, auth.Revocations))
	{
		authed.GET("/current-user", auth.Handler.CurrentUser)
	}

	return r
}
