// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"rental_backend/internal/feature/auth/domain/entity"
	"rental_backend/internal/feature/auth/transport/http/dto"
	"rental_backend/internal/feature/auth/usecase"
	jwtmw "rental_backend/internal/platform/jwt"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	Register(ctx context.Context, name, email, password string) (*usecase.AuthResult, error)
	Login(ctx context.Context, email, password, clientIP string) (*usecase.AuthResult, error)
	CurrentUser(ctx context.Context, userID string) (*entity.PublicUser, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth    AuthUsecase
	cookies CookieConfig
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookies: cookies}
}

// Register はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール重複時は409を返却
// - 成功時はセッションCookie付きで201を返却
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.MessageRes{Message: bindingMessage(err)})
		return
	}

	res, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, "register", err)
		return
	}

	h.cookies.set(c, res.Token)
	slog.Info("user registration successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.AuthRes{Message: "registration successful", User: res.User})
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 存在しないメールとパスワード誤りは同じ401とメッセージを返します。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.MessageRes{Message: bindingMessage(err)})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		writeError(c, "login", err)
		return
	}

	h.cookies.set(c, res.Token)
	slog.Info("user login successful", "user_id", res.User.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.AuthRes{Message: "login successful", User: res.User})
}

// CurrentUser returns the safe projection of the session's user.
// It must run behind jwtmw.AuthRequired.
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageRes{Message: "not authenticated"})
		return
	}

	user, err := h.auth.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		// A verified token whose user no longer exists is a server-side inconsistency.
		writeError(c, "current user", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie. The token is taken from the cookie or the
// bearer header, the same way AuthRequired reads it. Unless a deny-list is configured, a copy
// of the token kept elsewhere stays valid until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := jwtmw.TokenFromRequest(c)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		slog.Error("logout revocation failed", "error", err, "remote_addr", c.ClientIP())
	}

	h.cookies.clear(c)
	c.JSON(http.StatusOK, dto.MessageRes{Message: "logged out"})
}
