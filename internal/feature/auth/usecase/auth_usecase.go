package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"rental_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8

	// maxPasswordBytes はbcryptが受け付ける入力の上限（文字数ではなくバイト数）です。
	maxPasswordBytes = 72

	// fallbackDummyHash is compared against when the email is unknown and the
	// hasher could not produce a dummy hash of its own.
	fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// UserRepository abstracts the persistence layer for user entities.
// Interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user. It returns ErrEmailAlreadyExists when the
	// email is already taken, including when a concurrent insert wins the race.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail returns ErrUserNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID returns ErrUserNotFound when no user has the ID.
	FindByID(ctx context.Context, id string) (*entity.User, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify reports whether plaintext matches hash. Malformed hashes yield false.
	Verify(plaintext, hash string) bool
}

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	GenerateToken(userID, email, name string) (string, error)
}

// TokenRevoker records a token as logged out. Implementations may be absent;
// without one, logout only clears the client cookie.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string) error
}

// LoginLimiter throttles login attempts per key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  entity.PublicUser
	Token string
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users   UserRepository
	hasher  PasswordHasher
	issuer  TokenIssuer
	limiter LoginLimiter
	revoker TokenRevoker

	dummyOnce sync.Once
	dummyHash string
}

// Option configures optional collaborators of the auth usecase.
type Option func(*authUsecase)

// WithLoginLimiter enables login throttling.
func WithLoginLimiter(l LoginLimiter) Option {
	return func(u *authUsecase) { u.limiter = l }
}

// WithTokenRevoker enables server-side revocation on logout.
func WithTokenRevoker(r TokenRevoker) Option {
	return func(u *authUsecase) { u.revoker = r }
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, hasher PasswordHasher, issuer TokenIssuer, opts ...Option) *authUsecase {
	u := &authUsecase{
		users:  users,
		hasher: hasher,
		issuer: issuer,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &FieldError{Field: "password", Reason: fmt.Sprintf("must be at least %d characters long", minPasswordLength)}
	}
	if len(password) > maxPasswordBytes {
		return &FieldError{Field: "password", Reason: fmt.Sprintf("must be at most %d bytes long", maxPasswordBytes)}
	}
	return nil
}

func required(field, value string) error {
	if value == "" {
		return &FieldError{Field: field, Reason: "is required"}
	}
	return nil
}

// Register creates an account and signs the new user in.
func (u *authUsecase) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	for _, check := range []error{
		required("name", name),
		required("email", email),
		required("password", password),
	} {
		if check != nil {
			return nil, check
		}
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	// 事前チェックは早期にConflictを返すためのもので、一意性の保証はストアのユニーク制約が担う
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := entity.NewUser(name, email, hashed)
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u.signIn(user)
}

// Login はユーザーを認証し、成功時にセッショントークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもパスワード比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password, clientIP string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := required("email", email); err != nil {
		return nil, err
	}
	if err := required("password", password); err != nil {
		return nil, err
	}

	key := email + "|" + clientIP
	if u.limiter != nil {
		allowed, err := u.limiter.Allow(ctx, key)
		if err != nil {
			// リミッター障害時はログインを止めない
			slog.WarnContext(ctx, "login limiter unavailable", "error", err)
		} else if !allowed {
			return nil, ErrTooManyAttempts
		}
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	passwordHash := u.dummy()
	if user != nil {
		passwordHash = user.Password
	}

	// 常にパスワードを検証する
	matched := u.hasher.Verify(password, passwordHash)
	if user == nil || !matched {
		return nil, ErrInvalidCredentials
	}

	if u.limiter != nil {
		if err := u.limiter.Reset(ctx, key); err != nil {
			slog.WarnContext(ctx, "failed to reset login limiter", "error", err)
		}
	}

	return u.signIn(user)
}

// CurrentUser resolves the subject of a verified session.
func (u *authUsecase) CurrentUser(ctx context.Context, userID string) (*entity.PublicUser, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

// Logout revokes the token when a revoker is configured. Without one, a copy
// of the token stays valid until it expires.
func (u *authUsecase) Logout(ctx context.Context, token string) error {
	if u.revoker == nil || token == "" {
		return nil
	}
	if err := u.revoker.Revoke(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (u *authUsecase) signIn(user *entity.User) (*AuthResult, error) {
	token, err := u.issuer.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{User: user.Public(), Token: token}, nil
}

// dummy returns a hash produced by the configured hasher, so an unknown email
// costs the same as a wrong password.
func (u *authUsecase) dummy() string {
	u.dummyOnce.Do(func() {
		h, err := u.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			h = fallbackDummyHash
		}
		u.dummyHash = h
	})
	return u.dummyHash
}
