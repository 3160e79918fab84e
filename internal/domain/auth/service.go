package auth

import (
	"context"

	"github.com/hrleave/leave-backend-go/internal/domain/user"
)

type Service interface {
	// Register creates the user and initializes the current year's leave
	// balances in the same transaction.
	Register(ctx context.Context, req RegisterRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Me(ctx context.Context, userID string) (user.UserResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

// RefreshTokenRepository stores issued refresh tokens server side so
// logout can revoke them before their natural expiry.
type RefreshTokenRepository interface {
	Store(ctx context.Context, userID, tokenHash string, expiresAtUnix int64) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, nowUnix int64) (int64, error)
}
