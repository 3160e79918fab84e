package postgresql

import (
	"context"
	"time"

	"github.com/hrleave/leave-backend-go/internal/domain/auth"
	"github.com/hrleave/leave-backend-go/internal/pkg/database"
)

type refreshTokenRepositoryImpl struct {
	db *database.DB
}

func NewRefreshTokenRepository(db *database.DB) auth.RefreshTokenRepository {
	return &refreshTokenRepositoryImpl{db: db}
}

// Store implements auth.RefreshTokenRepository.
func (r *refreshTokenRepositoryImpl) Store(ctx context.Context, userID, tokenHash string, expiresAtUnix int64) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
		VALUES (uuidv7(), $1, $2, $3)
	`

	_, err := q.Exec(ctx, query, userID, tokenHash, time.Unix(expiresAtUnix, 0))
	return err
}

// Exists implements auth.RefreshTokenRepository. Expired tokens count
// as absent even before DeleteExpired sweeps them.
func (r *refreshTokenRepositoryImpl) Exists(ctx context.Context, tokenHash string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM refresh_tokens
			WHERE token_hash = $1 AND expires_at > NOW()
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, tokenHash).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Revoke implements auth.RefreshTokenRepository.
func (r *refreshTokenRepositoryImpl) Revoke(ctx context.Context, tokenHash string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	return err
}

// RevokeAllForUser implements auth.RefreshTokenRepository.
func (r *refreshTokenRepositoryImpl) RevokeAllForUser(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	return err
}

// DeleteExpired implements auth.RefreshTokenRepository.
func (r *refreshTokenRepositoryImpl) DeleteExpired(ctx context.Context, nowUnix int64) (int64, error) {
	q := GetQuerier(ctx, r.db)

	result, err := q.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= $1`, time.Unix(nowUnix, 0))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
