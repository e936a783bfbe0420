package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/movie-ticket-booking/internal/model"
)

// TokenRepo persists/validates refresh tokens (single 'token_hash' column).
type TokenRepo struct{ DB *sqlx.DB }

func NewTokenRepo(db *sqlx.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp.UTC())
	return mapError(err)
}

// ValidateRefresh returns the owning user id if a non-revoked,
// non-expired token exists.  Anything else is ErrNotFound.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (uint64, error) {
	var t model.RefreshToken
	err := r.DB.GetContext(ctx, &t,
		"SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash)
	if err != nil {
		return 0, mapError(err)
	}
	if t.RevokedAt != nil || now.After(t.ExpiresAt) {
		return 0, ErrNotFound
	}
	return t.UserID, nil
}

// RevokeByHash marks a token as revoked and reports whether a live
// token was found.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	if err != nil {
		return false, mapError(err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
