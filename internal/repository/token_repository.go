package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/avestan/hotel-booking-api/internal/model"
)

// TokenRepo persists revoked access tokens (single 'token_hash' column).
// Logged-out tokens stay blacklisted until their natural expiry; a periodic
// cleanup deletes rows past expiry, standing in for a store-level TTL index.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Revoke records a token hash as invalid until its expiry.
func (r *TokenRepo) Revoke(ctx context.Context, t model.RevokedToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT IGNORE INTO revoked_tokens (token_hash, user_id, expires_at) VALUES (?,?,?)",
		t.TokenHash, t.UserID, t.ExpiresAt)
	return err
}

// IsRevoked reports whether a token hash is currently blacklisted.
func (r *TokenRepo) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM revoked_tokens WHERE token_hash=? AND expires_at > UTC_TIMESTAMP() LIMIT 1",
		tokenHash).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DeleteExpired removes blacklist rows whose tokens have expired anyway.
func (r *TokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM revoked_tokens WHERE expires_at <= UTC_TIMESTAMP()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartCleanup runs DeleteExpired on a ticker until ctx is cancelled. Run it
// in its own goroutine from main.
func (r *TokenRepo) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := r.DeleteExpired(ctx); err != nil {
				log.Printf("token-cleanup: delete expired failed: %v", err)
			} else if n > 0 {
				log.Printf("token-cleanup: purged %d expired tokens", n)
			}
		}
	}
}
