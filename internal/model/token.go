package model

import "time"

// RevokedToken models an entry in the `revoked_tokens` table. Logging out
// blacklists the presented access token until its natural expiry; only the
// SHA-256 hash of the token is stored. Rows past ExpiresAt are deleted by a
// periodic cleanup job, standing in for a store-level TTL index.
type RevokedToken struct {
	ID        uint64    // revoked_tokens.id
	TokenHash string    // revoked_tokens.token_hash
	UserID    uint64    // revoked_tokens.user_id
	ExpiresAt time.Time // revoked_tokens.expires_at
	CreatedAt time.Time // revoked_tokens.created_at
}
