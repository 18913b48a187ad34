// Package utils provides helpers for token creation, verification and hashing.
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a presented token fails signature,
// structure or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed short-lived HS256 JWT plus its expiry. It is sent
// in the Authorization header on protected endpoints.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// Claims are the verified contents of an access or refresh token. IssuedAt is
// compared against the user's password-change timestamp by the auth gate.
type Claims struct {
	UserID    uint64
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewAccessToken builds and signs an HS256 JWT carrying the user ID, role,
// issue time and expiry. ttlMin is the token lifetime in minutes.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken signs a long-lived HS256 JWT under the refresh secret. It
// carries the user identifier and issue time only; the role is re-read from
// the store when the token is redeemed.
func NewRefreshToken(secret string, userID uint64, ttlDays int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseToken verifies an HS256 JWT against the given secret and extracts its
// claims. Expired or tampered tokens yield ErrInvalidToken.
func ParseToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	var out Claims
	switch sub := mc["sub"].(type) {
	case float64:
		out.UserID = uint64(sub)
	default:
		return Claims{}, ErrInvalidToken
	}
	if role, ok := mc["role"].(string); ok {
		out.Role = role
	}
	if iat, ok := mc["iat"].(float64); ok {
		out.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := mc["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return out, nil
}

// NewResetToken returns a high-entropy random token for the password-reset
// flow. The raw value is mailed to the user; only its SHA-256 hash is stored.
func NewResetToken() (string, error) {
	return randomHex(32) // 32 bytes -> 64 hex chars
}

// HashTokenRaw returns the SHA-256 hash of a raw token as a hex string.
// Storing only the hash keeps stolen database rows useless on their own.
func HashTokenRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
