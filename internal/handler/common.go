// Package handler implements the HTTP endpoints. Handlers depend on small
// store interfaces rather than concrete repositories so tests can substitute
// in-memory fakes.
package handler

import (
	"context"
	"time"

	"github.com/avestan/hotel-booking-api/internal/model"
)

// UserStore is the user persistence surface the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, name, email, password, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)
	SetResetToken(ctx context.Context, id uint64, tokenHash string, expiresAt time.Time) error
	GetByResetTokenHash(ctx context.Context, tokenHash string) (model.User, error)
	UpdatePassword(ctx context.Context, id uint64, password string, cost int) error
}

// TokenStore records revoked access tokens.
type TokenStore interface {
	Revoke(ctx context.Context, t model.RevokedToken) error
}

// RoomStore is the room persistence surface of the catalog endpoints.
type RoomStore interface {
	Create(ctx context.Context, rm *model.Room) error
	GetByID(ctx context.Context, id uint64) (model.Room, error)
	ListAll(ctx context.Context) ([]model.Room, error)
	Update(ctx context.Context, rm *model.Room) error
	Delete(ctx context.Context, id uint64) error
}
