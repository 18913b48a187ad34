// Package middleware provides shared request processing for handlers.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avestan/hotel-booking-api/internal/model"
	"github.com/avestan/hotel-booking-api/internal/repository"
	"github.com/avestan/hotel-booking-api/internal/utils"
)

// Context keys set by Protect for downstream handlers.
const (
	CtxUser       = "user"
	CtxTokenHash  = "token_hash"
	CtxTokenClaim = "token_claims"
)

// UserLoader is the slice of the user repository the auth gate needs.
type UserLoader interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RevocationChecker answers whether an access token has been blacklisted.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// Protect returns middleware that validates a Bearer access token, loads the
// referenced user and attaches it to the request context. A token is
// rejected when it is absent or malformed, fails signature or expiry checks,
// references a deleted user, was issued before the user's last password
// change, or has been revoked by logout.
func Protect(secret string, users UserLoader, tokens RevocationChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized - No token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized - Invalid token"})
			}

			ctx := c.Request().Context()
			hash := utils.HashTokenRaw(raw)
			if revoked, err := tokens.IsRevoked(ctx, hash); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
			} else if revoked {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized - Invalid token"})
			}

			u, err := users.GetByID(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized - user not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
			}

			if u.ChangedPasswordAfter(claims.IssuedAt) {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"message": "Token expired due to password change. Please login again.",
				})
			}

			c.Set(CtxUser, &u)
			c.Set(CtxTokenHash, hash)
			c.Set(CtxTokenClaim, claims)
			return next(c)
		}
	}
}

// CurrentUser extracts the authenticated user placed in context by Protect.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(CtxUser).(*model.User)
	return u, ok
}
