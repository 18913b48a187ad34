package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avestan/hotel-booking-api/internal/model"
	"github.com/avestan/hotel-booking-api/internal/repository"
)

// RoleLoader is the slice of the user repository the admin check needs.
type RoleLoader interface {
	GetRoleByID(ctx context.Context, id uint64) (string, error)
}

// AdminOnly gates admin-only operations. The request context is trusted for
// identity only: the role is re-read from the store rather than taken from
// the resolved user, so a stale or tampered in-memory role cannot grant
// admin access.
func AdminOnly(users RoleLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
			}
			role, err := users.GetRoleByID(c.Request().Context(), u.ID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusForbidden, echo.Map{"message": "Not authorized as admin"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error verifying admin status"})
			}
			if role != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "Not authorized as admin"})
			}
			return next(c)
		}
	}
}
