package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avestan/hotel-booking-api/internal/queue"
	"github.com/avestan/hotel-booking-api/internal/repository"
	"github.com/avestan/hotel-booking-api/internal/utils"
)

// resetTokenTTL is how long a password-reset token stays redeemable.
const resetTokenTTL = time.Hour

// forgotPasswordMessage is returned regardless of whether the email exists,
// so the endpoint cannot be used to enumerate accounts.
const forgotPasswordMessage = "If that email address is in our system, we have sent a password reset link"

type forgotPasswordReq struct {
	Email          string `json:"email"`
	RecaptchaToken string `json:"recaptchaToken"`
}

type resetPasswordReq struct {
	Password string `json:"password"`
}

// ForgotPassword starts the reset flow: it generates a high-entropy token,
// stores only its hash plus a one-hour expiry, and queues the raw token for
// out-of-band delivery. The route additionally sits behind a per-IP rate
// limiter and optional CAPTCHA verification.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email is required"})
	}

	if !h.Captcha.Verify(c.Request().Context(), req.RecaptchaToken, c.RealIP()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "reCAPTCHA verification failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Same response as the success path.
			return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordMessage})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	raw, err := utils.NewResetToken()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	expiresAt := time.Now().UTC().Add(resetTokenTTL)
	if err := h.Users.SetResetToken(ctx, u.ID, utils.HashTokenRaw(raw), expiresAt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	ev := queue.PasswordResetMailEvent{
		UserID:      u.ID,
		Email:       u.Email,
		Name:        u.Name,
		ResetURL:    h.Cfg.AppBaseURL + "/auth/reset-password/" + raw,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	// Mail delivery is best-effort; a broker outage must not break the flow
	// or leak anything to the caller.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.sendResetMail(ctx, ev); err != nil {
			log.Printf("forgot-password: queue reset mail failed: %v", err)
		}
	}()

	return c.JSON(http.StatusOK, echo.Map{"message": forgotPasswordMessage})
}

// ResetPassword redeems a reset token: the presented raw token is hashed and
// matched against the stored hash, the expiry checked, and on success the
// password replaced (which re-triggers the password-change timestamp and so
// invalidates outstanding tokens). A fresh access token is returned.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	raw := strings.TrimSpace(c.Param("token"))
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Token is invalid or has expired"})
	}
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByResetTokenHash(ctx, utils.HashTokenRaw(raw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Token is invalid or has expired"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	if err := h.Users.UpdatePassword(ctx, u.ID, req.Password, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Password has been reset successfully",
		"token":   access.Token,
	})
}
