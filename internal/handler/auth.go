package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avestan/hotel-booking-api/internal/config"
	"github.com/avestan/hotel-booking-api/internal/middleware"
	"github.com/avestan/hotel-booking-api/internal/model"
	"github.com/avestan/hotel-booking-api/internal/queue"
	"github.com/avestan/hotel-booking-api/internal/repository"
	"github.com/avestan/hotel-booking-api/internal/service"
	"github.com/avestan/hotel-booking-api/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Users   UserStore
	Tokens  TokenStore
	Captcha *service.CaptchaVerifier

	// sendResetMail is swapped out in tests; defaults to the queue publisher.
	sendResetMail func(ctx context.Context, ev queue.PasswordResetMailEvent) error
}

func NewAuthHandler(cfg config.Config, users UserStore, tokens TokenStore, captcha *service.CaptchaVerifier) *AuthHandler {
	return &AuthHandler{
		Cfg:           cfg,
		Users:         users,
		Tokens:        tokens,
		Captcha:       captcha,
		sendResetMail: service.PublishPasswordResetMail,
	}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type authResp struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) issueTokens(userID uint64, role string) (access, refresh utils.AccessToken, err error) {
	access, err = utils.NewAccessToken(h.Cfg.JWTSecret, userID, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return
	}
	refresh, err = utils.NewRefreshToken(h.Cfg.JWTRefreshSecret, userID, h.Cfg.RefreshTTLDays)
	return
}

// Register creates a customer account and returns tokens immediately. The
// role is always customer here; admins are created via RegisterAdmin.
func (h *AuthHandler) Register(c echo.Context) error {
	return h.register(c, model.RoleCustomer)
}

// RegisterAdmin creates an admin account. The route is gated by the admin
// middleware, so only existing admins reach this handler.
func (h *AuthHandler) RegisterAdmin(c echo.Context) error {
	return h.register(c, model.RoleAdmin)
}

func (h *AuthHandler) register(c echo.Context, role string) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Name, email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "User already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	access, refresh, err := h.issueTokens(uid, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	return c.JSON(http.StatusCreated, authResp{
		ID:           uid,
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		Token:        access.Token,
		RefreshToken: refresh.Token,
	})
}

// Login verifies credentials and returns a fresh token pair. Unknown email
// and wrong password produce the same response.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
	}

	access, refresh, err := h.issueTokens(u.ID, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}

	return c.JSON(http.StatusOK, authResp{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Token:        access.Token,
		RefreshToken: refresh.Token,
	})
}

// Refresh exchanges a valid refresh token for a new access token without
// rotating the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "refreshToken is required"})
	}

	claims, err := utils.ParseToken(h.Cfg.JWTRefreshSecret, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid refresh token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid refresh token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	if u.ChangedPasswordAfter(claims.IssuedAt) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid refresh token"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": access.Token})
}

// Logout blacklists the presented access token until its natural expiry. The
// route runs behind Protect, which leaves the token hash and claims in the
// request context.
func (h *AuthHandler) Logout(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	hash, _ := c.Get(middleware.CtxTokenHash).(string)
	claims, _ := c.Get(middleware.CtxTokenClaim).(utils.Claims)
	if hash == "" || claims.ExpiresAt.IsZero() {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rt := model.RevokedToken{TokenHash: hash, UserID: u.ID, ExpiresAt: claims.ExpiresAt}
	if err := h.Tokens.Revoke(ctx, rt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Not authorized"})
	}
	return c.JSON(http.StatusOK, u)
}

// ListUsers returns every user, password hashes excluded. Admin only.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
	}
	return c.JSON(http.StatusOK, users)
}
