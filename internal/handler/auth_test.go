package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avestan/hotel-booking-api/internal/config"
	"github.com/avestan/hotel-booking-api/internal/middleware"
	"github.com/avestan/hotel-booking-api/internal/model"
	"github.com/avestan/hotel-booking-api/internal/queue"
	"github.com/avestan/hotel-booking-api/internal/service"
	"github.com/avestan/hotel-booking-api/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		AccessTTLMin:     30,
		RefreshTTLDays:   7,
		BcryptCost:       4, // keep test runs fast
		AppBaseURL:       "http://localhost:8080",
	}
}

func newAuthHandlerForTest(users *fakeUserStore, tokens *fakeTokenStore) *AuthHandler {
	h := NewAuthHandler(testConfig(), users, tokens, service.NewCaptchaVerifier(""))
	h.sendResetMail = func(context.Context, queue.PasswordResetMailEvent) error { return nil }
	return h
}

func registerBody(name, email, password string) string {
	return fmt.Sprintf(`{"name":%q,"email":%q,"password":%q}`, name, email, password)
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	h := newAuthHandlerForTest(users, newFakeTokenStore())

	c, rec := doJSON(echo.New(), http.MethodPost, "/auth/register",
		registerBody("Alice", "Alice@Example.com", "secret123"), nil)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.Equal(t, model.RoleCustomer, resp.Role)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)

	// The access token must carry the new user's id and role.
	claims, err := utils.ParseToken("access-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, claims.UserID)
	assert.Equal(t, model.RoleCustomer, claims.Role)

	// The refresh token is signed with the refresh secret, not the access one.
	_, err = utils.ParseToken("access-secret", resp.RefreshToken)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
	_, err = utils.ParseToken("refresh-secret", resp.RefreshToken)
	assert.NoError(t, err)

	// Password is stored hashed.
	u, err := users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.True(t, utils.VerifyPassword(u.PasswordHash, "secret123"))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	h := newAuthHandlerForTest(users, newFakeTokenStore())

	c, rec := doJSON(echo.New(), http.MethodPost, "/auth/register",
		registerBody("Alice", "alice@example.com", "secret123"), nil)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = doJSON(echo.New(), http.MethodPost, "/auth/register",
		registerBody("Alice Again", "ALICE@example.com", "other456"), nil)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	h := newAuthHandlerForTest(newFakeUserStore(), newFakeTokenStore())

	c, rec := doJSON(echo.New(), http.MethodPost, "/auth/register",
		registerBody("Alice", "", "secret123"), nil)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterAdmin_SetsAdminRole(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	h := newAuthHandlerForTest(users, newFakeTokenStore())

	c, rec := doJSON(echo.New(), http.MethodPost, "/auth/register-admin",
		registerBody("Root", "root@example.com", "secret123"), nil)
	require.NoError(t, h.RegisterAdmin(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.RoleAdmin, resp.Role)

	u, err := users.GetByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	h := newAuthHandlerForTest(users, newFakeTokenStore())
	_, err := users.Create(context.Background(), "Alice", "alice@example.com", "secret123", model.RoleCustomer, 4)
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		c, rec := doJSON(echo.New(), http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"secret123"}`, nil)
		require.NoError(t, h.Login(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp authResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		c, rec := doJSON(echo.New(), http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"wrong"}`, nil)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid email or password")
	})

	t.Run("unknown email", func(t *testing.T) {
		c, rec := doJSON(echo.New(), http.MethodPost, "/auth/login",
			`{"email":"nobody@example.com","password":"secret123"}`, nil)
		require.NoError(t, h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid email or password")
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	h := newAuthHandlerForTest(users, newFakeTokenStore())
	uid, err := users.Create(context.Background(), "Alice", "alice@example.com", "secret123", model.RoleCustomer, 4)
	require.NoError(t, err)

	refresh, err := utils.NewRefreshToken("refresh-secret", uid, 7)
	require.NoError(t, err)

	t.Run("valid refresh token", func(t *testing.T) {
		c, rec := doJSON(echo.New(), http.MethodPost, "/auth/refresh",
			fmt.Sprintf(`{"refreshToken":%q}`, refresh.Token), nil)
		require.NoError(t, h.Refresh(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		claims, err := utils.ParseToken("access-secret", resp.Token)
		require.NoError(t, err)
		assert.Equal(t, uid, claims.UserID)
		assert.Equal(t, model.RoleCustomer, claims.Role)
	})

	t.Run("garbage token", func(t *testing.T) {
		c, rec := doJSON(echo.New(), http.MethodPost, "/auth/refresh",
			`{"refreshToken":"not.a.jwt"}`, nil)
		require.NoError(t, h.Refresh(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		access, err := utils.NewAccessToken("access-secret", uid, model.RoleCustomer, 30)
		require.NoError(t, err)
		c, rec := doJSON(echo.New(), http.MethodPost, "/auth/refresh",
			fmt.Sprintf(`{"refreshToken":%q}`, access.Token), nil)
		require.NoError(t, h.Refresh(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejected after password change", func(t *testing.T) {
		claims, err := utils.ParseToken("refresh-secret", refresh.Token)
		require.NoError(t, err)

		// Mark the password as changed strictly after the token was issued.
		changed := claims.IssuedAt.Add(time.Second)
		users.mu.Lock()
		users.users[uid].PasswordChangedAt = &changed
		users.mu.Unlock()

		c, rec := doJSON(echo.New(), http.MethodPost, "/auth/refresh",
			fmt.Sprintf(`{"refreshToken":%q}`, refresh.Token), nil)
		require.NoError(t, h.Refresh(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLogout_RevokesToken(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	h := newAuthHandlerForTest(users, tokens)

	u := &model.User{ID: 1, Role: model.RoleCustomer}
	exp := time.Now().UTC().Add(30 * time.Minute)

	c, rec := doJSON(echo.New(), http.MethodPost, "/auth/logout", "", u)
	c.Set(middleware.CtxTokenHash, "deadbeef")
	c.Set(middleware.CtxTokenClaim, utils.Claims{UserID: 1, ExpiresAt: exp})
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logged out")

	tokens.mu.Lock()
	defer tokens.mu.Unlock()
	got, ok := tokens.revoked["deadbeef"]
	require.True(t, ok)
	assert.WithinDuration(t, exp, got, time.Second)
}

func TestForgotPassword_UnknownEmailIsIndistinguishable(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	h := newAuthHandlerForTest(users, newFakeTokenStore())

	sent := make(chan queue.PasswordResetMailEvent, 1)
	h.sendResetMail = func(_ context.Context, ev queue.PasswordResetMailEvent) error {
		sent <- ev
		return nil
	}

	c, rec := doJSON(echo.New(), http.MethodPost, "/auth/forgot-password",
		`{"email":"nobody@example.com"}`, nil)
	require.NoError(t, h.ForgotPassword(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), forgotPasswordMessage)

	select {
	case <-sent:
		t.Fatal("no mail event expected for an unknown address")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestForgotPassword_QueuesMailAndStoresHash(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	h := newAuthHandlerForTest(users, newFakeTokenStore())
	uid, err := users.Create(context.Background(), "Alice", "alice@example.com", "secret123", model.RoleCustomer, 4)
	require.NoError(t, err)

	sent := make(chan queue.PasswordResetMailEvent, 1)
	h.sendResetMail = func(_ context.Context, ev queue.PasswordResetMailEvent) error {
		sent <- ev
		return nil
	}

	c, rec := doJSON(echo.New(), http.MethodPost, "/auth/forgot-password",
		`{"email":"alice@example.com"}`, nil)
	require.NoError(t, h.ForgotPassword(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), forgotPasswordMessage)

	var ev queue.PasswordResetMailEvent
	select {
	case ev = <-sent:
	case <-time.After(time.Second):
		t.Fatal("mail event was never queued")
	}
	assert.Equal(t, uid, ev.UserID)
	assert.Equal(t, "alice@example.com", ev.Email)

	// The link carries the raw token; the store only ever sees its hash.
	const prefix = "http://localhost:8080/auth/reset-password/"
	require.True(t, len(ev.ResetURL) > len(prefix) && ev.ResetURL[:len(prefix)] == prefix)
	raw := ev.ResetURL[len(prefix):]
	assert.Len(t, raw, 64)

	u, err := users.GetByID(context.Background(), uid)
	require.NoError(t, err)
	require.NotNil(t, u.ResetTokenHash)
	assert.Equal(t, utils.HashTokenRaw(raw), *u.ResetTokenHash)
	assert.NotEqual(t, raw, *u.ResetTokenHash)
	require.NotNil(t, u.ResetExpiresAt)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), *u.ResetExpiresAt, 5*time.Second)
}

func TestResetPassword(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	h := newAuthHandlerForTest(users, newFakeTokenStore())
	uid, err := users.Create(context.Background(), "Alice", "alice@example.com", "secret123", model.RoleCustomer, 4)
	require.NoError(t, err)

	raw, err := utils.NewResetToken()
	require.NoError(t, err)
	require.NoError(t, users.SetResetToken(context.Background(), uid,
		utils.HashTokenRaw(raw), time.Now().UTC().Add(time.Hour)))

	resetWith := func(token, body string) (int, string) {
		c, rec := doJSON(echo.New(), http.MethodPut, "/auth/reset-password/"+token, body, nil)
		c.SetParamNames("token")
		c.SetParamValues(token)
		require.NoError(t, h.ResetPassword(c))
		return rec.Code, rec.Body.String()
	}

	t.Run("missing password", func(t *testing.T) {
		code, body := resetWith(raw, `{}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body, "Password is required")
	})

	t.Run("bogus token", func(t *testing.T) {
		code, body := resetWith("0000000000000000000000000000000000000000000000000000000000000000",
			`{"password":"newpass456"}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body, "Token is invalid or has expired")
	})

	t.Run("success", func(t *testing.T) {
		code, body := resetWith(raw, `{"password":"newpass456"}`)
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "Password has been reset successfully")

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &resp))
		claims, err := utils.ParseToken("access-secret", resp.Token)
		require.NoError(t, err)
		assert.Equal(t, uid, claims.UserID)

		u, err := users.GetByID(context.Background(), uid)
		require.NoError(t, err)
		assert.True(t, utils.VerifyPassword(u.PasswordHash, "newpass456"))
		assert.Nil(t, u.ResetTokenHash)
	})

	t.Run("token single use", func(t *testing.T) {
		code, body := resetWith(raw, `{"password":"thirdpass789"}`)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body, "Token is invalid or has expired")
	})
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	h := newAuthHandlerForTest(users, newFakeTokenStore())
	uid, err := users.Create(context.Background(), "Alice", "alice@example.com", "secret123", model.RoleCustomer, 4)
	require.NoError(t, err)

	raw, err := utils.NewResetToken()
	require.NoError(t, err)
	require.NoError(t, users.SetResetToken(context.Background(), uid,
		utils.HashTokenRaw(raw), time.Now().UTC().Add(-time.Minute)))

	c, rec := doJSON(echo.New(), http.MethodPut, "/auth/reset-password/"+raw,
		`{"password":"newpass456"}`, nil)
	c.SetParamNames("token")
	c.SetParamValues(raw)
	require.NoError(t, h.ResetPassword(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is invalid or has expired")
}
