package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/classroom-client/internal/config"
	"github.com/iliyamo/classroom-client/internal/model"
	"github.com/iliyamo/classroom-client/internal/repository"
	"github.com/iliyamo/classroom-client/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Server
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Clock  clockwork.Clock
}

func NewAuthHandler(cfg config.Server, u *repository.UserRepo, t *repository.TokenRepo, clock clockwork.Clock) *AuthHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Clock: clock}
}

func (h *AuthHandler) accessTTL() time.Duration {
	return time.Duration(h.Cfg.AccessTTLMin) * time.Minute
}

func (h *AuthHandler) refreshTTL() time.Duration {
	return time.Duration(h.Cfg.RefreshTTLDays) * 24 * time.Hour
}

// Login: verify credentials and return a new token pair plus the profile.
func (h *AuthHandler) Login(c echo.Context) error {
	var req model.LoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	now := h.Clock.Now()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil || !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return message(c, http.StatusUnauthorized, "Invalid email or password")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, string(u.Role), h.accessTTL(), now)
	if err != nil {
		return message(c, http.StatusInternalServerError, "issue access failed")
	}
	refresh, err := utils.NewRefreshToken(h.refreshTTL(), now)
	if err != nil {
		return message(c, http.StatusInternalServerError, "issue refresh failed")
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return message(c, http.StatusInternalServerError, "save refresh failed")
	}

	return c.JSON(http.StatusOK, model.LoginResponse{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		User:         u.Model(),
	})
}

// refreshFromRequest reads the refresh token from the JSON body, falling
// back to the bearer credential.
func refreshFromRequest(c echo.Context) string {
	var req model.RefreshRequest
	_ = c.Bind(&req)
	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		return raw
	}
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// Refresh validates a refresh token and returns a new access token.  The
// refresh token itself is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := refreshFromRequest(c)
	if raw == "" {
		return message(c, http.StatusUnauthorized, "refresh token required")
	}
	ctx := c.Request().Context()
	now := h.Clock.Now()

	userID, err := h.Tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(raw), now)
	if err != nil {
		return message(c, http.StatusUnauthorized, "invalid refresh token")
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil || !u.IsActive {
		return message(c, http.StatusUnauthorized, "invalid refresh token")
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, string(u.Role), h.accessTTL(), now)
	if err != nil {
		return message(c, http.StatusInternalServerError, "issue access failed")
	}
	return c.JSON(http.StatusOK, model.RefreshResponse{AccessToken: access.Token})
}

// Logout revokes the refresh token in the body.  Without one, a valid
// access token revokes every session of its user.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req model.RefreshRequest
	_ = c.Bind(&req)
	ctx := c.Request().Context()
	now := h.Clock.Now()

	if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash, now); err != nil {
			return message(c, http.StatusUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash, now); err != nil {
			return message(c, http.StatusInternalServerError, "logout failed")
		}
		return message(c, http.StatusOK, "Successfully logged out")
	}

	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return message(c, http.StatusBadRequest, "provide Authorization header or refresh_token")
	}
	claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "), now)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidToken) {
			return message(c, http.StatusUnauthorized, "invalid or expired token")
		}
		return message(c, http.StatusInternalServerError, "logout failed")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, claims.UserID, now); err != nil {
		return message(c, http.StatusInternalServerError, "logout failed")
	}
	return message(c, http.StatusOK, "Successfully logged out")
}
