package handler

import (
	"context"  // bounded DB calls
	"errors"   // sentinel matching
	"net/http" // status codes
	"strings"  // email normalization
	"time"     // token expiry

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing
	"go.uber.org/zap"             // structured logging

	"github.com/iliyamo/movie-ticket-booking/internal/config"     // token and bcrypt settings
	"github.com/iliyamo/movie-ticket-booking/internal/model"      // user model
	"github.com/iliyamo/movie-ticket-booking/internal/pkg/logger" // app logger
	"github.com/iliyamo/movie-ticket-booking/internal/repository" // repository sentinels
	"github.com/iliyamo/movie-ticket-booking/internal/utils"      // hashing and token issuing
)

// dbTimeout bounds every auth query.
const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
	now    func() time.Time
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, now: time.Now}
}

// ----- DTOs -----

type signupReq struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
	City     *string `json:"city" validate:"omitempty,max=100"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenResp struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresAt    time.Time   `json:"expires_at"`
	RefreshToken string      `json:"refresh_token"`
	RefreshExp   time.Time   `json:"refresh_expires_at"`
	User         *model.User `json:"user,omitempty"`
}

// Signup creates a USER account and returns a token pair.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u := &model.User{
		Name:  strings.TrimSpace(req.Name),
		Email: req.Email,
		Phone: req.Phone,
		City:  req.City,
		Role:  model.RoleUser,
	}
	if err := h.Users.Create(ctx, u, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "create user failed").SetInternal(err)
	}
	logger.Info("user signed up", zap.Uint64("user_id", u.ID))

	resp, err := h.issue(ctx, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "incorrect email or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed").SetInternal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "incorrect email or password")
	}
	if !u.IsActive {
		return echo.NewHTTPError(http.StatusForbidden, "inactive user")
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token: the presented one is revoked and a
// new pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
	uid, err := h.Tokens.ValidateRefresh(ctx, hash, h.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed").SetInternal(err)
	}
	// a concurrent refresh may have won the race
	revoked, err := h.Tokens.RevokeByHash(ctx, hash)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "revoke failed").SetInternal(err)
	}
	if !revoked {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed").SetInternal(err)
	}
	if !u.IsActive {
		return echo.NewHTTPError(http.StatusForbidden, "inactive user")
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		return err
	}
	resp.User = nil
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes one refresh token.  Unknown or already revoked tokens
// are treated as success.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed").SetInternal(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "query failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, u)
}

// issue mints an access token and stores the hash of a fresh refresh
// token.
func (h *AuthHandler) issue(ctx context.Context, u *model.User) (*tokenResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "issue access failed").SetInternal(err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "issue refresh failed").SetInternal(err)
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "save refresh failed").SetInternal(err)
	}
	return &tokenResp{
		AccessToken:  access.Token,
		TokenType:    "bearer",
		ExpiresAt:    access.Exp,
		RefreshToken: refresh.Raw, // raw back to client
		RefreshExp:   refresh.Exp,
		User:         u,
	}, nil
}
