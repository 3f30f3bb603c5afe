package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	user, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("register_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, clientMessage(err, service.ErrValidation))
		}
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create user")
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.RegisterResponse{
		Msg: "user created",
		User: transport.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}

func (h *AuthHTTP) Token(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.token")

	var req transport.TokenRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("token_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("token_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			l.Warn("token_error", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "no active account found with the given credentials")
		}
		l.Error("token_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue tokens")
	}

	setAuthCookies(c, res)
	l.Info("token_success")
	return c.JSON(http.StatusOK, transport.TokenResponse{Access: res.AccessToken, Refresh: res.RefreshToken})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("refresh_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Refresh == "" {
		if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
			req.Refresh = ck.Value
		}
	}
	if req.Refresh == "" {
		l.Warn("refresh_error", "status", 400, "reason", "missing refresh token")
		return echo.NewHTTPError(http.StatusBadRequest, "refresh: this field is required")
	}

	res, err := h.Svc.Refresh(ctx, req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			clearAuthCookies(c)
			l.Warn("refresh_error", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "token is invalid or expired")
		}
		l.Error("refresh_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot refresh tokens")
	}

	setAuthCookies(c, res)
	l.Info("refresh_success")
	return c.JSON(http.StatusOK, transport.TokenResponse{Access: res.AccessToken, Refresh: res.RefreshToken})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("logout_bind_error", "reason", "invalid body, using cookie", "error", err)
		req = transport.RefreshRequest{}
	}
	if req.Refresh == "" {
		if ck, err := c.Cookie(tokens.RefreshCookie); err == nil {
			req.Refresh = ck.Value
		}
	}

	clearAuthCookies(c)
	if err := h.Svc.Logout(ctx, req.Refresh); err != nil {
		l.Error("logout_error", "status", 500, "reason", "cannot revoke refresh token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot log out")
	}

	l.Info("logout_success")
	return c.JSON(http.StatusOK, transport.MessageResponse{Msg: "logged out"})
}

func setAuthCookies(c echo.Context, res *service.LoginResult) {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, res.RefreshToken, "/", res.RefreshExp))
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}
