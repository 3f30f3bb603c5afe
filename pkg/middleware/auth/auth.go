package middleware

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	CtxUserID   = "user_id"
	CtxUsername = "username"

	claimsKey = "access_claims"
)

const msgUnauthenticated = "authentication credentials were not provided or are invalid"

// Auth validates access tokens from the Authorization header or the access cookie.
type Auth struct {
	JWTSecret []byte

	mw echo.MiddlewareFunc
}

func NewAuth(secret []byte) *Auth {
	a := &Auth{JWTSecret: secret}
	a.mw = echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + tokens.AccessCookie,
		ParseTokenFunc: func(c echo.Context, raw string) (any, error) {
			return tokens.AccessClaimsFromToken(raw, a.JWTSecret)
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(claimsKey).(*tokens.AccessClaims)
			if !ok {
				return
			}
			if id, err := claims.UserID(); err == nil {
				c.Set(CtxUserID, id)
				c.Set(CtxUsername, claims.Username)
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("auth_rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthenticated)
		},
	})
	return a
}

func (a *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return a.mw(next)
}

// UserID returns the authenticated user id set by RequireAuth.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(CtxUserID).(uint)
	return id, ok && id != 0
}
