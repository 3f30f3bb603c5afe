package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var secret = []byte("test-secret")

func protected(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	a := NewAuth(secret)
	e.GET("/me", func(c echo.Context) error {
		id, ok := UserID(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusOK, map[string]any{"id": id, "username": c.Get(CtxUsername)})
	}, a.RequireAuth)
	return e
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	now := time.Now()
	valid, _, err := signAccess(t, 5, now, time.Minute)
	require.NoError(t, err)
	expired, _, err := signAccess(t, 5, now.Add(-time.Hour), time.Minute)
	require.NoError(t, err)
	refresh, _, err := tokens.SignRefresh(5, tokens.NewJTI(), secret, now, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+valid) }, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: tokens.AccessCookie, Value: valid}) }, http.StatusOK},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"expired", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+expired) }, http.StatusUnauthorized},
		{"refresh token", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+refresh) }, http.StatusUnauthorized},
		{"wrong scheme", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Basic "+valid) }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := protected(t)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"id":5,"username":"u5"}`, rec.Body.String())
			}
		})
	}
}

func signAccess(t *testing.T, id uint, now time.Time, ttl time.Duration) (string, time.Time, error) {
	t.Helper()
	return tokens.SignAccess(id, "u5", secret, now, ttl)
}
