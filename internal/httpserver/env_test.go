package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testdb"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := testdb.Open(t)
	r := repo.New(gdb)
	secret := []byte("test-jwt-secret")

	e := echo.New()
	e.Validator = NewRequestValidator()
	Register(e, &Deps{
		AuthHandler: &AuthHTTP{Svc: &service.AuthService{
			Repo:          r,
			JWTSecret:     secret,
			RefreshSecret: []byte("test-refresh-secret"),
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		}},
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r}},
		CartHandler:    &CartHTTP{Svc: &service.CartService{Repo: r}},
		Auth:           middleware.NewAuth(secret),
		Ready:          r.Ping,
	})

	return &testEnv{T: t, E: e, DB: gdb}
}

func (env *testEnv) doJSONRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// login registers username and returns an access token.
func (env *testEnv) login(username string) string {
	env.T.Helper()

	creds := map[string]string{"username": username, "password": "password1"}
	rec := env.doJSONRequest(http.MethodPost, "/register", creds, "")
	require.Equal(env.T, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.doJSONRequest(http.MethodPost, "/token", creds, "")
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(env.T, resp.Access)
	return resp.Access
}
