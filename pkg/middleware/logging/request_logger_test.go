package loggingmw

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	e := echo.New()
	e.Use(echomw.RequestID())
	e.Use(RequestLogger(logging.NewWithWriter(&buf, "debug")))

	e.GET("/items/:id", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Debug("inside")
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	rid := rec.Header().Get(echo.HeaderXRequestID)
	require.NotEmpty(t, rid)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"not found"}`, rec.Body.String())

	got := lines(t, &buf)
	require.Len(t, got, 3)

	assert.Equal(t, "inside", got[0]["msg"])
	assert.Equal(t, rid, got[0]["request_id"])

	assert.Equal(t, "/items/:id", got[1]["path"])
	assert.EqualValues(t, http.StatusOK, got[1]["status"])
	assert.Equal(t, "INFO", got[1]["level"])

	assert.EqualValues(t, http.StatusNotFound, got[2]["status"])
	assert.Equal(t, "WARN", got[2]["level"])
}
