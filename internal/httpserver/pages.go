package httpserver

import (
	"embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templates embed.FS

// page serves a static shell; the pages talk to the JSON API from the browser.
func page(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		b, err := templates.ReadFile("templates/" + name)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "page not found")
		}
		return c.HTMLBlob(http.StatusOK, b)
	}
}
