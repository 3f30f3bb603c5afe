package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	Auth           *middleware.Auth
	Ready          func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})

	e.GET("/", page("listing.html"))
	e.GET("/login", page("login.html"))
	e.GET("/signup", page("signup.html"))
	e.GET("/cart-page", page("cart.html"))
	e.GET("/items-page", page("items.html"))

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/token", d.AuthHandler.Token)
	e.POST("/token/refresh", d.AuthHandler.Refresh)
	e.POST("/logout", d.AuthHandler.Logout)

	requireAuth := d.Auth.RequireAuth

	items := e.Group("/items")
	items.GET("", d.CatalogHandler.ListItems)
	items.GET("/search", d.CatalogHandler.SearchItems)
	items.GET("/:id", d.CatalogHandler.GetItem)
	items.POST("", d.CatalogHandler.CreateItem, requireAuth)
	items.PUT("/:id", d.CatalogHandler.ReplaceItem, requireAuth)
	items.PATCH("/:id", d.CatalogHandler.PatchItem, requireAuth)
	items.DELETE("/:id", d.CatalogHandler.DeleteItem, requireAuth)

	categories := e.Group("/categories")
	categories.GET("", d.CatalogHandler.ListCategories)
	categories.POST("", d.CatalogHandler.CreateCategory, requireAuth)

	cart := e.Group("/cart", requireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddItem)
	cart.PATCH("", d.CartHandler.UpdateItem)
	cart.DELETE("", d.CartHandler.RemoveItem)
}
