package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	uid, err := userID(c)
	if err != nil {
		l.Warn("get_cart_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}

	lines, err := h.Svc.GetCart(ctx, uid)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get cart")
	}

	return c.JSON(http.StatusOK, transport.NewCartResponse(lines))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	uid, err := userID(c)
	if err != nil {
		l.Warn("add_to_cart_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ItemID == nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "missing item_id")
		return echo.NewHTTPError(http.StatusBadRequest, "item_id is required")
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	if _, err := h.Svc.AddItem(ctx, uid, *req.ItemID, qty); err != nil {
		return cartError(l, "add_to_cart_error", err, "item not found")
	}

	l.Info("add_to_cart_success", "item_id", *req.ItemID, "quantity", qty)
	return c.JSON(http.StatusCreated, transport.MessageResponse{Msg: "added"})
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	uid, err := userID(c)
	if err != nil {
		l.Warn("update_cart_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}

	var req transport.UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.CartItemID == nil {
		l.Warn("update_cart_error", "status", 400, "reason", "missing cart_item_id")
		return echo.NewHTTPError(http.StatusBadRequest, "cart_item_id is required")
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	outcome, err := h.Svc.UpdateQuantity(ctx, uid, *req.CartItemID, qty)
	if err != nil {
		return cartError(l, "update_cart_error", err, "cart item not found")
	}

	l.Info("update_cart_success", "cart_item_id", *req.CartItemID, "outcome", outcome)
	return c.JSON(http.StatusOK, transport.MessageResponse{Msg: string(outcome)})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	uid, err := userID(c)
	if err != nil {
		l.Warn("remove_from_cart_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication credentials were not provided")
	}

	raw := c.QueryParam("cart_item_id")
	if raw == "" {
		l.Warn("remove_from_cart_error", "status", 400, "reason", "missing cart_item_id")
		return echo.NewHTTPError(http.StatusBadRequest, "cart_item_id is required")
	}
	lineID, err := parseID(raw)
	if err != nil {
		l.Warn("remove_from_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "cart_item_id must be a positive integer")
	}

	if err := h.Svc.RemoveItem(ctx, uid, lineID); err != nil {
		return cartError(l, "remove_from_cart_error", err, "cart item not found")
	}

	l.Info("remove_from_cart_success", "cart_item_id", lineID)
	return c.JSON(http.StatusOK, transport.MessageResponse{Msg: "removed"})
}

func cartError(l *slog.Logger, event string, err error, notFound string) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, clientMessage(err, service.ErrValidation))
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update cart")
	}
}
