package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_items")

	f := service.ParseItemFilter(c.QueryParams())
	items, err := h.Svc.ListItems(ctx, f)
	if err != nil {
		l.Error("list_items_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list items")
	}

	l.Debug("list_items_success", "count", len(items))
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_item")

	id, err := parseID(c.Param("id"))
	if err != nil {
		l.Warn("get_item_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	item, err := h.Svc.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_item_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		l.Error("get_item_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot get item")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_item")

	var req transport.ItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("create_item_error", "status", 400, "error", err)
		return err
	}

	item, err := h.Svc.CreateItem(ctx, req)
	if err != nil {
		return itemWriteError(l, "create_item_error", err)
	}

	l.Info("create_item_success", "item_id", item.ID)
	return c.JSON(http.StatusCreated, item)
}

func (h *CatalogHTTP) ReplaceItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.replace_item")

	id, err := parseID(c.Param("id"))
	if err != nil {
		l.Warn("replace_item_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	var req transport.ItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("replace_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("replace_item_error", "status", 400, "error", err)
		return err
	}

	item, err := h.Svc.ReplaceItem(ctx, id, req)
	if err != nil {
		return itemWriteError(l, "replace_item_error", err)
	}

	l.Info("replace_item_success", "item_id", item.ID)
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHTTP) PatchItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_item")

	id, err := parseID(c.Param("id"))
	if err != nil {
		l.Warn("patch_item_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	var req transport.PatchItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("patch_item_error", "status", 400, "error", err)
		return err
	}

	item, err := h.Svc.PatchItem(ctx, id, req)
	if err != nil {
		return itemWriteError(l, "patch_item_error", err)
	}

	l.Info("patch_item_success", "item_id", item.ID)
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_item")

	id, err := parseID(c.Param("id"))
	if err != nil {
		l.Warn("delete_item_error", "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	}

	if err := h.Svc.DeleteItem(ctx, id); err != nil {
		return itemWriteError(l, "delete_item_error", err)
	}

	l.Info("delete_item_success", "item_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_items")

	q := c.QueryParam("q")
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), 0)
	_, limit, page := service.Paginate(page, size)

	total, items, err := h.Svc.SearchItems(ctx, q, page, limit)
	if err != nil {
		l.Error("search_items_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot search items")
	}

	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Page: page, Size: limit, Items: items})
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_categories")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		l.Error("list_categories_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list categories")
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_category_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("create_category_error", "status", 400, "error", err)
		return err
	}

	cat, err := h.Svc.CreateCategory(ctx, req)
	if err != nil {
		return itemWriteError(l, "create_category_error", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func itemWriteError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, clientMessage(err, service.ErrValidation))
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save changes")
	}
}

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
