package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/laundry_service/internal/logging"
	"github.com/Skotchmaster/laundry_service/internal/models"
	"github.com/Skotchmaster/laundry_service/internal/util"
)

type OrderSearcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Order, error)
}

type SearchHTTP struct {
	Index OrderSearcher
}

func (h *SearchHTTP) SearchOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search.orders")

	if h.Index == nil {
		l.Warn("search_orders_error", "status", 503, "reason", "search is not configured")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return badRequest(l, "search_orders_error", "query is required", errors.New("empty q"))
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	total, orders, err := h.Index.Search(ctx, q, from, size)
	if err != nil {
		l.Error("search_orders_error", "status", 502, "reason", "search backend failed", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "search backend failed")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": util.PageMeta(page, from, size, total),
	})
}
