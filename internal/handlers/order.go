package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/laundry_service/internal/domain"
	"github.com/Skotchmaster/laundry_service/internal/logging"
	"github.com/Skotchmaster/laundry_service/internal/models"
	"github.com/Skotchmaster/laundry_service/internal/repo"
	"github.com/Skotchmaster/laundry_service/internal/service"
	"github.com/Skotchmaster/laundry_service/internal/transport"
	"github.com/Skotchmaster/laundry_service/internal/util"
	authmw "github.com/Skotchmaster/laundry_service/pkg/middleware/auth"
)

type OrderHTTP struct {
	Orders *service.OrderManager
}

func (h *OrderHTTP) Prices(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"prices":          h.Orders.Pricing.Prices,
		"payment_methods": service.PaymentMethods,
	})
}

func (h *OrderHTTP) Quote(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.quote")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.QuoteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "quote_error", "invalid body", err)
	}

	q, err := h.Orders.Quote(ctx, userID, req)
	if err != nil {
		return fail(l, "quote_error", err, "cannot price order")
	}
	return c.JSON(http.StatusOK, q)
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_error", "invalid body", err)
	}

	o, err := h.Orders.CreateOrder(ctx, userID, req)
	if err != nil {
		return fail(l, "create_order_error", err, "cannot create order")
	}
	l.Info("create_order_success", "order_id", o.ID, "total_price", o.TotalPrice)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	orders, err := h.Orders.GetClientOrders(ctx, userID)
	if err != nil {
		return fail(l, "list_orders_error", err, "cannot list orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// Get returns the caller's order. Administrators may read any order;
// other clients' orders look like missing ones.
func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "get_order_error", err.Error(), err)
	}

	o, err := h.Orders.GetOrder(ctx, id)
	if err == nil && o.ClientID != userID && !authmw.IsAdmin(c) {
		err = fmt.Errorf("%w: %d", domain.ErrOrderNotFound, id)
	}
	if err != nil {
		return fail(l, "get_order_error", err, "cannot get order")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) MyStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.my_stats")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	st, err := h.Orders.ClientStats(ctx, userID)
	if err != nil {
		return fail(l, "client_stats_error", err, "cannot compute stats")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *OrderHTTP) AdminList(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.admin_list")

	var f repo.OrderFilter
	if raw := c.QueryParam("status"); raw != "" {
		st, ok := models.ParseOrderStatus(raw)
		if !ok {
			return badRequest(l, "list_orders_error", "unknown status", fmt.Errorf("status %q", raw))
		}
		f.Status = &st
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Orders.ListOrders(ctx, f, offset, limit)
	if err != nil {
		return fail(l, "list_orders_error", err, "cannot list orders")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": util.PageMeta(page, offset, limit, total),
	})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_status_error", err.Error(), err)
	}
	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status_error", "invalid body", err)
	}

	o, err := h.Orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_status_error", err, "cannot update status")
	}
	l.Info("update_status_success", "order_id", id, "status", o.Status)
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdatePaymentStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_payment_status")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "update_payment_status_error", err.Error(), err)
	}
	var req transport.UpdatePaymentStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_payment_status_error", "invalid body", err)
	}

	o, err := h.Orders.UpdatePaymentStatus(ctx, id, req.PaymentStatus)
	if err != nil {
		return fail(l, "update_payment_status_error", err, "cannot update payment status")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(l, "delete_order_error", err.Error(), err)
	}
	if err := h.Orders.DeleteOrder(ctx, id); err != nil {
		return fail(l, "delete_order_error", err, "cannot delete order")
	}
	l.Info("delete_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHTTP) AdminStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.admin_stats")

	st, err := h.Orders.AdminStats(ctx)
	if err != nil {
		return fail(l, "admin_stats_error", err, "cannot compute stats")
	}
	return c.JSON(http.StatusOK, st)
}
