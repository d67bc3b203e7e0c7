package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	middleware "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order.checkout")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CheckoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	o, err := h.Svc.Checkout(c.Request().Context(), userID, service.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return fail(l, "checkout_error", err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) ListMine(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order.list_mine")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := h.Svc.ListMine(
		c.Request().Context(),
		userID,
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) List(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order.list")

	page, err := h.Svc.List(
		c.Request().Context(),
		c.QueryParam("status"),
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order.get")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	o, err := h.Svc.Get(c.Request().Context(), c.Param("id"), userID, middleware.IsAdmin(c))
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order.update_status")

	var req transport.UpdateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	o, err := h.Svc.UpdateStatus(c.Request().Context(), c.Param("id"), service.StatusUpdate{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		return fail(l, "update_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "order.cancel")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	o, err := h.Svc.Cancel(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}
