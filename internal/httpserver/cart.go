package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) Get(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.get")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.add_item")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.AddCartItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	cart, err := h.Svc.AddItem(c.Request().Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_item_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.update_item")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.UpdateCartItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cart, err := h.Svc.UpdateQuantity(c.Request().Context(), userID, c.Param("productId"), req.Quantity)
	if err != nil {
		return fail(l, "update_item_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.remove_item")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.RemoveItem(c.Request().Context(), userID, c.Param("productId"))
	if err != nil {
		return fail(l, "remove_item_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.clear")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Clear(c.Request().Context(), userID); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) ApplyCoupon(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.apply_coupon")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.ApplyCouponRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cart, err := h.Svc.ApplyCoupon(c.Request().Context(), userID, req.Code)
	if err != nil {
		return fail(l, "apply_coupon_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) RemoveCoupon(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.remove_coupon")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.RemoveCoupon(c.Request().Context(), userID)
	if err != nil {
		return fail(l, "remove_coupon_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}
