package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
)

type WishlistHTTP struct {
	Svc *service.WishlistService
}

func (h *WishlistHTTP) List(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "wishlist.list")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	products, err := h.Svc.List(c.Request().Context(), userID)
	if err != nil {
		return fail(l, "list_wishlist_error", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *WishlistHTTP) Add(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "wishlist.add")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Add(c.Request().Context(), userID, c.Param("productId")); err != nil {
		return fail(l, "add_wishlist_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *WishlistHTTP) Remove(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "wishlist.remove")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Remove(c.Request().Context(), userID, c.Param("productId")); err != nil {
		return fail(l, "remove_wishlist_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
