package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CouponHTTP struct {
	Svc *service.CouponService
}

func (h *CouponHTTP) List(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "coupon.list")

	coupons, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return fail(l, "list_coupons_error", err)
	}
	return c.JSON(http.StatusOK, coupons)
}

func (h *CouponHTTP) Create(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "coupon.create")

	var req transport.CouponRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cp, err := h.Svc.Create(c.Request().Context(), couponInput(req))
	if err != nil {
		return fail(l, "create_coupon_error", err)
	}
	return c.JSON(http.StatusCreated, cp)
}

func (h *CouponHTTP) Update(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "coupon.update")

	var req transport.CouponRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cp, err := h.Svc.Update(c.Request().Context(), c.Param("id"), couponInput(req))
	if err != nil {
		return fail(l, "update_coupon_error", err)
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *CouponHTTP) Delete(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "coupon.delete")

	if err := h.Svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(l, "delete_coupon_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func couponInput(req transport.CouponRequest) service.CouponInput {
	return service.CouponInput{
		Code:             req.Code,
		DiscountType:     models.DiscountType(req.DiscountType),
		Value:            req.Value,
		MinCartValue:     req.MinCartValue,
		MaxDiscountValue: req.MaxDiscountValue,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		UsageLimit:       req.UsageLimit,
		IsActive:         transport.BoolDefault(req.IsActive, true),
	}
}
