package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

var hundred = decimal.NewFromInt(100)

// NormalizeCode is the canonical form coupon codes are stored and looked
// up in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Subtotal sums the prices captured when the items were added.
func Subtotal(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum.Round(2)
}

// CouponDiscount is the raw discount a coupon grants on subtotal. Fixed
// amounts are not capped here; Recompute keeps the discount within the
// subtotal.
func CouponDiscount(c *models.AppliedCoupon, subtotal decimal.Decimal) decimal.Decimal {
	switch c.DiscountType {
	case models.DiscountPercentage:
		d := subtotal.Mul(c.Value).Div(hundred).Round(2)
		if c.MaxDiscountValue != nil && d.GreaterThan(*c.MaxDiscountValue) {
			d = *c.MaxDiscountValue
		}
		return d
	case models.DiscountFixedAmount:
		return c.Value
	default:
		return decimal.Zero
	}
}

// ValidateCoupon checks a coupon against a cart subtotal at time now, in
// the order: active window, minimum cart value, usage limit.
func ValidateCoupon(c *models.Coupon, subtotal decimal.Decimal, now time.Time) error {
	if !c.IsActive || now.Before(c.StartDate) || now.After(c.EndDate) {
		return fmt.Errorf("%w: %s", ErrExpired, c.Code)
	}
	if subtotal.LessThan(c.MinCartValue) {
		return &MinimumNotMetError{Required: c.MinCartValue}
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return fmt.Errorf("%w: %s", ErrUsageLimit, c.Code)
	}
	return nil
}

// Recompute refreshes subtotal, discount and total. An applied coupon whose
// minimum is no longer met, or whose end date has passed, is dropped.
func Recompute(cart *models.Cart, now time.Time) {
	cart.Subtotal = Subtotal(cart.Items)
	cart.Discount = decimal.Zero

	if ac := cart.AppliedCoupon; ac != nil {
		if cart.Subtotal.LessThan(ac.MinCartValue) || now.After(ac.EndDate) {
			cart.AppliedCoupon = nil
		} else {
			cart.Discount = CouponDiscount(ac, cart.Subtotal)
		}
	}

	if cart.Discount.GreaterThan(cart.Subtotal) {
		cart.Discount = cart.Subtotal
	}
	if cart.Discount.IsNegative() {
		cart.Discount = decimal.Zero
	}
	cart.Total = decimal.Max(decimal.Zero, cart.Subtotal.Sub(cart.Discount))
}

// ApplyCoupon validates c against the current cart and attaches it. The
// cart is left untouched when validation fails.
func ApplyCoupon(cart *models.Cart, c *models.Coupon, now time.Time) error {
	subtotal := Subtotal(cart.Items)
	if err := ValidateCoupon(c, subtotal, now); err != nil {
		return err
	}
	cart.AppliedCoupon = c.Snapshot()
	Recompute(cart, now)
	return nil
}

func RemoveCoupon(cart *models.Cart, now time.Time) {
	cart.AppliedCoupon = nil
	Recompute(cart, now)
}

// ValidateCouponInput checks an admin-supplied coupon definition.
func ValidateCouponInput(c *models.Coupon) error {
	if c.Code == "" {
		return fmt.Errorf("%w: code is required", ErrValidation)
	}
	if !c.DiscountType.Valid() {
		return fmt.Errorf("%w: unknown discount type %q", ErrValidation, c.DiscountType)
	}
	if !c.Value.IsPositive() {
		return fmt.Errorf("%w: value must be positive", ErrValidation)
	}
	if c.DiscountType == models.DiscountPercentage && c.Value.GreaterThan(hundred) {
		return fmt.Errorf("%w: percentage must be at most 100", ErrValidation)
	}
	if c.MinCartValue.IsNegative() {
		return fmt.Errorf("%w: minimum cart value cannot be negative", ErrValidation)
	}
	if c.MaxDiscountValue != nil && c.MaxDiscountValue.IsNegative() {
		return fmt.Errorf("%w: maximum discount cannot be negative", ErrValidation)
	}
	if !c.EndDate.After(c.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}
	if c.UsageLimit != nil && *c.UsageLimit < 0 {
		return fmt.Errorf("%w: usage limit cannot be negative", ErrValidation)
	}
	return nil
}
