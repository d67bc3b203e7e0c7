package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductLookup func(ctx context.Context, id string) (*models.Product, error)

// CreateOrderSnapshot copies the current name, image and price of every
// product in the cart into order line items. A single missing product
// aborts the whole snapshot.
func CreateOrderSnapshot(ctx context.Context, items []models.CartItem, lookup ProductLookup) ([]models.OrderItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	out := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for product %s", ErrValidation, it.ProductID)
		}
		p, err := lookup(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("%w: product %s no longer exists", ErrNotFound, it.ProductID)
			}
			return nil, err
		}
		out = append(out, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image(),
			Price:     p.Price,
			Quantity:  it.Quantity,
		})
	}
	return out, nil
}

type OrderAmounts struct {
	ItemsPrice    decimal.Decimal
	DiscountPrice decimal.Decimal
	TotalPrice    decimal.Decimal
}

// OrderTotals prices snapshotted line items, applying coupon when non-nil.
// The coupon is expected to have been validated against ItemsPrice.
func OrderTotals(items []models.OrderItem, coupon *models.Coupon) OrderAmounts {
	itemsPrice := decimal.Zero
	for _, it := range items {
		itemsPrice = itemsPrice.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	itemsPrice = itemsPrice.Round(2)

	discount := decimal.Zero
	if coupon != nil {
		discount = CouponDiscount(coupon.Snapshot(), itemsPrice)
		if discount.GreaterThan(itemsPrice) {
			discount = itemsPrice
		}
	}

	return OrderAmounts{
		ItemsPrice:    itemsPrice,
		DiscountPrice: discount,
		TotalPrice:    decimal.Max(decimal.Zero, itemsPrice.Sub(discount)),
	}
}
