package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderService struct {
	Store  repo.Store
	Cache  cache.CartCache
	Events EventPublisher
	Now    func() time.Time
}

type CheckoutInput struct {
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
}

type StatusUpdate struct {
	Status         string
	TrackingNumber *string
}

// Checkout turns the user's cart into an order. The cart is read, priced
// and removed in the same transaction as the stock decrement, the coupon
// redemption and the order insert, so they commit together or not at all.
// Prices are taken from the products as they are now.
func (s *OrderService) Checkout(ctx context.Context, userID string, in CheckoutInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)
	if in.PaymentMethod = strings.TrimSpace(in.PaymentMethod); in.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method is required", domain.ErrValidation)
	}

	now := clock(s.Now)
	order := &models.Order{
		ID:              newID(),
		UserID:          userID,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
		Status:          models.OrderPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repo.Store) error {
		cart, err := tx.GetCart(ctx, userID)
		if err != nil && !isNotFound(err) {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return fmt.Errorf("%w: cart is empty", domain.ErrValidation)
		}

		items, err := domain.CreateOrderSnapshot(ctx, cart.Items, activeProduct(tx))
		if err != nil {
			return err
		}
		order.OrderItems = items

		for _, it := range items {
			if err := tx.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
				if errors.Is(err, domain.ErrOutOfStock) {
					return fmt.Errorf("%w: %s", domain.ErrOutOfStock, it.Name)
				}
				return err
			}
		}

		var coupon *models.Coupon
		if ac := cart.AppliedCoupon; ac != nil {
			itemsPrice := domain.OrderTotals(items, nil).ItemsPrice
			c, err := redeemableCoupon(ctx, tx, ac, itemsPrice, now)
			if err != nil {
				return err
			}
			if c != nil {
				if err := tx.RedeemCoupon(ctx, c.ID); err != nil {
					return err
				}
				coupon = c
				order.CouponCode = c.Code
			}
		}

		amounts := domain.OrderTotals(items, coupon)
		order.ItemsPrice = amounts.ItemsPrice
		order.DiscountPrice = amounts.DiscountPrice
		order.TotalPrice = amounts.TotalPrice

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		return tx.DeleteCart(ctx, userID)
	})
	if err != nil {
		l.Warn("checkout_failed", "error", err)
		return nil, err
	}

	invalidateCart(ctx, s.Cache, userID)
	l.Info("order_created", "order_id", order.ID, "total", order.TotalPrice.StringFixed(2), "items", len(order.OrderItems))
	publish(ctx, s.Events, mykafka.TopicOrderEvents, order.ID, orderEvent(mykafka.OrderCreated, order, now))
	return order, nil
}

// redeemableCoupon re-checks the coupon a cart carries against the priced
// order and returns nil when the cart itself would have dropped it. An
// exhausted usage limit fails the checkout.
func redeemableCoupon(ctx context.Context, tx repo.Store, ac *models.AppliedCoupon, itemsPrice decimal.Decimal, now time.Time) (*models.Coupon, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "coupon", ac.Code)
	c, err := tx.GetCoupon(ctx, ac.CouponID)
	if err != nil {
		if isNotFound(err) {
			l.Info("coupon_dropped", "reason", "deleted")
			return nil, nil
		}
		return nil, err
	}
	err = domain.ValidateCoupon(c, itemsPrice, now)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, domain.ErrExpired), errors.Is(err, domain.ErrMinimumNotMet):
		l.Info("coupon_dropped", "reason", err.Error())
		return nil, nil
	default:
		return nil, err
	}
}

// Get returns an order to its owner or to an admin. Other users get
// ErrNotFound so order ids cannot be guessed.
func (s *OrderService) Get(ctx context.Context, id, userID string, admin bool) (*models.Order, error) {
	o, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && o.UserID != userID {
		return nil, fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
	}
	return o, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID string, page, size int) (*Page[models.Order], error) {
	from, limit := util.Calculate(page, size)
	orders, total, err := s.Store.ListOrders(ctx, repo.OrderFilter{UserID: userID, Offset: from, Limit: limit})
	if err != nil {
		return nil, err
	}
	return newPage(orders, total, from, limit), nil
}

func (s *OrderService) List(ctx context.Context, status string, page, size int) (*Page[models.Order], error) {
	f := repo.OrderFilter{}
	if status != "" {
		st, err := domain.ParseOrderStatus(status)
		if err != nil {
			return nil, err
		}
		f.Status = st
	}
	f.Offset, f.Limit = util.Calculate(page, size)

	orders, total, err := s.Store.ListOrders(ctx, f)
	if err != nil {
		return nil, err
	}
	return newPage(orders, total, f.Offset, f.Limit), nil
}

// UpdateStatus moves an order along its lifecycle. Cancelling puts the
// ordered quantities back in stock.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*models.Order, error) {
	to, err := domain.ParseOrderStatus(upd.Status)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, id, func(o *models.Order) error {
		if err := domain.CheckTransition(o.Status, to); err != nil {
			return err
		}
		if upd.TrackingNumber != nil {
			o.TrackingNumber = strings.TrimSpace(*upd.TrackingNumber)
		}
		o.Status = to
		return nil
	})
}

// Cancel lets a user withdraw one of their own orders while it is still
// pending.
func (s *OrderService) Cancel(ctx context.Context, id, userID string) (*models.Order, error) {
	return s.transition(ctx, id, func(o *models.Order) error {
		if o.UserID != userID {
			return fmt.Errorf("%w: order %s", domain.ErrNotFound, id)
		}
		if o.Status != models.OrderPending {
			return fmt.Errorf("%w: only pending orders can be cancelled", domain.ErrInvalidTransition)
		}
		o.Status = models.OrderCancelled
		return nil
	})
}

func (s *OrderService) transition(ctx context.Context, id string, change func(o *models.Order) error) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.status", "order_id", id)
	now := clock(s.Now)

	var (
		order *models.Order
		from  models.OrderStatus
	)
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repo.Store) error {
		o, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		from = o.Status
		if err := change(o); err != nil {
			return err
		}

		if o.Status == models.OrderCancelled && from != models.OrderCancelled {
			for _, it := range o.OrderItems {
				if err := tx.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil && !isNotFound(err) {
					return err
				}
			}
			o.CancelledAt = &now
		}
		o.UpdatedAt = now
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		l.Warn("order_status_error", "error", err)
		return nil, err
	}

	if order.Status != from {
		l.Info("order_status_changed", "from", from, "to", order.Status)
		publish(ctx, s.Events, mykafka.TopicOrderEvents, order.ID, orderEvent(mykafka.OrderStatusChanged, order, now))
	}
	return order, nil
}

// activeProduct treats deactivated products as gone for checkout.
func activeProduct(store repo.Store) domain.ProductLookup {
	return func(ctx context.Context, id string) (*models.Product, error) {
		p, err := store.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, fmt.Errorf("%w: product %s is no longer available", domain.ErrNotFound, p.Name)
		}
		return p, nil
	}
}

func orderEvent(kind string, o *models.Order, at time.Time) mykafka.OrderEvent {
	return mykafka.OrderEvent{
		Type:       kind,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice.StringFixed(2),
		ItemCount:  len(o.OrderItems),
		CouponCode: o.CouponCode,
		At:         at,
	}
}
