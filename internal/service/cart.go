package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

// CartService owns the per-user cart. Every mutation re-prices the cart
// before it is written and drops the cached copy afterwards.
type CartService struct {
	Store repo.Store
	Cache cache.CartCache
	Now   func() time.Time

	sfg singleflight.Group
}

func NewCartService(store repo.Store, c cache.CartCache) *CartService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CartService{Store: store, Cache: c}
}

// GetCart returns the stored cart, or an empty one for users that have
// none yet. Concurrent misses for one user share a single store read.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.get", "user_id", userID)

	v, err, _ := s.sfg.Do(userID, func() (any, error) {
		cart, err := s.Cache.Get(ctx, userID)
		if err == nil {
			domain.Recompute(cart, clock(s.Now))
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			l.Warn("cart_cache_get_failed", "error", err)
		}

		// read before the store so a concurrent invalidation is detected
		gen, genErr := s.Cache.Generation(ctx, userID)
		if genErr != nil {
			l.Warn("cart_cache_generation_failed", "error", genErr)
		}

		now := clock(s.Now)
		cart, err = s.Store.GetCart(ctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return emptyCart(userID, now), nil
		}
		if err != nil {
			return nil, err
		}

		if genErr == nil {
			stored := *cart
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				err := s.Cache.Set(ctx, userID, gen, &stored)
				switch {
				case errors.Is(err, cache.ErrStale):
					l.Debug("cart_cache_set_skipped", "reason", "invalidated during load")
				case err != nil:
					l.Warn("cart_cache_set_failed", "error", err)
				}
			}()
		}

		domain.Recompute(cart, now)
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Cart), nil
}

func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "user_id", userID, "product_id", productID)
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	p, err := s.availableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := cart.FindItem(productID)
	want := qty
	if i >= 0 {
		want += cart.Items[i].Quantity
	}
	if want > p.Stock {
		l.Warn("add_to_cart_error", "status", 400, "reason", "stock", "stock", p.Stock, "wanted", want)
		return nil, fmt.Errorf("%w: only %d of %s left", domain.ErrOutOfStock, p.Stock, p.Name)
	}

	if i >= 0 {
		cart.Items[i].Quantity = want
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image(),
			Price:     p.Price,
			Quantity:  qty,
		})
	}
	return s.save(ctx, cart)
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, qty int) (*models.Cart, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.FindItem(productID)
	if i < 0 {
		return nil, fmt.Errorf("%w: product %s is not in the cart", domain.ErrNotFound, productID)
	}

	p, err := s.availableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if qty > p.Stock {
		return nil, fmt.Errorf("%w: only %d of %s left", domain.ErrOutOfStock, p.Stock, p.Name)
	}

	cart.Items[i].Quantity = qty
	return s.save(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := cart.FindItem(productID)
	if i < 0 {
		return nil, fmt.Errorf("%w: product %s is not in the cart", domain.ErrNotFound, productID)
	}

	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	return s.save(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.Store.DeleteCart(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

// ApplyCoupon looks the code up case-insensitively and attaches the coupon.
// The stored cart is not touched when the coupon is rejected.
func (s *CartService) ApplyCoupon(ctx context.Context, userID, code string) (*models.Cart, error) {
	l := logging.FromContext(ctx).With("svc", "cart.apply_coupon", "user_id", userID)
	code = domain.NormalizeCode(code)
	if code == "" {
		return nil, fmt.Errorf("%w: coupon code is required", domain.ErrValidation)
	}

	coupon, err := s.Store.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: coupon %s", domain.ErrNotFound, code)
		}
		return nil, err
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := domain.ApplyCoupon(cart, coupon, clock(s.Now)); err != nil {
		l.Warn("apply_coupon_error", "status", 400, "code", code, "error", err)
		return nil, err
	}
	return s.save(ctx, cart)
}

func (s *CartService) RemoveCoupon(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.AppliedCoupon = nil
	return s.save(ctx, cart)
}

// load reads the cart from the store, bypassing the cache, so mutations
// never start from a stale copy.
func (s *CartService) load(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.Store.GetCart(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return emptyCart(userID, clock(s.Now)), nil
	}
	return cart, err
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	now := clock(s.Now)
	domain.Recompute(cart, now)
	if cart.ID == "" {
		cart.ID = newID()
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	if err := s.Store.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cart.UserID)
	return cart, nil
}

func (s *CartService) availableProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return p, nil
}

func (s *CartService) invalidate(ctx context.Context, userID string) {
	invalidateCart(ctx, s.Cache, userID)
}

func invalidateCart(ctx context.Context, c cache.CartCache, userID string) {
	if c == nil {
		return
	}
	l := logging.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Delete(ctx, userID); err != nil {
		l.Warn("cart_cache_invalidate_failed", "user_id", userID, "error", err)
	}
}

func emptyCart(userID string, now time.Time) *models.Cart {
	cart := &models.Cart{UserID: userID, Items: []models.CartItem{}, CreatedAt: now, UpdatedAt: now}
	domain.Recompute(cart, now)
	return cart
}
