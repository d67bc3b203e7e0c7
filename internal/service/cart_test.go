package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/cache"
	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func newCartService(t *testing.T) (*CartService, repo.Store) {
	t.Helper()
	store := newTestStore(t)
	svc := NewCartService(store, nil)
	svc.Now = fixedClock
	return svc, store
}

func assertCartInvariant(t *testing.T, c *models.Cart) {
	t.Helper()
	assert.False(t, c.Discount.IsNegative(), "discount must not be negative")
	assert.True(t, c.Discount.LessThanOrEqual(c.Subtotal), "discount must not exceed subtotal")
	assert.True(t, c.Total.Equal(c.Subtotal.Sub(c.Discount)), "total must equal subtotal minus discount")
}

func TestCartGet_EmptyForNewUser(t *testing.T) {
	svc, _ := newCartService(t)

	c, err := svc.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UserID)
	assert.Empty(t, c.Items)
	assert.Equal(t, "0.00", c.Total.StringFixed(2))
	assert.True(t, c.UpdatedAt.Equal(testNow))
	assert.True(t, c.CreatedAt.Equal(testNow))
}

func TestCartAddItem(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()
	lamp := seedProduct(t, store, "c1", "Desk Lamp", "19.99", 5)
	mug := seedProduct(t, store, "c1", "Mug", "7.50", 10)

	c, err := svc.AddItem(ctx, "u1", lamp.ID, 2)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "Desk Lamp", c.Items[0].Name)
	assert.Equal(t, "/img/desk-lamp.jpg", c.Items[0].Image)
	assert.Equal(t, "39.98", c.Subtotal.StringFixed(2))

	c, err = svc.AddItem(ctx, "u1", lamp.ID, 1)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)

	c, err = svc.AddItem(ctx, "u1", mug.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "74.97", c.Subtotal.StringFixed(2))
	assertCartInvariant(t, c)

	stored, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, c.ID, stored.ID)
	assert.Len(t, stored.Items, 2)
}

func TestCartAddItem_KeepsAddTimePrice(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()
	lamp := seedProduct(t, store, "c1", "Desk Lamp", "10.00", 5)

	_, err := svc.AddItem(ctx, "u1", lamp.ID, 1)
	require.NoError(t, err)

	lamp.Price = money("12.00")
	require.NoError(t, store.UpdateProduct(ctx, lamp))

	c, err := svc.AddItem(ctx, "u1", lamp.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "20.00", c.Subtotal.StringFixed(2))
}

func TestCartAddItem_Rejections(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()
	lamp := seedProduct(t, store, "c1", "Desk Lamp", "19.99", 2)
	hidden := seedProduct(t, store, "c1", "Hidden", "1.00", 2)
	hidden.IsActive = false
	require.NoError(t, store.UpdateProduct(ctx, hidden))

	_, err := svc.AddItem(ctx, "u1", lamp.ID, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddItem(ctx, "u1", "missing", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AddItem(ctx, "u1", hidden.ID, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AddItem(ctx, "u1", lamp.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", lamp.ID, 1)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	c, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestCartUpdateQuantityAndRemove(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()
	lamp := seedProduct(t, store, "c1", "Desk Lamp", "20.00", 5)
	mug := seedProduct(t, store, "c1", "Mug", "5.00", 5)

	_, err := svc.AddItem(ctx, "u1", lamp.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", mug.ID, 1)
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(ctx, "u1", lamp.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, "85.00", c.Subtotal.StringFixed(2))

	_, err = svc.UpdateQuantity(ctx, "u1", lamp.ID, 6)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	_, err = svc.UpdateQuantity(ctx, "u1", lamp.ID, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.UpdateQuantity(ctx, "u1", "missing", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	c, err = svc.RemoveItem(ctx, "u1", lamp.ID)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "5.00", c.Total.StringFixed(2))

	_, err = svc.RemoveItem(ctx, "u1", lamp.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.Clear(ctx, "u1"))
	c, err = svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestCartApplyCoupon_ClampsToMax(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()
	seedSave20(t, store, nil)
	chair := seedProduct(t, store, "c1", "Chair", "60.00", 5)

	_, err := svc.AddItem(ctx, "u1", chair.ID, 2)
	require.NoError(t, err)

	c, err := svc.ApplyCoupon(ctx, "u1", " save20 ")
	require.NoError(t, err)
	require.NotNil(t, c.AppliedCoupon)
	assert.Equal(t, "SAVE20", c.AppliedCoupon.Code)
	assert.Equal(t, "120.00", c.Subtotal.StringFixed(2))
	assert.Equal(t, "15.00", c.Discount.StringFixed(2))
	assert.Equal(t, "105.00", c.Total.StringFixed(2))

	again, err := svc.ApplyCoupon(ctx, "u1", "SAVE20")
	require.NoError(t, err)
	assert.Equal(t, "15.00", again.Discount.StringFixed(2))

	coupon, err := store.GetCouponByCode(ctx, "SAVE20")
	require.NoError(t, err)
	assert.Equal(t, 0, coupon.UsedCount)
}

func TestCartApplyCoupon_Rejections(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()
	coupon := seedSave20(t, store, intPtr(1))
	mug := seedProduct(t, store, "c1", "Mug", "10.00", 50)

	_, err := svc.AddItem(ctx, "u1", mug.ID, 2)
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(ctx, "u1", "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.ApplyCoupon(ctx, "u1", "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.ApplyCoupon(ctx, "u1", "SAVE20")
	require.ErrorIs(t, err, domain.ErrMinimumNotMet)
	assert.Contains(t, err.Error(), "50.00")

	_, err = svc.AddItem(ctx, "u1", mug.ID, 8)
	require.NoError(t, err)

	coupon.UsedCount = 1
	require.NoError(t, store.UpdateCoupon(ctx, coupon))
	_, err = svc.ApplyCoupon(ctx, "u1", "SAVE20")
	assert.ErrorIs(t, err, domain.ErrUsageLimit)

	coupon.UsedCount = 0
	coupon.EndDate = testNow.Add(-time.Hour)
	require.NoError(t, store.UpdateCoupon(ctx, coupon))
	_, err = svc.ApplyCoupon(ctx, "u1", "SAVE20")
	assert.ErrorIs(t, err, domain.ErrExpired)

	coupon.EndDate = testNow.Add(time.Hour)
	coupon.IsActive = false
	require.NoError(t, store.UpdateCoupon(ctx, coupon))
	_, err = svc.ApplyCoupon(ctx, "u1", "SAVE20")
	assert.ErrorIs(t, err, domain.ErrExpired)

	c, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, c.AppliedCoupon)
	assert.Equal(t, "0.00", c.Discount.StringFixed(2))
}

func TestCartRemoveItem_DropsCouponBelowMinimum(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()
	seedSave20(t, store, nil)
	chair := seedProduct(t, store, "c1", "Chair", "40.00", 5)
	mug := seedProduct(t, store, "c1", "Mug", "20.00", 5)

	_, err := svc.AddItem(ctx, "u1", chair.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", mug.ID, 1)
	require.NoError(t, err)

	c, err := svc.ApplyCoupon(ctx, "u1", "SAVE20")
	require.NoError(t, err)
	assert.Equal(t, "12.00", c.Discount.StringFixed(2))

	c, err = svc.RemoveItem(ctx, "u1", mug.ID)
	require.NoError(t, err)
	assert.Nil(t, c.AppliedCoupon)
	assert.Equal(t, "40.00", c.Total.StringFixed(2))
	assertCartInvariant(t, c)
}

func TestCartRemoveCoupon(t *testing.T) {
	svc, store := newCartService(t)
	ctx := context.Background()
	seedSave20(t, store, nil)
	chair := seedProduct(t, store, "c1", "Chair", "60.00", 5)

	_, err := svc.AddItem(ctx, "u1", chair.ID, 1)
	require.NoError(t, err)
	_, err = svc.ApplyCoupon(ctx, "u1", "SAVE20")
	require.NoError(t, err)

	c, err := svc.RemoveCoupon(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, c.AppliedCoupon)
	assert.Equal(t, "0.00", c.Discount.StringFixed(2))
	assert.Equal(t, "60.00", c.Total.StringFixed(2))
}

func TestCartGet_UsesAndInvalidatesCache(t *testing.T) {
	store := newTestStore(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewCartService(store, cache.NewRedisCache(client, time.Minute))
	svc.Now = fixedClock
	ctx := context.Background()
	lamp := seedProduct(t, store, "c1", "Desk Lamp", "19.99", 5)

	_, err := svc.AddItem(ctx, "u1", lamp.ID, 1)
	require.NoError(t, err)
	assert.False(t, mr.Exists("cart:u1"))

	_, err = svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return mr.Exists("cart:u1") }, time.Second, 10*time.Millisecond)

	_, err = svc.AddItem(ctx, "u1", lamp.ID, 1)
	require.NoError(t, err)
	assert.False(t, mr.Exists("cart:u1"))

	c, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

// gatedCache holds every cache fill until release is closed and reports
// each fill's result on done.
type gatedCache struct {
	*cache.RedisCache
	release chan struct{}
	done    chan error
}

func (g *gatedCache) Set(ctx context.Context, userID string, gen int64, cart *models.Cart) error {
	<-g.release
	err := g.RedisCache.Set(ctx, userID, gen, cart)
	g.done <- err
	return err
}

func TestCartGet_SlowFillDoesNotOverwriteNewerCart(t *testing.T) {
	store := newTestStore(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	gated := &gatedCache{
		RedisCache: cache.NewRedisCache(client, time.Minute),
		release:    make(chan struct{}),
		done:       make(chan error, 1),
	}
	svc := NewCartService(store, gated)
	svc.Now = fixedClock
	ctx := context.Background()
	lamp := seedProduct(t, store, "c1", "Desk Lamp", "19.99", 5)
	shelf := seedProduct(t, store, "c1", "Shelf", "45.00", 5)

	_, err := svc.AddItem(ctx, "u1", lamp.ID, 1)
	require.NoError(t, err)

	c, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)

	_, err = svc.AddItem(ctx, "u1", shelf.ID, 1)
	require.NoError(t, err)

	close(gated.release)
	select {
	case err := <-gated.done:
		assert.ErrorIs(t, err, cache.ErrStale)
	case <-time.After(2 * time.Second):
		t.Fatal("cache fill never ran")
	}
	assert.False(t, mr.Exists("cart:u1"))

	c, err = svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)

	select {
	case err := <-gated.done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("cache fill never ran")
	}
	cached, err := gated.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, cached.Items, 2)
}
