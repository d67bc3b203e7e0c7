package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/gormrepo/gormtest"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestStore(t *testing.T) repo.Store {
	return gormtest.NewStore(t)
}

type publishedEvent struct {
	topic string
	key   string
	event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func (f *fakePublisher) published() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]publishedEvent(nil), f.events...)
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func moneyPtr(s string) *decimal.Decimal {
	d := money(s)
	return &d
}

func seedProduct(t *testing.T, store repo.Store, categoryID, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:         uuid.NewString(),
		Name:       name,
		Slug:       Slugify(name),
		Price:      money(price),
		Stock:      stock,
		CategoryID: categoryID,
		Images:     []string{"/img/" + Slugify(name) + ".jpg"},
		IsActive:   true,
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	}
	require.NoError(t, store.CreateProduct(context.Background(), p))
	return p
}

// seedSave20 stores SAVE20: 20% off, at most 15, on carts of 50 or more.
func seedSave20(t *testing.T, store repo.Store, usageLimit *int) *models.Coupon {
	t.Helper()
	c := &models.Coupon{
		ID:               uuid.NewString(),
		Code:             "SAVE20",
		DiscountType:     models.DiscountPercentage,
		Value:            money("20"),
		MinCartValue:     money("50"),
		MaxDiscountValue: moneyPtr("15"),
		StartDate:        testNow.Add(-24 * time.Hour),
		EndDate:          testNow.Add(24 * time.Hour),
		UsageLimit:       usageLimit,
		IsActive:         true,
		CreatedAt:        testNow,
		UpdatedAt:        testNow,
	}
	require.NoError(t, store.CreateCoupon(context.Background(), c))
	return c
}

func intPtr(n int) *int { return &n }
