package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
)

func TestWishlist(t *testing.T) {
	store := newTestStore(t)
	svc := &WishlistService{Store: store, Now: fixedClock}
	ctx := context.Background()
	lamp := seedProduct(t, store, "c1", "Desk Lamp", "19.99", 5)
	mug := seedProduct(t, store, "c1", "Mug", "7.50", 5)

	require.NoError(t, svc.Add(ctx, "u1", lamp.ID))
	require.NoError(t, svc.Add(ctx, "u1", lamp.ID))
	require.NoError(t, svc.Add(ctx, "u1", mug.ID))
	assert.ErrorIs(t, svc.Add(ctx, "u1", "missing"), domain.ErrNotFound)

	products, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	require.NoError(t, store.DeleteProduct(ctx, mug.ID))
	products, err = svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, lamp.ID, products[0].ID)

	require.NoError(t, svc.Remove(ctx, "u1", lamp.ID))
	assert.ErrorIs(t, svc.Remove(ctx, "u1", lamp.ID), domain.ErrNotFound)

	products, err = svc.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, products)
}
