package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type WishlistService struct {
	Store repo.Store
	Now   func() time.Time
}

// Add is idempotent. The product must exist.
func (s *WishlistService) Add(ctx context.Context, userID, productID string) error {
	if _, err := s.Store.GetProduct(ctx, productID); err != nil {
		return err
	}
	return s.Store.AddWishlistItem(ctx, &models.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: clock(s.Now),
	})
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID string) error {
	return s.Store.RemoveWishlistItem(ctx, userID, productID)
}

// List returns the wishlisted products that still exist, newest first.
func (s *WishlistService) List(ctx context.Context, userID string) ([]models.Product, error) {
	items, err := s.Store.ListWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(items))
	for _, it := range items {
		p, err := s.Store.GetProduct(ctx, it.ProductID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		products = append(products, *p)
	}
	return products, nil
}
