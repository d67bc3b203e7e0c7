package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CategoryService struct {
	Store repo.Store
	Now   func() time.Time
}

type CategoryInput struct {
	Name        string
	Slug        string
	Description string
	ParentID    *string
	IsActive    bool
	SortOrder   int
}

func (in *CategoryInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	in.Slug = Slugify(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}
	if in.Slug == "" {
		return fmt.Errorf("%w: slug is required", domain.ErrValidation)
	}
	if in.ParentID != nil && strings.TrimSpace(*in.ParentID) == "" {
		in.ParentID = nil
	}
	return nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "category.create")
	if err := in.normalize(); err != nil {
		return nil, err
	}

	now := clock(s.Now)
	c := &models.Category{
		ID:          newID(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		ParentID:    in.ParentID,
		IsActive:    in.IsActive,
		SortOrder:   in.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ancestors, err := domain.MaintainAncestors(ctx, c, s.Store.GetCategory)
	if err != nil {
		l.Warn("create_category_error", "status", 400, "reason", "ancestors", "error", err)
		return nil, err
	}
	c.Ancestors = ancestors

	if err := s.Store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	l.Info("category_created", "id", c.ID, "slug", c.Slug, "depth", len(c.Ancestors))
	return c, nil
}

// Update replaces the editable fields of a category. Moving or renaming a
// category rewrites the cached ancestors of its whole subtree in the same
// transaction.
func (s *CategoryService) Update(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "category.update", "id", id)
	if err := in.normalize(); err != nil {
		return nil, err
	}

	now := clock(s.Now)
	var updated *models.Category
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repo.Store) error {
		c, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		before := c.Ref()
		oldParent := parentOf(c)

		c.Name = in.Name
		c.Slug = in.Slug
		c.Description = in.Description
		c.ParentID = in.ParentID
		c.IsActive = in.IsActive
		c.SortOrder = in.SortOrder
		c.UpdatedAt = now

		ancestors, err := domain.MaintainAncestors(ctx, c, tx.GetCategory)
		if err != nil {
			return err
		}
		c.Ancestors = ancestors
		if err := tx.UpdateCategory(ctx, c); err != nil {
			return err
		}
		updated = c

		if before == c.Ref() && oldParent == parentOf(c) {
			return nil
		}
		all, err := tx.ListCategories(ctx)
		if err != nil {
			return err
		}
		changed := domain.RebuildDescendants(c, all)
		for i := range changed {
			changed[i].UpdatedAt = now
			if err := tx.UpdateCategory(ctx, &changed[i]); err != nil {
				return err
			}
		}
		if len(changed) > 0 {
			l.Info("category_subtree_rebuilt", "descendants", len(changed))
		}
		return nil
	})
	if err != nil {
		l.Warn("update_category_error", "error", err)
		return nil, err
	}
	return updated, nil
}

// Delete removes a leaf category that no product references.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	l := logging.FromContext(ctx).With("svc", "category.delete", "id", id)
	if _, err := s.Store.GetCategory(ctx, id); err != nil {
		return err
	}

	children, err := s.Store.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		l.Warn("delete_category_error", "status", 409, "reason", "has children", "children", children)
		return fmt.Errorf("%w: category has %d subcategories", domain.ErrConflict, children)
	}

	products, err := s.Store.CountProductsByCategory(ctx, id)
	if err != nil {
		return err
	}
	if products > 0 {
		l.Warn("delete_category_error", "status", 409, "reason", "has products", "products", products)
		return fmt.Errorf("%w: category has %d products", domain.ErrConflict, products)
	}

	return s.Store.DeleteCategory(ctx, id)
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	return s.Store.GetCategory(ctx, id)
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.Store.ListCategories(ctx)
}

func (s *CategoryService) Tree(ctx context.Context) ([]*domain.CategoryNode, error) {
	all, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return domain.BuildTree(all), nil
}

// DescendantIDs returns id and every category below it.
func (s *CategoryService) DescendantIDs(ctx context.Context, id string) ([]string, error) {
	all, err := s.Store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return domain.DescendantIDs(id, all), nil
}

func parentOf(c *models.Category) string {
	if c.ParentID == nil {
		return ""
	}
	return *c.ParentID
}
