package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

type ProductService struct {
	Store  repo.Store
	Index  ProductIndex
	Events EventPublisher
	Now    func() time.Time
}

type ProductInput struct {
	Name        string
	Slug        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryID  string
	Images      []string
	IsActive    bool
}

type ProductQuery struct {
	CategoryID      string
	Query           string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	InStock         bool
	Sort            string
	Page            int
	Size            int
	IncludeInactive bool
}

var productSorts = map[string]bool{
	"":                 true,
	repo.SortNewest:    true,
	repo.SortPriceAsc:  true,
	repo.SortPriceDesc: true,
	repo.SortRating:    true,
	repo.SortName:      true,
}

func (s *ProductService) validate(ctx context.Context, in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	in.Slug = Slugify(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Name)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", domain.ErrValidation)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", domain.ErrValidation)
	}
	if in.CategoryID == "" {
		return fmt.Errorf("%w: category is required", domain.ErrValidation)
	}
	if _, err := s.Store.GetCategory(ctx, in.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: category %s does not exist", domain.ErrReference, in.CategoryID)
		}
		return err
	}
	if in.Images == nil {
		in.Images = []string{}
	}
	in.Price = in.Price.Round(2)
	return nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.create")
	if err := s.validate(ctx, &in); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return nil, err
	}

	now := clock(s.Now)
	p := &models.Product{
		ID:          newID(),
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		Images:      in.Images,
		IsActive:    in.IsActive,
		Rating:      decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.reindex(ctx, p)
	publish(ctx, s.Events, mykafka.TopicProductEvents, p.ID, productEvent(mykafka.ProductCreated, p, now))
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.update", "id", id)
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in); err != nil {
		l.Warn("update_product_error", "status", 400, "error", err)
		return nil, err
	}

	now := clock(s.Now)
	p.Name = in.Name
	p.Slug = in.Slug
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
	p.Images = in.Images
	p.IsActive = in.IsActive
	p.UpdatedAt = now
	if err := s.Store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.reindex(ctx, p)
	publish(ctx, s.Events, mykafka.TopicProductEvents, p.ID, productEvent(mykafka.ProductUpdated, p, now))
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	l := logging.FromContext(ctx).With("svc", "product.delete", "id", id)
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteProduct(ctx, id); err != nil {
		return err
	}

	if s.Index != nil {
		ictx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		defer cancel()
		if err := s.Index.DeleteProduct(ictx, id); err != nil {
			l.Warn("unindex_product_failed", "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProductEvents, id, productEvent(mykafka.ProductDeleted, p, clock(s.Now)))
	return nil
}

// Get hides inactive products from shoppers.
func (s *ProductService) Get(ctx context.Context, id string, includeInactive bool) (*models.Product, error) {
	p, err := s.Store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive && !includeInactive {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	return p, nil
}

// List filters products. A category filter covers the category and all of
// its subcategories.
func (s *ProductService) List(ctx context.Context, q ProductQuery) (*Page[models.Product], error) {
	if !productSorts[q.Sort] {
		return nil, fmt.Errorf("%w: unknown sort %q", domain.ErrValidation, q.Sort)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return nil, fmt.Errorf("%w: min_price is greater than max_price", domain.ErrValidation)
	}

	from, size := util.Calculate(q.Page, q.Size)
	f := repo.ProductFilter{
		Query:      q.Query,
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		InStock:    q.InStock,
		ActiveOnly: !q.IncludeInactive,
		Sort:       q.Sort,
		Offset:     from,
		Limit:      size,
	}
	if q.CategoryID != "" {
		all, err := s.Store.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		f.CategoryIDs = domain.DescendantIDs(q.CategoryID, all)
	}

	products, total, err := s.Store.ListProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	return newPage(products, total, from, size), nil
}

// Search queries the full-text index and falls back to the store's
// keyword filter when no index is configured or the index fails.
func (s *ProductService) Search(ctx context.Context, query string, page, size int) (*Page[models.Product], error) {
	l := logging.FromContext(ctx).With("svc", "product.search")
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrValidation)
	}

	if s.Index != nil {
		from, limit := util.Calculate(page, size)
		total, products, err := s.Index.Search(ctx, query, from, limit)
		if err == nil {
			return newPage(products, total, from, limit), nil
		}
		l.Warn("search_index_failed", "reason", "falling back to store", "error", err)
	}
	return s.List(ctx, ProductQuery{Query: query, Page: page, Size: size})
}

func (s *ProductService) AddReview(ctx context.Context, productID, userID, userName string, rating int, comment string) (*models.Review, error) {
	l := logging.FromContext(ctx).With("svc", "product.review", "product_id", productID)
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}

	r := &models.Review{
		ID:        newID(),
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: clock(s.Now),
	}
	err := s.Store.WithinTx(ctx, func(ctx context.Context, tx repo.Store) error {
		if _, err := tx.GetProduct(ctx, productID); err != nil {
			return err
		}
		if err := tx.CreateReview(ctx, r); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				return fmt.Errorf("%w: product already reviewed", domain.ErrConflict)
			}
			return err
		}
		reviews, err := tx.ListReviews(ctx, productID)
		if err != nil {
			return err
		}
		avg, n := averageRating(reviews)
		return tx.UpdateProductRating(ctx, productID, avg, n)
	})
	if err != nil {
		l.Warn("add_review_error", "error", err)
		return nil, err
	}
	return r, nil
}

func (s *ProductService) Reviews(ctx context.Context, productID string) ([]models.Review, error) {
	if _, err := s.Store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.Store.ListReviews(ctx, productID)
}

func averageRating(reviews []models.Review) (decimal.Decimal, int) {
	if len(reviews) == 0 {
		return decimal.Zero, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(reviews)))).Round(2), len(reviews)
}

func (s *ProductService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("index_product_failed", "id", p.ID, "error", err)
	}
}

func productEvent(kind string, p *models.Product, at time.Time) mykafka.ProductEvent {
	return mykafka.ProductEvent{
		Type:      kind,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		Stock:     p.Stock,
		At:        at,
	}
}

func newPage[T any](items []T, total int64, from, size int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items: items,
		Total: total,
		Page:  from/size + 1,
		Pages: util.Pages(total, size),
	}
}
