package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type fakeIndex struct {
	mu        sync.Mutex
	indexed   map[string]models.Product
	deleted   []string
	searchErr error
	queries   []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[string]models.Product{}}
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[p.ID] = *p
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, query string, from, size int) (int64, []models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.searchErr != nil {
		return 0, nil, f.searchErr
	}
	var out []models.Product
	for _, p := range f.indexed {
		out = append(out, p)
	}
	return int64(len(out)), out, nil
}

type productFixture struct {
	svc         *ProductService
	index       *fakeIndex
	events      *fakePublisher
	electronics *models.Category
	phones      *models.Category
	books       *models.Category
}

func newProductFixture(t *testing.T) *productFixture {
	t.Helper()
	store := newTestStore(t)
	cats := &CategoryService{Store: store, Now: fixedClock}
	ctx := context.Background()

	electronics, err := cats.Create(ctx, CategoryInput{Name: "Electronics", IsActive: true})
	require.NoError(t, err)
	phones, err := cats.Create(ctx, CategoryInput{Name: "Phones", ParentID: &electronics.ID, IsActive: true})
	require.NoError(t, err)
	books, err := cats.Create(ctx, CategoryInput{Name: "Books", IsActive: true})
	require.NoError(t, err)

	f := &productFixture{index: newFakeIndex(), events: &fakePublisher{}, electronics: electronics, phones: phones, books: books}
	f.svc = &ProductService{Store: store, Index: f.index, Events: f.events, Now: fixedClock}
	return f
}

func (f *productFixture) create(t *testing.T, in ProductInput) *models.Product {
	t.Helper()
	p, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	return p
}

func TestProductCreate(t *testing.T) {
	f := newProductFixture(t)

	p := f.create(t, ProductInput{
		Name:       "Pixel 9",
		Price:      money("599.999"),
		Stock:      5,
		CategoryID: f.phones.ID,
		IsActive:   true,
	})
	assert.Equal(t, "pixel-9", p.Slug)
	assert.Equal(t, "600.00", p.Price.StringFixed(2))
	assert.Equal(t, []string{}, p.Images)
	assert.Contains(t, f.index.indexed, p.ID)

	require.Eventually(t, func() bool { return len(f.events.published()) == 1 }, time.Second, 10*time.Millisecond)
	ev := f.events.published()[0]
	assert.Equal(t, mykafka.TopicProductEvents, ev.topic)
	assert.Equal(t, mykafka.ProductCreated, ev.event.(mykafka.ProductEvent).Type)
}

func TestProductCreate_Validation(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, ProductInput{Name: "Ghost", Price: money("1"), CategoryID: "missing"})
	assert.ErrorIs(t, err, domain.ErrReference)

	_, err = f.svc.Create(ctx, ProductInput{Name: "Cheap", Price: money("-1"), CategoryID: f.books.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create(ctx, ProductInput{Name: "Negative", Price: money("1"), Stock: -2, CategoryID: f.books.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create(ctx, ProductInput{Name: "", Price: money("1"), CategoryID: f.books.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	f.create(t, ProductInput{Name: "Dune", Price: money("9.99"), CategoryID: f.books.ID, IsActive: true})
	_, err = f.svc.Create(ctx, ProductInput{Name: "Dune", Price: money("9.99"), CategoryID: f.books.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProductList_ScopesByCategoryDescendants(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	f.create(t, ProductInput{Name: "Laptop", Price: money("999"), Stock: 1, CategoryID: f.electronics.ID, IsActive: true})
	f.create(t, ProductInput{Name: "Pixel", Price: money("599"), Stock: 1, CategoryID: f.phones.ID, IsActive: true})
	f.create(t, ProductInput{Name: "Old Phone", Price: money("50"), Stock: 1, CategoryID: f.phones.ID, IsActive: false})
	f.create(t, ProductInput{Name: "Dune", Price: money("9.99"), Stock: 0, CategoryID: f.books.ID, IsActive: true})

	page, err := f.svc.List(ctx, ProductQuery{CategoryID: f.electronics.ID, Sort: repo.SortPriceAsc})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Pixel", page.Items[0].Name)
	assert.Equal(t, "Laptop", page.Items[1].Name)

	page, err = f.svc.List(ctx, ProductQuery{CategoryID: f.phones.ID, IncludeInactive: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = f.svc.List(ctx, ProductQuery{InStock: true, MaxPrice: moneyPtr("700")})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Pixel", page.Items[0].Name)

	page, err = f.svc.List(ctx, ProductQuery{Page: 2, Size: 2, Sort: repo.SortName})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Pixel", page.Items[0].Name)
}

func TestProductList_Validation(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	_, err := f.svc.List(ctx, ProductQuery{Sort: "cheapest"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.List(ctx, ProductQuery{MinPrice: moneyPtr("10"), MaxPrice: moneyPtr("5")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProductGet_HidesInactive(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	p := f.create(t, ProductInput{Name: "Draft", Price: money("5"), CategoryID: f.books.ID, IsActive: false})

	_, err := f.svc.Get(ctx, p.ID, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := f.svc.Get(ctx, p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Draft", got.Name)
}

func TestProductUpdateAndDelete(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	p := f.create(t, ProductInput{Name: "Dune", Price: money("9.99"), Stock: 4, CategoryID: f.books.ID, IsActive: true})

	updated, err := f.svc.Update(ctx, p.ID, ProductInput{Name: "Dune (Hardcover)", Price: money("24.50"), Stock: 2, CategoryID: f.books.ID, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "dune-hardcover", updated.Slug)
	assert.Equal(t, "24.50", f.index.indexed[p.ID].Price.StringFixed(2))

	_, err = f.svc.Update(ctx, "missing", ProductInput{Name: "X", Price: money("1"), CategoryID: f.books.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, p.ID))
	assert.Equal(t, []string{p.ID}, f.index.deleted)
	_, err = f.svc.Get(ctx, p.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, p.ID), domain.ErrNotFound)

	require.Eventually(t, func() bool { return len(f.events.published()) == 3 }, time.Second, 10*time.Millisecond)
}

func TestProductSearch(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	f.create(t, ProductInput{Name: "Desk Lamp", Description: "warm light", Price: money("19.99"), CategoryID: f.books.ID, IsActive: true})
	f.create(t, ProductInput{Name: "Dune", Price: money("9.99"), CategoryID: f.books.ID, IsActive: true})

	page, err := f.svc.Search(ctx, "lamp", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, []string{"lamp"}, f.index.queries)

	f.index.searchErr = errors.New("cluster unavailable")
	page, err = f.svc.Search(ctx, "lamp", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Desk Lamp", page.Items[0].Name)

	_, err = f.svc.Search(ctx, "  ", 1, 10)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestProductSearch_WithoutIndex(t *testing.T) {
	f := newProductFixture(t)
	f.svc.Index = nil

	f.create(t, ProductInput{Name: "Desk Lamp", Price: money("19.99"), CategoryID: f.books.ID, IsActive: true})

	page, err := f.svc.Search(context.Background(), "LAMP", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}

func TestProductReviews(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	p := f.create(t, ProductInput{Name: "Dune", Price: money("9.99"), CategoryID: f.books.ID, IsActive: true})

	_, err := f.svc.AddReview(ctx, p.ID, "u1", "Ann", 4, "good")
	require.NoError(t, err)
	_, err = f.svc.AddReview(ctx, p.ID, "u2", "Bob", 5, " great ")
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumReviews)
	assert.Equal(t, "4.50", got.Rating.StringFixed(2))

	_, err = f.svc.AddReview(ctx, p.ID, "u1", "Ann", 1, "changed my mind")
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.svc.AddReview(ctx, p.ID, "u3", "Cy", 6, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.AddReview(ctx, "missing", "u3", "Cy", 3, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	reviews, err := f.svc.Reviews(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	got, err = f.svc.Get(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumReviews)
}
