package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

type categoryFixture struct {
	svc                          *CategoryService
	electronics, phones, android *models.Category
}

func newCategoryFixture(t *testing.T) *categoryFixture {
	t.Helper()
	svc := &CategoryService{Store: newTestStore(t), Now: fixedClock}
	ctx := context.Background()

	electronics, err := svc.Create(ctx, CategoryInput{Name: "Electronics", IsActive: true})
	require.NoError(t, err)
	phones, err := svc.Create(ctx, CategoryInput{Name: "Phones", ParentID: &electronics.ID, IsActive: true})
	require.NoError(t, err)
	android, err := svc.Create(ctx, CategoryInput{Name: "Android", ParentID: &phones.ID, IsActive: true})
	require.NoError(t, err)

	return &categoryFixture{svc: svc, electronics: electronics, phones: phones, android: android}
}

func TestCategoryCreate_MaintainsAncestors(t *testing.T) {
	f := newCategoryFixture(t)

	assert.Equal(t, "electronics", f.electronics.Slug)
	assert.Empty(t, f.electronics.Ancestors)
	assert.Equal(t, []models.Ancestor{f.electronics.Ref()}, f.phones.Ancestors)
	assert.Equal(t, []models.Ancestor{f.electronics.Ref(), f.phones.Ref()}, f.android.Ancestors)

	stored, err := f.svc.Get(context.Background(), f.android.ID)
	require.NoError(t, err)
	assert.Equal(t, f.android.Ancestors, stored.Ancestors)
}

func TestCategoryCreate_Validation(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	missing := "does-not-exist"
	_, err := f.svc.Create(ctx, CategoryInput{Name: "Orphan", ParentID: &missing})
	assert.ErrorIs(t, err, domain.ErrReference)

	_, err = f.svc.Create(ctx, CategoryInput{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Create(ctx, CategoryInput{Name: "Phones again", Slug: "phones"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCategoryDescendantIDs(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	ids, err := f.svc.DescendantIDs(ctx, f.electronics.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.electronics.ID, f.phones.ID, f.android.ID}, ids)

	ids, err = f.svc.DescendantIDs(ctx, f.phones.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.phones.ID, f.android.ID}, ids)

	ids, err = f.svc.DescendantIDs(ctx, f.android.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.android.ID}, ids)
}

func TestCategoryUpdate_ReparentRebuildsSubtree(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	gadgets, err := f.svc.Create(ctx, CategoryInput{Name: "Gadgets", IsActive: true})
	require.NoError(t, err)

	moved, err := f.svc.Update(ctx, f.phones.ID, CategoryInput{Name: "Phones", ParentID: &gadgets.ID, IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, []models.Ancestor{gadgets.Ref()}, moved.Ancestors)

	android, err := f.svc.Get(ctx, f.android.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Ancestor{gadgets.Ref(), moved.Ref()}, android.Ancestors)

	ids, err := f.svc.DescendantIDs(ctx, f.electronics.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.electronics.ID}, ids)
}

func TestCategoryUpdate_RenamePropagates(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	renamed, err := f.svc.Update(ctx, f.electronics.ID, CategoryInput{Name: "Consumer Electronics", IsActive: true})
	require.NoError(t, err)
	assert.Equal(t, "consumer-electronics", renamed.Slug)

	phones, err := f.svc.Get(ctx, f.phones.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Ancestor{renamed.Ref()}, phones.Ancestors)

	android, err := f.svc.Get(ctx, f.android.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Ancestor{renamed.Ref(), phones.Ref()}, android.Ancestors)
}

func TestCategoryUpdate_RejectsCycles(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	_, err := f.svc.Update(ctx, f.electronics.ID, CategoryInput{Name: "Electronics", ParentID: &f.android.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Update(ctx, f.phones.ID, CategoryInput{Name: "Phones", ParentID: &f.phones.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	electronics, err := f.svc.Get(ctx, f.electronics.ID)
	require.NoError(t, err)
	assert.Nil(t, electronics.ParentID)
	assert.Empty(t, electronics.Ancestors)
}

func TestCategoryUpdate_NotFound(t *testing.T) {
	f := newCategoryFixture(t)
	_, err := f.svc.Update(context.Background(), "missing", CategoryInput{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCategoryDelete(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	err := f.svc.Delete(ctx, f.electronics.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	seedProduct(t, f.svc.Store, f.android.ID, "Pixel", "499.00", 3)
	err = f.svc.Delete(ctx, f.android.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "1 products")

	empty, err := f.svc.Create(ctx, CategoryInput{Name: "Empty", ParentID: &f.phones.ID})
	require.NoError(t, err)
	require.NoError(t, f.svc.Delete(ctx, empty.ID))

	_, err = f.svc.Get(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, empty.ID), domain.ErrNotFound)
}

func TestCategoryTree(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CategoryInput{Name: "Books", SortOrder: -1})
	require.NoError(t, err)

	tree, err := f.svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Books", tree[0].Name)
	assert.Equal(t, "Electronics", tree[1].Name)
	require.Len(t, tree[1].Children, 1)
	assert.Equal(t, "Phones", tree[1].Children[0].Name)
	require.Len(t, tree[1].Children[0].Children, 1)
	assert.Equal(t, "Android", tree[1].Children[0].Children[0].Name)
}
