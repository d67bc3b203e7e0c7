package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func strPtr(s string) *string { return &s }

func lookupFrom(cats ...*models.Category) CategoryLookup {
	byID := map[string]*models.Category{}
	for _, c := range cats {
		byID[c.ID] = c
	}
	return func(_ context.Context, id string) (*models.Category, error) {
		if c, ok := byID[id]; ok {
			return c, nil
		}
		return nil, ErrNotFound
	}
}

// electronics -> phones -> android
func sampleTree() (electronics, phones, android *models.Category) {
	electronics = &models.Category{ID: "e", Name: "Electronics", Slug: "electronics", Ancestors: []models.Ancestor{}}
	phones = &models.Category{ID: "p", Name: "Phones", Slug: "phones", ParentID: strPtr("e"),
		Ancestors: []models.Ancestor{electronics.Ref()}}
	android = &models.Category{ID: "a", Name: "Android", Slug: "android", ParentID: strPtr("p"),
		Ancestors: []models.Ancestor{electronics.Ref(), phones.Ref()}}
	return
}

func TestMaintainAncestors_Root(t *testing.T) {
	got, err := MaintainAncestors(context.Background(), &models.Category{ID: "x"}, lookupFrom())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMaintainAncestors_AppendsParent(t *testing.T) {
	electronics, phones, _ := sampleTree()
	child := &models.Category{Name: "Android", ParentID: strPtr("p")}

	got, err := MaintainAncestors(context.Background(), child, lookupFrom(electronics, phones))
	require.NoError(t, err)
	assert.Equal(t, []models.Ancestor{
		{ID: "e", Name: "Electronics", Slug: "electronics"},
		{ID: "p", Name: "Phones", Slug: "phones"},
	}, got)
}

func TestMaintainAncestors_MissingParent(t *testing.T) {
	_, err := MaintainAncestors(context.Background(), &models.Category{ParentID: strPtr("nope")}, lookupFrom())
	assert.ErrorIs(t, err, ErrReference)
}

func TestMaintainAncestors_RejectsCycles(t *testing.T) {
	electronics, phones, android := sampleTree()
	lookup := lookupFrom(electronics, phones, android)

	self := *phones
	self.ParentID = strPtr("p")
	_, err := MaintainAncestors(context.Background(), &self, lookup)
	assert.ErrorIs(t, err, ErrValidation)

	moved := *electronics
	moved.ParentID = strPtr("a")
	_, err = MaintainAncestors(context.Background(), &moved, lookup)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDescendantIDs(t *testing.T) {
	electronics, phones, android := sampleTree()
	books := models.Category{ID: "b", Name: "Books", Slug: "books"}
	all := []models.Category{*electronics, *phones, *android, books}

	assert.ElementsMatch(t, []string{"e", "p", "a"}, DescendantIDs("e", all))
	assert.ElementsMatch(t, []string{"p", "a"}, DescendantIDs("p", all))
	assert.Equal(t, []string{"a"}, DescendantIDs("a", all))
	assert.Equal(t, []string{"unknown"}, DescendantIDs("unknown", all))
}

func TestRebuildDescendants_AfterMove(t *testing.T) {
	electronics, phones, android := sampleTree()
	gadgets := models.Category{ID: "g", Name: "Gadgets", Slug: "gadgets", Ancestors: []models.Ancestor{}}
	all := []models.Category{*electronics, *phones, *android, gadgets}

	moved := *phones
	moved.ParentID = strPtr("g")
	moved.Ancestors = []models.Ancestor{gadgets.Ref()}

	changed := RebuildDescendants(&moved, all)
	require.Len(t, changed, 1)
	assert.Equal(t, "a", changed[0].ID)
	assert.Equal(t, []models.Ancestor{gadgets.Ref(), moved.Ref()}, changed[0].Ancestors)
}

func TestRebuildDescendants_AfterRenameDeepTree(t *testing.T) {
	electronics, phones, android := sampleTree()
	pixel := models.Category{ID: "px", Name: "Pixel", Slug: "pixel", ParentID: strPtr("a"),
		Ancestors: []models.Ancestor{electronics.Ref(), phones.Ref(), android.Ref()}}
	all := []models.Category{pixel, *android, *phones, *electronics}

	renamed := *electronics
	renamed.Name = "Consumer Electronics"

	changed := RebuildDescendants(&renamed, all)
	require.Len(t, changed, 3)
	for _, c := range changed {
		assert.Equal(t, "Consumer Electronics", c.Ancestors[0].Name, c.ID)
	}
	assert.Equal(t, "px", changed[2].ID)
	assert.Len(t, changed[2].Ancestors, 3)
}

func TestRebuildDescendants_NoChange(t *testing.T) {
	electronics, phones, android := sampleTree()
	all := []models.Category{*electronics, *phones, *android}

	assert.Empty(t, RebuildDescendants(phones, all))
}

func TestBuildTree(t *testing.T) {
	electronics, phones, android := sampleTree()
	books := models.Category{ID: "b", Name: "Books", Slug: "books", SortOrder: -1}
	roots := BuildTree([]models.Category{*android, *phones, *electronics, books})

	require.Len(t, roots, 2)
	assert.Equal(t, "b", roots[0].ID)
	assert.Equal(t, "e", roots[1].ID)
	require.Len(t, roots[1].Children, 1)
	assert.Equal(t, "p", roots[1].Children[0].ID)
	require.Len(t, roots[1].Children[0].Children, 1)
	assert.Equal(t, "a", roots[1].Children[0].Children[0].ID)
	assert.Empty(t, roots[0].Children)
}
