package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Skotchmaster/storefront/internal/models"
)

// CategoryLookup fetches a category by id and returns ErrNotFound when it
// does not exist.
type CategoryLookup func(ctx context.Context, id string) (*models.Category, error)

// MaintainAncestors computes the root-to-parent path cached on a category.
// It must run before the category is written and every time its parent
// changes.
func MaintainAncestors(ctx context.Context, category *models.Category, lookup CategoryLookup) ([]models.Ancestor, error) {
	if category.ParentID == nil || *category.ParentID == "" {
		return []models.Ancestor{}, nil
	}

	parentID := *category.ParentID
	if category.ID != "" && parentID == category.ID {
		return nil, fmt.Errorf("%w: category cannot be its own parent", ErrValidation)
	}

	parent, err := lookup(ctx, parentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: parent category %s does not exist", ErrReference, parentID)
		}
		return nil, err
	}

	if category.ID != "" {
		for _, a := range parent.Ancestors {
			if a.ID == category.ID {
				return nil, fmt.Errorf("%w: parent %s is a descendant of %s", ErrValidation, parentID, category.ID)
			}
		}
	}

	ancestors := make([]models.Ancestor, 0, len(parent.Ancestors)+1)
	ancestors = append(ancestors, parent.Ancestors...)
	ancestors = append(ancestors, parent.Ref())
	return ancestors, nil
}

// DescendantIDs returns categoryID together with the ids of every category
// whose cached ancestors include it.
func DescendantIDs(categoryID string, all []models.Category) []string {
	ids := []string{categoryID}
	for i := range all {
		if all[i].ID == categoryID {
			continue
		}
		for _, a := range all[i].Ancestors {
			if a.ID == categoryID {
				ids = append(ids, all[i].ID)
				break
			}
		}
	}
	return ids
}

// RebuildDescendants recomputes the cached ancestors of every descendant of
// moved after moved itself has been re-parented or renamed. all holds the
// categories as currently stored; moved must already carry its new
// ancestors. The returned categories are the ones whose ancestors changed.
func RebuildDescendants(moved *models.Category, all []models.Category) []models.Category {
	byID := make(map[string]*models.Category, len(all)+1)
	var subtree []*models.Category
	for i := range all {
		c := &all[i]
		if c.ID == moved.ID {
			continue
		}
		byID[c.ID] = c
		for _, a := range c.Ancestors {
			if a.ID == moved.ID {
				subtree = append(subtree, c)
				break
			}
		}
	}
	byID[moved.ID] = moved

	// parents before children, using the depth they had before the move
	sort.SliceStable(subtree, func(i, j int) bool {
		return len(subtree[i].Ancestors) < len(subtree[j].Ancestors)
	})

	changed := make([]models.Category, 0, len(subtree))
	for _, c := range subtree {
		if c.ParentID == nil {
			continue
		}
		parent, ok := byID[*c.ParentID]
		if !ok {
			continue
		}
		next := make([]models.Ancestor, 0, len(parent.Ancestors)+1)
		next = append(next, parent.Ancestors...)
		next = append(next, parent.Ref())
		if sameAncestors(c.Ancestors, next) {
			continue
		}
		c.Ancestors = next
		changed = append(changed, *c)
	}
	return changed
}

func sameAncestors(a, b []models.Ancestor) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type CategoryNode struct {
	models.Category
	Children []*CategoryNode `json:"children"`
}

// BuildTree nests categories under their parents. Categories whose parent
// is missing from all are returned as roots.
func BuildTree(all []models.Category) []*CategoryNode {
	nodes := make(map[string]*CategoryNode, len(all))
	for i := range all {
		nodes[all[i].ID] = &CategoryNode{Category: all[i], Children: []*CategoryNode{}}
	}

	roots := []*CategoryNode{}
	for i := range all {
		n := nodes[all[i].ID]
		if all[i].ParentID != nil {
			if p, ok := nodes[*all[i].ParentID]; ok && p != n {
				p.Children = append(p.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	var order func(ns []*CategoryNode)
	order = func(ns []*CategoryNode) {
		sort.SliceStable(ns, func(i, j int) bool {
			if ns[i].SortOrder != ns[j].SortOrder {
				return ns[i].SortOrder < ns[j].SortOrder
			}
			return ns[i].Name < ns[j].Name
		})
		for _, n := range ns {
			order(n.Children)
		}
	}
	order(roots)
	return roots
}
