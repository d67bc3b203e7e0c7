package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) List(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "category.list")

	cats, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return fail(l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CategoryHTTP) Tree(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "category.tree")

	tree, err := h.Svc.Tree(c.Request().Context())
	if err != nil {
		return fail(l, "category_tree_error", err)
	}
	return c.JSON(http.StatusOK, tree)
}

func (h *CategoryHTTP) Get(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "category.get")

	cat, err := h.Svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(l, "get_category_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.Svc.Create(c.Request().Context(), categoryInput(req))
	if err != nil {
		return fail(l, "create_category_error", err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "category.update")

	var req transport.CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.Svc.Update(c.Request().Context(), c.Param("id"), categoryInput(req))
	if err != nil {
		return fail(l, "update_category_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "category.delete")

	if err := h.Svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(l, "delete_category_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func categoryInput(req transport.CategoryRequest) service.CategoryInput {
	parent := req.ParentID
	if parent != nil && *parent == "" {
		parent = nil
	}
	return service.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    parent,
		IsActive:    transport.BoolDefault(req.IsActive, true),
		SortOrder:   req.SortOrder,
	}
}
