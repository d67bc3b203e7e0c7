package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	middleware "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

func (h *ProductHTTP) List(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.list")

	q := service.ProductQuery{
		CategoryID: c.QueryParam("category"),
		Query:      c.QueryParam("q"),
		Sort:       c.QueryParam("sort"),
		Page:       util.ParseIntDefault(c.QueryParam("page"), 1),
		Size:       util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	}
	var err error
	if q.MinPrice, err = priceParam(c, "min_price"); err != nil {
		return err
	}
	if q.MaxPrice, err = priceParam(c, "max_price"); err != nil {
		return err
	}
	if v := c.QueryParam("in_stock"); v != "" {
		if q.InStock, err = strconv.ParseBool(v); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid in_stock")
		}
	}

	page, err := h.Svc.List(c.Request().Context(), q)
	if err != nil {
		return fail(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ProductHTTP) Search(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.search")

	page, err := h.Svc.Search(
		c.Request().Context(),
		c.QueryParam("q"),
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)
	if err != nil {
		return fail(l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ProductHTTP) Get(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.get")

	p, err := h.Svc.Get(c.Request().Context(), c.Param("id"), false)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) Create(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.create")

	var req transport.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.Svc.Create(c.Request().Context(), productInput(req))
	if err != nil {
		return fail(l, "create_product_error", err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductHTTP) Update(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.update")

	var req transport.ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.Svc.Update(c.Request().Context(), c.Param("id"), productInput(req))
	if err != nil {
		return fail(l, "update_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) Delete(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.delete")

	if err := h.Svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return fail(l, "delete_product_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) Reviews(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.reviews")

	reviews, err := h.Svc.Reviews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(l, "list_reviews_error", err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ProductHTTP) AddReview(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "product.add_review")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.ReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	r, err := h.Svc.AddReview(c.Request().Context(), c.Param("id"), userID, middleware.UserName(c), req.Rating, req.Comment)
	if err != nil {
		return fail(l, "add_review_error", err)
	}
	return c.JSON(http.StatusCreated, r)
}

func productInput(req transport.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		Images:      req.Images,
		IsActive:    transport.BoolDefault(req.IsActive, true),
	}
}

func priceParam(c echo.Context, name string) (*decimal.Decimal, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &d, nil
}
