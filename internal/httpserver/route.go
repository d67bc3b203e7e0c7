package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type Deps struct {
	Store    repo.Store
	Auth     *middleware.AuthMiddleware
	Users    *AuthHTTP
	Category *CategoryHTTP
	Product  *ProductHTTP
	Cart     *CartHTTP
	Coupon   *CouponHTTP
	Order    *OrderHTTP
	Wishlist *WishlistHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api")
	authed := d.Auth.RequireAuth
	admin := d.Auth.RequireAdmin

	auth := api.Group("/auth")
	auth.POST("/register", d.Users.Register)
	auth.POST("/login", d.Users.Login)
	auth.POST("/logout", d.Users.Logout)
	auth.GET("/me", d.Users.Me, authed)

	categories := api.Group("/categories")
	categories.GET("", d.Category.List)
	categories.GET("/tree", d.Category.Tree)
	categories.GET("/:id", d.Category.Get)
	categories.POST("", d.Category.Create, admin)
	categories.PUT("/:id", d.Category.Update, admin)
	categories.DELETE("/:id", d.Category.Delete, admin)

	products := api.Group("/products")
	products.GET("", d.Product.List)
	products.GET("/search", d.Product.Search)
	products.GET("/:id", d.Product.Get)
	products.POST("", d.Product.Create, admin)
	products.PUT("/:id", d.Product.Update, admin)
	products.DELETE("/:id", d.Product.Delete, admin)
	products.GET("/:id/reviews", d.Product.Reviews)
	products.POST("/:id/reviews", d.Product.AddReview, authed)

	cart := api.Group("/cart", authed)
	cart.GET("", d.Cart.Get)
	cart.DELETE("", d.Cart.Clear)
	cart.POST("/items", d.Cart.AddItem)
	cart.PATCH("/items/:productId", d.Cart.UpdateItem)
	cart.DELETE("/items/:productId", d.Cart.RemoveItem)
	cart.POST("/coupon", d.Cart.ApplyCoupon)
	cart.DELETE("/coupon", d.Cart.RemoveCoupon)

	coupons := api.Group("/coupons", admin)
	coupons.GET("", d.Coupon.List)
	coupons.POST("", d.Coupon.Create)
	coupons.PUT("/:id", d.Coupon.Update)
	coupons.DELETE("/:id", d.Coupon.Delete)

	orders := api.Group("/orders")
	orders.POST("", d.Order.Checkout, authed)
	orders.GET("/mine", d.Order.ListMine, authed)
	orders.GET("/:id", d.Order.Get, authed)
	orders.POST("/:id/cancel", d.Order.Cancel, authed)
	orders.GET("", d.Order.List, admin)
	orders.PATCH("/:id", d.Order.UpdateStatus, admin)

	wishlist := api.Group("/wishlist", authed)
	wishlist.GET("", d.Wishlist.List)
	wishlist.POST("/:productId", d.Wishlist.Add)
	wishlist.DELETE("/:productId", d.Wishlist.Remove)
}
