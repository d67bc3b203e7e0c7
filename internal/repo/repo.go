package repo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

// Product list orderings accepted by ProductFilter.Sort.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
	SortName      = "name"
)

type ProductFilter struct {
	CategoryIDs []string
	Query       string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStock     bool
	ActiveOnly  bool
	Sort        string
	Offset      int
	Limit       int
}

type OrderFilter struct {
	UserID string
	Status models.OrderStatus
	Offset int
	Limit  int
}

// Adapters return domain.ErrNotFound for missing records and
// domain.ErrValidation for unique key violations.

type CategoryRepo interface {
	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id string) error
	CountChildren(ctx context.Context, id string) (int64, error)
}

type ProductRepo interface {
	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, int64, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	CountProductsByCategory(ctx context.Context, categoryID string) (int64, error)
	// DecrementStock subtracts qty only while stock >= qty and returns
	// domain.ErrOutOfStock otherwise.
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
	UpdateProductRating(ctx context.Context, id string, rating decimal.Decimal, numReviews int) error
}

type CouponRepo interface {
	CreateCoupon(ctx context.Context, c *models.Coupon) error
	GetCoupon(ctx context.Context, id string) (*models.Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	ListCoupons(ctx context.Context) ([]models.Coupon, error)
	UpdateCoupon(ctx context.Context, c *models.Coupon) error
	DeleteCoupon(ctx context.Context, id string) error
	// RedeemCoupon increments usedCount in a single conditional write
	// guarded by usageLimit and returns domain.ErrUsageLimit when the
	// guard fails.
	RedeemCoupon(ctx context.Context, id string) error
}

type CartRepo interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	SaveCart(ctx context.Context, c *models.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

type OrderRepo interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, o *models.Order) error
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type WishlistRepo interface {
	AddWishlistItem(ctx context.Context, item *models.WishlistItem) error
	RemoveWishlistItem(ctx context.Context, userID, productID string) error
	ListWishlist(ctx context.Context, userID string) ([]models.WishlistItem, error)
}

type ReviewRepo interface {
	CreateReview(ctx context.Context, r *models.Review) error
	ListReviews(ctx context.Context, productID string) ([]models.Review, error)
}

// Store is the persistence boundary shared by the relational and the
// document backends.
type Store interface {
	CategoryRepo
	ProductRepo
	CouponRepo
	CartRepo
	OrderRepo
	UserRepo
	WishlistRepo
	ReviewRepo

	// WithinTx runs fn against a Store bound to one transaction. Returning
	// an error from fn rolls back every write made through tx.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
}
