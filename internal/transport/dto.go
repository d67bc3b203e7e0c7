package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

type CategoryRequest struct {
	Name        string  `json:"name"        validate:"required,max=100"`
	Slug        string  `json:"slug"        validate:"max=120"`
	Description string  `json:"description" validate:"max=2000"`
	ParentID    *string `json:"parentId"`
	IsActive    *bool   `json:"isActive"`
	SortOrder   int     `json:"sortOrder"`
}

type ProductRequest struct {
	Name        string          `json:"name"        validate:"required,max=200"`
	Slug        string          `json:"slug"        validate:"max=220"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"       validate:"gte=0"`
	CategoryID  string          `json:"categoryId"  validate:"required"`
	Images      []string        `json:"images"      validate:"max=10,dive,required"`
	IsActive    *bool           `json:"isActive"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"  validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type AddCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"  validate:"gte=0"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

type CouponRequest struct {
	Code             string           `json:"code"             validate:"required,max=40"`
	DiscountType     string           `json:"discountType"     validate:"required,oneof=percentage fixed_amount"`
	Value            decimal.Decimal  `json:"value"`
	MinCartValue     decimal.Decimal  `json:"minCartValue"`
	MaxDiscountValue *decimal.Decimal `json:"maxDiscountValue"`
	StartDate        time.Time        `json:"startDate"        validate:"required"`
	EndDate          time.Time        `json:"endDate"          validate:"required"`
	UsageLimit       *int             `json:"usageLimit"`
	IsActive         *bool            `json:"isActive"`
}

// CheckoutRequest carries no prices. Order totals are always computed on
// the server.
type CheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod" validate:"required"`
}

type UpdateOrderRequest struct {
	Status         string  `json:"status"         validate:"required"`
	TrackingNumber *string `json:"trackingNumber"`
}

func BoolDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
