package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
)

func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixedAmount
}

type Coupon struct {
	ID               string           `gorm:"primaryKey;size:36"          bson:"_id"                json:"id"`
	Code             string           `gorm:"uniqueIndex;not null"        bson:"code"               json:"code"`
	DiscountType     DiscountType     `gorm:"not null"                    bson:"discount_type"      json:"discountType"`
	Value            decimal.Decimal  `gorm:"type:numeric(12,2);not null" bson:"value"              json:"value"`
	MinCartValue     decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0" bson:"min_cart_value" json:"minCartValue"`
	MaxDiscountValue *decimal.Decimal `gorm:"type:numeric(12,2)"          bson:"max_discount_value" json:"maxDiscountValue"`
	StartDate        time.Time        `gorm:"not null"                    bson:"start_date"         json:"startDate"`
	EndDate          time.Time        `gorm:"not null"                    bson:"end_date"           json:"endDate"`
	UsageLimit       *int             `                                   bson:"usage_limit"        json:"usageLimit"`
	UsedCount        int              `gorm:"not null;default:0"          bson:"used_count"         json:"usedCount"`
	IsActive         bool             `gorm:"not null"                    bson:"is_active"          json:"isActive"`
	CreatedAt        time.Time        `                                   bson:"created_at"         json:"createdAt"`
	UpdatedAt        time.Time        `                                   bson:"updated_at"         json:"updatedAt"`
}

// AppliedCoupon is the part of a coupon a cart keeps so it can be
// re-priced without another lookup.
type AppliedCoupon struct {
	CouponID         string           `bson:"coupon_id"          json:"couponId"`
	Code             string           `bson:"code"               json:"code"`
	DiscountType     DiscountType     `bson:"discount_type"      json:"discountType"`
	Value            decimal.Decimal  `bson:"value"              json:"value"`
	MinCartValue     decimal.Decimal  `bson:"min_cart_value"     json:"minCartValue"`
	MaxDiscountValue *decimal.Decimal `bson:"max_discount_value" json:"maxDiscountValue"`
	EndDate          time.Time        `bson:"end_date"           json:"endDate"`
}

func (c *Coupon) Snapshot() *AppliedCoupon {
	return &AppliedCoupon{
		CouponID:         c.ID,
		Code:             c.Code,
		DiscountType:     c.DiscountType,
		Value:            c.Value,
		MinCartValue:     c.MinCartValue,
		MaxDiscountValue: c.MaxDiscountValue,
		EndDate:          c.EndDate,
	}
}

type CartItem struct {
	ProductID string          `bson:"product_id" json:"productId"`
	Name      string          `bson:"name"       json:"name"`
	Image     string          `bson:"image"      json:"image"`
	Price     decimal.Decimal `bson:"price"      json:"price"`
	Quantity  int             `bson:"quantity"   json:"quantity"`
}

type Cart struct {
	ID            string          `gorm:"primaryKey;size:36"          bson:"_id"            json:"id"`
	UserID        string          `gorm:"uniqueIndex;size:36;not null" bson:"user_id"       json:"userId"`
	Items         []CartItem      `gorm:"serializer:json;type:text"   bson:"items"          json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" bson:"subtotal"       json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:numeric(12,2);not null" bson:"discount"       json:"discount"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" bson:"total"          json:"total"`
	AppliedCoupon *AppliedCoupon  `gorm:"serializer:json;type:text"   bson:"applied_coupon" json:"appliedCoupon"`
	CreatedAt     time.Time       `                                   bson:"created_at"     json:"createdAt"`
	UpdatedAt     time.Time       `                                   bson:"updated_at"     json:"updatedAt"`
}

func (c *Cart) FindItem(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderCancelled  OrderStatus = "Cancelled"
)

type OrderItem struct {
	ProductID string          `bson:"product" json:"product"`
	Name      string          `bson:"name"    json:"name"`
	Image     string          `bson:"image"   json:"image"`
	Price     decimal.Decimal `bson:"price"   json:"price"`
	Quantity  int             `bson:"quantity" json:"quantity"`
}

type ShippingAddress struct {
	Address    string `bson:"address"     json:"address"    validate:"required"`
	City       string `bson:"city"        json:"city"       validate:"required"`
	PostalCode string `bson:"postal_code" json:"postalCode" validate:"required"`
	Country    string `bson:"country"     json:"country"    validate:"required"`
}

type Order struct {
	ID              string          `gorm:"primaryKey;size:36"          bson:"_id"              json:"id"`
	UserID          string          `gorm:"index;size:36;not null"      bson:"user_id"          json:"userId"`
	OrderItems      []OrderItem     `gorm:"serializer:json;type:text"   bson:"order_items"      json:"orderItems"`
	ShippingAddress ShippingAddress `gorm:"serializer:json;type:text"   bson:"shipping_address" json:"shippingAddress"`
	PaymentMethod   string          `                                   bson:"payment_method"   json:"paymentMethod"`
	ItemsPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" bson:"items_price"      json:"itemsPrice"`
	DiscountPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" bson:"discount_price"   json:"discountPrice"`
	TotalPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" bson:"total_price"      json:"totalPrice"`
	CouponCode      string          `                                   bson:"coupon_code"      json:"couponCode,omitempty"`
	Status          OrderStatus     `gorm:"index;not null"              bson:"status"           json:"status"`
	TrackingNumber  string          `                                   bson:"tracking_number"  json:"trackingNumber"`
	CancelledAt     *time.Time      `                                   bson:"cancelled_at"     json:"cancelledAt,omitempty"`
	CreatedAt       time.Time       `gorm:"index"                       bson:"created_at"       json:"createdAt"`
	UpdatedAt       time.Time       `                                   bson:"updated_at"       json:"updatedAt"`
}
