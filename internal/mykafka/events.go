package mykafka

import "time"

const (
	TopicOrderEvents   = "order_events"
	TopicProductEvents = "product_events"
)

const (
	OrderCreated       = "order_created"
	OrderStatusChanged = "order_status_changed"
	ProductCreated     = "product_created"
	ProductUpdated     = "product_updated"
	ProductDeleted     = "product_deleted"
)

type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderID"`
	UserID     string    `json:"userID"`
	Status     string    `json:"status"`
	TotalPrice string    `json:"totalPrice"`
	ItemCount  int       `json:"itemCount"`
	CouponCode string    `json:"couponCode,omitempty"`
	At         time.Time `json:"at"`
}

type ProductEvent struct {
	Type      string    `json:"type"`
	ProductID string    `json:"productID"`
	Name      string    `json:"name,omitempty"`
	Price     string    `json:"price,omitempty"`
	Stock     int       `json:"stock"`
	At        time.Time `json:"at"`
}
