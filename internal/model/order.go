package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusFailed     OrderStatus = "failed"
)

// Order is a checkout attempt. Rows are created as pending and afterwards only
// mutated by discount updates and payment provider webhooks; they are never deleted.
type Order struct {
	ID        string      `gorm:"primaryKey;size:36;not null" json:"id"`
	UserID    string      `gorm:"size:64;index;not null" json:"user_id"`
	UserEmail string      `gorm:"size:255" json:"user_email"`
	UserName  string      `gorm:"size:255" json:"user_name"`
	Items     []OrderItem `gorm:"serializer:json;type:text" json:"items"`

	Subtotal     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`
	Shipping     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping"`
	Tax          decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"tax"`
	Discount     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	DiscountCode string          `gorm:"size:64" json:"discount_code,omitempty"`
	Total        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`

	Status            OrderStatus `gorm:"size:32;index;not null" json:"status"`
	PaymentIntentID   string      `gorm:"size:255;index" json:"payment_intent_id,omitempty"`
	PaymentStatus     string      `gorm:"size:64" json:"payment_status,omitempty"`
	CheckoutSessionID string      `gorm:"size:255" json:"checkout_session_id,omitempty"`

	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// OrderItem is a snapshot of a catalog product at the time the order was placed.
type OrderItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Image       string          `json:"image"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingAddress columns are stored flattened as shipping_address_line1,
// shipping_city, ... on the orders table.
type ShippingAddress struct {
	Name         string `gorm:"size:255" json:"name,omitempty"`
	AddressLine1 string `gorm:"size:255" json:"address_line1,omitempty"`
	AddressLine2 string `gorm:"size:255" json:"address_line2,omitempty"`
	City         string `gorm:"size:128" json:"city,omitempty"`
	County       string `gorm:"size:128" json:"county,omitempty"`
	Postcode     string `gorm:"size:16" json:"postcode,omitempty"`
	Country      string `gorm:"size:64" json:"country,omitempty"`
}

func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}
