package models

import (
	"time"

	"github.com/google/uuid"
)

// Order is a prior purchase. UserID is nil for guest checkouts; in that case
// the shipping contact fields are the only way to reach the buyer.
type Order struct {
	BaseModel
	UserID              *uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	User                *User       `json:"user,omitempty"`
	OrderNumber         string      `gorm:"uniqueIndex" json:"order_number"`
	Status              string      `json:"status"`
	PlacedAt            time.Time   `json:"placed_at"`
	Subtotal            float64     `json:"subtotal"`
	ShippingFee         float64     `json:"shipping_fee"`
	TotalAmount         float64     `json:"total_amount"`
	Currency            string      `json:"currency"`
	ShippingName        string      `json:"shipping_name"`
	ShippingEmail       string      `json:"shipping_email"`
	ShippingAddressLine string      `json:"shipping_address_line"`
	ShippingCity        string      `json:"shipping_city"`
	Notes               string      `json:"notes"`
	Items               []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID          uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID        *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductVariantID *uuid.UUID `gorm:"type:uuid" json:"product_variant_id"`
	ProductName      string     `json:"product_name"`
	VariantLabel     string     `json:"variant_label"`
	ImageURL         string     `json:"image_url"`
	Quantity         int        `json:"quantity"`
	UnitPrice        float64    `json:"unit_price"`
	LineTotal        float64    `json:"line_total"`
}
