package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"retailpos/internal/model"
)

type PosOrderItem struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int        `json:"quantity" binding:"required,min=1"`
}

type CreatePosOrderRequest struct {
	SessionID      uuid.UUID        `json:"session_id" binding:"required"`
	CustomerID     *uuid.UUID       `json:"customer_id"`
	Items          []PosOrderItem   `json:"items" binding:"required,min=1,dive"`
	PaymentMethod  string           `json:"payment_method" binding:"required,oneof=cash card mobile_money bank_transfer mixed"`
	DiscountType   *string          `json:"discount_type" binding:"omitempty,oneof=percentage fixed"`
	DiscountValue  *decimal.Decimal `json:"discount_value"`
	TenderedAmount *decimal.Decimal `json:"tendered_amount"`
	Notes          string           `json:"notes"`
}

// Receipt is the settlement result handed back to the till.
type Receipt struct {
	OrderID        uuid.UUID           `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	Status         model.OrderStatus   `json:"status"`
	PaymentStatus  model.PaymentStatus `json:"payment_status"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	AfterDiscount  decimal.Decimal     `json:"after_discount"`
	TaxAmount      decimal.Decimal     `json:"tax_amount"`
	Total          decimal.Decimal     `json:"total"`
	TenderedAmount *decimal.Decimal    `json:"tendered_amount,omitempty"`
	ChangeAmount   *decimal.Decimal    `json:"change_amount,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

type OrderListQuery struct {
	ListQuery
	Status   string     `form:"status" binding:"omitempty,oneof=DRAFT CONFIRMED PROCESSING COMPLETED CANCELLED REFUNDED"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
}

// CreateShopOrderRequest is an e-commerce checkout: no register session, no
// tendered cash. The customer record is resolved (or created) by email when
// no customer id is supplied.
type CreateShopOrderRequest struct {
	Items           []PosOrderItem `json:"items" binding:"required,min=1,dive"`
	PaymentMethod   string         `json:"payment_method" binding:"required,oneof=card mobile_money bank_transfer"`
	CustomerID      *uuid.UUID     `json:"customer_id"`
	CustomerName    string         `json:"customer_name" binding:"required,min=2"`
	CustomerEmail   string         `json:"customer_email" binding:"required,email"`
	CustomerPhone   string         `json:"customer_phone"`
	ShippingAddress string         `json:"shipping_address" binding:"required,min=5"`
	ShippingCity    string         `json:"shipping_city" binding:"required"`
	ShippingCountry string         `json:"shipping_country" binding:"required"`
	Notes           string         `json:"notes"`
}
