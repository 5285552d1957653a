package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderDraft      OrderStatus = "DRAFT"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PayCash         PaymentMethod = "cash"
	PayCard         PaymentMethod = "card"
	PayMobileMoney  PaymentMethod = "mobile_money"
	PayBankTransfer PaymentMethod = "bank_transfer"
	PayMixed        PaymentMethod = "mixed"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Order is a settled sale. SessionID and CashierID are set for till sales
// and nil for shop orders, which arrive without a register.
type Order struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderNumber    string           `gorm:"uniqueIndex;not null" json:"order_number"`
	SessionID      *uuid.UUID       `gorm:"type:uuid;index" json:"session_id,omitempty"`
	CustomerID     *uuid.UUID       `gorm:"type:uuid" json:"customer_id,omitempty"`
	CashierID      *uuid.UUID       `gorm:"type:uuid" json:"cashier_id,omitempty"`
	InvoiceID      *uuid.UUID       `gorm:"type:uuid" json:"invoice_id,omitempty"`
	Status         OrderStatus      `gorm:"type:varchar(16);not null;index" json:"status"`
	PaymentStatus  PaymentStatus    `gorm:"type:varchar(16);not null" json:"payment_status"`
	PaymentMethod  PaymentMethod    `gorm:"type:varchar(16);not null" json:"payment_method"`
	Subtotal       decimal.Decimal  `gorm:"type:decimal(12,0);not null" json:"subtotal"`
	DiscountType   *DiscountType    `gorm:"type:varchar(16)" json:"discount_type,omitempty"`
	DiscountValue  *decimal.Decimal `gorm:"type:decimal(12,0)" json:"discount_value,omitempty"`
	DiscountAmount decimal.Decimal  `gorm:"type:decimal(12,0);not null;default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal  `gorm:"type:decimal(12,0);not null;default:0" json:"tax_amount"`
	Total          decimal.Decimal  `gorm:"type:decimal(12,0);not null" json:"total"`
	TenderedAmount *decimal.Decimal `gorm:"type:decimal(12,0)" json:"tendered_amount,omitempty"`
	ChangeAmount   *decimal.Decimal `gorm:"type:decimal(12,0)" json:"change_amount,omitempty"`
	Notes          string           `json:"notes,omitempty"`

	// Shop-order contact and shipping details, empty for till sales.
	CustomerName    string `json:"customer_name,omitempty"`
	CustomerEmail   string `json:"customer_email,omitempty"`
	CustomerPhone   string `json:"customer_phone,omitempty"`
	ShippingAddress string `json:"shipping_address,omitempty"`
	ShippingCity    string `json:"shipping_city,omitempty"`
	ShippingCountry string `json:"shipping_country,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items   []OrderItem  `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Session *CashSession `gorm:"foreignKey:SessionID" json:"session,omitempty"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one sale line. Tax is computed and rounded per line
// independently of the order-level tax.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	VariantID *uuid.UUID      `gorm:"type:uuid" json:"variant_id,omitempty"`
	Name      string          `gorm:"not null" json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,0);not null" json:"unit_price"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,0);not null" json:"line_total"`
	TaxRate   int64           `gorm:"not null;default:0" json:"tax_rate"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0" json:"tax_amount"`
	CreatedAt time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }
