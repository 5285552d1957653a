package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "DRAFT"
	InvoiceIssued    InvoiceStatus = "ISSUED"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
	InvoiceOverdue   InvoiceStatus = "OVERDUE"
)

// invoiceTransitions is the only legal status graph. CANCELLED is terminal.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceDraft:     {InvoiceIssued, InvoiceCancelled},
	InvoiceIssued:    {InvoicePaid, InvoiceCancelled, InvoiceOverdue},
	InvoicePaid:      {InvoiceCancelled},
	InvoiceCancelled: {},
	InvoiceOverdue:   {InvoicePaid, InvoiceCancelled},
}

// CanTransition reports whether from→to is a legal invoice status change.
func CanTransition(from, to InvoiceStatus) bool {
	for _, s := range invoiceTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// InvoiceItem is a frozen snapshot of an order line at invoicing time.
type InvoiceItem struct {
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	TaxRate   int64           `json:"tax_rate"`
}

type InvoiceItems []InvoiceItem

func (it InvoiceItems) Value() (driver.Value, error) {
	if it == nil {
		return "[]", nil
	}
	b, err := json.Marshal(it)
	return string(b), err
}

func (it *InvoiceItems) Scan(src any) error {
	if src == nil {
		*it = InvoiceItems{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("invoice items: unsupported scan type")
	}
	return json.Unmarshal(b, it)
}

// Invoice is the fiscal document generated from a settled order. Amounts
// are snapshots, never recomputed from the order afterwards.
type Invoice struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InvoiceNumber  string          `gorm:"uniqueIndex;not null" json:"invoice_number"`
	OrderID        uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"order_id"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid" json:"customer_id,omitempty"`
	Status         InvoiceStatus   `gorm:"type:varchar(16);not null;index" json:"status"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,0);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,0);not null;default:0" json:"tax_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(12,0);not null" json:"total"`
	Items          InvoiceItems    `gorm:"type:jsonb;default:'[]'" json:"items"`
	IssuedAt       *time.Time      `json:"issued_at,omitempty"`
	DueDate        *time.Time      `gorm:"index" json:"due_date,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	PDFPath        string          `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }
