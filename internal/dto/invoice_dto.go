package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT ISSUED PAID CANCELLED OVERDUE"`
	Notes  string `json:"notes"`
}

type InvoiceListQuery struct {
	ListQuery
	Status   string     `form:"status" binding:"omitempty,oneof=DRAFT ISSUED PAID CANCELLED OVERDUE"`
	DateFrom *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo   *time.Time `form:"date_to" time_format:"2006-01-02"`
}

type InvoiceStats struct {
	TotalCount   int64            `json:"total_count"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
	PaidCount    int64            `json:"paid_count"`
	PaidAmount   decimal.Decimal  `json:"paid_amount"`
	OverdueCount int64            `json:"overdue_count"`
	ByStatus     map[string]int64 `json:"by_status"`
}

type OverdueSweepResult struct {
	MarkedOverdue int `json:"marked_overdue"`
}

// SendInvoiceRequest optionally overrides the recipient; by default the
// invoice goes to its customer's email address.
type SendInvoiceRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}
