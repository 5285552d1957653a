package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"retailpos/internal/model"
)

type OpenSessionRequest struct {
	RegisterID    uuid.UUID       `json:"register_id" binding:"required"`
	OpeningAmount decimal.Decimal `json:"opening_amount" binding:"required"`
	Notes         string          `json:"notes"`
}

type CloseSessionRequest struct {
	ClosingAmount decimal.Decimal `json:"closing_amount" binding:"required"`
	Notes         string          `json:"notes"`
}

type CashMovementRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason" binding:"required,min=3"`
}

type SessionListQuery struct {
	ListQuery
	RegisterID *uuid.UUID `form:"register_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=OPEN SUSPENDED CLOSED"`
}

// SessionSummary is the live view of a session's cash position.
type SessionSummary struct {
	SessionID     uuid.UUID              `json:"session_id"`
	RegisterID    uuid.UUID              `json:"register_id"`
	Status        model.SessionStatus    `json:"status"`
	OpeningAmount decimal.Decimal        `json:"opening_amount"`
	CashIn        decimal.Decimal        `json:"cash_in"`
	CashOut       decimal.Decimal        `json:"cash_out"`
	ExpectedCash  decimal.Decimal        `json:"expected_cash"`
	SalesCount    int                    `json:"sales_count"`
	SalesTotal    decimal.Decimal        `json:"sales_total"`
	Payments      model.PaymentBreakdown `json:"payments"`
	OpenedAt      time.Time              `json:"opened_at"`
}

// DailySummary aggregates all sessions of a calendar day.
type DailySummary struct {
	Date         string          `json:"date"`
	SessionCount int             `json:"session_count"`
	OpenCount    int             `json:"open_count"`
	SalesCount   int             `json:"sales_count"`
	SalesTotal   decimal.Decimal `json:"sales_total"`
	CashIn       decimal.Decimal `json:"cash_in"`
	CashOut      decimal.Decimal `json:"cash_out"`
	TotalDiff    decimal.Decimal `json:"total_difference"`
}
