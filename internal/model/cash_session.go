package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	SessionOpen      SessionStatus = "OPEN"
	SessionSuspended SessionStatus = "SUSPENDED"
	SessionClosed    SessionStatus = "CLOSED"
)

// PaymentEntry accumulates per-method totals inside a session.
type PaymentEntry struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// PaymentBreakdown is stored as a jsonb column.
type PaymentBreakdown []PaymentEntry

func (p PaymentBreakdown) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	return string(b), err
}

func (p *PaymentBreakdown) Scan(src any) error {
	if src == nil {
		*p = PaymentBreakdown{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("payments: unsupported scan type")
	}
	return json.Unmarshal(b, p)
}

// Upsert adds amount to the entry matching method (first match wins),
// appending a new entry when none exists.
func (p PaymentBreakdown) Upsert(method string, amount decimal.Decimal) PaymentBreakdown {
	for i := range p {
		if p[i].Method == method {
			p[i].Amount = p[i].Amount.Add(amount)
			p[i].Count++
			return p
		}
	}
	return append(p, PaymentEntry{Method: method, Amount: amount, Count: 1})
}

// CashSession is one operator shift on a register. All money amounts are
// whole units of the smallest currency denomination.
type CashSession struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RegisterID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"register_id"`
	OpenedByID     uuid.UUID        `gorm:"type:uuid;not null" json:"opened_by_id"`
	ClosedByID     *uuid.UUID       `gorm:"type:uuid" json:"closed_by_id,omitempty"`
	Status         SessionStatus    `gorm:"type:varchar(16);not null;default:'OPEN';index" json:"status"`
	OpeningAmount  decimal.Decimal  `gorm:"type:decimal(12,0);not null" json:"opening_amount"`
	ClosingAmount  *decimal.Decimal `gorm:"type:decimal(12,0)" json:"closing_amount,omitempty"`
	ExpectedAmount *decimal.Decimal `gorm:"type:decimal(12,0)" json:"expected_amount,omitempty"`
	Difference     *decimal.Decimal `gorm:"type:decimal(12,0)" json:"difference,omitempty"`
	CashIn         decimal.Decimal  `gorm:"type:decimal(12,0);not null;default:0" json:"cash_in"`
	CashOut        decimal.Decimal  `gorm:"type:decimal(12,0);not null;default:0" json:"cash_out"`
	SalesCount     int              `gorm:"not null;default:0" json:"sales_count"`
	SalesTotal     decimal.Decimal  `gorm:"type:decimal(12,0);not null;default:0" json:"sales_total"`
	Payments       PaymentBreakdown `gorm:"type:jsonb;default:'[]'" json:"payments"`
	Notes          string           `json:"notes,omitempty"`
	OpenedAt       time.Time        `gorm:"not null" json:"opened_at"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`

	Register *Register `gorm:"foreignKey:RegisterID" json:"register,omitempty"`
}

func (CashSession) TableName() string { return "cash_sessions" }

// AvailableCash is the cash physically expected in the till right now.
func (s *CashSession) AvailableCash() decimal.Decimal {
	return s.OpeningAmount.Add(s.CashIn).Sub(s.CashOut)
}
