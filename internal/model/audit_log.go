package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditSale         AuditAction = "SALE"
	AuditSessionOpen  AuditAction = "SESSION_OPEN"
	AuditSessionClose AuditAction = "SESSION_CLOSE"
	AuditCashMove     AuditAction = "CASH_MOVEMENT"
	AuditStockAdjust  AuditAction = "STOCK_ADJUSTMENT"
	AuditInvoice      AuditAction = "INVOICE"
	AuditLogin        AuditAction = "LOGIN"
)

// JSONMap is an arbitrary jsonb payload.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("jsonmap: unsupported scan type")
	}
	return json.Unmarshal(b, m)
}

// AuditLog records who did what to which resource. Written asynchronously;
// a lost entry never fails the business operation it describes.
type AuditLog struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ActorID    *uuid.UUID  `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Action     AuditAction `gorm:"type:varchar(32);not null;index" json:"action"`
	Resource   string      `gorm:"not null" json:"resource"`
	ResourceID string      `gorm:"index" json:"resource_id"`
	Details    string      `json:"details,omitempty"`
	OldData    JSONMap     `gorm:"type:jsonb" json:"old_data,omitempty"`
	NewData    JSONMap     `gorm:"type:jsonb" json:"new_data,omitempty"`
	CreatedAt  time.Time   `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
