package model

import (
	"time"

	"github.com/google/uuid"
)

// Register is a physical point-of-sale terminal (till).
type Register struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`
	Name      string    `gorm:"not null" json:"name"`
	Location  string    `json:"location"`
	IsMain    bool      `gorm:"default:false" json:"is_main"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sessions []CashSession `gorm:"foreignKey:RegisterID" json:"sessions,omitempty"`
}

func (Register) TableName() string { return "registers" }
