package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item. Prices are whole units of the smallest
// currency denomination (no fractional cents).
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SKU       string          `gorm:"uniqueIndex;not null" json:"sku"`
	Name      string          `gorm:"not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,0);not null" json:"price"`
	Stock     int             `gorm:"not null;default:0" json:"stock"`
	IsActive  bool            `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

func (Product) TableName() string { return "products" }

// ProductVariant carries its own stock and an optional signed price
// modifier relative to the parent product.
type ProductVariant struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	SKU           string           `gorm:"uniqueIndex;not null" json:"sku"`
	Name          string           `gorm:"not null" json:"name"`
	PriceModifier *decimal.Decimal `gorm:"type:decimal(12,0)" json:"price_modifier,omitempty"`
	Stock         int              `gorm:"not null;default:0" json:"stock"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func (ProductVariant) TableName() string { return "product_variants" }

// EffectivePrice resolves the unit price for a sale line: the product price
// plus the variant's modifier when one is set.
func (v *ProductVariant) EffectivePrice(p *Product) decimal.Decimal {
	if v != nil && v.PriceModifier != nil {
		return p.Price.Add(*v.PriceModifier)
	}
	return p.Price
}
