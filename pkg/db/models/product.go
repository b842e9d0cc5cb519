package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. CatalogID is the human-facing sequential
// integer id assigned by the catalog on create; it is distinct from the
// internal storage identifier and is what cart items reference.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CatalogID   int             `gorm:"column:catalog_id;not null;uniqueIndex"`
	Title       string          `gorm:"column:title;not null"`
	Description string          `gorm:"column:description;not null"`
	Category    string          `gorm:"column:category;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Rating      float64         `gorm:"column:rating;type:numeric(2,1);not null;default:0"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
