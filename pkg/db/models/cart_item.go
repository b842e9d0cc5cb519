package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem ties an authenticated user to a catalog product with a
// quantity of at least one. One row per (user, product) pair; the unique
// index backs the accumulate-on-add behavior at the storage layer.
type CartItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_items_user_product,priority:1"`
	CatalogID int       `gorm:"column:catalog_id;not null;uniqueIndex:idx_cart_items_user_product,priority:2"`
	Quantity  int       `gorm:"column:quantity;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
