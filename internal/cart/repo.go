package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartEntry is a cart item joined with its current product data.
type CartEntry struct {
	ItemID    uuid.UUID       `gorm:"column:item_id"`
	ProductID int             `gorm:"column:catalog_id"`
	Title     string          `gorm:"column:title"`
	Category  string          `gorm:"column:category"`
	Price     decimal.Decimal `gorm:"column:price"`
	Stock     int             `gorm:"column:stock"`
	Quantity  int             `gorm:"column:quantity"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

// Repository manages persistent cart items.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads a cart item by its primary key.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByUserAndProduct loads the user's cart row for the given product, if any.
func (r *Repository) FindByUserAndProduct(ctx context.Context, userID uuid.UUID, catalogID int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND catalog_id = ?", userID, catalogID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByUser returns the user's cart entries joined with current product data.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]CartEntry, error) {
	var entries []CartEntry
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select(`cart_items.id AS item_id,
			cart_items.catalog_id,
			cart_items.quantity,
			cart_items.created_at,
			cart_items.updated_at,
			products.title,
			products.category,
			products.price,
			products.stock`).
		Joins("JOIN products ON products.catalog_id = cart_items.catalog_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.created_at ASC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Create inserts a new cart item row.
func (r *Repository) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateQuantity overwrites the stored quantity for a cart item.
func (r *Repository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		UpdateColumn("quantity", quantity).Error
}

// AccumulateQuantity adds delta to the stored quantity in a single UPDATE so
// concurrent adds never overwrite each other's increments.
func (r *Repository) AccumulateQuantity(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", delta)).Error
}

// Delete removes a cart item row by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", id).Error
}
