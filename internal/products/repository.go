package products

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes product persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// NextCatalogID atomically allocates the next sequential catalog id.
// Must run inside the same transaction as the product insert so a failed
// create does not leave a gap.
func (r *Repository) NextCatalogID(ctx context.Context) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Raw(
		`INSERT INTO counters (name, value) VALUES (?, 1)
		 ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
		 RETURNING value`,
		models.CounterCatalogID,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByCatalogID loads a product by its public catalog id.
func (r *Repository) FindByCatalogID(ctx context.Context, catalogID int) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("catalog_id = ?", catalogID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns products ordered by catalog id with limit/offset pagination.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Product, error) {
	params = pagination.Normalize(params)
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Order("catalog_id ASC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the total number of products in the catalog.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
