package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, catalogID int) (*ProductDTO, error)
	ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error)
}

// ProductFinder is the narrow read surface consumed by the cart manager.
type ProductFinder interface {
	FindByCatalogID(ctx context.Context, catalogID int) (*models.Product, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Title       string
	Description string
	Category    string
	Price       decimal.Decimal
	Rating      float64
	Stock       int
}

// service implements the catalog service.
type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// CreateProduct validates the input and persists the product, allocating the
// next catalog id inside the same transaction as the insert.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var created *models.Product
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		catalogID, err := repo.NextCatalogID(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: allocate catalog id")
		}

		product := &models.Product{
			CatalogID:   catalogID,
			Title:       strings.TrimSpace(input.Title),
			Description: input.Description,
			Category:    input.Category,
			Price:       input.Price,
			Rating:      input.Rating,
			Stock:       input.Stock,
		}
		created, err = repo.Create(ctx, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert product")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}

	return FromModel(created), nil
}

// GetProduct loads a single product by its public catalog id.
func (s *service) GetProduct(ctx context.Context, catalogID int) (*ProductDTO, error) {
	if catalogID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	product, err := s.repo.FindByCatalogID(ctx, catalogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return FromModel(product), nil
}

// ListProducts returns a page of the catalog ordered by catalog id.
func (s *service) ListProducts(ctx context.Context, params pagination.Params) (*ProductListResult, error) {
	params = pagination.Normalize(params)

	rows, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}

	return &ProductListResult{
		Products: fromModels(rows),
		Total:    total,
		Limit:    params.Limit,
		Offset:   params.Offset,
	}, nil
}

func validateCreateInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.Rating < 0 || input.Rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 0 and 5")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return nil
}
