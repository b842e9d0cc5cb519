package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes per-user cart operations.
type Service interface {
	ListCart(ctx context.Context, userID uuid.UUID) ([]CartEntryDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, catalogID, quantity int) (*CartItemDTO, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartItemDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
}

type service struct {
	repo    *Repository
	tx      txRunner
	catalog *products.Repository
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, catalog *products.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, tx: tx, catalog: catalog}, nil
}

// ListCart returns the user's cart joined with current product data.
func (s *service) ListCart(ctx context.Context, userID uuid.UUID) ([]CartEntryDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart")
	}
	return entriesFromRows(rows), nil
}

// AddItem puts quantity units of a product into the user's cart. If the
// product is already present the quantity accumulates onto the existing row;
// only the incremental quantity is checked against stock.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, catalogID, quantity int) (*CartItemDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var result *models.CartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := s.loadProduct(ctx, s.catalog.WithTx(tx), catalogID)
		if err != nil {
			return err
		}
		if product.Stock < quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{
					"product_id": catalogID,
					"requested":  quantity,
					"available":  product.Stock,
				})
		}

		existing, err := repo.FindByUserAndProduct(ctx, userID, catalogID)
		switch {
		case err == nil:
			result, err = s.accumulate(ctx, repo, existing.ID, quantity)
			return err

		case errors.Is(err, gorm.ErrRecordNotFound):
			item := &models.CartItem{
				UserID:    userID,
				CatalogID: catalogID,
				Quantity:  quantity,
			}
			created, err := repo.Create(ctx, item)
			if err != nil {
				if db.IsUniqueViolation(err) {
					// lost an insert race; fold into the winning row
					winner, ferr := repo.FindByUserAndProduct(ctx, userID, catalogID)
					if ferr != nil {
						return pkgerrors.Wrap(pkgerrors.CodeInternal, ferr, "db: reload cart row")
					}
					result, err = s.accumulate(ctx, repo, winner.ID, quantity)
					return err
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert cart item")
			}
			result = created
			return nil

		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load cart row")
		}
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
	}

	return itemFromModel(result), nil
}

// UpdateItem replaces the quantity of an owned cart item. The new quantity is
// checked against current stock as an absolute value.
func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartItemDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var result *models.CartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load cart item")
		}
		if item.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "cart item belongs to another user")
		}

		product, err := s.loadProduct(ctx, s.catalog.WithTx(tx), item.CatalogID)
		if err != nil {
			return err
		}
		if product.Stock < quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{
					"product_id": item.CatalogID,
					"requested":  quantity,
					"available":  product.Stock,
				})
		}

		if err := repo.UpdateQuantity(ctx, item.ID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update cart quantity")
		}
		item.Quantity = quantity
		result = item
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}

	return itemFromModel(result), nil
}

// RemoveItem deletes an owned cart item. Removing an already-removed item
// reports not found rather than succeeding silently.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindByID(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load cart item")
		}
		if item.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "cart item belongs to another user")
		}

		if err := repo.Delete(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete cart item")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	return nil
}

// accumulate atomically adds quantity onto an existing row and reloads it so
// the returned item reflects increments from concurrent adds.
func (s *service) accumulate(ctx context.Context, repo *Repository, id uuid.UUID, quantity int) (*models.CartItem, error) {
	if err := repo.AccumulateQuantity(ctx, id, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: accumulate cart quantity")
	}
	item, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: reload cart row")
	}
	return item, nil
}

func (s *service) loadProduct(ctx context.Context, finder products.ProductFinder, catalogID int) (*models.Product, error) {
	if catalogID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}
	product, err := finder.FindByCatalogID(ctx, catalogID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}
