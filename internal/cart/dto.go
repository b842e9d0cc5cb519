package cart

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItemDTO is the transport shape of a stored cart row.
type CartItemDTO struct {
	ID        uuid.UUID `json:"id"`
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartEntryDTO is a cart row joined with current product data, as served by ListCart.
type CartEntryDTO struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ProductID int             `json:"product_id"`
	Title     string          `json:"title"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func itemFromModel(item *models.CartItem) *CartItemDTO {
	if item == nil {
		return nil
	}
	return &CartItemDTO{
		ID:        item.ID,
		ProductID: item.CatalogID,
		Quantity:  item.Quantity,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func entryFromRow(row CartEntry) CartEntryDTO {
	return CartEntryDTO{
		ItemID:    row.ItemID,
		ProductID: row.ProductID,
		Title:     row.Title,
		Category:  row.Category,
		Price:     row.Price,
		Quantity:  row.Quantity,
		LineTotal: row.Price.Mul(decimal.NewFromInt(int64(row.Quantity))),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func entriesFromRows(rows []CartEntry) []CartEntryDTO {
	out := make([]CartEntryDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryFromRow(row))
	}
	return out
}
