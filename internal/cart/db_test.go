package cart

import (
	"fmt"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Product{}, &models.Counter{}, &models.CartItem{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func mustCreateTestUser(t *testing.T, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Username:     fmt.Sprintf("user_%s", uuid.NewString()[:8]),
		Email:        fmt.Sprintf("cart_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustCreateTestProduct(t *testing.T, conn *gorm.DB, catalogID, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		CatalogID: catalogID,
		Title:     fmt.Sprintf("Product %d", catalogID),
		Category:  "test",
		Price:     decimal.NewFromFloat(9.99),
		Rating:    4.0,
		Stock:     stock,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
