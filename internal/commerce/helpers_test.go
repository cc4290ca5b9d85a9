package commerce

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/haider-deku/3d-marketplace/internal/domain"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps every goroutine on the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

func newTestService(t *testing.T, opts ...Option) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewService(db, opts...), db
}

func seedClient(t *testing.T, db *gorm.DB) *domain.Client {
	t.Helper()
	id := common.UUIDint64()
	c := &domain.Client{
		ID:       id,
		Username: fmt.Sprintf("c%d", id),
		Email:    fmt.Sprintf("c%d@example.com", id),
		Password: "hash",
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedCategory(t *testing.T, db *gorm.DB, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{ID: common.UUIDint64(), CategName: name}
	require.NoError(t, db.Create(c).Error)
	return c
}

type price struct {
	size  string
	price float64
}

func seedProduct(t *testing.T, db *gorm.DB, category *domain.Category, name string, prices ...price) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:          common.UUIDint64(),
		ProductName: name,
		Type:        domain.ProductTypeCatalogue,
		CategoryID:  category.ID,
		CategName:   category.CategName,
		Images:      domain.StringList{name + ".png"},
		Color:       domain.StringList{"white"},
	}
	for i, pr := range prices {
		p.Pricing = append(p.Pricing, domain.ProductPricing{Size: pr.size, Price: pr.price, Position: i})
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func setPrice(t *testing.T, db *gorm.DB, productID int64, size string, value float64) {
	t.Helper()
	require.NoError(t, db.Model(&domain.ProductPricing{}).
		Where("product_id = ? AND size = ?", productID, size).
		Update("price", value).Error)
}

func removeSize(t *testing.T, db *gorm.DB, productID int64, size string) {
	t.Helper()
	require.NoError(t, db.Where("product_id = ? AND size = ?", productID, size).Delete(&domain.ProductPricing{}).Error)
}

func deleteProduct(t *testing.T, db *gorm.DB, productID int64) {
	t.Helper()
	require.NoError(t, db.Where("product_id = ?", productID).Delete(&domain.ProductPricing{}).Error)
	require.NoError(t, db.Delete(&domain.Product{}, productID).Error)
}

func storedCart(t *testing.T, db *gorm.DB, clientID int64) *domain.Cart {
	t.Helper()
	cart, err := NewGormCartRepository(db).GetByClient(context.Background(), clientID)
	require.NoError(t, err)
	return cart
}

func requireKind(t *testing.T, err error, kind Kind, message string) {
	t.Helper()
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok, "expected *commerce.Error, got %v", err)
	require.Equal(t, kind, e.Kind)
	if message != "" {
		require.Equal(t, message, e.Message)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
