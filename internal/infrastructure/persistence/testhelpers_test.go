package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens an isolated in-memory database with the storefront schema
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.CategoryModel{},
		&models.SubCategoryModel{},
		&models.SubSubCategoryModel{},
		&models.ProductModel{},
		&models.OrderModel{},
		&models.OrderItemModel{},
		&models.StatusHistoryModel{},
	))
	return db
}

func newProduct(t *testing.T, nameEn, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(catalog.NewProductInput{
		Name:  catalog.LocalizedText{En: nameEn, Fr: nameEn + " (fr)"},
		Price: valueobject.MustParseMoney(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return p
}

// seedProduct stores a new product and returns it
func seedProduct(t *testing.T, db *gorm.DB, nameEn, price string, stock int) *catalog.Product {
	t.Helper()
	p := newProduct(t, nameEn, price, stock)
	require.NoError(t, db.Create(models.ProductModelFromDomain(p)).Error)
	return p
}

var orderSeq int

// newOrder builds a pending order over the given products, one unit each
func newOrder(t *testing.T, userID uuid.UUID, products ...*catalog.Product) *order.Order {
	t.Helper()
	orderSeq++
	lines := make([]order.LineInput, len(products))
	for i, p := range products {
		lines[i] = order.LineInput{
			ProductID:   p.ID,
			ProductName: p.Name.En,
			UnitPrice:   p.Price,
			Quantity:    1,
		}
	}
	o, err := order.NewOrder(order.NewOrderInput{
		OrderNumber:   fmt.Sprintf("ORD-%08X", orderSeq),
		UserID:        userID,
		Customer:      order.CustomerInfo{Name: "Amina", Email: "amina@example.com"},
		Shipping:      order.ShippingAddress{City: "Algiers"},
		PaymentMethod: order.PaymentMethodCashOnDelivery,
		ShippingCost:  valueobject.MustParseMoney("5.00"),
		TaxAmount:     valueobject.Zero(),
		Lines:         lines,
	})
	require.NoError(t, err)
	return o
}

// seedOrder stores an order created at the given time
func seedOrder(t *testing.T, db *gorm.DB, o *order.Order, createdAt time.Time) {
	t.Helper()
	o.CreatedAt = createdAt
	o.UpdatedAt = createdAt
	for i := range o.Items {
		o.Items[i].CreatedAt = createdAt
	}
	require.NoError(t, NewGormOrderRepository(db).Create(context.Background(), o))
}

// fixedTime returns noon UTC on the given day of January 2024
func fixedTime(day int) time.Time {
	return time.Date(2024, time.January, day, 12, 0, 0, 0, time.UTC)
}
