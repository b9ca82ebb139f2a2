package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/analytics"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAnalyticsRepository implements analytics.Repository with aggregate SQL.
// Queries stay within what both Postgres and SQLite accept.
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

// ordersInRange scopes a query on orders to the inclusive range
func ordersInRange(db *gorm.DB, r analytics.DateRange, status *order.Status) *gorm.DB {
	db = db.Where("orders.created_at >= ? AND orders.created_at <= ?", r.Start, r.End)
	if status != nil {
		db = db.Where("orders.status = ?", status.String())
	}
	return db
}

// RevenueTotals sums paid totals and counts paid/unpaid orders
func (r *GormAnalyticsRepository) RevenueTotals(ctx context.Context, dr analytics.DateRange) (analytics.RevenueTotals, error) {
	var row struct {
		PaidRevenue decimal.Decimal
		PaidCount   int64
		UnpaidCount int64
	}
	err := ordersInRange(r.db.WithContext(ctx).Model(&models.OrderModel{}), dr, nil).
		Select(`COALESCE(SUM(CASE WHEN is_paid = ? THEN total_price ELSE 0 END), 0) AS paid_revenue,
			COALESCE(SUM(CASE WHEN is_paid = ? THEN 1 ELSE 0 END), 0) AS paid_count,
			COALESCE(SUM(CASE WHEN is_paid = ? THEN 0 ELSE 1 END), 0) AS unpaid_count`, true, true, true).
		Scan(&row).Error
	if err != nil {
		return analytics.RevenueTotals{}, err
	}
	return analytics.RevenueTotals{
		PaidRevenue: valueobject.NewMoney(row.PaidRevenue).Round(),
		PaidCount:   row.PaidCount,
		UnpaidCount: row.UnpaidCount,
	}, nil
}

type groupCount struct {
	GroupKey string
	Count    int64
}

// OrderCounts counts orders by status and payment method plus item rows
func (r *GormAnalyticsRepository) OrderCounts(ctx context.Context, dr analytics.DateRange, status *order.Status) (analytics.OrderCounts, error) {
	db := r.db.WithContext(ctx)
	counts := analytics.OrderCounts{
		ByStatus:  make(map[string]int64),
		ByPayment: make(map[string]int64),
	}

	var byStatus []groupCount
	if err := ordersInRange(db.Model(&models.OrderModel{}), dr, status).
		Select("status AS group_key, COUNT(*) AS count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return analytics.OrderCounts{}, err
	}
	for _, g := range byStatus {
		counts.ByStatus[g.GroupKey] = g.Count
		counts.Total += g.Count
	}

	var byPayment []groupCount
	if err := ordersInRange(db.Model(&models.OrderModel{}), dr, status).
		Select("payment_method AS group_key, COUNT(*) AS count").
		Group("payment_method").
		Scan(&byPayment).Error; err != nil {
		return analytics.OrderCounts{}, err
	}
	for _, g := range byPayment {
		counts.ByPayment[g.GroupKey] = g.Count
	}

	if err := ordersInRange(
		db.Model(&models.OrderItemModel{}).Joins("JOIN orders ON orders.id = order_items.order_id"),
		dr, status,
	).Count(&counts.ItemRows).Error; err != nil {
		return analytics.OrderCounts{}, err
	}
	return counts, nil
}

// InventoryTotals summarizes current stock across every product
func (r *GormAnalyticsRepository) InventoryTotals(ctx context.Context, lowStockThreshold int) (analytics.InventoryTotals, error) {
	var row struct {
		StockValue decimal.Decimal
		StockUnits int64
		LowStock   int64
		OutOfStock int64
		Active     int64
		Inactive   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Select(`COALESCE(SUM(price * stock), 0) AS stock_value,
			COALESCE(SUM(stock), 0) AS stock_units,
			COALESCE(SUM(CASE WHEN stock > 0 AND stock <= ? THEN 1 ELSE 0 END), 0) AS low_stock,
			COALESCE(SUM(CASE WHEN stock <= 0 THEN 1 ELSE 0 END), 0) AS out_of_stock,
			COALESCE(SUM(CASE WHEN is_active = ? THEN 1 ELSE 0 END), 0) AS active,
			COALESCE(SUM(CASE WHEN is_active = ? THEN 0 ELSE 1 END), 0) AS inactive`,
			lowStockThreshold, true, true).
		Scan(&row).Error
	if err != nil {
		return analytics.InventoryTotals{}, err
	}
	return analytics.InventoryTotals{
		StockValue: valueobject.NewMoney(row.StockValue).Round(),
		StockUnits: row.StockUnits,
		LowStock:   row.LowStock,
		OutOfStock: row.OutOfStock,
		Active:     row.Active,
		Inactive:   row.Inactive,
	}, nil
}

// PaidProductSales aggregates item revenue and quantity per product on paid orders
func (r *GormAnalyticsRepository) PaidProductSales(ctx context.Context, dr analytics.DateRange) ([]analytics.ProductSales, error) {
	var rows []struct {
		ProductID uuid.UUID
		Quantity  int64
		Revenue   decimal.Decimal
	}
	err := ordersInRange(
		r.db.WithContext(ctx).Model(&models.OrderItemModel{}).Joins("JOIN orders ON orders.id = order_items.order_id"),
		dr, nil,
	).
		Where("orders.is_paid = ?", true).
		Select("order_items.product_id AS product_id, SUM(order_items.quantity) AS quantity, SUM(order_items.subtotal) AS revenue").
		Group("order_items.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sales := make([]analytics.ProductSales, len(rows))
	for i, row := range rows {
		sales[i] = analytics.ProductSales{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			Revenue:   valueobject.NewMoney(row.Revenue).Round(),
		}
	}
	return sales, nil
}

// ProductStocks lists each product's stock, price and category pointer
func (r *GormAnalyticsRepository) ProductStocks(ctx context.Context) ([]analytics.ProductStock, error) {
	var rows []struct {
		ID               uuid.UUID
		Stock            int64
		Price            decimal.Decimal
		SubCategoryID    *uuid.UUID
		SubSubCategoryID *uuid.UUID
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Select("id, stock, price, sub_category_id, sub_sub_category_id").
		Order("id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	stocks := make([]analytics.ProductStock, len(rows))
	for i, row := range rows {
		stocks[i] = analytics.ProductStock{
			ProductID: row.ID,
			Stock:     row.Stock,
			Price:     valueobject.NewMoney(row.Price).Round(),
			Category: catalog.CategoryRef{
				SubCategoryID:    row.SubCategoryID,
				SubSubCategoryID: row.SubSubCategoryID,
			},
		}
	}
	return stocks, nil
}

// OrderPoints lists the minimal order projection in the range
func (r *GormAnalyticsRepository) OrderPoints(ctx context.Context, dr analytics.DateRange, status *order.Status) ([]analytics.OrderPoint, error) {
	var rows []struct {
		CreatedAt  time.Time
		TotalPrice decimal.Decimal
		IsPaid     bool
	}
	if err := ordersInRange(r.db.WithContext(ctx).Model(&models.OrderModel{}), dr, status).
		Select("created_at, total_price, is_paid").
		Order("created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	points := make([]analytics.OrderPoint, len(rows))
	for i, row := range rows {
		points[i] = analytics.OrderPoint{
			CreatedAt:  row.CreatedAt.UTC(),
			TotalPrice: valueobject.NewMoney(row.TotalPrice).Round(),
			IsPaid:     row.IsPaid,
		}
	}
	return points, nil
}

// BestSellers ranks products by quantity sold on paid orders
func (r *GormAnalyticsRepository) BestSellers(ctx context.Context, dr analytics.DateRange, limit int) ([]analytics.BestSeller, error) {
	var rows []struct {
		ProductID    uuid.UUID
		ProductName  string
		NameEn       string
		NameFr       string
		NameAr       string
		QuantitySold int64
		Revenue      decimal.Decimal
		Stock        int
	}
	err := ordersInRange(
		r.db.WithContext(ctx).
			Model(&models.OrderItemModel{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Joins("LEFT JOIN products ON products.id = order_items.product_id"),
		dr, nil,
	).
		Where("orders.is_paid = ?", true).
		Select(`order_items.product_id AS product_id,
			MAX(order_items.product_name) AS product_name,
			COALESCE(products.name_en, '') AS name_en,
			COALESCE(products.name_fr, '') AS name_fr,
			COALESCE(products.name_ar, '') AS name_ar,
			SUM(order_items.quantity) AS quantity_sold,
			SUM(order_items.subtotal) AS revenue,
			COALESCE(products.stock, 0) AS stock`).
		Group("order_items.product_id, products.name_en, products.name_fr, products.name_ar, products.stock").
		Order("quantity_sold DESC, order_items.product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sellers := make([]analytics.BestSeller, len(rows))
	for i, row := range rows {
		sellers[i] = analytics.BestSeller{
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			Names:        catalog.LocalizedText{En: row.NameEn, Fr: row.NameFr, Ar: row.NameAr},
			QuantitySold: row.QuantitySold,
			Revenue:      valueobject.NewMoney(row.Revenue).Round(),
			CurrentStock: row.Stock,
		}
	}
	return sellers, nil
}

// InventoryProducts pages products lowest stock first
func (r *GormAnalyticsRepository) InventoryProducts(ctx context.Context, q analytics.InventoryQuery) ([]analytics.InventoryProduct, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if q.SubCategoryID != nil {
		if len(q.SubSubCategoryIDs) > 0 {
			base = base.Where("sub_category_id = ? OR sub_sub_category_id IN ?", *q.SubCategoryID, q.SubSubCategoryIDs)
		} else {
			base = base.Where("sub_category_id = ?", *q.SubCategoryID)
		}
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	filter := shared.Filter{Page: q.Page, PageSize: q.PageSize, OrderBy: "stock", OrderDir: "asc"}.Normalize(0)
	var rows []models.ProductModel
	if err := base.Session(&gorm.Session{}).
		Order(orderClause(filter, ProductSortFields, "stock")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	products := make([]analytics.InventoryProduct, len(rows))
	for i := range rows {
		names := rows[i].Name.ToDomain()
		products[i] = analytics.InventoryProduct{
			ProductID:  rows[i].ID,
			Name:       names.En,
			Names:      names,
			Price:      valueobject.NewMoney(rows[i].Price).Round(),
			Stock:      rows[i].Stock,
			StockState: catalog.StockStateFor(rows[i].Stock, q.LowStockThreshold),
			IsActive:   rows[i].IsActive,
		}
	}
	return products, total, nil
}

// Ensure GormAnalyticsRepository implements analytics.Repository
var _ analytics.Repository = (*GormAnalyticsRepository)(nil)
