package analytics

import (
	"context"

	"github.com/storefront/backend/internal/domain/order"
)

// Repository defines the read-only queries behind the analytics service.
// Range filters apply to orders.created_at inclusively.
type Repository interface {
	// RevenueTotals sums paid order totals and counts paid/unpaid orders
	RevenueTotals(ctx context.Context, r DateRange) (RevenueTotals, error)

	// OrderCounts counts orders by status and payment method, plus order item rows.
	// A non-nil status restricts every count to that status.
	OrderCounts(ctx context.Context, r DateRange, status *order.Status) (OrderCounts, error)

	// InventoryTotals summarizes current product stock
	InventoryTotals(ctx context.Context, lowStockThreshold int) (InventoryTotals, error)

	// PaidProductSales aggregates paid-order item revenue and quantity per product
	PaidProductSales(ctx context.Context, r DateRange) ([]ProductSales, error)

	// ProductStocks lists every product's stock, price and category pointer
	ProductStocks(ctx context.Context) ([]ProductStock, error)

	// OrderPoints lists the created_at, total and paid flag of orders in range
	OrderPoints(ctx context.Context, r DateRange, status *order.Status) ([]OrderPoint, error)

	// BestSellers ranks products by quantity sold on paid orders
	BestSellers(ctx context.Context, r DateRange, limit int) ([]BestSeller, error)

	// InventoryProducts lists products for the stock table with a total count
	InventoryProducts(ctx context.Context, q InventoryQuery) ([]InventoryProduct, int64, error)
}
