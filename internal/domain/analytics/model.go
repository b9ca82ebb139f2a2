package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// RevenueMetrics summarizes paid revenue in a range
type RevenueMetrics struct {
	TotalRevenue      valueobject.Money `json:"totalRevenue"`
	AverageOrderValue valueobject.Money `json:"averageOrderValue"`
	PaidOrders        int64             `json:"paidOrders"`
	UnpaidOrders      int64             `json:"unpaidOrders"`
}

// OrderMetrics summarizes order volume in a range
type OrderMetrics struct {
	TotalOrders            int64            `json:"totalOrders"`
	StatusHistogram        map[string]int64 `json:"statusHistogram"`
	PaymentMethodHistogram map[string]int64 `json:"paymentMethodHistogram"`
	AverageItemsPerOrder   float64          `json:"averageItemsPerOrder"`
	CancellationRate       float64          `json:"cancellationRate"`
}

// InventoryMetrics summarizes current stock across the catalog
type InventoryMetrics struct {
	TotalStockValue   valueobject.Money `json:"totalStockValue"`
	TotalStockUnits   int64             `json:"totalStockUnits"`
	LowStockCount     int64             `json:"lowStockCount"`
	OutOfStockCount   int64             `json:"outOfStockCount"`
	ActiveProducts    int64             `json:"activeProducts"`
	InactiveProducts  int64             `json:"inactiveProducts"`
	LowStockThreshold int               `json:"lowStockThreshold"`
}

// CategoryRevenue is paid revenue rolled up to a top-level category
type CategoryRevenue struct {
	CategoryID   uuid.UUID         `json:"categoryId"`
	CategoryName string            `json:"categoryName"`
	Revenue      valueobject.Money `json:"revenue"`
	Quantity     int64             `json:"quantity"`
}

// CategoryStock is current stock rolled up to a top-level category
type CategoryStock struct {
	CategoryID   uuid.UUID         `json:"categoryId"`
	CategoryName string            `json:"categoryName"`
	StockUnits   int64             `json:"stockUnits"`
	StockValue   valueobject.Money `json:"stockValue"`
	ProductCount int64             `json:"productCount"`
}

// ValueBucket is one order-value histogram bucket
type ValueBucket struct {
	Label      string  `json:"label"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TimeSeriesPoint is one bucket of the revenue/order time series
type TimeSeriesPoint struct {
	Period     string            `json:"period"`
	StartsAt   time.Time         `json:"startsAt"`
	Revenue    valueobject.Money `json:"revenue"`
	OrderCount int64             `json:"orderCount"`
}

// BestSeller is a product ranked by units sold on paid orders
type BestSeller struct {
	ProductID    uuid.UUID             `json:"productId"`
	ProductName  string                `json:"productName"`
	Names        catalog.LocalizedText `json:"-"`
	QuantitySold int64                 `json:"quantitySold"`
	Revenue      valueobject.Money     `json:"revenue"`
	CurrentStock int                   `json:"currentStock"`
}

// InventoryProduct is one row of the paginated stock listing
type InventoryProduct struct {
	ProductID  uuid.UUID             `json:"productId"`
	Name       string                `json:"name"`
	Names      catalog.LocalizedText `json:"-"`
	Price      valueobject.Money     `json:"price"`
	Stock      int                   `json:"stock"`
	StockState catalog.StockState    `json:"stockState"`
	IsActive   bool                  `json:"isActive"`
}

// Overview bundles the dashboard metrics for one range
type Overview struct {
	Range             DateRange         `json:"range"`
	Revenue           RevenueMetrics    `json:"revenue"`
	Orders            OrderMetrics      `json:"orders"`
	Inventory         InventoryMetrics  `json:"inventory"`
	RevenueByCategory []CategoryRevenue `json:"revenueByCategory"`
	ValueDistribution []ValueBucket     `json:"valueDistribution"`
	BestSellers       []BestSeller      `json:"bestSellers"`
}

// Raw rows read from the store

// RevenueTotals is the paid/unpaid split in a range
type RevenueTotals struct {
	PaidRevenue valueobject.Money
	PaidCount   int64
	UnpaidCount int64
}

// OrderCounts are the raw counts behind OrderMetrics
type OrderCounts struct {
	Total     int64
	ByStatus  map[string]int64
	ByPayment map[string]int64
	ItemRows  int64
}

// InventoryTotals are the raw counts behind InventoryMetrics
type InventoryTotals struct {
	StockValue valueobject.Money
	StockUnits int64
	LowStock   int64
	OutOfStock int64
	Active     int64
	Inactive   int64
}

// ProductSales is paid-order item revenue and quantity for one product
type ProductSales struct {
	ProductID uuid.UUID
	Quantity  int64
	Revenue   valueobject.Money
}

// ProductStock is one product's current stock and category pointer
type ProductStock struct {
	ProductID uuid.UUID
	Stock     int64
	Price     valueobject.Money
	Category  catalog.CategoryRef
}

// OrderPoint is the minimal order projection used for bucketing
type OrderPoint struct {
	CreatedAt  time.Time
	TotalPrice valueobject.Money
	IsPaid     bool
}

// InventoryQuery filters the stock listing
type InventoryQuery struct {
	SubCategoryID     *uuid.UUID
	SubSubCategoryIDs []uuid.UUID
	LowStockThreshold int
	Page              int
	PageSize          int
}
