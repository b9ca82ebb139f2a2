package analytics

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// valueBucketBounds are the inclusive upper bounds of the order-value histogram.
// The last bucket is open-ended.
var valueBucketBounds = []struct {
	label string
	upper decimal.Decimal
}{
	{"0-50", decimal.NewFromInt(50)},
	{"51-100", decimal.NewFromInt(100)},
	{"101-200", decimal.NewFromInt(200)},
	{"201-500", decimal.NewFromInt(500)},
	{"501+", decimal.Decimal{}},
}

// CategoryNamer resolves a top-level category id to a display name
type CategoryNamer func(categoryID uuid.UUID) string

// Percentage returns part/whole*100 rounded to 2 places, or 0 when whole is 0
func Percentage(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole)).
		Round(2).
		InexactFloat64()
}

func ratio(part, whole int64, places int32) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).Div(decimal.NewFromInt(whole)).Round(places).InexactFloat64()
}

// BuildRevenueMetrics derives averages from raw totals
func BuildRevenueMetrics(t RevenueTotals) RevenueMetrics {
	return RevenueMetrics{
		TotalRevenue:      t.PaidRevenue.Round(),
		AverageOrderValue: t.PaidRevenue.DivideByInt(t.PaidCount).Round(),
		PaidOrders:        t.PaidCount,
		UnpaidOrders:      t.UnpaidCount,
	}
}

// BuildOrderMetrics zero-fills the histograms and derives the rates
func BuildOrderMetrics(c OrderCounts) OrderMetrics {
	byStatus := make(map[string]int64, len(order.AllStatuses))
	for _, s := range order.AllStatuses {
		byStatus[s.String()] = c.ByStatus[s.String()]
	}
	byPayment := make(map[string]int64, len(order.AllPaymentMethods))
	for _, m := range order.AllPaymentMethods {
		byPayment[m.String()] = c.ByPayment[m.String()]
	}
	return OrderMetrics{
		TotalOrders:            c.Total,
		StatusHistogram:        byStatus,
		PaymentMethodHistogram: byPayment,
		AverageItemsPerOrder:   ratio(c.ItemRows, c.Total, 2),
		CancellationRate:       ratio(byStatus[order.StatusCancelled.String()], c.Total, 4),
	}
}

// BuildInventoryMetrics copies raw inventory totals into the response shape
func BuildInventoryMetrics(t InventoryTotals, threshold int) InventoryMetrics {
	return InventoryMetrics{
		TotalStockValue:   t.StockValue.Round(),
		TotalStockUnits:   t.StockUnits,
		LowStockCount:     t.LowStock,
		OutOfStockCount:   t.OutOfStock,
		ActiveProducts:    t.Active,
		InactiveProducts:  t.Inactive,
		LowStockThreshold: threshold,
	}
}

// RollUpRevenue folds per-product paid sales into top-level categories.
// topLevel maps each product to exactly one category, so every product contributes once;
// products absent from the map land in the uncategorized bucket (uuid.Nil).
// Output is sorted by revenue descending.
func RollUpRevenue(sales []ProductSales, topLevel map[uuid.UUID]uuid.UUID, name CategoryNamer) []CategoryRevenue {
	acc := make(map[uuid.UUID]*CategoryRevenue)
	for _, s := range sales {
		categoryID := topLevel[s.ProductID]
		row, ok := acc[categoryID]
		if !ok {
			row = &CategoryRevenue{CategoryID: categoryID, CategoryName: name(categoryID), Revenue: valueobject.Zero()}
			acc[categoryID] = row
		}
		row.Revenue = row.Revenue.Add(s.Revenue)
		row.Quantity += s.Quantity
	}

	out := make([]CategoryRevenue, 0, len(acc))
	for _, row := range acc {
		row.Revenue = row.Revenue.Round()
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equals(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out
}

// RollUpStock folds per-product stock into top-level categories, sorted by stock value descending
func RollUpStock(products []ProductStock, topLevel map[uuid.UUID]uuid.UUID, name CategoryNamer) []CategoryStock {
	acc := make(map[uuid.UUID]*CategoryStock)
	for _, p := range products {
		categoryID := topLevel[p.ProductID]
		row, ok := acc[categoryID]
		if !ok {
			row = &CategoryStock{CategoryID: categoryID, CategoryName: name(categoryID), StockValue: valueobject.Zero()}
			acc[categoryID] = row
		}
		row.StockUnits += p.Stock
		row.StockValue = row.StockValue.Add(p.Price.MultiplyByInt(p.Stock))
		row.ProductCount++
	}

	out := make([]CategoryStock, 0, len(acc))
	for _, row := range acc {
		row.StockValue = row.StockValue.Round()
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StockValue.Equals(out[j].StockValue) {
			return out[i].StockValue.GreaterThan(out[j].StockValue)
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out
}

// BucketOrderValues builds the order-value histogram. Every bucket is present, in fixed order.
func BucketOrderValues(points []OrderPoint) []ValueBucket {
	counts := make([]int64, len(valueBucketBounds))
	last := len(valueBucketBounds) - 1
	for _, p := range points {
		amount := p.TotalPrice.Amount()
		idx := last
		for i := 0; i < last; i++ {
			if amount.LessThanOrEqual(valueBucketBounds[i].upper) {
				idx = i
				break
			}
		}
		counts[idx]++
	}

	total := int64(len(points))
	out := make([]ValueBucket, len(valueBucketBounds))
	for i, b := range valueBucketBounds {
		out[i] = ValueBucket{Label: b.label, Count: counts[i], Percentage: Percentage(counts[i], total)}
	}
	return out
}

// BuildTimeSeries groups orders into chronological buckets.
// Revenue counts paid orders only; OrderCount counts every order.
func BuildTimeSeries(points []OrderPoint, groupBy GroupBy) []TimeSeriesPoint {
	acc := make(map[int64]*TimeSeriesPoint)
	for _, p := range points {
		start := groupBy.Truncate(p.CreatedAt)
		key := start.Unix()
		row, ok := acc[key]
		if !ok {
			row = &TimeSeriesPoint{Period: groupBy.Label(start), StartsAt: start, Revenue: valueobject.Zero()}
			acc[key] = row
		}
		row.OrderCount++
		if p.IsPaid {
			row.Revenue = row.Revenue.Add(p.TotalPrice)
		}
	}

	out := make([]TimeSeriesPoint, 0, len(acc))
	for _, row := range acc {
		row.Revenue = row.Revenue.Round()
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}
