package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func m(s string) valueobject.Money { return valueobject.MustParseMoney(s) }

func staticNamer(names map[uuid.UUID]string) CategoryNamer {
	return func(id uuid.UUID) string {
		if n, ok := names[id]; ok {
			return n
		}
		return "Uncategorized"
	}
}

func TestBucketOrderValues(t *testing.T) {
	points := []OrderPoint{
		{TotalPrice: m("0")},
		{TotalPrice: m("50.00")},
		{TotalPrice: m("50.01")},
		{TotalPrice: m("100.00")},
		{TotalPrice: m("150")},
		{TotalPrice: m("200.00")},
		{TotalPrice: m("500.00")},
		{TotalPrice: m("500.01")},
	}

	buckets := BucketOrderValues(points)
	require.Len(t, buckets, 5)

	labels := make([]string, len(buckets))
	for i, b := range buckets {
		labels[i] = b.Label
	}
	assert.Equal(t, []string{"0-50", "51-100", "101-200", "201-500", "501+"}, labels)

	assert.Equal(t, int64(2), buckets[0].Count)
	assert.Equal(t, int64(2), buckets[1].Count)
	assert.Equal(t, int64(2), buckets[2].Count)
	assert.Equal(t, int64(1), buckets[3].Count)
	assert.Equal(t, int64(1), buckets[4].Count)
	assert.Equal(t, 25.0, buckets[0].Percentage)
	assert.Equal(t, 12.5, buckets[4].Percentage)
}

func TestBucketOrderValues_Empty(t *testing.T) {
	buckets := BucketOrderValues(nil)
	require.Len(t, buckets, 5)
	for _, b := range buckets {
		assert.Zero(t, b.Count)
		assert.Zero(t, b.Percentage)
	}
}

func TestBuildTimeSeries(t *testing.T) {
	points := []OrderPoint{
		{CreatedAt: time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC), TotalPrice: m("10.00"), IsPaid: true},
		{CreatedAt: time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), TotalPrice: m("5.00"), IsPaid: true},
		{CreatedAt: time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), TotalPrice: m("7.00"), IsPaid: false},
		{CreatedAt: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), TotalPrice: m("1.50"), IsPaid: true},
	}

	t.Run("day", func(t *testing.T) {
		series := BuildTimeSeries(points, GroupByDay)
		require.Len(t, series, 3)
		assert.Equal(t, "2024-01-01", series[0].Period)
		assert.Equal(t, int64(2), series[0].OrderCount)
		assert.Equal(t, "5.00", series[0].Revenue.String(), "unpaid orders add no revenue")
		assert.Equal(t, "2024-01-03", series[1].Period)
		assert.Equal(t, "2024-02-10", series[2].Period)
	})

	t.Run("week starts monday", func(t *testing.T) {
		series := BuildTimeSeries(points, GroupByWeek)
		require.Len(t, series, 2)
		// 2024-01-01 is a Monday
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series[0].StartsAt)
		assert.Equal(t, "2024-W01", series[0].Period)
		assert.Equal(t, int64(3), series[0].OrderCount)
		assert.Equal(t, "15.00", series[0].Revenue.String())
	})

	t.Run("month", func(t *testing.T) {
		series := BuildTimeSeries(points, GroupByMonth)
		require.Len(t, series, 2)
		assert.Equal(t, "2024-01", series[0].Period)
		assert.Equal(t, "2024-02", series[1].Period)
		assert.Equal(t, "1.50", series[1].Revenue.String())
	})
}

func TestGroupBy_TruncateSunday(t *testing.T) {
	sunday := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), GroupByWeek.Truncate(sunday))
}

func TestRollUpRevenue_CountsEachProductOnce(t *testing.T) {
	electronics := uuid.New()
	home := uuid.New()
	phone, headset, pan, orphan := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	topLevel := map[uuid.UUID]uuid.UUID{
		phone:   electronics,
		headset: electronics,
		pan:     home,
	}
	sales := []ProductSales{
		{ProductID: phone, Quantity: 2, Revenue: m("200.00")},
		{ProductID: headset, Quantity: 1, Revenue: m("50.00")},
		{ProductID: pan, Quantity: 3, Revenue: m("60.00")},
		{ProductID: orphan, Quantity: 1, Revenue: m("9.99")},
	}

	rows := RollUpRevenue(sales, topLevel, staticNamer(map[uuid.UUID]string{electronics: "Electronics", home: "Home"}))
	require.Len(t, rows, 3)

	assert.Equal(t, "Electronics", rows[0].CategoryName)
	assert.Equal(t, "250.00", rows[0].Revenue.String())
	assert.Equal(t, int64(3), rows[0].Quantity)
	assert.Equal(t, "Home", rows[1].CategoryName)
	assert.Equal(t, "Uncategorized", rows[2].CategoryName)
	assert.Equal(t, uuid.Nil, rows[2].CategoryID)

	total := valueobject.Zero()
	for _, r := range rows {
		total = total.Add(r.Revenue)
	}
	assert.Equal(t, "319.99", total.String(), "roll-up preserves the grand total")
}

func TestRollUpStock(t *testing.T) {
	cat := uuid.New()
	a, b := uuid.New(), uuid.New()
	rows := RollUpStock([]ProductStock{
		{ProductID: a, Stock: 3, Price: m("2.50")},
		{ProductID: b, Stock: 0, Price: m("100")},
	}, map[uuid.UUID]uuid.UUID{a: cat, b: cat}, staticNamer(map[uuid.UUID]string{cat: "Home"}))

	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].StockUnits)
	assert.Equal(t, "7.50", rows[0].StockValue.String())
	assert.Equal(t, int64(2), rows[0].ProductCount)
}

func TestBuildOrderMetrics_ZeroFilled(t *testing.T) {
	metrics := BuildOrderMetrics(OrderCounts{
		Total:     4,
		ByStatus:  map[string]int64{"pending": 3, "cancelled": 1},
		ByPayment: map[string]int64{"card": 4},
		ItemRows:  6,
	})

	assert.Len(t, metrics.StatusHistogram, 6)
	assert.Equal(t, int64(0), metrics.StatusHistogram["delivered"])
	assert.Len(t, metrics.PaymentMethodHistogram, 3)
	assert.Equal(t, int64(0), metrics.PaymentMethodHistogram["quote"])
	assert.Equal(t, 1.5, metrics.AverageItemsPerOrder)
	assert.Equal(t, 0.25, metrics.CancellationRate)

	empty := BuildOrderMetrics(OrderCounts{})
	assert.Zero(t, empty.CancellationRate)
	assert.Zero(t, empty.AverageItemsPerOrder)
}

func TestBuildRevenueMetrics(t *testing.T) {
	metrics := BuildRevenueMetrics(RevenueTotals{PaidRevenue: m("100.00"), PaidCount: 3, UnpaidCount: 1})
	assert.Equal(t, "33.33", metrics.AverageOrderValue.String())

	none := BuildRevenueMetrics(RevenueTotals{PaidRevenue: valueobject.Zero()})
	assert.Equal(t, "0.00", none.AverageOrderValue.String())
}

func TestParseDateRange(t *testing.T) {
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)

	t.Run("default trailing window", func(t *testing.T) {
		r, err := ParseDateRange("", "", now, 30)
		require.NoError(t, err)
		end := time.Date(2024, 5, 31, 12, 0, 59, int(999*time.Millisecond), time.UTC)
		assert.Equal(t, end, r.End)
		assert.Equal(t, end.AddDate(0, 0, -30), r.Start)
		assert.True(t, r.Contains(now))
	})

	t.Run("default window is stable within a minute", func(t *testing.T) {
		first, err := ParseDateRange("", "", now.Add(3*time.Second), 30)
		require.NoError(t, err)
		second, err := ParseDateRange("", "", now.Add(41*time.Second+7*time.Millisecond), 30)
		require.NoError(t, err)
		assert.Equal(t, first, second)

		next, err := ParseDateRange("", "", now.Add(time.Minute), 30)
		require.NoError(t, err)
		assert.True(t, next.End.After(first.End))
	})

	t.Run("bare end date is inclusive", func(t *testing.T) {
		r, err := ParseDateRange("2024-05-01", "2024-05-02", now, 30)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), r.Start)
		assert.True(t, r.Contains(time.Date(2024, 5, 2, 23, 59, 59, 0, time.UTC)))
		assert.False(t, r.Contains(time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("rfc3339", func(t *testing.T) {
		r, err := ParseDateRange("2024-05-01T10:00:00+02:00", "", now, 30)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC), r.Start)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseDateRange("yesterday", "", now, 30)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("inverted", func(t *testing.T) {
		_, err := ParseDateRange("2024-05-10", "2024-05-01", now, 30)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestParseGroupBy(t *testing.T) {
	g, err := ParseGroupBy("")
	require.NoError(t, err)
	assert.Equal(t, GroupByDay, g)

	g, err = ParseGroupBy("Month")
	require.NoError(t, err)
	assert.Equal(t, GroupByMonth, g)

	_, err = ParseGroupBy("year")
	assert.ErrorIs(t, err, shared.ErrValidation)
}
