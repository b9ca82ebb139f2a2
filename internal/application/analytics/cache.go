package analytics

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ResultCache stores serialized analytics results. It is never authoritative:
// a miss or an error means the result is recomputed.
type ResultCache interface {
	// Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Clear removes every cached analytics result
	Clear(ctx context.Context) error
}

// Operation names used as cache key prefixes
const (
	OpOverview          = "overview"
	OpRevenue           = "revenue"
	OpOrders            = "orders"
	OpInventory         = "inventory"
	OpInventoryProducts = "inventory_products"
	OpRevenueByCategory = "revenue_by_category"
	OpStockByCategory   = "stock_by_category"
	OpDistribution      = "distribution"
	OpTimeSeries        = "timeseries"
	OpBestSellers       = "best_sellers"
)

// TTLPolicy holds the cache lifetime per operation family
type TTLPolicy struct {
	Overview     time.Duration
	Revenue      time.Duration
	TimeSeries   time.Duration
	Orders       time.Duration
	Distribution time.Duration
	BestSellers  time.Duration
	Inventory    time.Duration
}

// DefaultTTLPolicy returns the stock TTLs
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Overview:     5 * time.Minute,
		Revenue:      5 * time.Minute,
		TimeSeries:   5 * time.Minute,
		Orders:       2 * time.Minute,
		Distribution: 2 * time.Minute,
		BestSellers:  10 * time.Minute,
		Inventory:    15 * time.Minute,
	}
}

// withDefaults fills zero durations from DefaultTTLPolicy
func (p TTLPolicy) withDefaults() TTLPolicy {
	d := DefaultTTLPolicy()
	fill := func(v *time.Duration, def time.Duration) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&p.Overview, d.Overview)
	fill(&p.Revenue, d.Revenue)
	fill(&p.TimeSeries, d.TimeSeries)
	fill(&p.Orders, d.Orders)
	fill(&p.Distribution, d.Distribution)
	fill(&p.BestSellers, d.BestSellers)
	fill(&p.Inventory, d.Inventory)
	return p
}

// For returns the TTL for an operation
func (p TTLPolicy) For(op string) time.Duration {
	switch op {
	case OpOverview:
		return p.Overview
	case OpRevenue, OpRevenueByCategory:
		return p.Revenue
	case OpTimeSeries:
		return p.TimeSeries
	case OpOrders:
		return p.Orders
	case OpDistribution:
		return p.Distribution
	case OpBestSellers:
		return p.BestSellers
	case OpInventory, OpInventoryProducts, OpStockByCategory:
		return p.Inventory
	default:
		return p.Orders
	}
}

// CacheKey builds "op?k1=v1&k2=v2" with parameters sorted by name.
// Empty values are dropped so absent and empty parameters share a key.
func CacheKey(op string, params map[string]string) string {
	names := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		return op
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(op)
	b.WriteByte('?')
	for i, k := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

// NopCache never stores anything
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NopCache) Clear(context.Context) error { return nil }

var _ ResultCache = NopCache{}
