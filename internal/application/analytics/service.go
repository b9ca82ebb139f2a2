package analytics

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/analytics"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

const (
	defaultBestSellerLimit   = 10
	maxBestSellerLimit       = 100
	defaultInventoryPageSize = 20
	maxInventoryPageSize     = 100
)

// Config holds analytics tunables
type Config struct {
	LowStockThreshold int
	TTL               TTLPolicy
}

// Service computes read-only dashboard metrics over committed orders and products
type Service struct {
	repo       analytics.Repository
	categories catalog.CategoryRepository
	cache      ResultCache
	ttl        TTLPolicy
	lowStock   int
	logger     *zap.Logger
}

// NewService creates a new analytics Service. A nil cache disables caching.
func NewService(repo analytics.Repository, categories catalog.CategoryRepository, cache ResultCache, cfg Config, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 10
	}
	return &Service{
		repo:       repo,
		categories: categories,
		cache:      cache,
		ttl:        cfg.TTL.withDefaults(),
		lowStock:   cfg.LowStockThreshold,
		logger:     logger,
	}
}

// cached serves op from the result cache or computes and stores it.
// Cache failures are logged and never surface to the caller.
func cached[T any](ctx context.Context, s *Service, op string, params map[string]string, compute func(context.Context) (T, error)) (T, error) {
	key := CacheKey(op, params)
	ctx, span := telemetry.StartServiceSpan(ctx, "analytics", op, telemetry.SpanAttrCacheKey, key)
	defer span.End()

	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Analytics cache read failed", zap.String("key", key), zap.Error(err))
	}
	if ok && err == nil {
		var out T
		if err := json.Unmarshal(data, &out); err == nil {
			telemetry.SetAttributes(span, "cache_hit", true)
			return out, nil
		}
		s.logger.Warn("Discarding undecodable analytics cache entry", zap.String("key", key))
	}
	telemetry.SetAttributes(span, "cache_hit", false)

	result, err := compute(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		var zero T
		return zero, err
	}

	if encoded, err := json.Marshal(result); err != nil {
		s.logger.Warn("Analytics result not cacheable", zap.String("key", key), zap.Error(err))
	} else if err := s.cache.Set(ctx, key, encoded, s.ttl.For(op)); err != nil {
		s.logger.Warn("Analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

func rangeParams(r analytics.DateRange) map[string]string {
	return map[string]string{
		"start": r.Start.UTC().Format(time.RFC3339Nano),
		"end":   r.End.UTC().Format(time.RFC3339Nano),
	}
}

func statusParam(status *order.Status) string {
	if status == nil {
		return ""
	}
	return status.String()
}

// RevenueMetrics returns paid revenue totals for the range
func (s *Service) RevenueMetrics(ctx context.Context, r analytics.DateRange) (analytics.RevenueMetrics, error) {
	return cached(ctx, s, OpRevenue, rangeParams(r), func(ctx context.Context) (analytics.RevenueMetrics, error) {
		totals, err := s.repo.RevenueTotals(ctx, r)
		if err != nil {
			return analytics.RevenueMetrics{}, err
		}
		return analytics.BuildRevenueMetrics(totals), nil
	})
}

// OrderMetrics returns order counts and rates, optionally restricted to one status
func (s *Service) OrderMetrics(ctx context.Context, r analytics.DateRange, status *order.Status) (analytics.OrderMetrics, error) {
	if err := validateStatus(status); err != nil {
		return analytics.OrderMetrics{}, err
	}
	params := rangeParams(r)
	params["status"] = statusParam(status)
	return cached(ctx, s, OpOrders, params, func(ctx context.Context) (analytics.OrderMetrics, error) {
		counts, err := s.repo.OrderCounts(ctx, r, status)
		if err != nil {
			return analytics.OrderMetrics{}, err
		}
		return analytics.BuildOrderMetrics(counts), nil
	})
}

// InventoryMetrics returns catalog-wide stock totals. A non-positive threshold uses the default.
func (s *Service) InventoryMetrics(ctx context.Context, lowStockThreshold int) (analytics.InventoryMetrics, error) {
	threshold := s.threshold(lowStockThreshold)
	params := map[string]string{"threshold": strconv.Itoa(threshold)}
	return cached(ctx, s, OpInventory, params, func(ctx context.Context) (analytics.InventoryMetrics, error) {
		totals, err := s.repo.InventoryTotals(ctx, threshold)
		if err != nil {
			return analytics.InventoryMetrics{}, err
		}
		return analytics.BuildInventoryMetrics(totals, threshold), nil
	})
}

// RevenueByCategory rolls paid item revenue up to top-level categories
func (s *Service) RevenueByCategory(ctx context.Context, r analytics.DateRange, lang language.Tag) ([]analytics.CategoryRevenue, error) {
	params := rangeParams(r)
	params["lang"] = lang.String()
	return cached(ctx, s, OpRevenueByCategory, params, func(ctx context.Context) ([]analytics.CategoryRevenue, error) {
		sales, err := s.repo.PaidProductSales(ctx, r)
		if err != nil {
			return nil, err
		}
		topLevel, namer, err := s.categoryIndex(ctx, lang)
		if err != nil {
			return nil, err
		}
		return analytics.RollUpRevenue(sales, topLevel, namer), nil
	})
}

// StockByCategory rolls current stock up to top-level categories
func (s *Service) StockByCategory(ctx context.Context, lang language.Tag) ([]analytics.CategoryStock, error) {
	params := map[string]string{"lang": lang.String()}
	return cached(ctx, s, OpStockByCategory, params, func(ctx context.Context) ([]analytics.CategoryStock, error) {
		products, err := s.repo.ProductStocks(ctx)
		if err != nil {
			return nil, err
		}
		tax, err := s.categories.LoadTaxonomy(ctx)
		if err != nil {
			return nil, err
		}
		refs := make(map[uuid.UUID]catalog.CategoryRef, len(products))
		for _, p := range products {
			refs[p.ProductID] = p.Category
		}
		return analytics.RollUpStock(products, tax.TopLevelMap(refs), localizedNamer(tax, lang)), nil
	})
}

// OrderValueDistribution buckets order totals in the range
func (s *Service) OrderValueDistribution(ctx context.Context, r analytics.DateRange, status *order.Status) ([]analytics.ValueBucket, error) {
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	params := rangeParams(r)
	params["status"] = statusParam(status)
	return cached(ctx, s, OpDistribution, params, func(ctx context.Context) ([]analytics.ValueBucket, error) {
		points, err := s.repo.OrderPoints(ctx, r, status)
		if err != nil {
			return nil, err
		}
		return analytics.BucketOrderValues(points), nil
	})
}

// TimeSeries returns revenue and order counts per day, week or month
func (s *Service) TimeSeries(ctx context.Context, r analytics.DateRange, groupBy analytics.GroupBy) ([]analytics.TimeSeriesPoint, error) {
	params := rangeParams(r)
	params["groupBy"] = string(groupBy)
	return cached(ctx, s, OpTimeSeries, params, func(ctx context.Context) ([]analytics.TimeSeriesPoint, error) {
		points, err := s.repo.OrderPoints(ctx, r, nil)
		if err != nil {
			return nil, err
		}
		return analytics.BuildTimeSeries(points, groupBy), nil
	})
}

// BestSellers ranks products by paid units sold. limit defaults to 10 and is capped at 100.
func (s *Service) BestSellers(ctx context.Context, r analytics.DateRange, limit int, lang language.Tag) ([]analytics.BestSeller, error) {
	switch {
	case limit <= 0:
		limit = defaultBestSellerLimit
	case limit > maxBestSellerLimit:
		limit = maxBestSellerLimit
	}
	params := rangeParams(r)
	params["limit"] = strconv.Itoa(limit)
	params["lang"] = lang.String()
	return cached(ctx, s, OpBestSellers, params, func(ctx context.Context) ([]analytics.BestSeller, error) {
		rows, err := s.repo.BestSellers(ctx, r, limit)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			if !rows[i].Names.IsEmpty() {
				rows[i].ProductName = rows[i].Names.In(lang)
			}
		}
		return rows, nil
	})
}

// InventoryProductsQuery pages the per-product stock table
type InventoryProductsQuery struct {
	SubCategoryID     *uuid.UUID
	LowStockThreshold int
	Page              int
	PageSize          int
}

// InventoryProducts lists products with their stock state. The subcategory filter also
// matches products attached to any of the subcategory's subsubcategories.
func (s *Service) InventoryProducts(ctx context.Context, q InventoryProductsQuery, lang language.Tag) (shared.Paginated[analytics.InventoryProduct], error) {
	threshold := s.threshold(q.LowStockThreshold)
	filter := shared.Filter{Page: q.Page, PageSize: q.PageSize}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultInventoryPageSize
	}
	filter = filter.Normalize(maxInventoryPageSize)

	params := map[string]string{
		"threshold": strconv.Itoa(threshold),
		"page":      strconv.Itoa(filter.Page),
		"pageSize":  strconv.Itoa(filter.PageSize),
		"lang":      lang.String(),
	}
	if q.SubCategoryID != nil {
		params["subCategoryId"] = q.SubCategoryID.String()
	}

	return cached(ctx, s, OpInventoryProducts, params, func(ctx context.Context) (shared.Paginated[analytics.InventoryProduct], error) {
		query := analytics.InventoryQuery{
			SubCategoryID:     q.SubCategoryID,
			LowStockThreshold: threshold,
			Page:              filter.Page,
			PageSize:          filter.PageSize,
		}
		if q.SubCategoryID != nil {
			tax, err := s.categories.LoadTaxonomy(ctx)
			if err != nil {
				return shared.Paginated[analytics.InventoryProduct]{}, err
			}
			query.SubSubCategoryIDs = tax.SubSubCategoryIDs(*q.SubCategoryID)
		}

		rows, total, err := s.repo.InventoryProducts(ctx, query)
		if err != nil {
			return shared.Paginated[analytics.InventoryProduct]{}, err
		}
		for i := range rows {
			rows[i].StockState = catalog.StockStateFor(rows[i].Stock, threshold)
			if !rows[i].Names.IsEmpty() {
				rows[i].Name = rows[i].Names.In(lang)
			}
		}
		return shared.NewPaginated(rows, total, filter.Page, filter.PageSize), nil
	})
}

// Overview computes the dashboard sections concurrently. Any failing section fails the call.
func (s *Service) Overview(ctx context.Context, r analytics.DateRange, lang language.Tag) (analytics.Overview, error) {
	params := rangeParams(r)
	params["lang"] = lang.String()
	return cached(ctx, s, OpOverview, params, func(ctx context.Context) (analytics.Overview, error) {
		out := analytics.Overview{Range: r}
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			v, err := s.RevenueMetrics(gctx, r)
			out.Revenue = v
			return err
		})
		g.Go(func() error {
			v, err := s.OrderMetrics(gctx, r, nil)
			out.Orders = v
			return err
		})
		g.Go(func() error {
			v, err := s.InventoryMetrics(gctx, 0)
			out.Inventory = v
			return err
		})
		g.Go(func() error {
			v, err := s.RevenueByCategory(gctx, r, lang)
			out.RevenueByCategory = v
			return err
		})
		g.Go(func() error {
			v, err := s.OrderValueDistribution(gctx, r, nil)
			out.ValueDistribution = v
			return err
		})
		g.Go(func() error {
			v, err := s.BestSellers(gctx, r, defaultBestSellerLimit, lang)
			out.BestSellers = v
			return err
		})

		if err := g.Wait(); err != nil {
			return analytics.Overview{}, err
		}
		return out, nil
	})
}

// ClearCache purges every cached analytics result
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("Analytics cache cleared")
	return nil
}

func (s *Service) threshold(v int) int {
	if v <= 0 {
		return s.lowStock
	}
	return v
}

func (s *Service) categoryIndex(ctx context.Context, lang language.Tag) (map[uuid.UUID]uuid.UUID, analytics.CategoryNamer, error) {
	tax, err := s.categories.LoadTaxonomy(ctx)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.repo.ProductStocks(ctx)
	if err != nil {
		return nil, nil, err
	}
	refs := make(map[uuid.UUID]catalog.CategoryRef, len(products))
	for _, p := range products {
		refs[p.ProductID] = p.Category
	}
	return tax.TopLevelMap(refs), localizedNamer(tax, lang), nil
}

func localizedNamer(tax *catalog.Taxonomy, lang language.Tag) analytics.CategoryNamer {
	return func(id uuid.UUID) string {
		return tax.CategoryName(id).In(lang)
	}
}

func validateStatus(status *order.Status) error {
	if status != nil && !status.IsValid() {
		return shared.NewValidationError("status", "Unknown order status")
	}
	return nil
}
