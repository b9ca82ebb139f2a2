package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appanalytics "github.com/storefront/backend/internal/application/analytics"
	"github.com/storefront/backend/internal/domain/analytics"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// AnalyticsService is the dashboard aggregator as seen by the HTTP layer
type AnalyticsService interface {
	Overview(ctx context.Context, r analytics.DateRange, lang language.Tag) (analytics.Overview, error)
	RevenueMetrics(ctx context.Context, r analytics.DateRange) (analytics.RevenueMetrics, error)
	TimeSeries(ctx context.Context, r analytics.DateRange, groupBy analytics.GroupBy) ([]analytics.TimeSeriesPoint, error)
	RevenueByCategory(ctx context.Context, r analytics.DateRange, lang language.Tag) ([]analytics.CategoryRevenue, error)
	OrderMetrics(ctx context.Context, r analytics.DateRange, status *order.Status) (analytics.OrderMetrics, error)
	OrderValueDistribution(ctx context.Context, r analytics.DateRange, status *order.Status) ([]analytics.ValueBucket, error)
	InventoryMetrics(ctx context.Context, lowStockThreshold int) (analytics.InventoryMetrics, error)
	StockByCategory(ctx context.Context, lang language.Tag) ([]analytics.CategoryStock, error)
	InventoryProducts(ctx context.Context, q appanalytics.InventoryProductsQuery, lang language.Tag) (shared.Paginated[analytics.InventoryProduct], error)
	BestSellers(ctx context.Context, r analytics.DateRange, limit int, lang language.Tag) ([]analytics.BestSeller, error)
	ClearCache(ctx context.Context) error
}

// AnalyticsHandler serves the staff dashboard endpoints
type AnalyticsHandler struct {
	BaseHandler
	analytics   AnalyticsService
	defaultDays int
	now         func() time.Time
}

// AnalyticsHandlerOption configures an AnalyticsHandler
type AnalyticsHandlerOption func(*AnalyticsHandler)

// WithClock overrides the time source used for default date ranges
func WithClock(now func() time.Time) AnalyticsHandlerOption {
	return func(h *AnalyticsHandler) {
		h.now = now
	}
}

// NewAnalyticsHandler creates a new AnalyticsHandler. defaultDays sizes the range used
// when a request gives no dates.
func NewAnalyticsHandler(svc AnalyticsService, defaultDays int, opts ...AnalyticsHandlerOption) *AnalyticsHandler {
	if defaultDays <= 0 {
		defaultDays = 30
	}
	h := &AnalyticsHandler{
		analytics:   svc,
		defaultDays: defaultDays,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RangeQuery holds the shared date-range parameters
type RangeQuery struct {
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// RevenueQuery adds the time-series bucket width
type RevenueQuery struct {
	RangeQuery
	GroupBy string `form:"groupBy"`
}

// OrdersQuery adds an optional status filter
type OrdersQuery struct {
	RangeQuery
	Status string `form:"status"`
}

// InventoryQuery pages the per-product stock table
type InventoryQuery struct {
	SubCategoryID     string `form:"subCategoryId" binding:"omitempty,uuid"`
	LowStockThreshold int    `form:"lowStockThreshold" binding:"omitempty,min=1"`
	Page              int    `form:"page" binding:"omitempty,min=1"`
	Limit             int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// BestSellersQuery adds the result size
type BestSellersQuery struct {
	RangeQuery
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// RevenueResponse combines revenue totals, the time series and the category breakdown
type RevenueResponse struct {
	Range      analytics.DateRange         `json:"range"`
	Metrics    analytics.RevenueMetrics    `json:"metrics"`
	TimeSeries []analytics.TimeSeriesPoint `json:"timeSeries"`
	ByCategory []analytics.CategoryRevenue `json:"byCategory"`
}

// OrdersResponse combines order metrics and the value distribution
type OrdersResponse struct {
	Range        analytics.DateRange     `json:"range"`
	Metrics      analytics.OrderMetrics  `json:"metrics"`
	Distribution []analytics.ValueBucket `json:"distribution"`
}

// InventoryResponse combines stock metrics, the category roll-up and a product page
type InventoryResponse struct {
	Metrics    analytics.InventoryMetrics                   `json:"metrics"`
	ByCategory []analytics.CategoryStock                    `json:"byCategory"`
	Products   shared.Paginated[analytics.InventoryProduct] `json:"products"`
}

func (h *AnalyticsHandler) dateRange(c *gin.Context, q RangeQuery) (analytics.DateRange, bool) {
	r, err := analytics.ParseDateRange(q.StartDate, q.EndDate, h.now(), h.defaultDays)
	if err != nil {
		h.HandleError(c, err)
		return analytics.DateRange{}, false
	}
	return r, true
}

// Overview returns every headline metric for the range
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindError(c, err)
		return
	}
	r, ok := h.dateRange(c, q)
	if !ok {
		return
	}

	overview, err := h.analytics.Overview(c.Request.Context(), r, requestLanguage(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// Revenue returns revenue metrics with a time series and a per-category split
func (h *AnalyticsHandler) Revenue(c *gin.Context) {
	var q RevenueQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindError(c, err)
		return
	}
	r, ok := h.dateRange(c, q.RangeQuery)
	if !ok {
		return
	}
	groupBy, err := analytics.ParseGroupBy(q.GroupBy)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	lang := requestLanguage(c)
	resp := RevenueResponse{Range: r}
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		resp.Metrics, err = h.analytics.RevenueMetrics(ctx, r)
		return err
	})
	g.Go(func() (err error) {
		resp.TimeSeries, err = h.analytics.TimeSeries(ctx, r, groupBy)
		return err
	})
	g.Go(func() (err error) {
		resp.ByCategory, err = h.analytics.RevenueByCategory(ctx, r, lang)
		return err
	})
	if err := g.Wait(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Orders returns order metrics and the order value distribution
func (h *AnalyticsHandler) Orders(c *gin.Context) {
	var q OrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindError(c, err)
		return
	}
	r, ok := h.dateRange(c, q.RangeQuery)
	if !ok {
		return
	}

	var status *order.Status
	if q.Status != "" {
		s := order.Status(q.Status)
		if !s.IsValid() {
			h.ValidationError(c, "status", fmt.Sprintf("Unknown status %q", q.Status))
			return
		}
		status = &s
	}

	resp := OrdersResponse{Range: r}
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		resp.Metrics, err = h.analytics.OrderMetrics(ctx, r, status)
		return err
	})
	g.Go(func() (err error) {
		resp.Distribution, err = h.analytics.OrderValueDistribution(ctx, r, status)
		return err
	})
	if err := g.Wait(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Inventory returns stock metrics, the category roll-up and one page of products
func (h *AnalyticsHandler) Inventory(c *gin.Context) {
	var q InventoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	pq := appanalytics.InventoryProductsQuery{
		LowStockThreshold: q.LowStockThreshold,
		Page:              q.Page,
		PageSize:          q.Limit,
	}
	if q.SubCategoryID != "" {
		id := uuid.MustParse(q.SubCategoryID)
		pq.SubCategoryID = &id
	}

	lang := requestLanguage(c)
	var resp InventoryResponse
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		resp.Metrics, err = h.analytics.InventoryMetrics(ctx, q.LowStockThreshold)
		return err
	})
	g.Go(func() (err error) {
		resp.ByCategory, err = h.analytics.StockByCategory(ctx, lang)
		return err
	})
	g.Go(func() (err error) {
		resp.Products, err = h.analytics.InventoryProducts(ctx, pq, lang)
		return err
	})
	if err := g.Wait(); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// BestSellers ranks products by paid units sold
func (h *AnalyticsHandler) BestSellers(c *gin.Context) {
	var q BestSellersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.HandleBindError(c, err)
		return
	}
	r, ok := h.dateRange(c, q.RangeQuery)
	if !ok {
		return
	}

	rows, err := h.analytics.BestSellers(c.Request.Context(), r, q.Limit, requestLanguage(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// ClearCache purges every cached dashboard result
func (h *AnalyticsHandler) ClearCache(c *gin.Context) {
	if err := h.analytics.ClearCache(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
