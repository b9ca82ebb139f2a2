package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers the API exposes
type Handlers struct {
	Health    *handler.HealthHandler
	Orders    *handler.OrderHandler
	Analytics *handler.AnalyticsHandler
	Products  *handler.ProductHandler
}

// Options configures the engine's middleware stack
type Options struct {
	Logger         *zap.Logger
	JWTService     *auth.JWTService
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	Tracing        middleware.TracingConfig
	MaxBodySize    int64
	TrustedProxies []string
}

// NewEngine builds the gin engine with the global middleware chain and every /api/v1 route
func NewEngine(opts Options, h Handlers) (*gin.Engine, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(opts.Logger),
		middleware.TracingWithConfig(opts.Tracing),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(opts.Logger),
		middleware.SecureWithConfig(opts.Security),
		middleware.CORSWithConfig(opts.CORS),
	)
	if opts.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.MaxBodySize))
	}
	if opts.RateLimiter != nil {
		engine.Use(middleware.RateLimit(opts.RateLimiter))
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeRouteNotFound, "Route not found").
			WithRequestID(middleware.GetRequestID(c)))
	})

	authenticated := []gin.HandlerFunc{
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: opts.JWTService,
			Logger:     opts.Logger,
		}),
		middleware.TracingAttributeInjector(),
	}

	NewRouter(engine).Register(
		healthRoutes(h.Health),
		catalogRoutes(h.Products, authenticated),
		orderRoutes(h.Orders, authenticated),
		analyticsRoutes(h.Analytics, authenticated),
	).Setup()

	return engine, nil
}

func healthRoutes(h *handler.HealthHandler) *DomainGroup {
	return NewDomainGroup("health", "/health").GET("", h.Health)
}

func catalogRoutes(h *handler.ProductHandler, authenticated []gin.HandlerFunc) *DomainGroup {
	products := NewDomainGroup("catalog", "/catalog/products")
	products.GET("/:id", h.Get)
	products.Group("catalog-admin", "").
		Use(authenticated...).
		Use(middleware.RequireStaff()).
		PATCH("/:id", h.Update).
		DELETE("/:id", h.Delete)
	return products
}

func orderRoutes(h *handler.OrderHandler, authenticated []gin.HandlerFunc) *DomainGroup {
	orders := NewDomainGroup("orders", "/orders").Use(authenticated...)
	orders.POST("/checkout", h.Checkout).
		GET("", h.List).
		GET("/:id", h.Get).
		GET("/:id/history", h.History)
	orders.Group("orders-admin", "").
		Use(middleware.RequireStaff()).
		PATCH("/:id/status", h.UpdateStatus).
		PATCH("/:id/payment", h.UpdatePayment).
		DELETE("/:id", h.Delete)
	return orders
}

func analyticsRoutes(h *handler.AnalyticsHandler, authenticated []gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("analytics", "/analytics").
		Use(authenticated...).
		Use(middleware.RequireStaff()).
		GET("/overview", h.Overview).
		GET("/revenue", h.Revenue).
		GET("/orders", h.Orders).
		GET("/inventory", h.Inventory).
		GET("/best-sellers", h.BestSellers).
		DELETE("/cache", h.ClearCache)
}
