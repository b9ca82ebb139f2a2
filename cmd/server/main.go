package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	appanalytics "github.com/storefront/backend/internal/application/analytics"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/notification"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(gormLog),
		persistence.WithTracing(cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	historyRepo := persistence.NewGormHistoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	analyticsRepo := persistence.NewGormAnalyticsRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Caches
	cacheFactory := cache.NewFactory(cfg.Cache, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.App.IsProduction()),
	)
	resultCache, err := cacheFactory.CreateResultCache()
	if err != nil {
		log.Fatal("Failed to create analytics cache", zap.Error(err))
	}
	eventLedger, err := cacheFactory.CreateEventLedger()
	if err != nil {
		log.Fatal("Failed to create event ledger", zap.Error(err))
	}

	// Order events
	eventBus := event.NewInMemoryEventBus(log)
	notifier, err := newNotifier(ctx, cfg.Notification, log)
	if err != nil {
		log.Fatal("Failed to create order notifier", zap.Error(err))
	}
	eventBus.Subscribe(
		event.NewIdempotentHandler(notifier, eventLedger, log),
		notifier.EventTypes()...,
	)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Image URLs
	var presigner appcatalog.ImagePresigner
	if cfg.Storage.Enabled {
		s3Presigner, err := storage.NewS3ImagePresigner(ctx, &cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to create S3 presigner", zap.Error(err))
		}
		presigner = s3Presigner
	}

	// Application services
	orderService := apporder.NewService(txScope, orderRepo, historyRepo, log)
	orderService.SetEventPublisher(eventBus)

	analyticsService := appanalytics.NewService(analyticsRepo, categoryRepo, resultCache, appanalytics.Config{
		LowStockThreshold: cfg.Analytics.LowStockThreshold,
		TTL: appanalytics.TTLPolicy{
			Overview:     cfg.Cache.OverviewTTL,
			Revenue:      cfg.Cache.RevenueTTL,
			TimeSeries:   cfg.Cache.TimeSeriesTTL,
			Orders:       cfg.Cache.OrdersTTL,
			Distribution: cfg.Cache.DistributionTTL,
			BestSellers:  cfg.Cache.BestSellersTTL,
			Inventory:    cfg.Cache.InventoryTTL,
		},
	}, log)

	productService := appcatalog.NewProductService(productRepo, presigner, cfg.Analytics.LowStockThreshold, log)

	// HTTP
	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.IsProduction()

	engine, err := router.NewEngine(router.Options{
		Logger:      log,
		JWTService:  auth.NewJWTService(cfg.JWT),
		RateLimiter: limiter,
		CORS:        corsCfg,
		Security:    securityCfg,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, router.Handlers{
		Health:    handler.NewHealthHandler(db),
		Orders:    handler.NewOrderHandler(orderService),
		Analytics: handler.NewAnalyticsHandler(analyticsService, cfg.Analytics.DefaultRangeDays),
		Products:  handler.NewProductHandler(productService),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
	defer cancel()

	// drain requests first so no handler publishes into a stopped bus
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if limiter != nil {
		limiter.Stop()
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := resultCache.Close(); err != nil {
		log.Error("Error closing analytics cache", zap.Error(err))
	}
	if err := eventLedger.Close(); err != nil {
		log.Error("Error closing event ledger", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited")
}

// newNotifier returns the SNS notifier when enabled, otherwise one that only logs
func newNotifier(ctx context.Context, cfg config.NotificationConfig, log *zap.Logger) (shared.EventHandler, error) {
	if !cfg.Enabled {
		return notification.NewLogNotifier(log), nil
	}
	client, err := notification.NewSNSClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	notifier, err := notification.NewSNSNotifier(client, cfg.TopicARN, log)
	if err != nil {
		return nil, err
	}
	return notifier, nil
}
