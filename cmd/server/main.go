package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/sadsod/storefront/internal/application/cart"
	catalogapp "github.com/sadsod/storefront/internal/application/catalog"
	identityapp "github.com/sadsod/storefront/internal/application/identity"
	"github.com/sadsod/storefront/internal/application/seed"
	shippingapp "github.com/sadsod/storefront/internal/application/shipping"
	tradeapp "github.com/sadsod/storefront/internal/application/trade"
	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/infrastructure/auth"
	"github.com/sadsod/storefront/internal/infrastructure/cache"
	"github.com/sadsod/storefront/internal/infrastructure/config"
	"github.com/sadsod/storefront/internal/infrastructure/logger"
	"github.com/sadsod/storefront/internal/infrastructure/migration"
	"github.com/sadsod/storefront/internal/infrastructure/persistence"
	"github.com/sadsod/storefront/internal/infrastructure/storage"
	"github.com/sadsod/storefront/internal/infrastructure/telemetry"
	"github.com/sadsod/storefront/internal/interfaces/http/handler"
	"github.com/sadsod/storefront/internal/interfaces/http/middleware"
	"github.com/sadsod/storefront/internal/interfaces/http/router"
	"github.com/sadsod/storefront/migrations"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//	@title			Sadsod Storefront API
//	@version		1.0
//	@description	Footwear storefront with cash-on-delivery checkout by wilaya.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultTimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Telemetry providers are no-ops when disabled
	tp, mp, lp := setupTelemetry(ctx, cfg, log)
	defer shutdownTelemetry(tp, mp, lp, log)
	log = lp.Bridge(log, zapcore.InfoLevel)

	profiler := setupProfiler(cfg, tp, log)
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	log.Info("Starting Sadsod storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := migrateSchema(db, log); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
	dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
	dbMetrics, err := telemetry.RegisterDBMetrics(ctx, db.DB, mp, dbMetricsCfg, log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		defer dbMetrics.Stop()
	}

	// Session stores: Redis when reachable, in-memory otherwise
	stores, err := cache.NewStoreFactory(cfg.Redis, cfg.Store.SessionTTL, cache.WithLogger(log)).CreateStores(ctx)
	if err != nil {
		log.Fatal("Failed to create session stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing session stores", zap.Error(err))
		}
	}()

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if stores.Redis != nil {
		blacklist = auth.NewRedisTokenBlacklist(stores.Redis)
	}

	imageStorage := newImageStorage(ctx, cfg, log)

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	rateRepo := persistence.NewGormShippingRateRepository(db.DB)
	subRegionRepo := persistence.NewGormSubRegionRepository(db.DB)
	adminRepo := persistence.NewGormAdminUserRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	imageService := catalogapp.NewImageService(imageStorage, cfg.Storage.PresignExpiration)
	productService := catalogapp.NewProductService(productRepo, imageService, log)
	cartService := cartapp.NewCartService(stores.Carts, productRepo, imageService)
	shippingService := shippingapp.NewShippingService(rateRepo, subRegionRepo)
	orderService := tradeapp.NewOrderService(orderRepo, productRepo, log)
	authService := identityapp.NewAuthService(adminRepo, jwtService, blacklist, log)

	stockPolicy := catalog.StockPolicyStrict
	if cfg.Store.AllowOversell {
		stockPolicy = catalog.StockPolicyClamp
	}
	checkoutOpts := []tradeapp.CheckoutOption{tradeapp.WithIdempotencyStore(stores.Idempotency)}

	if mp.IsEnabled() {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:         mp.Meter("sadsod.business"),
			Logger:        log,
			StockProvider: telemetry.NewGormStockProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to create business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
			defer businessMetrics.Stop()
			checkoutOpts = append(checkoutOpts, tradeapp.WithOrderMetrics(businessMetrics))
		}
	}
	checkoutService := tradeapp.NewCheckoutService(uow, stores.Carts, tradeapp.CheckoutConfig{
		OrderPrefix: cfg.Store.OrderPrefix,
		StockPolicy: stockPolicy,
		MaxAttempts: 5,
	}, log, checkoutOpts...)

	if cfg.Store.Seed {
		seeder := seed.NewSeeder(authService, productRepo, rateRepo, seed.Config{
			AdminUsername:        cfg.Store.AdminUsername,
			AdminPassword:        cfg.Store.AdminPassword,
			DefaultShippingPrice: cfg.Store.DefaultShippingPrice,
			DefaultShippingETA:   cfg.Store.DefaultShippingETA,
		}, log)
		if err := seeder.Run(ctx); err != nil {
			log.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Catalog:       handler.NewCatalogHandler(productService),
		Cart:          handler.NewCartHandler(cartService),
		Checkout:      handler.NewCheckoutHandler(checkoutService, orderService),
		Shipping:      handler.NewShippingHandler(shippingService),
		Auth:          handler.NewAuthHandler(authService),
		AdminProducts: handler.NewAdminProductHandler(productService, imageService),
		AdminOrders:   handler.NewAdminOrderHandler(orderService),
		Health:        handler.NewHealthHandler(db),
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Server span, enriched and marked on 4xx/5xx
	// 5. Session - Shopper cookie
	// 6. Metrics - Request counts and latency
	// 7. Security - Add security headers
	// 8. CORS - Handle cross-origin requests
	// 9. BodyLimit - Limit request body size
	// 10. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, tp.IsEnabled()))
	engine.Use(middleware.Session(middleware.SessionConfig{
		CookieName: cfg.Store.SessionCookie,
		TTL:        cfg.Store.SessionTTL,
		Secure:     cfg.Store.CookieSecure,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(mp, log))

	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.Store.CookieSecure
	engine.Use(middleware.SecureWithConfig(securityConfig))

	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     append(cfg.HTTP.CORSAllowHeaders, middleware.IdempotencyKeyHeader),
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	routeCfg := router.Config{
		JWT: middleware.JWTMiddlewareConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		},
	}
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))

		routeCfg.OrderLimiter = middleware.NewRateLimiter(cfg.HTTP.StrictLimitRequests, cfg.HTTP.StrictLimitWindow)
		defer routeCfg.OrderLimiter.Stop()
		routeCfg.LoginLimiter = middleware.NewRateLimiter(cfg.HTTP.StrictLimitRequests, cfg.HTTP.StrictLimitWindow)
		defer routeCfg.LoginLimiter.Stop()

		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
			zap.Int("strict_requests", cfg.HTTP.StrictLimitRequests),
		)
	}

	r := router.Mount(engine, handlers, routeCfg)
	log.Info("Routes registered", zap.String("base_path", r.BasePath()))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()

	log.Info("Server exited gracefully")
}

// migrateSchema runs the embedded SQL migrations on PostgreSQL and
// AutoMigrate on SQLite
func migrateSchema(db *persistence.Database, log *zap.Logger) error {
	if db.Driver == "sqlite" {
		return db.AutoMigrate()
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared *sql.DB
	if err := m.Up(); err != nil {
		return err
	}
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("Database schema up to date", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*telemetry.TracerProvider, *telemetry.MeterProvider, *telemetry.LoggerProvider) {
	tel := cfg.Telemetry

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tel.Enabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		SamplingRatio:     tel.SamplingRatio,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize tracing, continuing without it", zap.Error(err))
		tp, _ = telemetry.NewTracerProvider(ctx, telemetry.Config{}, log)
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tel.Enabled && tel.MetricsEnabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		ExportInterval:    tel.MetricsInterval,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize metrics, continuing without them", zap.Error(err))
		mp, _ = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{}, log)
	}

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tel.Enabled && tel.LogsEnabled,
		CollectorEndpoint: tel.CollectorEndpoint,
		ServiceName:       tel.ServiceName,
		Insecure:          tel.Insecure,
	}, log)
	if err != nil {
		log.Warn("Failed to initialize log export, continuing without it", zap.Error(err))
		lp, _ = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{}, log)
	}

	return tp, mp, lp
}

// setupProfiler starts continuous profiling when enabled and links CPU
// samples to spans. Failures only disable profiling.
func setupProfiler(cfg *config.Config, tp *telemetry.TracerProvider, log *zap.Logger) *telemetry.Profiler {
	tel := cfg.Telemetry
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           tel.ProfilingEnabled,
		ServerAddress:     tel.ProfilingServerAddress,
		ApplicationName:   tel.ServiceName,
		BasicAuthUser:     tel.ProfilingAuthUser,
		BasicAuthPassword: tel.ProfilingAuthPassword,
	}, log)
	if err != nil {
		log.Warn("Failed to start profiler, continuing without it", zap.Error(err))
		profiler, _ = telemetry.NewProfiler(telemetry.ProfilerConfig{}, log)
		return profiler
	}
	if profiler.IsEnabled() && tel.SpanProfilesEnabled {
		if err := tp.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}
	return profiler
}

func shutdownTelemetry(tp *telemetry.TracerProvider, mp *telemetry.MeterProvider, lp *telemetry.LoggerProvider, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := lp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}

// newImageStorage returns S3 storage when enabled, the stub otherwise
func newImageStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) catalogapp.ImageStorage {
	if !cfg.Storage.Enabled {
		log.Info("Object storage disabled, product image uploads use the stub storage")
		return storage.NewStubObjectStorage(cfg.Storage.PublicBaseURL)
	}

	s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	if err := s3Storage.EnsureBucket(ctx); err != nil {
		log.Warn("Failed to ensure storage bucket", zap.Error(err), zap.String("bucket", s3Storage.GetBucket()))
	}
	return s3Storage
}
