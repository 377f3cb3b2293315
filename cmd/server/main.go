package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goldpriceapp "github.com/zarnegar/backend/internal/application/goldprice"
	installmentapp "github.com/zarnegar/backend/internal/application/installment"
	"github.com/zarnegar/backend/internal/domain/goldprice"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/infrastructure/auth"
	"github.com/zarnegar/backend/internal/infrastructure/cache"
	"github.com/zarnegar/backend/internal/infrastructure/config"
	"github.com/zarnegar/backend/internal/infrastructure/event"
	"github.com/zarnegar/backend/internal/infrastructure/goldfeed"
	"github.com/zarnegar/backend/internal/infrastructure/logger"
	"github.com/zarnegar/backend/internal/infrastructure/notification"
	"github.com/zarnegar/backend/internal/infrastructure/persistence"
	"github.com/zarnegar/backend/internal/infrastructure/scheduler"
	"github.com/zarnegar/backend/internal/infrastructure/telemetry"
	"github.com/zarnegar/backend/internal/interfaces/http/handler"
	"github.com/zarnegar/backend/internal/interfaces/http/middleware"
	"github.com/zarnegar/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

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
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Zarnegar Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize OpenTelemetry metrics
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Bridge zap to the OTEL log pipeline when telemetry is on, so every log
	// line carries trace correlation in the collector
	if cfg.Telemetry.Enabled {
		loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Warn("Failed to initialize OTEL logger provider, logs stay local", zap.Error(err))
		} else {
			otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
				ServiceName:    cfg.Telemetry.ServiceName,
				LoggerProvider: loggerProvider,
				Level:          zapcore.InfoLevel,
			})
			log = telemetry.NewBridgedLogger(log.Core(), otelCore)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
					log.Error("Error shutting down logger provider", zap.Error(err))
				}
			}()
		}
	}

	// Continuous profiling (Pyroscope)
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.PyroscopeAddress,
		ApplicationName:   cfg.App.Name,
		ProfileCPU:        true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Warn("Failed to start profiler", zap.Error(err))
	} else if profiler.IsEnabled() {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()
	}

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database query tracing and pool metrics
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        "postgresql",
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}
	if meterProvider.IsEnabled() {
		dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
		dbMetricsCfg.Enabled = true
		if _, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log); err != nil {
			log.Warn("Failed to register database metrics", zap.Error(err))
		}
	}

	// Gold price feed: live HTTP provider when configured, otherwise the
	// static fallback table (development only, enforced by config validation)
	var priceFeed goldprice.PriceFeed
	if cfg.GoldPrice.ProviderURL != "" {
		httpFeed, err := goldfeed.NewHTTPProvider(&goldfeed.ProviderConfig{
			BaseURL:       cfg.GoldPrice.ProviderURL,
			APIKey:        cfg.GoldPrice.ProviderKey,
			Timeout:       cfg.GoldPrice.FetchTimeout,
			RetryAttempts: cfg.GoldPrice.RetryAttempts,
			RetryDelay:    cfg.GoldPrice.RetryDelay,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize gold price provider", zap.Error(err))
		}
		priceFeed = httpFeed
	} else {
		log.Warn("No gold price provider configured, serving fallback prices")
		priceFeed = goldfeed.NewStaticProvider(log)
	}

	// Price cache: Redis-backed with in-memory fallback
	cacheFactory := cache.NewPriceCacheFactory(cfg.Redis, cfg.GoldPrice.CacheTTL,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	priceCache, err := cacheFactory.CreateCache(priceFeed)
	if err != nil {
		log.Fatal("Failed to initialize price cache", zap.Error(err))
	}

	priceService := goldpriceapp.NewGoldPriceService(priceCache, priceFeed, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	auditHandler := installmentapp.NewAuditTrailHandler(log)
	eventBus.Subscribe(auditHandler)

	if meterProvider.IsEnabled() {
		portfolioMetrics, err := telemetry.NewPortfolioMetrics(telemetry.PortfolioMetricsConfig{
			Meter:  meterProvider.Meter("zarnegar/portfolio"),
			Logger: log,
		})
		if err != nil {
			log.Warn("Failed to initialize portfolio metrics", zap.Error(err))
		} else {
			metricsHandler := telemetry.NewPortfolioMetricsHandler(portfolioMetrics)
			eventBus.Subscribe(metricsHandler)
			log.Info("Portfolio metrics handler registered",
				zap.Strings("event_types", metricsHandler.EventTypes()))
		}
	}

	log.Info("Event handlers registered",
		zap.Strings("audit_events", auditHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize repositories
	contractRepo := persistence.NewGormContractRepository(db.DB)

	// Overdue reminders: real SMS gateway when enabled, log-only otherwise
	var reminders installment.ReminderSender
	if cfg.Notification.Enabled {
		smsSender, err := notification.NewSMSReminderSender(&notification.SMSConfig{
			BaseURL: cfg.Notification.GatewayURL,
			APIKey:  cfg.Notification.APIKey,
			Sender:  cfg.Notification.Sender,
			Timeout: cfg.Notification.Timeout,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize SMS reminder sender", zap.Error(err))
		}
		reminders = smsSender
	} else {
		reminders = notification.NewLogReminderSender(log)
	}

	// Initialize application services
	clock := shared.SystemClock{}
	protectionService := installmentapp.NewPriceProtectionService(contractRepo, log)
	paymentService := installmentapp.NewPaymentProcessingService(contractRepo, priceService, protectionService, eventBus, clock, log)
	adjustmentService := installmentapp.NewAdjustmentService(contractRepo, eventBus, clock, log)
	contractService := installmentapp.NewContractService(contractRepo, eventBus, clock, log)
	portfolioService := installmentapp.NewPortfolioService(contractRepo, paymentService, priceService, priceService, reminders, clock, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize portfolio scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		portfolioScheduler := scheduler.NewPortfolioScheduler(portfolioService, scheduler.PortfolioSchedulerConfig{
			Enabled:          cfg.Scheduler.Enabled,
			PriceRefreshSpec: cfg.Scheduler.PriceRefreshSpec,
			ReminderSpec:     cfg.Scheduler.ReminderSpec,
			MetricsSpec:      cfg.Scheduler.MetricsSpec,
			JobTimeout:       cfg.Scheduler.JobTimeout,
		}, log)
		if err := portfolioScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start portfolio scheduler", zap.Error(err))
		}
		defer func() {
			if err := portfolioScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping portfolio scheduler", zap.Error(err))
			}
		}()
		log.Info("Portfolio scheduler started",
			zap.String("price_refresh_spec", cfg.Scheduler.PriceRefreshSpec),
			zap.String("reminder_spec", cfg.Scheduler.ReminderSpec),
			zap.String("metrics_spec", cfg.Scheduler.MetricsSpec),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	// Initialize HTTP handlers
	contractHandler := handler.NewContractHandler(contractService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	adjustmentHandler := handler.NewAdjustmentHandler(adjustmentService)
	protectionHandler := handler.NewProtectionHandler(protectionService, contractService, priceService)
	goldPriceHandler := handler.NewGoldPriceHandler(priceService)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Tracing - OTEL spans per request
	// 3. Recovery - Catch panics
	// 4. Logger - Log requests
	// 5. Metrics / Profiling labels
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	// 8. BodyLimit - Limit request body size
	// 9. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("zarnegar/http"), meterProvider.IsEnabled()))
	if cfg.Telemetry.ProfilingEnabled {
		engine.Use(middleware.Profiling())
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Resolve the tenant scope for every API request (JWT claim first,
	// X-Tenant-ID header second)
	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.SkipPaths = []string{
		"/api/v1/ping",
		"/api/v1/system/ping",
		"/api/v1/system/info",
	}
	tenantConfig.Logger = log
	r.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Installment domain (contracts, payments, adjustments, protection)
	installmentRoutes := router.NewDomainGroup("installments", "/installments")
	installmentRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "installment service ready"})
	})

	// Contract lifecycle
	installmentRoutes.POST("/contracts", contractHandler.Create)
	installmentRoutes.GET("/contracts", contractHandler.List)
	installmentRoutes.GET("/contracts/number/:number", contractHandler.GetByNumber)
	installmentRoutes.GET("/contracts/:id", contractHandler.GetByID)
	installmentRoutes.POST("/contracts/:id/suspend", contractHandler.Suspend)
	installmentRoutes.POST("/contracts/:id/resume", contractHandler.Resume)
	installmentRoutes.POST("/contracts/:id/default",
		middleware.RequirePermission("installment:default"), contractHandler.MarkDefaulted)

	// Payments
	installmentRoutes.POST("/contracts/:id/payments", paymentHandler.Process)
	installmentRoutes.GET("/contracts/:id/payments", contractHandler.ListPayments)
	installmentRoutes.GET("/contracts/:id/payments/savings-preview", paymentHandler.SavingsPreview)

	// Manual balance adjustments
	installmentRoutes.POST("/contracts/:id/adjustments",
		middleware.RequirePermission("installment:adjust"), adjustmentHandler.Apply)
	installmentRoutes.GET("/contracts/:id/adjustments", contractHandler.ListAdjustments)

	// Price protection
	installmentRoutes.PUT("/contracts/:id/protection", protectionHandler.Configure)
	installmentRoutes.DELETE("/contracts/:id/protection", protectionHandler.Remove)
	installmentRoutes.GET("/contracts/:id/protection/impact", protectionHandler.Impact)

	// Gold price domain
	goldPriceRoutes := router.NewDomainGroup("gold-prices", "/gold-prices")
	goldPriceRoutes.GET("/current", goldPriceHandler.Current)
	goldPriceRoutes.GET("/trend", goldPriceHandler.Trend)
	goldPriceRoutes.POST("/refresh", goldPriceHandler.Refresh)

	// Portfolio domain (on-demand runs of the scheduled jobs)
	portfolioRoutes := router.NewDomainGroup("portfolio", "/portfolio")
	portfolioRoutes.POST("/scheduled-payments", portfolioHandler.ProcessScheduledPayment)
	portfolioRoutes.POST("/reminders/run", portfolioHandler.RunReminderSweep)
	portfolioRoutes.GET("/metrics/daily", portfolioHandler.DailyMetrics)
	portfolioRoutes.POST("/price-refresh", portfolioHandler.RunPriceRefresh)

	// Register all domain groups
	r.Register(installmentRoutes).
		Register(goldPriceRoutes).
		Register(portfolioRoutes)

	// System routes
	schedulerStatus := handler.SchedulerStatusData{Enabled: cfg.Scheduler.Enabled}
	if cfg.Scheduler.Enabled {
		schedulerStatus.Jobs = []string{
			"price_refresh " + cfg.Scheduler.PriceRefreshSpec,
			"overdue_reminders " + cfg.Scheduler.ReminderSpec,
			"daily_metrics " + cfg.Scheduler.MetricsSpec,
		}
	}
	systemHandler := handler.NewSystemHandler(schedulerStatus)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/scheduler", systemHandler.GetSchedulerStatus)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
