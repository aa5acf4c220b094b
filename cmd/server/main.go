package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	importapp "github.com/salesdash/backend/internal/application/import"
	reportapp "github.com/salesdash/backend/internal/application/report"
	"github.com/salesdash/backend/internal/infrastructure/cache"
	"github.com/salesdash/backend/internal/infrastructure/config"
	"github.com/salesdash/backend/internal/infrastructure/logger"
	"github.com/salesdash/backend/internal/infrastructure/migration"
	"github.com/salesdash/backend/internal/infrastructure/persistence"
	"github.com/salesdash/backend/internal/infrastructure/scheduler"
	"github.com/salesdash/backend/internal/infrastructure/seed"
	"github.com/salesdash/backend/internal/infrastructure/telemetry"
	"github.com/salesdash/backend/internal/interfaces/http/handler"
	"github.com/salesdash/backend/internal/interfaces/http/middleware"
	"github.com/salesdash/backend/internal/interfaces/http/router"
	"github.com/salesdash/backend/migrations"
	"go.uber.org/zap"

	_ "github.com/salesdash/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Sales Dashboard API
//	@version		1.0
//	@description	Transaction listing, statistics and chart data for the sales dashboard.

//	@contact.name	API Support
//	@contact.url	https://github.com/salesdash/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

const (
	shutdownTimeout = 30 * time.Second
	startupTimeout  = 2 * time.Minute

	// Dataset re-imports replace the whole store and get a stricter limit.
	importRateLimit  = 5
	importRateWindow = time.Minute
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

	ctx := context.Background()

	// Logs bridge goes first so every later component logs through it
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log provider", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: logProvider,
			Level:          logger.ParseLevel(cfg.Telemetry.LogsLevel),
		})
		log = telemetry.NewBridgedLogger(log.Core(), otelCore, zap.AddCaller())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting sales dashboard backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database_driver", cfg.Database.Driver),
	)

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

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.SpanProfilesEnabled {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected", zap.String("dialect", db.Dialect()))

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	dbMetricsCfg := telemetry.DefaultDBMetricsConfig()
	dbMetricsCfg.SlowQueryThreshold = cfg.Telemetry.DBSlowQueryThresh
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meterProvider, dbMetricsCfg, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}

	if err := prepareSchema(cfg, db, log); err != nil {
		log.Fatal("Failed to prepare database schema", zap.Error(err))
	}

	reportCache := cache.NewReportCache(cfg.Cache, cfg.Redis, log)

	reportMetrics, err := telemetry.NewReportMetrics(meterProvider.Meter("salesdash/report"))
	if err != nil {
		log.Fatal("Failed to create report metrics", zap.Error(err))
	}

	loader, err := seed.NewLoaderFromConfig(ctx, cfg.Seed, log)
	if err != nil {
		log.Fatal("Failed to create dataset loader", zap.Error(err))
	}

	txRepo := persistence.NewGormTransactionRepository(db.DB)
	reportService := reportapp.NewReportService(txRepo, txRepo,
		reportapp.WithCache(reportCache),
		reportapp.WithRecorder(reportMetrics),
		reportapp.WithLogger(log),
	)
	importService := importapp.NewTransactionImportService(loader, txRepo,
		importapp.WithCacheInvalidator(reportCache),
		importapp.WithImportRecorder(reportMetrics),
		importapp.WithImportLogger(log),
	)

	if cfg.Seed.ImportOnStartup {
		importCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		result, imported, err := importService.ImportIfEmpty(importCtx)
		cancel()
		switch {
		case err != nil:
			// The API still serves; POST /transactions/init can retry
			log.Error("Startup import failed", zap.Error(err))
		case imported:
			log.Info("Startup import completed",
				zap.Int("imported", result.Imported),
				zap.Int64("duration_ms", result.DurationMs),
			)
		default:
			log.Info("Store already populated, skipping startup import")
		}
	}

	var refreshTrigger *scheduler.RefreshTrigger
	if cfg.Seed.RefreshEnabled {
		hour, minute, err := scheduler.ParseCronSchedule(cfg.Seed.RefreshSchedule)
		if err != nil {
			log.Fatal("Invalid dataset refresh schedule", zap.Error(err))
		}
		refreshCfg := scheduler.DefaultRefreshTriggerConfig()
		refreshCfg.Hour, refreshCfg.Minute = hour, minute
		refreshTrigger = scheduler.NewRefreshTrigger(refreshCfg, func(ctx context.Context) error {
			_, err := importService.Import(ctx)
			return err
		}, log)
		refreshTrigger.Start(ctx)
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	middleware.SetupValidator()

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       meterProvider.IsEnabled(),
		Logger:        log,
	}))

	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler.IsEnabled()
	engine.Use(middleware.ProfilingWithConfig(profilingCfg))

	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var limiters []*middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		limiters = append(limiters, limiter)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", handler.Health(db))

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	var importGuard []gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		importLimiter := middleware.NewRateLimiter(importRateLimit, importRateWindow)
		limiters = append(limiters, importLimiter)
		importGuard = append(importGuard, middleware.RateLimit(importLimiter))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	groups := router.DashboardGroups(router.APIHandlers{
		Transactions: handler.NewTransactionHandler(reportService, importService),
		Reports:      handler.NewReportHandler(reportService),
		System:       handler.NewSystemHandler(cfg.App.Name),
	}, importGuard...)
	for _, group := range groups {
		r.Register(group)
		for _, route := range group.Routes(r.BasePath()) {
			log.Debug("Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
		}
	}
	r.Setup()

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if refreshTrigger != nil {
		if err := refreshTrigger.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping dataset refresh", zap.Error(err))
		}
	}
	for _, limiter := range limiters {
		limiter.Stop()
	}
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if closer, ok := reportCache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Error("Error closing report cache", zap.Error(err))
		}
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
	_ = log.Sync()
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		// The bridge is gone at this point, so report on stderr
		_, _ = os.Stderr.WriteString("Error shutting down log provider: " + err.Error() + "\n")
	}
}

// prepareSchema creates the transactions table. PostgreSQL runs the embedded
// SQL migrations unless auto-migrate is requested; SQLite always uses GORM.
func prepareSchema(cfg *config.Config, db *persistence.Database, log *zap.Logger) error {
	if cfg.Database.Driver != config.DriverPostgres || cfg.Database.AutoMigrate {
		return db.AutoMigrate()
	}

	// The migrate driver closes the handle it is given, so it gets its own
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	m, err := migration.NewFromFS(sqlDB, migrations.FS, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}
