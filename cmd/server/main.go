// Package main is the entry point for the StockPro API server.
// Multi-tenant architecture: database per company.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"stockpro/internal/config"
	"stockpro/internal/core/entitlement"
	"stockpro/internal/core/tenant"
	"stockpro/internal/domain/auth"
	"stockpro/internal/domain/billing"
	"stockpro/internal/domain/reports"
	"stockpro/internal/infrastructure/cache"
	"stockpro/internal/infrastructure/export"
	v1 "stockpro/internal/infrastructure/http/v1"
	"stockpro/internal/infrastructure/numerator"
	"stockpro/internal/infrastructure/payment"
	"stockpro/internal/infrastructure/storage/postgres"
	"stockpro/internal/infrastructure/storage/postgres/auth_repo"
	"stockpro/internal/infrastructure/storage/postgres/billing_repo"
	"stockpro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockpro server (multi-tenant mode)")

	// --- System database connection ---
	metaPool, err := pgxpool.New(ctx, cfg.MetaDatabaseURL)
	if err != nil {
		log.Fatalw("failed to connect to meta database", "error", err)
	}
	defer metaPool.Close()

	if err := metaPool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping meta database", "error", err)
	}
	if err := postgres.ApplyMetaSchema(ctx, metaPool); err != nil {
		log.Fatalw("failed to apply meta schema", "error", err)
	}
	log.Info("meta database connection established")

	// --- Company registry and pool manager ---
	registry := tenant.NewPostgresRegistry(metaPool)

	managerCfg := tenant.DefaultManagerConfig()
	managerCfg.DBUser = cfg.TenantDBUser
	managerCfg.DBPassword = cfg.TenantDBPassword
	if cfg.TenantMaxPools > 0 {
		managerCfg.MaxTotalPools = cfg.TenantMaxPools
	}
	if cfg.TenantMaxConnsPerPool > 0 {
		managerCfg.MaxConnsPerCompany = int32(cfg.TenantMaxConnsPerPool)
	}
	if cfg.TenantPoolIdleTimeout > 0 {
		managerCfg.PoolIdleTimeout = cfg.TenantPoolIdleTimeout
	}

	tenantManager := tenant.NewManager(managerCfg, registry, log)
	defer tenantManager.Close()

	log.Infow("tenant manager initialized",
		"max_pools", managerCfg.MaxTotalPools,
		"max_conns_per_company", managerCfg.MaxConnsPerCompany,
		"idle_timeout", managerCfg.PoolIdleTimeout,
	)

	if cfg.PrewarmPools {
		log.Info("prewarming company pools...")
		if err := tenantManager.PrewarmPools(ctx); err != nil {
			log.Warnw("failed to prewarm some pools", "error", err)
		}
	}

	// --- Entitlements ---
	entitlements := entitlement.MustDefault()

	// --- JWT and auth ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))

	// Auth repos get TxManager from context per-request
	authService := auth.NewService(
		auth_repo.NewUserRepo(),
		auth_repo.NewTokenRepo(),
		nil,
		jwtService,
		entitlements,
		auth.DefaultServiceConfig(),
	)

	// --- Billing: checkout funnel and provisioning ---
	dbManager := postgres.NewCompanyDatabaseManager(metaPool, postgres.ProvisionerConfig{
		AdminDSN:   cfg.MetaDatabaseURL,
		DBUser:     cfg.TenantDBUser,
		DBPassword: cfg.TenantDBPassword,
		SSLMode:    cfg.TenantDBSSLMode,
	})
	provisioner := billing.NewCompanyProvisioner(registry, dbManager, dbManager)
	paymentClient := payment.NewClient(cfg.PaymentProviderURL, cfg.PaymentAccessToken)
	billingService := billing.NewService(
		billing_repo.NewSignupRepo(metaPool),
		registry,
		paymentClient,
		provisioner,
	)

	// --- Report snapshot cache (optional) ---
	var reportCache reports.SnapshotCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warnw("redis unreachable, report cache disabled", "error", err)
		} else {
			snapshotCache, err := cache.NewReportSnapshotCache(redisClient, cfg.ReportCacheTTL)
			if err != nil {
				log.Fatalw("failed to initialize report cache", "error", err)
			}
			reportCache = snapshotCache
			log.Infow("report snapshot cache enabled", "ttl", cfg.ReportCacheTTL)
		}
	}

	// --- PDF export (optional) ---
	var pdfExporter *export.PDFExporter
	if cfg.GotenbergURL != "" {
		gotenberg := export.NewGotenbergClient(cfg.GotenbergURL)
		if err := gotenberg.Ping(ctx); err != nil {
			log.Warnw("gotenberg unreachable at startup", "url", cfg.GotenbergURL, "error", err)
		}
		pdfExporter = export.NewPDFExporter(gotenberg)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		TenantManager:  tenantManager,
		MetaPool:       metaPool,
		Logger:         log,
		JWTValidator:   jwtService,
		AuthService:    authService,
		BillingService: billingService,
		Numerator:      numerator.NewFromContext(),
		Entitlements:   entitlements,
		ReportCache:    reportCache,
		PDFExporter:    pdfExporter,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.AppPort, "mode", "multi-tenant")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
