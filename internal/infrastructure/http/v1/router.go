// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockpro/internal/core/entitlement"
	"stockpro/internal/core/numerator"
	"stockpro/internal/core/tenant"
	"stockpro/internal/domain/auth"
	"stockpro/internal/domain/billing"
	"stockpro/internal/domain/catalog/product"
	"stockpro/internal/domain/ledger"
	"stockpro/internal/domain/pos"
	"stockpro/internal/domain/reports"
	"stockpro/internal/infrastructure/export"
	"stockpro/internal/infrastructure/http/v1/handlers"
	"stockpro/internal/infrastructure/http/v1/middleware"
	"stockpro/internal/infrastructure/storage/postgres/catalog_repo"
	"stockpro/internal/infrastructure/storage/postgres/ledger_repo"
	"stockpro/internal/infrastructure/storage/postgres/report_repo"
	"stockpro/pkg/logger"
)

// RouterConfig holds router configuration for the multi-tenant server.
type RouterConfig struct {
	// TenantManager manages database connections for all companies
	TenantManager *tenant.Manager

	// MetaPool is the connection to the system database (health checks, signups)
	MetaPool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// BillingService for the public checkout funnel
	BillingService *billing.Service

	// Numerator for product and movement code generation
	Numerator numerator.Generator

	// Entitlements evaluates subscription-plan rules
	Entitlements *entitlement.Engine

	// ReportCache caches report snapshots; nil disables caching
	ReportCache reports.SnapshotCache

	// PDFExporter renders report PDFs; nil disables the PDF endpoint
	PDFExporter *export.PDFExporter
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth, no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.MetaPool, cfg.TenantManager)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
		health.GET("/companies", healthHandler.CompanyStats)
	}

	baseHandler := handlers.NewBaseHandler()

	// Shared repos and services. Repos are stateless; the tenant pool and
	// TxManager come from the request context.
	productRepo := catalog_repo.NewProductRepo()
	movementRepo := ledger_repo.NewMovementRepo()

	productService := product.NewService(productRepo, cfg.Numerator, cfg.Entitlements, nil)
	ledgerService := ledger.NewService(movementRepo, productRepo, cfg.Numerator, nil)
	if cfg.ReportCache != nil {
		ledgerService.SetReportInvalidator(cfg.ReportCache)
	}
	posService := pos.NewService(productService, ledgerService)

	reportsRepo := report_repo.NewRepo(productRepo, movementRepo)
	reportsService := reports.NewService(reportsRepo, cfg.ReportCache)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Public checkout funnel: runs against the system database only.
		if cfg.BillingService != nil {
			checkoutHandler := handlers.NewCheckoutHandler(baseHandler, cfg.BillingService)
			checkoutHandler.RegisterRoutes(v1.Group("/checkout"))
		}

		registerAuthRoutes(v1, baseHandler, cfg)

		// Tenant endpoints: CompanyDB resolves the tenant first, then Auth
		// validates the JWT against it.
		protected := v1.Group("")
		protected.Use(middleware.CompanyDB(cfg.TenantManager))
		protected.Use(middleware.Auth(cfg.JWTValidator))
		protected.Use(middleware.UserContext())

		productHandler := handlers.NewProductHandler(baseHandler, productService)
		productHandler.RegisterRoutes(protected.Group("/catalog/products"))

		movementHandler := handlers.NewMovementHandler(baseHandler, ledgerService)
		movementHandler.RegisterRoutes(protected.Group("/ledger/movements"))

		posHandler := handlers.NewPOSHandler(baseHandler, posService)
		posHandler.RegisterRoutes(protected.Group("/pos"))

		reportsHandler := handlers.NewReportsHandler(baseHandler, reportsService)
		reportsHandler.RegisterRoutes(protected.Group("/reports"))

		if cfg.PDFExporter != nil {
			exportHandler := handlers.NewExportHandler(baseHandler, reportsService, reportsRepo, cfg.PDFExporter, cfg.Entitlements)
			exportHandler.RegisterRoutes(protected.Group("/reports/export"))
		}

		// Platform administration: meta-database only, admin JWT required.
		admin := v1.Group("/admin")
		admin.Use(middleware.Auth(cfg.JWTValidator))
		admin.Use(middleware.RequireAdmin())

		adminHandler := handlers.NewAdminHandler(baseHandler, cfg.TenantManager.GetRegistry(), cfg.TenantManager)
		adminHandler.RegisterRoutes(admin)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, baseHandler *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required, but need tenant for DB access)
	publicAuth := rg.Group("/auth")
	publicAuth.Use(middleware.CompanyDB(cfg.TenantManager))

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.CompanyDB(cfg.TenantManager))
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	// Account creation is restricted to company owners
	ownerAuth := rg.Group("/auth")
	ownerAuth.Use(middleware.CompanyDB(cfg.TenantManager))
	ownerAuth.Use(middleware.Auth(cfg.JWTValidator))
	ownerAuth.Use(middleware.RequireOwner())

	authHandler.RegisterRoutes(publicAuth, protectedAuth, ownerAuth)
}
