package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/tenant"
	"stockpro/internal/infrastructure/storage/postgres"
	"stockpro/pkg/logger"
)

const (
	// CompanyHeader is the HTTP header identifying the tenant company.
	CompanyHeader = "X-Company-ID"
)

// CompanyDB middleware resolves the company from the header and injects its
// database pool into the request context. It MUST run before any database
// operations.
//
// Flow:
// 1. Extract company UUID from X-Company-ID header
// 2. Get pool from the tenant manager
// 3. Create TxManager for this request
// 4. Inject pool, TxManager, and Company into context
func CompanyDB(manager *tenant.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		rawCompanyID := c.GetHeader(CompanyHeader)
		if rawCompanyID == "" {
			_ = c.Error(
				apperror.NewValidation("company is required").
					WithDetail("header", CompanyHeader),
			)
			c.Abort()
			return
		}

		companyUUID, err := uuid.Parse(rawCompanyID)
		if err != nil {
			_ = c.Error(
				apperror.NewValidation("invalid company id").
					WithDetail("header", CompanyHeader).
					WithDetail("value", rawCompanyID),
			)
			c.Abort()
			return
		}
		companyID := companyUUID.String()

		managedPool, err := manager.GetPool(ctx, companyID)
		if err != nil {
			logger.Warn(ctx, "company pool error", "company_id", companyID, "error", err)

			switch {
			case errors.Is(err, tenant.ErrCompanyNotFound):
				_ = c.Error(apperror.NewNotFound("company", companyID))
			case errors.Is(err, tenant.ErrCompanyNotActive):
				_ = c.Error(apperror.NewForbidden("company is not active").WithDetail("company_id", companyID))
			case errors.Is(err, tenant.ErrMaxPoolLimit):
				appErr := apperror.NewInternal(err)
				appErr.HTTPStatus = http.StatusServiceUnavailable
				appErr.Message = "service temporarily unavailable"
				_ = c.Error(appErr.WithDetail("company_id", companyID))
			default:
				_ = c.Error(apperror.NewInternal(err).WithDetail("company_id", companyID))
			}
			c.Abort()
			return
		}

		// Track active request for graceful shutdown
		managedPool.AcquireRef()
		defer managedPool.ReleaseRef()

		txManager := postgres.NewTxManagerFromRawPool(managedPool.Pool())

		ctx = tenant.WithPool(ctx, managedPool.Pool())
		ctx = tenant.WithTxManager(ctx, txManager)
		ctx = tenant.WithCompany(ctx, managedPool.Company())

		c.Request = c.Request.WithContext(ctx)

		// Also set in Gin context for handlers that use c.Get()
		c.Set("company_id", managedPool.Company().ID)
		c.Set("tx_manager", txManager)

		c.Next()
	}
}

// GetTxManagerFromContext retrieves TxManager from Gin context.
// Returns nil if not found. Use this in handlers.
func GetTxManagerFromContext(c *gin.Context) *postgres.TxManager {
	if v, exists := c.Get("tx_manager"); exists {
		if txm, ok := v.(*postgres.TxManager); ok {
			return txm
		}
	}
	return nil
}
