package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockpro/internal/core/tenant"
)

// HealthHandler provides health check endpoints for the multi-tenant server.
type HealthHandler struct {
	metaPool *pgxpool.Pool
	manager  *tenant.Manager
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(metaPool *pgxpool.Pool, manager *tenant.Manager) *HealthHandler {
	return &HealthHandler{
		metaPool: metaPool,
		manager:  manager,
	}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe - checks system-database connection.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.metaPool.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{
				"meta_database": "unhealthy: " + err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{
			"meta_database": "healthy",
		},
	})
}

// Info returns application information with pool statistics.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	stats := h.manager.Stats()

	c.JSON(http.StatusOK, gin.H{
		"app":     "stockpro",
		"version": "0.1.0",
		"pools": map[string]any{
			"total_pools":    stats.TotalPools,
			"total_conns":    stats.TotalConns,
			"idle_conns":     stats.IdleConns,
			"acquired_conns": stats.AcquiredConns,
		},
	})
}

// CompanyStats returns per-company pool statistics.
// GET /health/companies
func (h *HealthHandler) CompanyStats(c *gin.Context) {
	stats := h.manager.Stats()

	companies := make([]gin.H, 0, len(stats.Companies))
	for _, cp := range stats.Companies {
		companies = append(companies, gin.H{
			"company_id":     cp.CompanyID,
			"db_name":        cp.DBName,
			"total_conns":    cp.TotalConns,
			"idle_conns":     cp.IdleConns,
			"acquired_conns": cp.AcquiredConns,
			"active_refs":    cp.ActiveRefs,
			"last_used":      cp.LastUsed,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_pools": stats.TotalPools,
		"companies":   companies,
	})
}
