package handlers

import (
	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/tenant"
	"stockpro/pkg/logger"
)

// AdminHandler handles platform administration of company accounts.
type AdminHandler struct {
	*BaseHandler
	registry tenant.Registry
	manager  *tenant.Manager
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(base *BaseHandler, registry tenant.Registry, manager *tenant.Manager) *AdminHandler {
	return &AdminHandler{BaseHandler: base, registry: registry, manager: manager}
}

// RegisterRoutes registers admin routes on the given group.
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/companies", h.ListCompanies)
	rg.POST("/companies/:id/suspend", h.Suspend)
	rg.POST("/companies/:id/activate", h.Activate)
}

// ListCompanies returns all registered companies.
// GET /api/v1/admin/companies
func (h *AdminHandler) ListCompanies(c *gin.Context) {
	companies, err := h.registry.ListAll(c.Request.Context())
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	h.OK(c, companies)
}

// Suspend blocks all access for a company. Its pool is evicted so
// in-flight connections drain immediately.
// POST /api/v1/admin/companies/:id/suspend
func (h *AdminHandler) Suspend(c *gin.Context) {
	h.setStatus(c, tenant.StatusSuspended)
}

// Activate restores access for a suspended company.
// POST /api/v1/admin/companies/:id/activate
func (h *AdminHandler) Activate(c *gin.Context) {
	h.setStatus(c, tenant.StatusActive)
}

func (h *AdminHandler) setStatus(c *gin.Context, status tenant.Status) {
	ctx := c.Request.Context()
	companyID := c.Param("id")

	if _, err := h.registry.GetByID(ctx, companyID); err != nil {
		h.Error(c, apperror.NewNotFound("company", companyID))
		return
	}

	if err := h.registry.UpdateStatusByID(ctx, companyID, status); err != nil {
		h.Error(c, apperror.NewInternal(err))
		return
	}

	// Evict the pool so the new status takes effect on the next request.
	h.manager.Evict(companyID)

	logger.Info(ctx, "company status changed",
		"company_id", companyID,
		"status", string(status),
	)

	h.Success(c, "company "+string(status))
}
