package handlers

import (
	"github.com/gin-gonic/gin"

	"stockpro/internal/domain/reports"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers report routes on the given group.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/summary", h.Summary)
}

// Summary returns aggregated sales statistics for a period.
// GET /api/v1/reports/summary?start=2026-08-01&end=2026-08-31
func (h *ReportsHandler) Summary(c *gin.Context) {
	var req dto.SummaryRequest
	if !h.BindQuery(c, &req) {
		return
	}

	start, end, err := req.Period()
	if err != nil {
		h.Error(c, err)
		return
	}

	stats, err := h.service.Summary(c.Request.Context(), start, end)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, stats)
}
