package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entitlement"
	"stockpro/internal/core/tenant"
	"stockpro/internal/domain/reports"
	"stockpro/internal/infrastructure/export"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// ExportHandler handles report download endpoints. Both formats are
// rendered fully in memory before the first response byte goes out, so a
// failed render produces an error response instead of a truncated file.
type ExportHandler struct {
	*BaseHandler
	service      *reports.Service
	repo         reports.Repository
	pdf          *export.PDFExporter
	entitlements *entitlement.Engine
}

// NewExportHandler creates a new export handler.
func NewExportHandler(
	base *BaseHandler,
	service *reports.Service,
	repo reports.Repository,
	pdf *export.PDFExporter,
	entitlements *entitlement.Engine,
) *ExportHandler {
	return &ExportHandler{
		BaseHandler:  base,
		service:      service,
		repo:         repo,
		pdf:          pdf,
		entitlements: entitlements,
	}
}

// RegisterRoutes registers export routes on the given group.
func (h *ExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/csv", h.CSV)
	rg.GET("/pdf", h.PDF)
}

// CSV downloads the report plus raw listings as a CSV document.
// GET /api/v1/reports/export/csv?start&end
func (h *ExportHandler) CSV(c *gin.Context) {
	if !h.allow(c, entitlement.ExportCSV, "CSV") {
		return
	}

	stats, start, end, ok := h.summary(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	products, err := h.repo.ListProducts(ctx)
	if err != nil {
		h.Error(c, apperror.NewDataUnavailable("products", err))
		return
	}
	movements, err := h.repo.ListMovements(ctx, start, reports.EndOfDay(end))
	if err != nil {
		h.Error(c, apperror.NewDataUnavailable("movements", err))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteSummaryCSV(&buf, stats, products, movements); err != nil {
		h.Error(c, err)
		return
	}

	name := export.FileName("csv", time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// PDF downloads the report as a PDF document.
// GET /api/v1/reports/export/pdf?start&end
func (h *ExportHandler) PDF(c *gin.Context) {
	if !h.allow(c, entitlement.ExportPDF, "PDF") {
		return
	}

	stats, _, _, ok := h.summary(c)
	if !ok {
		return
	}

	doc, err := h.pdf.SummaryPDF(c.Request.Context(), stats, time.Now())
	if err != nil {
		h.Error(c, err)
		return
	}

	name := export.FileName("pdf", time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (h *ExportHandler) allow(c *gin.Context, rule, format string) bool {
	plan := tenant.GetPlan(c.Request.Context())
	allowed, err := h.entitlements.Allow(rule, plan, 0)
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return false
	}
	if !allowed {
		h.Error(c, apperror.NewPlanLimit("plan does not include "+format+" export"))
		return false
	}
	return true
}

func (h *ExportHandler) summary(c *gin.Context) (stats *reports.Statistics, start, end time.Time, ok bool) {
	var req dto.SummaryRequest
	if !h.BindQuery(c, &req) {
		return nil, start, end, false
	}

	start, end, err := req.Period()
	if err != nil {
		h.Error(c, err)
		return nil, start, end, false
	}

	stats, err = h.service.Summary(c.Request.Context(), start, end)
	if err != nil {
		h.Error(c, err)
		return nil, start, end, false
	}
	return stats, start, end, true
}
