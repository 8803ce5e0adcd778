package handlers

import (
	"github.com/gin-gonic/gin"

	"stockpro/internal/domain/pos"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// POSHandler handles point-of-sale endpoints.
type POSHandler struct {
	*BaseHandler
	service *pos.Service
}

// NewPOSHandler creates a new point-of-sale handler.
func NewPOSHandler(base *BaseHandler, service *pos.Service) *POSHandler {
	return &POSHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers point-of-sale routes on the given group.
func (h *POSHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products/barcode/:barcode", h.LookupBarcode)
	rg.POST("/sales", h.RecordSale)
}

// LookupBarcode resolves a scanned barcode to a sellable product.
// GET /api/v1/pos/products/barcode/:barcode
func (h *POSHandler) LookupBarcode(c *gin.Context) {
	p, err := h.service.LookupBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// RecordSale records an OUT movement for the sold product.
// POST /api/v1/pos/sales
func (h *POSHandler) RecordSale(c *gin.Context) {
	var req dto.SaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	m, err := h.service.RecordSale(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, m)
}
