package handlers

import (
	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/domain/ledger"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// MovementHandler handles stock movement endpoints.
type MovementHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, service *ledger.Service) *MovementHandler {
	return &MovementHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers movement routes on the given group.
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.Delete)
}

// List returns movements matching the filter, newest first.
// GET /api/v1/ledger/movements
func (h *MovementHandler) List(c *gin.Context) {
	var req dto.MovementFilterRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: total,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
}

// Create records a movement and adjusts the product quantity in one
// transaction.
// POST /api/v1/ledger/movements
func (h *MovementHandler) Create(c *gin.Context) {
	var req dto.CreateMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	m, err := h.service.Apply(c.Request.Context(), input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, m)
}

// Get returns a single movement.
// GET /api/v1/ledger/movements/:id
func (h *MovementHandler) Get(c *gin.Context) {
	movementID, ok := h.pathID(c)
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, m)
}

// Delete reverses a movement: the ledger row is removed and the product
// quantity restored in one transaction.
// DELETE /api/v1/ledger/movements/:id
func (h *MovementHandler) Delete(c *gin.Context) {
	movementID, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.Reverse(c.Request.Context(), movementID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *MovementHandler) pathID(c *gin.Context) (id.ID, bool) {
	raw := c.Param("id")
	parsed, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid movement id").WithDetail("id", raw))
		return id.Nil(), false
	}
	return parsed, true
}
