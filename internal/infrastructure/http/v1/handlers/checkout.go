package handlers

import (
	"github.com/gin-gonic/gin"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/domain/billing"
	"stockpro/internal/infrastructure/http/v1/dto"
)

// CheckoutHandler handles the public signup funnel. These endpoints run
// against the system database only; no tenant context is required.
type CheckoutHandler struct {
	*BaseHandler
	service *billing.Service
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(base *BaseHandler, service *billing.Service) *CheckoutHandler {
	return &CheckoutHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers checkout routes on the given group.
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Checkout)
	rg.POST("/confirm", h.Confirm)
	rg.GET("/:id", h.Get)
}

// Checkout starts a signup: validates the form, reserves the slug, and
// builds a payment preference. Free plans provision immediately.
// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Checkout(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}

// Confirm finishes a paid signup and provisions the company account.
// Safe to retry: an already provisioned signup is returned as-is.
// POST /api/v1/checkout/confirm
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	var req dto.ConfirmCheckoutRequest
	if !h.BindJSON(c, &req) {
		return
	}

	signup, err := h.service.Confirm(c.Request.Context(), req.PreferenceID, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSignup(signup))
}

// Get returns the status of a signup, for the post-payment polling page.
// GET /api/v1/checkout/:id
func (h *CheckoutHandler) Get(c *gin.Context) {
	raw := c.Param("id")
	signupID, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid signup id").WithDetail("id", raw))
		return
	}

	signup, err := h.service.GetSignup(c.Request.Context(), signupID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSignup(signup))
}
