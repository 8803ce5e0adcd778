package dto

import (
	"stockpro/internal/core/tenant"
	"stockpro/internal/domain/billing"
)

// CheckoutRequest is the request body for starting a signup.
type CheckoutRequest struct {
	CompanySlug string `json:"companySlug" binding:"required"`
	CompanyName string `json:"companyName" binding:"required"`
	OwnerEmail  string `json:"ownerEmail" binding:"required,email"`
	OwnerName   string `json:"ownerName" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Plan        string `json:"plan" binding:"required"`
}

// ToInput converts the request to a domain checkout input.
func (r *CheckoutRequest) ToInput() billing.CheckoutInput {
	return billing.CheckoutInput{
		CompanySlug: r.CompanySlug,
		CompanyName: r.CompanyName,
		OwnerEmail:  r.OwnerEmail,
		OwnerName:   r.OwnerName,
		Password:    r.Password,
		Plan:        tenant.Plan(r.Plan),
	}
}

// ConfirmCheckoutRequest is the request body for confirming a payment.
// The password is re-entered on return from the payment page; it is never
// stored with the pending signup.
type ConfirmCheckoutRequest struct {
	PreferenceID string `json:"preferenceId" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

// SignupResponse is the public view of a signup.
type SignupResponse struct {
	ID          string  `json:"id"`
	CompanySlug string  `json:"companySlug"`
	Status      string  `json:"status"`
	CompanyID   *string `json:"companyId,omitempty"`
	CheckoutURL string  `json:"checkoutUrl,omitempty"`
}

// FromSignup converts a domain signup to its public view.
func FromSignup(s *billing.Signup) SignupResponse {
	return SignupResponse{
		ID:          s.ID.String(),
		CompanySlug: s.CompanySlug,
		Status:      string(s.Status),
		CompanyID:   s.CompanyID,
	}
}
