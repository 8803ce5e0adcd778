// Package billing provides the signup checkout funnel: a prospect picks a
// plan, pays through the payment provider, and a company account is
// provisioned on confirmation.
package billing

import (
	"context"
	"regexp"
	"strings"
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/tenant"
	"stockpro/internal/core/types"
)

// SignupStatus tracks a pending signup through the funnel.
type SignupStatus string

const (
	SignupPending     SignupStatus = "pending"
	SignupPaid        SignupStatus = "paid"
	SignupProvisioned SignupStatus = "provisioned"
	SignupFailed      SignupStatus = "failed"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,38}[a-z0-9]$`)

// PlanPrice returns the monthly price of a plan in minor units.
func PlanPrice(plan tenant.Plan) types.MinorUnits {
	switch plan {
	case tenant.PlanStarter:
		return 0
	case tenant.PlanPro:
		return 4990
	case tenant.PlanBusiness:
		return 14990
	default:
		return 0
	}
}

// Signup is one checkout attempt. It lives in the shared system database,
// not in any company database, because the company does not exist yet.
type Signup struct {
	ID                  id.ID        `db:"id" json:"id"`
	CompanySlug         string       `db:"company_slug" json:"companySlug"`
	CompanyName         string       `db:"company_name" json:"companyName"`
	OwnerEmail          string       `db:"owner_email" json:"ownerEmail"`
	OwnerName           string       `db:"owner_name" json:"ownerName"`
	Plan                tenant.Plan  `db:"plan" json:"plan"`
	Status              SignupStatus `db:"status" json:"status"`
	PaymentPreferenceID string       `db:"payment_preference_id" json:"-"`
	FailureReason       *string      `db:"failure_reason" json:"failureReason,omitempty"`
	CompanyID           *string      `db:"company_id" json:"companyId,omitempty"`
	CreatedAt           time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time    `db:"updated_at" json:"updatedAt"`
}

// CheckoutInput carries the signup form.
type CheckoutInput struct {
	CompanySlug string      `json:"companySlug"`
	CompanyName string      `json:"companyName"`
	OwnerEmail  string      `json:"ownerEmail"`
	OwnerName   string      `json:"ownerName"`
	Password    string      `json:"password"`
	Plan        tenant.Plan `json:"plan"`
}

// Validate validates the signup form.
func (in *CheckoutInput) Validate(ctx context.Context) error {
	in.CompanySlug = strings.ToLower(strings.TrimSpace(in.CompanySlug))
	in.OwnerEmail = strings.ToLower(strings.TrimSpace(in.OwnerEmail))

	if !slugPattern.MatchString(in.CompanySlug) {
		return apperror.NewValidation("company slug must be 3-40 lowercase letters, digits or hyphens").
			WithDetail("field", "companySlug")
	}
	if strings.TrimSpace(in.CompanyName) == "" {
		return apperror.NewValidation("company name is required").
			WithDetail("field", "companyName")
	}
	if !strings.Contains(in.OwnerEmail, "@") {
		return apperror.NewValidation("owner email is invalid").
			WithDetail("field", "ownerEmail")
	}
	if len(in.Password) < 8 {
		return apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}
	if in.Plan == "" {
		in.Plan = tenant.PlanStarter
	}
	if !tenant.ValidPlan(in.Plan) {
		return apperror.NewValidation("unknown plan").
			WithDetail("field", "plan").
			WithDetail("value", string(in.Plan))
	}
	return nil
}

// CheckoutResult is returned to the browser to start payment.
type CheckoutResult struct {
	SignupID     id.ID  `json:"signupId"`
	PreferenceID string `json:"preferenceId"`
	CheckoutURL  string `json:"checkoutUrl"`
	// Free plans skip payment and provision immediately.
	Provisioned bool `json:"provisioned"`
}

// SignupRepository stores pending signups in the system database.
type SignupRepository interface {
	Create(ctx context.Context, s *Signup) error
	GetByID(ctx context.Context, signupID id.ID) (*Signup, error)
	GetByPreferenceID(ctx context.Context, preferenceID string) (*Signup, error)
	Update(ctx context.Context, s *Signup) error
	ExistsSlug(ctx context.Context, slug string) (bool, error)
}
