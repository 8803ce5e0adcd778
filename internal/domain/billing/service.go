package billing

import (
	"context"
	"fmt"
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/tenant"
	"stockpro/pkg/logger"
)

// PreferenceRequest describes the payment the provider should collect.
type PreferenceRequest struct {
	Title      string
	Amount     string
	Reference  string
	PayerEmail string
}

// Preference is the provider's handle for a started checkout.
type Preference struct {
	ID          string
	CheckoutURL string
}

// PaymentClient talks to the external payment provider.
type PaymentClient interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
}

// Provisioner turns a paid signup into a live company account.
type Provisioner interface {
	Provision(ctx context.Context, signup *Signup, ownerPassword string) (*tenant.Company, error)
}

// Service drives the checkout funnel.
type Service struct {
	signups     SignupRepository
	registry    tenant.Registry
	payment     PaymentClient
	provisioner Provisioner
}

// NewService creates a new billing service.
func NewService(
	signups SignupRepository,
	registry tenant.Registry,
	payment PaymentClient,
	provisioner Provisioner,
) *Service {
	return &Service{
		signups:     signups,
		registry:    registry,
		payment:     payment,
		provisioner: provisioner,
	}
}

// Checkout validates the signup form, reserves the slug, and builds a
// payment preference. Free plans skip payment and provision at once.
//
// The password is handed to the provisioner but never stored on the
// signup row.
func (s *Service) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	if err := input.Validate(ctx); err != nil {
		return nil, err
	}

	if taken, err := s.signups.ExistsSlug(ctx, input.CompanySlug); err != nil {
		return nil, fmt.Errorf("check slug: %w", err)
	} else if taken {
		return nil, apperror.NewConflict("company slug already taken").
			WithDetail("companySlug", input.CompanySlug)
	}
	if _, err := s.registry.GetBySlug(ctx, input.CompanySlug); err == nil {
		return nil, apperror.NewConflict("company slug already taken").
			WithDetail("companySlug", input.CompanySlug)
	}

	signup := &Signup{
		ID:          id.New(),
		CompanySlug: input.CompanySlug,
		CompanyName: input.CompanyName,
		OwnerEmail:  input.OwnerEmail,
		OwnerName:   input.OwnerName,
		Plan:        input.Plan,
		Status:      SignupPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if PlanPrice(input.Plan).IsZero() {
		if err := s.signups.Create(ctx, signup); err != nil {
			return nil, fmt.Errorf("create signup: %w", err)
		}
		company, err := s.finishProvisioning(ctx, signup, input.Password)
		if err != nil {
			return nil, err
		}
		return &CheckoutResult{
			SignupID:    signup.ID,
			Provisioned: company != nil,
		}, nil
	}

	pref, err := s.payment.CreatePreference(ctx, PreferenceRequest{
		Title:      fmt.Sprintf("StockPro %s plan", input.Plan),
		Amount:     PlanPrice(input.Plan).String(),
		Reference:  signup.ID.String(),
		PayerEmail: input.OwnerEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("create payment preference: %w", err)
	}

	signup.PaymentPreferenceID = pref.ID
	if err := s.signups.Create(ctx, signup); err != nil {
		return nil, fmt.Errorf("create signup: %w", err)
	}

	logger.Info(ctx, "checkout started",
		"signup_id", signup.ID,
		"slug", signup.CompanySlug,
		"plan", signup.Plan)

	return &CheckoutResult{
		SignupID:     signup.ID,
		PreferenceID: pref.ID,
		CheckoutURL:  pref.CheckoutURL,
	}, nil
}

// Confirm handles the payment provider's confirmation callback and
// provisions the company. ownerPassword comes back from the confirm form;
// it was never persisted.
func (s *Service) Confirm(ctx context.Context, preferenceID, ownerPassword string) (*Signup, error) {
	if preferenceID == "" {
		return nil, apperror.NewValidation("preference id is required").
			WithDetail("field", "preferenceId")
	}

	signup, err := s.signups.GetByPreferenceID(ctx, preferenceID)
	if err != nil {
		return nil, apperror.NewNotFound("signup", preferenceID)
	}

	switch signup.Status {
	case SignupProvisioned:
		// Confirmation webhooks retry; a second confirm is a no-op.
		return signup, nil
	case SignupFailed:
		return nil, apperror.NewBusinessRule("SIGNUP_FAILED", "signup previously failed, start a new checkout")
	}

	signup.Status = SignupPaid
	signup.UpdatedAt = time.Now()
	if err := s.signups.Update(ctx, signup); err != nil {
		return nil, fmt.Errorf("update signup: %w", err)
	}

	if _, err := s.finishProvisioning(ctx, signup, ownerPassword); err != nil {
		return nil, err
	}
	return signup, nil
}

func (s *Service) finishProvisioning(ctx context.Context, signup *Signup, ownerPassword string) (*tenant.Company, error) {
	company, err := s.provisioner.Provision(ctx, signup, ownerPassword)
	if err != nil {
		reason := err.Error()
		signup.Status = SignupFailed
		signup.FailureReason = &reason
		signup.UpdatedAt = time.Now()
		if uerr := s.signups.Update(ctx, signup); uerr != nil {
			logger.Error(ctx, "failed to mark signup failed", "signup_id", signup.ID, "error", uerr)
		}
		return nil, fmt.Errorf("provision company: %w", err)
	}

	signup.Status = SignupProvisioned
	signup.CompanyID = &company.ID
	signup.UpdatedAt = time.Now()
	if err := s.signups.Update(ctx, signup); err != nil {
		logger.Error(ctx, "failed to mark signup provisioned", "signup_id", signup.ID, "error", err)
	}

	logger.Info(ctx, "company provisioned",
		"signup_id", signup.ID,
		"company_id", company.ID,
		"slug", company.Slug)

	return company, nil
}

// GetSignup retrieves a signup for status polling.
func (s *Service) GetSignup(ctx context.Context, signupID id.ID) (*Signup, error) {
	signup, err := s.signups.GetByID(ctx, signupID)
	if err != nil {
		return nil, apperror.NewNotFound("signup", signupID.String())
	}
	return signup, nil
}
