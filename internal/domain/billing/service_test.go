package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/id"
	"stockpro/internal/core/tenant"
)

type memSignups struct {
	byID   map[id.ID]*Signup
	byPref map[string]*Signup
}

func newMemSignups() *memSignups {
	return &memSignups{byID: map[id.ID]*Signup{}, byPref: map[string]*Signup{}}
}

func (r *memSignups) Create(ctx context.Context, s *Signup) error {
	cp := *s
	r.byID[s.ID] = &cp
	if s.PaymentPreferenceID != "" {
		r.byPref[s.PaymentPreferenceID] = &cp
	}
	return nil
}

func (r *memSignups) GetByID(ctx context.Context, signupID id.ID) (*Signup, error) {
	s, ok := r.byID[signupID]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *s
	return &cp, nil
}

func (r *memSignups) GetByPreferenceID(ctx context.Context, preferenceID string) (*Signup, error) {
	s, ok := r.byPref[preferenceID]
	if !ok {
		return nil, errors.New("not found")
	}
	cp := *s
	return &cp, nil
}

func (r *memSignups) Update(ctx context.Context, s *Signup) error {
	cp := *s
	r.byID[s.ID] = &cp
	if s.PaymentPreferenceID != "" {
		r.byPref[s.PaymentPreferenceID] = &cp
	}
	return nil
}

func (r *memSignups) ExistsSlug(ctx context.Context, slug string) (bool, error) {
	for _, s := range r.byID {
		if s.CompanySlug == slug && s.Status != SignupFailed {
			return true, nil
		}
	}
	return false, nil
}

type stubRegistry struct {
	tenant.Registry
	bySlug map[string]*tenant.Company
}

func (r *stubRegistry) GetBySlug(ctx context.Context, slug string) (*tenant.Company, error) {
	if c, ok := r.bySlug[slug]; ok {
		return c, nil
	}
	return nil, tenant.ErrCompanyNotFound
}

type stubPayment struct {
	calls int
	fail  bool
}

func (p *stubPayment) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("provider unreachable")
	}
	return &Preference{ID: "pref-123", CheckoutURL: "https://pay.example/pref-123"}, nil
}

type stubProvisioner struct {
	calls int
	fail  bool
}

func (p *stubProvisioner) Provision(ctx context.Context, signup *Signup, ownerPassword string) (*tenant.Company, error) {
	p.calls++
	if p.fail {
		return nil, errors.New("database creation failed")
	}
	return &tenant.Company{
		ID:     "company-1",
		Slug:   signup.CompanySlug,
		Status: tenant.StatusActive,
		Plan:   signup.Plan,
	}, nil
}

func validInput(plan tenant.Plan) CheckoutInput {
	return CheckoutInput{
		CompanySlug: "corner-shop",
		CompanyName: "Corner Shop",
		OwnerEmail:  "owner@corner.test",
		OwnerName:   "Dana",
		Password:    "s3cret-pass",
		Plan:        plan,
	}
}

func newBillingService(payment *stubPayment, prov *stubProvisioner) (*Service, *memSignups) {
	signups := newMemSignups()
	registry := &stubRegistry{bySlug: map[string]*tenant.Company{}}
	return NewService(signups, registry, payment, prov), signups
}

func TestCheckout_PaidPlanCreatesPreference(t *testing.T) {
	payment := &stubPayment{}
	prov := &stubProvisioner{}
	svc, signups := newBillingService(payment, prov)

	res, err := svc.Checkout(context.Background(), validInput(tenant.PlanPro))
	require.NoError(t, err)

	assert.Equal(t, "pref-123", res.PreferenceID)
	assert.Equal(t, "https://pay.example/pref-123", res.CheckoutURL)
	assert.False(t, res.Provisioned)
	assert.Equal(t, 1, payment.calls)
	assert.Zero(t, prov.calls, "no provisioning before payment")

	stored, err := signups.GetByID(context.Background(), res.SignupID)
	require.NoError(t, err)
	assert.Equal(t, SignupPending, stored.Status)
}

func TestCheckout_FreePlanProvisionsImmediately(t *testing.T) {
	payment := &stubPayment{}
	prov := &stubProvisioner{}
	svc, signups := newBillingService(payment, prov)

	res, err := svc.Checkout(context.Background(), validInput(tenant.PlanStarter))
	require.NoError(t, err)

	assert.True(t, res.Provisioned)
	assert.Zero(t, payment.calls, "free plan skips payment")
	assert.Equal(t, 1, prov.calls)

	stored, err := signups.GetByID(context.Background(), res.SignupID)
	require.NoError(t, err)
	assert.Equal(t, SignupProvisioned, stored.Status)
	require.NotNil(t, stored.CompanyID)
	assert.Equal(t, "company-1", *stored.CompanyID)
}

func TestCheckout_RejectsTakenSlug(t *testing.T) {
	svc, _ := newBillingService(&stubPayment{}, &stubProvisioner{})
	ctx := context.Background()

	_, err := svc.Checkout(ctx, validInput(tenant.PlanPro))
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, validInput(tenant.PlanPro))
	assert.Error(t, err)
}

func TestCheckout_Validation(t *testing.T) {
	svc, _ := newBillingService(&stubPayment{}, &stubProvisioner{})
	ctx := context.Background()

	in := validInput(tenant.PlanPro)
	in.CompanySlug = "Bad Slug!"
	_, err := svc.Checkout(ctx, in)
	assert.Error(t, err)

	in = validInput(tenant.PlanPro)
	in.Password = "short"
	_, err = svc.Checkout(ctx, in)
	assert.Error(t, err)

	in = validInput("enterprise")
	_, err = svc.Checkout(ctx, in)
	assert.Error(t, err, "unknown plan")
}

func TestConfirm_ProvisionsAndIsIdempotent(t *testing.T) {
	payment := &stubPayment{}
	prov := &stubProvisioner{}
	svc, _ := newBillingService(payment, prov)
	ctx := context.Background()

	res, err := svc.Checkout(ctx, validInput(tenant.PlanPro))
	require.NoError(t, err)

	signup, err := svc.Confirm(ctx, res.PreferenceID, "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, SignupProvisioned, signup.Status)
	assert.Equal(t, 1, prov.calls)

	// Webhook retry must not provision twice.
	again, err := svc.Confirm(ctx, res.PreferenceID, "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, SignupProvisioned, again.Status)
	assert.Equal(t, 1, prov.calls)
}

func TestConfirm_ProvisioningFailureMarksSignupFailed(t *testing.T) {
	prov := &stubProvisioner{fail: true}
	svc, signups := newBillingService(&stubPayment{}, prov)
	ctx := context.Background()

	res, err := svc.Checkout(ctx, validInput(tenant.PlanPro))
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, res.PreferenceID, "s3cret-pass")
	require.Error(t, err)

	stored, err := signups.GetByPreferenceID(ctx, res.PreferenceID)
	require.NoError(t, err)
	assert.Equal(t, SignupFailed, stored.Status)
	require.NotNil(t, stored.FailureReason)
}
