package product

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entitlement"
	"stockpro/internal/core/id"
	corenumerator "stockpro/internal/core/numerator"
	"stockpro/internal/core/tenant"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	products map[id.ID]*Product
	count    int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: map[id.ID]*Product{}}
}

func (r *fakeRepo) Create(ctx context.Context, p *Product) error {
	r.products[p.ID] = p
	r.count++
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (r *fakeRepo) GetByCode(ctx context.Context, code string) (*Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (r *fakeRepo) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", barcode)
}

func (r *fakeRepo) Update(ctx context.Context, p *Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, productID id.ID) error {
	delete(r.products, productID)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter Filter) ([]Product, int, error) {
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Count(ctx context.Context) (int64, error) {
	return r.count, nil
}

func (r *fakeRepo) ListLowStock(ctx context.Context) ([]Product, error) {
	return nil, nil
}

func (r *fakeRepo) ListExpiring(ctx context.Context, before time.Time) ([]Product, error) {
	return nil, nil
}

func (r *fakeRepo) ExistsBarcode(ctx context.Context, barcode string, excludeID id.ID) (bool, error) {
	for _, p := range r.products {
		if p.ID != excludeID && p.Barcode != nil && *p.Barcode == barcode {
			return true, nil
		}
	}
	return false, nil
}

func planContext(plan tenant.Plan) context.Context {
	return tenant.WithCompany(context.Background(), &tenant.Company{
		ID:   "11111111-1111-1111-1111-111111111111",
		Plan: plan,
	})
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, &corenumerator.MockGenerator{}, entitlement.MustDefault(), fakeTxManager{})
}

func TestCreate_GeneratesCode(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	p, err := svc.Create(planContext(tenant.PlanPro), CreateInput{
		Name:      "Espresso Beans 1kg",
		Category:  "Coffee",
		CostPrice: 1500,
		SalePrice: 2800,
	})
	require.NoError(t, err)
	assert.Equal(t, "PRD-00001", p.Code)
	assert.Len(t, repo.products, 1)
}

func TestCreate_StarterPlanCapped(t *testing.T) {
	repo := newFakeRepo()
	repo.count = 200
	svc := newTestService(repo)

	_, err := svc.Create(planContext(tenant.PlanStarter), CreateInput{
		Name:      "One Over The Cap",
		Category:  "Coffee",
		CostPrice: 100,
		SalePrice: 200,
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodePlanLimit, appErr.Code)
}

func TestCreate_ProPlanNotCapped(t *testing.T) {
	repo := newFakeRepo()
	repo.count = 200
	svc := newTestService(repo)

	_, err := svc.Create(planContext(tenant.PlanPro), CreateInput{
		Name:      "Fits On Pro",
		Category:  "Coffee",
		CostPrice: 100,
		SalePrice: 200,
	})
	require.NoError(t, err)
}

func TestCreate_RejectsDuplicateBarcode(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := planContext(tenant.PlanPro)
	barcode := "4006381333931"

	_, err := svc.Create(ctx, CreateInput{
		Name:      "First",
		Category:  "Coffee",
		Barcode:   &barcode,
		CostPrice: 100,
		SalePrice: 200,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{
		Name:      "Second",
		Category:  "Coffee",
		Barcode:   &barcode,
		CostPrice: 100,
		SalePrice: 200,
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}
