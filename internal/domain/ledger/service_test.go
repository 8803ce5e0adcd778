package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	corenumerator "stockpro/internal/core/numerator"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/catalog/product"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	movements map[id.ID]*Movement
	order     []id.ID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{movements: map[id.ID]*Movement{}}
}

func (r *fakeRepo) Insert(ctx context.Context, m *Movement) error {
	cp := *m
	r.movements[m.ID] = &cp
	r.order = append(r.order, m.ID)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, movementID id.ID) (*Movement, error) {
	m, ok := r.movements[movementID]
	if !ok {
		return nil, apperror.NewNotFound("movement", movementID.String())
	}
	cp := *m
	return &cp, nil
}

func (r *fakeRepo) Delete(ctx context.Context, movementID id.ID) error {
	if _, ok := r.movements[movementID]; !ok {
		return apperror.NewNotFound("movement", movementID.String())
	}
	delete(r.movements, movementID)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter Filter) ([]Movement, int, error) {
	var out []Movement
	for _, mid := range r.order {
		if m, ok := r.movements[mid]; ok {
			out = append(out, *m)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) ListBetween(ctx context.Context, start, end time.Time) ([]Movement, error) {
	ms, _, _ := r.List(ctx, Filter{})
	return ms, nil
}

type fakeProductStore struct {
	products map[id.ID]*product.Product
}

func (s *fakeProductStore) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := s.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProductStore) AdjustQuantity(ctx context.Context, productID id.ID, delta int64) error {
	p, ok := s.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.QuantityOnHand += delta
	return nil
}

func newTestService(t *testing.T, products ...*product.Product) (*Service, *fakeRepo, *fakeProductStore) {
	t.Helper()
	store := &fakeProductStore{products: map[id.ID]*product.Product{}}
	for _, p := range products {
		store.products[p.ID] = p
	}
	repo := newFakeRepo()
	svc := NewService(repo, store, &corenumerator.MockGenerator{}, fakeTxManager{})
	return svc, repo, store
}

func testProduct(qty int64) *product.Product {
	p := product.NewProduct("PRD-00001", "Milk 1L", "Dairy")
	p.CostPrice = types.MinorUnits(1000)
	p.SalePrice = types.MinorUnits(1500)
	p.QuantityOnHand = qty
	return p
}

func TestApply_InIncreasesStock(t *testing.T) {
	p := testProduct(5)
	svc, _, store := newTestService(t, p)

	m, err := svc.Apply(context.Background(), CreateInput{
		ProductID: p.ID,
		Direction: DirectionIn,
		Quantity:  10,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(15), store.products[p.ID].QuantityOnHand)
	assert.Equal(t, "PRD-00001", m.ProductCode)
	assert.Equal(t, "Milk 1L", m.ProductName)
	assert.Equal(t, types.MinorUnits(1000), m.UnitPrice, "IN defaults to cost price")
	assert.Equal(t, types.MinorUnits(10000), m.TotalPrice)
	assert.True(t, m.CostPriceAtSale.IsZero())
	assert.NotEmpty(t, m.Code)
}

func TestApply_OutDecreasesStockAndCapturesCost(t *testing.T) {
	p := testProduct(5)
	svc, _, store := newTestService(t, p)

	m, err := svc.Apply(context.Background(), CreateInput{
		ProductID: p.ID,
		Direction: DirectionOut,
		Quantity:  2,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), store.products[p.ID].QuantityOnHand)
	assert.Equal(t, types.MinorUnits(1500), m.UnitPrice, "OUT defaults to sale price")
	assert.Equal(t, types.MinorUnits(3000), m.TotalPrice)
	assert.Equal(t, types.MinorUnits(1000), m.CostPriceAtSale)
}

func TestApply_RejectsOversell(t *testing.T) {
	p := testProduct(5)
	svc, repo, store := newTestService(t, p)

	_, err := svc.Apply(context.Background(), CreateInput{
		ProductID: p.ID,
		Direction: DirectionOut,
		Quantity:  6,
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	assert.Equal(t, int64(5), store.products[p.ID].QuantityOnHand, "stock unchanged")
	assert.Empty(t, repo.movements, "no movement recorded")
}

func TestApply_RejectsInactiveProduct(t *testing.T) {
	p := testProduct(5)
	p.Active = false
	svc, _, _ := newTestService(t, p)

	_, err := svc.Apply(context.Background(), CreateInput{
		ProductID: p.ID,
		Direction: DirectionIn,
		Quantity:  1,
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeProductInactive, appErr.Code)
}

func TestApply_RejectsBadInput(t *testing.T) {
	p := testProduct(5)
	svc, _, _ := newTestService(t, p)
	ctx := context.Background()

	_, err := svc.Apply(ctx, CreateInput{Direction: DirectionIn, Quantity: 1})
	assert.Error(t, err, "missing product id")

	_, err = svc.Apply(ctx, CreateInput{ProductID: p.ID, Direction: "SIDEWAYS", Quantity: 1})
	assert.Error(t, err, "bad direction")

	_, err = svc.Apply(ctx, CreateInput{ProductID: p.ID, Direction: DirectionIn, Quantity: 0})
	assert.Error(t, err, "zero quantity")
}

func TestReverse_RestoresExactBalance(t *testing.T) {
	p := testProduct(10)
	other := testProduct(100)
	other.Code = "PRD-00002"
	other.Name = "Bread"
	svc, repo, store := newTestService(t, p, other)
	ctx := context.Background()

	out, err := svc.Apply(ctx, CreateInput{ProductID: p.ID, Direction: DirectionOut, Quantity: 4})
	require.NoError(t, err)
	require.Equal(t, int64(6), store.products[p.ID].QuantityOnHand)

	// An unrelated movement lands in between; it must be untouched.
	_, err = svc.Apply(ctx, CreateInput{ProductID: other.ID, Direction: DirectionOut, Quantity: 7})
	require.NoError(t, err)

	require.NoError(t, svc.Reverse(ctx, out.ID))

	assert.Equal(t, int64(10), store.products[p.ID].QuantityOnHand, "balance restored exactly")
	assert.Equal(t, int64(93), store.products[other.ID].QuantityOnHand, "unrelated movement untouched")

	_, err = repo.GetByID(ctx, out.ID)
	assert.Error(t, err, "movement row removed")
}

func TestReverse_RejectsNegativeStock(t *testing.T) {
	p := testProduct(0)
	svc, _, store := newTestService(t, p)
	ctx := context.Background()

	in, err := svc.Apply(ctx, CreateInput{ProductID: p.ID, Direction: DirectionIn, Quantity: 5})
	require.NoError(t, err)

	// Sell everything that came in.
	_, err = svc.Apply(ctx, CreateInput{ProductID: p.ID, Direction: DirectionOut, Quantity: 5})
	require.NoError(t, err)

	// Reversing the IN would drive stock below zero.
	err = svc.Reverse(ctx, in.ID)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, int64(0), store.products[p.ID].QuantityOnHand)
}
