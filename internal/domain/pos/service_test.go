package pos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/catalog/product"
	"stockpro/internal/domain/ledger"
)

type stubLookup struct {
	byBarcode map[string]*product.Product
}

func (s *stubLookup) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	p, ok := s.byBarcode[barcode]
	if !ok {
		return nil, apperror.NewNotFound("product", barcode)
	}
	return p, nil
}

type stubRecorder struct {
	applied []ledger.CreateInput
}

func (s *stubRecorder) Apply(ctx context.Context, input ledger.CreateInput) (*ledger.Movement, error) {
	s.applied = append(s.applied, input)
	return &ledger.Movement{
		ProductID: input.ProductID,
		Direction: input.Direction,
		Quantity:  input.Quantity,
	}, nil
}

func sellable(barcode string) *product.Product {
	p := product.NewProduct("PRD-00001", "Cola 350ml", "Drinks")
	p.Barcode = &barcode
	p.SalePrice = types.MinorUnits(500)
	p.QuantityOnHand = 20
	return p
}

func TestLookupBarcode(t *testing.T) {
	p := sellable("789100001")
	svc := NewService(&stubLookup{byBarcode: map[string]*product.Product{"789100001": p}}, &stubRecorder{})
	ctx := context.Background()

	got, err := svc.LookupBarcode(ctx, "789100001")
	require.NoError(t, err)
	assert.Equal(t, p.Code, got.Code)

	_, err = svc.LookupBarcode(ctx, "000000000")
	assert.True(t, apperror.IsNotFound(err))

	_, err = svc.LookupBarcode(ctx, "")
	assert.Error(t, err)
}

func TestLookupBarcode_InactiveProduct(t *testing.T) {
	p := sellable("789100001")
	p.Active = false
	svc := NewService(&stubLookup{byBarcode: map[string]*product.Product{"789100001": p}}, &stubRecorder{})

	_, err := svc.LookupBarcode(context.Background(), "789100001")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeProductInactive, appErr.Code)
}

func TestRecordSale_ByBarcode(t *testing.T) {
	p := sellable("789100001")
	rec := &stubRecorder{}
	svc := NewService(&stubLookup{byBarcode: map[string]*product.Product{"789100001": p}}, rec)

	m, err := svc.RecordSale(context.Background(), SaleInput{Barcode: "789100001", Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, ledger.DirectionOut, m.Direction)
	require.Len(t, rec.applied, 1)
	assert.Equal(t, p.ID, rec.applied[0].ProductID)
	assert.Equal(t, int64(3), rec.applied[0].Quantity)
}

func TestRecordSale_Validation(t *testing.T) {
	svc := NewService(&stubLookup{byBarcode: map[string]*product.Product{}}, &stubRecorder{})
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, SaleInput{Barcode: "x", Quantity: 0})
	assert.Error(t, err, "zero quantity")

	_, err = svc.RecordSale(ctx, SaleInput{Quantity: 1})
	assert.Error(t, err, "no product reference")
}
