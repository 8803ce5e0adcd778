// Package pos provides point-of-sale operations: barcode lookup and sale
// recording. A sale is just an OUT movement; the ledger owns atomicity.
package pos

import (
	"context"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/catalog/product"
	"stockpro/internal/domain/ledger"
)

// ProductLookup is the slice of the catalog POS needs.
type ProductLookup interface {
	GetByBarcode(ctx context.Context, barcode string) (*product.Product, error)
}

// MovementRecorder records stock movements.
type MovementRecorder interface {
	Apply(ctx context.Context, input ledger.CreateInput) (*ledger.Movement, error)
}

// SaleInput identifies the product by barcode or ID and the quantity sold.
type SaleInput struct {
	ProductID *id.ID            `json:"productId,omitempty"`
	Barcode   string            `json:"barcode,omitempty"`
	Quantity  int64             `json:"quantity"`
	UnitPrice *types.MinorUnits `json:"unitPrice,omitempty"`
	Note      *string           `json:"note,omitempty"`
}

// Service wires barcode lookup to the catalog and sale recording to the
// ledger.
type Service struct {
	products ProductLookup
	ledger   MovementRecorder
}

// NewService creates a new POS service.
func NewService(products ProductLookup, recorder MovementRecorder) *Service {
	return &Service{products: products, ledger: recorder}
}

// LookupBarcode finds a sellable product by barcode. Inactive products
// are reported as such rather than hidden, so the cashier sees why a
// scan fails.
func (s *Service) LookupBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	if barcode == "" {
		return nil, apperror.NewValidation("barcode is required").WithDetail("field", "barcode")
	}
	p, err := s.products.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, apperror.NewProductInactive(p.Code)
	}
	return p, nil
}

// RecordSale records a sale as an OUT movement.
func (s *Service) RecordSale(ctx context.Context, input SaleInput) (*ledger.Movement, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	var productID id.ID
	switch {
	case input.ProductID != nil && !id.IsNil(*input.ProductID):
		productID = *input.ProductID
	case input.Barcode != "":
		p, err := s.LookupBarcode(ctx, input.Barcode)
		if err != nil {
			return nil, err
		}
		productID = p.ID
	default:
		return nil, apperror.NewValidation("product id or barcode is required").
			WithDetail("field", "productId")
	}

	return s.ledger.Apply(ctx, ledger.CreateInput{
		ProductID: productID,
		Direction: ledger.DirectionOut,
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
		Note:      input.Note,
	})
}
