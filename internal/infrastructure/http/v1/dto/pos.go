package dto

import (
	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/pos"
)

// SaleRequest is the request body for recording a point-of-sale sale.
// Either productId or barcode identifies the product.
type SaleRequest struct {
	ProductID *string `json:"productId" binding:"omitempty,uuid"`
	Barcode   string  `json:"barcode"`
	Quantity  int64   `json:"quantity" binding:"required,gt=0"`
	UnitPrice *int64  `json:"unitPrice" binding:"omitempty,min=0"`
	Note      *string `json:"note"`
}

// ToInput converts the request to a domain sale input.
func (r *SaleRequest) ToInput() (pos.SaleInput, error) {
	in := pos.SaleInput{
		Barcode:  r.Barcode,
		Quantity: r.Quantity,
		Note:     r.Note,
	}
	if r.ProductID != nil {
		pid, err := id.Parse(*r.ProductID)
		if err != nil {
			return in, apperror.NewValidation("invalid product id").WithDetail("productId", *r.ProductID)
		}
		in.ProductID = &pid
	}
	if r.UnitPrice != nil {
		v := types.MinorUnits(*r.UnitPrice)
		in.UnitPrice = &v
	}
	return in, nil
}
