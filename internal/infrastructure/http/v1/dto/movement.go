package dto

import (
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/ledger"
)

// CreateMovementRequest is the request body for recording a stock movement.
type CreateMovementRequest struct {
	ProductID  string     `json:"productId" binding:"required,uuid"`
	Direction  string     `json:"direction" binding:"required,oneof=IN OUT"`
	Quantity   int64      `json:"quantity" binding:"required,gt=0"`
	UnitPrice  *int64     `json:"unitPrice" binding:"omitempty,min=0"`
	OccurredAt *time.Time `json:"occurredAt"`
	Note       *string    `json:"note"`
}

// ToInput converts the request to a domain create input.
func (r *CreateMovementRequest) ToInput() (ledger.CreateInput, error) {
	productID, err := id.Parse(r.ProductID)
	if err != nil {
		return ledger.CreateInput{}, apperror.NewValidation("invalid product id").WithDetail("productId", r.ProductID)
	}
	in := ledger.CreateInput{
		ProductID:  productID,
		Direction:  ledger.Direction(r.Direction),
		Quantity:   r.Quantity,
		OccurredAt: r.OccurredAt,
		Note:       r.Note,
	}
	if r.UnitPrice != nil {
		v := types.MinorUnits(*r.UnitPrice)
		in.UnitPrice = &v
	}
	return in, nil
}

// MovementFilterRequest contains movement list filters.
type MovementFilterRequest struct {
	PaginationRequest
	ProductID *string    `form:"productId" binding:"omitempty,uuid"`
	Direction *string    `form:"direction" binding:"omitempty,oneof=IN OUT"`
	Start     *time.Time `form:"start" time_format:"2006-01-02"`
	End       *time.Time `form:"end" time_format:"2006-01-02"`
}

// ToFilter converts the request to a domain filter.
func (r *MovementFilterRequest) ToFilter() (ledger.Filter, error) {
	f := ledger.Filter{
		Start:  r.Start,
		End:    r.End,
		Limit:  r.Limit,
		Offset: r.Offset,
	}
	if r.ProductID != nil {
		pid, err := id.Parse(*r.ProductID)
		if err != nil {
			return f, apperror.NewValidation("invalid product id").WithDetail("productId", *r.ProductID)
		}
		f.ProductID = &pid
	}
	if r.Direction != nil {
		d := ledger.Direction(*r.Direction)
		f.Direction = &d
	}
	return f, nil
}
