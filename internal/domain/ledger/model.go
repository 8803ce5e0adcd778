// Package ledger provides the stock movement ledger. Every change to
// on-hand quantity flows through a movement; balances are never edited
// directly.
package ledger

import (
	"context"
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
)

// Direction of a stock movement.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// ValidDirection reports whether d is a known direction.
func ValidDirection(d Direction) bool {
	return d == DirectionIn || d == DirectionOut
}

// Movement represents a single stock movement. Product code and name are
// denormalized at creation so history survives product deletion.
type Movement struct {
	ID          id.ID            `db:"id" json:"id"`
	Code        string           `db:"code" json:"code"`
	ProductID   id.ID            `db:"product_id" json:"productId"`
	ProductCode string           `db:"product_code" json:"productCode"`
	ProductName string           `db:"product_name" json:"productName"`
	Direction   Direction        `db:"direction" json:"direction"`
	Quantity    int64            `db:"quantity" json:"quantity"`
	UnitPrice   types.MinorUnits `db:"unit_price" json:"unitPrice"`
	TotalPrice  types.MinorUnits `db:"total_price" json:"totalPrice"`
	// CostPriceAtSale captures the product's cost price at the moment an
	// OUT movement is recorded. Zero for IN movements.
	CostPriceAtSale types.MinorUnits `db:"cost_price_at_sale" json:"costPriceAtSale"`
	OccurredAt      time.Time        `db:"occurred_at" json:"occurredAt"`
	Note            *string          `db:"note" json:"note,omitempty"`
	CreatedBy       *id.ID           `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
}

// Validate validates movement data.
func (m *Movement) Validate(ctx context.Context) error {
	if !ValidDirection(m.Direction) {
		return apperror.NewValidation("direction must be IN or OUT").
			WithDetail("field", "direction").
			WithDetail("value", string(m.Direction))
	}
	if m.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if m.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	if m.OccurredAt.IsZero() {
		return apperror.NewValidation("occurred at is required").
			WithDetail("field", "occurredAt")
	}
	return nil
}

// Delta returns the signed quantity change this movement applies to
// on-hand stock.
func (m *Movement) Delta() int64 {
	if m.Direction == DirectionOut {
		return -m.Quantity
	}
	return m.Quantity
}

// CreateInput carries fields for recording a movement.
type CreateInput struct {
	ProductID  id.ID            `json:"productId"`
	Direction  Direction        `json:"direction"`
	Quantity   int64            `json:"quantity"`
	UnitPrice  *types.MinorUnits `json:"unitPrice,omitempty"`
	OccurredAt *time.Time       `json:"occurredAt,omitempty"`
	Note       *string          `json:"note,omitempty"`
}

// Filter for listing movements.
type Filter struct {
	ProductID *id.ID
	Direction *Direction
	Start     *time.Time
	End       *time.Time
	Limit     int
	Offset    int
}
