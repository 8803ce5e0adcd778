// Package product provides the product catalog: the items a shop buys,
// stocks, and sells.
package product

import (
	"context"
	"strings"
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
)

// Product represents a catalog item with pricing and stock state.
// QuantityOnHand is maintained by the ledger; it is never edited directly.
type Product struct {
	ID               id.ID            `db:"id" json:"id"`
	Code             string           `db:"code" json:"code"`
	Name             string           `db:"name" json:"name"`
	Category         string           `db:"category" json:"category"`
	Barcode          *string          `db:"barcode" json:"barcode,omitempty"`
	Description      *string          `db:"description" json:"description,omitempty"`
	CostPrice        types.MinorUnits `db:"cost_price" json:"costPrice"`
	SalePrice        types.MinorUnits `db:"sale_price" json:"salePrice"`
	QuantityOnHand   int64            `db:"quantity_on_hand" json:"quantityOnHand"`
	ReorderThreshold int64            `db:"reorder_threshold" json:"reorderThreshold"`
	Active           bool             `db:"active" json:"active"`
	HasExpiry        bool             `db:"has_expiry" json:"hasExpiry"`
	ExpiryDate       *time.Time       `db:"expiry_date" json:"expiryDate,omitempty"`
	AlertWindowDays  int              `db:"alert_window_days" json:"alertWindowDays,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
	DeletedAt        *time.Time       `db:"deleted_at" json:"-"`
	Version          int              `db:"version" json:"version"`
}

// NewProduct creates a new active product.
func NewProduct(code, name, category string) *Product {
	return &Product{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		Category:  category,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Version:   1,
	}
}

// Validate validates product data.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(p.Category) == "" {
		return apperror.NewValidation("category is required").WithDetail("field", "category")
	}
	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price cannot be negative").
			WithDetail("field", "costPrice")
	}
	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice")
	}
	if p.SalePrice < p.CostPrice {
		return apperror.NewValidation("sale price cannot be below cost price").
			WithDetail("field", "salePrice").
			WithDetail("costPrice", p.CostPrice.String())
	}
	if p.ReorderThreshold < 0 {
		return apperror.NewValidation("reorder threshold cannot be negative").
			WithDetail("field", "reorderThreshold")
	}
	if p.HasExpiry && p.ExpiryDate == nil {
		return apperror.NewValidation("expiry date is required for perishable products").
			WithDetail("field", "expiryDate")
	}
	if p.AlertWindowDays < 0 {
		return apperror.NewValidation("alert window cannot be negative").
			WithDetail("field", "alertWindowDays")
	}
	return nil
}

// IsLowStock returns true when on-hand quantity is at or below the
// reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.ReorderThreshold > 0 && p.QuantityOnHand <= p.ReorderThreshold
}

// IsExpiringSoon returns true when the product expires within its alert
// window, measured from now.
func (p *Product) IsExpiringSoon(now time.Time) bool {
	if !p.HasExpiry || p.ExpiryDate == nil {
		return false
	}
	window := p.AlertWindowDays
	if window <= 0 {
		window = 7
	}
	return !p.ExpiryDate.After(now.AddDate(0, 0, window))
}

// Margin returns sale margin as a fraction of revenue. Zero sale price
// yields zero.
func (p *Product) Margin() string {
	profit := p.SalePrice - p.CostPrice
	return types.Ratio(profit, p.SalePrice).Mul(types.Hundred).StringFixed(2)
}

// CreateInput carries fields for creating a product.
type CreateInput struct {
	Code             string           `json:"code,omitempty"`
	Name             string           `json:"name"`
	Category         string           `json:"category"`
	Barcode          *string          `json:"barcode,omitempty"`
	Description      *string          `json:"description,omitempty"`
	CostPrice        types.MinorUnits `json:"costPrice"`
	SalePrice        types.MinorUnits `json:"salePrice"`
	ReorderThreshold int64            `json:"reorderThreshold"`
	HasExpiry        bool             `json:"hasExpiry"`
	ExpiryDate       *time.Time       `json:"expiryDate,omitempty"`
	AlertWindowDays  int              `json:"alertWindowDays,omitempty"`
}

// UpdateInput carries fields for updating a product. Nil fields are left
// unchanged.
type UpdateInput struct {
	Name             *string           `json:"name,omitempty"`
	Category         *string           `json:"category,omitempty"`
	Barcode          *string           `json:"barcode,omitempty"`
	Description      *string           `json:"description,omitempty"`
	CostPrice        *types.MinorUnits `json:"costPrice,omitempty"`
	SalePrice        *types.MinorUnits `json:"salePrice,omitempty"`
	ReorderThreshold *int64            `json:"reorderThreshold,omitempty"`
	Active           *bool             `json:"active,omitempty"`
	HasExpiry        *bool             `json:"hasExpiry,omitempty"`
	ExpiryDate       *time.Time        `json:"expiryDate,omitempty"`
	AlertWindowDays  *int              `json:"alertWindowDays,omitempty"`
}

// Filter for listing products.
type Filter struct {
	Search   string
	Category string
	Active   *bool
	LowStock bool
	Limit    int
	Offset   int
}
