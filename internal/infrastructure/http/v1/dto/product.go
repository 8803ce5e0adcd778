package dto

import (
	"time"

	"stockpro/internal/core/types"
	"stockpro/internal/domain/catalog/product"
)

// CreateProductRequest is the request body for creating a product.
// Prices are in minor currency units (cents).
type CreateProductRequest struct {
	Code             string     `json:"code"`
	Name             string     `json:"name" binding:"required"`
	Category         string     `json:"category" binding:"required"`
	Barcode          *string    `json:"barcode"`
	Description      *string    `json:"description"`
	CostPrice        int64      `json:"costPrice" binding:"min=0"`
	SalePrice        int64      `json:"salePrice" binding:"min=0"`
	ReorderThreshold int64      `json:"reorderThreshold" binding:"min=0"`
	HasExpiry        bool       `json:"hasExpiry"`
	ExpiryDate       *time.Time `json:"expiryDate"`
	AlertWindowDays  int        `json:"alertWindowDays"`
}

// ToInput converts the request to a domain create input.
func (r *CreateProductRequest) ToInput() product.CreateInput {
	return product.CreateInput{
		Code:             r.Code,
		Name:             r.Name,
		Category:         r.Category,
		Barcode:          r.Barcode,
		Description:      r.Description,
		CostPrice:        types.MinorUnits(r.CostPrice),
		SalePrice:        types.MinorUnits(r.SalePrice),
		ReorderThreshold: r.ReorderThreshold,
		HasExpiry:        r.HasExpiry,
		ExpiryDate:       r.ExpiryDate,
		AlertWindowDays:  r.AlertWindowDays,
	}
}

// UpdateProductRequest is the request body for a partial product update.
// Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name             *string    `json:"name"`
	Category         *string    `json:"category"`
	Barcode          *string    `json:"barcode"`
	Description      *string    `json:"description"`
	CostPrice        *int64     `json:"costPrice" binding:"omitempty,min=0"`
	SalePrice        *int64     `json:"salePrice" binding:"omitempty,min=0"`
	ReorderThreshold *int64     `json:"reorderThreshold" binding:"omitempty,min=0"`
	Active           *bool      `json:"active"`
	HasExpiry        *bool      `json:"hasExpiry"`
	ExpiryDate       *time.Time `json:"expiryDate"`
	AlertWindowDays  *int       `json:"alertWindowDays"`
}

// ToInput converts the request to a domain update input.
func (r *UpdateProductRequest) ToInput() product.UpdateInput {
	in := product.UpdateInput{
		Name:            r.Name,
		Category:        r.Category,
		Barcode:         r.Barcode,
		Description:     r.Description,
		Active:          r.Active,
		HasExpiry:       r.HasExpiry,
		ExpiryDate:      r.ExpiryDate,
		AlertWindowDays: r.AlertWindowDays,
	}
	if r.CostPrice != nil {
		v := types.MinorUnits(*r.CostPrice)
		in.CostPrice = &v
	}
	if r.SalePrice != nil {
		v := types.MinorUnits(*r.SalePrice)
		in.SalePrice = &v
	}
	in.ReorderThreshold = r.ReorderThreshold
	return in
}

// ProductFilterRequest contains product list filters.
type ProductFilterRequest struct {
	PaginationRequest
	Search   string `form:"search"`
	Category string `form:"category"`
	Active   *bool  `form:"active"`
	LowStock bool   `form:"lowStock"`
}

// ToFilter converts the request to a domain filter.
func (r *ProductFilterRequest) ToFilter() product.Filter {
	return product.Filter{
		Search:   r.Search,
		Category: r.Category,
		Active:   r.Active,
		LowStock: r.LowStock,
		Limit:    r.Limit,
		Offset:   r.Offset,
	}
}
