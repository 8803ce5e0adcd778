package product

import (
	"context"
	"time"

	"stockpro/internal/core/id"
)

// Repository defines product storage operations.
type Repository interface {
	// Create creates a new product.
	Create(ctx context.Context, p *Product) error

	// GetByID retrieves a product by ID. Soft-deleted products are excluded.
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// GetByCode retrieves a product by display code.
	GetByCode(ctx context.Context, code string) (*Product, error)

	// GetByBarcode retrieves a product by barcode.
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)

	// Update updates product data with optimistic version check.
	Update(ctx context.Context, p *Product) error

	// Delete soft-deletes a product.
	Delete(ctx context.Context, productID id.ID) error

	// List retrieves products with filtering and the total count.
	List(ctx context.Context, filter Filter) ([]Product, int, error)

	// Count returns the number of non-deleted products.
	Count(ctx context.Context) (int64, error)

	// ListLowStock retrieves active products at or below their reorder
	// threshold.
	ListLowStock(ctx context.Context) ([]Product, error)

	// ListExpiring retrieves perishable products expiring before the cutoff.
	ListExpiring(ctx context.Context, before time.Time) ([]Product, error)

	// ExistsBarcode checks if a barcode is already taken by another product.
	ExistsBarcode(ctx context.Context, barcode string, excludeID id.ID) (bool, error)
}
