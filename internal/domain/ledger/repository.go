package ledger

import (
	"context"
	"time"

	"stockpro/internal/core/id"

	"stockpro/internal/domain/catalog/product"
)

// Repository defines movement storage operations.
type Repository interface {
	// Insert inserts a movement row.
	Insert(ctx context.Context, m *Movement) error

	// GetByID retrieves a movement by ID.
	GetByID(ctx context.Context, movementID id.ID) (*Movement, error)

	// Delete removes a movement row.
	Delete(ctx context.Context, movementID id.ID) error

	// List retrieves movements with filtering, newest first, plus the
	// total count.
	List(ctx context.Context, filter Filter) ([]Movement, int, error)

	// ListBetween retrieves all movements in [start, end] inclusive,
	// ordered by occurrence.
	ListBetween(ctx context.Context, start, end time.Time) ([]Movement, error)
}

// ProductStore is the slice of product storage the ledger needs: locked
// reads and balance updates inside the movement transaction.
type ProductStore interface {
	// GetForUpdate retrieves a product with a row lock held until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error)

	// AdjustQuantity applies a signed delta to on-hand quantity.
	AdjustQuantity(ctx context.Context, productID id.ID, delta int64) error
}
