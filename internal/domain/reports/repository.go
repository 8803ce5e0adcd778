package reports

import (
	"context"
	"time"

	"stockpro/internal/domain/catalog/product"
	"stockpro/internal/domain/ledger"
)

// Repository supplies the collections reports aggregate over. Data is
// loaded wholesale before aggregation begins; the aggregation itself
// never touches storage.
type Repository interface {
	// ListProducts retrieves the full product catalog, soft-deleted
	// entries included, so historical sales keep resolving.
	ListProducts(ctx context.Context) ([]product.Product, error)

	// ListMovements retrieves all movements in [start, end] inclusive,
	// ordered by occurrence.
	ListMovements(ctx context.Context, start, end time.Time) ([]ledger.Movement, error)
}

// SnapshotCache caches finished report snapshots keyed by period.
type SnapshotCache interface {
	// Get returns the cached statistics for a key, or (nil, nil) on miss.
	Get(ctx context.Context, key string) (*Statistics, error)

	// Set stores statistics under a key.
	Set(ctx context.Context, key string, stats *Statistics) error

	// Invalidate drops every cached snapshot for a company. Called after
	// ledger writes so a report never serves pre-write figures past the
	// write that changed them.
	Invalidate(ctx context.Context, companyID string) error
}
