// Package report_repo supplies the collections the reporting service
// aggregates over.
package report_repo

import (
	"context"
	"time"

	"stockpro/internal/domain/catalog/product"
	"stockpro/internal/domain/ledger"
	"stockpro/internal/domain/reports"
	"stockpro/internal/infrastructure/storage/postgres/catalog_repo"
	"stockpro/internal/infrastructure/storage/postgres/ledger_repo"
)

// Repo implements reports.Repository by composing the catalog and ledger
// repositories. Reports read the catalog including soft-deleted products
// so historical sales keep resolving to a category.
type Repo struct {
	products  *catalog_repo.ProductRepo
	movements *ledger_repo.MovementRepo
}

var _ reports.Repository = (*Repo)(nil)

// NewRepo creates a new reporting repository.
func NewRepo(products *catalog_repo.ProductRepo, movements *ledger_repo.MovementRepo) *Repo {
	return &Repo{products: products, movements: movements}
}

func (r *Repo) ListProducts(ctx context.Context) ([]product.Product, error) {
	return r.products.ListAll(ctx)
}

func (r *Repo) ListMovements(ctx context.Context, start, end time.Time) ([]ledger.Movement, error) {
	return r.movements.ListBetween(ctx, start, end)
}
