package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/apperror"
	"stockpro/internal/domain/catalog/product"
	"stockpro/internal/domain/ledger"
)

type stubRepo struct {
	products     []product.Product
	movements    []ledger.Movement
	productsErr  error
	movementsErr error
}

func (r *stubRepo) ListProducts(ctx context.Context) ([]product.Product, error) {
	return r.products, r.productsErr
}

func (r *stubRepo) ListMovements(ctx context.Context, start, end time.Time) ([]ledger.Movement, error) {
	return r.movements, r.movementsErr
}

type memCache struct {
	entries map[string]*Statistics
	hits    int
}

func (c *memCache) Get(ctx context.Context, key string) (*Statistics, error) {
	if s, ok := c.entries[key]; ok {
		c.hits++
		return s, nil
	}
	return nil, nil
}

func (c *memCache) Set(ctx context.Context, key string, stats *Statistics) error {
	c.entries[key] = stats
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, companyID string) error {
	for k := range c.entries {
		delete(c.entries, k)
	}
	return nil
}

func TestSummary_StorageFailureIsDataUnavailable(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	svc := NewService(&stubRepo{productsErr: errors.New("connection refused")}, nil)
	_, err := svc.Summary(context.Background(), start, end)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeDataUnavailable, appErr.Code)

	svc = NewService(&stubRepo{movementsErr: errors.New("timeout")}, nil)
	_, err = svc.Summary(context.Background(), start, end)
	require.Error(t, err)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeDataUnavailable, appErr.Code)
}

func TestSummary_EmptyStorageIsEmptyReport(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	svc := NewService(&stubRepo{}, nil)
	stats, err := svc.Summary(context.Background(), start, end)
	require.NoError(t, err)

	assert.True(t, stats.TotalRevenue.IsZero())
	assert.Zero(t, stats.SaleCount)
	assert.Empty(t, stats.TopProducts)
}

func TestSummary_UsesCache(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	repo := &stubRepo{
		products: []product.Product{
			catalogProduct("A", "Alpha", "Snacks", 1000, 1500),
		},
		movements: []ledger.Movement{
			sale("A", "Alpha", 2, 1500, start),
		},
	}
	cache := &memCache{entries: map[string]*Statistics{}}
	svc := NewService(repo, cache)
	ctx := context.Background()

	first, err := svc.Summary(ctx, start, end)
	require.NoError(t, err)
	assert.Zero(t, cache.hits)

	// Storage breaking after the first read proves the second call is
	// served from cache.
	repo.productsErr = errors.New("down")
	second, err := svc.Summary(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first, second)
}
