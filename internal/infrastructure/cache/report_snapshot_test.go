package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/types"
	"stockpro/internal/domain/reports"
)

func newTestCache(t *testing.T) (*ReportSnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c, err := NewReportSnapshotCache(client, time.Minute)
	require.NoError(t, err)
	return c, mr
}

func sampleStats() *reports.Statistics {
	return &reports.Statistics{
		PeriodLabel:  "2026-03-01 to 2026-03-31",
		TotalRevenue: types.MinorUnits(6000),
		NetProfit:    types.MinorUnits(2000),
		UnitsSold:    3,
		SaleCount:    2,
		TopProducts: []reports.ProductSales{
			{ProductCode: "A", ProductName: "Alpha", Quantity: 2, Revenue: 3000},
			{ProductCode: "B", ProductName: "Beta", Quantity: 1, Revenue: 3000},
		},
		RevenueByCategory: []reports.CategoryRevenue{
			{Category: "Snacks", Revenue: 3000},
			{Category: "Drinks", Revenue: 3000},
		},
	}
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	key := "reports:summary:c1:2026-03-01:2026-03-31"

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got, "miss before set")

	stats := sampleStats()
	require.NoError(t, c.Set(ctx, key, stats))

	got, err = c.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stats.TotalRevenue, got.TotalRevenue)
	assert.Equal(t, stats.TopProducts, got.TopProducts)
	assert.Equal(t, stats.RevenueByCategory, got.RevenueByCategory)
}

func TestSnapshotCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := "reports:summary:c1:2026-03-01:2026-03-31"

	require.NoError(t, c.Set(ctx, key, sampleStats()))
	mr.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotCache_GarbageIsAMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	key := "reports:summary:c1:2026-03-01:2026-03-31"

	mr.Set(key, "not zstd data")

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "reports:summary:c1:2026-03-01:2026-03-31", sampleStats()))
	require.NoError(t, c.Set(ctx, "reports:summary:c1:2026-04-01:2026-04-30", sampleStats()))
	require.NoError(t, c.Set(ctx, "reports:summary:c2:2026-03-01:2026-03-31", sampleStats()))

	require.NoError(t, c.Invalidate(ctx, "c1"))

	got, err := c.Get(ctx, "reports:summary:c1:2026-03-01:2026-03-31")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.Get(ctx, "reports:summary:c2:2026-03-01:2026-03-31")
	require.NoError(t, err)
	assert.NotNil(t, got, "other company untouched")
}
