package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/domain/catalog/product"
	"stockpro/internal/domain/ledger"
)

var (
	periodStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
)

func catalogProduct(code, name, category string, cost, sale int64) product.Product {
	p := product.NewProduct(code, name, category)
	p.CostPrice = types.MinorUnits(cost)
	p.SalePrice = types.MinorUnits(sale)
	return *p
}

func sale(code, name string, qty, unitPrice int64, at time.Time) ledger.Movement {
	return ledger.Movement{
		ID:          id.New(),
		ProductID:   id.New(),
		ProductCode: code,
		ProductName: name,
		Direction:   ledger.DirectionOut,
		Quantity:    qty,
		UnitPrice:   types.MinorUnits(unitPrice),
		TotalPrice:  types.MinorUnits(unitPrice * qty),
		OccurredAt:  at,
	}
}

func restock(code, name string, qty, unitPrice int64, at time.Time) ledger.Movement {
	m := sale(code, name, qty, unitPrice, at)
	m.Direction = ledger.DirectionIn
	return m
}

func TestAggregate_EmptyInput(t *testing.T) {
	products := []product.Product{
		catalogProduct("A", "Alpha", "Snacks", 1000, 1500),
	}

	stats := Aggregate(nil, products, periodStart, periodEnd)

	assert.True(t, stats.TotalRevenue.IsZero())
	assert.True(t, stats.TotalCostOfGoods.IsZero())
	assert.True(t, stats.NetProfit.IsZero())
	assert.True(t, stats.ProfitMargin.IsZero())
	assert.Zero(t, stats.UnitsSold)
	assert.Zero(t, stats.SaleCount)
	assert.Empty(t, stats.TopProducts)
	assert.Empty(t, stats.RevenueByCategory)
	assert.NotNil(t, stats.TopProducts, "empty slice, not nil")
	assert.NotNil(t, stats.RevenueByCategory)
	assert.Equal(t, "2026-03-01 to 2026-03-31", stats.PeriodLabel)
}

func TestAggregate_Idempotent(t *testing.T) {
	products := []product.Product{
		catalogProduct("A", "Alpha", "Snacks", 1000, 1500),
		catalogProduct("B", "Beta", "Drinks", 2000, 3000),
	}
	movements := []ledger.Movement{
		sale("A", "Alpha", 2, 1500, periodStart),
		restock("B", "Beta", 10, 2000, periodStart),
		sale("B", "Beta", 1, 3000, periodStart.AddDate(0, 0, 1)),
	}

	first := Aggregate(movements, products, periodStart, periodEnd)
	second := Aggregate(movements, products, periodStart, periodEnd)

	assert.Equal(t, first, second)
}

// The canonical scenario: A (cost 10, sale 15), B (cost 20, sale 30),
// sale of 2xA and 1xB. Prices are in cents.
func TestAggregate_Scenario(t *testing.T) {
	products := []product.Product{
		catalogProduct("A", "Alpha", "Snacks", 1000, 1500),
		catalogProduct("B", "Beta", "Drinks", 2000, 3000),
	}
	movements := []ledger.Movement{
		sale("A", "Alpha", 2, 1500, periodStart),
		sale("B", "Beta", 1, 3000, periodStart.AddDate(0, 0, 1)),
	}

	stats := Aggregate(movements, products, periodStart, periodEnd)

	assert.Equal(t, types.MinorUnits(6000), stats.TotalRevenue)
	assert.Equal(t, types.MinorUnits(2000), stats.NetProfit)
	assert.Equal(t, int64(3), stats.UnitsSold)
	assert.Equal(t, 2, stats.SaleCount)

	require.Len(t, stats.TopProducts, 2)
	assert.Equal(t, "A", stats.TopProducts[0].ProductCode)
	assert.Equal(t, int64(2), stats.TopProducts[0].Quantity)
	assert.Equal(t, types.MinorUnits(3000), stats.TopProducts[0].Revenue)
	assert.Equal(t, "B", stats.TopProducts[1].ProductCode)
	assert.Equal(t, int64(1), stats.TopProducts[1].Quantity)
	assert.Equal(t, types.MinorUnits(3000), stats.TopProducts[1].Revenue)

	// 2000/6000 = 33.33%
	assert.Equal(t, "33.33", stats.ProfitMargin.StringFixed(2))
}

func TestAggregate_TopProductsTieBreak(t *testing.T) {
	products := []product.Product{
		catalogProduct("P1", "One", "Misc", 100, 200),
		catalogProduct("P2", "Two", "Misc", 100, 200),
		catalogProduct("P3", "Three", "Misc", 100, 200),
		catalogProduct("P4", "Four", "Misc", 100, 200),
	}
	// Quantities 5, 3, 3, 1; the two threes tie and must keep recording
	// order (P2 before P3).
	movements := []ledger.Movement{
		sale("P1", "One", 5, 200, periodStart),
		sale("P2", "Two", 3, 200, periodStart),
		sale("P3", "Three", 3, 200, periodStart),
		sale("P4", "Four", 1, 200, periodStart),
	}

	stats := Aggregate(movements, products, periodStart, periodEnd)

	require.Len(t, stats.TopProducts, 4)
	assert.Equal(t, "P1", stats.TopProducts[0].ProductCode)
	assert.Equal(t, "P2", stats.TopProducts[1].ProductCode)
	assert.Equal(t, "P3", stats.TopProducts[2].ProductCode)
	assert.Equal(t, "P4", stats.TopProducts[3].ProductCode)
}

func TestAggregate_TopProductsLimit(t *testing.T) {
	var products []product.Product
	var movements []ledger.Movement
	codes := []string{"P1", "P2", "P3", "P4", "P5", "P6", "P7"}
	for i, code := range codes {
		products = append(products, catalogProduct(code, code, "Misc", 100, 200))
		movements = append(movements, sale(code, code, int64(10-i), 200, periodStart))
	}

	stats := Aggregate(movements, products, periodStart, periodEnd)

	require.Len(t, stats.TopProducts, TopProductsLimit)
	assert.Equal(t, "P1", stats.TopProducts[0].ProductCode)
	assert.Equal(t, "P5", stats.TopProducts[4].ProductCode)
}

func TestAggregate_OrphanedSale(t *testing.T) {
	products := []product.Product{
		catalogProduct("A", "Alpha", "Snacks", 1000, 1500),
	}
	movements := []ledger.Movement{
		sale("A", "Alpha", 1, 1500, periodStart),
		sale("GONE", "Removed product", 2, 500, periodStart),
	}

	stats := Aggregate(movements, products, periodStart, periodEnd)

	// Revenue comes straight from movements, orphan included.
	assert.Equal(t, types.MinorUnits(2500), stats.TotalRevenue)
	assert.Equal(t, int64(3), stats.UnitsSold)
	assert.Equal(t, 2, stats.SaleCount)

	// Profit and category exclude the orphan.
	assert.Equal(t, types.MinorUnits(500), stats.NetProfit)
	require.Len(t, stats.RevenueByCategory, 1)
	assert.Equal(t, "Snacks", stats.RevenueByCategory[0].Category)
	assert.Equal(t, types.MinorUnits(1500), stats.RevenueByCategory[0].Revenue)

	// The orphan still ranks in top products; ranking is movement-only.
	assert.Len(t, stats.TopProducts, 2)
	assert.Equal(t, 1, stats.OrphanedSales)
}

func TestAggregate_PurchasesStayOutOfProfit(t *testing.T) {
	products := []product.Product{
		catalogProduct("A", "Alpha", "Snacks", 1000, 1500),
	}
	movements := []ledger.Movement{
		restock("A", "Alpha", 20, 1000, periodStart),
		sale("A", "Alpha", 2, 1500, periodStart.AddDate(0, 0, 1)),
	}

	stats := Aggregate(movements, products, periodStart, periodEnd)

	assert.Equal(t, types.MinorUnits(20000), stats.TotalCostOfGoods)
	assert.Equal(t, types.MinorUnits(3000), stats.TotalRevenue)
	assert.Equal(t, types.MinorUnits(1000), stats.NetProfit, "profit ignores purchases total")
	assert.Equal(t, 1, stats.SaleCount, "purchases are not sales")
	assert.Equal(t, int64(2), stats.UnitsSold)
}

func TestAggregate_CategoryOrderedByRevenue(t *testing.T) {
	products := []product.Product{
		catalogProduct("A", "Alpha", "Snacks", 100, 200),
		catalogProduct("B", "Beta", "Drinks", 100, 900),
		catalogProduct("C", "Gamma", "Snacks", 100, 300),
	}
	movements := []ledger.Movement{
		sale("A", "Alpha", 1, 200, periodStart),
		sale("B", "Beta", 1, 900, periodStart),
		sale("C", "Gamma", 1, 300, periodStart),
	}

	stats := Aggregate(movements, products, periodStart, periodEnd)

	require.Len(t, stats.RevenueByCategory, 2)
	assert.Equal(t, "Drinks", stats.RevenueByCategory[0].Category)
	assert.Equal(t, types.MinorUnits(900), stats.RevenueByCategory[0].Revenue)
	assert.Equal(t, "Snacks", stats.RevenueByCategory[1].Category)
	assert.Equal(t, types.MinorUnits(500), stats.RevenueByCategory[1].Revenue)
}

func TestAggregate_NegativeProfitMargin(t *testing.T) {
	// Sold below cost.
	products := []product.Product{
		catalogProduct("A", "Alpha", "Snacks", 2000, 2000),
	}
	movements := []ledger.Movement{
		sale("A", "Alpha", 1, 1000, periodStart),
	}

	stats := Aggregate(movements, products, periodStart, periodEnd)

	assert.Equal(t, types.MinorUnits(-1000), stats.NetProfit)
	assert.Equal(t, "-100.00", stats.ProfitMargin.StringFixed(2))
}

func TestFilterByPeriod_Inclusivity(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	onStart := sale("A", "Alpha", 1, 100, start)
	lateOnEnd := sale("B", "Beta", 1, 100, time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC))
	dayAfter := sale("C", "Gamma", 1, 100, time.Date(2026, 3, 11, 0, 0, 1, 0, time.UTC))
	dayBefore := sale("D", "Delta", 1, 100, time.Date(2026, 2, 28, 12, 0, 0, 0, time.UTC))

	got := FilterByPeriod([]ledger.Movement{onStart, lateOnEnd, dayAfter, dayBefore}, start, end)

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ProductCode)
	assert.Equal(t, "B", got[1].ProductCode, "any time on the end day is included")
}

func TestFilterByPeriod_SameDayRange(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	m := sale("A", "Alpha", 1, 100, time.Date(2026, 3, 5, 17, 45, 0, 0, time.UTC))

	got := FilterByPeriod([]ledger.Movement{m}, day, day)
	assert.Len(t, got, 1)
}

func TestFilterByPeriod_InvertedRange(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	m := sale("A", "Alpha", 1, 100, time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC))

	got := FilterByPeriod([]ledger.Movement{m}, start, end)
	assert.NotNil(t, got)
	assert.Empty(t, got, "inverted range is empty, not an error")
}
