package reports

import (
	"sort"
	"time"

	"stockpro/internal/core/types"
	"stockpro/internal/domain/catalog/product"
	"stockpro/internal/domain/ledger"
)

// Aggregate computes period statistics from movements and the current
// product catalog. It is a pure function: same inputs, same output, and
// no error branch. Malformed values are rejected at data entry, not here.
//
// Profit is computed against each product's current cost price, looked
// up by code. A sale whose code no longer resolves keeps its revenue in
// the totals but contributes zero profit and no category row; such sales
// are surfaced only through the OrphanedSales counter.
func Aggregate(movements []ledger.Movement, products []product.Product, start, end time.Time) Statistics {
	stats := Statistics{
		PeriodLabel:       PeriodLabel(start, end),
		TopProducts:       []ProductSales{},
		RevenueByCategory: []CategoryRevenue{},
	}

	byCode := make(map[string]*product.Product, len(products))
	for i := range products {
		byCode[products[i].Code] = &products[i]
	}

	// Grouping preserves first-seen order so that the stable sort below
	// breaks quantity ties by recording order.
	topIndex := make(map[string]int)
	catIndex := make(map[string]int)

	for _, m := range movements {
		switch m.Direction {
		case ledger.DirectionIn:
			stats.TotalCostOfGoods += m.TotalPrice

		case ledger.DirectionOut:
			stats.TotalRevenue += m.TotalPrice
			stats.UnitsSold += m.Quantity
			stats.SaleCount++

			idx, seen := topIndex[m.ProductCode]
			if !seen {
				topIndex[m.ProductCode] = len(stats.TopProducts)
				stats.TopProducts = append(stats.TopProducts, ProductSales{
					ProductCode: m.ProductCode,
					ProductName: m.ProductName,
				})
				idx = topIndex[m.ProductCode]
			}
			stats.TopProducts[idx].Quantity += m.Quantity
			stats.TopProducts[idx].Revenue += m.TotalPrice

			p, found := byCode[m.ProductCode]
			if !found {
				stats.OrphanedSales++
				continue
			}

			stats.NetProfit += m.TotalPrice - p.CostPrice*types.MinorUnits(m.Quantity)

			ci, seen := catIndex[p.Category]
			if !seen {
				catIndex[p.Category] = len(stats.RevenueByCategory)
				stats.RevenueByCategory = append(stats.RevenueByCategory, CategoryRevenue{
					Category: p.Category,
				})
				ci = catIndex[p.Category]
			}
			stats.RevenueByCategory[ci].Revenue += m.TotalPrice
		}
	}

	sort.SliceStable(stats.TopProducts, func(i, j int) bool {
		return stats.TopProducts[i].Quantity > stats.TopProducts[j].Quantity
	})
	if len(stats.TopProducts) > TopProductsLimit {
		stats.TopProducts = stats.TopProducts[:TopProductsLimit]
	}

	sort.SliceStable(stats.RevenueByCategory, func(i, j int) bool {
		return stats.RevenueByCategory[i].Revenue > stats.RevenueByCategory[j].Revenue
	})

	stats.ProfitMargin = types.Ratio(stats.NetProfit, stats.TotalRevenue).Mul(types.Hundred)

	return stats
}
