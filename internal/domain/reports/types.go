// Package reports builds sales summaries from movement history. The
// aggregation core is pure: it receives already-loaded collections and
// performs no I/O.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"stockpro/internal/core/types"
)

// ProductSales is one row of the top-products ranking.
type ProductSales struct {
	ProductCode string           `json:"productCode"`
	ProductName string           `json:"productName"`
	Quantity    int64            `json:"quantity"`
	Revenue     types.MinorUnits `json:"revenue"`
}

// CategoryRevenue is one row of the per-category revenue breakdown.
type CategoryRevenue struct {
	Category string           `json:"category"`
	Revenue  types.MinorUnits `json:"revenue"`
}

// Statistics is the derived report for one period. It is a value object;
// nothing here is persisted. TopProducts and RevenueByCategory are
// finalized, ordered slices. Consumers render them as-is and must not
// re-sort or re-aggregate.
type Statistics struct {
	PeriodLabel string `json:"periodLabel"`

	TotalRevenue types.MinorUnits `json:"totalRevenue"`
	// TotalCostOfGoods is the purchases total for the period. It is an
	// informational figure and is not combined into NetProfit.
	TotalCostOfGoods types.MinorUnits `json:"totalCostOfGoods"`
	NetProfit        types.MinorUnits `json:"netProfit"`
	// ProfitMargin is NetProfit over TotalRevenue as a percentage.
	// Zero revenue yields zero, never NaN.
	ProfitMargin decimal.Decimal `json:"profitMargin"`

	UnitsSold int64 `json:"unitsSold"`
	SaleCount int   `json:"saleCount"`

	TopProducts       []ProductSales    `json:"topProducts"`
	RevenueByCategory []CategoryRevenue `json:"revenueByCategory"`

	// OrphanedSales counts sales whose product code no longer matches a
	// catalog entry. Such sales keep their revenue in TotalRevenue but
	// contribute zero profit and no category row. Diagnostic only.
	OrphanedSales int `json:"orphanedSales,omitempty"`
}

// TopProductsLimit is the size of the top-products ranking.
const TopProductsLimit = 5

const periodLabelLayout = "2006-01-02"

// PeriodLabel formats the range the way report headers show it.
func PeriodLabel(start, end time.Time) string {
	return start.Format(periodLabelLayout) + " to " + end.Format(periodLabelLayout)
}
