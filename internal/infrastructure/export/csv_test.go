package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/id"
	"stockpro/internal/domain/catalog/product"
	"stockpro/internal/domain/ledger"
	"stockpro/internal/domain/reports"
)

func sampleStats() *reports.Statistics {
	return &reports.Statistics{
		PeriodLabel:      "2026-08-01 to 2026-08-31",
		TotalRevenue:     6000,
		TotalCostOfGoods: 0,
		NetProfit:        2000,
		ProfitMargin:     decimal.RequireFromString("33.3300"),
		UnitsSold:        3,
		SaleCount:        2,
		TopProducts: []reports.ProductSales{
			{ProductCode: "PRD-00001", ProductName: "Widget A", Quantity: 2, Revenue: 3000},
			{ProductCode: "PRD-00002", ProductName: "Widget B", Quantity: 1, Revenue: 3000},
		},
		RevenueByCategory: []reports.CategoryRevenue{
			{Category: "Hardware", Revenue: 6000},
		},
	}
}

func TestWriteSummaryCSV(t *testing.T) {
	products := []product.Product{
		{Code: "PRD-00001", Name: "Widget A", Category: "Hardware", CostPrice: 1000, SalePrice: 1500, QuantityOnHand: 8},
	}
	movements := []ledger.Movement{
		{
			Code:        "MOV-00001",
			ProductID:   id.New(),
			ProductCode: "PRD-00001",
			ProductName: "Widget A",
			Direction:   ledger.DirectionOut,
			Quantity:    2,
			UnitPrice:   1500,
			TotalPrice:  3000,
			OccurredAt:  time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	err := WriteSummaryCSV(&buf, sampleStats(), products, movements)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# StockPro sales report\r\n"))
	assert.Contains(t, out, "# Period: 2026-08-01 to 2026-08-31\r\n")
	assert.Contains(t, out, "Total Revenue,60.00\r\n")
	assert.Contains(t, out, "Net Profit,20.00\r\n")
	assert.Contains(t, out, "Profit Margin %,33.33\r\n")
	assert.Contains(t, out, "PRD-00001,Widget A,2,30.00\r\n")
	assert.Contains(t, out, "Hardware,60.00\r\n")
	assert.Contains(t, out, "PRD-00001,Widget A,Hardware,10.00,15.00,8\r\n")
	assert.Contains(t, out, "MOV-00001,PRD-00001,OUT,2,30.00,2026-08-15\r\n")
	assert.NotContains(t, out, "Warning")
}

func TestWriteSummaryCSV_OrphanWarning(t *testing.T) {
	stats := sampleStats()
	stats.OrphanedSales = 1

	var buf bytes.Buffer
	err := WriteSummaryCSV(&buf, stats, nil, nil)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "# Warning: 1 sale(s) reference products no longer in the catalog\r\n")
	assert.NotContains(t, buf.String(), "Movements")
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "stockpro-report-2026-08-30.csv", FileName("csv", now))
	assert.Equal(t, "stockpro-report-2026-08-30.pdf", FileName("pdf", now))
}

func TestWriteSummaryCSV_QuotesCommasInNames(t *testing.T) {
	stats := sampleStats()
	stats.TopProducts[0].ProductName = "Widget, Large"

	var buf bytes.Buffer
	err := WriteSummaryCSV(&buf, stats, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"Widget, Large"`)
}
