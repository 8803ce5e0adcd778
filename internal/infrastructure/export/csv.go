// Package export renders report results into downloadable documents.
// The CSV writer streams through a buffered writer; the PDF path renders
// the whole document in memory before anything is written, so a failed
// conversion never leaves a truncated file behind.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/domain/catalog/product"
	"stockpro/internal/domain/ledger"
	"stockpro/internal/domain/reports"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024

	reportDateLayout = "2006-01-02"
)

// FileName builds the download name for a report artifact,
// e.g. "stockpro-report-2026-08-30.csv".
func FileName(ext string, now time.Time) string {
	return fmt.Sprintf("stockpro-report-%s.%s", now.Format(reportDateLayout), ext)
}

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

// writeComment emits a raw metadata line above the tabular data. Spreadsheet
// tools show these as-is; they are not CSV records.
func (s *csvStreamer) writeComment(line string) error {
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.flush()
	}
	return nil
}

func (s *csvStreamer) flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// WriteSummaryCSV serialises a sales report, plus the raw product and
// movement listings behind it, as a single CSV document.
func WriteSummaryCSV(w io.Writer, stats *reports.Statistics, products []product.Product, movements []ledger.Movement) error {
	if err := writeSummaryCSV(w, stats, products, movements); err != nil {
		return apperror.NewExportFailed("csv", err)
	}
	return nil
}

func writeSummaryCSV(w io.Writer, stats *reports.Statistics, products []product.Product, movements []ledger.Movement) error {
	s := newCSVStreamer(w)

	if err := s.writeComment("# StockPro sales report"); err != nil {
		return err
	}
	if err := s.writeComment("# Period: " + stats.PeriodLabel); err != nil {
		return err
	}
	if stats.OrphanedSales > 0 {
		if err := s.writeComment(fmt.Sprintf("# Warning: %d sale(s) reference products no longer in the catalog", stats.OrphanedSales)); err != nil {
			return err
		}
	}

	summary := [][]string{
		{"Metric", "Value"},
		{"Total Revenue", stats.TotalRevenue.String()},
		{"Cost of Goods Purchased", stats.TotalCostOfGoods.String()},
		{"Net Profit", stats.NetProfit.String()},
		{"Profit Margin %", stats.ProfitMargin.StringFixed(2)},
		{"Units Sold", strconv.FormatInt(stats.UnitsSold, 10)},
		{"Sale Count", strconv.Itoa(stats.SaleCount)},
	}
	for _, row := range summary {
		if err := s.writeRow(row); err != nil {
			return err
		}
	}

	if err := s.writeRow(nil); err != nil {
		return err
	}
	if err := s.writeRow([]string{"Top Products", "", "", ""}); err != nil {
		return err
	}
	if err := s.writeRow([]string{"Code", "Name", "Quantity", "Revenue"}); err != nil {
		return err
	}
	for _, p := range stats.TopProducts {
		row := []string{p.ProductCode, p.ProductName, strconv.FormatInt(p.Quantity, 10), p.Revenue.String()}
		if err := s.writeRow(row); err != nil {
			return err
		}
	}

	if err := s.writeRow(nil); err != nil {
		return err
	}
	if err := s.writeRow([]string{"Revenue by Category", ""}); err != nil {
		return err
	}
	if err := s.writeRow([]string{"Category", "Revenue"}); err != nil {
		return err
	}
	for _, c := range stats.RevenueByCategory {
		if err := s.writeRow([]string{c.Category, c.Revenue.String()}); err != nil {
			return err
		}
	}

	if len(products) > 0 {
		if err := s.writeRow(nil); err != nil {
			return err
		}
		if err := s.writeRow([]string{"Products", "", "", "", "", ""}); err != nil {
			return err
		}
		if err := s.writeRow([]string{"Code", "Name", "Category", "Cost Price", "Sale Price", "Quantity On Hand"}); err != nil {
			return err
		}
		for _, p := range products {
			row := []string{
				p.Code,
				p.Name,
				p.Category,
				p.CostPrice.String(),
				p.SalePrice.String(),
				strconv.FormatInt(p.QuantityOnHand, 10),
			}
			if err := s.writeRow(row); err != nil {
				return err
			}
		}
	}

	if len(movements) > 0 {
		if err := s.writeRow(nil); err != nil {
			return err
		}
		if err := s.writeRow([]string{"Movements", "", "", "", "", ""}); err != nil {
			return err
		}
		if err := s.writeRow([]string{"Code", "Product", "Direction", "Quantity", "Total", "Date"}); err != nil {
			return err
		}
		for _, m := range movements {
			row := []string{
				m.Code,
				m.ProductCode,
				string(m.Direction),
				strconv.FormatInt(m.Quantity, 10),
				m.TotalPrice.String(),
				m.OccurredAt.Format(reportDateLayout),
			}
			if err := s.writeRow(row); err != nil {
				return err
			}
		}
	}

	return s.flush()
}
