package export

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/domain/reports"
)

//go:embed templates/summary.gohtml
var templateFS embed.FS

var summaryTemplate = template.Must(template.ParseFS(templateFS, "templates/summary.gohtml"))

// GotenbergClient converts HTML into PDF via a Gotenberg service.
type GotenbergClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGotenbergClient constructs a client for the given base URL.
func NewGotenbergClient(baseURL string) *GotenbergClient {
	return &GotenbergClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Ping checks whether the remote Gotenberg service is reachable.
func (c *GotenbergClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts raw HTML into a PDF document. The full document is
// read into memory before returning.
func (c *GotenbergClient) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, bytes.NewBufferString(html)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("render failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// HTMLRenderer is the part of the Gotenberg client the PDF exporter needs.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PDFExporter renders sales summaries into PDF documents.
type PDFExporter struct {
	renderer HTMLRenderer
}

// NewPDFExporter creates a PDF exporter backed by the given renderer.
func NewPDFExporter(renderer HTMLRenderer) *PDFExporter {
	return &PDFExporter{renderer: renderer}
}

type summaryView struct {
	GeneratedAt string
	Stats       *reports.Statistics
	Margin      string
}

// SummaryPDF renders a sales report into a complete PDF document held in
// memory. Callers write the returned bytes only on success.
func (e *PDFExporter) SummaryPDF(ctx context.Context, stats *reports.Statistics, generatedAt time.Time) ([]byte, error) {
	view := summaryView{
		GeneratedAt: generatedAt.Format("2006-01-02 15:04"),
		Stats:       stats,
		Margin:      stats.ProfitMargin.StringFixed(2),
	}

	var html bytes.Buffer
	if err := summaryTemplate.Execute(&html, view); err != nil {
		return nil, apperror.NewExportFailed("pdf", err)
	}

	doc, err := e.renderer.RenderHTML(ctx, html.String())
	if err != nil {
		return nil, apperror.NewExportFailed("pdf", err)
	}
	return doc, nil
}
