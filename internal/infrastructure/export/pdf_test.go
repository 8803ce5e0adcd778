package export

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/core/apperror"
)

func TestSummaryPDF(t *testing.T) {
	var receivedHTML string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		file, _, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		raw, err := io.ReadAll(file)
		require.NoError(t, err)
		receivedHTML = string(raw)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 fake"))
	}))
	defer srv.Close()

	exporter := NewPDFExporter(NewGotenbergClient(srv.URL))
	doc, err := exporter.SummaryPDF(context.Background(), sampleStats(), time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "%PDF-1.7 fake", string(doc))
	assert.Contains(t, receivedHTML, "2026-08-01 to 2026-08-31")
	assert.Contains(t, receivedHTML, "Widget A")
	assert.Contains(t, receivedHTML, "33.33")
	assert.Contains(t, receivedHTML, "Generated: 2026-08-30 09:30")
}

func TestSummaryPDF_RendererFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	exporter := NewPDFExporter(NewGotenbergClient(srv.URL))
	doc, err := exporter.SummaryPDF(context.Background(), sampleStats(), time.Now())

	require.Error(t, err)
	assert.Nil(t, doc)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeExportFailed, appErr.Code)
}

func TestGotenbergPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewGotenbergClient(srv.URL)
	assert.NoError(t, client.Ping(context.Background()))

	client = NewGotenbergClient(srv.URL + "/missing")
	assert.Error(t, client.Ping(context.Background()))
}
