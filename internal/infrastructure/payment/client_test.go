package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/internal/domain/billing"
)

func TestCreatePreference(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/preferences", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":           "pref-123",
			"checkout_url": "https://pay.example/checkout/pref-123",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "token-abc")
	pref, err := client.CreatePreference(context.Background(), billing.PreferenceRequest{
		Title:      "StockPro Pro plan",
		Amount:     "49.90",
		Reference:  "signup-1",
		PayerEmail: "owner@acme.test",
	})
	require.NoError(t, err)

	assert.Equal(t, "pref-123", pref.ID)
	assert.Equal(t, "https://pay.example/checkout/pref-123", pref.CheckoutURL)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Equal(t, "StockPro Pro plan", gotPayload["title"])
	assert.Equal(t, "signup-1", gotPayload["external_reference"])
}

func TestCreatePreference_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid payer", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	pref, err := client.CreatePreference(context.Background(), billing.PreferenceRequest{Title: "x", Amount: "1.00"})

	require.Error(t, err)
	assert.Nil(t, pref)
	assert.Contains(t, err.Error(), "status 422")
}

func TestCreatePreference_EmptyID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.CreatePreference(context.Background(), billing.PreferenceRequest{Title: "x", Amount: "1.00"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty preference id")
}
