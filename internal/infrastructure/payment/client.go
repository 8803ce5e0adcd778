// Package payment talks to the external checkout provider. The provider
// exposes a preference API: we register what should be collected, it
// answers with an id and a hosted checkout URL.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stockpro/internal/domain/billing"
)

// Client implements billing.PaymentClient against an HTTP provider.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient constructs a payment client for the given provider base URL.
func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type preferencePayload struct {
	Title             string `json:"title"`
	Amount            string `json:"amount"`
	ExternalReference string `json:"external_reference"`
	PayerEmail        string `json:"payer_email"`
}

type preferenceResponse struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreatePreference registers a payment preference with the provider and
// returns the hosted checkout handle.
func (c *Client) CreatePreference(ctx context.Context, req billing.PreferenceRequest) (*billing.Preference, error) {
	payload := preferencePayload{
		Title:             req.Title,
		Amount:            req.Amount,
		ExternalReference: req.Reference,
		PayerEmail:        req.PayerEmail,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payment provider unreachable: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("payment provider returned status %d: %s", resp.StatusCode, raw)
	}

	var pref preferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pref); err != nil {
		return nil, fmt.Errorf("decode preference response: %w", err)
	}
	if pref.ID == "" {
		return nil, fmt.Errorf("payment provider returned empty preference id")
	}

	return &billing.Preference{
		ID:          pref.ID,
		CheckoutURL: pref.CheckoutURL,
	}, nil
}
