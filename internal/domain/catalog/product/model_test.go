package product

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockpro/internal/core/types"
)

func TestProductValidate(t *testing.T) {
	ctx := context.Background()
	expiry := time.Now().AddDate(0, 1, 0)

	tests := []struct {
		name    string
		mutate  func(p *Product)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(p *Product) {},
		},
		{
			name:    "empty name",
			mutate:  func(p *Product) { p.Name = "  " },
			wantErr: true,
		},
		{
			name:    "empty category",
			mutate:  func(p *Product) { p.Category = "" },
			wantErr: true,
		},
		{
			name:    "negative cost price",
			mutate:  func(p *Product) { p.CostPrice = -1 },
			wantErr: true,
		},
		{
			name: "sale below cost",
			mutate: func(p *Product) {
				p.CostPrice = 1500
				p.SalePrice = 1000
			},
			wantErr: true,
		},
		{
			name:    "negative reorder threshold",
			mutate:  func(p *Product) { p.ReorderThreshold = -5 },
			wantErr: true,
		},
		{
			name:    "perishable without expiry date",
			mutate:  func(p *Product) { p.HasExpiry = true },
			wantErr: true,
		},
		{
			name: "perishable with expiry date",
			mutate: func(p *Product) {
				p.HasExpiry = true
				p.ExpiryDate = &expiry
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProduct("PRD-00001", "Milk 1L", "Dairy")
			p.CostPrice = types.MinorUnits(1000)
			p.SalePrice = types.MinorUnits(1500)
			tt.mutate(p)

			err := p.Validate(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProductIsLowStock(t *testing.T) {
	p := NewProduct("PRD-00001", "Milk 1L", "Dairy")

	p.ReorderThreshold = 0
	p.QuantityOnHand = 0
	assert.False(t, p.IsLowStock(), "no threshold means no alert")

	p.ReorderThreshold = 10
	p.QuantityOnHand = 11
	assert.False(t, p.IsLowStock())

	p.QuantityOnHand = 10
	assert.True(t, p.IsLowStock())

	p.QuantityOnHand = 0
	assert.True(t, p.IsLowStock())
}

func TestProductIsExpiringSoon(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewProduct("PRD-00001", "Yogurt", "Dairy")

	assert.False(t, p.IsExpiringSoon(now), "non-perishable never expires")

	expiry := now.AddDate(0, 0, 5)
	p.HasExpiry = true
	p.ExpiryDate = &expiry
	p.AlertWindowDays = 7
	assert.True(t, p.IsExpiringSoon(now))

	p.AlertWindowDays = 3
	assert.False(t, p.IsExpiringSoon(now))

	// Default window is 7 days when unset.
	p.AlertWindowDays = 0
	assert.True(t, p.IsExpiringSoon(now))
}
