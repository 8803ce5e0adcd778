// Package numerator provides the PostgreSQL implementation of display-code
// generation. It implements the core/numerator.Generator contract.
package numerator

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	corenumerator "stockpro/internal/core/numerator"
	"stockpro/internal/core/tenant"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service generates display codes from a per-tenant sys_sequences table.
// Every code costs one UPSERT; codes are gap-free as long as the caller
// commits, which is acceptable for catalog-sized write rates.
type Service struct {
	// staticQuerier is used for single-tenant mode (CLI tools, tests)
	staticQuerier Querier
	// useContext indicates whether to get the querier from context
	useContext bool
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Service)(nil)

// New creates a numerator service with a static querier.
// Use for seeding tools and tests.
func New(querier Querier) *Service {
	return &Service{staticQuerier: querier}
}

// NewFromContext creates a numerator service that gets the querier from
// context. Use for Database-per-Tenant request handling.
func NewFromContext() *Service {
	return &Service{useContext: true}
}

func (s *Service) getQuerier(ctx context.Context) Querier {
	if s.useContext {
		// Code generation runs outside business transactions (services
		// assign codes before opening the write transaction), so the
		// tenant pool is used directly.
		return tenant.MustGetPool(ctx)
	}
	return s.staticQuerier
}

// NextCode generates the next display code for a prefix.
func (s *Service) NextCode(ctx context.Context, cfg Config) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	querier := s.getQuerier(ctx)
	var num int64
	err := querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, cfg.Prefix).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next code: %w", err)
	}

	return s.formatCode(cfg, num), nil
}

// SetNextValue sets the sequence so that the next code uses value.
func (s *Service) SetNextValue(ctx context.Context, cfg Config, value int64) error {
	querier := s.getQuerier(ctx)

	var result int64
	err := querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, cfg.Prefix, value-1).Scan(&result)
	if err != nil {
		return fmt.Errorf("set next value: %w", err)
	}
	return nil
}

func (s *Service) formatCode(cfg Config, num int64) string {
	pad := cfg.PadWidth
	if pad <= 0 {
		pad = 5
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, pad, num)
}

// Config is re-exported for convenience so infrastructure callers don't
// need both packages imported.
type Config = corenumerator.Config
