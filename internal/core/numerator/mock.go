package numerator

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	NextCodeFunc     func(ctx context.Context, cfg Config) (string, error)
	SetNextValueFunc func(ctx context.Context, cfg Config, value int64) error

	counter atomic.Int64
}

// NextCode implements Generator.
func (m *MockGenerator) NextCode(ctx context.Context, cfg Config) (string, error) {
	if m.NextCodeFunc != nil {
		return m.NextCodeFunc(ctx, cfg)
	}
	return fmt.Sprintf("%s-%05d", cfg.Prefix, m.counter.Add(1)), nil
}

// SetNextValue implements Generator.
func (m *MockGenerator) SetNextValue(ctx context.Context, cfg Config, value int64) error {
	if m.SetNextValueFunc != nil {
		return m.SetNextValueFunc(ctx, cfg, value)
	}
	m.counter.Store(value - 1)
	return nil
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
