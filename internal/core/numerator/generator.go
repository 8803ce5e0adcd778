// Package numerator provides domain contracts for display-code generation.
// Implementations live in the infrastructure layer.
package numerator

import (
	"context"
)

// Generator generates sequential display codes.
//
// In Database-per-Tenant architecture, implementations obtain database
// connections from context using tenant.GetPool.
type Generator interface {
	// NextCode generates the next display code for a prefix.
	// Pattern: PREFIX-XXXXX (e.g., PRD-00042). Codes never reset:
	// they are shown to users and printed on labels, so they must
	// stay stable across years.
	NextCode(ctx context.Context, cfg Config) (string, error)

	// SetNextValue sets the next sequence value (for data imports).
	SetNextValue(ctx context.Context, cfg Config, value int64) error
}

// Config holds code generation configuration.
type Config struct {
	// Prefix added to all codes (e.g., "PRD", "MOV")
	Prefix string

	// PadWidth is the minimum numeric width (default 5)
	PadWidth int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		PadWidth: 5,
	}
}
