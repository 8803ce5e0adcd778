package numerator

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"

	corenumerator "stockpro/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences UPSERT: the sequence value
// increments by one per call unless an explicit value is set.
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(args) == 2 {
		// SetNextValue path: second arg is the stored value.
		if val, ok := args[1].(int64); ok {
			m.currentValue = val
			return &mockRow{val: m.currentValue}
		}
	}

	m.currentValue++
	return &mockRow{val: m.currentValue}
}

func TestNextCode(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("PRD")

	code, err := svc.NextCode(ctx, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "PRD-00001" {
		t.Errorf("expected PRD-00001, got %s", code)
	}

	code, err = svc.NextCode(ctx, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "PRD-00002" {
		t.Errorf("expected PRD-00002, got %s", code)
	}
}

func TestNextCode_CustomPadWidth(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.Config{Prefix: "MOV", PadWidth: 7}

	code, err := svc.NextCode(ctx, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "MOV-0000001" {
		t.Errorf("expected MOV-0000001, got %s", code)
	}
}

func TestSetNextValue(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := corenumerator.DefaultConfig("PRD")

	if err := svc.SetNextValue(ctx, cfg, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	code, err := svc.NextCode(ctx, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "PRD-00100" {
		t.Errorf("expected PRD-00100, got %s", code)
	}
}
