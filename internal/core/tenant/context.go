package tenant

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"stockpro/internal/core/tx"
)

// Context keys for tenant-related values.
type ctxKey int

const (
	poolKey ctxKey = iota
	txManagerKey
	companyKey
)

// Errors for context operations.
var (
	ErrNoCompanyInContext = errors.New("company not found in context")
	ErrNoPoolInContext    = errors.New("database pool not found in context")
	ErrNoTxManager        = errors.New("transaction manager not found in context")
)

// --- Pool ---

// WithPool stores database pool in context.
func WithPool(ctx context.Context, pool *pgxpool.Pool) context.Context {
	return context.WithValue(ctx, poolKey, pool)
}

// GetPool retrieves database pool from context.
func GetPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, ok := ctx.Value(poolKey).(*pgxpool.Pool)
	if !ok || pool == nil {
		return nil, ErrNoPoolInContext
	}
	return pool, nil
}

// MustGetPool retrieves database pool or panics.
// Use in places where a missing pool is a programming error.
func MustGetPool(ctx context.Context) *pgxpool.Pool {
	pool, err := GetPool(ctx)
	if err != nil {
		panic("database pool not in context: " + err.Error())
	}
	return pool
}

// --- TxManager ---

// WithTxManager stores TxManager in context.
func WithTxManager(ctx context.Context, txm tx.Manager) context.Context {
	return context.WithValue(ctx, txManagerKey, txm)
}

// GetTxManager retrieves TxManager from context.
func GetTxManager(ctx context.Context) (tx.Manager, error) {
	txm, ok := ctx.Value(txManagerKey).(tx.Manager)
	if !ok || txm == nil {
		return nil, ErrNoTxManager
	}
	return txm, nil
}

// MustGetTxManager retrieves TxManager or panics.
func MustGetTxManager(ctx context.Context) tx.Manager {
	txm, err := GetTxManager(ctx)
	if err != nil {
		panic("TxManager not in context: " + err.Error())
	}
	return txm
}

// --- Company ---

// WithCompany stores company info in context.
func WithCompany(ctx context.Context, c *Company) context.Context {
	return context.WithValue(ctx, companyKey, c)
}

// GetCompany retrieves company from context.
func GetCompany(ctx context.Context) *Company {
	c, _ := ctx.Value(companyKey).(*Company)
	return c
}

// GetCompanyID returns company ID or empty string.
func GetCompanyID(ctx context.Context) string {
	if c := GetCompany(ctx); c != nil {
		return c.ID
	}
	return ""
}

// GetPlan returns the company plan or empty string.
func GetPlan(ctx context.Context) Plan {
	if c := GetCompany(ctx); c != nil {
		return c.Plan
	}
	return ""
}
