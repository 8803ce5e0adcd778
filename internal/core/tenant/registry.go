package tenant

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Registry provides access to company metadata stored in the meta-database.
type Registry interface {
	// GetByID retrieves a company by UUID string.
	GetByID(ctx context.Context, companyID string) (*Company, error)

	// GetBySlug retrieves a company by its slug.
	GetBySlug(ctx context.Context, slug string) (*Company, error)

	// ListActive returns all active companies.
	ListActive(ctx context.Context) ([]*Company, error)

	// ListAll returns all companies.
	ListAll(ctx context.Context) ([]*Company, error)

	// Create inserts a new company row and populates c.ID.
	Create(ctx context.Context, c *Company) error

	// UpdateStatusByID updates company status by UUID string.
	UpdateStatusByID(ctx context.Context, companyID string, status Status) error

	// UpdatePlanByID updates company plan by UUID string.
	UpdatePlanByID(ctx context.Context, companyID string, plan Plan) error
}

const companyColumns = `id, slug, display_name, db_name, db_host, db_port,
	       status, plan, created_at, updated_at, settings`

// PostgresRegistry implements Registry using the meta-database.
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

func NewPostgresRegistry(pool *pgxpool.Pool) *PostgresRegistry {
	return &PostgresRegistry{pool: pool}
}

func (r *PostgresRegistry) GetByID(ctx context.Context, companyID string) (*Company, error) {
	var c Company
	err := pgxscan.Get(ctx, r.pool, &c, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE id = $1
	`, companyID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("get company by id: %w", err)
	}
	return &c, nil
}

func (r *PostgresRegistry) GetBySlug(ctx context.Context, slug string) (*Company, error) {
	var c Company
	err := pgxscan.Get(ctx, r.pool, &c, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE slug = $1
	`, slug)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("get company by slug: %w", err)
	}
	return &c, nil
}

func (r *PostgresRegistry) ListActive(ctx context.Context) ([]*Company, error) {
	var companies []*Company
	err := pgxscan.Select(ctx, r.pool, &companies, `
		SELECT `+companyColumns+`
		FROM companies
		WHERE status = $1
		ORDER BY created_at
	`, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active companies: %w", err)
	}
	return companies, nil
}

func (r *PostgresRegistry) ListAll(ctx context.Context) ([]*Company, error) {
	var companies []*Company
	err := pgxscan.Select(ctx, r.pool, &companies, `
		SELECT `+companyColumns+`
		FROM companies
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

func (r *PostgresRegistry) Create(ctx context.Context, c *Company) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO companies (slug, display_name, db_name, db_host, db_port, status, plan, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, c.Slug, c.DisplayName, c.DBName, c.DBHost, c.DBPort, c.Status, c.Plan, c.Settings).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

func (r *PostgresRegistry) UpdateStatusByID(ctx context.Context, companyID string, status Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE companies SET status = $2, updated_at = now() WHERE id = $1
	`, companyID, status)
	if err != nil {
		return fmt.Errorf("update company status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *PostgresRegistry) UpdatePlanByID(ctx context.Context, companyID string, plan Plan) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE companies SET plan = $2, updated_at = now() WHERE id = $1
	`, companyID, plan)
	if err != nil {
		return fmt.Errorf("update company plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}
