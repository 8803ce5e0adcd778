// Package billing_repo stores checkout signups in the meta-database.
// Signups precede company provisioning, so unlike the per-company repos
// this one holds the meta pool directly instead of reading a TxManager
// from context.
package billing_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/domain/billing"
	"stockpro/internal/infrastructure/storage/postgres"
)

const signupColumns = `id, company_slug, company_name, owner_email, owner_name,
	   plan, status, payment_preference_id, failure_reason, company_id,
	   created_at, updated_at`

// SignupRepo implements billing.SignupRepository.
type SignupRepo struct {
	pool *pgxpool.Pool
}

var _ billing.SignupRepository = (*SignupRepo)(nil)

// NewSignupRepo creates a new signup repository over the meta pool.
func NewSignupRepo(pool *pgxpool.Pool) *SignupRepo {
	return &SignupRepo{pool: pool}
}

func (r *SignupRepo) Create(ctx context.Context, s *billing.Signup) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO signups (
			id, company_slug, company_name, owner_email, owner_name,
			plan, status, payment_preference_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		s.ID, s.CompanySlug, s.CompanyName, s.OwnerEmail, s.OwnerName,
		s.Plan, s.Status, s.PaymentPreferenceID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewConflict("company slug already taken").
				WithDetail("companySlug", s.CompanySlug)
		}
		return fmt.Errorf("insert signup: %w", err)
	}
	return nil
}

func (r *SignupRepo) GetByID(ctx context.Context, signupID id.ID) (*billing.Signup, error) {
	var s billing.Signup
	err := pgxscan.Get(ctx, r.pool, &s, `
		SELECT `+signupColumns+`
		FROM signups
		WHERE id = $1
	`, signupID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("signup", signupID.String())
		}
		return nil, fmt.Errorf("get signup: %w", err)
	}
	return &s, nil
}

func (r *SignupRepo) GetByPreferenceID(ctx context.Context, preferenceID string) (*billing.Signup, error) {
	var s billing.Signup
	err := pgxscan.Get(ctx, r.pool, &s, `
		SELECT `+signupColumns+`
		FROM signups
		WHERE payment_preference_id = $1
	`, preferenceID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("signup", preferenceID)
		}
		return nil, fmt.Errorf("get signup by preference: %w", err)
	}
	return &s, nil
}

func (r *SignupRepo) Update(ctx context.Context, s *billing.Signup) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE signups SET
			status = $2, payment_preference_id = $3, failure_reason = $4,
			company_id = $5, updated_at = $6
		WHERE id = $1
	`, s.ID, s.Status, s.PaymentPreferenceID, s.FailureReason, s.CompanyID, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update signup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("signup", s.ID.String())
	}
	return nil
}

func (r *SignupRepo) ExistsSlug(ctx context.Context, slug string) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `
		SELECT 1 FROM signups
		WHERE company_slug = $1 AND status != 'failed'
		LIMIT 1
	`, slug).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check slug exists: %w", err)
	}
	return true, nil
}
