package billing

import (
	"context"
	"fmt"

	"stockpro/internal/core/tenant"
	"stockpro/pkg/logger"
)

// DatabaseCreator creates and drops company databases on the cluster.
type DatabaseCreator interface {
	CreateCompanyDatabase(ctx context.Context, company *tenant.Company) error
	DropCompanyDatabase(ctx context.Context, company *tenant.Company) error
}

// OwnerSeeder creates the owner account inside a freshly created company
// database.
type OwnerSeeder interface {
	SeedOwner(ctx context.Context, company *tenant.Company, email, name, password string) error
}

// CompanyProvisioner creates the registry row, the database, and the
// owner account for a paid signup. Failures roll back best-effort: the
// database is dropped and the registry row marked deleted, so a retried
// signup can reuse the slug after cleanup.
type CompanyProvisioner struct {
	registry tenant.Registry
	creator  DatabaseCreator
	seeder   OwnerSeeder
}

var _ Provisioner = (*CompanyProvisioner)(nil)

// NewCompanyProvisioner creates a provisioner.
func NewCompanyProvisioner(
	registry tenant.Registry,
	creator DatabaseCreator,
	seeder OwnerSeeder,
) *CompanyProvisioner {
	return &CompanyProvisioner{
		registry: registry,
		creator:  creator,
		seeder:   seeder,
	}
}

// DefaultDBHost and DefaultDBPort place new company databases on the
// same cluster as the meta-database unless the input says otherwise.
const (
	DefaultDBHost = "localhost"
	DefaultDBPort = 5432
)

// Provision creates the company account end to end.
func (p *CompanyProvisioner) Provision(ctx context.Context, signup *Signup, ownerPassword string) (*tenant.Company, error) {
	input := tenant.CreateCompanyInput{
		Slug:        signup.CompanySlug,
		DisplayName: signup.CompanyName,
		Plan:        signup.Plan,
		DBHost:      DefaultDBHost,
		DBPort:      DefaultDBPort,
	}
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("validate company input: %w", err)
	}

	company := &tenant.Company{
		Slug:        input.Slug,
		DisplayName: input.DisplayName,
		DBName:      input.GenerateDBName(),
		DBHost:      input.DBHost,
		DBPort:      input.DBPort,
		Status:      tenant.StatusActive,
		Plan:        input.Plan,
	}
	if err := p.registry.Create(ctx, company); err != nil {
		return nil, fmt.Errorf("create registry entry: %w", err)
	}

	if err := p.creator.CreateCompanyDatabase(ctx, company); err != nil {
		p.rollback(ctx, company, false)
		return nil, fmt.Errorf("create database: %w", err)
	}

	if err := p.seeder.SeedOwner(ctx, company, signup.OwnerEmail, signup.OwnerName, ownerPassword); err != nil {
		p.rollback(ctx, company, true)
		return nil, fmt.Errorf("seed owner account: %w", err)
	}

	return company, nil
}

func (p *CompanyProvisioner) rollback(ctx context.Context, company *tenant.Company, dropDB bool) {
	if dropDB {
		if err := p.creator.DropCompanyDatabase(ctx, company); err != nil {
			logger.Error(ctx, "provisioning rollback: drop database failed",
				"company_id", company.ID, "db_name", company.DBName, "error", err)
		}
	}
	if err := p.registry.UpdateStatusByID(ctx, company.ID, tenant.StatusDeleted); err != nil {
		logger.Error(ctx, "provisioning rollback: mark deleted failed",
			"company_id", company.ID, "error", err)
	}
}
