package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"stockpro/internal/core/tenant"
	"stockpro/internal/domain/auth"
	"stockpro/internal/domain/billing"
	"stockpro/pkg/logger"
)

//go:embed schema/meta.sql
var metaSchema string

//go:embed schema/company.sql
var companySchema string

// ApplyMetaSchema applies the meta-database schema. Statements are
// idempotent, so re-running on startup is safe.
func ApplyMetaSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, metaSchema); err != nil {
		return fmt.Errorf("apply meta schema: %w", err)
	}
	return nil
}

// ApplyCompanySchema applies the per-company schema over an existing
// connection pool.
func ApplyCompanySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, companySchema); err != nil {
		return fmt.Errorf("apply company schema: %w", err)
	}
	return nil
}

// ProvisionerConfig holds cluster credentials for company provisioning.
type ProvisionerConfig struct {
	// AdminDSN connects to the maintenance database with CREATEDB rights.
	AdminDSN string
	// DBUser and DBPassword are the credentials company pools use.
	DBUser     string
	DBPassword string
	SSLMode    string
}

// CompanyDatabaseManager creates and drops company databases and seeds
// the owner account. Implements billing.DatabaseCreator and
// billing.OwnerSeeder.
type CompanyDatabaseManager struct {
	adminPool *pgxpool.Pool
	config    ProvisionerConfig
}

var (
	_ billing.DatabaseCreator = (*CompanyDatabaseManager)(nil)
	_ billing.OwnerSeeder     = (*CompanyDatabaseManager)(nil)
)

// NewCompanyDatabaseManager creates a manager over an admin connection.
func NewCompanyDatabaseManager(adminPool *pgxpool.Pool, config ProvisionerConfig) *CompanyDatabaseManager {
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}
	return &CompanyDatabaseManager{adminPool: adminPool, config: config}
}

// CreateCompanyDatabase creates the database and applies the company
// schema. CREATE DATABASE cannot run inside a transaction.
func (m *CompanyDatabaseManager) CreateCompanyDatabase(ctx context.Context, company *tenant.Company) error {
	dbName := pgx.Identifier{company.DBName}.Sanitize()

	if _, err := m.adminPool.Exec(ctx, "CREATE DATABASE "+dbName); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("database %s already exists", company.DBName)
		}
		return fmt.Errorf("create database: %w", err)
	}

	pool, err := m.connectCompany(ctx, company)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := ApplyCompanySchema(ctx, pool); err != nil {
		return err
	}

	logger.Info(ctx, "company database created", "db_name", company.DBName)
	return nil
}

// DropCompanyDatabase drops the database. Used only for provisioning
// rollback; normal deletion just flips the registry status.
func (m *CompanyDatabaseManager) DropCompanyDatabase(ctx context.Context, company *tenant.Company) error {
	dbName := pgx.Identifier{company.DBName}.Sanitize()
	if _, err := m.adminPool.Exec(ctx, "DROP DATABASE IF EXISTS "+dbName+" WITH (FORCE)"); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	return nil
}

// SeedOwner creates the owner account in a fresh company database.
func (m *CompanyDatabaseManager) SeedOwner(ctx context.Context, company *tenant.Company, email, name, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash owner password: %w", err)
	}

	user := auth.NewUser(email, string(hash))
	user.Name = name
	user.IsAdmin = true
	user.IsOwner = true

	pool, err := m.connectCompany(ctx, company)
	if err != nil {
		return err
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, name,
			is_active, is_admin, is_owner, created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		user.ID, user.Email, user.PasswordHash, user.Name,
		user.IsActive, user.IsAdmin, user.IsOwner,
		user.CreatedAt, user.UpdatedAt, user.Version,
	)
	if err != nil {
		return fmt.Errorf("insert owner: %w", err)
	}

	logger.Info(ctx, "owner account seeded", "db_name", company.DBName, "email", user.Email)
	return nil
}

func (m *CompanyDatabaseManager) connectCompany(ctx context.Context, company *tenant.Company) (*pgxpool.Pool, error) {
	dsn := company.DSNWithSSL(m.config.DBUser, m.config.DBPassword, m.config.SSLMode)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect company database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping company database: %w", err)
	}
	return pool, nil
}
