// Package tenant provides multi-tenant database management.
// Every company provisioned through the checkout funnel gets its own
// isolated PostgreSQL database; the meta-database only stores the registry.
package tenant

import (
	"fmt"
	"strings"
	"time"
)

// Status represents company lifecycle state.
type Status string

const (
	// StatusActive - company can accept requests
	StatusActive Status = "active"

	// StatusSuspended - company is temporarily disabled (payment issues, admin toggle)
	StatusSuspended Status = "suspended"

	// StatusDeleted - company is marked for deletion
	StatusDeleted Status = "deleted"
)

// Plan represents the subscription plan picked at checkout.
type Plan string

const (
	PlanStarter  Plan = "starter"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
)

// ValidPlan reports whether p is a known plan.
func ValidPlan(p Plan) bool {
	switch p {
	case PlanStarter, PlanPro, PlanBusiness:
		return true
	}
	return false
}

// Company represents a tenant record from the meta-database.
type Company struct {
	ID          string         `db:"id"`
	Slug        string         `db:"slug"`         // URL-safe identifier
	DisplayName string         `db:"display_name"` // Human-readable name
	DBName      string         `db:"db_name"`
	DBHost      string         `db:"db_host"`
	DBPort      int            `db:"db_port"`
	Status      Status         `db:"status"`
	Plan        Plan           `db:"plan"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	Settings    map[string]any `db:"settings"` // JSONB
}

// IsActive returns true if the company can accept requests.
func (c *Company) IsActive() bool {
	return c.Status == StatusActive
}

// DSN builds the PostgreSQL connection string for this company's database.
func (c *Company) DSN(user, password string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		user, password, c.DBHost, c.DBPort, c.DBName,
	)
}

// DSNWithSSL builds the connection string with an explicit SSL mode.
func (c *Company) DSNWithSSL(user, password, sslMode string) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user, password, c.DBHost, c.DBPort, c.DBName, sslMode,
	)
}

// CreateCompanyInput contains data for provisioning a new company.
type CreateCompanyInput struct {
	Slug        string
	DisplayName string
	Plan        Plan
	DBHost      string // Optional, defaults to localhost
	DBPort      int    // Optional, defaults to 5432
}

// Validate checks if input is valid.
func (i *CreateCompanyInput) Validate() error {
	if i.Slug == "" {
		return fmt.Errorf("slug is required")
	}
	i.Slug = strings.ToLower(i.Slug)
	if len(i.Slug) > 63 {
		return fmt.Errorf("slug must be 63 characters or less")
	}
	if i.DisplayName == "" {
		return fmt.Errorf("display_name is required")
	}
	if i.Plan == "" {
		i.Plan = PlanStarter
	}
	if !ValidPlan(i.Plan) {
		return fmt.Errorf("unknown plan %q", i.Plan)
	}
	return nil
}

// GenerateDBName creates the database name from the slug.
// Format: sp_<slug>
func (i *CreateCompanyInput) GenerateDBName() string {
	return "sp_" + i.Slug
}
