// Package main provides a CLI for company account management.
// Usage: tenant create --slug acme --name "ACME Corp" --owner-email a@b.c --owner-password secret
//        tenant list
//        tenant migrate --all
//        tenant suspend <company-id>
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"stockpro/internal/core/tenant"
	"stockpro/internal/infrastructure/storage/postgres"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "create":
		createCompany(ctx)
	case "list":
		listCompanies(ctx)
	case "migrate":
		migrateCompanies(ctx)
	case "suspend":
		suspendCompany(ctx)
	case "activate":
		activateCompany(ctx)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`StockPro Company Management CLI

Usage:
  tenant <command> [options]

Commands:
  create    Create a new company account
  list      List all companies
  migrate   Apply the company schema to company database(s)
  suspend   Suspend a company
  activate  Activate a suspended company
  help      Show this help

Environment Variables:
  META_DATABASE_URL    Connection string for the system database (required)
  TENANT_DB_USER       Username for company databases (required)
  TENANT_DB_PASSWORD   Password for company databases (required)

Examples:
  tenant create --slug acme --name "ACME Corporation" --owner-email owner@acme.com --owner-password secret
  tenant list
  tenant migrate --all
  tenant migrate --id <company-uuid>
  tenant suspend <company-uuid>
  tenant activate <company-uuid>`)
}

func getMetaPool(ctx context.Context) *pgxpool.Pool {
	metaDSN := os.Getenv("META_DATABASE_URL")
	if metaDSN == "" {
		fmt.Println("Error: META_DATABASE_URL environment variable is required")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, metaDSN)
	if err != nil {
		fmt.Printf("Error connecting to meta database: %v\n", err)
		os.Exit(1)
	}

	return pool
}

func mustCredentials() (string, string) {
	dbUser := os.Getenv("TENANT_DB_USER")
	dbPassword := os.Getenv("TENANT_DB_PASSWORD")
	if dbUser == "" || dbPassword == "" {
		fmt.Println("Error: TENANT_DB_USER and TENANT_DB_PASSWORD are required")
		os.Exit(1)
	}
	return dbUser, dbPassword
}

func createCompany(ctx context.Context) {
	var slug, name, plan, ownerEmail, ownerName, ownerPassword string

	for i := 2; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--slug":
			if i+1 < len(os.Args) {
				slug = os.Args[i+1]
				i++
			}
		case "--name":
			if i+1 < len(os.Args) {
				name = os.Args[i+1]
				i++
			}
		case "--plan":
			if i+1 < len(os.Args) {
				plan = os.Args[i+1]
				i++
			}
		case "--owner-email":
			if i+1 < len(os.Args) {
				ownerEmail = os.Args[i+1]
				i++
			}
		case "--owner-name":
			if i+1 < len(os.Args) {
				ownerName = os.Args[i+1]
				i++
			}
		case "--owner-password":
			if i+1 < len(os.Args) {
				ownerPassword = os.Args[i+1]
				i++
			}
		}
	}

	if slug == "" || name == "" {
		fmt.Println("Error: --slug and --name are required")
		fmt.Println("Usage: tenant create --slug <slug> --name <name> [--plan starter|pro|business] [--owner-email <email> --owner-password <password>]")
		os.Exit(1)
	}

	if plan == "" {
		plan = string(tenant.PlanStarter)
	}

	dbUser, dbPassword := mustCredentials()

	metaPool := getMetaPool(ctx)
	defer metaPool.Close()

	registry := tenant.NewPostgresRegistry(metaPool)

	input := tenant.CreateCompanyInput{
		Slug:        slug,
		DisplayName: name,
		Plan:        tenant.Plan(plan),
		DBHost:      "localhost",
		DBPort:      5432,
	}
	if err := input.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
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

	fmt.Printf("Creating company '%s'...\n", slug)

	fmt.Println("  Registering company...")
	if err := registry.Create(ctx, company); err != nil {
		fmt.Printf("Error registering company: %v\n", err)
		os.Exit(1)
	}

	dbManager := postgres.NewCompanyDatabaseManager(metaPool, postgres.ProvisionerConfig{
		AdminDSN:   os.Getenv("META_DATABASE_URL"),
		DBUser:     dbUser,
		DBPassword: dbPassword,
	})

	fmt.Printf("  Creating database %s...\n", company.DBName)
	if err := dbManager.CreateCompanyDatabase(ctx, company); err != nil {
		fmt.Printf("Error creating database: %v\n", err)
		os.Exit(1)
	}

	if ownerEmail != "" && ownerPassword != "" {
		fmt.Printf("  Seeding owner account %s...\n", ownerEmail)
		if ownerName == "" {
			ownerName = ownerEmail
		}
		if err := dbManager.SeedOwner(ctx, company, ownerEmail, ownerName, ownerPassword); err != nil {
			fmt.Printf("Error seeding owner: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("\n✓ Company '%s' created successfully!\n", slug)
	fmt.Printf("  Company ID: %s\n", company.ID)
	fmt.Printf("  Database: %s\n", company.DBName)
	fmt.Printf("  Status: active\n")
	fmt.Printf("  Plan: %s\n", plan)
}

func listCompanies(ctx context.Context) {
	metaPool := getMetaPool(ctx)
	defer metaPool.Close()

	registry := tenant.NewPostgresRegistry(metaPool)
	companies, err := registry.ListAll(ctx)
	if err != nil {
		fmt.Printf("Error listing companies: %v\n", err)
		os.Exit(1)
	}

	if len(companies) == 0 {
		fmt.Println("No companies found")
		return
	}

	fmt.Printf("%-36s %-20s %-30s %-15s %-12s %-10s\n", "COMPANY_ID", "SLUG", "NAME", "DATABASE", "PLAN", "STATUS")
	fmt.Println(strings.Repeat("-", 135))

	for _, c := range companies {
		fmt.Printf("%-36s %-20s %-30s %-15s %-12s %-10s\n",
			truncate(c.ID, 36),
			truncate(c.Slug, 20),
			truncate(c.DisplayName, 30),
			truncate(c.DBName, 15),
			c.Plan,
			c.Status,
		)
	}
}

func migrateCompanies(ctx context.Context) {
	var targetID string
	var all bool

	for i := 2; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--id":
			if i+1 < len(os.Args) {
				targetID = os.Args[i+1]
				i++
			}
		case "--all":
			all = true
		}
	}

	if !all && targetID == "" {
		fmt.Println("Error: specify --id <company-uuid> or --all")
		os.Exit(1)
	}

	dbUser, dbPassword := mustCredentials()

	metaPool := getMetaPool(ctx)
	defer metaPool.Close()

	registry := tenant.NewPostgresRegistry(metaPool)

	var companies []*tenant.Company
	var err error

	if all {
		companies, err = registry.ListActive(ctx)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		c, err := registry.GetByID(ctx, targetID)
		if err != nil {
			fmt.Printf("Error: company '%s' not found\n", targetID)
			os.Exit(1)
		}
		companies = []*tenant.Company{c}
	}

	for _, c := range companies {
		fmt.Printf("Migrating %s (%s)...\n", c.Slug, c.DBName)

		pool, err := pgxpool.New(ctx, c.DSN(dbUser, dbPassword))
		if err != nil {
			fmt.Printf("  ✗ Failed to connect: %v\n", err)
			continue
		}

		// Schema statements are idempotent; reapplying is safe.
		if err := postgres.ApplyCompanySchema(ctx, pool); err != nil {
			fmt.Printf("  ✗ Failed: %v\n", err)
		} else {
			fmt.Printf("  ✓ Done\n")
		}
		pool.Close()
	}
}

func suspendCompany(ctx context.Context) {
	setStatus(ctx, "suspend", tenant.StatusSuspended)
}

func activateCompany(ctx context.Context) {
	setStatus(ctx, "activate", tenant.StatusActive)
}

func setStatus(ctx context.Context, verb string, status tenant.Status) {
	if len(os.Args) < 3 {
		fmt.Printf("Usage: tenant %s <company-uuid>\n", verb)
		os.Exit(1)
	}

	companyID := os.Args[2]

	metaPool := getMetaPool(ctx)
	defer metaPool.Close()

	registry := tenant.NewPostgresRegistry(metaPool)
	if err := registry.UpdateStatusByID(ctx, companyID, status); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Company '%s' %sd\n", companyID, verb)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
