// Package main provides a CLI tool for seeding a company database with
// demo catalog and movement data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"stockpro/internal/core/id"
	"stockpro/internal/core/types"
	"stockpro/internal/infrastructure/storage/postgres"
	"stockpro/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// DATABASE_URL points at one company database, not the meta database.
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to company database")

	if err := postgres.ApplyCompanySchema(ctx, pool.Pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}

	ownerID, err := seedOwner(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed owner", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, ownerID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedOwner(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	email := os.Getenv("OWNER_EMAIL")
	if email == "" {
		email = "owner@stockpro.local"
	}
	password := os.Getenv("OWNER_PASSWORD")
	if password == "" {
		password = "Owner123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL`, email,
	).Scan(&existingID)
	if err == nil {
		log.Infow("owner already exists", "email", email)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), err
	}

	ownerID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, name, is_active, is_admin, is_owner)
		VALUES ($1, lower($2), $3, 'Owner', true, true, true)`,
		ownerID, email, string(hash),
	)
	if err != nil {
		return id.Nil(), err
	}

	log.Infow("owner created", "email", email)
	return ownerID, nil
}

type demoProduct struct {
	code      string
	name      string
	category  string
	barcode   string
	costPrice types.MinorUnits
	salePrice types.MinorUnits
	quantity  int64
	threshold int64
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, ownerID id.ID) error {
	var count int
	if err := pool.Pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		log.Info("demo data already present, skipping")
		return nil
	}

	demo := []demoProduct{
		// Quantities already reflect the seeded movement history below.
		{"PRD-00001", "Espresso Beans 1kg", "Coffee", "7891000100103", 2500, 4990, 37, 10},
		{"PRD-00002", "Drip Coffee 500g", "Coffee", "7891000100110", 1200, 2490, 60, 15},
		{"PRD-00003", "Ceramic Mug", "Accessories", "7891000100127", 800, 1990, 28, 5},
		{"PRD-00004", "French Press", "Accessories", "7891000100134", 3500, 6990, 12, 3},
		{"PRD-00005", "Oat Milk 1L", "Dairy", "7891000100141", 450, 990, 80, 20},
	}

	productIDs := make(map[string]id.ID, len(demo))
	for _, p := range demo {
		productID := id.New()
		productIDs[p.code] = productID
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO products (id, code, name, category, barcode, cost_price, sale_price,
			                      quantity_on_hand, reorder_threshold, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)`,
			productID, p.code, p.name, p.category, p.barcode,
			p.costPrice, p.salePrice, p.quantity, p.threshold,
		)
		if err != nil {
			return fmt.Errorf("insert product %s: %w", p.code, err)
		}
	}

	// A handful of movements: restocks last week, sales this week.
	now := time.Now()
	movements := []struct {
		code      string
		product   string
		direction string
		quantity  int64
		daysAgo   int
	}{
		{"MOV-00001", "PRD-00001", "IN", 40, 7},
		{"MOV-00002", "PRD-00002", "IN", 65, 7},
		{"MOV-00003", "PRD-00001", "OUT", 3, 2},
		{"MOV-00004", "PRD-00003", "OUT", 2, 1},
		{"MOV-00005", "PRD-00002", "OUT", 5, 0},
	}

	for _, m := range movements {
		p := findDemoProduct(demo, m.product)
		unitPrice := p.salePrice
		costAtSale := types.MinorUnits(0)
		if m.direction == "IN" {
			unitPrice = p.costPrice
		} else {
			costAtSale = p.costPrice
		}
		total := unitPrice * types.MinorUnits(m.quantity)

		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO stock_movements (id, code, product_id, product_code, product_name,
			                             direction, quantity, unit_price, total_price,
			                             cost_price_at_sale, occurred_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			id.New(), m.code, productIDs[m.product], m.product, p.name,
			m.direction, m.quantity, unitPrice, total,
			costAtSale, now.AddDate(0, 0, -m.daysAgo), ownerID,
		)
		if err != nil {
			return fmt.Errorf("insert movement %s: %w", m.code, err)
		}
	}

	// Reserve sequence values past the seeded codes.
	for _, seq := range []struct {
		key string
		val int64
	}{{"PRD", 5}, {"MOV", 5}} {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO sys_sequences (key, current_val) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET current_val = GREATEST(sys_sequences.current_val, $2)`,
			seq.key, seq.val,
		)
		if err != nil {
			return err
		}
	}

	log.Infow("demo data seeded", "products", len(demo), "movements", len(movements))
	return nil
}

func findDemoProduct(demo []demoProduct, code string) demoProduct {
	for _, p := range demo {
		if p.code == code {
			return p
		}
	}
	return demoProduct{}
}
