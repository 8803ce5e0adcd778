// Package catalog_repo provides PostgreSQL implementations for catalog
// repositories. In Database-per-Tenant architecture, TxManager is
// obtained from context.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/domain/catalog/product"
	"stockpro/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

var productColumns = []string{
	"id", "code", "name", "category", "barcode", "description",
	"cost_price", "sale_price", "quantity_on_hand", "reorder_threshold",
	"active", "has_expiry", "expiry_date", "alert_window_days",
	"created_at", "updated_at", "deleted_at", "version",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	builder squirrel.StatementBuilderType
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a new product repository.
func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ProductRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.Code, p.Name, p.Category, p.Barcode, p.Description,
			p.CostPrice, p.SalePrice, p.QuantityOnHand, p.ReorderThreshold,
			p.Active, p.HasExpiry, p.ExpiryDate, p.AlertWindowDays,
			p.CreatedAt, p.UpdatedAt, p.DeletedAt, p.Version,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	txm := r.getTxManager(ctx)
	if _, err := txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("product", "code", p.Code)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"id": productID}, productID.String())
}

func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code}, code)
}

func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	return r.getOne(ctx, squirrel.Eq{"barcode": barcode}, barcode)
}

func (r *ProductRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(where).
		Where(squirrel.Eq{"deleted_at": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	txm := r.getTxManager(ctx)
	var p product.Product
	if err := pgxscan.Get(ctx, txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", key)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// GetForUpdate locks the product row for the rest of the transaction.
// Must be called inside a transaction; the lock is what makes the
// movement insert and the balance update atomic.
func (r *ProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	txm := r.getTxManager(ctx)
	if txm.GetTx(ctx) == nil {
		return nil, errors.New("GetForUpdate requires a transaction")
	}

	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID, "deleted_at": nil}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select for update: %w", err)
	}

	var p product.Product
	if err := pgxscan.Get(ctx, txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get product for update: %w", err)
	}
	return &p, nil
}

// AdjustQuantity applies a signed delta to on-hand quantity.
func (r *ProductRepo) AdjustQuantity(ctx context.Context, productID id.ID, delta int64) error {
	q := r.builder.Update(productsTable).
		Set("quantity_on_hand", squirrel.Expr("quantity_on_hand + ?", delta)).
		Set("updated_at", time.Now()).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": productID, "deleted_at": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	txm := r.getTxManager(ctx)
	tag, err := txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("adjust quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder.Update(productsTable).
		Set("name", p.Name).
		Set("category", p.Category).
		Set("barcode", p.Barcode).
		Set("description", p.Description).
		Set("cost_price", p.CostPrice).
		Set("sale_price", p.SalePrice).
		Set("reorder_threshold", p.ReorderThreshold).
		Set("active", p.Active).
		Set("has_expiry", p.HasExpiry).
		Set("expiry_date", p.ExpiryDate).
		Set("alert_window_days", p.AlertWindowDays).
		Set("updated_at", p.UpdatedAt).
		Set("version", p.Version+1).
		Where(squirrel.Eq{"id": p.ID, "version": p.Version, "deleted_at": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	txm := r.getTxManager(ctx)
	tag, err := txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("product", "barcode", derefString(p.Barcode))
		}
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("product was modified concurrently").
			WithDetail("id", p.ID.String())
	}
	p.Version++
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	q := r.builder.Update(productsTable).
		Set("deleted_at", time.Now()).
		Set("active", false).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": productID, "deleted_at": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	txm := r.getTxManager(ctx)
	tag, err := txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}

func (r *ProductRepo) List(ctx context.Context, filter product.Filter) ([]product.Product, int, error) {
	base := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"deleted_at": nil})
	countQ := r.builder.Select("count(*)").
		From(productsTable).
		Where(squirrel.Eq{"deleted_at": nil})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		cond := squirrel.Or{
			squirrel.ILike{"name": like},
			squirrel.ILike{"code": like},
			squirrel.Eq{"barcode": filter.Search},
		}
		base = base.Where(cond)
		countQ = countQ.Where(cond)
	}
	if filter.Category != "" {
		base = base.Where(squirrel.Eq{"category": filter.Category})
		countQ = countQ.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Active != nil {
		base = base.Where(squirrel.Eq{"active": *filter.Active})
		countQ = countQ.Where(squirrel.Eq{"active": *filter.Active})
	}
	if filter.LowStock {
		cond := squirrel.And{
			squirrel.Expr("reorder_threshold > 0"),
			squirrel.Expr("quantity_on_hand <= reorder_threshold"),
		}
		base = base.Where(cond)
		countQ = countQ.Where(cond)
	}

	base = base.OrderBy("name ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	txm := r.getTxManager(ctx)
	querier := txm.GetQuerier(ctx)

	sql, args, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	var products []product.Product
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	return products, total, nil
}

// ListAll retrieves the full catalog including soft-deleted rows, for
// reporting joins.
func (r *ProductRepo) ListAll(ctx context.Context) ([]product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		OrderBy("code ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list all: %w", err)
	}

	txm := r.getTxManager(ctx)
	var products []product.Product
	if err := pgxscan.Select(ctx, txm.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	return products, nil
}

func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
	q := r.builder.Select("count(*)").
		From(productsTable).
		Where(squirrel.Eq{"deleted_at": nil})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	txm := r.getTxManager(ctx)
	var count int64
	if err := txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r *ProductRepo) ListLowStock(ctx context.Context) ([]product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"deleted_at": nil, "active": true}).
		Where(squirrel.Expr("reorder_threshold > 0")).
		Where(squirrel.Expr("quantity_on_hand <= reorder_threshold")).
		OrderBy("quantity_on_hand ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build low stock: %w", err)
	}

	txm := r.getTxManager(ctx)
	var products []product.Product
	if err := pgxscan.Select(ctx, txm.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	return products, nil
}

func (r *ProductRepo) ListExpiring(ctx context.Context, before time.Time) ([]product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"deleted_at": nil, "active": true, "has_expiry": true}).
		Where(squirrel.LtOrEq{"expiry_date": before}).
		OrderBy("expiry_date ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build expiring: %w", err)
	}

	txm := r.getTxManager(ctx)
	var products []product.Product
	if err := pgxscan.Select(ctx, txm.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list expiring: %w", err)
	}
	return products, nil
}

func (r *ProductRepo) ExistsBarcode(ctx context.Context, barcode string, excludeID id.ID) (bool, error) {
	q := r.builder.Select("1").
		From(productsTable).
		Where(squirrel.Eq{"barcode": barcode, "deleted_at": nil}).
		Where(squirrel.NotEq{"id": excludeID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	txm := r.getTxManager(ctx)
	var one int
	err = txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check barcode exists: %w", err)
	}
	return true, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
