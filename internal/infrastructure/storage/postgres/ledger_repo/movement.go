// Package ledger_repo provides the PostgreSQL implementation of the
// movement ledger. In Database-per-Tenant architecture, TxManager is
// obtained from context.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/id"
	"stockpro/internal/domain/ledger"
	"stockpro/internal/infrastructure/storage/postgres"
)

const movementsTable = "stock_movements"

var movementColumns = []string{
	"id", "code", "product_id", "product_code", "product_name",
	"direction", "quantity", "unit_price", "total_price",
	"cost_price_at_sale", "occurred_at", "note", "created_by", "created_at",
}

// MovementRepo implements ledger.Repository.
type MovementRepo struct {
	builder squirrel.StatementBuilderType
}

var _ ledger.Repository = (*MovementRepo)(nil)

// NewMovementRepo creates a new movement repository.
func NewMovementRepo() *MovementRepo {
	return &MovementRepo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *MovementRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

func (r *MovementRepo) Insert(ctx context.Context, m *ledger.Movement) error {
	q := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(
			m.ID, m.Code, m.ProductID, m.ProductCode, m.ProductName,
			m.Direction, m.Quantity, m.UnitPrice, m.TotalPrice,
			m.CostPriceAtSale, m.OccurredAt, m.Note, m.CreatedBy, m.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	txm := r.getTxManager(ctx)
	if _, err := txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate("movement", "code", m.Code)
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, movementID id.ID) (*ledger.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"id": movementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	txm := r.getTxManager(ctx)
	var m ledger.Movement
	if err := pgxscan.Get(ctx, txm.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("movement", movementID.String())
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return &m, nil
}

func (r *MovementRepo) Delete(ctx context.Context, movementID id.ID) error {
	q := r.builder.Delete(movementsTable).
		Where(squirrel.Eq{"id": movementID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	txm := r.getTxManager(ctx)
	tag, err := txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("movement", movementID.String())
	}
	return nil
}

func (r *MovementRepo) List(ctx context.Context, filter ledger.Filter) ([]ledger.Movement, int, error) {
	base := r.builder.Select(movementColumns...).From(movementsTable)
	countQ := r.builder.Select("count(*)").From(movementsTable)

	if filter.ProductID != nil {
		base = base.Where(squirrel.Eq{"product_id": *filter.ProductID})
		countQ = countQ.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Direction != nil {
		base = base.Where(squirrel.Eq{"direction": *filter.Direction})
		countQ = countQ.Where(squirrel.Eq{"direction": *filter.Direction})
	}
	if filter.Start != nil {
		base = base.Where(squirrel.GtOrEq{"occurred_at": *filter.Start})
		countQ = countQ.Where(squirrel.GtOrEq{"occurred_at": *filter.Start})
	}
	if filter.End != nil {
		base = base.Where(squirrel.LtOrEq{"occurred_at": *filter.End})
		countQ = countQ.Where(squirrel.LtOrEq{"occurred_at": *filter.End})
	}

	base = base.OrderBy("occurred_at DESC", "created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset))

	txm := r.getTxManager(ctx)
	querier := txm.GetQuerier(ctx)

	sql, args, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	var movements []ledger.Movement
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	return movements, total, nil
}

func (r *MovementRepo) ListBetween(ctx context.Context, start, end time.Time) ([]ledger.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.GtOrEq{"occurred_at": start}).
		Where(squirrel.LtOrEq{"occurred_at": end}).
		OrderBy("occurred_at ASC", "created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list between: %w", err)
	}

	txm := r.getTxManager(ctx)
	var movements []ledger.Movement
	if err := pgxscan.Select(ctx, txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements between: %w", err)
	}
	return movements, nil
}
