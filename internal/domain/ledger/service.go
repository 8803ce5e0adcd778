package ledger

import (
	"context"
	"fmt"
	"time"

	"stockpro/internal/core/apperror"
	appctx "stockpro/internal/core/context"
	"stockpro/internal/core/id"
	"stockpro/internal/core/numerator"
	"stockpro/internal/core/tenant"
	"stockpro/internal/core/tx"
	"stockpro/internal/core/types"
	"stockpro/pkg/logger"
)

// ReportInvalidator drops cached report snapshots for a company. The
// ledger calls it after every committed write so cached reports never
// outlive the figures they summarize.
type ReportInvalidator interface {
	Invalidate(ctx context.Context, companyID string) error
}

// Service records and reverses stock movements. Each operation runs in a
// single transaction holding a row lock on the product, so the movement
// row and the balance update commit or roll back together.
type Service struct {
	repo        Repository
	products    ProductStore
	numerator   numerator.Generator
	txManager   tx.Manager
	invalidator ReportInvalidator
}

// NewService creates a new ledger service.
func NewService(
	repo Repository,
	products ProductStore,
	gen numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		numerator: gen,
		txManager: txManager,
	}
}

// SetReportInvalidator enables report cache invalidation on writes.
func (s *Service) SetReportInvalidator(inv ReportInvalidator) {
	s.invalidator = inv
}

func (s *Service) invalidateReports(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	companyID := tenant.GetCompanyID(ctx)
	if companyID == "" {
		return
	}
	if err := s.invalidator.Invalidate(ctx, companyID); err != nil {
		logger.Warn(ctx, "report cache invalidation failed", "error", err)
	}
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Apply records a movement and updates the product balance atomically.
func (s *Service) Apply(ctx context.Context, input CreateInput) (*Movement, error) {
	if id.IsNil(input.ProductID) {
		return nil, apperror.NewValidation("product id is required").
			WithDetail("field", "productId")
	}

	occurredAt := time.Now()
	if input.OccurredAt != nil && !input.OccurredAt.IsZero() {
		occurredAt = *input.OccurredAt
	}

	m := &Movement{
		ID:         id.New(),
		ProductID:  input.ProductID,
		Direction:  input.Direction,
		Quantity:   input.Quantity,
		OccurredAt: occurredAt,
		Note:       input.Note,
		CreatedAt:  time.Now(),
	}
	if user := appctx.GetUser(ctx); user != nil {
		if uid, err := id.Parse(user.UserID); err == nil {
			m.CreatedBy = &uid
		}
	}

	if err := m.Validate(ctx); err != nil {
		return nil, err
	}

	code, err := s.numerator.NextCode(ctx, numerator.DefaultConfig("MOV"))
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	m.Code = code

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if !p.Active {
			return apperror.NewProductInactive(p.Code)
		}

		m.ProductCode = p.Code
		m.ProductName = p.Name

		switch m.Direction {
		case DirectionIn:
			if input.UnitPrice != nil {
				m.UnitPrice = *input.UnitPrice
			} else {
				m.UnitPrice = p.CostPrice
			}
		case DirectionOut:
			if p.QuantityOnHand < m.Quantity {
				return apperror.NewInsufficientStock(p.Code, m.Quantity, p.QuantityOnHand)
			}
			if input.UnitPrice != nil {
				m.UnitPrice = *input.UnitPrice
			} else {
				m.UnitPrice = p.SalePrice
			}
			m.CostPriceAtSale = p.CostPrice
		}
		m.TotalPrice = m.UnitPrice * types.MinorUnits(m.Quantity)

		if err := s.repo.Insert(ctx, m); err != nil {
			return fmt.Errorf("insert movement: %w", err)
		}
		if err := s.products.AdjustQuantity(ctx, p.ID, m.Delta()); err != nil {
			return fmt.Errorf("adjust quantity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx)

	logger.Info(ctx, "movement recorded",
		"movement_id", m.ID,
		"product_code", m.ProductCode,
		"direction", m.Direction,
		"quantity", m.Quantity)

	return m, nil
}

// Reverse deletes a movement and rolls its quantity delta back, in one
// transaction. Stock must not go negative as a result.
func (s *Service) Reverse(ctx context.Context, movementID id.ID) error {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.GetByID(ctx, movementID)
		if err != nil {
			return err
		}

		p, err := s.products.GetForUpdate(ctx, m.ProductID)
		if err != nil {
			return err
		}

		reversal := -m.Delta()
		if p.QuantityOnHand+reversal < 0 {
			return apperror.NewInsufficientStock(p.Code, m.Quantity, p.QuantityOnHand)
		}

		if err := s.repo.Delete(ctx, m.ID); err != nil {
			return fmt.Errorf("delete movement: %w", err)
		}
		if err := s.products.AdjustQuantity(ctx, p.ID, reversal); err != nil {
			return fmt.Errorf("adjust quantity: %w", err)
		}

		logger.Info(ctx, "movement reversed",
			"movement_id", m.ID,
			"product_code", m.ProductCode,
			"direction", m.Direction,
			"quantity", m.Quantity)
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateReports(ctx)
	return nil
}

// GetByID retrieves a movement.
func (s *Service) GetByID(ctx context.Context, movementID id.ID) (*Movement, error) {
	return s.repo.GetByID(ctx, movementID)
}

// List retrieves movements with filtering.
func (s *Service) List(ctx context.Context, filter Filter) ([]Movement, int, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
