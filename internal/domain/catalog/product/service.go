package product

import (
	"context"
	"fmt"
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/entitlement"
	"stockpro/internal/core/id"
	"stockpro/internal/core/numerator"
	"stockpro/internal/core/tenant"
	"stockpro/internal/core/tx"
	"stockpro/pkg/logger"
)

// Service provides business logic for the product catalog.
type Service struct {
	repo         Repository
	numerator    numerator.Generator
	entitlements *entitlement.Engine
	txManager    tx.Manager
}

// NewService creates a new product service.
// In Database-per-Tenant mode pass a nil txManager; it is obtained from
// context per request.
func NewService(
	repo Repository,
	gen numerator.Generator,
	entitlements *entitlement.Engine,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:         repo,
		numerator:    gen,
		entitlements: entitlements,
		txManager:    txManager,
	}
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Create creates a new product. A display code is generated when the
// caller does not supply one.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Product, error) {
	if s.entitlements != nil {
		count, err := s.repo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count products: %w", err)
		}
		allowed, err := s.entitlements.Allow(entitlement.ProductCreate, tenant.GetPlan(ctx), count)
		if err != nil {
			return nil, fmt.Errorf("evaluate entitlement: %w", err)
		}
		if !allowed {
			return nil, apperror.NewPlanLimit("product limit reached for current plan")
		}
	}

	p := NewProduct(input.Code, input.Name, input.Category)
	p.Barcode = input.Barcode
	p.Description = input.Description
	p.CostPrice = input.CostPrice
	p.SalePrice = input.SalePrice
	p.ReorderThreshold = input.ReorderThreshold
	p.HasExpiry = input.HasExpiry
	p.ExpiryDate = input.ExpiryDate
	p.AlertWindowDays = input.AlertWindowDays

	if p.Code == "" {
		code, err := s.numerator.NextCode(ctx, numerator.DefaultConfig("PRD"))
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	if p.Barcode != nil && *p.Barcode != "" {
		exists, err := s.repo.ExistsBarcode(ctx, *p.Barcode, p.ID)
		if err != nil {
			return nil, fmt.Errorf("check barcode: %w", err)
		}
		if exists {
			return nil, apperror.NewConflict("product with this barcode already exists").
				WithDetail("barcode", *p.Barcode)
		}
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	logger.Info(ctx, "product created",
		"product_id", p.ID,
		"code", p.Code)

	return p, nil
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// GetByBarcode retrieves a product by barcode, active or not. POS-facing
// callers must check Active themselves.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	if barcode == "" {
		return nil, apperror.NewValidation("barcode is required").WithDetail("field", "barcode")
	}
	return s.repo.GetByBarcode(ctx, barcode)
}

// Update applies partial changes to a product.
func (s *Service) Update(ctx context.Context, productID id.ID, input UpdateInput) (*Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Category != nil {
		p.Category = *input.Category
	}
	if input.Barcode != nil {
		p.Barcode = input.Barcode
	}
	if input.Description != nil {
		p.Description = input.Description
	}
	if input.CostPrice != nil {
		p.CostPrice = *input.CostPrice
	}
	if input.SalePrice != nil {
		p.SalePrice = *input.SalePrice
	}
	if input.ReorderThreshold != nil {
		p.ReorderThreshold = *input.ReorderThreshold
	}
	if input.Active != nil {
		p.Active = *input.Active
	}
	if input.HasExpiry != nil {
		p.HasExpiry = *input.HasExpiry
	}
	if input.ExpiryDate != nil {
		p.ExpiryDate = input.ExpiryDate
	}
	if input.AlertWindowDays != nil {
		p.AlertWindowDays = *input.AlertWindowDays
	}
	p.UpdatedAt = time.Now()

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	if input.Barcode != nil && *input.Barcode != "" {
		exists, err := s.repo.ExistsBarcode(ctx, *input.Barcode, p.ID)
		if err != nil {
			return nil, fmt.Errorf("check barcode: %w", err)
		}
		if exists {
			return nil, apperror.NewConflict("product with this barcode already exists").
				WithDetail("barcode", *input.Barcode)
		}
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return p, nil
}

// Delete soft-deletes a product. Movement history stays intact because
// movements denormalize the product code and name.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, productID)
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	logger.Info(ctx, "product deleted", "product_id", productID)
	return nil
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter Filter) ([]Product, int, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// ListLowStock retrieves products needing reorder.
func (s *Service) ListLowStock(ctx context.Context) ([]Product, error) {
	return s.repo.ListLowStock(ctx)
}

// ListExpiring retrieves perishable products expiring within days from now.
func (s *Service) ListExpiring(ctx context.Context, days int) ([]Product, error) {
	if days <= 0 {
		days = 7
	}
	return s.repo.ListExpiring(ctx, time.Now().AddDate(0, 0, days))
}
