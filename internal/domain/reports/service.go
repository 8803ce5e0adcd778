package reports

import (
	"context"
	"fmt"
	"time"

	"stockpro/internal/core/apperror"
	"stockpro/internal/core/tenant"
	"stockpro/pkg/logger"
)

// Service generates period reports. Failed storage reads surface as a
// data-unavailable error so clients can offer a retry instead of showing
// a zeroed report that looks like a quiet period.
type Service struct {
	repo  Repository
	cache SnapshotCache
}

// NewService creates a new reports service. cache may be nil.
func NewService(repo Repository, cache SnapshotCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Summary builds the statistics for [start, end]. The report reflects
// the data at read time; movements written concurrently may or may not
// be included.
func (s *Service) Summary(ctx context.Context, start, end time.Time) (*Statistics, error) {
	if start.IsZero() || end.IsZero() {
		// A missing range renders the empty report, not an error.
		empty := Aggregate(nil, nil, start, end)
		return &empty, nil
	}

	cacheKey := s.cacheKey(ctx, start, end)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			logger.Warn(ctx, "report cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, apperror.NewDataUnavailable("products", err)
	}

	movements, err := s.repo.ListMovements(ctx, start, EndOfDay(end))
	if err != nil {
		return nil, apperror.NewDataUnavailable("movements", err)
	}

	filtered := FilterByPeriod(movements, start, end)
	stats := Aggregate(filtered, products, start, end)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, &stats); err != nil {
			logger.Warn(ctx, "report cache write failed", "error", err)
		}
	}

	return &stats, nil
}

func (s *Service) cacheKey(ctx context.Context, start, end time.Time) string {
	return fmt.Sprintf("reports:summary:%s:%s:%s",
		tenant.GetCompanyID(ctx),
		start.Format("2006-01-02"),
		end.Format("2006-01-02"))
}
