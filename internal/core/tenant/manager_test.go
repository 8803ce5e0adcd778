package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpro/pkg/logger"
)

type stubRegistry struct {
	companies map[string]*Company
}

func (r *stubRegistry) GetByID(ctx context.Context, companyID string) (*Company, error) {
	c, ok := r.companies[companyID]
	if !ok {
		return nil, ErrCompanyNotFound
	}
	return c, nil
}

func (r *stubRegistry) GetBySlug(ctx context.Context, slug string) (*Company, error) {
	for _, c := range r.companies {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, ErrCompanyNotFound
}

func (r *stubRegistry) ListActive(ctx context.Context) ([]*Company, error) {
	var out []*Company
	for _, c := range r.companies {
		if c.IsActive() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubRegistry) ListAll(ctx context.Context) ([]*Company, error) {
	var out []*Company
	for _, c := range r.companies {
		out = append(out, c)
	}
	return out, nil
}

func (r *stubRegistry) Create(ctx context.Context, c *Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *stubRegistry) UpdateStatusByID(ctx context.Context, companyID string, status Status) error {
	if c, ok := r.companies[companyID]; ok {
		c.Status = status
	}
	return nil
}

func (r *stubRegistry) UpdatePlanByID(ctx context.Context, companyID string, plan Plan) error {
	if c, ok := r.companies[companyID]; ok {
		c.Plan = plan
	}
	return nil
}

// Loop-free config so tests spawn no background goroutines.
func quietConfig() ManagerConfig {
	cfg := DefaultManagerConfig()
	cfg.PoolIdleTimeout = 0
	cfg.HealthCheckPeriod = 0
	return cfg
}

func TestDefaultManagerConfig(t *testing.T) {
	cfg := DefaultManagerConfig()

	assert.Equal(t, int32(10), cfg.MaxConnsPerCompany)
	assert.Equal(t, int32(2), cfg.MinConnsPerCompany)
	assert.Equal(t, 100, cfg.MaxTotalPools)
	assert.Equal(t, 30*time.Minute, cfg.PoolIdleTimeout)
}

func TestManagerConfig_StartupOverrides(t *testing.T) {
	// Mirrors the server startup path: defaults first, then each
	// positive environment value replaces its field.
	cfg := DefaultManagerConfig()
	cfg.DBUser = "stockpro"
	cfg.DBPassword = "secret"
	cfg.MaxConnsPerCompany = int32(25)
	cfg.MaxTotalPools = 40
	cfg.PoolIdleTimeout = 10 * time.Minute

	assert.Equal(t, int32(25), cfg.MaxConnsPerCompany)
	assert.Equal(t, 40, cfg.MaxTotalPools)
	assert.Equal(t, 10*time.Minute, cfg.PoolIdleTimeout)
}

func TestGetPool_UnknownCompany(t *testing.T) {
	registry := &stubRegistry{companies: map[string]*Company{}}
	m := NewManager(quietConfig(), registry, logger.Default())
	defer m.Close()

	_, err := m.GetPool(context.Background(), "missing")
	require.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestGetPool_SuspendedCompany(t *testing.T) {
	registry := &stubRegistry{companies: map[string]*Company{
		"c1": {ID: "c1", Slug: "acme", DBName: "stockpro_acme", Status: StatusSuspended},
	}}
	m := NewManager(quietConfig(), registry, logger.Default())
	defer m.Close()

	_, err := m.GetPool(context.Background(), "c1")
	require.ErrorIs(t, err, ErrCompanyNotActive)
}

func TestStats_Empty(t *testing.T) {
	registry := &stubRegistry{companies: map[string]*Company{}}
	m := NewManager(quietConfig(), registry, logger.Default())
	defer m.Close()

	stats := m.Stats()
	assert.Equal(t, 0, stats.TotalPools)
	assert.Empty(t, stats.Companies)
}
