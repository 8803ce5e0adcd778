package entitlement

import (
	"testing"

	"stockpro/internal/core/tenant"
)

func TestDefaultRules(t *testing.T) {
	engine := MustDefault()

	tests := []struct {
		name  string
		rule  string
		plan  tenant.Plan
		count int64
		want  bool
	}{
		{"csv allowed on starter", ExportCSV, tenant.PlanStarter, 0, true},
		{"pdf denied on starter", ExportPDF, tenant.PlanStarter, 0, false},
		{"pdf allowed on pro", ExportPDF, tenant.PlanPro, 0, true},
		{"pdf allowed on business", ExportPDF, tenant.PlanBusiness, 0, true},
		{"starter under product cap", ProductCreate, tenant.PlanStarter, 199, true},
		{"starter at product cap", ProductCreate, tenant.PlanStarter, 200, false},
		{"pro ignores product cap", ProductCreate, tenant.PlanPro, 10_000, true},
		{"user cap on pro", UserCreate, tenant.PlanPro, 5, false},
		{"no user cap on business", UserCreate, tenant.PlanBusiness, 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Allow(tt.rule, tt.plan, tt.count)
			if err != nil {
				t.Fatalf("Allow failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Allow(%s, %s, %d) = %v, want %v", tt.rule, tt.plan, tt.count, got, tt.want)
			}
		})
	}
}

func TestUnknownRuleIsAllowed(t *testing.T) {
	engine := MustDefault()

	allowed, err := engine.Allow("reports.schedule", tenant.PlanStarter, 0)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if !allowed {
		t.Error("unknown rule should be allowed")
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := New(map[string]string{"bad": `plan +`}); err == nil {
		t.Error("expected compile error for malformed expression")
	}
	if _, err := New(map[string]string{"notbool": `plan + "x"`}); err == nil {
		t.Error("expected error for non-bool expression")
	}
}
