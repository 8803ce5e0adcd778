// Package entitlement evaluates subscription-plan rules.
// Rules are CEL expressions over the company plan and an operation-specific
// count, so plan gating can be reconfigured without code changes.
package entitlement

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"stockpro/internal/core/tenant"
)

// Well-known entitlement names.
const (
	ExportCSV     = "export.csv"
	ExportPDF     = "export.pdf"
	ProductCreate = "products.create"
	UserCreate    = "users.create"
)

// DefaultRules returns the built-in plan rules.
// `plan` is the company plan name, `count` is the current number of
// entities relevant to the operation (0 when not applicable).
func DefaultRules() map[string]string {
	return map[string]string{
		ExportCSV:     `plan in ["starter", "pro", "business"]`,
		ExportPDF:     `plan in ["pro", "business"]`,
		ProductCreate: `plan != "starter" || count < 200`,
		UserCreate:    `plan == "business" || count < 5`,
	}
}

// Engine holds compiled plan rules.
type Engine struct {
	programs map[string]cel.Program
}

// New compiles the given rule set. Every expression must evaluate to bool.
func New(rules map[string]string) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("plan", cel.StringType),
		cel.Variable("count", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	programs := make(map[string]cel.Program, len(rules))
	for name, expr := range rules {
		ast, iss := env.Compile(expr)
		if iss != nil && iss.Err() != nil {
			return nil, fmt.Errorf("compile rule %q: %w", name, iss.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("rule %q must evaluate to bool, got %s", name, ast.OutputType())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("program rule %q: %w", name, err)
		}
		programs[name] = prg
	}

	return &Engine{programs: programs}, nil
}

// MustDefault compiles the default rule set, panicking on error.
// The default rules are constants; a compile failure is a programming error.
func MustDefault() *Engine {
	e, err := New(DefaultRules())
	if err != nil {
		panic(err)
	}
	return e
}

// Allow evaluates the named rule for the given plan and count.
// Unknown rules are allowed: gating is opt-in per operation.
func (e *Engine) Allow(name string, plan tenant.Plan, count int64) (bool, error) {
	prg, ok := e.programs[name]
	if !ok {
		return true, nil
	}

	out, _, err := prg.Eval(map[string]any{
		"plan":  string(plan),
		"count": count,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate rule %q: %w", name, err)
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("rule %q produced non-bool result", name)
	}
	return allowed, nil
}
