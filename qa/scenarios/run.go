package scenarios

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gridsmith/powerplan/app"
	"github.com/gridsmith/powerplan/config"
)

// RunScenario solves the scenario through the full service wiring and checks
// the expectations recorded in the file.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	cfg := &config.Config{}
	cfg.RunLog.Path = filepath.Join(t.TempDir(), "runs.jsonl")
	cfg.SetDefaults()

	svc, err := app.New(cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()

	res, err := svc.Solve(context.Background(), sc.ToConfig())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	exp := sc.Expected
	if res.Feasible != exp.Feasible {
		t.Errorf("feasible = %t, want %t (violations: %v)", res.Feasible, exp.Feasible, res.Violations)
	}
	if exp.Objective != nil {
		want := *exp.Objective
		tol := 1e-6 * math.Max(1, math.Abs(want))
		if got := float64(res.ObjectiveValue); math.Abs(got-want) > tol {
			t.Errorf("objective = %v, want %v", got, want)
		}
	}
	if exp.ObjectiveAtLeast != nil {
		if got := float64(res.ObjectiveValue); got < *exp.ObjectiveAtLeast {
			t.Errorf("objective = %v, want >= %v", got, *exp.ObjectiveAtLeast)
		}
	}
	if exp.MaxLCOE != nil {
		if got := float64(res.LCOE); got > *exp.MaxLCOE {
			t.Errorf("lcoe = %v, want <= %v", got, *exp.MaxLCOE)
		}
	}
	if exp.Binding != "" && res.BindingConstraint != exp.Binding {
		t.Errorf("binding = %q, want %q", res.BindingConstraint, exp.Binding)
	}
	if exp.ViolationContains != "" {
		found := false
		for _, v := range res.Violations {
			if strings.Contains(v, exp.ViolationContains) {
				found = true
			}
		}
		if !found {
			t.Errorf("violations %v missing %q", res.Violations, exp.ViolationContains)
		}
	}
	if exp.Recommended != "" {
		if got := res.Details["recommended"]; got != exp.Recommended {
			t.Errorf("recommended = %v, want %q", got, exp.Recommended)
		}
	}
}
