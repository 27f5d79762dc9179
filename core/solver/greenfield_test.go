package solver

import (
	"context"
	"math"
	"testing"

	"github.com/gridsmith/powerplan/core/constraints"
	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/stack"
)

func generousLimits() constraints.Limits {
	return constraints.Limits{
		NOxTonsPerYear: 1000,
		GasMCFPerDay:   200000,
		LandAcres:      5000,
	}
}

func solveGreenfield(t *testing.T, in Inputs) *model.HeuristicResult {
	t.Helper()
	s, err := New(model.ProblemGreenfield, in)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := s.Optimize(context.Background())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	return res
}

func TestGreenfieldSingleYear(t *testing.T) {
	res := solveGreenfield(t, newTestInputs(t, oneYear(60), generousLimits()))

	if !res.Feasible {
		t.Fatalf("expected feasible, violations: %v", res.Violations)
	}
	lcoe := float64(res.LCOE)
	if math.IsInf(lcoe, 1) || lcoe <= 0 {
		t.Fatalf("lcoe = %v, want finite positive", lcoe)
	}
	if obj := float64(res.ObjectiveValue); obj < lcoe {
		t.Errorf("objective %v below lcoe %v; penalty must not be negative", obj, lcoe)
	}
	if res.CapexTotal <= 0 {
		t.Errorf("capex = %v, want > 0", res.CapexTotal)
	}
	if res.EnergyDeliveredMWh <= 0 {
		t.Errorf("delivered = %v, want > 0", res.EnergyDeliveredMWh)
	}
	if res.Dispatch.EnergyRequiredMWh <= 0 {
		t.Errorf("required = %v, want > 0", res.Dispatch.EnergyRequiredMWh)
	}
	if res.BindingConstraint == "" {
		t.Error("binding constraint not reported")
	}
	for _, key := range []string{"annual_stack", "land_allocation", "ramp_analysis", "load_coverage_pct"} {
		if _, ok := res.Details[key]; !ok {
			t.Errorf("details missing %q", key)
		}
	}
}

func TestGreenfieldTimelineMatchesChecker(t *testing.T) {
	in := newTestInputs(t, oneYear(60), generousLimits())
	res := solveGreenfield(t, in)
	if want := in.Checker.TimelineMonths(res.Equipment); res.TimelineMonths != want {
		t.Errorf("timeline = %d, want %d", res.TimelineMonths, want)
	}
	if res.TimelineMonths <= 0 {
		t.Error("deployed fleet must have a nonzero timeline")
	}
}

func TestGreenfieldObjectivePenalizesUnserved(t *testing.T) {
	// NOx and gas caps this tight leave no room for thermal units, so most
	// of the load goes unserved and the VOLL penalty dominates.
	starved := constraints.Limits{NOxTonsPerYear: 5, GasMCFPerDay: 5000, LandAcres: 5000}
	res := solveGreenfield(t, newTestInputs(t, oneYear(60), starved))

	if res.UnservedEnergyMWh <= 0 {
		t.Fatal("expected unserved energy under starved limits")
	}
	lcoe := float64(res.LCOE)
	obj := float64(res.ObjectiveValue)
	if obj <= lcoe*1.5 {
		t.Errorf("objective %v does not reflect unserved penalty over lcoe %v", obj, lcoe)
	}
}

func TestGreenfieldMultiYearStack(t *testing.T) {
	traj := model.LoadTrajectory{Years: map[int]float64{2026: 40, 2027: 60}}
	res := solveGreenfield(t, newTestInputs(t, traj, generousLimits()))

	years, ok := res.Details["annual_stack"].([]stack.YearResult)
	if !ok {
		t.Fatalf("annual_stack has type %T", res.Details["annual_stack"])
	}
	if len(years) != 2 {
		t.Fatalf("stack has %d years, want 2", len(years))
	}
	if years[1].Config.TotalCapacityMW() < years[0].Config.TotalCapacityMW() {
		t.Error("fleet shrank between years")
	}
	if res.Equipment.FirmCapacityMW() < 60 {
		t.Errorf("final firm capacity %v below final peak", res.Equipment.FirmCapacityMW())
	}
}

func TestGreenfieldZeroLoad(t *testing.T) {
	res := solveGreenfield(t, newTestInputs(t, oneYear(0), generousLimits()))
	if !math.IsInf(float64(res.LCOE), 1) {
		t.Errorf("lcoe = %v, want +Inf for zero load", float64(res.LCOE))
	}
	if res.CapexTotal != 0 {
		t.Errorf("capex = %v, want 0 for empty fleet", res.CapexTotal)
	}
	if !res.Feasible {
		t.Error("an empty site violates nothing")
	}
}

func TestGreenfieldHonorsContext(t *testing.T) {
	in := newTestInputs(t, oneYear(60), generousLimits())
	s, err := New(model.ProblemGreenfield, in)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Optimize(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
