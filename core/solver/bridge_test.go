package solver

import (
	"context"
	"testing"

	"github.com/gridsmith/powerplan/core/model"
)

func solveBridge(t *testing.T, in Inputs) *model.HeuristicResult {
	t.Helper()
	s, err := New(model.ProblemBridgePower, in)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := s.Optimize(context.Background())
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	return res
}

func TestBridgeMonthZero(t *testing.T) {
	in := newTestInputs(t, oneYear(100), generousLimits())
	in.Bridge = BridgeOptions{GridAvailableMonth: 0}
	res := solveBridge(t, in)

	scenarios := res.Details["scenarios"].(map[string]float64)
	if scenarios["all_rental"] != 0 {
		t.Errorf("rental npv = %v, want 0 with no bridge months", scenarios["all_rental"])
	}
	if got := res.Details["recommended"]; got != "all_rental" {
		t.Errorf("recommended = %v, want all_rental", got)
	}
	if float64(res.ObjectiveValue) != 0 {
		t.Errorf("objective = %v, want 0", float64(res.ObjectiveValue))
	}
	if res.TimelineMonths != 0 {
		t.Errorf("timeline = %d, want 0", res.TimelineMonths)
	}
	if !res.Feasible {
		t.Error("bridge results are always feasible")
	}
	if len(res.Warnings) != 1 || res.Warnings[0] != "Transition timing is indicative only" {
		t.Errorf("warnings = %v", res.Warnings)
	}
}

func TestBridgeShortHorizonRents(t *testing.T) {
	in := newTestInputs(t, oneYear(100), generousLimits())
	in.Bridge = BridgeOptions{GridAvailableMonth: 12}
	res := solveBridge(t, in)

	if got := res.Details["recommended"]; got != "all_rental" {
		t.Fatalf("recommended = %v, want all_rental over 12 months", got)
	}
	if res.CapexTotal != 0 {
		t.Errorf("capex = %v; rental carries no purchase capex", res.CapexTotal)
	}
	if res.OpexAnnual != 0 {
		t.Errorf("opex = %v; rental carries no owned-fleet opex", res.OpexAnnual)
	}
	scenarios := res.Details["scenarios"].(map[string]float64)
	if !(scenarios["all_rental"] < scenarios["all_purchase"]) {
		t.Errorf("rental %v not below purchase %v", scenarios["all_rental"], scenarios["all_purchase"])
	}
	if scenarios["hybrid"] != scenarios["all_rental"] {
		t.Errorf("hybrid %v must track the cheaper leg %v", scenarios["hybrid"], scenarios["all_rental"])
	}
	if res.Equipment.TotalCapacityMW() <= 0 {
		t.Error("the purchase candidate fleet is still reported")
	}
}

func TestBridgeLongHorizonBuys(t *testing.T) {
	in := newTestInputs(t, oneYear(100), generousLimits())
	in.Bridge = BridgeOptions{GridAvailableMonth: 240, RentalRatePerKWMonth: 100}
	res := solveBridge(t, in)

	if got := res.Details["recommended"]; got != "all_purchase" {
		t.Fatalf("recommended = %v, want all_purchase over 20 years", got)
	}
	if res.CapexTotal <= 0 {
		t.Error("purchase recommendation must carry its capex")
	}
	if res.OpexAnnual <= 0 {
		t.Error("purchase recommendation must carry its opex")
	}
	crossover := res.Details["crossover_months"].(float64)
	if crossover <= 0 || crossover >= 240 {
		t.Errorf("crossover = %v, want inside the horizon", crossover)
	}
}

func TestBridgeCrossoverSentinel(t *testing.T) {
	// A rental rate this low never costs more per month than owning, so
	// break-even never happens.
	in := newTestInputs(t, oneYear(100), generousLimits())
	in.Bridge = BridgeOptions{GridAvailableMonth: 12, RentalRatePerKWMonth: 0.001}
	res := solveBridge(t, in)

	if got := res.Details["crossover_months"].(float64); got != 999 {
		t.Errorf("crossover = %v, want sentinel 999", got)
	}
	if got := res.Details["recommended"]; got != "all_rental" {
		t.Errorf("recommended = %v, want all_rental", got)
	}
}

func TestBridgeDefaults(t *testing.T) {
	if got := DefaultBridgeOptions(); got.GridAvailableMonth != 60 ||
		got.RentalRatePerKWMonth != 50 || got.ResidualValuePct != 0.10 {
		t.Errorf("defaults = %+v", got)
	}
}
