package solver

import (
	"errors"
	"testing"

	"github.com/gridsmith/powerplan/core/constraints"
	"github.com/gridsmith/powerplan/core/economics"
	"github.com/gridsmith/powerplan/core/landuse"
	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/sizing"
	"github.com/gridsmith/powerplan/core/stack"
)

func testCatalog() model.EquipmentCatalog {
	return model.EquipmentCatalog{Specs: map[string]model.EquipmentSpec{
		model.TechRecip: {
			Technology: model.TechRecip, UnitCapacityMW: 18.3,
			HeatRateBTUPerKWh: 7700, NOxLbPerMWh: 0.5, RampRateMWPerMin: 3.0,
			LeadTimeMonthsMin: 12, LeadTimeMonthsMax: 18,
			CapexPerKW: 1650, VOMPerMWh: 8.50, FOMPerKWYear: 18.50,
			AvailabilityPct: 0.975, LandAcresPerMW: 0.5,
		},
		model.TechTurbine: {
			Technology: model.TechTurbine, UnitCapacityMW: 50,
			HeatRateBTUPerKWh: 8500, NOxLbPerMWh: 0.25, RampRateMWPerMin: 8.0,
			LeadTimeMonthsMin: 18, LeadTimeMonthsMax: 24,
			CapexPerKW: 1300, VOMPerMWh: 6.50, FOMPerKWYear: 12.50,
			AvailabilityPct: 0.95, LandAcresPerMW: 0.3,
		},
		model.TechBESS: {
			Technology: model.TechBESS, UnitCapacityMW: 50,
			DurationHours: 4, RoundTripEff: 0.90, CapexPerKWh: 236,
			RampRateMWPerMin: 50, LeadTimeMonthsMax: 12,
			AvailabilityPct: 0.995, LandAcresPerMW: 0.25,
		},
		model.TechSolar: {
			Technology: model.TechSolar, CapexPerKW: 950, CapacityFactor: 0.25,
			LeadTimeMonthsMax: 12, AvailabilityPct: 0.995, LandAcresPerMW: 5,
		},
		model.TechGrid: {
			Technology: model.TechGrid, CapexPerKW: 500, EnergyPricePerMWh: 80,
			LeadTimeMonthsMax: 60, AvailabilityPct: 0.9997,
		},
	}}
}

// newTestInputs wires real services over the test catalog with flat fuel
// prices so results stay deterministic.
func newTestInputs(t *testing.T, traj model.LoadTrajectory, limits constraints.Limits) Inputs {
	t.Helper()
	catalog := testCatalog()
	asmp := economics.DefaultAssumptions()
	asmp.FuelEscalationPct = 0
	calc := economics.NewCalculator(catalog, asmp)
	szr := sizing.New(catalog, limits, sizing.DefaultPolicy())
	return Inputs{
		Catalog: catalog,
		Limits:  limits,
		Load:    traj,
		Sizer:   szr,
		Calc:    calc,
		Checker: constraints.NewChecker(catalog, limits, 2),
		Stack:   stack.NewBuilder(catalog, szr, calc, limits.RequireN1, nil),
		Land:    landuse.New(catalog, landuse.DefaultParams()),
	}
}

func oneYear(peakMW float64) model.LoadTrajectory {
	return model.LoadTrajectory{Years: map[int]float64{2026: peakMW}}
}

func TestNewUnknownProblem(t *testing.T) {
	in := newTestInputs(t, oneYear(50), constraints.Limits{})
	for _, p := range []model.ProblemType{0, 6, 99} {
		if _, err := New(p, in); !errors.Is(err, ErrUnknownProblem) {
			t.Errorf("problem %d: got %v, want ErrUnknownProblem", p, err)
		}
	}
}

func TestNewResolvesEveryProblem(t *testing.T) {
	in := newTestInputs(t, oneYear(50), constraints.Limits{})
	for _, p := range Problems() {
		s, err := New(p, in)
		if err != nil {
			t.Fatalf("New(%d): %v", p, err)
		}
		if s.Name() != p.String() {
			t.Errorf("problem %d: name %q, want %q", p, s.Name(), p.String())
		}
	}
}

func TestProblemsOrdered(t *testing.T) {
	got := Problems()
	want := []model.ProblemType{
		model.ProblemGreenfield, model.ProblemBrownfield, model.ProblemLandDev,
		model.ProblemGridServices, model.ProblemBridgePower,
	}
	if len(got) != len(want) {
		t.Fatalf("got %d problems, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewRequiresServices(t *testing.T) {
	in := newTestInputs(t, oneYear(50), constraints.Limits{})
	in.Sizer = nil
	if _, err := New(model.ProblemGreenfield, in); err == nil {
		t.Fatal("expected error for missing sizer")
	}
}

func TestNormalizeAppliesDefaults(t *testing.T) {
	in := newTestInputs(t, oneYear(50), constraints.Limits{})
	in.normalize()

	if in.Brownfield.LCOEThreshold != 120 {
		t.Errorf("lcoe threshold default: got %v, want 120", in.Brownfield.LCOEThreshold)
	}
	if in.Brownfield.ExistingLCOE != 80 {
		t.Errorf("existing lcoe default: got %v, want 80", in.Brownfield.ExistingLCOE)
	}
	if in.LandDev.AlignmentFactor != 0.7 {
		t.Errorf("alignment factor default: got %v, want 0.7", in.LandDev.AlignmentFactor)
	}
	if in.GridServices.EligibilityDerate != 0.8 {
		t.Errorf("eligibility derate default: got %v, want 0.8", in.GridServices.EligibilityDerate)
	}
	if len(in.GridServices.Products) != 4 {
		t.Errorf("default product book: got %d products, want 4", len(in.GridServices.Products))
	}
	if in.Bridge.RentalRatePerKWMonth != 50 {
		t.Errorf("rental rate default: got %v, want 50", in.Bridge.RentalRatePerKWMonth)
	}
	if in.Bridge.ResidualValuePct != 0.10 {
		t.Errorf("residual default: got %v, want 0.10", in.Bridge.ResidualValuePct)
	}
	if in.Workloads == nil || in.Log == nil {
		t.Error("workloads and logger must be defaulted")
	}
}
