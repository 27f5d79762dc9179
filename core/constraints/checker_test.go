package constraints

import (
	"math"
	"strings"
	"testing"

	"github.com/gridsmith/powerplan/core/model"
)

func checkerCatalog() model.EquipmentCatalog {
	return model.EquipmentCatalog{Specs: map[string]model.EquipmentSpec{
		model.TechRecip: {
			Technology: model.TechRecip, UnitCapacityMW: 18.3, HeatRateBTUPerKWh: 7700,
			NOxLbPerMWh: 0.50, RampRateMWPerMin: 3, AvailabilityPct: 0.975,
			LandAcresPerMW: 0.5, LeadTimeMonthsMin: 12, LeadTimeMonthsMax: 18,
		},
		model.TechTurbine: {
			Technology: model.TechTurbine, UnitCapacityMW: 50, HeatRateBTUPerKWh: 8500,
			NOxLbPerMWh: 0.25, RampRateMWPerMin: 8, AvailabilityPct: 0.95,
			LandAcresPerMW: 0.3, LeadTimeMonthsMin: 18, LeadTimeMonthsMax: 24,
		},
		model.TechBESS: {
			Technology: model.TechBESS, UnitCapacityMW: 50, AvailabilityPct: 0.995,
			LandAcresPerMW: 0.25, DurationHours: 4, RoundTripEff: 0.9, RampRateMWPerMin: 50,
			LeadTimeMonthsMax: 12,
		},
		model.TechSolar: {
			Technology: model.TechSolar, AvailabilityPct: 0.995, LandAcresPerMW: 5,
			CapacityFactor: 0.25, LeadTimeMonthsMax: 12,
		},
		model.TechGrid: {
			Technology: model.TechGrid, AvailabilityPct: 0.9997, LeadTimeMonthsMax: 60,
			EnergyPricePerMWh: 80, CapexPerKW: 500,
		},
	}}
}

func defaultLimits() Limits {
	return Limits{
		NOxTonsPerYear:     100,
		GasMCFPerDay:       50000,
		LandAcres:          500,
		RequireN1:          true,
		MinAvailabilityPct: 0.995,
	}
}

func TestFirmCapsMaxAndBinding(t *testing.T) {
	caps := FirmCaps{NOxMW: 80, GasMW: 120, LandMW: 150}
	max, binding := caps.MaxFirmMW()
	if max != 80 {
		t.Fatalf("expected max firm 80 got %v", max)
	}
	if binding != "nox" {
		t.Fatalf("expected binding nox got %s", binding)
	}
}

func TestFirmCapsTieOrder(t *testing.T) {
	caps := FirmCaps{NOxMW: 90, GasMW: 90, LandMW: 200}
	if _, binding := caps.MaxFirmMW(); binding != "nox" {
		t.Fatalf("ties must resolve to nox first, got %s", binding)
	}
}

func TestDeriveFirmCaps(t *testing.T) {
	caps := DeriveFirmCaps(defaultLimits(), checkerCatalog())
	// 100 tpy * 2000 lb / (0.85 * 8760 h * 0.50 lb/MWh)
	wantNOx := 100 * 2000 / (0.85 * 8760 * 0.50)
	if math.Abs(caps.NOxMW-wantNOx) > 1e-9 {
		t.Fatalf("nox cap: expected %v got %v", wantNOx, caps.NOxMW)
	}
	// 50000 MCF/day * 365 / (7.7/1.037 MCF/MWh * 0.85 * 8760 h)
	wantGas := 50000 * 365 / (7700.0 / 1000 / 1.037 * 0.85 * 8760)
	if math.Abs(caps.GasMW-wantGas) > 1e-6 {
		t.Fatalf("gas cap: expected %v got %v", wantGas, caps.GasMW)
	}
	if caps.LandMW != 1000 {
		t.Fatalf("land cap: expected 1000 got %v", caps.LandMW)
	}
}

func TestDeriveFirmCapsUnconstrained(t *testing.T) {
	caps := DeriveFirmCaps(Limits{}, checkerCatalog())
	if !math.IsInf(caps.NOxMW, 1) || !math.IsInf(caps.GasMW, 1) || !math.IsInf(caps.LandMW, 1) {
		t.Fatalf("zero limits must yield unbounded caps, got %+v", caps)
	}
}

func TestCheckPassesModestFleet(t *testing.T) {
	chk := NewChecker(checkerCatalog(), defaultLimits(), 2)
	// Two recips and a turbine with grid backup comfortably covering 80 MW.
	cfg := model.EquipmentConfig{RecipMW: 36.6, TurbineMW: 50, GridImportMW: 80}
	rep := chk.Check(cfg, 80, nil)
	if !rep.Passed {
		t.Fatalf("expected pass, violations: %v", rep.Violations)
	}
	if rep.Binding == "" {
		t.Fatal("binding constraint must always be named")
	}
}

func TestCheckNOxViolation(t *testing.T) {
	chk := NewChecker(checkerCatalog(), defaultLimits(), 2)
	// 400 MW of recips at the assumed 0.70 CF blows through 100 tpy.
	cfg := model.EquipmentConfig{RecipMW: 400, GridImportMW: 400}
	rep := chk.Check(cfg, 300, nil)
	if rep.Passed {
		t.Fatal("expected violation")
	}
	found := false
	for _, v := range rep.Violations {
		if strings.HasPrefix(v, "NOx:") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected NOx violation, got %v", rep.Violations)
	}
	if rep.Binding != "nox" {
		t.Fatalf("expected nox binding got %s", rep.Binding)
	}
}

func TestCheckUsesDispatchEnergy(t *testing.T) {
	chk := NewChecker(checkerCatalog(), defaultLimits(), 2)
	cfg := model.EquipmentConfig{RecipMW: 183, TurbineMW: 100, GridImportMW: 200}
	// A dispatch run with very low thermal output keeps NOx far under cap.
	ds := &model.DispatchSummary{CapacityFactors: map[string]float64{
		model.TechRecip:   0.05,
		model.TechTurbine: 0.01,
	}}
	rep := chk.Check(cfg, 200, ds)
	for _, st := range rep.Constraints {
		if st.Name == "nox" {
			want := (183*0.05*8760*0.50 + 100*0.01*8760*0.25) / 2000
			if math.Abs(st.Value-want) > 1e-9 {
				t.Fatalf("nox from dispatch: expected %v got %v", want, st.Value)
			}
			return
		}
	}
	t.Fatal("nox constraint missing from report")
}

func TestCheckN1Shortfall(t *testing.T) {
	chk := NewChecker(checkerCatalog(), defaultLimits(), 2)
	// A single turbine cannot survive its own loss.
	cfg := model.EquipmentConfig{TurbineMW: 50}
	rep := chk.Check(cfg, 40, nil)
	if rep.Passed {
		t.Fatal("expected N-1 violation")
	}
	var n1 *model.ConstraintStatus
	for i := range rep.Constraints {
		if rep.Constraints[i].Name == "n_minus_1" {
			n1 = &rep.Constraints[i]
		}
	}
	if n1 == nil {
		t.Fatal("n_minus_1 missing")
	}
	if !n1.Violated || n1.Value != 0 {
		t.Fatalf("expected violated with 0 MW survivable, got %+v", n1)
	}
}

func TestParallelAvailability(t *testing.T) {
	chk := NewChecker(checkerCatalog(), defaultLimits(), 2)
	single := model.EquipmentConfig{RecipMW: 100}
	if got := chk.ParallelAvailability(single); got != 0.975 {
		t.Fatalf("single path: expected 0.975 got %v", got)
	}
	multi := model.EquipmentConfig{RecipMW: 100, TurbineMW: 50, GridImportMW: 50}
	want := 1 - (1-0.975)*(1-0.95)*(1-0.9997)
	if got := chk.ParallelAvailability(multi); math.Abs(got-want) > 1e-12 {
		t.Fatalf("multi path: expected %v got %v", want, got)
	}
	if got := chk.ParallelAvailability(model.EquipmentConfig{}); got != 0 {
		t.Fatalf("no firm path: expected 0 got %v", got)
	}
}

func TestFleetRamp(t *testing.T) {
	chk := NewChecker(checkerCatalog(), defaultLimits(), 2)
	cfg := model.EquipmentConfig{RecipMW: 54.9, TurbineMW: 100, BESSPowerMW: 50}
	// 3 recip units * 3 + 2 turbine units * 8 + 50 MW instant BESS.
	want := 3*3.0 + 2*8.0 + 50
	if got := chk.FleetRampMWPerMin(cfg); math.Abs(got-want) > 1e-9 {
		t.Fatalf("fleet ramp: expected %v got %v", want, got)
	}
}

func TestTimelineMonths(t *testing.T) {
	chk := NewChecker(checkerCatalog(), defaultLimits(), 2)
	cases := []struct {
		name string
		cfg  model.EquipmentConfig
		want int
	}{
		{"empty", model.EquipmentConfig{}, 0},
		{"recip only", model.EquipmentConfig{RecipMW: 18.3}, 20},
		{"with turbine", model.EquipmentConfig{RecipMW: 18.3, TurbineMW: 50}, 26},
		{"grid governs", model.EquipmentConfig{RecipMW: 18.3, GridImportMW: 50}, 62},
	}
	for _, tc := range cases {
		if got := chk.TimelineMonths(tc.cfg); got != tc.want {
			t.Errorf("%s: expected %d got %d", tc.name, tc.want, got)
		}
	}
}

func TestOverallBindingClosestToOne(t *testing.T) {
	statuses := []model.ConstraintStatus{
		{Name: "nox", Limit: 100, Utilization: 0.55},
		{Name: "gas", Limit: 50000, Utilization: 0.93},
		{Name: "land", Limit: 500, Utilization: 0.40},
	}
	if got := overallBinding(statuses); got != "gas" {
		t.Fatalf("expected gas got %s", got)
	}
}

func TestOverallBindingGreatestOvershoot(t *testing.T) {
	statuses := []model.ConstraintStatus{
		{Name: "nox", Limit: 100, Value: 130, Utilization: 1.3, Violated: true},
		{Name: "land", Limit: 500, Value: 900, Utilization: 1.8, Violated: true},
		{Name: "gas", Limit: 50000, Value: 20000, Utilization: 0.4},
	}
	if got := overallBinding(statuses); got != "land" {
		t.Fatalf("expected land got %s", got)
	}
}
