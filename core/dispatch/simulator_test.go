package dispatch

import (
	"math"
	"testing"

	"github.com/gridsmith/powerplan/core/model"
)

// dispatchCatalog uses unit availability so expectations stay hand-checkable.
func dispatchCatalog() model.EquipmentCatalog {
	return model.EquipmentCatalog{Specs: map[string]model.EquipmentSpec{
		model.TechRecip: {
			Technology: model.TechRecip, UnitCapacityMW: 18.3, HeatRateBTUPerKWh: 7700,
			VOMPerMWh: 8.50, AvailabilityPct: 1,
		},
		model.TechTurbine: {
			Technology: model.TechTurbine, UnitCapacityMW: 50, HeatRateBTUPerKWh: 8500,
			VOMPerMWh: 6.50, AvailabilityPct: 1,
		},
		model.TechBESS: {
			Technology: model.TechBESS, UnitCapacityMW: 50, AvailabilityPct: 1,
			DurationHours: 4, RoundTripEff: 0.9,
		},
		model.TechSolar: {Technology: model.TechSolar, AvailabilityPct: 1, CapacityFactor: 0.25},
		model.TechGrid:  {Technology: model.TechGrid, AvailabilityPct: 1, EnergyPricePerMWh: 80},
	}}
}

func near(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("%s: got %v want %v", name, got, want)
	}
}

func TestMarginalCostOrdering(t *testing.T) {
	s := NewSimulator(dispatchCatalog(), 3.50)
	recip := s.MarginalCost(model.TechRecip)
	turbine := s.MarginalCost(model.TechTurbine)
	grid := s.MarginalCost(model.TechGrid)
	near(t, "recip", recip, 35.45)
	near(t, "turbine", turbine, 36.25)
	near(t, "grid", grid, 80)
	if !(recip < turbine && turbine < grid) {
		t.Fatalf("merit order broken: %v %v %v", recip, turbine, grid)
	}
}

func TestRunThermalLeadsExpensiveGrid(t *testing.T) {
	s := NewSimulator(dispatchCatalog(), 3.50)
	cfg := model.EquipmentConfig{RecipMW: 20, TurbineMW: 30, GridImportMW: 50}
	res, err := s.Run(cfg, []float64{90}, nil)
	if err != nil {
		t.Fatal(err)
	}
	near(t, "recip", res.Series.RecipMW[0], 20)
	near(t, "turbine", res.Series.TurbineMW[0], 30)
	near(t, "grid", res.Series.GridMW[0], 40)
	near(t, "unserved", res.UnservedEnergyMWh, 0)
	near(t, "delivered", res.EnergyDeliveredMWh, 90)
	near(t, "fuel", res.FuelMMBtu, 20*7.7+30*8.5)
	near(t, "gas", res.GasMCF, (20*7.7+30*8.5)/1.037)
	if res.Starts[model.TechRecip] != 1 || res.Starts[model.TechTurbine] != 1 {
		t.Fatalf("unexpected starts %v", res.Starts)
	}
}

func TestRunCheapGridLeads(t *testing.T) {
	cat := dispatchCatalog()
	spec := cat.Specs[model.TechGrid]
	spec.EnergyPricePerMWh = 20
	cat.Specs[model.TechGrid] = spec

	s := NewSimulator(cat, 3.50)
	cfg := model.EquipmentConfig{RecipMW: 20, TurbineMW: 30, GridImportMW: 50}
	res, err := s.Run(cfg, []float64{90}, nil)
	if err != nil {
		t.Fatal(err)
	}
	near(t, "grid", res.Series.GridMW[0], 50)
	near(t, "recip", res.Series.RecipMW[0], 20)
	near(t, "turbine", res.Series.TurbineMW[0], 20)
}

func TestRunSolarMustTakeChargesThenCurtails(t *testing.T) {
	s := NewSimulator(dispatchCatalog(), 3.50)
	cfg := model.EquipmentConfig{SolarMWDC: 10, BESSPowerMW: 5, BESSEnergyMWh: 20}
	res, err := s.Run(cfg, []float64{4}, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	near(t, "solar served", res.Series.SolarMW[0], 4)
	near(t, "charge", res.Series.BESSChargeMW[0], 5)
	near(t, "curtailed", res.CurtailedMWh, 1)
	near(t, "soc", res.Series.SOCMWh[0], 10+5*math.Sqrt(0.9))
	near(t, "delivered", res.EnergyDeliveredMWh, 4)
}

func TestRunBESSDischargeEfficiencyLegs(t *testing.T) {
	s := NewSimulator(dispatchCatalog(), 3.50)
	cfg := model.EquipmentConfig{BESSPowerMW: 10, BESSEnergyMWh: 40}
	res, err := s.Run(cfg, []float64{5}, nil)
	if err != nil {
		t.Fatal(err)
	}
	near(t, "discharge", res.Series.BESSDischargeMW[0], 5)
	near(t, "soc", res.Series.SOCMWh[0], 20-5/math.Sqrt(0.9))
	near(t, "unserved", res.UnservedEnergyMWh, 0)
}

func TestRunUnservedAccounting(t *testing.T) {
	s := NewSimulator(dispatchCatalog(), 3.50)
	cfg := model.EquipmentConfig{RecipMW: 18.3}
	res, err := s.Run(cfg, []float64{100, 100}, nil)
	if err != nil {
		t.Fatal(err)
	}
	near(t, "unserved", res.UnservedEnergyMWh, 163.4)
	near(t, "unserved pct", res.UnservedPct, 81.7)
	near(t, "peak unserved", res.PeakUnservedMW, 81.7)
	if res.HoursWithUnserved != 2 {
		t.Fatalf("hours with unserved = %d", res.HoursWithUnserved)
	}
	near(t, "recip cf", res.CapacityFactors[model.TechRecip], 1)
	if res.Starts[model.TechRecip] != 1 {
		t.Fatalf("recip stayed online, starts = %d", res.Starts[model.TechRecip])
	}
}

func rampClampedCatalog() model.EquipmentCatalog {
	cat := dispatchCatalog()
	spec := cat.Specs[model.TechRecip]
	spec.RampRateMWPerMin = 0.05 // 3 MW per hour per unit
	cat.Specs[model.TechRecip] = spec
	return cat
}

func TestRunRampDownFloorSpills(t *testing.T) {
	s := NewSimulator(rampClampedCatalog(), 3.50)
	cfg := model.EquipmentConfig{RecipMW: 18.3}
	res, err := s.Run(cfg, []float64{10, 0, 10}, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{10, 7, 10}
	for h, w := range want {
		near(t, "recip output", res.Series.RecipMW[h], w)
	}
	near(t, "curtailed", res.CurtailedMWh, 7)
	if res.Starts[model.TechRecip] != 1 {
		t.Fatalf("starts = %d", res.Starts[model.TechRecip])
	}
	near(t, "max ramp", res.MaxRampMWPerMin, 2)
}

func TestRunRampUpLimitLeavesUnserved(t *testing.T) {
	s := NewSimulator(rampClampedCatalog(), 3.50)
	cfg := model.EquipmentConfig{RecipMW: 18.3}
	res, err := s.Run(cfg, []float64{0, 10}, nil)
	if err != nil {
		t.Fatal(err)
	}
	near(t, "clamped output", res.Series.RecipMW[1], 3)
	near(t, "unserved", res.UnservedEnergyMWh, 7)
	if res.Starts[model.TechRecip] != 1 {
		t.Fatalf("starts = %d", res.Starts[model.TechRecip])
	}
}

func TestRunRampDownFloorChargesBESS(t *testing.T) {
	s := NewSimulator(rampClampedCatalog(), 3.50)
	cfg := model.EquipmentConfig{RecipMW: 18.3, BESSPowerMW: 5, BESSEnergyMWh: 20}
	res, err := s.Run(cfg, []float64{10, 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	eff := math.Sqrt(0.9)
	// Hour 0: the battery serves 5 MW, recips serve the rest, then the
	// reliability pass tops the battery back up from recip headroom.
	near(t, "discharge h0", res.Series.BESSDischargeMW[0], 5)
	near(t, "recip h0", res.Series.RecipMW[0], 10)
	near(t, "charge h0", res.Series.BESSChargeMW[0], 5)
	// Hour 1: the ramp floor forces 7 MW; 5 MW charges, 2 MW spills.
	near(t, "recip h1", res.Series.RecipMW[1], 7)
	near(t, "charge h1", res.Series.BESSChargeMW[1], 5)
	near(t, "curtailed", res.CurtailedMWh, 2)
	wantSOC := 10 - 5/eff + 5*eff + 5*eff
	near(t, "soc h1", res.Series.SOCMWh[1], wantSOC)
}

func TestRunReliabilityChargeOrderGridFirst(t *testing.T) {
	s := NewSimulator(dispatchCatalog(), 3.50)
	cfg := model.EquipmentConfig{RecipMW: 10, GridImportMW: 10, BESSPowerMW: 5, BESSEnergyMWh: 40}
	res, err := s.Run(cfg, []float64{0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	near(t, "grid", res.Series.GridMW[0], 5)
	near(t, "recip", res.Series.RecipMW[0], 0)
	near(t, "charge", res.Series.BESSChargeMW[0], 5)
}

func TestRunAvailabilityDerate(t *testing.T) {
	cat := dispatchCatalog()
	spec := cat.Specs[model.TechRecip]
	spec.AvailabilityPct = 0.5
	cat.Specs[model.TechRecip] = spec

	s := NewSimulator(cat, 3.50)
	res, err := s.Run(model.EquipmentConfig{RecipMW: 20}, []float64{15}, nil)
	if err != nil {
		t.Fatal(err)
	}
	near(t, "derated output", res.Series.RecipMW[0], 10)
	near(t, "unserved", res.UnservedEnergyMWh, 5)
	near(t, "cf vs nameplate", res.CapacityFactors[model.TechRecip], 0.5)
}

func TestRunEnergyBalanceWithoutStorage(t *testing.T) {
	s := NewSimulator(dispatchCatalog(), 3.50)
	cfg := model.EquipmentConfig{RecipMW: 18.3, TurbineMW: 50, GridImportMW: 20}
	load := make([]float64, 48)
	for i := range load {
		load[i] = float64((i*37)%80) + 10
	}
	res, err := s.Run(cfg, load, nil)
	if err != nil {
		t.Fatal(err)
	}
	required := 0.0
	for _, l := range load {
		required += l
	}
	near(t, "required", res.EnergyRequiredMWh, required)
	near(t, "balance", res.EnergyDeliveredMWh+res.UnservedEnergyMWh, required)
	maxSupply := (18.3 + 50 + 20) * 48
	if res.EnergyDeliveredMWh > maxSupply {
		t.Fatalf("delivered %v exceeds fleet capability %v", res.EnergyDeliveredMWh, maxSupply)
	}
}

func TestRunInputValidation(t *testing.T) {
	s := NewSimulator(dispatchCatalog(), 3.50)
	if _, err := s.Run(model.EquipmentConfig{}, nil, nil); err == nil {
		t.Fatal("expected error for empty load")
	}
	if _, err := s.Run(model.EquipmentConfig{}, []float64{1, 2}, []float64{1}); err == nil {
		t.Fatal("expected error for mismatched solar profile")
	}
}

func TestSummaryCarriesAggregates(t *testing.T) {
	s := NewSimulator(dispatchCatalog(), 3.50)
	res, err := s.Run(model.EquipmentConfig{RecipMW: 18.3}, []float64{100, 100}, nil)
	if err != nil {
		t.Fatal(err)
	}
	sum := res.Summary()
	near(t, "delivered", sum.EnergyDeliveredMWh, res.EnergyDeliveredMWh)
	near(t, "unserved", sum.UnservedEnergyMWh, res.UnservedEnergyMWh)
	near(t, "pct", sum.UnservedPct, res.UnservedPct)
	near(t, "fuel", sum.FuelMMBtu, res.FuelMMBtu)
	if sum.StartsPerYear[model.TechRecip] != res.Starts[model.TechRecip] {
		t.Fatalf("starts not carried: %v vs %v", sum.StartsPerYear, res.Starts)
	}
}
