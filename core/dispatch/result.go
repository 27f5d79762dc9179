package dispatch

import "github.com/gridsmith/powerplan/core/model"

// Series holds the hourly dispatch columns for one simulated year. All
// slices share the same length.
type Series struct {
	LoadMW          []float64 `json:"load_mw"`
	SolarMW         []float64 `json:"solar_mw"`
	BESSDischargeMW []float64 `json:"bess_discharge_mw"`
	BESSChargeMW    []float64 `json:"bess_charge_mw"`
	SOCMWh          []float64 `json:"bess_soc_mwh"`
	RecipMW         []float64 `json:"recip_mw"`
	TurbineMW       []float64 `json:"turbine_mw"`
	GridMW          []float64 `json:"grid_mw"`
	UnservedMW      []float64 `json:"unserved_mw"`
}

func newSeries(n int) Series {
	return Series{
		LoadMW:          make([]float64, n),
		SolarMW:         make([]float64, n),
		BESSDischargeMW: make([]float64, n),
		BESSChargeMW:    make([]float64, n),
		SOCMWh:          make([]float64, n),
		RecipMW:         make([]float64, n),
		TurbineMW:       make([]float64, n),
		GridMW:          make([]float64, n),
		UnservedMW:      make([]float64, n),
	}
}

// Result is one simulated dispatch year. Delivered energy counts every MWh
// generated, including generation raised to charge the BESS, so it can
// exceed the load requirement.
type Result struct {
	Series Series `json:"series"`

	EnergyRequiredMWh  float64 `json:"energy_required_mwh"`
	EnergyDeliveredMWh float64 `json:"energy_delivered_mwh"`
	UnservedEnergyMWh  float64 `json:"unserved_energy_mwh"`
	UnservedPct        float64 `json:"unserved_pct"`
	PeakUnservedMW     float64 `json:"peak_unserved_mw"`
	HoursWithUnserved  int     `json:"hours_with_unserved"`
	CurtailedMWh       float64 `json:"curtailed_mwh"`

	GenerationMWh   map[string]float64 `json:"generation_mwh"`
	CapacityFactors map[string]float64 `json:"capacity_factors"`
	Starts          map[string]int     `json:"starts"`

	FuelMMBtu       float64 `json:"fuel_mmbtu"`
	GasMCF          float64 `json:"gas_mcf"`
	MaxRampMWPerMin float64 `json:"max_ramp_mw_per_min"`
}

// Summary reduces the result to the aggregate record carried on a
// HeuristicResult.
func (r *Result) Summary() model.DispatchSummary {
	return model.DispatchSummary{
		EnergyRequiredMWh:  r.EnergyRequiredMWh,
		EnergyDeliveredMWh: r.EnergyDeliveredMWh,
		UnservedEnergyMWh:  r.UnservedEnergyMWh,
		UnservedPct:        r.UnservedPct,
		CapacityFactors:    r.CapacityFactors,
		StartsPerYear:      r.Starts,
		FuelMMBtu:          r.FuelMMBtu,
		GasMCF:             r.GasMCF,
		MaxRampMWPerMin:    r.MaxRampMWPerMin,
	}
}
