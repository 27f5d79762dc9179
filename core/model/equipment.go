package model

import (
	"fmt"
	"math"
)

// Technology keys shared by the catalog, sizer, simulator and checker.
const (
	TechRecip   = "recip"
	TechTurbine = "turbine"
	TechBESS    = "bess"
	TechSolar   = "solar"
	TechGrid    = "grid"
)

// EquipmentSpec describes one generation technology. Specs are resolved from
// configuration before a solve starts and treated as read-only afterwards.
type EquipmentSpec struct {
	Technology        string  `json:"technology"`
	UnitCapacityMW    float64 `json:"unit_capacity_mw"`
	HeatRateBTUPerKWh float64 `json:"heat_rate_btu_kwh"`
	NOxLbPerMWh       float64 `json:"nox_lb_mwh"`
	RampRateMWPerMin  float64 `json:"ramp_rate_mw_min"`
	StartTimeColdMin  float64 `json:"start_time_cold_min"`
	LeadTimeMonthsMin int     `json:"lead_time_months_min"`
	LeadTimeMonthsMax int     `json:"lead_time_months_max"`
	CapexPerKW        float64 `json:"capex_per_kw"`
	// CapexPerKWh prices storage energy capacity; only meaningful for BESS.
	CapexPerKWh     float64 `json:"capex_per_kwh"`
	VOMPerMWh       float64 `json:"vom_per_mwh"`
	FOMPerKWYear    float64 `json:"fom_per_kw_yr"`
	AvailabilityPct float64 `json:"availability_pct"`
	LandAcresPerMW  float64 `json:"land_acres_per_mw"`

	// DurationHours and RoundTripEff apply to BESS only.
	DurationHours float64 `json:"duration_hours"`
	RoundTripEff  float64 `json:"round_trip_efficiency"`

	// CapacityFactor applies to solar: expected annual AC output fraction.
	CapacityFactor float64 `json:"capacity_factor"`

	// EnergyPricePerMWh applies to grid import.
	EnergyPricePerMWh float64 `json:"energy_price_mwh"`

	// CostPerKWMonth is the bridge-power rental rate for this technology.
	CostPerKWMonth float64 `json:"cost_per_kw_month"`
}

// Validate checks that the spec is internally sound.
func (s EquipmentSpec) Validate() error {
	if s.UnitCapacityMW < 0 {
		return fmt.Errorf("%s: unit capacity must be >= 0", s.Technology)
	}
	if s.AvailabilityPct <= 0 || s.AvailabilityPct > 1 {
		return fmt.Errorf("%s: availability must be in (0,1]", s.Technology)
	}
	if s.RoundTripEff < 0 || s.RoundTripEff > 1 {
		return fmt.Errorf("%s: round-trip efficiency must be in [0,1]", s.Technology)
	}
	if s.LeadTimeMonthsMax < s.LeadTimeMonthsMin {
		return fmt.Errorf("%s: lead time max below min", s.Technology)
	}
	return nil
}

// EquipmentCatalog holds the spec for every technology the engine may deploy.
type EquipmentCatalog struct {
	Specs map[string]EquipmentSpec `json:"specs"`
}

// Spec returns the spec for a technology. A missing entry is a configuration
// error: the catalog must be complete before any solve starts.
func (c EquipmentCatalog) Spec(tech string) (EquipmentSpec, error) {
	s, ok := c.Specs[tech]
	if !ok {
		return EquipmentSpec{}, fmt.Errorf("catalog missing technology %q", tech)
	}
	return s, nil
}

// MustSpec is Spec for callers that validated the catalog at load time.
func (c EquipmentCatalog) MustSpec(tech string) EquipmentSpec {
	return c.Specs[tech]
}

// Validate ensures every required technology is present and each spec is
// sound.
func (c EquipmentCatalog) Validate() error {
	for _, tech := range []string{TechRecip, TechTurbine, TechBESS, TechSolar, TechGrid} {
		s, ok := c.Specs[tech]
		if !ok {
			return fmt.Errorf("catalog missing technology %q", tech)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}
	return nil
}

// EquipmentConfig is the capacity mix chosen for one evaluation. A config is
// created fresh per solve, grown additively across analysis years, and
// discarded when the solve returns.
type EquipmentConfig struct {
	RecipMW       float64 `json:"recip_mw"`
	TurbineMW     float64 `json:"turbine_mw"`
	BESSPowerMW   float64 `json:"bess_power_mw"`
	BESSEnergyMWh float64 `json:"bess_energy_mwh"`
	SolarMWDC     float64 `json:"solar_mw_dc"`
	GridImportMW  float64 `json:"grid_import_mw"`
}

// TotalCapacityMW is the nameplate sum across all technologies.
func (c EquipmentConfig) TotalCapacityMW() float64 {
	return c.RecipMW + c.TurbineMW + c.BESSPowerMW + c.SolarMWDC + c.GridImportMW
}

// FirmCapacityMW counts only duration-unlimited dispatchable capacity.
// Solar is energy-only and BESS is duration-limited, so neither is firm.
func (c EquipmentConfig) FirmCapacityMW() float64 {
	return c.RecipMW + c.TurbineMW + c.GridImportMW
}

// FirmUnitsMW expands firm capacity into individual unit sizes: each thermal
// unit separately, grid import as one contingency block. Used for N-1 checks.
func (c EquipmentConfig) FirmUnitsMW(catalog EquipmentCatalog) []float64 {
	var units []float64
	units = appendUnits(units, c.RecipMW, catalog.MustSpec(TechRecip).UnitCapacityMW)
	units = appendUnits(units, c.TurbineMW, catalog.MustSpec(TechTurbine).UnitCapacityMW)
	if c.GridImportMW > 0 {
		units = append(units, c.GridImportMW)
	}
	return units
}

func appendUnits(units []float64, totalMW, unitMW float64) []float64 {
	if totalMW <= 0 {
		return units
	}
	if unitMW <= 0 {
		return append(units, totalMW)
	}
	n := int(totalMW / unitMW)
	for i := 0; i < n; i++ {
		units = append(units, unitMW)
	}
	if rem := totalMW - float64(n)*unitMW; rem > 1e-9 {
		units = append(units, rem)
	}
	return units
}

// LargestUnitMW returns the single largest firm unit, the quantity lost in
// the N-1 contingency.
func (c EquipmentConfig) LargestUnitMW(catalog EquipmentCatalog) float64 {
	largest := 0.0
	for _, u := range c.FirmUnitsMW(catalog) {
		if u > largest {
			largest = u
		}
	}
	return largest
}

// LandAcres returns the site acreage consumed by the generation fleet.
func (c EquipmentConfig) LandAcres(catalog EquipmentCatalog) float64 {
	return c.RecipMW*catalog.MustSpec(TechRecip).LandAcresPerMW +
		c.TurbineMW*catalog.MustSpec(TechTurbine).LandAcresPerMW +
		c.BESSPowerMW*catalog.MustSpec(TechBESS).LandAcresPerMW +
		c.SolarMWDC*catalog.MustSpec(TechSolar).LandAcresPerMW
}

// Add returns c grown by other. Growth is additive: capacity is never
// removed across analysis years.
func (c EquipmentConfig) Add(other EquipmentConfig) EquipmentConfig {
	return EquipmentConfig{
		RecipMW:       c.RecipMW + other.RecipMW,
		TurbineMW:     c.TurbineMW + other.TurbineMW,
		BESSPowerMW:   c.BESSPowerMW + other.BESSPowerMW,
		BESSEnergyMWh: c.BESSEnergyMWh + other.BESSEnergyMWh,
		SolarMWDC:     c.SolarMWDC + other.SolarMWDC,
		GridImportMW:  c.GridImportMW + other.GridImportMW,
	}
}

// Delta returns the capacity in c that exceeds prev, clamped at zero per
// technology. Yearly CAPEX is charged on this delta only.
func (c EquipmentConfig) Delta(prev EquipmentConfig) EquipmentConfig {
	return EquipmentConfig{
		RecipMW:       math.Max(0, c.RecipMW-prev.RecipMW),
		TurbineMW:     math.Max(0, c.TurbineMW-prev.TurbineMW),
		BESSPowerMW:   math.Max(0, c.BESSPowerMW-prev.BESSPowerMW),
		BESSEnergyMWh: math.Max(0, c.BESSEnergyMWh-prev.BESSEnergyMWh),
		SolarMWDC:     math.Max(0, c.SolarMWDC-prev.SolarMWDC),
		GridImportMW:  math.Max(0, c.GridImportMW-prev.GridImportMW),
	}
}

// IsZero reports whether no capacity is deployed.
func (c EquipmentConfig) IsZero() bool {
	return c.TotalCapacityMW() == 0 && c.BESSEnergyMWh == 0
}

// Validate checks the capacity invariants.
func (c EquipmentConfig) Validate() error {
	for name, v := range map[string]float64{
		"recip_mw":        c.RecipMW,
		"turbine_mw":      c.TurbineMW,
		"bess_power_mw":   c.BESSPowerMW,
		"bess_energy_mwh": c.BESSEnergyMWh,
		"solar_mw_dc":     c.SolarMWDC,
		"grid_import_mw":  c.GridImportMW,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}
	return nil
}
