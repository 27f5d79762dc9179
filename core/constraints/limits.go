package constraints

import (
	"fmt"
	"math"

	"github.com/gridsmith/powerplan/core/model"
)

// Limits carries the site-level caps a configuration must respect. Zero
// values for NOx, gas, land and timeline mean unconstrained.
type Limits struct {
	NOxTonsPerYear     float64 `json:"nox_tpy"`
	GasMCFPerDay       float64 `json:"gas_mcf_day"`
	LandAcres          float64 `json:"land_acres"`
	GridImportMW       float64 `json:"grid_import_mw"`
	RequireN1          bool    `json:"require_n1"`
	MinAvailabilityPct float64 `json:"min_availability_pct"`
	TimelineMonthsMax  int     `json:"timeline_months_max"`
	MinRampMWPerMin    float64 `json:"min_ramp_mw_min"`
}

// Validate checks limit invariants.
func (l Limits) Validate() error {
	if l.NOxTonsPerYear < 0 || l.GasMCFPerDay < 0 || l.LandAcres < 0 || l.GridImportMW < 0 {
		return fmt.Errorf("limits must be >= 0")
	}
	if l.MinAvailabilityPct < 0 || l.MinAvailabilityPct > 1 {
		return fmt.Errorf("min availability must be in [0,1]")
	}
	return nil
}

// FirmCaps holds the three independently derived maximum firm thermal
// capacities. Each answers "how much thermal could this resource alone
// support" at the screening capacity factor.
type FirmCaps struct {
	NOxMW  float64 `json:"nox_mw"`
	GasMW  float64 `json:"gas_mw"`
	LandMW float64 `json:"land_mw"`
}

// MaxFirmMW returns the governing cap and its name. Ties resolve in the
// order nox, gas, land.
func (f FirmCaps) MaxFirmMW() (float64, string) {
	max := f.NOxMW
	name := "nox"
	if f.GasMW < max {
		max = f.GasMW
		name = "gas"
	}
	if f.LandMW < max {
		max = f.LandMW
		name = "land"
	}
	return max, name
}

// ScreeningCF is the assumed baseload capacity factor used when converting
// annual resource budgets into firm MW.
const ScreeningCF = 0.85

// DeriveFirmCaps computes the NOx, gas and land caps for the reference
// thermal technology (recip) at the screening capacity factor.
func DeriveFirmCaps(limits Limits, catalog model.EquipmentCatalog) FirmCaps {
	return FirmCapsAt(limits, catalog, ScreeningCF)
}

// FirmCapsAt derives the caps at an explicit capacity factor. Sizing uses a
// lower baseload assumption than feasibility screening. An unconstrained
// resource yields +Inf.
func FirmCapsAt(limits Limits, catalog model.EquipmentCatalog, cf float64) FirmCaps {
	recip := catalog.MustSpec(model.TechRecip)
	caps := FirmCaps{
		NOxMW:  math.Inf(1),
		GasMW:  math.Inf(1),
		LandMW: math.Inf(1),
	}
	hours := cf * 8760
	if hours <= 0 {
		return caps
	}
	if limits.NOxTonsPerYear > 0 && recip.NOxLbPerMWh > 0 {
		caps.NOxMW = limits.NOxTonsPerYear * 2000 / (hours * recip.NOxLbPerMWh)
	}
	if limits.GasMCFPerDay > 0 && recip.HeatRateBTUPerKWh > 0 {
		mcfPerMWh := recip.HeatRateBTUPerKWh / 1000 / 1.037
		caps.GasMW = limits.GasMCFPerDay * 365 / (mcfPerMWh * hours)
	}
	if limits.LandAcres > 0 && recip.LandAcresPerMW > 0 {
		caps.LandMW = limits.LandAcres / recip.LandAcresPerMW
	}
	return caps
}
