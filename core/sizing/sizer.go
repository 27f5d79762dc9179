package sizing

import (
	"math"

	"github.com/gridsmith/powerplan/core/constraints"
	"github.com/gridsmith/powerplan/core/model"
)

// Policy names the tunable fill heuristics. The fill precedence is fixed:
// recips first (fastest deployment, best heat rate), turbines for the
// remainder, grid import for any residual gap when an interconnection is
// permitted. Solar and BESS attach as energy and ramp support, not firm
// capacity.
type Policy struct {
	// NOxHeadroom is the share of the NOx-derived recip budget the sizer
	// will commit, leaving room for dispatch variability.
	NOxHeadroom float64 `json:"nox_headroom"`
	// SizingCF is the baseload capacity factor assumed when converting
	// emission and gas budgets into MW during sizing.
	SizingCF float64 `json:"sizing_cf"`
	// SolarPeakFraction caps solar at this share of peak load.
	SolarPeakFraction float64 `json:"solar_peak_fraction"`
	// SolarFirmingFraction sizes BESS power against installed solar.
	SolarFirmingFraction float64 `json:"solar_firming_fraction"`
	// BESSLoadFraction sizes BESS power against load when no solar exists.
	BESSLoadFraction float64 `json:"bess_load_fraction"`
	IncludeSolar     bool    `json:"include_solar"`
	IncludeBESS      bool    `json:"include_bess"`
}

// DefaultPolicy returns the screening defaults.
func DefaultPolicy() Policy {
	return Policy{
		NOxHeadroom:          0.9,
		SizingCF:             0.70,
		SolarPeakFraction:    0.25,
		SolarFirmingFraction: 0.5,
		BESSLoadFraction:     0.10,
		IncludeSolar:         true,
		IncludeBESS:          true,
	}
}

// Sizer chooses equipment counts to meet a target load. SizeToLoad is a pure
// function: identical inputs always yield an identical config, and a larger
// target never yields less total capacity.
type Sizer struct {
	catalog model.EquipmentCatalog
	limits  constraints.Limits
	policy  Policy
}

// New builds a sizer over a validated catalog.
func New(catalog model.EquipmentCatalog, limits constraints.Limits, policy Policy) *Sizer {
	return &Sizer{catalog: catalog, limits: limits, policy: policy}
}

// SizeToLoad computes a capacity mix whose firm capacity covers targetMW.
// With requireN1 the mix also survives the loss of its single largest unit.
// A non-positive target returns the empty config.
func (s *Sizer) SizeToLoad(targetMW float64, requireN1 bool) model.EquipmentConfig {
	if targetMW <= 0 {
		return model.EquipmentConfig{}
	}

	recip := s.catalog.MustSpec(model.TechRecip)
	turbine := s.catalog.MustSpec(model.TechTurbine)
	bess := s.catalog.MustSpec(model.TechBESS)
	solar := s.catalog.MustSpec(model.TechSolar)

	required := targetMW
	if requireN1 {
		required += math.Max(recip.UnitCapacityMW, turbine.UnitCapacityMW)
	}

	caps := constraints.FirmCapsAt(s.limits, s.catalog, s.policy.SizingCF)

	// Recips first, within the NOx budget headroom.
	noxBudget := caps.NOxMW * s.policy.NOxHeadroom
	maxRecip := math.Min(required, noxBudget)
	var cfg model.EquipmentConfig
	if recip.UnitCapacityMW > 0 && maxRecip > 0 {
		cfg.RecipMW = math.Floor(maxRecip/recip.UnitCapacityMW) * recip.UnitCapacityMW
	}

	// Turbines fill the remainder, bounded by the gas budget on total
	// thermal.
	if remaining := required - cfg.RecipMW; remaining > 0 && turbine.UnitCapacityMW > 0 {
		n := math.Ceil(remaining / turbine.UnitCapacityMW)
		if !math.IsInf(caps.GasMW, 1) {
			budget := math.Max(0, caps.GasMW-cfg.RecipMW)
			if cap := math.Floor(budget / turbine.UnitCapacityMW); cap < n {
				n = cap
			}
		}
		cfg.TurbineMW = n * turbine.UnitCapacityMW
	}

	// Grid import covers any residual firm gap when permitted.
	if residual := required - cfg.RecipMW - cfg.TurbineMW; residual > 0 && s.limits.GridImportMW > 0 {
		cfg.GridImportMW = math.Min(residual, s.limits.GridImportMW)
	}

	if requireN1 {
		cfg = s.ensureN1(cfg, targetMW, caps)
	}

	// Solar attaches as energy up to the land remaining after thermal.
	if s.policy.IncludeSolar && solar.LandAcresPerMW > 0 {
		maxSolar := targetMW * s.policy.SolarPeakFraction
		if s.limits.LandAcres > 0 {
			thermalLand := cfg.RecipMW*recip.LandAcresPerMW + cfg.TurbineMW*turbine.LandAcresPerMW
			landLeft := s.limits.LandAcres - thermalLand
			if landLeft <= 0 {
				maxSolar = 0
			} else {
				maxSolar = math.Min(maxSolar, landLeft/solar.LandAcresPerMW)
			}
		}
		cfg.SolarMWDC = math.Max(0, maxSolar)
	}

	// BESS for solar firming, or light load shaping without solar.
	if s.policy.IncludeBESS {
		if cfg.SolarMWDC > 0 {
			cfg.BESSPowerMW = cfg.SolarMWDC * s.policy.SolarFirmingFraction
		} else {
			cfg.BESSPowerMW = targetMW * s.policy.BESSLoadFraction
		}
		duration := bess.DurationHours
		if duration <= 0 {
			duration = 4
		}
		cfg.BESSEnergyMWh = cfg.BESSPowerMW * duration
	}

	return cfg
}

// ensureN1 grows the firm fleet until losing the largest single unit still
// covers the target. When grid import is the dominant block this needs
// thermal additions beyond the initial N-1 allowance; when resource budgets
// are exhausted the shortfall is left for the constraint checker to flag.
func (s *Sizer) ensureN1(cfg model.EquipmentConfig, targetMW float64, caps constraints.FirmCaps) model.EquipmentConfig {
	recip := s.catalog.MustSpec(model.TechRecip)
	turbine := s.catalog.MustSpec(model.TechTurbine)
	for i := 0; i < 64; i++ {
		if cfg.FirmCapacityMW()-cfg.LargestUnitMW(s.catalog) >= targetMW {
			break
		}
		thermal := cfg.RecipMW + cfg.TurbineMW
		switch {
		case turbine.UnitCapacityMW > 0 && thermal+turbine.UnitCapacityMW <= caps.GasMW:
			cfg.TurbineMW += turbine.UnitCapacityMW
		case recip.UnitCapacityMW > 0 && cfg.RecipMW+recip.UnitCapacityMW <= caps.NOxMW*s.policy.NOxHeadroom:
			cfg.RecipMW += recip.UnitCapacityMW
		default:
			return cfg
		}
	}
	return cfg
}
