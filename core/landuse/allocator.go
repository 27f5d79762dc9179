// Package landuse divides a site between the datacenter, its electrical
// infrastructure, and the generation fleet.
package landuse

import "github.com/gridsmith/powerplan/core/model"

// Params tunes the allocation waterfall.
type Params struct {
	// DatacenterMWPerAcre converts IT load into building footprint.
	DatacenterMWPerAcre float64 `json:"datacenter_mw_per_acre"`
	// SubstationAcres is a fixed switchyard reservation.
	SubstationAcres float64 `json:"substation_acres"`
	// InfrastructureFraction reserves roads, setbacks and buffers as a share
	// of the whole site.
	InfrastructureFraction float64 `json:"infrastructure_fraction"`
	// SolarThresholdAcres is the minimum leftover block worth developing as
	// solar; smaller remnants stay unused.
	SolarThresholdAcres float64 `json:"solar_threshold_acres"`
}

// DefaultParams returns the screening defaults.
func DefaultParams() Params {
	return Params{
		DatacenterMWPerAcre:    3.0,
		SubstationAcres:        10,
		InfrastructureFraction: 0.10,
		SolarThresholdAcres:    800,
	}
}

// Allocation is the acreage split for one site. SolarAvailableAcres is zero
// when the leftover block falls below the development threshold.
type Allocation struct {
	DatacenterAcres     float64 `json:"datacenter_acres"`
	SubstationAcres     float64 `json:"substation_acres"`
	InfrastructureAcres float64 `json:"infrastructure_acres"`
	ThermalAcres        float64 `json:"thermal_acres"`
	BESSAcres           float64 `json:"bess_acres"`
	SolarAvailableAcres float64 `json:"solar_available_acres"`
	TotalUsedAcres      float64 `json:"total_used_acres"`
	RemainingAcres      float64 `json:"remaining_acres"`
}

// Allocator applies the waterfall: datacenter first, then substation and
// infrastructure, then generation by power density, solar last.
type Allocator struct {
	catalog model.EquipmentCatalog
	params  Params
}

func New(catalog model.EquipmentCatalog, params Params) *Allocator {
	return &Allocator{catalog: catalog, params: params}
}

// Allocate splits totalAcres for a site hosting peakLoadMW of IT load and
// the given generation mix.
func (a *Allocator) Allocate(totalAcres, peakLoadMW float64, cfg model.EquipmentConfig) Allocation {
	al := Allocation{SubstationAcres: a.params.SubstationAcres}
	if a.params.DatacenterMWPerAcre > 0 {
		al.DatacenterAcres = peakLoadMW / a.params.DatacenterMWPerAcre
	}
	al.InfrastructureAcres = totalAcres * a.params.InfrastructureFraction

	al.ThermalAcres = cfg.RecipMW*a.catalog.MustSpec(model.TechRecip).LandAcresPerMW +
		cfg.TurbineMW*a.catalog.MustSpec(model.TechTurbine).LandAcresPerMW
	al.BESSAcres = cfg.BESSPowerMW * a.catalog.MustSpec(model.TechBESS).LandAcresPerMW

	al.TotalUsedAcres = al.DatacenterAcres + al.SubstationAcres +
		al.InfrastructureAcres + al.ThermalAcres + al.BESSAcres

	remaining := totalAcres - al.TotalUsedAcres
	if remaining >= a.params.SolarThresholdAcres {
		al.SolarAvailableAcres = remaining
	}
	if remaining > 0 {
		al.RemainingAcres = remaining
	}
	return al
}

// MaxSolarMW converts developable acreage into solar capacity.
func (a *Allocator) MaxSolarMW(availableAcres float64) float64 {
	perMW := a.catalog.MustSpec(model.TechSolar).LandAcresPerMW
	if availableAcres <= 0 || perMW <= 0 {
		return 0
	}
	return availableAcres / perMW
}
