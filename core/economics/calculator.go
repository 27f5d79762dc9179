package economics

import (
	"math"

	"github.com/gridsmith/powerplan/core/model"
)

const (
	hoursPerYear = 8760

	// Screening capacity factors used when no dispatch has been run.
	// Turbines are assumed to peak behind baseloaded recips.
	assumedRecipCF   = 0.70
	assumedTurbineCF = 0.35

	solarOMPerMWh     = 2.0
	bessCyclesPerYear = 365
)

// Assumptions carries the financial parameters shared by every problem.
type Assumptions struct {
	DiscountRate      float64 `json:"discount_rate"`
	ProjectLifeYears  int     `json:"project_life_years"`
	FuelPricePerMMBtu float64 `json:"fuel_price_mmbtu"`
	FuelEscalationPct float64 `json:"fuel_escalation_pct"`
	ITCRate           float64 `json:"itc_rate"`
	VOLLPerMWh        float64 `json:"voll_per_mwh"`
	BESSDegPerKWh     float64 `json:"bess_degradation_per_kwh"`
}

// DefaultAssumptions returns the screening defaults.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		DiscountRate:      0.08,
		ProjectLifeYears:  20,
		FuelPricePerMMBtu: 3.50,
		FuelEscalationPct: 0.025,
		ITCRate:           0.30,
		VOLLPerMWh:        50000,
		BESSDegPerKWh:     0.03,
	}
}

// CRF is the capital recovery factor r(1+r)^n / ((1+r)^n - 1). A zero rate
// degenerates to straight-line recovery 1/n.
func CRF(rate float64, years int) float64 {
	if years <= 0 {
		return 0
	}
	if rate == 0 {
		return 1 / float64(years)
	}
	g := math.Pow(1+rate, float64(years))
	return rate * g / (g - 1)
}

// NPV discounts flows starting one period out: flows[0] lands at period 1.
func NPV(rate float64, flows []float64) float64 {
	total := 0.0
	for i, f := range flows {
		total += f / math.Pow(1+rate, float64(i+1))
	}
	return total
}

// Calculator prices equipment configurations. It holds read-only catalog and
// assumption data and is safe for concurrent use.
type Calculator struct {
	catalog model.EquipmentCatalog
	asmp    Assumptions
}

func NewCalculator(catalog model.EquipmentCatalog, asmp Assumptions) *Calculator {
	return &Calculator{catalog: catalog, asmp: asmp}
}

// Assumptions returns the calculator's financial parameters.
func (c *Calculator) Assumptions() Assumptions { return c.asmp }

// FuelPrice returns the escalated gas price for an analysis year, with year
// zero at the base price.
func (c *Calculator) FuelPrice(yearIdx int) float64 {
	if yearIdx <= 0 {
		return c.asmp.FuelPricePerMMBtu
	}
	return c.asmp.FuelPricePerMMBtu * math.Pow(1+c.asmp.FuelEscalationPct, float64(yearIdx))
}

// Capex prices the full configuration. The investment tax credit applies to
// solar and storage only; grid import is priced as interconnection cost.
func (c *Calculator) Capex(cfg model.EquipmentConfig) float64 {
	itc := 1 - c.asmp.ITCRate
	total := 0.0
	total += cfg.RecipMW * 1000 * c.catalog.MustSpec(model.TechRecip).CapexPerKW
	total += cfg.TurbineMW * 1000 * c.catalog.MustSpec(model.TechTurbine).CapexPerKW
	total += cfg.SolarMWDC * 1000 * c.catalog.MustSpec(model.TechSolar).CapexPerKW * itc
	total += cfg.BESSEnergyMWh * 1000 * c.catalog.MustSpec(model.TechBESS).CapexPerKWh * itc
	total += cfg.GridImportMW * 1000 * c.catalog.MustSpec(model.TechGrid).CapexPerKW
	return total
}

// AnnualOpex prices one operating year at the base fuel price. genMWh maps
// technology to delivered MWh from a dispatch run; a nil map falls back to
// screening capacity factors.
func (c *Calculator) AnnualOpex(cfg model.EquipmentConfig, genMWh map[string]float64) float64 {
	return c.AnnualOpexAtPrice(cfg, genMWh, c.asmp.FuelPricePerMMBtu)
}

// AnnualOpexAtPrice is AnnualOpex at an explicit gas price, for escalated
// out-years.
func (c *Calculator) AnnualOpexAtPrice(cfg model.EquipmentConfig, genMWh map[string]float64, fuelPrice float64) float64 {
	opex := 0.0

	opex += c.thermalOpex(model.TechRecip, cfg.RecipMW, genMWh, assumedRecipCF, fuelPrice)
	opex += c.thermalOpex(model.TechTurbine, cfg.TurbineMW, genMWh, assumedTurbineCF, fuelPrice)

	if cfg.SolarMWDC > 0 {
		spec := c.catalog.MustSpec(model.TechSolar)
		gen, ok := lookup(genMWh, model.TechSolar)
		if !ok {
			gen = cfg.SolarMWDC * spec.CapacityFactor * hoursPerYear
		}
		opex += gen * solarOMPerMWh
	}

	if cfg.BESSEnergyMWh > 0 {
		// One full cycle per day of throughput degradation.
		throughputKWh := cfg.BESSEnergyMWh * bessCyclesPerYear * 1000
		opex += throughputKWh * c.asmp.BESSDegPerKWh
	}

	if gen, ok := lookup(genMWh, model.TechGrid); ok && cfg.GridImportMW > 0 {
		opex += gen * c.catalog.MustSpec(model.TechGrid).EnergyPricePerMWh
	}
	return opex
}

func (c *Calculator) thermalOpex(tech string, capacityMW float64, genMWh map[string]float64, assumedCF, fuelPrice float64) float64 {
	if capacityMW <= 0 {
		return 0
	}
	spec := c.catalog.MustSpec(tech)
	gen, ok := lookup(genMWh, tech)
	if !ok {
		gen = capacityMW * assumedCF * hoursPerYear
	}
	fuel := gen * spec.HeatRateBTUPerKWh / 1000 * fuelPrice
	vom := gen * spec.VOMPerMWh
	fom := capacityMW * 1000 * spec.FOMPerKWYear
	return fuel + vom + fom
}

func lookup(m map[string]float64, k string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[k]
	return v, ok
}

// LCOEDetails explains an LCOE figure.
type LCOEDetails struct {
	CapexTotal     float64  `json:"capex_total"`
	OpexAnnual     float64  `json:"opex_annual"`
	CRF            float64  `json:"crf"`
	AnnualizedCost float64  `json:"annualized_cost"`
	DeliveredMWh   float64  `json:"delivered_mwh"`
	Warnings       []string `json:"warnings,omitempty"`
}

// LCOE levelizes annualized capital plus operating cost over delivered
// energy. Zero delivered energy yields +Inf with an explanatory warning,
// never NaN and never a panic.
func (c *Calculator) LCOE(cfg model.EquipmentConfig, annualMWh float64, genMWh map[string]float64) (float64, LCOEDetails) {
	d := LCOEDetails{
		CapexTotal:   c.Capex(cfg),
		OpexAnnual:   c.AnnualOpex(cfg, genMWh),
		CRF:          CRF(c.asmp.DiscountRate, c.asmp.ProjectLifeYears),
		DeliveredMWh: annualMWh,
	}
	d.AnnualizedCost = d.CapexTotal*d.CRF + d.OpexAnnual
	if annualMWh <= 0 {
		d.Warnings = append(d.Warnings, "no delivered energy: LCOE is unbounded")
		return math.Inf(1), d
	}
	return d.AnnualizedCost / annualMWh, d
}

// VOLLAdjustedCost penalizes an LCOE with the value of lost load on unserved
// energy, the objective used for capacity-screening comparisons.
func (c *Calculator) VOLLAdjustedCost(lcoe, unservedMWh, deliveredMWh float64) float64 {
	if deliveredMWh <= 0 {
		return lcoe
	}
	return lcoe + unservedMWh*c.asmp.VOLLPerMWh/deliveredMWh
}
