package constraints

import (
	"fmt"
	"math"

	"github.com/gridsmith/powerplan/core/model"
)

// Constraint status labels, ordered from loose to broken.
const (
	StatusSlack       = "slack"
	StatusNearBinding = "near_binding"
	StatusBinding     = "binding"
	StatusViolated    = "violated"
)

// Screening capacity factors assumed when no dispatch run is available.
const (
	assumedRecipCF   = 0.70
	assumedTurbineCF = 0.35
)

// Hard constraints get essentially no tolerance; soft ones allow a 10%
// excursion before being reported as violated.
const (
	hardTolerance = 0.0001
	softTolerance = 0.10
)

// Checker validates an equipment configuration against site limits.
type Checker struct {
	catalog             model.EquipmentCatalog
	limits              Limits
	commissioningMonths int
}

// DefaultCommissioningMonths is the screening allowance for site works and
// commissioning beyond the equipment lead time.
const DefaultCommissioningMonths = 2

// NewChecker builds a checker. commissioningMonths is the fixed offset added
// to the longest equipment lead time when computing time to power.
func NewChecker(catalog model.EquipmentCatalog, limits Limits, commissioningMonths int) *Checker {
	return &Checker{catalog: catalog, limits: limits, commissioningMonths: commissioningMonths}
}

// Report is the outcome of a full constraint check.
type Report struct {
	Constraints []model.ConstraintStatus
	Violations  []string
	Binding     string
	Passed      bool
}

type direction int

const (
	upperBound direction = iota // value must stay at or below limit
	lowerBound                  // value must stay at or above limit
)

type evaluation struct {
	name      string
	value     float64
	limit     float64
	dir       direction
	tolerance float64
	message   string // violation text
}

// Check evaluates every constraint for the configuration at the given peak
// load. When a dispatch summary is provided, emissions and gas draw use the
// simulated energy; otherwise screening capacity factors are assumed.
func (c *Checker) Check(cfg model.EquipmentConfig, peakMW float64, dispatch *model.DispatchSummary) Report {
	evals := []evaluation{
		c.evalNOx(cfg, dispatch),
		c.evalGas(cfg, dispatch),
		c.evalLand(cfg),
	}
	if c.limits.RequireN1 {
		evals = append(evals, c.evalN1(cfg, peakMW))
	}
	if c.limits.MinAvailabilityPct > 0 {
		evals = append(evals, c.evalAvailability(cfg))
	}
	if c.limits.MinRampMWPerMin > 0 {
		evals = append(evals, c.evalRamp(cfg))
	}
	evals = append(evals, c.evalTimeline(cfg))

	rep := Report{Passed: true}
	for _, e := range evals {
		st := e.toStatus()
		rep.Constraints = append(rep.Constraints, st)
		if st.Violated {
			rep.Passed = false
			rep.Violations = append(rep.Violations, e.message)
		}
	}
	rep.Binding = overallBinding(rep.Constraints)
	return rep
}

// TimelineMonths returns the months to power for the configuration: the
// longest lead time across deployed technologies plus commissioning.
func (c *Checker) TimelineMonths(cfg model.EquipmentConfig) int {
	lead := 0
	consider := func(mw float64, tech string) {
		if mw <= 0 {
			return
		}
		if lt := c.catalog.MustSpec(tech).LeadTimeMonthsMax; lt > lead {
			lead = lt
		}
	}
	consider(cfg.RecipMW, model.TechRecip)
	consider(cfg.TurbineMW, model.TechTurbine)
	consider(cfg.BESSPowerMW, model.TechBESS)
	consider(cfg.SolarMWDC, model.TechSolar)
	consider(cfg.GridImportMW, model.TechGrid)
	if lead == 0 {
		return 0
	}
	return lead + c.commissioningMonths
}

// FleetRampMWPerMin sums the per-unit thermal ramp rates; BESS responds
// within seconds and counts at full power.
func (c *Checker) FleetRampMWPerMin(cfg model.EquipmentConfig) float64 {
	ramp := 0.0
	for _, t := range []struct {
		mw   float64
		tech string
	}{
		{cfg.RecipMW, model.TechRecip},
		{cfg.TurbineMW, model.TechTurbine},
	} {
		spec := c.catalog.MustSpec(t.tech)
		if t.mw <= 0 || spec.UnitCapacityMW <= 0 {
			continue
		}
		units := t.mw / spec.UnitCapacityMW
		ramp += units * spec.RampRateMWPerMin
	}
	return ramp + cfg.BESSPowerMW
}

// ParallelAvailability combines the independent firm supply paths:
// 1 - product of each path's unavailability.
func (c *Checker) ParallelAvailability(cfg model.EquipmentConfig) float64 {
	unavail := 1.0
	any := false
	for _, t := range []struct {
		mw   float64
		tech string
	}{
		{cfg.RecipMW, model.TechRecip},
		{cfg.TurbineMW, model.TechTurbine},
		{cfg.GridImportMW, model.TechGrid},
	} {
		if t.mw <= 0 {
			continue
		}
		any = true
		unavail *= 1 - c.catalog.MustSpec(t.tech).AvailabilityPct
	}
	if !any {
		return 0
	}
	return 1 - unavail
}

func (c *Checker) thermalEnergyMWh(cfg model.EquipmentConfig, dispatch *model.DispatchSummary) (recipMWh, turbineMWh float64) {
	if dispatch != nil && dispatch.CapacityFactors != nil {
		recipMWh = dispatch.CapacityFactors[model.TechRecip] * cfg.RecipMW * 8760
		turbineMWh = dispatch.CapacityFactors[model.TechTurbine] * cfg.TurbineMW * 8760
		return
	}
	recipMWh = cfg.RecipMW * assumedRecipCF * 8760
	turbineMWh = cfg.TurbineMW * assumedTurbineCF * 8760
	return
}

func (c *Checker) evalNOx(cfg model.EquipmentConfig, dispatch *model.DispatchSummary) evaluation {
	recipMWh, turbineMWh := c.thermalEnergyMWh(cfg, dispatch)
	tons := (recipMWh*c.catalog.MustSpec(model.TechRecip).NOxLbPerMWh +
		turbineMWh*c.catalog.MustSpec(model.TechTurbine).NOxLbPerMWh) / 2000
	return evaluation{
		name: "nox", value: tons, limit: c.limits.NOxTonsPerYear,
		dir: upperBound, tolerance: hardTolerance,
		message: fmt.Sprintf("NOx: %.1f tpy exceeds limit of %.0f tpy", tons, c.limits.NOxTonsPerYear),
	}
}

func (c *Checker) evalGas(cfg model.EquipmentConfig, dispatch *model.DispatchSummary) evaluation {
	var mcfDay float64
	if dispatch != nil && dispatch.GasMCF > 0 {
		mcfDay = dispatch.GasMCF / 365
	} else {
		recipMWh, turbineMWh := c.thermalEnergyMWh(cfg, dispatch)
		mcf := recipMWh*c.catalog.MustSpec(model.TechRecip).HeatRateBTUPerKWh/1000/1.037 +
			turbineMWh*c.catalog.MustSpec(model.TechTurbine).HeatRateBTUPerKWh/1000/1.037
		mcfDay = mcf / 365
	}
	return evaluation{
		name: "gas", value: mcfDay, limit: c.limits.GasMCFPerDay,
		dir: upperBound, tolerance: softTolerance,
		message: fmt.Sprintf("Gas: %.0f MCF/day exceeds supply of %.0f MCF/day", mcfDay, c.limits.GasMCFPerDay),
	}
}

func (c *Checker) evalLand(cfg model.EquipmentConfig) evaluation {
	used := cfg.LandAcres(c.catalog)
	return evaluation{
		name: "land", value: used, limit: c.limits.LandAcres,
		dir: upperBound, tolerance: softTolerance,
		message: fmt.Sprintf("Land: %.1f acres exceeds available %.0f acres", used, c.limits.LandAcres),
	}
}

func (c *Checker) evalN1(cfg model.EquipmentConfig, peakMW float64) evaluation {
	survivable := cfg.FirmCapacityMW() - cfg.LargestUnitMW(c.catalog)
	return evaluation{
		name: "n_minus_1", value: survivable, limit: peakMW,
		dir: lowerBound, tolerance: hardTolerance,
		message: fmt.Sprintf("N-1: %.1f MW after largest-unit loss is below peak %.1f MW", survivable, peakMW),
	}
}

func (c *Checker) evalAvailability(cfg model.EquipmentConfig) evaluation {
	avail := c.ParallelAvailability(cfg)
	return evaluation{
		name: "availability", value: avail, limit: c.limits.MinAvailabilityPct,
		dir: lowerBound, tolerance: hardTolerance,
		message: fmt.Sprintf("Availability: %.4f below required %.4f", avail, c.limits.MinAvailabilityPct),
	}
}

func (c *Checker) evalRamp(cfg model.EquipmentConfig) evaluation {
	ramp := c.FleetRampMWPerMin(cfg)
	return evaluation{
		name: "ramp", value: ramp, limit: c.limits.MinRampMWPerMin,
		dir: lowerBound, tolerance: softTolerance,
		message: fmt.Sprintf("Ramp: fleet %.1f MW/min below required %.1f MW/min", ramp, c.limits.MinRampMWPerMin),
	}
}

func (c *Checker) evalTimeline(cfg model.EquipmentConfig) evaluation {
	months := c.TimelineMonths(cfg)
	return evaluation{
		name: "timeline", value: float64(months), limit: float64(c.limits.TimelineMonthsMax),
		dir: upperBound, tolerance: hardTolerance,
		message: fmt.Sprintf("Timeline: %d months exceeds ceiling of %d months", months, c.limits.TimelineMonthsMax),
	}
}

func (e evaluation) toStatus() model.ConstraintStatus {
	st := model.ConstraintStatus{Name: e.name, Value: e.value, Limit: e.limit}
	if e.limit <= 0 {
		// Unconstrained: report the value with zero utilization.
		st.Status = StatusSlack
		return st
	}
	st.Utilization = e.value / e.limit
	switch e.dir {
	case upperBound:
		st.Violated = e.value > e.limit*(1+e.tolerance)
	case lowerBound:
		st.Violated = e.value < e.limit*(1-e.tolerance)
	}
	st.Binding = math.Abs(1-st.Utilization) <= 0.05
	switch {
	case st.Violated:
		st.Status = StatusViolated
	case st.Binding:
		st.Status = StatusBinding
	case math.Abs(1-st.Utilization) <= 0.20:
		st.Status = StatusNearBinding
	default:
		st.Status = StatusSlack
	}
	return st
}

// overallBinding picks the violated constraint with the greatest relative
// overshoot, or the one with utilization closest to 1 when nothing is
// violated.
func overallBinding(statuses []model.ConstraintStatus) string {
	name := ""
	worst := -1.0
	for _, st := range statuses {
		if !st.Violated || st.Limit <= 0 {
			continue
		}
		overshoot := math.Abs(st.Value-st.Limit) / st.Limit
		if overshoot > worst {
			worst = overshoot
			name = st.Name
		}
	}
	if name != "" {
		return name
	}
	closest := math.Inf(1)
	for _, st := range statuses {
		if st.Limit <= 0 {
			continue
		}
		if d := math.Abs(1 - st.Utilization); d < closest {
			closest = d
			name = st.Name
		}
	}
	return name
}
