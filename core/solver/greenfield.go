package solver

import (
	"context"
	"time"

	"github.com/gridsmith/powerplan/core/constraints"
	"github.com/gridsmith/powerplan/core/dispatch"
	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/stack"
)

// Screening sensitivities for binding site limits, expressed as objective
// improvement per unit of relaxed limit.
const (
	shadowNOxPerTon    = 3.0
	shadowGasPerMCFDay = 0.005
)

// Greenfield sizes a generation fleet for the full load trajectory and
// minimizes blended LCOE, with the value of lost load folded into the
// objective so undersized fleets price their unserved energy.
type Greenfield struct {
	in Inputs
}

func (g *Greenfield) Name() string { return model.ProblemGreenfield.String() }

func (g *Greenfield) Optimize(ctx context.Context) (*model.HeuristicResult, error) {
	start := time.Now()
	res := model.NewResult(model.ProblemGreenfield)

	st, err := g.in.Stack.Build(ctx, g.in.Load)
	if err != nil {
		return nil, err
	}
	final := st.FinalConfig

	var (
		totalRequired float64
		activeYears   int
		maxRamp       float64
		finalStarts   map[string]int
	)
	for _, y := range st.Years {
		totalRequired += y.Dispatch.EnergyRequiredMWh
		if y.Dispatch.EnergyRequiredMWh > 0 {
			activeYears++
			finalStarts = y.Dispatch.StartsPerYear
		}
		if y.Dispatch.MaxRampMWPerMin > maxRamp {
			maxRamp = y.Dispatch.MaxRampMWPerMin
		}
	}
	if activeYears == 0 {
		activeYears = 1
	}
	avgEnergy := st.TotalDeliveredMWh / float64(activeYears)
	avgUnserved := st.TotalUnservedMWh / float64(activeYears)

	lcoe := st.BlendedLCOE
	objective := g.in.Calc.VOLLAdjustedCost(lcoe, avgUnserved, avgEnergy)

	avg := averageDispatch(st, final)
	rep := g.in.Checker.Check(final, st.PeakMW, &avg)
	res.Constraints = rep.Constraints
	res.Violations = append(res.Violations, rep.Violations...)
	res.BindingConstraint = rep.Binding
	res.Feasible = rep.Passed
	for _, c := range rep.Constraints {
		if c.Status == constraints.StatusNearBinding {
			res.Warn("%s: %.1f%% utilization", c.Name, c.Utilization*100)
		}
	}

	res.Equipment = final
	res.LCOE = model.JSONFloat(lcoe)
	res.ObjectiveValue = model.JSONFloat(objective)
	res.CapexTotal = st.TotalCapex
	res.OpexAnnual = g.in.Calc.AnnualOpex(final, nil)
	res.TimelineMonths = g.in.Checker.TimelineMonths(final)

	res.EnergyDeliveredMWh = st.TotalDeliveredMWh
	res.UnservedEnergyMWh = st.TotalUnservedMWh
	if totalRequired > 0 {
		res.UnservedPct = st.TotalUnservedMWh / totalRequired * 100
	}
	res.Dispatch = model.DispatchSummary{
		EnergyRequiredMWh:  totalRequired,
		EnergyDeliveredMWh: st.TotalDeliveredMWh,
		UnservedEnergyMWh:  st.TotalUnservedMWh,
		UnservedPct:        res.UnservedPct,
		CapacityFactors:    avg.CapacityFactors,
		StartsPerYear:      finalStarts,
		FuelMMBtu:          avg.FuelMMBtu,
		GasMCF:             avg.GasMCF,
		MaxRampMWPerMin:    maxRamp,
	}

	res.Details["annual_stack"] = st.Years
	res.Details["load_coverage_pct"] = 100 - res.UnservedPct
	res.Details["land_allocation"] = g.in.Land.Allocate(g.in.Limits.LandAcres, st.PeakMW, final)

	rampRequired := g.in.Load.RequiredRampMWPerMin(st.PeakMW, g.in.Workloads)
	rampCapacity := g.in.Checker.FleetRampMWPerMin(final)
	res.Details["ramp_analysis"] = map[string]float64{
		"max_ramp_observed_mw_min": maxRamp,
		"ramp_required_mw_min":     rampRequired,
		"ramp_capacity_mw_min":     rampCapacity,
		"ramp_margin_mw_min":       rampCapacity - rampRequired,
	}

	shadow := map[string]float64{}
	for _, c := range rep.Constraints {
		if !c.Binding {
			continue
		}
		switch c.Name {
		case "nox":
			shadow["nox_tpy"] = shadowNOxPerTon * lcoe * dispatch.HoursPerYear * constraints.ScreeningCF / 1000
		case "gas":
			shadow["gas_mcf_day"] = shadowGasPerMCFDay * lcoe * dispatch.HoursPerYear * constraints.ScreeningCF / 1000
		}
	}
	if len(shadow) > 0 {
		res.Details["shadow_prices"] = shadow
	}

	res.SolveTimeSeconds = time.Since(start).Seconds()
	g.in.Log.Debugw("greenfield solved", map[string]any{
		"feasible":     res.Feasible,
		"blended_lcoe": lcoe,
		"objective":    objective,
		"peak_mw":      st.PeakMW,
		"unserved_mwh": st.TotalUnservedMWh,
	})
	return res, nil
}

// averageDispatch condenses the per-year dispatch summaries into one annual
// record against the final fleet, which the checker prices emissions and gas
// draw from.
func averageDispatch(st *stack.Result, final model.EquipmentConfig) model.DispatchSummary {
	var recipMWh, turbineMWh, gasMCF, fuel float64
	active := 0
	for _, y := range st.Years {
		if y.Dispatch.EnergyRequiredMWh <= 0 {
			continue
		}
		active++
		recipMWh += y.Dispatch.CapacityFactors[model.TechRecip] * y.Config.RecipMW * dispatch.HoursPerYear
		turbineMWh += y.Dispatch.CapacityFactors[model.TechTurbine] * y.Config.TurbineMW * dispatch.HoursPerYear
		gasMCF += y.Dispatch.GasMCF
		fuel += y.Dispatch.FuelMMBtu
	}
	if active == 0 {
		return model.DispatchSummary{}
	}
	n := float64(active)
	cfs := map[string]float64{}
	if final.RecipMW > 0 {
		cfs[model.TechRecip] = recipMWh / n / (final.RecipMW * dispatch.HoursPerYear)
	}
	if final.TurbineMW > 0 {
		cfs[model.TechTurbine] = turbineMWh / n / (final.TurbineMW * dispatch.HoursPerYear)
	}
	return model.DispatchSummary{
		CapacityFactors: cfs,
		GasMCF:          gasMCF / n,
		FuelMMBtu:       fuel / n,
	}
}
