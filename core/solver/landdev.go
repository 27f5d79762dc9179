package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/gridsmith/powerplan/core/constraints"
	"github.com/gridsmith/powerplan/core/dispatch"
	"github.com/gridsmith/powerplan/core/economics"
	"github.com/gridsmith/powerplan/core/model"
)

// Flexibility levels the servable-load matrix is evaluated at.
var flexScenarios = []float64{0, 0.15, 0.30, 0.50}

// FlexScenario is one row of the servable-load matrix: how much load the
// site's firm capacity can carry when the given share of it is flexible.
type FlexScenario struct {
	LoadMaxMW         float64         `json:"load_max_mw"`
	FirmCapacityMW    float64         `json:"firm_capacity_mw"`
	LCOE              model.JSONFloat `json:"lcoe"`
	BindingConstraint string          `json:"binding_constraint"`
}

// LandDev answers how much firm capacity a site supports under its NOx, gas
// and land limits, and how far workload flexibility stretches that capacity
// into servable load. The objective is the firm MW.
type LandDev struct {
	in Inputs
}

func (l *LandDev) Name() string { return model.ProblemLandDev.String() }

func (l *LandDev) Optimize(ctx context.Context) (*model.HeuristicResult, error) {
	start := time.Now()
	res := model.NewResult(model.ProblemLandDev)

	caps := constraints.DeriveFirmCaps(l.in.Limits, l.in.Catalog)
	maxFirm, binding := caps.MaxFirmMW()
	if math.IsInf(maxFirm, 1) {
		res.Infeasible("site limits missing: a NOx, gas or land cap is required")
		res.SolveTimeSeconds = time.Since(start).Seconds()
		return res, nil
	}

	align := l.in.LandDev.AlignmentFactor
	equipment := l.in.Sizer.SizeToLoad(maxFirm, false)

	matrix := make(map[string]FlexScenario, len(flexScenarios))
	for _, flex := range flexScenarios {
		loadMax := maxFirm
		if flex > 0 {
			loadMax = maxFirm / (1 - flex*align)
		}
		lcoe, _ := l.in.Calc.LCOE(equipment, loadMax*dispatch.HoursPerYear*constraints.ScreeningCF, nil)
		matrix[fmt.Sprintf("%.0f%%", flex*100)] = FlexScenario{
			LoadMaxMW:         loadMax,
			FirmCapacityMW:    maxFirm,
			LCOE:              model.JSONFloat(lcoe),
			BindingConstraint: binding,
		}
	}

	// Price the plan off a simulated year when the scenario brings a load,
	// otherwise off the firm capacity at the screening utilization.
	peak := l.in.Load.PeakMW()
	var (
		lcoe    float64
		details economics.LCOEDetails
	)
	if peak > 0 {
		dr, err := l.in.simulateYear(equipment, peak)
		if err != nil {
			return nil, err
		}
		lcoe, details = l.in.Calc.LCOE(equipment, dr.EnergyDeliveredMWh, dr.GenerationMWh)
		res.Dispatch = dr.Summary()
		res.EnergyDeliveredMWh = dr.EnergyDeliveredMWh
		res.UnservedEnergyMWh = dr.UnservedEnergyMWh
		res.UnservedPct = dr.UnservedPct
	} else {
		lcoe, details = l.in.Calc.LCOE(equipment, maxFirm*dispatch.HoursPerYear*constraints.ScreeningCF, nil)
		res.EnergyDeliveredMWh = details.DeliveredMWh
	}
	res.Warnings = append(res.Warnings, details.Warnings...)

	rep := l.in.Checker.Check(equipment, peak, nil)
	res.Constraints = rep.Constraints
	res.Violations = append(res.Violations, rep.Violations...)
	res.Feasible = rep.Passed
	// The governing cap is the story here, not whatever the checker found
	// closest to its limit.
	res.BindingConstraint = binding

	res.ObjectiveValue = model.JSONFloat(maxFirm)
	res.LCOE = model.JSONFloat(lcoe)
	res.CapexTotal = l.in.Calc.Capex(equipment)
	res.OpexAnnual = l.in.Calc.AnnualOpex(equipment, nil)
	res.Equipment = equipment
	res.TimelineMonths = l.in.Checker.TimelineMonths(equipment)

	res.Details["flexibility_scenarios"] = matrix
	res.Details["binding_constraint"] = binding
	res.Details["max_firm_capacity_mw"] = maxFirm

	res.SolveTimeSeconds = time.Since(start).Seconds()
	l.in.Log.Debugw("land development solved", map[string]any{
		"max_firm_mw": maxFirm,
		"binding":     binding,
		"lcoe":        lcoe,
	})
	return res, nil
}
