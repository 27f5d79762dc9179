package solver

import (
	"context"
	"math"
	"time"

	"github.com/gridsmith/powerplan/core/constraints"
	"github.com/gridsmith/powerplan/core/dispatch"
	"github.com/gridsmith/powerplan/core/economics"
	"github.com/gridsmith/powerplan/core/model"
)

// Brownfield answers how much new capacity fits next to an incumbent fleet
// while the combined cost of energy stays under a hard ceiling. The
// objective is the expansion MW itself, not cost.
type Brownfield struct {
	in Inputs
}

func (b *Brownfield) Name() string { return model.ProblemBrownfield.String() }

func (b *Brownfield) Optimize(ctx context.Context) (*model.HeuristicResult, error) {
	start := time.Now()
	res := model.NewResult(model.ProblemBrownfield)
	opts := b.in.Brownfield

	existingMW := opts.Existing.FirmCapacityMW()
	if opts.LCOEThreshold-opts.ExistingLCOE <= 0 {
		res.Feasible = false
		res.ObjectiveValue = 0
		res.LCOE = model.JSONFloat(opts.ExistingLCOE)
		res.Violations = append(res.Violations, "LCOE ceiling already reached")
		res.Warnings = append(res.Warnings, "No expansion possible")
		res.Details["max_expansion_mw"] = 0.0
		res.Details["existing_mw"] = existingMW
		res.Details["lcoe_threshold"] = opts.LCOEThreshold
		res.SolveTimeSeconds = time.Since(start).Seconds()
		return res, nil
	}

	var (
		equipment   model.EquipmentConfig
		lcoe        float64
		underCap    bool
		expansionMW float64
	)
	peak := b.in.Load.PeakMW()
	if len(b.in.Load.Years) > 1 {
		st, err := b.in.Stack.Build(ctx, b.in.Load)
		if err != nil {
			return nil, err
		}
		equipment = st.FinalConfig
		lcoe = st.BlendedLCOE
		expansionMW = equipment.TotalCapacityMW() - existingMW
		underCap = lcoe <= opts.LCOEThreshold
		if !underCap {
			res.Warn("Blended LCOE $%.1f/MWh exceeds ceiling $%.1f/MWh", lcoe, opts.LCOEThreshold)
		}
		last := st.Years[len(st.Years)-1]
		res.EnergyDeliveredMWh = last.DeliveredMWh
		res.UnservedEnergyMWh = last.UnservedMWh
		res.UnservedPct = last.Dispatch.UnservedPct
		res.Dispatch = last.Dispatch
	} else {
		// Expand to half the peak or to the remaining site headroom,
		// whichever is smaller. N-1 already holds on the incumbent side.
		target := math.Min(peak*0.5, peak-existingMW)
		added := b.in.Sizer.SizeToLoad(target, false)
		equipment = opts.Existing.Add(added)
		expansionMW = added.TotalCapacityMW()

		annualMWh := peak * dispatch.HoursPerYear * constraints.ScreeningCF
		var details economics.LCOEDetails
		lcoe, details = b.in.Calc.LCOE(equipment, annualMWh, nil)
		res.Warnings = append(res.Warnings, details.Warnings...)
		underCap = lcoe <= opts.LCOEThreshold
		res.EnergyDeliveredMWh = details.DeliveredMWh
	}

	rep := b.in.Checker.Check(equipment, peak, nil)
	res.Constraints = rep.Constraints
	res.Violations = append(res.Violations, rep.Violations...)
	res.BindingConstraint = rep.Binding
	res.Feasible = underCap && rep.Passed

	res.ObjectiveValue = model.JSONFloat(expansionMW)
	res.LCOE = model.JSONFloat(lcoe)
	res.CapexTotal = b.in.Calc.Capex(equipment)
	res.OpexAnnual = b.in.Calc.AnnualOpex(equipment, nil)
	res.Equipment = equipment
	res.TimelineMonths = b.in.Checker.TimelineMonths(equipment)

	res.Details["max_expansion_mw"] = expansionMW
	res.Details["blended_lcoe"] = lcoe
	res.Details["existing_mw"] = existingMW
	res.Details["lcoe_threshold"] = opts.LCOEThreshold

	res.SolveTimeSeconds = time.Since(start).Seconds()
	b.in.Log.Debugw("brownfield solved", map[string]any{
		"feasible":     res.Feasible,
		"expansion_mw": expansionMW,
		"lcoe":         lcoe,
		"ceiling":      opts.LCOEThreshold,
	})
	return res, nil
}
