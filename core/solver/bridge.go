package solver

import (
	"context"
	"math"
	"time"

	"github.com/gridsmith/powerplan/core/model"
)

// Scenario labels, in tie-break order.
const (
	scenarioAllRental   = "all_rental"
	scenarioAllPurchase = "all_purchase"
	scenarioHybrid      = "hybrid"
)

// crossoverSentinel stands in for a crossover month when rental never costs
// more per month than owning.
const crossoverSentinel = 999.0

// BridgePower compares renting temporary generation against buying a fleet
// to carry the load until grid interconnection arrives, on monthly
// discounted cash flows. The objective is the minimum transition NPV.
type BridgePower struct {
	in Inputs
}

func (b *BridgePower) Name() string { return model.ProblemBridgePower.String() }

func (b *BridgePower) Optimize(ctx context.Context) (*model.HeuristicResult, error) {
	start := time.Now()
	res := model.NewResult(model.ProblemBridgePower)
	opts := b.in.Bridge

	peak := b.in.Load.PeakMW()
	monthlyRate := b.in.Calc.Assumptions().DiscountRate / 12
	months := opts.GridAvailableMonth

	// Month zero pays undiscounted; the residual credit lands at handover.
	rentalMonthly := peak * 1000 * opts.RentalRatePerKWMonth
	rentalNPV := 0.0
	for m := 0; m < months; m++ {
		rentalNPV += rentalMonthly / math.Pow(1+monthlyRate, float64(m))
	}

	purchase := b.in.Sizer.SizeToLoad(peak, b.in.Limits.RequireN1)
	capex := b.in.Calc.Capex(purchase)
	residual := capex * opts.ResidualValuePct
	opexAnnual := b.in.Calc.AnnualOpex(purchase, nil)
	opexMonthly := opexAnnual / 12
	purchaseNPV := capex
	for m := 0; m < months; m++ {
		purchaseNPV += opexMonthly / math.Pow(1+monthlyRate, float64(m))
	}
	purchaseNPV -= residual / math.Pow(1+monthlyRate, float64(months))

	crossover := crossoverSentinel
	if denom := rentalMonthly - opexMonthly; denom > 0 {
		crossover = (capex - residual) / denom
	}

	scenarios := map[string]float64{
		scenarioAllRental:   rentalNPV,
		scenarioAllPurchase: purchaseNPV,
		scenarioHybrid:      math.Min(rentalNPV, purchaseNPV),
	}
	best := scenarioAllRental
	for _, name := range []string{scenarioAllRental, scenarioAllPurchase, scenarioHybrid} {
		if scenarios[name] < scenarios[best] {
			best = name
		}
	}
	bestNPV := scenarios[best]

	res.Feasible = true
	res.ObjectiveValue = model.JSONFloat(bestNPV)
	res.LCOE = 0
	if best == scenarioAllPurchase {
		res.CapexTotal = capex
	}
	if best != scenarioAllRental {
		res.OpexAnnual = opexAnnual
	}
	res.Equipment = purchase
	res.TimelineMonths = months
	res.Warnings = append(res.Warnings, "Transition timing is indicative only")

	res.Details["scenarios"] = scenarios
	res.Details["recommended"] = best
	res.Details["npv"] = bestNPV
	res.Details["crossover_months"] = crossover
	res.Details["grid_available_month"] = months

	res.SolveTimeSeconds = time.Since(start).Seconds()
	b.in.Log.Debugw("bridge power solved", map[string]any{
		"recommended":      best,
		"npv":              bestNPV,
		"crossover_months": crossover,
		"months":           months,
	})
	return res, nil
}
