package metrics

import (
	"context"
	"time"

	"github.com/gridsmith/powerplan/core/events"
	coremetrics "github.com/gridsmith/powerplan/core/metrics"
	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// solver events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.SolveSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.SolveCompleted:
					res := e.Result
					if res == nil {
						continue
					}
					_ = sink.RecordSolveResult(coremetrics.SolveResult{
						RunID:             e.RunID,
						Problem:           e.Problem,
						Feasible:          res.Feasible,
						ObjectiveValue:    float64(res.ObjectiveValue),
						LCOE:              float64(res.LCOE),
						CapexTotal:        res.CapexTotal,
						OpexAnnual:        res.OpexAnnual,
						UnservedPct:       res.UnservedPct,
						BindingConstraint: res.BindingConstraint,
						TimelineMonths:    res.TimelineMonths,
						SolveTime:         e.Duration,
						Time:              time.Now(),
					})
					if lr, ok := sink.(coremetrics.LatencyRecorder); ok {
						_ = lr.RecordSolveLatency([]coremetrics.SolveLatency{{
							Problem:  e.Problem,
							Feasible: res.Feasible,
							Latency:  e.Duration,
						}})
					}
				case events.YearSimulated:
					if r, ok := sink.(coremetrics.YearDispatchRecorder); ok {
						sum := e.Summary
						_ = r.RecordYearDispatch(coremetrics.YearDispatchEvent{
							RunID:           e.RunID,
							Year:            e.Year,
							PeakMW:          e.PeakMW,
							RequiredMWh:     sum.EnergyRequiredMWh,
							DeliveredMWh:    sum.EnergyDeliveredMWh,
							UnservedMWh:     sum.UnservedEnergyMWh,
							RecipCF:         sum.CapacityFactors[model.TechRecip],
							TurbineCF:       sum.CapacityFactors[model.TechTurbine],
							SolarCF:         sum.CapacityFactors[model.TechSolar],
							FuelMMBtu:       sum.FuelMMBtu,
							GasMCF:          sum.GasMCF,
							MaxRampMWPerMin: sum.MaxRampMWPerMin,
							Time:            time.Now(),
						})
					}
				case events.ConstraintsChecked:
					if r, ok := sink.(coremetrics.ConstraintRecorder); ok {
						_ = r.RecordConstraintStatus(coremetrics.ConstraintEvents(e.RunID, e.Constraints, time.Now()))
					}
				}
			}
		}
	}()
}
