package metrics

import (
	"time"

	"github.com/gridsmith/powerplan/core/model"
)

// SolveResult represents a completed solver run to be recorded.
type SolveResult struct {
	RunID             string
	Problem           model.ProblemType
	Feasible          bool
	ObjectiveValue    float64
	LCOE              float64
	CapexTotal        float64
	OpexAnnual        float64
	UnservedPct       float64
	BindingConstraint string
	TimelineMonths    int
	SolveTime         time.Duration
	Time              time.Time
}

// SolveSink records solver outcomes for observability purposes.
type SolveSink interface {
	RecordSolveResult(ev SolveResult) error
}

// YearDispatchEvent captures one simulated dispatch year.
type YearDispatchEvent struct {
	RunID           string
	Year            int
	PeakMW          float64
	RequiredMWh     float64
	DeliveredMWh    float64
	UnservedMWh     float64
	RecipCF         float64
	TurbineCF       float64
	SolarCF         float64
	FuelMMBtu       float64
	GasMCF          float64
	MaxRampMWPerMin float64
	Time            time.Time
}

// YearDispatchRecorder records per-year dispatch summaries.
type YearDispatchRecorder interface {
	RecordYearDispatch(ev YearDispatchEvent) error
}

// ConstraintEvent is a snapshot of one checked constraint.
type ConstraintEvent struct {
	RunID       string
	Name        string
	Utilization float64
	Status      string
	Time        time.Time
}

// ConstraintRecorder records constraint utilization snapshots.
type ConstraintRecorder interface {
	RecordConstraintStatus(evs []ConstraintEvent) error
}

// SolveLatency represents the wall time of one solver run.
type SolveLatency struct {
	Problem  model.ProblemType
	Feasible bool
	Latency  time.Duration
}

// LatencyRecorder is implemented by sinks able to record solve latency.
type LatencyRecorder interface {
	RecordSolveLatency(latencies []SolveLatency) error
}

// NopSink implements SolveSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolveResult(SolveResult) error { return nil }

func (NopSink) RecordYearDispatch(YearDispatchEvent) error     { return nil }
func (NopSink) RecordConstraintStatus([]ConstraintEvent) error { return nil }
func (NopSink) RecordSolveLatency([]SolveLatency) error        { return nil }

// ConstraintEvents flattens a checked constraint list into recordable events.
func ConstraintEvents(runID string, cs []model.ConstraintStatus, ts time.Time) []ConstraintEvent {
	out := make([]ConstraintEvent, 0, len(cs))
	for _, c := range cs {
		out = append(out, ConstraintEvent{
			RunID:       runID,
			Name:        c.Name,
			Utilization: c.Utilization,
			Status:      c.Status,
			Time:        ts,
		})
	}
	return out
}
