package metrics

import (
	"math"
	"strconv"

	coremetrics "github.com/gridsmith/powerplan/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records solver events in Prometheus metrics.
type PromSink struct {
	solves      *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	lcoe        *prometheus.GaugeVec
	objective   *prometheus.GaugeVec
	unserved    *prometheus.GaugeVec
	capex       *prometheus.GaugeVec
	utilization *prometheus.GaugeVec
	statuses    *prometheus.CounterVec
	yearEnergy  *prometheus.GaugeVec
}

// register adds c to reg, reusing an already registered collector of the same
// identity.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(C), nil
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// NewPromSink registers solver metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.SolveSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.SolveSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var s PromSink
	var err error
	if s.solves, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solve_runs_total",
		Help: "Total number of solver runs",
	}, []string{"problem", "feasible"})); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solve_duration_seconds",
		Help:    "Wall time of a solver run",
		Buckets: prometheus.DefBuckets,
	}, []string{"problem", "feasible"})); err != nil {
		return nil, err
	}
	if s.lcoe, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solve_lcoe_usd_per_mwh",
		Help: "Levelized cost of energy from the latest run",
	}, []string{"problem"})); err != nil {
		return nil, err
	}
	if s.objective, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solve_objective_value",
		Help: "Objective value from the latest run",
	}, []string{"problem"})); err != nil {
		return nil, err
	}
	if s.unserved, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solve_unserved_pct",
		Help: "Unserved energy percentage from the latest run",
	}, []string{"problem"})); err != nil {
		return nil, err
	}
	if s.capex, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solve_capex_usd",
		Help: "Total capital cost from the latest run",
	}, []string{"problem"})); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "constraint_utilization",
		Help: "Constraint utilization from the latest check",
	}, []string{"name"})); err != nil {
		return nil, err
	}
	if s.statuses, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "constraint_status_total",
		Help: "Constraint status occurrences",
	}, []string{"name", "status"})); err != nil {
		return nil, err
	}
	if s.yearEnergy, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dispatch_year_unserved_mwh",
		Help: "Unserved energy per simulated trajectory year",
	}, []string{"year"})); err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordSolveResult increments the run counter and updates outcome gauges.
// Non-finite cost values are skipped.
func (s *PromSink) RecordSolveResult(ev coremetrics.SolveResult) error {
	problem := ev.Problem.String()
	s.solves.WithLabelValues(problem, strconv.FormatBool(ev.Feasible)).Inc()
	if !math.IsInf(ev.LCOE, 0) && !math.IsNaN(ev.LCOE) {
		s.lcoe.WithLabelValues(problem).Set(ev.LCOE)
	}
	if !math.IsInf(ev.ObjectiveValue, 0) && !math.IsNaN(ev.ObjectiveValue) {
		s.objective.WithLabelValues(problem).Set(ev.ObjectiveValue)
	}
	s.unserved.WithLabelValues(problem).Set(ev.UnservedPct)
	s.capex.WithLabelValues(problem).Set(ev.CapexTotal)
	return nil
}

// RecordSolveLatency records the solve duration histogram.
func (s *PromSink) RecordSolveLatency(recs []coremetrics.SolveLatency) error {
	for _, r := range recs {
		s.latency.WithLabelValues(r.Problem.String(), strconv.FormatBool(r.Feasible)).Observe(r.Latency.Seconds())
	}
	return nil
}

// RecordConstraintStatus updates per-constraint gauges and counters.
func (s *PromSink) RecordConstraintStatus(evs []coremetrics.ConstraintEvent) error {
	for _, ev := range evs {
		s.utilization.WithLabelValues(ev.Name).Set(ev.Utilization)
		s.statuses.WithLabelValues(ev.Name, ev.Status).Inc()
	}
	return nil
}

// RecordYearDispatch sets the per-year unserved energy gauge.
func (s *PromSink) RecordYearDispatch(ev coremetrics.YearDispatchEvent) error {
	s.yearEnergy.WithLabelValues(strconv.Itoa(ev.Year)).Set(ev.UnservedMWh)
	return nil
}
