package metrics

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/gridsmith/powerplan/core/metrics"
	"github.com/gridsmith/powerplan/core/model"
)

func TestPromSink_RecordSolveResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	ev := coremetrics.SolveResult{
		RunID:          "r1",
		Problem:        model.ProblemGreenfield,
		Feasible:       true,
		ObjectiveValue: 90.2,
		LCOE:           84.7,
		CapexTotal:     2e8,
		UnservedPct:    0.1,
		Time:           time.Now(),
	}
	if err := sink.RecordSolveResult(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if err := sink.RecordSolveLatency([]coremetrics.SolveLatency{{
		Problem:  model.ProblemGreenfield,
		Feasible: true,
		Latency:  150 * time.Millisecond,
	}}); err != nil {
		t.Fatalf("latency error: %v", err)
	}

	expected := `
# HELP solve_runs_total Total number of solver runs
# TYPE solve_runs_total counter
solve_runs_total{feasible="true",problem="greenfield"} 1
`
	if err := testutil.CollectAndCompare(sink.solves, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	expectedLCOE := `
# HELP solve_lcoe_usd_per_mwh Levelized cost of energy from the latest run
# TYPE solve_lcoe_usd_per_mwh gauge
solve_lcoe_usd_per_mwh{problem="greenfield"} 84.7
`
	if err := testutil.CollectAndCompare(sink.lcoe, strings.NewReader(expectedLCOE)); err != nil {
		t.Errorf("unexpected lcoe: %v", err)
	}

	if c := testutil.CollectAndCount(sink.latency); c == 0 {
		t.Errorf("latency not recorded")
	}
}

func TestPromSink_SkipsInfiniteLCOE(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink := sinkIf.(*PromSink)
	ev := coremetrics.SolveResult{Problem: model.ProblemGreenfield, LCOE: math.Inf(1)}
	if err := sink.RecordSolveResult(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if c := testutil.CollectAndCount(sink.lcoe); c != 0 {
		t.Errorf("infinite LCOE must not set the gauge")
	}
}

func TestPromSink_ConstraintStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink := sinkIf.(*PromSink)
	evs := []coremetrics.ConstraintEvent{
		{RunID: "r1", Name: "nox_tpy", Utilization: 0.95, Status: "binding"},
		{RunID: "r1", Name: "gas_mcf_day", Utilization: 0.2, Status: "slack"},
	}
	if err := sink.RecordConstraintStatus(evs); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP constraint_utilization Constraint utilization from the latest check
# TYPE constraint_utilization gauge
constraint_utilization{name="gas_mcf_day"} 0.2
constraint_utilization{name="nox_tpy"} 0.95
`
	if err := testutil.CollectAndCompare(sink.utilization, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.statuses); c != 2 {
		t.Errorf("expected 2 status series, got %d", c)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second create should reuse collectors: %v", err)
	}
}
