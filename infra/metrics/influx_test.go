package metrics

import (
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/gridsmith/powerplan/core/metrics"
	"github.com/gridsmith/powerplan/core/model"
)

func captureServer(t *testing.T, bodies *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		*bodies = append(*bodies, strings.TrimSpace(string(data)))
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestInfluxSink_RecordSolveResult(t *testing.T) {
	var bodies []string
	srv := captureServer(t, &bodies)
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.SolveResult{
		RunID:             "r1",
		Problem:           model.ProblemGreenfield,
		Feasible:          true,
		ObjectiveValue:    85.1,
		LCOE:              82.5,
		CapexTotal:        1.5e8,
		OpexAnnual:        2.1e7,
		UnservedPct:       0.42,
		BindingConstraint: "nox_tpy",
		TimelineMonths:    24,
		SolveTime:         150 * time.Millisecond,
		Time:              now,
	}
	if err := sink.RecordSolveResult(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p := write.NewPointWithMeasurement("solve_result").
		AddTag("problem", "greenfield").
		AddTag("feasible", "true").
		AddTag("run_id", "r1").
		AddTag("component", "solver").
		AddField("capex_usd", 1.5e8).
		AddField("opex_usd", 2.1e7).
		AddField("unserved_pct", 0.42).
		AddField("timeline_months", 24).
		AddField("solve_time_ms", 150.0).
		AddField("objective_value", 85.1).
		AddField("lcoe_usd_mwh", 82.5).
		AddTag("binding_constraint", "nox_tpy")
	p.SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(bodies) != 1 || bodies[0] != expected {
		t.Errorf("unexpected body:\n got %s\nwant %s", bodies, expected)
	}
}

func TestInfluxSink_SkipsNonFiniteCosts(t *testing.T) {
	var bodies []string
	srv := captureServer(t, &bodies)
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	ev := coremetrics.SolveResult{
		RunID:   "r2",
		Problem: model.ProblemGreenfield,
		LCOE:    math.Inf(1),
		Time:    time.Now(),
	}
	if err := sink.RecordSolveResult(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(bodies) != 1 {
		t.Fatalf("expected 1 write, got %d", len(bodies))
	}
	if strings.Contains(bodies[0], "lcoe_usd_mwh") {
		t.Errorf("infinite LCOE must be skipped: %s", bodies[0])
	}
}

func TestInfluxSink_RecordYearDispatch(t *testing.T) {
	var bodies []string
	srv := captureServer(t, &bodies)
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.YearDispatchEvent{
		RunID:           "r1",
		Year:            2027,
		PeakMW:          120,
		RequiredMWh:     893520,
		DeliveredMWh:    893000,
		UnservedMWh:     520,
		RecipCF:         0.61,
		TurbineCF:       0.55,
		SolarCF:         0.24,
		FuelMMBtu:       5.2e6,
		GasMCF:          5e6,
		MaxRampMWPerMin: 9.3,
		Time:            now,
	}
	if err := sink.RecordYearDispatch(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p := write.NewPointWithMeasurement("dispatch_year").
		AddTag("run_id", "r1").
		AddTag("year", "2027").
		AddTag("component", "solver").
		AddField("peak_mw", 120.0).
		AddField("required_mwh", 893520.0).
		AddField("delivered_mwh", 893000.0).
		AddField("unserved_mwh", 520.0).
		AddField("recip_cf", 0.61).
		AddField("turbine_cf", 0.55).
		AddField("solar_cf", 0.24).
		AddField("fuel_mmbtu", 5.2e6).
		AddField("gas_mcf", 5e6).
		AddField("max_ramp_mw_min", 9.3).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(bodies) != 1 || bodies[0] != expected {
		t.Errorf("unexpected body:\n got %s\nwant %s", bodies, expected)
	}
}

func TestInfluxSink_RecordConstraintStatus(t *testing.T) {
	var bodies []string
	srv := captureServer(t, &bodies)
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	evs := []coremetrics.ConstraintEvent{
		{RunID: "r1", Name: "nox_tpy", Utilization: 0.97, Status: "binding", Time: now},
		{RunID: "r1", Name: "land_acres", Utilization: 0.4, Status: "slack", Time: now},
	}
	if err := sink.RecordConstraintStatus(evs); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(bodies))
	}
	if !strings.Contains(bodies[0], "nox_tpy") || !strings.Contains(bodies[1], "land_acres") {
		t.Errorf("bodies: %#v", bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
