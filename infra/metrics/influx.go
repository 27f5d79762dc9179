package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/gridsmith/powerplan/core/metrics"
	"github.com/gridsmith/powerplan/infra/logger"
)

// InfluxSink writes solver events to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.SolveSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSolveResult writes the solver outcome as a line protocol point.
func (s *InfluxSink) RecordSolveResult(ev coremetrics.SolveResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("solve_result").
		AddTag("problem", ev.Problem.String()).
		AddTag("feasible", strconv.FormatBool(ev.Feasible)).
		AddTag("run_id", ev.RunID).
		AddTag("component", "solver").
		AddField("capex_usd", round3(ev.CapexTotal)).
		AddField("opex_usd", round3(ev.OpexAnnual)).
		AddField("unserved_pct", round3(ev.UnservedPct)).
		AddField("timeline_months", ev.TimelineMonths).
		AddField("solve_time_ms", round3(ev.SolveTime.Seconds()*1000))
	if isFinite(ev.ObjectiveValue) {
		p = p.AddField("objective_value", round3(ev.ObjectiveValue))
	}
	if isFinite(ev.LCOE) {
		p = p.AddField("lcoe_usd_mwh", round3(ev.LCOE))
	}
	if ev.BindingConstraint != "" {
		p = p.AddTag("binding_constraint", ev.BindingConstraint)
	}
	p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordYearDispatch writes one simulated trajectory year.
func (s *InfluxSink) RecordYearDispatch(ev coremetrics.YearDispatchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dispatch_year").
		AddTag("run_id", ev.RunID).
		AddTag("year", strconv.Itoa(ev.Year)).
		AddTag("component", "solver").
		AddField("peak_mw", round3(ev.PeakMW)).
		AddField("required_mwh", round3(ev.RequiredMWh)).
		AddField("delivered_mwh", round3(ev.DeliveredMWh)).
		AddField("unserved_mwh", round3(ev.UnservedMWh)).
		AddField("recip_cf", round3(ev.RecipCF)).
		AddField("turbine_cf", round3(ev.TurbineCF)).
		AddField("solar_cf", round3(ev.SolarCF)).
		AddField("fuel_mmbtu", round3(ev.FuelMMBtu)).
		AddField("gas_mcf", round3(ev.GasMCF)).
		AddField("max_ramp_mw_min", round3(ev.MaxRampMWPerMin)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordConstraintStatus writes one point per checked constraint.
func (s *InfluxSink) RecordConstraintStatus(evs []coremetrics.ConstraintEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, ev := range evs {
		p := write.NewPointWithMeasurement("constraint_status").
			AddTag("run_id", ev.RunID).
			AddTag("name", ev.Name).
			AddTag("status", ev.Status).
			AddTag("component", "constraints").
			AddField("utilization", round3(ev.Utilization)).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func isFinite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
