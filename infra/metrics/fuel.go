package metrics

import (
	"strconv"

	core "github.com/gridsmith/powerplan/core/metrics"
	"github.com/gridsmith/powerplan/core/metrics/fuel"
	"github.com/prometheus/client_golang/prometheus"
)

// FuelSink records simulated dispatch years as fuel and emissions KPIs.
type FuelSink struct {
	store  fuel.Store
	factor float64
	gas    *prometheus.GaugeVec
	co2    *prometheus.GaugeVec
	rate   *prometheus.GaugeVec
}

// NewFuelSink creates a sink with Prometheus gauges registered on reg.
func NewFuelSink(store fuel.Store, factor float64, reg prometheus.Registerer) *FuelSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gas := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solve_year_gas_mcf",
		Help: "Gas burned per run and trajectory year",
	}, []string{"run_id", "year"})
	co2 := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solve_year_co2_tons",
		Help: "CO2 emitted per run and trajectory year",
	}, []string{"run_id", "year"})
	rate := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "solve_year_gas_intensity_mcf_per_mwh",
		Help: "Gas burned per MWh delivered",
	}, []string{"run_id", "year"})
	reg.MustRegister(gas, co2, rate)
	return &FuelSink{store: store, factor: factor, gas: gas, co2: co2, rate: rate}
}

// RecordSolveResult is a no-op; the sink aggregates per-year events.
func (s *FuelSink) RecordSolveResult(core.SolveResult) error { return nil }

// RecordYearDispatch folds the dispatch year into the KPI store and updates
// the gauges with the aggregated totals.
func (s *FuelSink) RecordYearDispatch(ev core.YearDispatchEvent) error {
	rec := fuel.Record{
		RunID:        ev.RunID,
		Year:         ev.Year,
		DeliveredMWh: ev.DeliveredMWh,
		FuelMMBtu:    ev.FuelMMBtu,
		GasMCF:       ev.GasMCF,
	}
	if err := s.store.Add(rec); err != nil {
		return err
	}
	records, _ := s.store.Query(ev.RunID, ev.Year, ev.Year)
	if len(records) > 0 {
		rr := records[0]
		yearStr := strconv.Itoa(ev.Year)
		s.gas.WithLabelValues(ev.RunID, yearStr).Set(rr.GasMCF)
		s.co2.WithLabelValues(ev.RunID, yearStr).Set(rr.CO2Tons(s.factor))
		s.rate.WithLabelValues(ev.RunID, yearStr).Set(rr.GasIntensity())
	}
	return nil
}
