package metrics

import (
	"github.com/gridsmith/powerplan/core/factory"
	coremetrics "github.com/gridsmith/powerplan/core/metrics"
	"github.com/gridsmith/powerplan/core/metrics/fuel"
	"github.com/gridsmith/powerplan/infra/kpi"
	"github.com/prometheus/client_golang/prometheus"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterSolveSink("nop", func(map[string]any) (coremetrics.SolveSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterSolveSink("prometheus", func(conf map[string]any) (coremetrics.SolveSink, error) {
		var c struct {
			Port string `json:"prometheus_port"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		// Port is consumed by the HTTP server only; PromSink itself doesn't use it.
		return NewPromSinkWithRegistry(coremetrics.Config{}, prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterSolveSink("influx", func(conf map[string]any) (coremetrics.SolveSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = coremetrics.RegisterSolveSink("fuel", func(conf map[string]any) (coremetrics.SolveSink, error) {
		var c struct {
			Path           string  `json:"path"`
			EmissionFactor float64 `json:"emission_factor_kg_per_mmbtu"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		var store fuel.Store
		if c.Path != "" {
			st, err := kpi.NewSQLiteStore(c.Path)
			if err != nil {
				return nil, err
			}
			store = st
		} else {
			store = fuel.NewMemoryStore()
		}
		factor := c.EmissionFactor
		if factor <= 0 {
			factor = fuel.DefaultEmissionFactorKgPerMMBtu
		}
		return NewFuelSink(store, factor, prometheus.DefaultRegisterer), nil
	})
}
