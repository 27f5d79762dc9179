package metrics

import "github.com/gridsmith/powerplan/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// EmissionFactorKgPerMMBtu converts simulated gas burn to CO2 for the
	// fuel KPI store. Zero falls back to the pipeline-gas default.
	EmissionFactorKgPerMMBtu float64 `json:"emission_factor_kg_per_mmbtu"`
}
