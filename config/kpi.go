package config

import (
	"fmt"

	"github.com/gridsmith/powerplan/core/metrics/fuel"
)

// KPIConfig controls the fuel KPI store. When enabled, the server records one
// row per simulated year and serves them under /api/kpi.
type KPIConfig struct {
	Enabled        bool    `json:"enabled"`
	Path           string  `json:"path"`
	EmissionFactor float64 `json:"emission_factor_kg_mmbtu"`
}

func (c *KPIConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "fuel_kpi.db"
	}
	if c.EmissionFactor == 0 {
		c.EmissionFactor = fuel.DefaultEmissionFactorKgPerMMBtu
	}
}

func (c *KPIConfig) Validate() error {
	if c.EmissionFactor < 0 {
		return fmt.Errorf("kpi: emission factor must not be negative, got %f", c.EmissionFactor)
	}
	return nil
}
