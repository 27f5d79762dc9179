package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/gridsmith/powerplan/core/economics"
	"github.com/gridsmith/powerplan/core/metrics"
	"github.com/gridsmith/powerplan/core/model"
)

// Config is the root configuration: the equipment catalog and financial
// parameters shared by every solve, the default scenario, and the
// infrastructure sections.
type Config struct {
	// Catalog overrides the built-in equipment defaults per technology. A
	// technology entry present here replaces the default spec wholesale;
	// absent technologies keep their defaults.
	Catalog    map[string]model.EquipmentSpec `json:"catalog"`
	Parameters economics.Assumptions          `json:"parameters"`
	Scenario   Scenario                       `json:"scenario"`
	Profiles   ProfilesConfig                 `json:"profiles"`
	Metrics    metrics.Config                 `json:"metrics"`
	RunLog     RunLogConfig                   `json:"runlog"`
	KPI        KPIConfig                      `json:"kpi"`
	API        APIConfig                      `json:"api"`
	Sentry     SentryConfig                   `json:"sentry"`
}

// Load reads the configuration file, overlays environment variables and
// applies defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("PP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "pp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills missing catalog technologies, zero financial parameters
// and infrastructure sections with the screening defaults.
func (c *Config) SetDefaults() {
	if c.Catalog == nil {
		c.Catalog = map[string]model.EquipmentSpec{}
	}
	for tech, spec := range DefaultCatalog().Specs {
		if _, ok := c.Catalog[tech]; !ok {
			c.Catalog[tech] = spec
		}
	}
	def := economics.DefaultAssumptions()
	if c.Parameters.DiscountRate == 0 {
		c.Parameters.DiscountRate = def.DiscountRate
	}
	if c.Parameters.ProjectLifeYears == 0 {
		c.Parameters.ProjectLifeYears = def.ProjectLifeYears
	}
	if c.Parameters.FuelPricePerMMBtu == 0 {
		c.Parameters.FuelPricePerMMBtu = def.FuelPricePerMMBtu
	}
	if c.Parameters.FuelEscalationPct == 0 {
		c.Parameters.FuelEscalationPct = def.FuelEscalationPct
	}
	if c.Parameters.ITCRate == 0 {
		c.Parameters.ITCRate = def.ITCRate
	}
	if c.Parameters.VOLLPerMWh == 0 {
		c.Parameters.VOLLPerMWh = def.VOLLPerMWh
	}
	if c.Parameters.BESSDegPerKWh == 0 {
		c.Parameters.BESSDegPerKWh = def.BESSDegPerKWh
	}
	c.Profiles.SetDefaults()
	c.RunLog.SetDefaults()
	c.KPI.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section. The scenario is only validated when one is
// configured; server deployments receive scenarios per request instead.
func (c *Config) Validate() error {
	if err := c.EquipmentCatalog().Validate(); err != nil {
		return err
	}
	if c.Scenario.Problem != 0 {
		if err := c.Scenario.Validate(); err != nil {
			return fmt.Errorf("scenario: %w", err)
		}
	}
	if err := c.Profiles.Validate(); err != nil {
		return fmt.Errorf("profiles: %w", err)
	}
	if err := c.RunLog.Validate(); err != nil {
		return fmt.Errorf("runlog: %w", err)
	}
	if err := c.KPI.Validate(); err != nil {
		return err
	}
	return nil
}

// EquipmentCatalog assembles the resolved catalog.
func (c *Config) EquipmentCatalog() model.EquipmentCatalog {
	return model.EquipmentCatalog{Specs: c.Catalog}
}
