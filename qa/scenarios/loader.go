package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gridsmith/powerplan/config"
	"github.com/gridsmith/powerplan/core/constraints"
	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/solver"
)

type LimitsDef struct {
	NOxTonsPerYear     float64 `yaml:"nox_tons_per_year"`
	GasMCFPerDay       float64 `yaml:"gas_mcf_per_day"`
	LandAcres          float64 `yaml:"land_acres"`
	GridImportMW       float64 `yaml:"grid_import_mw"`
	RequireN1          bool    `yaml:"require_n1"`
	MinAvailabilityPct float64 `yaml:"min_availability_pct"`
	TimelineMonthsMax  int     `yaml:"timeline_months_max"`
	MinRampMWPerMin    float64 `yaml:"min_ramp_mw_min"`
}

func (l LimitsDef) toLimits() constraints.Limits {
	return constraints.Limits{
		NOxTonsPerYear:     l.NOxTonsPerYear,
		GasMCFPerDay:       l.GasMCFPerDay,
		LandAcres:          l.LandAcres,
		GridImportMW:       l.GridImportMW,
		RequireN1:          l.RequireN1,
		MinAvailabilityPct: l.MinAvailabilityPct,
		TimelineMonthsMax:  l.TimelineMonthsMax,
		MinRampMWPerMin:    l.MinRampMWPerMin,
	}
}

type BrownfieldDef struct {
	ExistingRecipMW   float64 `yaml:"existing_recip_mw"`
	ExistingTurbineMW float64 `yaml:"existing_turbine_mw"`
	ExistingGridMW    float64 `yaml:"existing_grid_mw"`
	ExistingLCOE      float64 `yaml:"existing_lcoe"`
	LCOEThreshold     float64 `yaml:"lcoe_threshold"`
}

type BridgeDef struct {
	GridAvailableMonth   int     `yaml:"grid_available_month"`
	RentalRatePerKWMonth float64 `yaml:"rental_rate_kw_month"`
}

// Expected captures the assertions for one scenario. Pointer fields are only
// checked when present in the file, so exact-zero expectations stay
// expressible.
type Expected struct {
	Feasible          bool     `yaml:"feasible"`
	Objective         *float64 `yaml:"objective,omitempty"`
	ObjectiveAtLeast  *float64 `yaml:"objective_at_least,omitempty"`
	MaxLCOE           *float64 `yaml:"max_lcoe,omitempty"`
	Binding           string   `yaml:"binding,omitempty"`
	ViolationContains string   `yaml:"violation_contains,omitempty"`
	Recommended       string   `yaml:"recommended,omitempty"`
}

// Scenario is one regression case: a planning scenario plus the result it
// must produce.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	Problem     int                `yaml:"problem"`
	Load        map[int]float64    `yaml:"load"`
	WorkloadMix map[string]float64 `yaml:"workload_mix,omitempty"`
	Limits      LimitsDef          `yaml:"limits,omitempty"`
	Brownfield  *BrownfieldDef     `yaml:"brownfield,omitempty"`
	Bridge      *BridgeDef         `yaml:"bridge,omitempty"`
	Expected    Expected           `yaml:"expected"`
}

// ToConfig converts the definition into the scenario the service consumes.
func (s *Scenario) ToConfig() config.Scenario {
	sc := config.Scenario{
		Name:        s.Name,
		Problem:     s.Problem,
		Load:        s.Load,
		WorkloadMix: s.WorkloadMix,
		Limits:      s.Limits.toLimits(),
	}
	if s.Brownfield != nil {
		sc.Brownfield = solver.BrownfieldOptions{
			Existing: model.EquipmentConfig{
				RecipMW:      s.Brownfield.ExistingRecipMW,
				TurbineMW:    s.Brownfield.ExistingTurbineMW,
				GridImportMW: s.Brownfield.ExistingGridMW,
			},
			ExistingLCOE:  s.Brownfield.ExistingLCOE,
			LCOEThreshold: s.Brownfield.LCOEThreshold,
		}
	}
	if s.Bridge != nil {
		sc.Bridge = solver.BridgeOptions{
			GridAvailableMonth:   s.Bridge.GridAvailableMonth,
			RentalRatePerKWMonth: s.Bridge.RentalRatePerKWMonth,
		}
	}
	return sc
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
