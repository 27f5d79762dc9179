// Package solver holds the five capacity-planning strategies behind the
// shared Optimize contract. Each strategy is a thin orchestration over the
// injected sizing, dispatch, economics and constraint services: feasibility
// problems come back inside the result, only configuration problems come
// back as errors.
package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gridsmith/powerplan/core/constraints"
	"github.com/gridsmith/powerplan/core/dispatch"
	"github.com/gridsmith/powerplan/core/economics"
	"github.com/gridsmith/powerplan/core/landuse"
	"github.com/gridsmith/powerplan/core/logger"
	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/profile"
	"github.com/gridsmith/powerplan/core/sizing"
	"github.com/gridsmith/powerplan/core/stack"
)

// ErrUnknownProblem marks a problem type outside the registered set. It is a
// configuration error, distinct from any runtime infeasibility.
var ErrUnknownProblem = errors.New("solver: unknown problem type")

// Strategy is the contract every problem implements.
type Strategy interface {
	Optimize(ctx context.Context) (*model.HeuristicResult, error)
	Name() string
}

// Inputs bundles the scenario and the injected services a strategy runs
// against. Strategies treat every field as read-only.
type Inputs struct {
	Catalog   model.EquipmentCatalog
	Limits    constraints.Limits
	Load      model.LoadTrajectory
	Workloads map[string]model.WorkloadProfile

	Sizer   *sizing.Sizer
	Calc    *economics.Calculator
	Checker *constraints.Checker
	Stack   *stack.Builder
	Land    *landuse.Allocator
	Log     logger.Logger

	Brownfield   BrownfieldOptions
	LandDev      LandDevOptions
	GridServices GridServicesOptions
	Bridge       BridgeOptions
}

// BrownfieldOptions describes the incumbent fleet and the cost ceiling.
type BrownfieldOptions struct {
	Existing      model.EquipmentConfig `json:"existing"`
	ExistingLCOE  float64               `json:"existing_lcoe"`
	LCOEThreshold float64               `json:"lcoe_threshold"`
}

// LandDevOptions tunes the flexibility-to-load conversion.
type LandDevOptions struct {
	// AlignmentFactor is the share of flexible load whose curtailment
	// windows line up with constraint-binding hours.
	AlignmentFactor float64 `json:"alignment_factor"`
}

// GridServicesOptions selects the demand-response product book.
type GridServicesOptions struct {
	Products []DRProduct `json:"products"`
	// EligibilityDerate discounts flexible MW to market-eligible MW.
	EligibilityDerate float64 `json:"eligibility_derate"`
}

// BridgeOptions parameterizes the rent-versus-buy transition.
type BridgeOptions struct {
	GridAvailableMonth   int     `json:"grid_available_month"`
	RentalRatePerKWMonth float64 `json:"rental_rate_kw_month"`
	ResidualValuePct     float64 `json:"residual_value_pct"`
}

// DefaultBridgeOptions returns the screening defaults: grid in five years,
// temp-power rental at $50/kW-month, ten percent residual on owned gear.
func DefaultBridgeOptions() BridgeOptions {
	return BridgeOptions{
		GridAvailableMonth:   60,
		RentalRatePerKWMonth: 50,
		ResidualValuePct:     0.10,
	}
}

func (in *Inputs) validate() error {
	if err := in.Catalog.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if in.Sizer == nil || in.Calc == nil || in.Checker == nil || in.Stack == nil || in.Land == nil {
		return errors.New("solver: sizer, calculator, checker, stack and land services are all required")
	}
	return nil
}

// normalize fills option zero values with the documented defaults so every
// strategy reads fully-populated inputs.
func (in *Inputs) normalize() {
	if in.Log == nil {
		in.Log = logger.Nop{}
	}
	if in.Workloads == nil {
		in.Workloads = DefaultWorkloadProfiles()
	}
	if in.Brownfield.LCOEThreshold <= 0 {
		in.Brownfield.LCOEThreshold = 120
	}
	if in.Brownfield.ExistingLCOE <= 0 {
		in.Brownfield.ExistingLCOE = 80
	}
	if in.LandDev.AlignmentFactor <= 0 {
		in.LandDev.AlignmentFactor = 0.7
	}
	if in.GridServices.Products == nil {
		in.GridServices.Products = DefaultProducts()
	}
	if in.GridServices.EligibilityDerate <= 0 {
		in.GridServices.EligibilityDerate = 0.8
	}
	if in.Bridge.RentalRatePerKWMonth <= 0 {
		if rate := in.Catalog.MustSpec(model.TechRecip).CostPerKWMonth; rate > 0 {
			in.Bridge.RentalRatePerKWMonth = rate
		} else {
			in.Bridge.RentalRatePerKWMonth = DefaultBridgeOptions().RentalRatePerKWMonth
		}
	}
	if in.Bridge.ResidualValuePct <= 0 {
		in.Bridge.ResidualValuePct = DefaultBridgeOptions().ResidualValuePct
	}
	if in.Bridge.GridAvailableMonth < 0 {
		in.Bridge.GridAvailableMonth = 0
	}
}

// simulateYear runs one 8760-hour dispatch of cfg against the scenario's
// screening profiles at the given peak.
func (in *Inputs) simulateYear(cfg model.EquipmentConfig, peakMW float64) (*dispatch.Result, error) {
	sim := dispatch.NewSimulator(in.Catalog, in.Calc.FuelPrice(0))
	load := profile.LoadSeries(peakMW, in.Stack.LoadOpts)
	var solar []float64
	if cfg.SolarMWDC > 0 {
		solar = profile.SolarCFSeries(in.Catalog.MustSpec(model.TechSolar).CapacityFactor, in.Stack.SolarOpts)
	}
	return sim.Run(cfg, load, solar)
}

type constructor func(Inputs) Strategy

var registry = map[model.ProblemType]constructor{
	model.ProblemGreenfield:   func(in Inputs) Strategy { return &Greenfield{in: in} },
	model.ProblemBrownfield:   func(in Inputs) Strategy { return &Brownfield{in: in} },
	model.ProblemLandDev:      func(in Inputs) Strategy { return &LandDev{in: in} },
	model.ProblemGridServices: func(in Inputs) Strategy { return &GridServices{in: in} },
	model.ProblemBridgePower:  func(in Inputs) Strategy { return &BridgePower{in: in} },
}

// New resolves a problem type to its strategy with inputs validated and
// defaults applied.
func New(problem model.ProblemType, in Inputs) (Strategy, error) {
	build, ok := registry[problem]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProblem, int(problem))
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.normalize()
	return build(in), nil
}

// Problems lists the registered problem types in ascending order.
func Problems() []model.ProblemType {
	out := make([]model.ProblemType, 0, len(registry))
	for p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
