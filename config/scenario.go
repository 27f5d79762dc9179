package config

import (
	"fmt"

	"github.com/gridsmith/powerplan/core/constraints"
	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/solver"
)

// Scenario describes one solve: the problem to run, the load it serves and
// the site limits it must respect. The problem-specific option sections are
// only read by their own strategy; zero values fall back to the strategy
// defaults.
type Scenario struct {
	Name    string `json:"name"`
	Problem int    `json:"problem"`
	// Load maps analysis year to facility peak MW.
	Load map[int]float64 `json:"load"`
	// WorkloadMix maps workload class to its share of peak; shares sum to 1.
	WorkloadMix map[string]float64 `json:"workload_mix"`
	Limits      constraints.Limits `json:"limits"`

	Brownfield   solver.BrownfieldOptions   `json:"brownfield"`
	LandDev      solver.LandDevOptions      `json:"land_dev"`
	GridServices solver.GridServicesOptions `json:"grid_services"`
	Bridge       solver.BridgeOptions       `json:"bridge"`
}

// ProblemType resolves the configured problem number.
func (s Scenario) ProblemType() model.ProblemType {
	return model.ProblemType(s.Problem)
}

// Trajectory assembles the load trajectory the strategies consume.
func (s Scenario) Trajectory() model.LoadTrajectory {
	return model.LoadTrajectory{Years: s.Load, WorkloadMix: s.WorkloadMix}
}

// Validate checks that the scenario names a known problem and carries a
// usable trajectory and limits.
func (s Scenario) Validate() error {
	if !s.ProblemType().Valid() {
		return fmt.Errorf("unknown problem type %d", s.Problem)
	}
	if err := s.Trajectory().Validate(); err != nil {
		return err
	}
	if err := s.Limits.Validate(); err != nil {
		return err
	}
	return nil
}
