package model

import (
	"fmt"
	"math"
	"strconv"
)

// JSONFloat is a float64 whose non-finite values survive JSON encoding.
// encoding/json rejects IEEE infinities, but a zero-energy LCOE is an
// infinite-cost sentinel that must reach clients intact, so infinities are
// written as quoted strings and read back.
type JSONFloat float64

// MarshalJSON writes finite values as numbers and non-finite ones as quoted
// strings.
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	default:
		return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
	}
}

// UnmarshalJSON accepts both the numeric and the quoted sentinel forms.
func (f *JSONFloat) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Infinity"`:
		*f = JSONFloat(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*f = JSONFloat(math.Inf(-1))
		return nil
	case `"NaN"`:
		*f = JSONFloat(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse float %q: %w", data, err)
	}
	*f = JSONFloat(v)
	return nil
}

// ConstraintStatus reports one validated constraint.
type ConstraintStatus struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Limit       float64 `json:"limit"`
	Utilization float64 `json:"utilization"`
	Binding     bool    `json:"binding"`
	Violated    bool    `json:"violated"`
	Status      string  `json:"status"`
}

// DispatchSummary aggregates one simulated dispatch year.
type DispatchSummary struct {
	EnergyRequiredMWh  float64            `json:"energy_required_mwh"`
	EnergyDeliveredMWh float64            `json:"energy_delivered_mwh"`
	UnservedEnergyMWh  float64            `json:"unserved_energy_mwh"`
	UnservedPct        float64            `json:"unserved_pct"`
	CapacityFactors    map[string]float64 `json:"capacity_factors"`
	StartsPerYear      map[string]int     `json:"starts_per_year"`
	FuelMMBtu          float64            `json:"fuel_mmbtu"`
	GasMCF             float64            `json:"gas_mcf"`
	MaxRampMWPerMin    float64            `json:"max_ramp_mw_per_min"`
}

// HeuristicResult is the single output contract shared by all problem
// strategies. It is composed of plain values only and round-trips through
// JSON without loss.
type HeuristicResult struct {
	ProblemType        ProblemType        `json:"problem_type"`
	RunID              string             `json:"run_id,omitempty"`
	Feasible           bool               `json:"feasible"`
	ObjectiveValue     JSONFloat          `json:"objective_value"`
	LCOE               JSONFloat          `json:"lcoe"`
	CapexTotal         float64            `json:"capex_total"`
	OpexAnnual         float64            `json:"opex_annual"`
	Equipment          EquipmentConfig    `json:"equipment"`
	Dispatch           DispatchSummary    `json:"dispatch"`
	Constraints        []ConstraintStatus `json:"constraints,omitempty"`
	BindingConstraint  string             `json:"binding_constraint,omitempty"`
	Violations         []string           `json:"violations"`
	Warnings           []string           `json:"warnings"`
	TimelineMonths     int                `json:"timeline_months"`
	SolveTimeSeconds   float64            `json:"solve_time_seconds"`
	UnservedEnergyMWh  float64            `json:"unserved_energy_mwh"`
	UnservedPct        float64            `json:"unserved_pct"`
	EnergyDeliveredMWh float64            `json:"energy_delivered_mwh"`
	Details            map[string]any     `json:"details,omitempty"`
}

// NewResult returns a result shell for the given problem with empty violation
// and warning lists, so JSON output always carries arrays rather than nulls.
func NewResult(problem ProblemType) *HeuristicResult {
	return &HeuristicResult{
		ProblemType: problem,
		Violations:  []string{},
		Warnings:    []string{},
		Details:     map[string]any{},
	}
}

// Infeasible marks the result infeasible and records the reasons.
func (r *HeuristicResult) Infeasible(reasons ...string) *HeuristicResult {
	r.Feasible = false
	r.Violations = append(r.Violations, reasons...)
	return r
}

// Warn appends a warning without affecting feasibility.
func (r *HeuristicResult) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
