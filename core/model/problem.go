package model

// ProblemType selects one of the five planning problems. Values are stable
// and start at 1 so the zero value is invalid.
type ProblemType int

const (
	ProblemGreenfield ProblemType = iota + 1
	ProblemBrownfield
	ProblemLandDev
	ProblemGridServices
	ProblemBridgePower
)

// String returns a human-readable representation of the problem type.
func (t ProblemType) String() string {
	switch t {
	case ProblemGreenfield:
		return "greenfield"
	case ProblemBrownfield:
		return "brownfield"
	case ProblemLandDev:
		return "land_development"
	case ProblemGridServices:
		return "grid_services"
	case ProblemBridgePower:
		return "bridge_power"
	default:
		return "unknown"
	}
}

// Valid reports whether t names a defined problem.
func (t ProblemType) Valid() bool {
	return t >= ProblemGreenfield && t <= ProblemBridgePower
}
