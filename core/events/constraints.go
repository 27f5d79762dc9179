package events

import "github.com/gridsmith/powerplan/core/model"

// ConstraintsChecked is emitted after the checker evaluates a configuration.
type ConstraintsChecked struct {
	RunID       string
	Constraints []model.ConstraintStatus
}
