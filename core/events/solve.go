package events

import (
	"time"

	"github.com/gridsmith/powerplan/core/model"
)

// SolveCompleted is published when a solver run finishes.
type SolveCompleted struct {
	RunID    string
	Problem  model.ProblemType
	Scenario string
	Result   *model.HeuristicResult
	Duration time.Duration
}
