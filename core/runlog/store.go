package runlog

import (
	"context"
	"time"

	"github.com/gridsmith/powerplan/core/model"
)

// RunRecord captures one solver invocation and its result.
type RunRecord struct {
	RunID     string                 `json:"run_id"`
	Timestamp time.Time              `json:"timestamp"`
	Problem   model.ProblemType      `json:"problem"`
	Scenario  string                 `json:"scenario"`
	Result    *model.HeuristicResult `json:"result"`
}

// Query defines filters for retrieving records. Zero fields match
// everything.
type Query struct {
	Start    time.Time
	End      time.Time
	Problem  model.ProblemType
	Scenario string
}

func (q Query) matches(r RunRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Problem != 0 && r.Problem != q.Problem {
		return false
	}
	if q.Scenario != "" && r.Scenario != q.Scenario {
		return false
	}
	return true
}

// Store persists RunRecords and supports querying.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q Query) ([]RunRecord, error)
	Close() error
}
