package events

import "github.com/gridsmith/powerplan/core/model"

// YearSimulated is published for each trajectory year after dispatch.
type YearSimulated struct {
	RunID   string
	Year    int
	PeakMW  float64
	Summary model.DispatchSummary
}
