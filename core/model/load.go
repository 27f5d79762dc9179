package model

import (
	"fmt"
	"math"
	"sort"
)

// WorkloadProfile characterizes one workload class running at the facility.
// FlexibilityPct is the share of its load that can be curtailed or shifted;
// RampFactor is the share of its load that can swing within a five-minute
// window.
type WorkloadProfile struct {
	FlexibilityPct float64 `json:"flexibility_pct"`
	RampFactor     float64 `json:"ramp_factor"`
}

// LoadTrajectory maps analysis years to facility peak MW and carries the
// workload mix served. Shares sum to 1; an absent mix means no flexibility.
type LoadTrajectory struct {
	Years       map[int]float64    `json:"years"`
	WorkloadMix map[string]float64 `json:"workload_mix"`
}

// SortedYears returns the analysis years in ascending order.
func (l LoadTrajectory) SortedYears() []int {
	years := make([]int, 0, len(l.Years))
	for y := range l.Years {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// PeakMW returns the maximum peak across all years.
func (l LoadTrajectory) PeakMW() float64 {
	peak := 0.0
	for _, mw := range l.Years {
		if mw > peak {
			peak = mw
		}
	}
	return peak
}

// FirstYearMW returns the peak of the earliest analysis year.
func (l LoadTrajectory) FirstYearMW() float64 {
	years := l.SortedYears()
	if len(years) == 0 {
		return 0
	}
	return l.Years[years[0]]
}

// FlexibleMW returns the curtailable MW at the given peak using the supplied
// workload profiles: sum over the mix of peak x share x flexibility.
func (l LoadTrajectory) FlexibleMW(peakMW float64, profiles map[string]WorkloadProfile) float64 {
	flex := 0.0
	for name, share := range l.WorkloadMix {
		p, ok := profiles[name]
		if !ok {
			continue
		}
		flex += peakMW * share * p.FlexibilityPct
	}
	return flex
}

// RequiredRampMWPerMin derives the fleet ramp requirement from the workload
// mix: the mix-weighted swing share of peak spread over a five-minute window.
func (l LoadTrajectory) RequiredRampMWPerMin(peakMW float64, profiles map[string]WorkloadProfile) float64 {
	swing := 0.0
	for name, share := range l.WorkloadMix {
		p, ok := profiles[name]
		if !ok {
			continue
		}
		swing += peakMW * share * p.RampFactor
	}
	return swing / 5.0
}

// Validate checks trajectory invariants: non-negative peaks, shares in [0,1]
// summing to 1 when a mix is present.
func (l LoadTrajectory) Validate() error {
	if len(l.Years) == 0 {
		return fmt.Errorf("trajectory has no analysis years")
	}
	for y, mw := range l.Years {
		if mw < 0 || math.IsNaN(mw) {
			return fmt.Errorf("year %d: peak must be >= 0", y)
		}
	}
	if len(l.WorkloadMix) == 0 {
		return nil
	}
	sum := 0.0
	for name, share := range l.WorkloadMix {
		if share < 0 || share > 1 {
			return fmt.Errorf("workload %q: share must be in [0,1]", name)
		}
		sum += share
	}
	if math.Abs(sum-1) > 0.01 {
		return fmt.Errorf("workload shares sum to %.3f, want 1", sum)
	}
	return nil
}
