// Package profile synthesizes deterministic hourly load and solar shapes for
// dispatch simulation. All randomness is seeded so identical inputs always
// produce identical series.
package profile

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const hoursPerYear = 8760

// LoadOptions shapes the synthetic datacenter load profile.
type LoadOptions struct {
	// BaseFraction sets the flat base as a share of peak.
	BaseFraction float64 `json:"base_fraction"`
	// DiurnalSwing is the amplitude of the afternoon-peaking daily cycle.
	DiurnalSwing float64 `json:"diurnal_swing"`
	// NoiseAmplitude is the half-width of uniform hour-to-hour variation.
	NoiseAmplitude float64 `json:"noise_amplitude"`
	Seed           uint64  `json:"seed"`
}

// DefaultLoadOptions matches the screening shape: 85% base load with a small
// afternoon peak and 10% uniform noise.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		BaseFraction:   0.85,
		DiurnalSwing:   0.05,
		NoiseAmplitude: 0.10,
		Seed:           42,
	}
}

// LoadSeries builds an 8760-hour load profile peaking at peakMW. Values are
// clipped to [0, peakMW].
func LoadSeries(peakMW float64, opts LoadOptions) []float64 {
	series := make([]float64, hoursPerYear)
	if peakMW <= 0 {
		return series
	}
	u := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(opts.Seed)}
	base := peakMW * opts.BaseFraction
	for h := range series {
		hod := float64(h % 24)
		daily := 1 + opts.DiurnalSwing*math.Sin(2*math.Pi*(hod-14)/24)
		noise := 1 + opts.NoiseAmplitude*(u.Rand()-0.5)
		v := base * daily * noise
		if v < 0 {
			v = 0
		}
		if v > peakMW {
			v = peakMW
		}
		series[h] = v
	}
	return series
}

// SolarOptions shapes the synthetic solar capacity-factor profile.
type SolarOptions struct {
	Seed uint64 `json:"seed"`
}

// DefaultSolarOptions matches the screening shape.
func DefaultSolarOptions() SolarOptions {
	return SolarOptions{Seed: 43}
}

// SolarCFSeries builds an 8760-hour solar capacity-factor profile: a daylight
// bell curve with seasonal swing and uniform weather variation, rescaled so
// the annual mean approaches targetAnnualCF. Values stay in [0, 1]; targets
// beyond what a daylight-only shape can reach saturate below target.
func SolarCFSeries(targetAnnualCF float64, opts SolarOptions) []float64 {
	series := make([]float64, hoursPerYear)
	u := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(opts.Seed)}
	for h := range series {
		hod := float64(h % 24)
		if hod < 6 || hod > 18 {
			continue
		}
		doy := float64(h / 24)
		bell := math.Exp(-((hod - 12) * (hod - 12)) / 8)
		seasonal := 0.7 + 0.3*math.Sin(2*math.Pi*(doy-80)/365)
		weather := 0.85 + 0.15*u.Rand()
		series[h] = bell * seasonal * weather * 0.9
	}
	if targetAnnualCF > 0 {
		scaleToMean(series, targetAnnualCF)
	}
	return series
}

// scaleToMean rescales the series toward the target mean, clipping at 1 and
// re-scaling the remainder a few rounds to compensate for clipping loss.
func scaleToMean(series []float64, target float64) {
	for i := 0; i < 4; i++ {
		mean := stat.Mean(series, nil)
		if mean <= 0 {
			return
		}
		s := target / mean
		if math.Abs(s-1) < 1e-3 {
			return
		}
		saturated := true
		for h, v := range series {
			v *= s
			if v < 1 {
				saturated = false
			} else {
				v = 1
			}
			series[h] = v
		}
		if saturated {
			return
		}
	}
}
