// Package stack grows an equipment fleet across a multi-year load
// trajectory. Capacity is only ever added: each year sizes to the new peak
// and charges CAPEX on the positive delta alone.
package stack

import (
	"context"
	"fmt"
	"math"

	"github.com/gridsmith/powerplan/core/dispatch"
	"github.com/gridsmith/powerplan/core/economics"
	"github.com/gridsmith/powerplan/core/logger"
	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/profile"
	"github.com/gridsmith/powerplan/core/sizing"
)

// YearResult is one analysis year of the stack.
type YearResult struct {
	Year         int                   `json:"year"`
	PeakMW       float64               `json:"peak_mw"`
	Config       model.EquipmentConfig `json:"config"`
	AddedCapex   float64               `json:"added_capex"`
	AnnualCost   float64               `json:"annual_cost"`
	LCOE         float64               `json:"lcoe"`
	DeliveredMWh float64               `json:"delivered_mwh"`
	UnservedMWh  float64               `json:"unserved_mwh"`
	Dispatch     model.DispatchSummary `json:"dispatch"`
}

// Result is the full annual stack. BlendedLCOE is NPV-weighted across the
// horizon: discounted cost over discounted energy, not a mean of annual
// LCOEs.
type Result struct {
	Years             []YearResult          `json:"years"`
	FinalConfig       model.EquipmentConfig `json:"final_config"`
	BlendedLCOE       float64               `json:"blended_lcoe"`
	TotalCapex        float64               `json:"total_capex"`
	TotalDeliveredMWh float64               `json:"total_delivered_mwh"`
	TotalUnservedMWh  float64               `json:"total_unserved_mwh"`
	PeakMW            float64               `json:"peak_mw"`
}

// Builder runs the size-dispatch-price loop year by year. The load and solar
// shape options are exported so callers can pin scenarios; the defaults match
// the screening profiles.
type Builder struct {
	LoadOpts  profile.LoadOptions
	SolarOpts profile.SolarOptions

	catalog   model.EquipmentCatalog
	sizer     *sizing.Sizer
	calc      *economics.Calculator
	requireN1 bool
	log       logger.Logger
}

func NewBuilder(catalog model.EquipmentCatalog, sizer *sizing.Sizer, calc *economics.Calculator, requireN1 bool, log logger.Logger) *Builder {
	if log == nil {
		log = logger.Nop{}
	}
	return &Builder{
		LoadOpts:  profile.DefaultLoadOptions(),
		SolarOpts: profile.DefaultSolarOptions(),
		catalog:   catalog,
		sizer:     sizer,
		calc:      calc,
		requireN1: requireN1,
		log:       log,
	}
}

// Build simulates every trajectory year in calendar order. The context is
// checked between years so long horizons cancel promptly.
func (b *Builder) Build(ctx context.Context, traj model.LoadTrajectory) (*Result, error) {
	years := traj.SortedYears()
	if len(years) == 0 {
		return nil, fmt.Errorf("stack: empty load trajectory")
	}
	first := years[0]
	crf := economics.CRF(b.calc.Assumptions().DiscountRate, b.calc.Assumptions().ProjectLifeYears)
	rate := b.calc.Assumptions().DiscountRate

	res := &Result{Years: make([]YearResult, 0, len(years))}
	var cum model.EquipmentConfig
	var discCost, discEnergy float64

	for _, year := range years {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		peak := traj.Years[year]
		target := b.sizer.SizeToLoad(peak, b.requireN1)
		added := target.Delta(cum)
		cum = cum.Add(added)

		period := year - first
		fuelPrice := b.calc.FuelPrice(period)
		sim := dispatch.NewSimulator(b.catalog, fuelPrice)
		load := profile.LoadSeries(peak, b.LoadOpts)
		solar := profile.SolarCFSeries(b.catalog.MustSpec(model.TechSolar).CapacityFactor, b.SolarOpts)

		dr, err := sim.Run(cum, load, solar)
		if err != nil {
			return nil, fmt.Errorf("stack: year %d: %w", year, err)
		}

		addedCapex := b.calc.Capex(added)
		annualCost := b.calc.Capex(cum)*crf + b.calc.AnnualOpexAtPrice(cum, dr.GenerationMWh, fuelPrice)
		yearLCOE := math.Inf(1)
		if dr.EnergyDeliveredMWh > 0 {
			yearLCOE = annualCost / dr.EnergyDeliveredMWh
		}

		df := 1 / math.Pow(1+rate, float64(period))
		discCost += annualCost * df
		discEnergy += dr.EnergyDeliveredMWh * df

		res.Years = append(res.Years, YearResult{
			Year:         year,
			PeakMW:       peak,
			Config:       cum,
			AddedCapex:   addedCapex,
			AnnualCost:   annualCost,
			LCOE:         yearLCOE,
			DeliveredMWh: dr.EnergyDeliveredMWh,
			UnservedMWh:  dr.UnservedEnergyMWh,
			Dispatch:     dr.Summary(),
		})
		res.TotalCapex += addedCapex
		res.TotalDeliveredMWh += dr.EnergyDeliveredMWh
		res.TotalUnservedMWh += dr.UnservedEnergyMWh
		if peak > res.PeakMW {
			res.PeakMW = peak
		}
		b.log.Debugw("stack year simulated", map[string]any{
			"year":          year,
			"peak_mw":       peak,
			"added_capex":   addedCapex,
			"unserved_mwh":  dr.UnservedEnergyMWh,
			"delivered_mwh": dr.EnergyDeliveredMWh,
		})
	}

	res.FinalConfig = cum
	if discEnergy > 0 {
		res.BlendedLCOE = discCost / discEnergy
	} else {
		res.BlendedLCOE = math.Inf(1)
	}
	return res, nil
}
