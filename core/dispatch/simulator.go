package dispatch

import (
	"fmt"
	"math"

	"github.com/gridsmith/powerplan/core/model"
)

// HoursPerYear is the simulated horizon of one dispatch year.
const HoursPerYear = 8760

// mmbtuPerMCF converts pipeline gas volume to heat content.
const mmbtuPerMCF = 1.037

// initialSOCFraction is the battery state of charge at hour zero.
const initialSOCFraction = 0.5

// rampWindowMin spreads an hourly load swing over the window the fleet must
// actually follow it in.
const rampWindowMin = 5.0

// Simulator runs hourly economic dispatch for a fixed equipment mix. The
// merit order is price-based: solar is must-take, the BESS discharges toward
// remaining load, then grid import and thermal units are ordered by marginal
// cost. Whatever headroom is left each hour recharges the BESS.
type Simulator struct {
	catalog   model.EquipmentCatalog
	fuelPrice float64
}

// NewSimulator builds a simulator over a validated catalog. fuelPricePerMMBtu
// sets the thermal marginal cost used for the grid-versus-thermal ordering.
func NewSimulator(catalog model.EquipmentCatalog, fuelPricePerMMBtu float64) *Simulator {
	return &Simulator{catalog: catalog, fuelPrice: fuelPricePerMMBtu}
}

// MarginalCost returns the variable production cost in $/MWh for one
// technology at the simulator's fuel price.
func (s *Simulator) MarginalCost(tech string) float64 {
	spec := s.catalog.MustSpec(tech)
	if tech == model.TechGrid {
		return spec.EnergyPricePerMWh
	}
	return spec.HeatRateBTUPerKWh/1000*s.fuelPrice + spec.VOMPerMWh
}

// source tracks one dispatchable technology through the hourly loop.
type source struct {
	tech    string
	capMW   float64 // nameplate derated by availability
	rampMW  float64 // max hour-to-hour output change, +Inf when unbounded
	burns   bool    // consumes site gas
	heat    float64 // MMBtu per MWh
	prevMW  float64
	gen     []float64
	starts  int
	thermal bool
}

func (s *Simulator) newSource(tech string, nameplateMW float64, n int) *source {
	spec := s.catalog.MustSpec(tech)
	capMW := nameplateMW * spec.AvailabilityPct
	ramp := math.Inf(1)
	if spec.RampRateMWPerMin > 0 && nameplateMW > 0 {
		units := 1.0
		if spec.UnitCapacityMW > 0 {
			units = math.Ceil(nameplateMW / spec.UnitCapacityMW)
		}
		ramp = spec.RampRateMWPerMin * 60 * units
	}
	thermal := tech == model.TechRecip || tech == model.TechTurbine
	return &source{
		tech:    tech,
		capMW:   capMW,
		rampMW:  ramp,
		burns:   thermal,
		heat:    spec.HeatRateBTUPerKWh / 1000,
		gen:     make([]float64, n),
		thermal: thermal,
	}
}

// maxOut is the highest output the source can reach this hour. The first
// hour is unconstrained: units are assumed online across the year boundary.
func (s *source) maxOut(h int) float64 {
	if h == 0 || math.IsInf(s.rampMW, 1) {
		return s.capMW
	}
	return math.Min(s.capMW, s.prevMW+s.rampMW)
}

// minOut is the lowest output ramp-down limits allow this hour.
func (s *source) minOut(h int) float64 {
	if h == 0 || math.IsInf(s.rampMW, 1) {
		return 0
	}
	return math.Max(0, s.prevMW-s.rampMW)
}

func (s *source) commit(h int) {
	if s.gen[h] > 0 && s.prevMW == 0 {
		s.starts++
	}
	s.prevMW = s.gen[h]
}

// Run simulates one year of hourly dispatch. loadMW drives the horizon
// length; solarCF, when non-nil, must match it. A nil solarCF means no solar
// resource regardless of installed capacity.
func (s *Simulator) Run(cfg model.EquipmentConfig, loadMW, solarCF []float64) (*Result, error) {
	n := len(loadMW)
	if n == 0 {
		return nil, fmt.Errorf("dispatch: empty load profile")
	}
	if solarCF != nil && len(solarCF) != n {
		return nil, fmt.Errorf("dispatch: solar profile length %d does not match load length %d", len(solarCF), n)
	}

	bessSpec := s.catalog.MustSpec(model.TechBESS)
	solarSpec := s.catalog.MustSpec(model.TechSolar)

	recip := s.newSource(model.TechRecip, cfg.RecipMW, n)
	turbine := s.newSource(model.TechTurbine, cfg.TurbineMW, n)
	grid := s.newSource(model.TechGrid, cfg.GridImportMW, n)

	// Grid leads the merit order only when imports undercut the cheapest
	// thermal unit.
	merit := []*source{recip, turbine, grid}
	if s.MarginalCost(model.TechGrid) < s.MarginalCost(model.TechRecip) {
		merit = []*source{grid, recip, turbine}
	}
	chargeOrder := []*source{grid, recip, turbine}

	bessPowMW := cfg.BESSPowerMW * bessSpec.AvailabilityPct
	bessCapMWh := cfg.BESSEnergyMWh
	sqrtEff := 1.0
	if bessSpec.RoundTripEff > 0 {
		sqrtEff = math.Sqrt(bessSpec.RoundTripEff)
	}
	soc := bessCapMWh * initialSOCFraction

	res := &Result{
		Series:          newSeries(n),
		GenerationMWh:   map[string]float64{},
		CapacityFactors: map[string]float64{},
		Starts:          map[string]int{},
	}
	copy(res.Series.LoadMW, loadMW)

	maxRampHourly := 0.0
	for h := 0; h < n; h++ {
		load := loadMW[h]
		remaining := load
		if h > 0 {
			if d := math.Abs(loadMW[h] - loadMW[h-1]); d > maxRampHourly {
				maxRampHourly = d
			}
		}

		// Solar is must-take up to load.
		solarAvail := 0.0
		if cfg.SolarMWDC > 0 && solarCF != nil {
			solarAvail = cfg.SolarMWDC * solarCF[h] * solarSpec.AvailabilityPct
		}
		solarUsed := math.Min(solarAvail, remaining)
		res.Series.SolarMW[h] = solarUsed
		remaining -= solarUsed
		excessSolar := solarAvail - solarUsed

		// BESS discharges toward the residual load.
		if remaining > 0 && soc > 0 && bessPowMW > 0 {
			discharge := math.Min(math.Min(bessPowMW, soc*sqrtEff), remaining)
			res.Series.BESSDischargeMW[h] = discharge
			soc -= discharge / sqrtEff
			remaining -= discharge
		}

		// Merit-order fill.
		for _, src := range merit {
			if remaining <= 0 {
				break
			}
			take := math.Min(remaining, src.maxOut(h))
			if take > 0 {
				src.gen[h] = take
				remaining -= take
			}
		}
		if remaining > 0 {
			res.Series.UnservedMW[h] = remaining
			res.UnservedEnergyMWh += remaining
			res.HoursWithUnserved++
			if remaining > res.PeakUnservedMW {
				res.PeakUnservedMW = remaining
			}
		}

		charged := 0.0
		chargeRoom := func() float64 {
			if bessPowMW <= 0 || soc >= bessCapMWh {
				return 0
			}
			return math.Min(bessPowMW-charged, (bessCapMWh-soc)/sqrtEff)
		}

		// Ramp-down floors can force thermal output above load; the excess
		// charges the BESS when there is room and spills otherwise.
		for _, src := range merit {
			if !src.thermal {
				continue
			}
			if floor := src.minOut(h); src.gen[h] < floor {
				forced := floor - src.gen[h]
				src.gen[h] = floor
				absorb := math.Min(forced, chargeRoom())
				soc += absorb * sqrtEff
				charged += absorb
				res.CurtailedMWh += forced - absorb
			}
		}

		// Reliability charging from excess solar, then unused import and
		// thermal headroom.
		if room := chargeRoom(); room > 0 {
			fromSolar := math.Min(excessSolar, room)
			soc += fromSolar * sqrtEff
			charged += fromSolar
			excessSolar -= fromSolar

			need := chargeRoom()
			for _, src := range chargeOrder {
				if need <= 0 {
					break
				}
				headroom := math.Max(0, src.maxOut(h)-src.gen[h])
				take := math.Min(need, headroom)
				if take > 0 {
					src.gen[h] += take
					soc += take * sqrtEff
					charged += take
					need -= take
				}
			}
		}
		res.CurtailedMWh += excessSolar
		res.Series.BESSChargeMW[h] = charged
		res.Series.SOCMWh[h] = soc

		res.Series.RecipMW[h] = recip.gen[h]
		res.Series.TurbineMW[h] = turbine.gen[h]
		res.Series.GridMW[h] = grid.gen[h]
		for _, src := range merit {
			src.commit(h)
		}

		res.EnergyRequiredMWh += load
		res.EnergyDeliveredMWh += solarUsed + res.Series.BESSDischargeMW[h] +
			recip.gen[h] + turbine.gen[h] + grid.gen[h]
	}

	s.aggregate(res, cfg, n, []*source{recip, turbine, grid})
	res.MaxRampMWPerMin = maxRampHourly / rampWindowMin
	return res, nil
}

func (s *Simulator) aggregate(res *Result, cfg model.EquipmentConfig, n int, sources []*source) {
	sum := func(xs []float64) float64 {
		t := 0.0
		for _, x := range xs {
			t += x
		}
		return t
	}
	res.GenerationMWh[model.TechSolar] = sum(res.Series.SolarMW)
	res.GenerationMWh[model.TechBESS] = sum(res.Series.BESSDischargeMW)

	for _, src := range sources {
		mwh := sum(src.gen)
		res.GenerationMWh[src.tech] = mwh
		if src.burns {
			res.FuelMMBtu += mwh * src.heat
		}
		if src.thermal {
			res.Starts[src.tech] = src.starts
		}
	}
	res.GasMCF = res.FuelMMBtu / mmbtuPerMCF

	cf := func(tech string, nameplate float64) {
		if nameplate > 0 {
			res.CapacityFactors[tech] = res.GenerationMWh[tech] / (nameplate * float64(n))
		} else {
			res.CapacityFactors[tech] = 0
		}
	}
	cf(model.TechSolar, cfg.SolarMWDC)
	cf(model.TechBESS, cfg.BESSPowerMW)
	cf(model.TechRecip, cfg.RecipMW)
	cf(model.TechTurbine, cfg.TurbineMW)
	cf(model.TechGrid, cfg.GridImportMW)

	if res.EnergyRequiredMWh > 0 {
		res.UnservedPct = res.UnservedEnergyMWh / res.EnergyRequiredMWh * 100
	}
}
