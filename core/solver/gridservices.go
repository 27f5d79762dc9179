package solver

import (
	"context"
	"time"

	"github.com/gridsmith/powerplan/core/model"
)

// DRProduct describes one demand-response market product. Exactly one of
// the three availability payment rates is normally set; the first positive
// one, in struct order, prices the standing payment.
type DRProduct struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	ResponseTimeMin      float64  `json:"response_time_min"`
	MinDurationHours     float64  `json:"min_duration_hours"`
	PaymentPerMWHr       float64  `json:"payment_mw_hr"`
	PaymentPerKWYear     float64  `json:"payment_kw_yr"`
	PaymentPerMWMonth    float64  `json:"payment_mw_month"`
	ActivationPerMWh     float64  `json:"activation_mwh"`
	ExpectedHoursPerYear float64  `json:"expected_hours_yr"`
	MinCapacityMW        float64  `json:"min_capacity_mw"`
	Workloads            []string `json:"workloads"`
}

// AvailabilityRevenue prices the standing payment for the eligible MW.
func (p DRProduct) AvailabilityRevenue(eligibleMW float64) float64 {
	switch {
	case p.PaymentPerMWHr > 0:
		return eligibleMW * p.PaymentPerMWHr * 8760
	case p.PaymentPerKWYear > 0:
		return eligibleMW * 1000 * p.PaymentPerKWYear
	case p.PaymentPerMWMonth > 0:
		return eligibleMW * p.PaymentPerMWMonth * 12
	default:
		return 0
	}
}

// ActivationRevenue prices the expected deployment energy.
func (p DRProduct) ActivationRevenue(eligibleMW float64) float64 {
	return eligibleMW * p.ExpectedHoursPerYear * p.ActivationPerMWh
}

// Compatible reports whether the product can be served by any workload in
// the mix. A product with no workload list accepts every mix.
func (p DRProduct) Compatible(mix map[string]float64) bool {
	if len(p.Workloads) == 0 {
		return true
	}
	for _, w := range p.Workloads {
		if mix[w] > 0 {
			return true
		}
	}
	return false
}

// DefaultProducts returns the ERCOT-style screening product book.
func DefaultProducts() []DRProduct {
	return []DRProduct{
		{
			ID: "econ_dr", Name: "Economic DR",
			ResponseTimeMin: 60, MinDurationHours: 4,
			PaymentPerMWHr: 50,
			Workloads:      []string{"pre_training", "fine_tuning", "batch_inference"},
		},
		{
			ID: "ers_10", Name: "ERS-10",
			ResponseTimeMin: 10, MinDurationHours: 1,
			PaymentPerMWHr: 75,
			Workloads:      []string{"batch_inference"},
		},
		{
			ID: "ers_30", Name: "ERS-30",
			ResponseTimeMin: 30, MinDurationHours: 2,
			PaymentPerMWHr: 60,
			Workloads:      []string{"fine_tuning", "batch_inference"},
		},
		{
			ID: "capacity", Name: "Capacity Market",
			ResponseTimeMin: 120, MinDurationHours: 4,
			PaymentPerMWMonth: 5000,
			Workloads:         []string{"pre_training", "fine_tuning", "batch_inference"},
		},
	}
}

// DefaultWorkloadMix is the screening datacenter composition.
func DefaultWorkloadMix() map[string]float64 {
	return map[string]float64{
		"pre_training":        0.40,
		"fine_tuning":         0.15,
		"batch_inference":     0.20,
		"real_time_inference": 0.15,
		"cloud_hpc":           0.10,
	}
}

// DefaultWorkloadProfiles holds flexibility and five-minute swing shares per
// workload class. Latency-critical classes swing hard but barely curtail;
// batch classes are the reverse.
func DefaultWorkloadProfiles() map[string]model.WorkloadProfile {
	return map[string]model.WorkloadProfile{
		"pre_training":        {FlexibilityPct: 0.30, RampFactor: 0.00},
		"fine_tuning":         {FlexibilityPct: 0.50, RampFactor: 0.05},
		"batch_inference":     {FlexibilityPct: 0.90, RampFactor: 0.00},
		"real_time_inference": {FlexibilityPct: 0.05, RampFactor: 0.50},
		"rl_training":         {FlexibilityPct: 0, RampFactor: 0.10},
		"cloud_hpc":           {FlexibilityPct: 0, RampFactor: 0.02},
		"cooling":             {FlexibilityPct: 0, RampFactor: 0.02},
	}
}

// ServiceRevenue is one product's row in the revenue stack.
type ServiceRevenue struct {
	EligibleMW   float64 `json:"eligible_mw"`
	TotalRevenue float64 `json:"total_revenue"`
}

// GridServices sizes the fleet for base load and stacks demand-response
// revenue on the facility's flexible MW. The objective is total annual
// revenue; cost of energy is reported but not optimized.
type GridServices struct {
	in Inputs
}

func (s *GridServices) Name() string { return model.ProblemGridServices.String() }

func (s *GridServices) Optimize(ctx context.Context) (*model.HeuristicResult, error) {
	start := time.Now()
	res := model.NewResult(model.ProblemGridServices)

	mix := s.in.Load.WorkloadMix
	if len(mix) == 0 {
		mix = DefaultWorkloadMix()
	}
	peak := s.in.Load.PeakMW()

	flexByWorkload := make(map[string]float64, len(mix))
	totalFlex := 0.0
	for workload, share := range mix {
		flexMW := peak * share * s.in.Workloads[workload].FlexibilityPct
		flexByWorkload[workload] = flexMW
		totalFlex += flexMW
	}

	var (
		equipment model.EquipmentConfig
		lcoe      float64
	)
	if len(s.in.Load.Years) > 1 {
		st, err := s.in.Stack.Build(ctx, s.in.Load)
		if err != nil {
			return nil, err
		}
		equipment = st.FinalConfig
		lcoe = st.BlendedLCOE
		res.EnergyDeliveredMWh = st.TotalDeliveredMWh
		res.UnservedEnergyMWh = st.TotalUnservedMWh
	} else {
		equipment = s.in.Sizer.SizeToLoad(peak, s.in.Limits.RequireN1)
		if peak > 0 {
			dr, err := s.in.simulateYear(equipment, peak)
			if err != nil {
				return nil, err
			}
			lcoe, _ = s.in.Calc.LCOE(equipment, dr.EnergyDeliveredMWh, dr.GenerationMWh)
			res.Dispatch = dr.Summary()
			res.EnergyDeliveredMWh = dr.EnergyDeliveredMWh
			res.UnservedEnergyMWh = dr.UnservedEnergyMWh
			res.UnservedPct = dr.UnservedPct
		}
	}

	eligible := totalFlex * s.in.GridServices.EligibilityDerate
	serviceRevenue := make(map[string]ServiceRevenue)
	totalRevenue := 0.0
	for _, p := range s.in.GridServices.Products {
		if eligible < p.MinCapacityMW {
			continue
		}
		row := ServiceRevenue{EligibleMW: eligible}
		if p.Compatible(mix) {
			row.TotalRevenue = p.AvailabilityRevenue(eligible) + p.ActivationRevenue(eligible)
			totalRevenue += row.TotalRevenue
		} else {
			res.Warn("%s: no compatible workloads in mix", p.ID)
		}
		serviceRevenue[p.ID] = row
	}

	res.Feasible = true
	res.ObjectiveValue = model.JSONFloat(totalRevenue)
	res.LCOE = model.JSONFloat(lcoe)
	res.Equipment = equipment

	res.Details["total_flex_mw"] = totalFlex
	res.Details["flex_by_workload"] = flexByWorkload
	res.Details["service_revenue"] = serviceRevenue
	res.Details["total_annual_revenue"] = totalRevenue
	if peak > 0 {
		res.Details["dr_revenue_per_mw"] = totalRevenue / peak
	}

	res.SolveTimeSeconds = time.Since(start).Seconds()
	s.in.Log.Debugw("grid services solved", map[string]any{
		"total_flex_mw": totalFlex,
		"eligible_mw":   eligible,
		"revenue":       totalRevenue,
	})
	return res, nil
}
