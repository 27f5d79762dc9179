package config

import "github.com/gridsmith/powerplan/core/model"

// DefaultCatalog returns the screening equipment catalog. Values are
// planning-grade figures for 2026-vintage natural-gas and renewable
// equipment; deployments override individual technologies through the
// catalog configuration section.
func DefaultCatalog() model.EquipmentCatalog {
	return model.EquipmentCatalog{Specs: map[string]model.EquipmentSpec{
		model.TechRecip: {
			Technology:        model.TechRecip,
			UnitCapacityMW:    18.3,
			HeatRateBTUPerKWh: 7700,
			NOxLbPerMWh:       0.50,
			RampRateMWPerMin:  3.0,
			StartTimeColdMin:  10,
			LeadTimeMonthsMin: 12,
			LeadTimeMonthsMax: 18,
			CapexPerKW:        1650,
			VOMPerMWh:         8.50,
			FOMPerKWYear:      18.50,
			AvailabilityPct:   0.975,
			LandAcresPerMW:    0.5,
			CostPerKWMonth:    50,
		},
		model.TechTurbine: {
			Technology:        model.TechTurbine,
			UnitCapacityMW:    50.0,
			HeatRateBTUPerKWh: 8500,
			NOxLbPerMWh:       0.25,
			RampRateMWPerMin:  8.0,
			StartTimeColdMin:  25,
			LeadTimeMonthsMin: 18,
			LeadTimeMonthsMax: 24,
			CapexPerKW:        1300,
			VOMPerMWh:         6.50,
			FOMPerKWYear:      12.50,
			AvailabilityPct:   0.95,
			LandAcresPerMW:    0.3,
			CostPerKWMonth:    40,
		},
		model.TechBESS: {
			Technology:       model.TechBESS,
			UnitCapacityMW:   50.0,
			DurationHours:    4,
			RoundTripEff:     0.90,
			RampRateMWPerMin: 50,
			LeadTimeMonthsMin: 9,
			LeadTimeMonthsMax: 12,
			CapexPerKWh:      236,
			AvailabilityPct:  0.995,
			LandAcresPerMW:   0.25,
		},
		model.TechSolar: {
			Technology:        model.TechSolar,
			CapexPerKW:        950,
			CapacityFactor:    0.25,
			LeadTimeMonthsMin: 9,
			LeadTimeMonthsMax: 12,
			AvailabilityPct:   0.995,
			LandAcresPerMW:    5.0,
		},
		model.TechGrid: {
			Technology:        model.TechGrid,
			CapexPerKW:        500,
			EnergyPricePerMWh: 80,
			LeadTimeMonthsMin: 48,
			LeadTimeMonthsMax: 60,
			AvailabilityPct:   0.9997,
		},
	}}
}
