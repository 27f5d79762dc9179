package fuel

// DefaultEmissionFactorKgPerMMBtu is the CO2 content of pipeline natural gas.
const DefaultEmissionFactorKgPerMMBtu = 53.06

// Record aggregates fuel use and emissions for one run and scenario year.
type Record struct {
	RunID        string
	Year         int
	DeliveredMWh float64
	FuelMMBtu    float64
	GasMCF       float64
}

// CO2Tons returns metric tons of CO2 using the emission factor in kg/MMBtu.
func (r Record) CO2Tons(factor float64) float64 {
	return r.FuelMMBtu * factor / 1000
}

// GasIntensity returns MCF of gas burned per MWh delivered.
func (r Record) GasIntensity() float64 {
	if r.DeliveredMWh == 0 {
		return 0
	}
	return r.GasMCF / r.DeliveredMWh
}
