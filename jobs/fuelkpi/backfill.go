package fuelkpi

import (
	"encoding/json"

	"github.com/gridsmith/powerplan/core/metrics/fuel"
	"github.com/gridsmith/powerplan/core/runlog"
)

// yearRow is the subset of an annual stack entry the KPI store needs. Stored
// results round-trip through JSON, so the stack shows up as generic maps and
// is decoded by tag here.
type yearRow struct {
	Year         int     `json:"year"`
	DeliveredMWh float64 `json:"delivered_mwh"`
	Dispatch     struct {
		FuelMMBtu float64 `json:"fuel_mmbtu"`
		GasMCF    float64 `json:"gas_mcf"`
	} `json:"dispatch"`
}

// Backfill processes stored solver runs and populates the fuel KPI store.
// Runs carrying an annual stack yield one row per trajectory year; other runs
// yield a single aggregate row keyed by the year the run was recorded.
func Backfill(store fuel.Store, history []runlog.RunRecord) error {
	for _, h := range history {
		if h.Result == nil {
			continue
		}
		if rows, ok := annualRows(h.Result.Details); ok {
			for _, y := range rows {
				rec := fuel.Record{
					RunID:        h.RunID,
					Year:         y.Year,
					DeliveredMWh: y.DeliveredMWh,
					FuelMMBtu:    y.Dispatch.FuelMMBtu,
					GasMCF:       y.Dispatch.GasMCF,
				}
				if err := store.Add(rec); err != nil {
					return err
				}
			}
			continue
		}
		rec := fuel.Record{
			RunID:        h.RunID,
			Year:         h.Timestamp.Year(),
			DeliveredMWh: h.Result.EnergyDeliveredMWh,
			FuelMMBtu:    h.Result.Dispatch.FuelMMBtu,
			GasMCF:       h.Result.Dispatch.GasMCF,
		}
		if err := store.Add(rec); err != nil {
			return err
		}
	}
	return nil
}

func annualRows(details map[string]any) ([]yearRow, bool) {
	v, ok := details["annual_stack"]
	if !ok || v == nil {
		return nil, false
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	var rows []yearRow
	if err := json.Unmarshal(raw, &rows); err != nil || len(rows) == 0 {
		return nil, false
	}
	return rows, true
}
