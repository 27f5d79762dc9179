package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/stack"
)

// WriteJSON writes the solve result to w in JSON format.
func WriteJSON(w io.Writer, res *model.HeuristicResult) error {
	enc := json.NewEncoder(w)
	return enc.Encode(res)
}

// WriteCSV writes the annual stack to w in CSV format, one row per analysis
// year.
func WriteCSV(w io.Writer, years []stack.YearResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"year", "peak_mw",
		"recip_mw", "turbine_mw", "bess_power_mw", "bess_energy_mwh",
		"solar_mw_dc", "grid_import_mw",
		"added_capex", "annual_cost", "lcoe_usd_mwh",
		"delivered_mwh", "unserved_mwh",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, y := range years {
		rec := []string{
			strconv.Itoa(y.Year),
			fmtFloat(y.PeakMW),
			fmtFloat(y.Config.RecipMW),
			fmtFloat(y.Config.TurbineMW),
			fmtFloat(y.Config.BESSPowerMW),
			fmtFloat(y.Config.BESSEnergyMWh),
			fmtFloat(y.Config.SolarMWDC),
			fmtFloat(y.Config.GridImportMW),
			fmtFloat(y.AddedCapex),
			fmtFloat(y.AnnualCost),
			fmtFloat(y.LCOE),
			fmtFloat(y.DeliveredMWh),
			fmtFloat(y.UnservedMWh),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
