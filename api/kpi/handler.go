package kpi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gridsmith/powerplan/core/metrics/fuel"
)

// NewHandler exposes fuel KPIs via GET /api/kpi/{run_id}?start_year=&end_year=.
// The emission factor converts fuel MMBtu into CO2 tons. Requests must include
// an Authorization header with "Bearer <token>" when token is non-empty.
func NewHandler(store fuel.Store, factor float64, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		runID := strings.TrimPrefix(r.URL.Path, "/api/kpi/")
		if runID == "" || strings.Contains(runID, "/") {
			http.NotFound(w, r)
			return
		}
		startYear := yearParam(r, "start_year", 0)
		endYear := yearParam(r, "end_year", 9999)
		recs, err := store.Query(runID, startYear, endYear)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		type out struct {
			Year            int     `json:"year"`
			DeliveredMWh    float64 `json:"delivered_mwh"`
			FuelMMBtu       float64 `json:"fuel_mmbtu"`
			GasMCF          float64 `json:"gas_mcf"`
			CO2Tons         float64 `json:"co2_tons"`
			GasIntensityMCF float64 `json:"gas_intensity_mcf_per_mwh"`
		}
		outSlice := make([]out, len(recs))
		for i, rec := range recs {
			outSlice[i] = out{
				Year:            rec.Year,
				DeliveredMWh:    rec.DeliveredMWh,
				FuelMMBtu:       rec.FuelMMBtu,
				GasMCF:          rec.GasMCF,
				CO2Tons:         rec.CO2Tons(factor),
				GasIntensityMCF: rec.GasIntensity(),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(outSlice)
	})
}

// yearParam parses an integer query parameter, keeping def on absent or bad
// values.
func yearParam(r *http.Request, name string, def int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
