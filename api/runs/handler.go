package runs

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/runlog"
)

// NewHandler returns an HTTP handler exposing solve history via GET /api/runs.
// Requests must include an Authorization header with "Bearer <token>" when
// token is non-empty.
func NewHandler(store runlog.Store, token string) http.Handler {
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
		q := runlog.Query{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		if p := r.URL.Query().Get("problem"); p != "" {
			if v, ok := problemFromString(p); ok {
				q.Problem = v
			}
		}
		q.Scenario = r.URL.Query().Get("scenario")
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// problemFromString accepts both the numeric problem id and its name.
func problemFromString(s string) (model.ProblemType, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		t := model.ProblemType(n)
		return t, t.Valid()
	}
	switch s {
	case "greenfield":
		return model.ProblemGreenfield, true
	case "brownfield":
		return model.ProblemBrownfield, true
	case "land_development":
		return model.ProblemLandDev, true
	case "grid_services":
		return model.ProblemGridServices, true
	case "bridge_power":
		return model.ProblemBridgePower, true
	default:
		return 0, false
	}
}
