package solve

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gridsmith/powerplan/config"
	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/solver"
)

// Runner executes one scenario to completion.
type Runner interface {
	Solve(ctx context.Context, sc config.Scenario) (*model.HeuristicResult, error)
}

// NewHandler returns an HTTP handler running solves via POST /api/solve.
// The request body is a scenario document; the response is the solve result.
// Requests must include an Authorization header with "Bearer <token>" when
// token is non-empty.
func NewHandler(runner Runner, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
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
		var sc config.Scenario
		if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
			http.Error(w, "invalid scenario: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := sc.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := runner.Solve(r.Context(), sc)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, solver.ErrUnknownProblem) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
