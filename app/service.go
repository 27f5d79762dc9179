package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	kpiapi "github.com/gridsmith/powerplan/api/kpi"
	runsapi "github.com/gridsmith/powerplan/api/runs"
	solveapi "github.com/gridsmith/powerplan/api/solve"
	"github.com/gridsmith/powerplan/app/plugins"
	"github.com/gridsmith/powerplan/config"
	"github.com/gridsmith/powerplan/core/constraints"
	"github.com/gridsmith/powerplan/core/economics"
	"github.com/gridsmith/powerplan/core/events"
	"github.com/gridsmith/powerplan/core/landuse"
	coremetrics "github.com/gridsmith/powerplan/core/metrics"
	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/monitoring"
	"github.com/gridsmith/powerplan/core/runlog"
	"github.com/gridsmith/powerplan/core/sizing"
	"github.com/gridsmith/powerplan/core/solver"
	"github.com/gridsmith/powerplan/core/stack"
	"github.com/gridsmith/powerplan/infra/kpi"
	"github.com/gridsmith/powerplan/infra/logger"
	inframetrics "github.com/gridsmith/powerplan/infra/metrics"
	inframonitoring "github.com/gridsmith/powerplan/infra/monitoring"
	"github.com/gridsmith/powerplan/internal/eventbus"
	"github.com/gridsmith/powerplan/jobs/fuelkpi"
)

// Service orchestrates solves: it builds strategy inputs from configuration,
// assigns run ids, persists results and fans events out to the metrics sinks.
type Service struct {
	cfg     *config.Config
	catalog model.EquipmentCatalog
	store   runlog.Store
	kpi     *kpi.SQLiteStore
	sink    coremetrics.SolveSink
	bus     eventbus.EventBus
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := inframonitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}
	monitoring.Init(mon)

	sink, err := coremetrics.NewSolveSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	store, err := plugins.NewRunStore(cfg.RunLog)
	if err != nil {
		return nil, fmt.Errorf("run store: %w", err)
	}
	var kpiStore *kpi.SQLiteStore
	if cfg.KPI.Enabled {
		kpiStore, err = kpi.NewSQLiteStore(cfg.KPI.Path)
		if err != nil {
			return nil, fmt.Errorf("kpi store: %w", err)
		}
	}

	return &Service{
		cfg:     cfg,
		catalog: cfg.EquipmentCatalog(),
		store:   store,
		kpi:     kpiStore,
		sink:    sink,
		bus:     eventbus.New(),
		log:     logg,
	}, nil
}

// Store exposes the run store for the CLI history commands.
func (s *Service) Store() runlog.Store { return s.store }

// Solve runs one scenario end to end: strategy construction, optimization,
// event publication and run persistence. Store and sink failures are logged
// and reported but never fail a completed solve.
func (s *Service) Solve(ctx context.Context, sc config.Scenario) (*model.HeuristicResult, error) {
	in := s.buildInputs(sc)
	strat, err := solver.New(sc.ProblemType(), in)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	start := time.Now()
	res, err := strat.Optimize(ctx)
	if err != nil {
		monitoring.CaptureException(err, map[string]string{
			"problem":  sc.ProblemType().String(),
			"scenario": sc.Name,
		})
		return nil, err
	}
	elapsed := time.Since(start)
	res.RunID = runID

	s.log.Infof("solve %s completed: problem=%s feasible=%t lcoe=%.2f in %.2fs",
		runID, res.ProblemType, res.Feasible, float64(res.LCOE), elapsed.Seconds())

	s.publish(runID, sc, res, elapsed)
	s.persist(ctx, runID, sc, res)
	return res, nil
}

// buildInputs wires the core services for one scenario. Services are cheap
// to construct and scenario limits vary per request, so each solve gets a
// fresh set.
func (s *Service) buildInputs(sc config.Scenario) solver.Inputs {
	calc := economics.NewCalculator(s.catalog, s.cfg.Parameters)
	szr := sizing.New(s.catalog, sc.Limits, sizing.DefaultPolicy())
	stk := stack.NewBuilder(s.catalog, szr, calc, sc.Limits.RequireN1, logger.New("stack"))
	stk.LoadOpts = s.cfg.Profiles.Load
	stk.SolarOpts = s.cfg.Profiles.Solar
	return solver.Inputs{
		Catalog:      s.catalog,
		Limits:       sc.Limits,
		Load:         sc.Trajectory(),
		Sizer:        szr,
		Calc:         calc,
		Checker:      constraints.NewChecker(s.catalog, sc.Limits, constraints.DefaultCommissioningMonths),
		Stack:        stk,
		Land:         landuse.New(s.catalog, landuse.DefaultParams()),
		Log:          logger.New("solver"),
		Brownfield:   sc.Brownfield,
		LandDev:      sc.LandDev,
		GridServices: sc.GridServices,
		Bridge:       sc.Bridge,
	}
}

func (s *Service) publish(runID string, sc config.Scenario, res *model.HeuristicResult, elapsed time.Duration) {
	s.bus.Publish(events.SolveCompleted{
		RunID:    runID,
		Problem:  res.ProblemType,
		Scenario: sc.Name,
		Result:   res,
		Duration: elapsed,
	})
	if years, ok := res.Details["annual_stack"].([]stack.YearResult); ok {
		for _, y := range years {
			s.bus.Publish(events.YearSimulated{
				RunID:   runID,
				Year:    y.Year,
				PeakMW:  y.PeakMW,
				Summary: y.Dispatch,
			})
		}
	}
	if len(res.Constraints) > 0 {
		s.bus.Publish(events.ConstraintsChecked{RunID: runID, Constraints: res.Constraints})
	}
}

func (s *Service) persist(ctx context.Context, runID string, sc config.Scenario, res *model.HeuristicResult) {
	rec := runlog.RunRecord{
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Problem:   res.ProblemType,
		Scenario:  sc.Name,
		Result:    res,
	}
	if err := s.store.Append(ctx, rec); err != nil {
		s.log.Errorf("run store append: %v", err)
		monitoring.CaptureException(err, map[string]string{"component": "runlog"})
	}
}

// Run serves the HTTP API and forwards bus events to the metrics sinks until
// the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	inframetrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.kpi != nil {
		fuelkpi.Collect(ctx, s.bus, s.kpi, s.log)
	}
	if port := s.promPort(); port != "" {
		go func() {
			defer monitoring.Recover()
			if err := inframetrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/api/solve", solveapi.NewHandler(s, s.cfg.API.AuthToken))
	mux.Handle("/api/runs", runsapi.NewHandler(s.store, s.cfg.API.AuthToken))
	if s.kpi != nil {
		mux.Handle("/api/kpi/", kpiapi.NewHandler(s.kpi, s.cfg.KPI.EmissionFactor, s.cfg.API.AuthToken))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("serving on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// promPort reads the scrape port from the prometheus sink section, if any.
func (s *Service) promPort() string {
	for _, mc := range s.cfg.Metrics.Sinks {
		if mc.Type != "prometheus" {
			continue
		}
		if p, ok := mc.Conf["prometheus_port"].(string); ok {
			return p
		}
	}
	return ""
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	monitoring.Flush(2 * time.Second)
	if s.kpi != nil {
		if err := s.kpi.Close(); err != nil {
			s.log.Errorf("kpi store close: %v", err)
		}
	}
	return s.store.Close()
}
