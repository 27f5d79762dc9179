package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gridsmith/powerplan/app/plugins"
	"github.com/gridsmith/powerplan/core/runlog"
	"github.com/gridsmith/powerplan/infra/kpi"
	"github.com/gridsmith/powerplan/infra/logger"
	"github.com/gridsmith/powerplan/jobs/fuelkpi"
)

var kpiDB string

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Fuel KPI related commands",
}

var kpiBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Rebuild fuel KPI rows from the run history",
	RunE:  runKPIBackfill,
}

func init() {
	kpiBackfillCmd.Flags().StringVar(&kpiDB, "db", "", "fuel KPI database path (defaults to kpi.path from the config)")
	kpiCmd.AddCommand(kpiBackfillCmd)
	rootCmd.AddCommand(kpiCmd)
}

func runKPIBackfill(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := plugins.NewRunStore(cfg.RunLog)
	if err != nil {
		return fmt.Errorf("run store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.New("kpi").Errorf("run store close: %v", err)
		}
	}()

	history, err := store.Query(cmd.Context(), runlog.Query{})
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}
	path := kpiDB
	if path == "" {
		path = cfg.KPI.Path
	}
	kpiStore, err := kpi.NewSQLiteStore(path)
	if err != nil {
		return fmt.Errorf("kpi store: %w", err)
	}
	defer func() {
		if err := kpiStore.Close(); err != nil {
			logger.New("kpi").Errorf("kpi store close: %v", err)
		}
	}()
	if err := fuelkpi.Backfill(kpiStore, history); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "backfilled %d runs into %s\n", len(history), path)
	return nil
}
