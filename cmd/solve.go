package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridsmith/powerplan/app"
	"github.com/gridsmith/powerplan/core/model"
	"github.com/gridsmith/powerplan/core/stack"
	"github.com/gridsmith/powerplan/infra/logger"
	"github.com/gridsmith/powerplan/pkg/export"
)

var (
	solveProblem int
	solveFormat  string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run the configured scenario once and print the result",
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().IntVarP(&solveProblem, "problem", "p", 0, "override the scenario problem type (1-5)")
	solveCmd.Flags().StringVarP(&solveFormat, "format", "f", "json", "output format: json or csv")
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sc := cfg.Scenario
	if solveProblem != 0 {
		sc.Problem = solveProblem
	}
	if sc.Problem == 0 {
		return fmt.Errorf("no problem configured: set scenario.problem or pass --problem")
	}
	if err := sc.Validate(); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()

	res, err := svc.Solve(ctx, sc)
	if err != nil {
		return err
	}

	switch solveFormat {
	case "json":
		return export.WriteJSON(cmd.OutOrStdout(), res)
	case "csv":
		years, ok := res.Details["annual_stack"].([]stack.YearResult)
		if !ok {
			return fmt.Errorf("csv output needs an annual stack; %s results carry none, use --format json",
				model.ProblemType(sc.Problem))
		}
		return export.WriteCSV(cmd.OutOrStdout(), years)
	default:
		return fmt.Errorf("unknown format %q", solveFormat)
	}
}
