package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the resolved equipment catalog and financial parameters",
	RunE:  runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	out := struct {
		Catalog    any `json:"catalog"`
		Parameters any `json:"parameters"`
	}{
		Catalog:    cfg.EquipmentCatalog().Specs,
		Parameters: cfg.Parameters,
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
