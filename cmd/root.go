package cmd

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/gridsmith/powerplan/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "powerplan",
	Short: "Capacity planning and dispatch screening for on-site power",
	Long: `powerplan sizes and prices on-site generation fleets for datacenter
loads: greenfield buildout, brownfield expansion, land development,
grid services and bridge power, each solved as a fast screening heuristic.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the configured file. When the flag was left at its
// default and no file exists, the built-in defaults apply so the CLI works
// out of the box; an explicitly named missing file is still an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil && errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg = &config.Config{}
		cfg.SetDefaults()
		return cfg, nil
	}
	return cfg, err
}
