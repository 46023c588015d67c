package commands

// Root command for Cobra CLI
// Loads layered configuration and initializes logging before any subcommand runs
// Registers all subcommands (render, preview)

import (
	"fmt"

	"econchart/internal/config"
	"econchart/internal/infra/log"

	"github.com/spf13/cobra"
)

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "econchart",
	Short: "Economist-style horizontal bar charts from tabular data",
	Long: `econchart renders a ranked horizontal bar chart in the Economist house style
from a CSV, JSON or Excel table and writes it as a 300 DPI PNG.
Charts can optionally be opened locally or posted to a Telegram chat.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(config.LoadOptions{ConfigFile: configFile, Flags: cmd.Flags()})
		if err != nil {
			return err
		}
		cfg = loaded

		if err := log.Init(cfg.Log.Dir, cfg.Log.Level); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
		return nil
	},
}

// Execute runs the root command and flushes the logs whether or not it failed
func Execute() error {
	defer log.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("log-dir", "logs", "directory for app.log (env: LOG_DIR)")
	rootCmd.PersistentFlags().String("log-level", "debug", "file log level: debug, info, warn, error")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(previewCmd)
}
