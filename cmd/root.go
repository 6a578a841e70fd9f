// Package cmd implements the CLI surface: a root command plus `run`
// (drive a baseline policy headlessly) and `serve` (start the JSON/HTTP
// agent bridge) subcommands.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	seed       int64
	baseline   string
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "cloudsim-core",
	Short: "Discrete-event cloud datacenter simulator with an agent control plane",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// Execute runs the CLI root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the simulation settings YAML file")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for the simulation RNG")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}
