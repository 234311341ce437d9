// Package main implements the anteater CLI: a thin cobra shell over
// internal/session, exposing analyze, metrics, debt, and query subcommands
// (SPEC_FULL.md's "CLI / host shell" section). It is deliberately out of
// scope for the analysis core's own contract — it exists so the module
// builds end to end and gives the ambient stack (config loading, logging
// setup) a concrete call site.
//
// Grounded on the teacher's cmd/nerd/main.go: a cobra rootCmd with
// persistent --workspace/--verbose flags, a PersistentPreRunE that boots
// internal/logging before any subcommand runs, and a PersistentPostRun that
// tears it down.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"anteater/internal/config"
	"anteater/internal/logging"
)

var (
	workspace  string
	configPath string
	debug      bool
	strict     bool
)

var rootCmd = &cobra.Command{
	Use:   "anteater",
	Short: "anteater - a static analysis core for bounds, nullability, and taint",
	Long: `anteater runs a pipeline of CFG construction, SSA, abstract interpretation,
and Datalog-based points-to/reachability/taint analysis over a source
tree, reporting diagnostics, maintainability metrics, and technical debt.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ws := workspace
		if ws == "" {
			ws, _ = os.Getwd()
		} else if abs, err := filepath.Abs(ws); err == nil {
			ws = abs
		}
		workspace = ws

		logDir := filepath.Join(ws, ".anteater", "logs")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logging.Initialize(logDir, cfg.Logging.DebugMode || debug, cfg.Logging.Categories, cfg.Logging.Level, cfg.Logging.JSONFormat); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to initialize logging: %v\n", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
	},
}

// loadConfig resolves the config path relative to workspace and loads it,
// falling back to defaults per internal/config.Load's own missing-file
// behavior.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(workspace, ".anteater.yaml")
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(workspace, path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Project root (default: current directory)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config YAML (default: <workspace>/.anteater.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug-level logging")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Promote unknown verifier outcomes to hint diagnostics")

	rootCmd.AddCommand(analyzeCmd, metricsCmd, debtCmd, queryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
