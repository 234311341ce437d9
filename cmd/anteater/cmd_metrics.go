package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"anteater/internal/metrics"
	"anteater/internal/session"
)

var metricsJSON bool

var metricsCmd = &cobra.Command{
	Use:   "metrics [path]",
	Short: "Report per-function complexity and maintainability metrics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMetrics,
}

func init() {
	// Shares analyzeCmd's --ext flag variable; metrics/debt/query all select
	// files the same way analyze does.
	metricsCmd.Flags().StringSliceVar(&analyzeExtensions, "ext", []string{".dart"}, "File extensions to analyze")
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Print the report as JSON")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	s, files, err := prepareSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.Shutdown()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()
	if _, err := session.NewPool(s).AnalyzeFiles(ctx, files); err != nil {
		return err
	}

	report := s.MetricsReport()
	if metricsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("Functions: %d   Health score: %.1f\n", len(report.Functions), report.HealthScore)
	fmt.Printf("MI bands: green=%d yellow=%d red=%d\n",
		report.Histogram[metrics.BandGreen], report.Histogram[metrics.BandYellow], report.Histogram[metrics.BandRed])
	for _, v := range report.Violations {
		fmt.Printf("  %s: %s (%s)\n", v.Function, v.Detail, v.Code)
	}
	return nil
}

// prepareSession is the shared setup for metrics/debt: resolve the target
// path, load config, build a session, and collect the file list. It does
// not run the pipeline; callers invoke AnalyzeProject/AnalyzeFiles
// themselves so they can choose sequential vs. pooled execution.
func prepareSession(cmd *cobra.Command, args []string) (*session.AnalysisSession, []string, error) {
	target := workspace
	if len(args) > 0 {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(workspace, target)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	s, err := session.New(cfg, session.WithStrict(strict))
	if err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}

	files, err := discoverFiles(target, analyzeExtensions)
	if err != nil {
		s.Shutdown()
		return nil, nil, err
	}
	if sourceParser != nil {
		for _, path := range files {
			unit, err := sourceParser(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "parse %s: %v\n", path, err)
				continue
			}
			if err := s.ResolveFile(unit); err != nil {
				s.Shutdown()
				return nil, nil, err
			}
		}
	}
	return s, files, nil
}
