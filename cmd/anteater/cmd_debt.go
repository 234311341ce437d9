package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"anteater/internal/session"
)

var debtJSON bool

var debtCmd = &cobra.Command{
	Use:   "debt [path]",
	Short: "Report technical-debt items and their aggregate cost",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDebt,
}

func init() {
	debtCmd.Flags().StringSliceVar(&analyzeExtensions, "ext", []string{".dart"}, "File extensions to analyze")
	debtCmd.Flags().BoolVar(&debtJSON, "json", false, "Print the report as JSON")
}

func runDebt(cmd *cobra.Command, args []string) error {
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

	report := s.DebtReport()
	if debtJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("Debt items: %d   Total cost: %.2f %s\n", len(report.Items), report.TotalCost, report.Unit)
	if report.ExceedsThreshold {
		fmt.Println("WARNING: total debt cost exceeds the configured threshold")
	}
	for _, item := range report.Items {
		fmt.Printf("  [%s/%s] %s:%d %s (%.2f %s)\n", item.Type, item.Severity, item.File, item.Line, item.Detail, item.Cost, report.Unit)
	}

	if report.ExceedsThreshold {
		os.Exit(1)
	}
	return nil
}
