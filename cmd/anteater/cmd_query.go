package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"anteater/internal/session"
)

var queryCmd = &cobra.Command{
	Use:   "query [path] [predicate-query]",
	Short: "Run analysis over path, then evaluate an ad-hoc Datalog query against the resulting fact store",
	Long: `Analyzes path, then evaluates query (Mangle atom notation, e.g.
"Flow(X, Y)" or "Alloc(V, H)") against the facts the run extracted.
Points-to, reachability and taint derivations are not stored in the fact
store and cannot be queried here.`,
	Args: cobra.ExactArgs(2),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringSliceVar(&analyzeExtensions, "ext", []string{".dart"}, "File extensions to analyze")
}

func runQuery(cmd *cobra.Command, args []string) error {
	s, files, err := prepareSession(cmd, args[:1])
	if err != nil {
		return err
	}
	defer s.Shutdown()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()
	if _, err := session.NewPool(s).AnalyzeFiles(ctx, files); err != nil {
		return err
	}

	result, err := s.Warehouse().Query(ctx, args[1])
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(result.Bindings) == 0 {
		fmt.Printf("No facts matched '%s'\n", args[1])
		return nil
	}

	fmt.Printf("%d binding(s) for '%s' (%v):\n", len(result.Bindings), args[1], result.Duration)
	for _, binding := range result.Bindings {
		keys := make([]string, 0, len(binding))
		for k := range binding {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, binding[k])
		}
		fmt.Printf("  %v\n", parts)
	}
	return nil
}
