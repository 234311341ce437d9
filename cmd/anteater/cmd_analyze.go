package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"anteater/internal/session"
	"anteater/internal/sourceast"
	"anteater/internal/watch"
)

// sourceParser builds a sourceast.ParsedUnit from a file on disk. The
// analysis core deliberately has no concrete implementation of this
// (spec.md §1: parsing the source language is out of scope); a real
// deployment registers one here. Left nil so the shell stays honest about
// what it can and cannot do without one.
var sourceParser func(path string) (sourceast.ParsedUnit, error)

var (
	analyzeExtensions []string
	analyzeWatch      bool
	analyzeJSON       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Run the full analysis pipeline over a file or directory tree",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeExtensions, "ext", []string{".dart"}, "File extensions to analyze")
	analyzeCmd.Flags().BoolVar(&analyzeWatch, "watch", false, "Re-run analysis whenever a matching file changes")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the result as JSON instead of a human summary")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	target := workspace
	if len(args) > 0 {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(workspace, target)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := session.New(cfg, session.WithStrict(strict))
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer s.Shutdown()

	runOnce := func() error {
		files, err := discoverFiles(target, analyzeExtensions)
		if err != nil {
			return err
		}
		if sourceParser == nil {
			fmt.Println("anteater: no source-language parser is registered; the analysis core has nothing to lower.")
			fmt.Printf("Found %d candidate file(s) under %s that would be analyzed once a parser is wired in.\n", len(files), target)
			return nil
		}
		for _, path := range files {
			unit, err := sourceParser(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "parse %s: %v\n", path, err)
				continue
			}
			if err := s.ResolveFile(unit); err != nil {
				return err
			}
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()
		result, err := session.NewPool(s).AnalyzeFiles(ctx, files)
		if err != nil {
			return err
		}
		return printResult(result)
	}

	if !analyzeWatch {
		return runOnce()
	}

	fmt.Printf("anteater: watching %s (%v) for changes; press Ctrl-C to stop\n", target, analyzeExtensions)
	w, err := watch.New(target, analyzeExtensions, 0, func(paths []string) {
		fmt.Printf("\nanteater: %d file(s) changed, re-analyzing\n", len(paths))
		if err := runOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	ctx := cmd.Context()
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	if err := runOnce(); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// discoverFiles walks root collecting every file whose extension is in
// extensions. root itself is returned as a single-element slice if it is
// already a file.
func discoverFiles(root string, extensions []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	allowed := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		allowed[e] = true
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if len(allowed) == 0 || allowed[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func printResult(result *session.ProjectAnalysisResult) error {
	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Analyzed %d file(s): %d error(s), %d warning(s), %d info\n",
		result.FileCount, result.ErrorCount, result.WarningCount, result.InfoCount)
	for file, diags := range result.Diagnostics {
		for _, d := range diags {
			fmt.Printf("%s:%d:%d: %s: %s\n", file, d.Range.Start.Line, d.Range.Start.Character, d.Severity, d.Message)
		}
	}
	if result.ErrorCount > 0 {
		os.Exit(1)
	}
	return nil
}
