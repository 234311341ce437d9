package session

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"anteater/internal/debt"
	"anteater/internal/errs"
	"anteater/internal/logging"
	"anteater/internal/metrics"
)

// Pool runs AnalyzeProject's per-file pipeline across a bounded set of
// goroutines instead of AnalysisSession.AnalyzeProject's single cooperative
// loop. Each worker gets its own CFG/SSA/facts arena (spec.md §5: "own
// AST/CFG/SSA arenas, no shared mutable state"); the only state workers
// share is the session's AST cache (read-only here, via a read lock) and
// the fact warehouse, which is already safe for concurrent use.
//
// Grounded on the teacher's internal/perception/semantic_classifier.go
// errgroup.WithContext fan-out (first-error propagation via g.Wait, a
// gctx.Done() guard inside each worker) combined with the bounded,
// file-keyed worker shape of internal/world/incremental_scan.go.
type Pool struct {
	session *AnalysisSession
	limit   int
}

// NewPool returns a Pool bounded by s's configured MaxConcurrentFiles.
func NewPool(s *AnalysisSession) *Pool {
	limit := s.cfg.Session.MaxConcurrentFiles
	if limit <= 0 {
		limit = 1
	}
	return &Pool{session: s, limit: limit}
}

// AnalyzeFiles is Pool's concurrent counterpart to
// AnalysisSession.AnalyzeProject. It returns the first worker error
// (including SessionDisposedError from a Shutdown that races the run) and
// otherwise merges every file's diagnostics into one report.
func (p *Pool) AnalyzeFiles(ctx context.Context, files []string) (*ProjectAnalysisResult, error) {
	if p.session.isDisposed() {
		return nil, &errs.SessionDisposedError{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)

	results := make([]fileResult, len(files))
	missing := make([]bool, len(files))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if p.session.isDisposed() {
				return &errs.SessionDisposedError{}
			}

			unit, ok := p.session.unit(path)
			if !ok {
				missing[i] = true
				return nil
			}

			fr := p.session.analyzeFile(unit)
			if err := p.session.warehouse.IngestFile(path, fr.facts); err != nil {
				logging.Get(logging.CategoryFacts).Warn("ingest facts for %s: %v", path, err)
			}
			results[i] = fr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := newResult()
	var allFunctions []metrics.FunctionMetrics
	var allDebtItems []debt.Item

	for i, path := range files {
		if missing[i] {
			result.add(path, Diagnostic{
				Message:  fmt.Sprintf("file %s was never resolved into the session", path),
				Severity: SeverityError,
				Source:   "anteater",
			})
			continue
		}
		result.FileCount++
		for _, d := range results[i].diagnostics {
			result.add(path, d)
		}
		allFunctions = append(allFunctions, results[i].functions...)
		allDebtItems = append(allDebtItems, results[i].debtItems...)
	}

	p.session.mu.Lock()
	p.session.lastFunctions = allFunctions
	p.session.lastDebtItems = allDebtItems
	p.session.mu.Unlock()

	return result, nil
}
