package session

import (
	"context"
	"fmt"

	"anteater/internal/absint"
	"anteater/internal/cfgbuild"
	"anteater/internal/datalog"
	"anteater/internal/debt"
	"anteater/internal/errs"
	"anteater/internal/facts"
	"anteater/internal/ir"
	"anteater/internal/logging"
	"anteater/internal/metrics"
	"anteater/internal/sourceast"
	"anteater/internal/ssa"
	"anteater/internal/verify"
)

// AnalyzeProject runs the full pipeline (CFG lowering, SSA construction,
// fact extraction, abstract interpretation, bounds/null verification,
// metrics, and technical-debt scanning) over every path in files, each of
// which must already have been registered via ResolveFile.
//
// This is the cooperative loop spec.md §5 describes: it yields between
// files via a select on ctx.Done(), never inside a single file's
// fixpoints — those run synchronously to completion or to their
// maxIterations hard stop.
func (s *AnalysisSession) AnalyzeProject(ctx context.Context, files []string) (*ProjectAnalysisResult, error) {
	if s.isDisposed() {
		return nil, &errs.SessionDisposedError{}
	}

	result := newResult()
	var allFunctions []metrics.FunctionMetrics
	var allDebtItems []debt.Item

	for _, path := range files {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if s.isDisposed() {
			return result, &errs.SessionDisposedError{}
		}

		unit, ok := s.unit(path)
		if !ok {
			result.add(path, Diagnostic{
				Message:  fmt.Sprintf("file %s was never resolved into the session", path),
				Severity: SeverityError,
				Source:   "anteater",
			})
			continue
		}

		fr := s.analyzeFile(unit)
		result.FileCount++
		for _, d := range fr.diagnostics {
			result.add(path, d)
		}
		allFunctions = append(allFunctions, fr.functions...)
		allDebtItems = append(allDebtItems, fr.debtItems...)

		if err := s.warehouse.IngestFile(path, fr.facts); err != nil {
			logging.Get(logging.CategoryFacts).Warn("ingest facts for %s: %v", path, err)
		}
	}

	s.mu.Lock()
	s.lastFunctions = allFunctions
	s.lastDebtItems = allDebtItems
	s.mu.Unlock()

	return result, nil
}

// fileResult is the intermediate per-file outcome analyzeFile assembles
// before AnalyzeProject folds it into the project-wide report.
type fileResult struct {
	diagnostics []Diagnostic
	functions   []metrics.FunctionMetrics
	debtItems   []debt.Item
	facts       []facts.Fact
}

// analyzeFile runs every declaration in unit through the pipeline. A
// per-function failure (UnsupportedConstruct, InvariantViolation,
// FixpointInconclusive) is recorded as a diagnostic on that function's
// location and does not stop the rest of the file, per spec.md §7's
// containment policy.
func (s *AnalysisSession) analyzeFile(unit sourceast.ParsedUnit) fileResult {
	var fr fileResult
	var violations []metrics.Violation
	alloc := facts.NewHeapAllocator()
	var fns []*ir.Function

	for _, decl := range unit.Declarations() {
		fn, diags := s.lowerDeclaration(unit, decl)
		fr.diagnostics = append(fr.diagnostics, diags...)
		if fn == nil {
			continue
		}
		fns = append(fns, fn)

		fm := metrics.Compute(decl, unit)
		fr.functions = append(fr.functions, fm)
		fnViolations := metrics.Violations(fm, s.cfg.Metrics)
		violations = append(violations, fnViolations...)
		for _, v := range fnViolations {
			fr.diagnostics = append(fr.diagnostics, Diagnostic{
				Message:  fmt.Sprintf("%s: %s", fn.Name, v.Detail),
				Severity: SeverityWarning,
				Range:    lineOnlyRange(fm.StartLine),
				Source:   "anteater",
				Code:     v.Code,
			})
		}

		fr.diagnostics = append(fr.diagnostics, s.verifyFunction(unit, fn)...)
	}

	fr.debtItems = append(fr.debtItems, debt.FromMetricsViolations(unit.Path(), violations, s.cfg.Debt)...)

	extraction := facts.ExtractAll(fns, alloc)
	fr.facts = extraction.Facts
	for kind := range extraction.UnhandledTypes {
		logging.Get(logging.CategoryFacts).Info("unhandled construct kind %q while extracting facts for %s", kind, unit.Path())
	}

	fr.diagnostics = append(fr.diagnostics, s.runDatalog(unit.Path(), extraction.Facts)...)
	return fr
}

// lowerDeclaration builds decl's CFG and SSA form. A nil *ir.Function
// return means the declaration contributed no diagnostic-worthy failure
// worth stopping for (e.g. an abstract/external declaration) or that its
// failure was already recorded in the returned diagnostics.
func (s *AnalysisSession) lowerDeclaration(unit sourceast.ParsedUnit, decl sourceast.Declaration) (*ir.Function, []Diagnostic) {
	if decl.Body() == nil {
		return nil, nil
	}

	fn, err := cfgbuild.Build(decl, decl.ClassName())
	if err != nil {
		return nil, []Diagnostic{unsupportedDiagnostic(unit, decl, err)}
	}

	if err := ssa.Build(fn); err != nil {
		return nil, []Diagnostic{{
			Message:  fmt.Sprintf("%s: %v", decl.Name(), err),
			Severity: SeverityError,
			Range:    offsetRange(unit, decl.Offset()),
			Source:   "anteater",
		}}
	}
	return fn, nil
}

func unsupportedDiagnostic(unit sourceast.ParsedUnit, decl sourceast.Declaration, err error) Diagnostic {
	return Diagnostic{
		Message:  fmt.Sprintf("%s: %v", decl.Name(), err),
		Severity: SeverityInfo,
		Range:    offsetRange(unit, decl.Offset()),
		Source:   "anteater",
	}
}

// offsetRange resolves a raw source offset (as recorded on ir/sourceast
// nodes) to a single-point Range via unit's line-info oracle.
func offsetRange(unit sourceast.ParsedUnit, offset int) Range {
	line, col := unit.ResolveOffset(offset)
	return Range{Start: Position{Line: line, Character: col}, End: Position{Line: line, Character: col}}
}

// lineOnlyRange wraps an already-resolved line number (as metrics.Compute
// returns) without a further offset lookup.
func lineOnlyRange(line int) Range {
	return Range{Start: Position{Line: line}, End: Position{Line: line}}
}

// verifyFunction runs the interval and nullability fixpoints over fn and
// classifies every bounds/null use site, per spec.md §4.6-§4.7. Outcomes
// that don't clear the strictness bar are silently dropped, per spec.md
// §7's "unknown verifier outcomes produce no diagnostic by default".
func (s *AnalysisSession) verifyFunction(unit sourceast.ParsedUnit, fn *ir.Function) []Diagnostic {
	var diags []Diagnostic

	interval := s.newInterpreter(absint.IntervalDomain{})
	intervalResult := interval.Run(fn)
	if intervalResult.Inconclusive {
		diags = append(diags, Diagnostic{
			Message:  fmt.Sprintf("%s: interval analysis did not converge within %d iterations", fn.Name, s.cfg.Session.MaxIterations),
			Severity: SeverityInfo,
			Range:    offsetRange(unit, fn.OffsetRange.Start),
			Source:   "anteater",
		})
	} else {
		checker := verify.NewBoundsChecker(nil)
		for _, br := range checker.Check(fn, intervalResult) {
			if br.IsDefinitelyUnsafe {
				diags = append(diags, Diagnostic{
					Message:  fmt.Sprintf("%s: %s", fn.Name, br.Reason),
					Severity: SeverityWarning,
					Range:    offsetRange(unit, br.Offset),
					Source:   "anteater",
					Code:     CodePotentialBoundsViolation,
				})
			} else if s.strict && !br.IsSafe {
				diags = append(diags, Diagnostic{
					Message:  fmt.Sprintf("%s: %s", fn.Name, br.Reason),
					Severity: SeverityHint,
					Range:    offsetRange(unit, br.Offset),
					Source:   "anteater",
					Code:     CodePotentialBoundsViolation,
				})
			}
		}
	}

	nullResults, converged := verify.NewNullVerifier().Check(fn)
	if !converged {
		diags = append(diags, Diagnostic{
			Message:  fmt.Sprintf("%s: nullability analysis did not converge within %d iterations", fn.Name, s.cfg.Session.MaxIterations),
			Severity: SeverityInfo,
			Range:    offsetRange(unit, fn.OffsetRange.Start),
			Source:   "anteater",
		})
	} else {
		for _, nr := range nullResults {
			if nr.IsDefinitelyNull {
				diags = append(diags, Diagnostic{
					Message:  fmt.Sprintf("%s: %s", fn.Name, nr.Reason),
					Severity: SeverityWarning,
					Range:    offsetRange(unit, nr.Offset),
					Source:   "anteater",
					Code:     CodePotentialNullDeref,
				})
			} else if s.strict && !nr.IsSafe {
				diags = append(diags, Diagnostic{
					Message:  fmt.Sprintf("%s: %s", fn.Name, nr.Reason),
					Severity: SeverityHint,
					Range:    offsetRange(unit, nr.Offset),
					Source:   "anteater",
					Code:     CodePotentialNullDeref,
				})
			}
		}
	}

	return diags
}

// newInterpreter builds an interpreter wired to the session's configured
// fixpoint limits (spec.md §4.6), rather than absint.NewInterpreter's
// hardcoded defaults.
func (s *AnalysisSession) newInterpreter(dom absint.Domain) *absint.Interpreter {
	return &absint.Interpreter{
		Domain:            dom,
		WideningThreshold: s.cfg.Session.WideningThreshold,
		NarrowingCap:      s.cfg.Session.NarrowingCap,
		MaxIterations:     s.cfg.Session.MaxIterations,
	}
}

// runDatalog evaluates the built-in points-to, reachability, and taint rule
// sets (spec.md §4.5) over one file's extracted facts, surfacing only
// TaintViolation as a diagnostic — points-to/reachability are exploratory
// results a host reaches through the warehouse, not findings in their own
// right.
func (s *AnalysisSession) runDatalog(path string, fileFacts []facts.Fact) []Diagnostic {
	engine := datalog.NewEngine()
	engine.AddFacts(toDatalogFacts(fileFacts))

	if err := engine.AddRules(datalog.PointsToRules()); err != nil {
		logging.Get(logging.CategoryDatalog).Warn("points-to rules rejected for %s: %v", path, err)
		return nil
	}
	if err := engine.AddRules(datalog.ReachabilityRules()); err != nil {
		logging.Get(logging.CategoryDatalog).Warn("reachability rules rejected for %s: %v", path, err)
		return nil
	}
	if err := engine.AddRules(datalog.TaintRules()); err != nil {
		logging.Get(logging.CategoryDatalog).Warn("taint rules rejected for %s: %v", path, err)
		return nil
	}

	if err := engine.Run(); err != nil {
		logging.Get(logging.CategoryDatalog).Warn("datalog evaluation failed for %s: %v", path, err)
		return nil
	}

	var diags []Diagnostic
	for _, v := range engine.Query("TaintViolation") {
		if len(v.Args) != 2 {
			continue
		}
		diags = append(diags, Diagnostic{
			Message:  fmt.Sprintf("tainted value %v reaches sink %v", v.Args[0], v.Args[1]),
			Severity: SeverityWarning,
			Source:   "anteater",
			Code:     "taint_violation",
		})
	}
	return diags
}

func toDatalogFacts(fs []facts.Fact) []datalog.Fact {
	out := make([]datalog.Fact, len(fs))
	for i, f := range fs {
		out[i] = datalog.Fact{Predicate: f.Predicate, Args: f.Args}
	}
	return out
}
