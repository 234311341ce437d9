// Package metrics computes per-function code metrics — cyclomatic and
// cognitive complexity, Halstead volume/difficulty/effort, lines of code,
// and the maintainability index — directly from the source AST (C8),
// independently of the CFG/SSA pipeline (C2/C3 build a control graph for
// dataflow; C8 needs the original nesting and token shape, which the CFG
// lowering already flattened away).
//
// Grounded on the teacher's own regex-based complexity scanner
// (.nerd/tools/a_tool_that_analyzes_go_code_a.go, internal/shards/reviewer/metrics.go):
// same McCabe "start at 1, add one per decision point" formula, but walking
// the AST directly instead of scanning source text with regexes, since the
// core has a real AST to work with.
package metrics

import (
	"math"

	"anteater/internal/config"
	"anteater/internal/sourceast"
)

// HalsteadMetrics holds the Halstead software-science measures for one
// function body.
type HalsteadMetrics struct {
	DistinctOperators int // n1
	DistinctOperands  int // n2
	TotalOperators    int // N1
	TotalOperands     int // N2
	Vocabulary        int // n = n1 + n2
	Length            int // N = N1 + N2
	Volume            float64
	Difficulty        float64
	Effort            float64
}

func computeHalstead(ops, operands map[string]int) HalsteadMetrics {
	h := HalsteadMetrics{}
	h.DistinctOperators = len(ops)
	h.DistinctOperands = len(operands)
	for _, c := range ops {
		h.TotalOperators += c
	}
	for _, c := range operands {
		h.TotalOperands += c
	}
	h.Vocabulary = h.DistinctOperators + h.DistinctOperands
	h.Length = h.TotalOperators + h.TotalOperands

	if h.DistinctOperators == 0 || h.DistinctOperands == 0 {
		return h
	}

	h.Volume = float64(h.Length) * math.Log2(float64(h.Vocabulary))
	h.Difficulty = (float64(h.DistinctOperators) / 2) * (float64(h.TotalOperands) / float64(h.DistinctOperands))
	h.Effort = h.Difficulty * h.Volume
	return h
}

// FunctionMetrics is the per-function report C8 produces.
type FunctionMetrics struct {
	Name                  string
	File                  string
	StartLine             int
	EndLine               int
	LinesOfCode           int
	Cyclomatic            int
	Cognitive             int
	Halstead              HalsteadMetrics
	MaintainabilityIndex  float64
}

// maintainabilityIndex implements spec.md §4.8's formula exactly:
// MI_raw = 171 − 5.2·ln(V) − 0.23·G − 16.2·ln(LOC); MI = max(0, min(100,
// MI_raw·100/171)). LOC=0 or V=0 short-circuits to 100 (a body with no
// measurable volume is maximally maintainable by definition, not a
// division-by-zero error).
func maintainabilityIndex(volume float64, cyclomatic, loc int) float64 {
	if loc == 0 || volume == 0 {
		return 100
	}
	raw := 171 - 5.2*math.Log(volume) - 0.23*float64(cyclomatic) - 16.2*math.Log(float64(loc))
	mi := raw * 100 / 171
	if mi < 0 {
		return 0
	}
	if mi > 100 {
		return 100
	}
	return mi
}

// Compute walks decl's body and produces its metrics. unit resolves byte
// offsets to line numbers for the LOC span and report attribution; decl
// with a nil Body() (abstract/external declarations) yields a zero-LOC,
// zero-complexity result rather than an error — there is nothing to
// measure.
func Compute(decl sourceast.Declaration, unit sourceast.ParsedUnit) FunctionMetrics {
	fm := FunctionMetrics{Name: decl.Name(), File: unit.Path()}

	body := decl.Body()
	if body == nil {
		fm.MaintainabilityIndex = 100
		return fm
	}

	w := &walker{
		operators: map[string]int{},
		operands:  map[string]int{},
		cc:        1,
	}
	w.minOffset, w.maxOffset = decl.Offset(), decl.Offset()
	w.observeOffset(decl.Offset())
	w.walkStmt(body, 0)

	startLine, _ := unit.ResolveOffset(w.minOffset)
	endLine, _ := unit.ResolveOffset(w.maxOffset)
	fm.StartLine, fm.EndLine = startLine, endLine
	fm.LinesOfCode = endLine - startLine + 1
	if fm.LinesOfCode < 1 {
		fm.LinesOfCode = 1
	}

	fm.Cyclomatic = w.cc
	fm.Cognitive = w.cognitive
	fm.Halstead = computeHalstead(w.operators, w.operands)
	fm.MaintainabilityIndex = maintainabilityIndex(fm.Halstead.Volume, fm.Cyclomatic, fm.LinesOfCode)
	return fm
}

// Violation names one threshold a function exceeded, keyed the same way
// as the diagnostic codes in spec.md §6.
type Violation struct {
	Function string
	Code     string
	Detail   string
}

// Violations checks fm against thresholds, returning the diagnostic codes
// spec.md §6 names: high_cyclomatic_complexity, high_cognitive_complexity,
// low_maintainability_index, function_too_long.
func Violations(fm FunctionMetrics, thresholds config.MetricsThresholds) []Violation {
	var vs []Violation
	if fm.Cyclomatic > thresholds.MaxCyclomatic {
		vs = append(vs, Violation{Function: fm.Name, Code: "high_cyclomatic_complexity", Detail: itoa(fm.Cyclomatic)})
	}
	if fm.Cognitive > thresholds.MaxCognitive {
		vs = append(vs, Violation{Function: fm.Name, Code: "high_cognitive_complexity", Detail: itoa(fm.Cognitive)})
	}
	if fm.MaintainabilityIndex < thresholds.MinMaintainability {
		vs = append(vs, Violation{Function: fm.Name, Code: "low_maintainability_index", Detail: ftoa(fm.MaintainabilityIndex)})
	}
	if fm.LinesOfCode > thresholds.MaxLinesOfCode {
		vs = append(vs, Violation{Function: fm.Name, Code: "function_too_long", Detail: itoa(fm.LinesOfCode)})
	}
	return vs
}
