// Package debt aggregates technical-debt items from comment scanning,
// dynamic-cast usage, deprecated-annotation references, metric-threshold
// violations, and duplicate-code reports into a single costed report (C9).
//
// The comment-scanning regex is grounded directly on the teacher's
// internal/world/holographic.go CountTODOs helper (same TODO|FIXME|HACK|XXX
// vocabulary, case-insensitive), generalized here to also record each
// match's location rather than just a count.
package debt

import (
	"regexp"

	"anteater/internal/config"
	"anteater/internal/metrics"
)

// Type names one kind of debt item, matching config.DebtType.
type Type = config.DebtType

const (
	TypeTODOComment       = config.DebtTODOComment
	TypeSuppressedWarning = config.DebtSuppressedWarning
	TypeDynamicCast       = config.DebtDynamicCast
	TypeDeprecatedRef     = config.DebtDeprecatedRef
	TypeMetricViolation   = config.DebtMetricViolation
	TypeDuplicateCode     = config.DebtDuplicateCode
)

// Severity names a debt item's severity, matching config.DebtSeverity.
type Severity = config.DebtSeverity

const (
	SeverityCritical = config.SeverityCritical
	SeverityHigh     = config.SeverityHigh
	SeverityMedium   = config.SeverityMedium
	SeverityLow      = config.SeverityLow
)

// Item is one unit of technical debt found in the project.
type Item struct {
	Type     Type
	Severity Severity
	File     string
	Line     int
	Detail   string
	Cost     float64 // base cost * severity multiplier
}

var todoPattern = regexp.MustCompile(`(?i)(TODO|FIXME|HACK|XXX|BUG):?`)
var suppressionPattern = regexp.MustCompile(`(?i)(nolint|suppress(?:ed)?|eslint-disable|type:\s*ignore)`)
var deprecatedPattern = regexp.MustCompile(`(?i)@deprecated|@Deprecated`)

// ScanComments finds TODO/FIXME/suppression markers in raw line-oriented
// source text. line is 1-based and matches the convention the metrics
// package and sourceast.ParsedUnit.ResolveOffset use.
func ScanComments(file string, lines []string, cfg config.DebtCostConfig) []Item {
	var items []Item
	for i, line := range lines {
		lineNo := i + 1
		if m := todoPattern.FindString(line); m != "" {
			items = append(items, newItem(TypeTODOComment, SeverityLow, file, lineNo, m, cfg))
		}
		if m := suppressionPattern.FindString(line); m != "" {
			items = append(items, newItem(TypeSuppressedWarning, SeverityMedium, file, lineNo, m, cfg))
		}
		if m := deprecatedPattern.FindString(line); m != "" {
			items = append(items, newItem(TypeDeprecatedRef, SeverityMedium, file, lineNo, m, cfg))
		}
	}
	return items
}

// DynamicCastSite is one `expr as dynamic`-shaped cast the AST scan found
// (spec.md §4.9): the metrics/CFG builders already walk every Cast
// instruction, so C9 reuses that enumeration rather than re-parsing.
type DynamicCastSite struct {
	File       string
	Line       int
	TargetType string
}

// ScanDynamicCasts converts a list of dynamic-cast sites into debt items.
// Severity is high: an unchecked dynamic cast can fail at runtime with no
// static backstop.
func ScanDynamicCasts(sites []DynamicCastSite, cfg config.DebtCostConfig) []Item {
	var items []Item
	for _, s := range sites {
		items = append(items, newItem(TypeDynamicCast, SeverityHigh, s.File, s.Line, "cast to "+s.TargetType, cfg))
	}
	return items
}

// FromMetricsViolations converts each metrics.Violation into a debt item,
// per spec.md §4.9's "metrics violations (MI<50, CC>20, cognitive>15,
// LOC>50)". Severity depends on which threshold is violated, not on how far
// it is exceeded: any metric violation is "medium", except a
// maintainability-index violation — a compounding signal across multiple
// other measures — which is "high".
func FromMetricsViolations(file string, vs []metrics.Violation, cfg config.DebtCostConfig) []Item {
	var items []Item
	for _, v := range vs {
		sev := SeverityMedium
		if v.Code == "low_maintainability_index" {
			sev = SeverityHigh
		}
		items = append(items, newItem(TypeMetricViolation, sev, file, 0, v.Code+": "+v.Detail, cfg))
	}
	return items
}

// DuplicateCodePair names two locations the duplicate-code detector (see
// internal/factwarehouse) flagged as a near-clone.
type DuplicateCodePair struct {
	FileA, FileB string
	LineA, LineB int
}

// FromDuplicates converts duplicate-code reports into debt items.
// Severity is medium: a clone is a maintenance cost, not a correctness bug.
func FromDuplicates(pairs []DuplicateCodePair, cfg config.DebtCostConfig) []Item {
	var items []Item
	for _, p := range pairs {
		items = append(items, newItem(TypeDuplicateCode, SeverityMedium, p.FileA, p.LineA,
			"duplicate of "+p.FileB, cfg))
	}
	return items
}

func newItem(t Type, sev Severity, file string, line int, detail string, cfg config.DebtCostConfig) Item {
	cost := cfg.DebtCost(t) * cfg.SeverityMultiplier(sev)
	return Item{Type: t, Severity: sev, File: file, Line: line, Detail: detail, Cost: cost}
}

// Report is the project-wide debt summary spec.md §4.9 describes: every
// item found, the summed cost, and whether that total exceeds the
// configured budget.
type Report struct {
	Items            []Item
	TotalCost        float64
	Unit             string
	ExceedsThreshold bool
}

// Aggregate sums item costs into a Report and checks them against
// cfg.Threshold.
func Aggregate(items []Item, cfg config.DebtCostConfig) Report {
	r := Report{Items: items, Unit: cfg.Unit}
	for _, it := range items {
		r.TotalCost += it.Cost
	}
	r.ExceedsThreshold = cfg.ExceedsThreshold(r.TotalCost)
	return r
}
