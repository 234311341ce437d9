package session

// Severity is a diagnostic's level, per spec.md §6's External Interfaces.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

// Diagnostic codes spec.md §6 names explicitly. Configured style-rule names
// (debt scan codes, mostly) are passed straight through from
// internal/debt.Item.Type and are not enumerated here.
const (
	CodeHighCyclomaticComplexity = "high_cyclomatic_complexity"
	CodeHighCognitiveComplexity  = "high_cognitive_complexity"
	CodeLowMaintainabilityIndex  = "low_maintainability_index"
	CodeFunctionTooLong          = "function_too_long"
	CodePotentialNullDeref       = "potential_null_dereference"
	CodePotentialBoundsViolation = "potential_bounds_violation"
	CodeMutableSharedState       = "mutable_shared_state"
	CodeSemanticClone            = "semantic_clone"
)

// Position is a zero-based line/character pair, matching LSP convention.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [Start, End) span over Positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is one finding attached to a location in a file, per spec.md
// §6. Source is always "anteater"; Code is one of the Code* constants above
// or a debt-scan rule name.
type Diagnostic struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Range    Range    `json:"range"`
	Source   string   `json:"source"`
	Code     string   `json:"code,omitempty"`
}

// ProjectAnalysisResult is the report a session hands back to its host after
// AnalyzeProject, per spec.md §6. The core never writes this to disk; the
// host owns persistence and exit-code mapping.
type ProjectAnalysisResult struct {
	FileCount        int                     `json:"fileCount"`
	Diagnostics      map[string][]Diagnostic `json:"diagnostics"`
	TotalDiagnostics int                     `json:"totalDiagnostics"`
	ErrorCount       int                     `json:"errorCount"`
	WarningCount     int                     `json:"warningCount"`
	InfoCount        int                     `json:"infoCount"`
}

func newResult() *ProjectAnalysisResult {
	return &ProjectAnalysisResult{Diagnostics: make(map[string][]Diagnostic)}
}

func (r *ProjectAnalysisResult) add(file string, d Diagnostic) {
	r.Diagnostics[file] = append(r.Diagnostics[file], d)
	r.TotalDiagnostics++
	switch d.Severity {
	case SeverityError:
		r.ErrorCount++
	case SeverityWarning:
		r.WarningCount++
	case SeverityInfo:
		r.InfoCount++
	}
}
