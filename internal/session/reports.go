package session

import (
	"anteater/internal/debt"
	"anteater/internal/metrics"
)

// MetricsReport aggregates the per-function metrics from the most recent
// AnalyzeProject call, per spec.md §6's "Metrics report" interface. Call
// after AnalyzeProject; before the first call it reports an empty project.
func (s *AnalysisSession) MetricsReport() metrics.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return metrics.Aggregate(s.lastFunctions, s.cfg.Metrics)
}

// DebtReport aggregates the technical-debt items found during the most
// recent AnalyzeProject call, per spec.md §6's debt report interface and
// C9's cost model.
func (s *AnalysisSession) DebtReport() debt.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return debt.Aggregate(s.lastDebtItems, s.cfg.Debt)
}
