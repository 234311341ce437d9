// Package session provides AnalysisSession, the ownership unit spec.md §9
// names: the single long-lived object a host creates per analysis run. It
// owns the AST cache, hands out per-file CFG/SSA/facts/abstract-state
// arenas that are discarded once each file's analysis completes, and
// enforces the single-entry-point mutation rule spec.md §5 requires of that
// cache.
//
// Grounded on the teacher's internal/browser.SessionManager: a uuid-keyed
// session object behind a sync.RWMutex, with an explicit Start/Shutdown
// lifecycle rather than a bare constructor.
package session

import (
	"sync"

	"github.com/google/uuid"

	"anteater/internal/config"
	"anteater/internal/debt"
	"anteater/internal/errs"
	"anteater/internal/factwarehouse"
	"anteater/internal/logging"
	"anteater/internal/metrics"
	"anteater/internal/sourceast"
)

// AnalysisSession is the ownership unit for one analysis run over a
// project. Safe for concurrent use; ResolveFile/Shutdown take the write
// lock, read-only accessors take the read lock.
type AnalysisSession struct {
	ID uuid.UUID

	cfg    *config.Config
	strict bool

	mu       sync.RWMutex
	disposed bool
	units    map[string]sourceast.ParsedUnit

	warehouse *factwarehouse.Warehouse

	// lastFunctions/lastDebtItems hold the most recent AnalyzeProject run's
	// per-function metrics and debt items, for MetricsReport/DebtReport.
	lastFunctions []metrics.FunctionMetrics
	lastDebtItems []debt.Item
}

// Option configures a session at construction time.
type Option func(*AnalysisSession)

// WithStrict enables promotion of otherwise-suppressed "unknown" verifier
// outcomes to hint-severity diagnostics, per spec.md §7's --strict flag.
func WithStrict(strict bool) Option {
	return func(s *AnalysisSession) { s.strict = strict }
}

// New creates a session from cfg. cfg is validated by the caller (typically
// via config.Load, which already calls Validate); New does not re-validate
// it.
func New(cfg *config.Config, opts ...Option) (*AnalysisSession, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	wh, err := factwarehouse.New(factwarehouse.DefaultConfig())
	if err != nil {
		return nil, err
	}

	s := &AnalysisSession{
		ID:        uuid.New(),
		cfg:       cfg,
		units:     make(map[string]sourceast.ParsedUnit),
		warehouse: wh,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Warehouse exposes the session's cross-file Datalog knowledge base, for a
// host wiring cmd/anteater query.
func (s *AnalysisSession) Warehouse() *factwarehouse.Warehouse {
	return s.warehouse
}

// ResolveFile registers unit in the session's AST cache, replacing any
// prior entry for the same path. This is the single entry point spec.md §5
// requires for cache mutation; AnalyzeProject reads the cache through this
// same lock so a reader always sees a snapshot consistent for one file's
// analysis duration.
func (s *AnalysisSession) ResolveFile(unit sourceast.ParsedUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return &errs.SessionDisposedError{}
	}
	s.units[unit.Path()] = unit
	return nil
}

// unit returns the cached ParsedUnit for path, or false if never resolved.
func (s *AnalysisSession) unit(path string) (sourceast.ParsedUnit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.units[path]
	return u, ok
}

// isDisposed reports whether Shutdown has already run.
func (s *AnalysisSession) isDisposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

// Shutdown marks the session disposed and drops its AST cache and
// warehouse contents. Every ResolveFile/AnalyzeProject call after Shutdown
// returns SessionDisposedError. Idempotent.
func (s *AnalysisSession) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true
	s.units = nil
	if s.warehouse != nil {
		s.warehouse.Clear()
	}
	logging.CloseAll()
}
