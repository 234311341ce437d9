// Package factwarehouse stores the fact tuples internal/facts extracts in a
// google/mangle factstore, so a session can answer ad-hoc Datalog queries
// over a whole project after the fact — independent of the fixed-purpose
// points-to/reachability/taint rule sets internal/datalog evaluates on the
// hot path (C5). It is adapted directly from the teacher's
// internal/mangle.Engine: same Config/predicate-index/schema-fragment
// shape, re-pointed at internal/facts.Fact instead of the teacher's own
// mangle.Fact.
package factwarehouse

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	_ "github.com/google/mangle/packages"
	"github.com/google/mangle/parse"
)

// Config controls warehouse capacity and query behavior.
type Config struct {
	// FactLimit caps the number of facts the store accepts; zero means
	// unlimited.
	FactLimit int
	// QueryTimeout bounds how long a single Query call may run before it is
	// cancelled. Zero selects a 5 second default.
	QueryTimeout time.Duration
}

// DefaultConfig returns a warehouse with no fact limit and a 5 second
// per-query timeout.
func DefaultConfig() Config {
	return Config{QueryTimeout: 5 * time.Second}
}

// QueryResult is the outcome of a Query call: one row per matching atom,
// keyed by the query's free variable names.
type QueryResult struct {
	Bindings []map[string]interface{}
	Duration time.Duration
}

// Stats summarizes the current contents of a warehouse.
type Stats struct {
	TotalFacts      int
	PredicateCounts map[string]int
}

// Warehouse is a persisted, schema-driven Datalog knowledge base over the
// facts a project's functions emit. Safe for concurrent use.
type Warehouse struct {
	config Config

	mu              sync.RWMutex
	store           factstore.ConcurrentFactStore
	baseStore       factstore.FactStoreWithRemove
	programInfo     *analysis.ProgramInfo
	queryContext    *mengine.QueryContext
	predicateIndex  map[string]ast.PredicateSym
	schemaFragments []parse.SourceUnit
	factCount       int
	fileFacts       map[string][]ast.Atom
}

// New creates an empty warehouse preloaded with coreSchema, the predicate
// declarations matching every fact internal/facts.ExtractFunction emits.
// Callers needing additional predicates (internal/debt's DuplicateOf is
// already included; a caller-defined predicate for a custom query) load
// them with LoadSchemaString before the first Ingest.
func New(cfg Config) (*Warehouse, error) {
	base := factstore.NewSimpleInMemoryStore()
	w := &Warehouse{
		config:         cfg,
		baseStore:      base,
		store:          factstore.NewConcurrentFactStore(base),
		predicateIndex: make(map[string]ast.PredicateSym),
		fileFacts:      make(map[string][]ast.Atom),
	}
	if err := w.LoadSchemaString(coreSchema); err != nil {
		return nil, fmt.Errorf("load core schema: %w", err)
	}
	return w, nil
}

// LoadSchemaString parses and merges an additional Mangle schema fragment
// into the warehouse, alongside coreSchema. Declaring the same predicate
// twice is an error from analysis.AnalyzeOneUnit, so callers extending the
// schema should use predicate names coreSchema doesn't already declare.
func (w *Warehouse) LoadSchemaString(schema string) error {
	unit, err := parse.Unit(bytes.NewReader([]byte(schema)))
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.schemaFragments = append(w.schemaFragments, unit)
	if err := w.rebuildProgramLocked(); err != nil {
		return fmt.Errorf("analyze schema: %w", err)
	}
	return nil
}

func (w *Warehouse) rebuildProgramLocked() error {
	var clauses []ast.Clause
	var decls []ast.Decl
	for _, fragment := range w.schemaFragments {
		clauses = append(clauses, fragment.Clauses...)
		decls = append(decls, fragment.Decls...)
	}

	unit := parse.SourceUnit{Clauses: clauses, Decls: decls}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return err
	}

	w.programInfo = programInfo
	w.predicateIndex = make(map[string]ast.PredicateSym, len(programInfo.Decls))

	predToDecl := make(map[ast.PredicateSym]*ast.Decl, len(programInfo.Decls))
	for sym, decl := range programInfo.Decls {
		w.predicateIndex[sym.Symbol] = sym
		predToDecl[sym] = decl
	}

	predToRules := make(map[ast.PredicateSym][]ast.Clause)
	for _, clause := range programInfo.Rules {
		predToRules[clause.Head.Predicate] = append(predToRules[clause.Head.Predicate], clause)
	}

	w.queryContext = &mengine.QueryContext{
		PredToRules: predToRules,
		PredToDecl:  predToDecl,
		Store:       w.store,
	}
	return nil
}

// Stats reports how many facts the warehouse currently holds, in total and
// per declared predicate.
func (w *Warehouse) Stats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()

	counts := make(map[string]int)
	for _, sym := range w.store.ListPredicates() {
		local := 0
		_ = w.store.GetFacts(ast.NewQuery(sym), func(ast.Atom) error {
			local++
			return nil
		})
		counts[sym.Symbol] = local
	}
	return Stats{TotalFacts: w.store.EstimateFactCount(), PredicateCounts: counts}
}

// Clear removes every fact from the warehouse without touching its loaded
// schema.
func (w *Warehouse) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.baseStore = factstore.NewSimpleInMemoryStore()
	w.store = factstore.NewConcurrentFactStore(w.baseStore)
	w.factCount = 0
	w.fileFacts = make(map[string][]ast.Atom)
}
