package factwarehouse

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/parse"
	"github.com/google/mangle/unionfind"

	"anteater/internal/facts"
)

// Query evaluates a single atom query in Mangle notation (e.g.
// "Flow(X, Y)." or "?Reachable(B)") and returns one binding row per
// matching fact, keyed by the query's free variable names. Adapted from
// the teacher's Engine.Query.
func (w *Warehouse) Query(ctx context.Context, query string) (*QueryResult, error) {
	shape, err := parseQueryShape(query)
	if err != nil {
		return nil, err
	}

	w.mu.RLock()
	qctx := w.queryContext
	if qctx == nil {
		w.mu.RUnlock()
		return nil, fmt.Errorf("no schema loaded; cannot execute query")
	}
	decl, ok := qctx.PredToDecl[shape.atom.Predicate]
	if !ok {
		w.mu.RUnlock()
		return nil, fmt.Errorf("predicate %s is not declared", shape.atom.Predicate.Symbol)
	}
	if len(decl.Modes()) == 0 {
		w.mu.RUnlock()
		return nil, fmt.Errorf("predicate %s has no modes declared", shape.atom.Predicate.Symbol)
	}
	mode := decl.Modes()[0]
	w.mu.RUnlock()

	timeout := w.config.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resultCh := make(chan []map[string]interface{}, 1)
	errCh := make(chan error, 1)

	go func() {
		var rows []map[string]interface{}
		err := qctx.EvalQuery(shape.atom, mode, unionfind.New(), func(fact ast.Atom) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			row := make(map[string]interface{}, len(shape.variables))
			for _, v := range shape.variables {
				if v.Index >= len(fact.Args) {
					continue
				}
				row[v.Name] = convertTerm(fact.Args[v.Index])
			}
			rows = append(rows, row)
			return nil
		})
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- rows
	}()

	select {
	case rows := <-resultCh:
		return &QueryResult{Bindings: rows, Duration: time.Since(start)}, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("query timed out after %v: %w", time.Since(start), ctx.Err())
	}
}

// Predicates lists every predicate name declared in the warehouse's schema
// (coreSchema plus anything loaded via LoadSchemaString), for a host
// wanting to dump or enumerate the whole knowledge base rather than query
// one predicate at a time.
func (w *Warehouse) Predicates() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.predicateIndex))
	for name := range w.predicateIndex {
		names = append(names, name)
	}
	return names
}

// GetFacts returns every fact currently stored for predicate, translated
// back into internal/facts.Fact form.
func (w *Warehouse) GetFacts(predicate string) ([]facts.Fact, error) {
	w.mu.RLock()
	sym, ok := w.predicateIndex[predicate]
	w.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("predicate %s is not declared", predicate)
	}

	var out []facts.Fact
	err := w.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		args := make([]interface{}, len(atom.Args))
		for i, arg := range atom.Args {
			args[i] = convertTerm(arg)
		}
		out = append(out, facts.Fact{Predicate: predicate, Args: args})
		return nil
	})
	return out, err
}

type queryVariable struct {
	Name  string
	Index int
}

type queryShape struct {
	atom      ast.Atom
	variables []queryVariable
}

func parseQueryShape(query string) (*queryShape, error) {
	clean := strings.TrimSpace(query)
	if clean == "" {
		return nil, fmt.Errorf("empty query")
	}
	clean = strings.TrimPrefix(clean, "?")
	clean = strings.TrimSpace(clean)
	clean = strings.TrimSuffix(clean, ".")

	atom, err := parse.Atom(clean)
	if err != nil {
		atom, err = parse.Atom(clean + ".")
		if err != nil {
			return nil, fmt.Errorf("failed to parse query %q: %w", query, err)
		}
	}

	var vars []queryVariable
	for idx, arg := range atom.Args {
		if v, ok := arg.(ast.Variable); ok {
			vars = append(vars, queryVariable{Name: v.Symbol, Index: idx})
		}
	}
	return &queryShape{atom: atom, variables: vars}, nil
}

func convertTerm(term ast.BaseTerm) interface{} {
	switch v := term.(type) {
	case ast.Constant:
		return convertConstant(v)
	case ast.Variable:
		return v.Symbol
	default:
		return fmt.Sprintf("%v", term)
	}
}

func convertConstant(c ast.Constant) interface{} {
	switch c.Type {
	case ast.StringType, ast.NameType, ast.BytesType:
		return c.Symbol
	case ast.NumberType:
		return c.NumValue
	case ast.Float64Type:
		return math.Float64frombits(uint64(c.NumValue))
	default:
		return c.String()
	}
}
