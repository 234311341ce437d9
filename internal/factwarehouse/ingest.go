package factwarehouse

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/mangle/ast"

	"anteater/internal/facts"
)

// Ingest adds every fact in fs to the warehouse, without any reverse-index
// bookkeeping for later removal. Use IngestFile instead when the facts
// belong to a single file that may be re-analyzed later.
func (w *Warehouse) Ingest(fs []facts.Fact) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ingestLocked(fs)
}

// IngestFile adds fs under file's reverse index, first removing any facts
// previously ingested for the same file. Mirrors the teacher's
// ReplaceFactsForFile: re-running extraction on an edited file should
// retract its stale facts rather than accumulate duplicates and ghosts.
func (w *Warehouse) IngestFile(file string, fs []facts.Fact) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	target := canonicalPath(file)
	w.removeFileLocked(target)
	return w.ingestFileLocked(target, fs)
}

func (w *Warehouse) ingestLocked(fs []facts.Fact) error {
	if w.programInfo == nil {
		return fmt.Errorf("no schema loaded")
	}
	for _, f := range fs {
		if err := w.insertLocked("", f); err != nil {
			return err
		}
	}
	return nil
}

func (w *Warehouse) ingestFileLocked(file string, fs []facts.Fact) error {
	if w.programInfo == nil {
		return fmt.Errorf("no schema loaded")
	}
	for _, f := range fs {
		if err := w.insertLocked(file, f); err != nil {
			return err
		}
	}
	return nil
}

func (w *Warehouse) insertLocked(file string, f facts.Fact) error {
	if w.config.FactLimit > 0 && w.factCount >= w.config.FactLimit {
		return fmt.Errorf("fact limit exceeded: %d", w.config.FactLimit)
	}

	atom, err := w.factToAtomLocked(f)
	if err != nil {
		return err
	}

	if !w.store.Add(atom) {
		return nil
	}
	w.factCount++
	if file != "" {
		w.fileFacts[file] = append(w.fileFacts[file], atom)
	}
	return nil
}

// factToAtomLocked converts a facts.Fact to a Mangle atom against its
// predicate's declared schema, adapted from the teacher's
// factToAtomLocked/convertValueToTypedTerm. internal/facts.Fact's args are
// synthesized id strings (never idents meant to Name-atomize) plus the int
// -1 sentinel of Call/CallAt, so unlike the teacher's general-purpose
// converter, this one maps strings, integers, floats and bools directly,
// with a json fallback for anything else a future predicate might carry.
func (w *Warehouse) factToAtomLocked(f facts.Fact) (ast.Atom, error) {
	sym, ok := w.predicateIndex[f.Predicate]
	if !ok {
		return ast.Atom{}, fmt.Errorf("predicate %s is not declared in the warehouse schema", f.Predicate)
	}
	if len(f.Args) != sym.Arity {
		return ast.Atom{}, fmt.Errorf("predicate %s expects %d args, got %d", f.Predicate, sym.Arity, len(f.Args))
	}

	args := make([]ast.BaseTerm, len(f.Args))
	for i, raw := range f.Args {
		term, err := convertArg(raw)
		if err != nil {
			return ast.Atom{}, fmt.Errorf("predicate %s arg %d: %w", f.Predicate, i, err)
		}
		args[i] = term
	}
	return ast.Atom{Predicate: sym, Args: args}, nil
}

func convertArg(value interface{}) (ast.BaseTerm, error) {
	switch v := value.(type) {
	case string:
		return ast.String(v), nil
	case int:
		return ast.Number(int64(v)), nil
	case int64:
		return ast.Number(v), nil
	case float64:
		return ast.Float64(v), nil
	case bool:
		if v {
			return ast.TrueConstant, nil
		}
		return ast.FalseConstant, nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("unsupported fact argument type %T", v)
		}
		return ast.String(string(encoded)), nil
	}
}

func (w *Warehouse) removeFileLocked(file string) int {
	atoms, ok := w.fileFacts[file]
	if !ok {
		return 0
	}
	removed := 0
	for _, atom := range atoms {
		if w.baseStore.Remove(atom) {
			if w.factCount > 0 {
				w.factCount--
			}
			removed++
		}
	}
	delete(w.fileFacts, file)
	return removed
}

func canonicalPath(path string) string {
	if path == "" {
		return ""
	}
	return strings.ReplaceAll(filepath.Clean(path), "\\", "/")
}
