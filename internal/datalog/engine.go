package datalog

import (
	"fmt"

	"anteater/internal/errs"
)

// Engine is a forward-chaining stratified Datalog evaluator: an initial
// fact set plus a rule program, evaluated to its least fixpoint.
type Engine struct {
	rules []Rule
	edb   map[string][]Fact
	idb   map[string][]Fact // populated by Run
	ran   bool
}

// NewEngine returns an empty engine; call AddFacts/AddRules before Run.
func NewEngine() *Engine {
	return &Engine{edb: make(map[string][]Fact)}
}

// AddFacts seeds the initial (extensional) database.
func (e *Engine) AddFacts(facts []Fact) {
	for _, f := range facts {
		e.edb[f.Predicate] = append(e.edb[f.Predicate], f)
	}
}

// AddRules appends rules to the program. Returns UnsafeRuleError immediately
// for any rule whose head binds a variable the positive body never binds —
// caught at load time rather than left to fail silently during evaluation.
func (e *Engine) AddRules(rules []Rule) error {
	for _, r := range rules {
		if v, ok := headVarsBoundByPositiveBody(r.Head, r.Body); !ok {
			return &errs.UnsafeRuleError{Predicate: r.Head.Predicate, Variable: v}
		}
	}
	e.rules = append(e.rules, rules...)
	return nil
}

// Run evaluates the program to its least fixpoint under stratified negation.
// Returns StratificationError if the rule set isn't stratifiable.
func (e *Engine) Run() error {
	stratum, err := stratify(e.rules)
	if err != nil {
		return err
	}

	maxStratum := 0
	for _, s := range stratum {
		if s > maxStratum {
			maxStratum = s
		}
	}

	full := make(map[string][]Fact, len(e.edb))
	known := make(map[string]map[string]bool, len(e.edb))
	for pred, facts := range e.edb {
		full[pred] = append(full[pred], facts...)
		known[pred] = make(map[string]bool, len(facts))
		for _, f := range facts {
			known[pred][factKey(f)] = true
		}
	}

	for s := 0; s <= maxStratum; s++ {
		var stratumRules []Rule
		for _, r := range e.rules {
			if stratum[r.Head.Predicate] == s {
				stratumRules = append(stratumRules, r)
			}
		}
		if len(stratumRules) == 0 {
			continue
		}
		evalStratum(stratumRules, full, known)
	}

	e.idb = full
	e.ran = true
	return nil
}

// Query returns every derived fact for predicate. Must be called after Run.
func (e *Engine) Query(predicate string) []Fact {
	if !e.ran {
		return nil
	}
	return e.idb[predicate]
}

func factKey(f Fact) string {
	s := f.Predicate
	for _, a := range f.Args {
		s += fmt.Sprintf("|%v", a)
	}
	return s
}

// evalStratum runs semi-naive bottom-up evaluation for one stratum's rules
// until no new fact is derived, mutating full/known in place.
func evalStratum(rules []Rule, full map[string][]Fact, known map[string]map[string]bool) {
	// Round 0 seeds every predicate a stratum rule touches — including
	// predicates fixed by a lower stratum, like Alloc feeding
	// VarPointsTo(v,h) :- Alloc(v,h) — as "new", so the first pass behaves
	// like a plain naive evaluation. From round 1 on, newDelta only ever
	// contains genuinely new IDB facts, so externally-fixed predicates
	// drop out of delta on their own and stop being recomputed.
	delta := make(map[string][]Fact)
	seedPredicate := func(p string) {
		if _, seeded := delta[p]; seeded {
			return
		}
		delta[p] = append([]Fact{}, full[p]...)
	}
	for _, r := range rules {
		seedPredicate(r.Head.Predicate)
		for _, atom := range r.Body {
			seedPredicate(atom.Predicate)
		}
	}

	for {
		newDelta := make(map[string][]Fact)

		for _, r := range rules {
			for i, atom := range r.Body {
				if len(delta[atom.Predicate]) == 0 {
					continue
				}
				for _, f := range deriveUsingDelta(r, i, full, delta) {
					k := factKey(f)
					if known[f.Predicate] == nil {
						known[f.Predicate] = make(map[string]bool)
					}
					if known[f.Predicate][k] {
						continue
					}
					known[f.Predicate][k] = true
					newDelta[f.Predicate] = append(newDelta[f.Predicate], f)
				}
			}
			if len(r.Body) == 0 && len(r.NegatedBody) == 0 {
				// A rule with no body atoms at all has nothing to drive its
				// firing from delta; initial facts belong in AddFacts, not
				// as headless rules, so this case never fires.
			}
		}

		if allEmpty(newDelta) {
			return
		}
		for pred, fs := range newDelta {
			full[pred] = append(full[pred], fs...)
		}
		delta = newDelta
	}
}

func allEmpty(m map[string][]Fact) bool {
	for _, v := range m {
		if len(v) > 0 {
			return false
		}
	}
	return true
}

// deriveUsingDelta joins rule's body atoms, requiring atom index deltaIdx to
// be satisfied from delta (the facts newly discovered last round) and every
// other atom from full (the complete, possibly-stale fact set). This is the
// semi-naive restriction: a derivation only fires here if it uses at least
// one fact that's new since the previous round.
func deriveUsingDelta(r Rule, deltaIdx int, full, delta map[string][]Fact) []Fact {
	env := make(map[string]interface{})
	var results []Fact

	var backtrack func(i int)
	backtrack = func(i int) {
		if i == len(r.Body) {
			for _, na := range r.NegatedBody {
				if negatedAtomHolds(na, env, full) {
					return
				}
			}
			results = append(results, groundAtom(r.Head, env))
			return
		}

		atom := r.Body[i]
		source := full[atom.Predicate]
		if i == deltaIdx {
			source = delta[atom.Predicate]
		}

		for _, f := range source {
			if len(f.Args) != len(atom.Args) {
				continue
			}
			bound, ok := bindAtom(atom, f, env)
			if ok {
				backtrack(i + 1)
			}
			for _, name := range bound {
				delete(env, name)
			}
		}
	}
	backtrack(0)
	return results
}

// bindAtom attempts to unify atom's terms against f's ground args under env,
// returning the variable names it newly bound (for the caller to unwind) and
// whether unification succeeded.
func bindAtom(atom Atom, f Fact, env map[string]interface{}) ([]string, bool) {
	var bound []string
	for i, term := range atom.Args {
		switch t := term.(type) {
		case Const:
			if t.Value != f.Args[i] {
				return bound, false
			}
		case Var:
			if existing, has := env[t.Name]; has {
				if existing != f.Args[i] {
					return bound, false
				}
			} else {
				env[t.Name] = f.Args[i]
				bound = append(bound, t.Name)
			}
		}
	}
	return bound, true
}

// negatedAtomHolds reports whether atom, substituted with env, has a
// matching ground fact in full — i.e. whether the negation fails the rule.
// A variable env leaves unbound (a "don't care" such as _K in
// Sanitized(V, _K)) matches any value in its position, so the negation
// fails as soon as one fact agrees on every bound position.
func negatedAtomHolds(atom Atom, env map[string]interface{}, full map[string][]Fact) bool {
	args := make([]interface{}, len(atom.Args))
	bound := make([]bool, len(atom.Args))
	for i, term := range atom.Args {
		switch t := term.(type) {
		case Const:
			args[i] = t.Value
			bound[i] = true
		case Var:
			if v, ok := env[t.Name]; ok {
				args[i] = v
				bound[i] = true
			}
		}
	}
	for _, f := range full[atom.Predicate] {
		if len(f.Args) != len(args) {
			continue
		}
		match := true
		for i, a := range args {
			if bound[i] && a != f.Args[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func groundAtom(head Atom, env map[string]interface{}) Fact {
	args := make([]interface{}, len(head.Args))
	for i, term := range head.Args {
		switch t := term.(type) {
		case Const:
			args[i] = t.Value
		case Var:
			args[i] = env[t.Name]
		}
	}
	return Fact{Predicate: head.Predicate, Args: args}
}
