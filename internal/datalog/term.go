// Package datalog is a forward-chaining, stratified, semi-naive Datalog
// evaluator (C5): the least fixpoint of a rule set under stratified
// negation over an initial fact set.
//
// Unlike the pointer-identity term representation in
// _examples/other_examples/ee0a0909_kevinawalsh-datalog__src-datalog-datalog.go.go
// (terms are Go pointers, unified by address so two variables are "the
// same" iff they're literally the same allocation) this evaluator uses
// named variables and comparable Go values as constants — simpler to
// construct from internal/facts' string/int-id fact tuples, and semi-naive
// bottom-up evaluation needs a ground fact set to index by value anyway,
// which the pointer-identity design doesn't provide. The Literal/Clause
// vocabulary (Pred, arity, Safe) and its top-down SLD-resolution engine are
// grounded on only for naming; the evaluation strategy itself (forward
// chaining, stratified by predicate dependency, semi-naive per stratum) is
// spec-driven and has no direct teacher precedent.
package datalog

// Term is either a bound Var (pattern variable) or a Const (ground value)
// appearing as one argument of an Atom.
type Term interface {
	isTerm()
}

// Var names a pattern variable; two Vars with the same Name unify to the
// same binding within one rule.
type Var struct {
	Name string
}

func (Var) isTerm() {}

// Const wraps a ground value — the kind of scalar internal/facts emits
// (string ids, int -1 sentinels). Must be a comparable Go type.
type Const struct {
	Value interface{}
}

func (Const) isTerm() {}

// Atom is one predicate application, e.g. VarPointsTo(v, h).
type Atom struct {
	Predicate string
	Args      []Term
}

// Rule is head :- body, not negatedBody. An empty Body with no NegatedBody
// is not a valid Rule — initial facts are supplied via Engine.AddFacts, not
// as headless rules.
type Rule struct {
	Head        Atom
	Body        []Atom
	NegatedBody []Atom
}

// Fact is one ground tuple: every argument is a concrete value, not a Var.
type Fact struct {
	Predicate string
	Args      []interface{}
}

func atomVars(a Atom) []string {
	var out []string
	for _, t := range a.Args {
		if v, ok := t.(Var); ok {
			out = append(out, v.Name)
		}
	}
	return out
}

// headVarsBoundByPositiveBody reports whether every variable in head
// appears in at least one positive body atom, returning the first one that
// does not when it fails.
func headVarsBoundByPositiveBody(head Atom, body []Atom) (unbound string, ok bool) {
	bound := make(map[string]bool)
	for _, atom := range body {
		for _, name := range atomVars(atom) {
			bound[name] = true
		}
	}
	for _, name := range atomVars(head) {
		if !bound[name] {
			return name, false
		}
	}
	return "", true
}
