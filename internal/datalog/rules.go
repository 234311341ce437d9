package datalog

// This file holds the canonical rule sets spec.md §4.5 names — points-to,
// reachability, and taint propagation — as exported constructors so a
// session wiring internal/facts output into Engine doesn't hand-copy rule
// literals at every call site. The engine itself stays rule-set agnostic
// (AddRules accepts any stratifiable set); these are just its default
// clients' required rules, grounded on the same three rule sets this
// package's own tests already exercise.

func v(name string) Term     { return Var{Name: name} }
func atom(pred string, args ...Term) Atom {
	return Atom{Predicate: pred, Args: args}
}

// PointsToRules derives VarPointsTo(v, h) and FieldPointsTo(h, f, h2) from
// the Alloc/Assign/StoreField/LoadField facts internal/facts emits.
func PointsToRules() []Rule {
	return []Rule{
		{
			Head: atom("VarPointsTo", v("V"), v("H")),
			Body: []Atom{atom("Alloc", v("V"), v("H"))},
		},
		{
			Head: atom("VarPointsTo", v("V"), v("H")),
			Body: []Atom{
				atom("Assign", v("V"), v("W")),
				atom("VarPointsTo", v("W"), v("H")),
			},
		},
		{
			Head: atom("FieldPointsTo", v("H"), v("F"), v("H2")),
			Body: []Atom{
				atom("StoreField", v("B"), v("F"), v("S")),
				atom("VarPointsTo", v("B"), v("H")),
				atom("VarPointsTo", v("S"), v("H2")),
			},
		},
		{
			Head: atom("VarPointsTo", v("V"), v("H2")),
			Body: []Atom{
				atom("LoadField", v("B"), v("F"), v("V")),
				atom("VarPointsTo", v("B"), v("H")),
				atom("FieldPointsTo", v("H"), v("F"), v("H2")),
			},
		},
	}
}

// ReachabilityRules derives the transitive closure of Reachable over Flow
// edges, seeded by the entry block's Reachable fact internal/facts always
// emits.
func ReachabilityRules() []Rule {
	return []Rule{
		{
			Head: atom("Reachable", v("S")),
			Body: []Atom{
				atom("Reachable", v("P")),
				atom("Flow", v("P"), v("S")),
			},
		},
	}
}

// TaintRules derives Tainted(v) from TaintSource/Assign chains, cut by a
// Sanitized fact on the assigned (target) variable, and flags
// TaintViolation(v, sink) wherever a tainted value reaches a registered
// TaintSink. Sanitized and TaintSource/TaintSink facts are not emitted by
// internal/facts (they require source-level annotations or a
// language-specific sink/source catalog); a session supplies them alongside
// the extracted facts before running this rule set.
func TaintRules() []Rule {
	return []Rule{
		{
			Head: atom("Tainted", v("V")),
			Body: []Atom{atom("TaintSource", v("V"), v("_K"))},
		},
		{
			Head:        atom("Tainted", v("V")),
			Body:        []Atom{atom("Assign", v("V"), v("W")), atom("Tainted", v("W"))},
			NegatedBody: []Atom{atom("Sanitized", v("V"), v("_K2"))},
		},
		{
			Head: atom("TaintViolation", v("V"), v("Sink")),
			Body: []Atom{atom("TaintSink", v("V"), v("Sink")), atom("Tainted", v("V"))},
		},
	}
}
