// Package verify consumes internal/absint's abstract-interpretation results
// to classify array-index accesses and nullable-reference uses as safe,
// definitely unsafe/null, or unknown (C7). Discovery walks the same CFG
// shape internal/facts walks; classification reuses internal/absint's
// Interval and Nullability domains rather than re-deriving bounds facts.
package verify

import "anteater/internal/ir"

// variableID returns the fact-schema id for v, or ok=false if v carries no
// variable identity an abstract state can key on (constants, arithmetic
// results). Mirrors internal/facts's resolveValue: only Var and PhiValue
// carry a stable id across the CFG.
func variableID(v ir.Value) (string, bool) {
	switch val := v.(type) {
	case ir.Var:
		return val.Variable.CanonicalID(), true
	case ir.PhiValue:
		return val.Variable.CanonicalID(), true
	default:
		return "", false
	}
}
