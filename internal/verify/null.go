package verify

import (
	"anteater/internal/absint"
	"anteater/internal/ir"
)

// NullSiteKind distinguishes the five use sites the null verifier
// discovers (spec.md §4.7).
type NullSiteKind int

const (
	SiteCallReceiver NullSiteKind = iota
	SiteFieldLoadBase
	SiteFieldStoreBase
	SiteIndexBase
	SiteNullAssertionOperand
)

func (k NullSiteKind) String() string {
	switch k {
	case SiteCallReceiver:
		return "call receiver"
	case SiteFieldLoadBase:
		return "field load base"
	case SiteFieldStoreBase:
		return "field store base"
	case SiteIndexBase:
		return "index base"
	case SiteNullAssertionOperand:
		return "null-assertion operand"
	default:
		return "unknown site"
	}
}

// NullCheckResult is the per-site classification spec.md §4.7 names: safe
// (definitelyNonNull), definitely null (definitelyNull), or unknown
// (maybeNull or the variable was never observed).
type NullCheckResult struct {
	FunctionName     string
	BlockID          int
	Kind             NullSiteKind
	Offset           int
	VarID            string
	Nullability      absint.Nullability
	IsSafe           bool
	IsDefinitelyNull bool
	Reason           string
}

// NullVerifier classifies every nullable-reference use site in a function
// by running internal/absint's worklist interpreter specialized to the
// nullability domain. Branch-based refinement (apply_null_constraint /
// apply_non_null_constraint) already lives in that shared interpreter, so
// this type only does discovery and classification.
type NullVerifier struct{}

func NewNullVerifier() *NullVerifier { return &NullVerifier{} }

// Check runs the nullability worklist over fn and classifies every
// discovered site. It returns a nil slice and false if the fixpoint did not
// converge (spec.md §4.6's maxIterations cap) — classification against a
// best-effort, possibly-unstable state would be misleading.
func (nv *NullVerifier) Check(fn *ir.Function) ([]NullCheckResult, bool) {
	dom := absint.NullabilityDomain{}
	interp := absint.NewInterpreter(dom)
	result := interp.Run(fn)
	if result.Inconclusive {
		return nil, false
	}

	var out []NullCheckResult
	for _, b := range fn.CFG.Blocks() {
		entry, ok := result.Entry[b.ID]
		if !ok {
			entry = absint.State{}
		}
		for i, inst := range b.Instructions {
			before := interp.StateBefore(b, entry, result.Exit, reachedFrom(result), i)
			out = append(out, nv.classifyInstruction(fn.Name, b.ID, inst, interp, before)...)
		}
	}
	return out, true
}

// reachedFrom derives a reached set from the already-converged Result: a
// block has an entry state iff the fixpoint visited it.
func reachedFrom(result *absint.Result) map[int]bool {
	reached := make(map[int]bool, len(result.Entry))
	for id := range result.Entry {
		reached[id] = true
	}
	return reached
}

func (nv *NullVerifier) classifyInstruction(funcName string, blockID int, inst ir.Instruction, interp *absint.Interpreter, state absint.State) []NullCheckResult {
	var out []NullCheckResult
	add := func(kind NullSiteKind, offset int, val ir.Value) {
		id, ok := variableID(val)
		if !ok {
			return
		}
		out = append(out, nv.classifyValue(funcName, blockID, kind, offset, id, interp, state))
	}

	switch v := inst.(type) {
	case ir.CallInstr:
		if v.Receiver != nil {
			add(SiteCallReceiver, v.Offset(), v.Receiver)
		}
	case ir.LoadField:
		add(SiteFieldLoadBase, v.Offset(), v.Base)
	case ir.StoreField:
		add(SiteFieldStoreBase, v.Offset(), v.Base)
	case ir.LoadIndex:
		add(SiteIndexBase, v.Offset(), v.Base)
	case ir.StoreIndex:
		add(SiteIndexBase, v.Offset(), v.Base)
	case ir.NullCheck:
		add(SiteNullAssertionOperand, v.Offset(), v.Operand)
	case ir.Assign:
		switch rhs := v.Value.(type) {
		case ir.Call:
			if rhs.Receiver != nil {
				add(SiteCallReceiver, v.Offset(), rhs.Receiver)
			}
		case ir.FieldAccess:
			add(SiteFieldLoadBase, v.Offset(), rhs.Receiver)
		case ir.IndexAccess:
			add(SiteIndexBase, v.Offset(), rhs.Receiver)
		}
	}
	return out
}

func (nv *NullVerifier) classifyValue(funcName string, blockID int, kind NullSiteKind, offset int, varID string, interp *absint.Interpreter, state absint.State) NullCheckResult {
	v := state.Get(absint.NullabilityDomain{}, varID)
	n, _ := v.(absint.Nullability)

	res := NullCheckResult{
		FunctionName: funcName,
		BlockID:      blockID,
		Kind:         kind,
		Offset:       offset,
		VarID:        varID,
		Nullability:  n,
	}
	switch n {
	case absint.DefinitelyNonNull:
		res.IsSafe = true
		res.Reason = varID + " is definitely non-null at this " + kind.String()
	case absint.DefinitelyNull:
		res.IsDefinitelyNull = true
		res.Reason = varID + " is definitely null at this " + kind.String()
	default:
		res.Reason = varID + " is not provably non-null at this " + kind.String()
	}
	return res
}
