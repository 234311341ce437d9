package verify

import (
	"fmt"

	"anteater/internal/absint"
	"anteater/internal/ir"
)

// ArrayLengths records statically known array lengths keyed by the array
// variable's canonical id. Nothing in this package infers lengths; callers
// (typically a session wiring in declared array sizes or allocation-site
// facts) populate it before calling Check.
type ArrayLengths map[string]int64

// BoundsCheckResult is the per-site classification spec.md §4.7 names.
// ArrayLength is nil when no length was registered for the access's array.
type BoundsCheckResult struct {
	FunctionName       string
	BlockID            int
	AccessKind         string // "LoadIndex", "StoreIndex", or "IndexAccess"
	Offset             int
	BaseVarID          string
	IndexInterval      absint.Interval
	ArrayLength        *int64
	IsSafe             bool
	IsDefinitelyUnsafe bool
	Reason             string
}

// BoundsChecker classifies array-index accesses using the exit state of an
// already-run interval analysis.
type BoundsChecker struct {
	Lengths ArrayLengths
}

// NewBoundsChecker returns a checker with the given known array lengths.
// A nil map is treated as empty: every site then falls to the unknown
// classification unless its interval is bottom or entirely negative.
func NewBoundsChecker(lengths ArrayLengths) *BoundsChecker {
	if lengths == nil {
		lengths = ArrayLengths{}
	}
	return &BoundsChecker{Lengths: lengths}
}

// Check scans fn's CFG for LoadIndex, StoreIndex, and IndexAccess-in-Assign
// sites and classifies each against result, the output of
// absint.NewInterpreter(absint.IntervalDomain{}).Run(fn).
func (bc *BoundsChecker) Check(fn *ir.Function, result *absint.Result) []BoundsCheckResult {
	var out []BoundsCheckResult
	for _, b := range fn.CFG.Blocks() {
		exit, ok := result.Exit[b.ID]
		if !ok {
			// Unreachable block: every access inside it is vacuously safe.
			exit = absint.State{}
		}
		for _, inst := range b.Instructions {
			switch v := inst.(type) {
			case ir.LoadIndex:
				out = append(out, bc.classify(fn.Name, b.ID, "LoadIndex", v.Offset(), v.Base, v.Index, exit))
			case ir.StoreIndex:
				out = append(out, bc.classify(fn.Name, b.ID, "StoreIndex", v.Offset(), v.Base, v.Index, exit))
			case ir.Assign:
				if ia, ok := v.Value.(ir.IndexAccess); ok {
					out = append(out, bc.classify(fn.Name, b.ID, "IndexAccess", v.Offset(), ia.Receiver, ia.Index, exit))
				}
			}
		}
	}
	return out
}

func (bc *BoundsChecker) classify(funcName string, blockID int, kind string, offset int, base, index ir.Value, exit absint.State) BoundsCheckResult {
	dom := absint.IntervalDomain{}
	interp := absint.NewInterpreter(dom)
	interval, ok := interp.Eval(index, exit).(absint.Interval)
	if !ok {
		interval = absint.TopInterval()
	}

	baseID, _ := variableID(base)
	res := BoundsCheckResult{
		FunctionName:  funcName,
		BlockID:       blockID,
		AccessKind:    kind,
		Offset:        offset,
		BaseVarID:     baseID,
		IndexInterval: interval,
	}

	switch {
	case interval.IsBottom():
		res.IsSafe = true
		res.Reason = "index interval is bottom: this access is unreachable"
	case interval.Max < 0:
		res.IsDefinitelyUnsafe = true
		res.Reason = fmt.Sprintf("index interval %s is entirely negative", interval)
	default:
		length, hasLength := bc.Lengths[baseID]
		if !hasLength {
			res.Reason = fmt.Sprintf("no registered length for %q; index interval %s cannot be bounds-checked", baseID, interval)
			break
		}
		res.ArrayLength = &length
		bound := absint.Interval{Min: 0, Max: length - 1}
		switch {
		case interval.IsSubsetOf(bound):
			res.IsSafe = true
			res.Reason = fmt.Sprintf("index interval %s is within [0, %d]", interval, length-1)
		case interval.Min >= length:
			res.IsDefinitelyUnsafe = true
			res.Reason = fmt.Sprintf("index interval %s's minimum is >= array length %d", interval, length)
		default:
			res.Reason = fmt.Sprintf("index interval %s is not provably within [0, %d] for array length %d", interval, length-1, length)
		}
	}
	return res
}
