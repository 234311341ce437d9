package absint

import "anteater/internal/ir"

// State maps a variable's canonical id to its current abstract value. A
// missing key means ⊥ for join purposes but is read back as ⊤ — an
// as-yet-unseen variable carries no information, not "impossible".
type State map[string]Value

// Get reads the variable id's abstract value from s, defaulting to dom.Top()
// for a variable this state carries no information about. Exported so
// internal/verify can query a site's value without reimplementing the
// missing-key-is-top rule.
func (s State) Get(dom Domain, id string) Value {
	if v, ok := s[id]; ok {
		return v
	}
	return dom.Top()
}

func (s State) clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// joinStates implements per-variable join with "missing = ⊥": a variable
// present in only one operand state carries over unchanged, since
// join(⊥, v) = v.
func joinStates(a, b State) State {
	out := make(State, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		if existing, ok := out[k]; ok {
			out[k] = existing.Join(v)
		} else {
			out[k] = v
		}
	}
	return out
}

func widenStates(prev, next State) State {
	out := make(State, len(next))
	for k, v := range next {
		if p, ok := prev[k]; ok {
			out[k] = p.Widen(v)
		} else {
			out[k] = v
		}
	}
	return out
}

func narrowStates(stored, recomputed State) State {
	out := make(State, len(stored))
	for k, v := range stored {
		if r, ok := recomputed[k]; ok {
			out[k] = v.Narrow(r)
		} else {
			out[k] = v
		}
	}
	return out
}

func statesEqual(a, b State) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		o, ok := b[k]
		if !ok || v.String() != o.String() {
			return false
		}
	}
	return true
}

// Result is the per-block entry/exit abstract state an Interpreter.Run
// produces, plus whether the fixpoint hit its hard iteration cap.
type Result struct {
	Entry        map[int]State
	Exit         map[int]State
	Inconclusive bool
}

// Interpreter runs a worklist abstract-interpretation fixpoint over a
// function's CFG (spec.md §4.6): join at merge points, widen after a
// configured number of revisits, then narrow in reverse post-order.
type Interpreter struct {
	Domain            Domain
	WideningThreshold int
	NarrowingCap      int
	MaxIterations     int
}

// NewInterpreter returns an Interpreter with spec.md §4.6's documented
// defaults (widening threshold 3, narrowing cap 10, max iterations 1000).
func NewInterpreter(dom Domain) *Interpreter {
	return &Interpreter{
		Domain:            dom,
		WideningThreshold: 3,
		NarrowingCap:      10,
		MaxIterations:     1000,
	}
}

// Run computes the abstract fixpoint for fn's CFG.
func (it *Interpreter) Run(fn *ir.Function) *Result {
	cfg := fn.CFG
	entry := make(map[int]State)
	exit := make(map[int]State)
	reached := make(map[int]bool)
	visits := make(map[int]int)

	entry[cfg.Entry] = State{}
	reached[cfg.Entry] = true

	worklist := []int{cfg.Entry}
	onList := map[int]bool{cfg.Entry: true}

	iterations := 0
	inconclusive := false

	for len(worklist) > 0 {
		iterations++
		if iterations > it.MaxIterations {
			inconclusive = true
			break
		}

		b := worklist[0]
		worklist = worklist[1:]
		onList[b] = false

		block := cfg.Block(b)
		computed := it.joinPredecessors(cfg, block, exit, reached)

		if prev, ok := entry[b]; ok && visits[b] > 0 {
			if visits[b] > it.WideningThreshold {
				computed = widenStates(prev, computed)
			}
			if statesEqual(prev, computed) {
				continue
			}
		}

		entry[b] = computed
		reached[b] = true
		visits[b]++

		newExit := it.transferBlock(block, computed, exit, reached)
		exit[b] = newExit

		for _, succ := range block.Succs {
			if !onList[succ] {
				onList[succ] = true
				worklist = append(worklist, succ)
			}
		}
	}

	if !inconclusive {
		it.narrow(cfg, entry, exit, reached)
	}

	return &Result{Entry: entry, Exit: exit, Inconclusive: inconclusive}
}

func (it *Interpreter) joinPredecessors(cfg *ir.CFG, b *ir.BasicBlock, exit map[int]State, reached map[int]bool) State {
	var result State
	for _, pid := range b.Preds {
		if !reached[pid] {
			continue
		}
		pe, ok := exit[pid]
		if !ok {
			continue
		}
		pe = it.refineOnEdge(cfg.Block(pid), b.ID, pe)
		if result == nil {
			result = pe.clone()
		} else {
			result = joinStates(result, pe)
		}
	}
	if result == nil {
		return State{}
	}
	return result
}

// refineOnEdge applies apply_null_constraint / apply_non_null_constraint
// (spec.md §4.7) when pred's terminator is a Branch comparing a variable
// against the null literal: the successor reached via the "x == null"
// side gets that variable narrowed to definitelyNull on entry, the other
// side to definitelyNonNull. A no-op for any domain whose RefineNonNull/
// RefineNull are identity (Interval), so this lives in the shared
// interpreter rather than duplicated per verifier.
func (it *Interpreter) refineOnEdge(pred *ir.BasicBlock, succID int, state State) State {
	if pred == nil {
		return state
	}
	varID, wantNonNull, ok := nullRefinementFor(pred, succID)
	if !ok {
		return state
	}
	refined := state.clone()
	current := refined.Get(it.Domain, varID)
	if wantNonNull {
		refined[varID] = it.Domain.RefineNonNull(current)
	} else {
		refined[varID] = it.Domain.RefineNull(current)
	}
	return refined
}

func nullRefinementFor(pred *ir.BasicBlock, succID int) (varID string, wantNonNull bool, ok bool) {
	term := pred.Terminator()
	br, isBranch := term.(ir.Branch)
	if !isBranch {
		return "", false, false
	}
	bin, isBinary := br.Cond.(ir.Binary)
	if !isBinary || (bin.Op != ir.OpEq && bin.Op != ir.OpNotEq) {
		return "", false, false
	}

	var varSide ir.Value
	switch {
	case isNullConstant(bin.Left) && !isNullConstant(bin.Right):
		varSide = bin.Right
	case isNullConstant(bin.Right) && !isNullConstant(bin.Left):
		varSide = bin.Left
	default:
		return "", false, false
	}

	id, ok := variableID(varSide)
	if !ok {
		return "", false, false
	}

	thenIsNonNull := bin.Op == ir.OpNotEq
	switch succID {
	case br.ThenBlock:
		return id, thenIsNonNull, true
	case br.ElseBlock:
		return id, !thenIsNonNull, true
	default:
		return "", false, false
	}
}

func isNullConstant(v ir.Value) bool {
	c, ok := v.(ir.Constant)
	return ok && c.Literal.Kind == ir.LiteralNull
}

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

// narrow runs the post-fixpoint narrowing phase: in reverse post-order,
// recompute each block's entry from predecessor exits and narrow the
// stored entry toward it, re-running the transfer function, until no
// change or the cap is hit.
func (it *Interpreter) narrow(cfg *ir.CFG, entry, exit map[int]State, reached map[int]bool) {
	order := cfg.ReversePostOrder()
	for round := 0; round < it.NarrowingCap; round++ {
		changed := false
		for _, b := range order {
			recomputed := it.joinPredecessors(cfg, b, exit, reached)
			stored, ok := entry[b.ID]
			if !ok {
				entry[b.ID] = recomputed
				changed = true
				continue
			}
			narrowed := narrowStates(stored, recomputed)
			if !statesEqual(narrowed, stored) {
				entry[b.ID] = narrowed
				exit[b.ID] = it.transferBlock(b, narrowed, exit, reached)
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

// StateBefore replays b's entry state through its first n instructions and
// returns the state in effect immediately before instruction n — the state a
// site discovered mid-block (a verifier's LoadIndex or call receiver, say)
// should be queried against, rather than the block's entry or exit state.
func (it *Interpreter) StateBefore(b *ir.BasicBlock, entryState State, exit map[int]State, reached map[int]bool, n int) State {
	return it.transferPrefix(b, entryState, exit, reached, n)
}

// Eval evaluates val (a literal, variable read, or arithmetic/comparison
// expression) against state, using this interpreter's domain. Exported so
// internal/verify can pull a site's abstract value without re-implementing
// expression evaluation.
func (it *Interpreter) Eval(val ir.Value, state State) Value {
	return it.evalExprIn(val, state)
}

// transferBlock runs every instruction's transfer function in sequence,
// starting from entryState, and returns the resulting exit state.
func (it *Interpreter) transferBlock(b *ir.BasicBlock, entryState State, exit map[int]State, reached map[int]bool) State {
	return it.transferPrefix(b, entryState, exit, reached, len(b.Instructions))
}

// transferPrefix runs the first n instructions of b's transfer function,
// starting from entryState. n == len(b.Instructions) is the normal
// whole-block transfer; a smaller n exposes the mid-block state StateBefore
// needs.
func (it *Interpreter) transferPrefix(b *ir.BasicBlock, entryState State, exit map[int]State, reached map[int]bool, n int) State {
	state := entryState.clone()
	dom := it.Domain

	for _, inst := range b.Instructions[:n] {
		switch v := inst.(type) {
		case ir.Assign:
			state[v.Target.CanonicalID()] = it.evalExprIn(v.Value, state)
		case ir.Phi:
			// At a loop header the entry state already carries the Phi target
			// from the back edge, possibly widened; joining with it keeps the
			// widened bound rather than recomputing a finite one from the
			// predecessor exits.
			id := v.Target.CanonicalID()
			phiVal := it.evalPhi(v, b.ID, exit, reached)
			if cur, ok := state[id]; ok {
				phiVal = cur.Join(phiVal)
			}
			state[id] = phiVal
		case ir.CallInstr:
			if v.HasResult {
				state[v.Result.CanonicalID()] = dom.Top()
			}
		case ir.LoadField:
			state[v.Result.CanonicalID()] = dom.Top()
		case ir.LoadIndex:
			state[v.Result.CanonicalID()] = dom.Top()
		case ir.NullCheck:
			state[v.Result.CanonicalID()] = dom.RefineNonNull(it.evalExprIn(v.Operand, state))
		case ir.Cast:
			state[v.Result.CanonicalID()] = it.evalExprIn(v.Operand, state)
		case ir.TypeCheck:
			state[v.Result.CanonicalID()] = dom.Top()
		case ir.Await:
			state[v.Result.CanonicalID()] = it.evalExprIn(v.Future, state)
		default:
			// StoreField, StoreIndex, Branch, Jump, Return, Throw define no
			// variable; state passes through unchanged.
		}
	}
	return state
}

func (it *Interpreter) evalPhi(p ir.Phi, block int, exit map[int]State, reached map[int]bool) Value {
	dom := it.Domain
	var result Value
	for predBlock, val := range p.Operands {
		if !reached[predBlock] {
			continue
		}
		predExit, ok := exit[predBlock]
		if !ok {
			continue
		}
		v := it.evalExprIn(val, predExit)
		if result == nil {
			result = v
		} else {
			result = result.Join(v)
		}
	}
	if result == nil {
		return dom.Bottom()
	}
	return result
}

func (it *Interpreter) evalExprIn(val ir.Value, state State) Value {
	dom := it.Domain
	switch v := val.(type) {
	case ir.Constant:
		if v.Literal.Kind == ir.LiteralNull {
			return dom.FromNullLiteral()
		}
		if v.Literal.Kind == ir.LiteralInt {
			return dom.FromIntLiteral(v.Literal.Int)
		}
		return dom.Top()
	case ir.Var:
		return state.Get(dom, v.Variable.CanonicalID())
	case ir.PhiValue:
		return state.Get(dom, v.Variable.CanonicalID())
	case ir.Binary:
		return dom.EvalBinary(v.Op, it.evalExprIn(v.Left, state), it.evalExprIn(v.Right, state))
	case ir.Unary:
		return dom.EvalUnary(v.Op, it.evalExprIn(v.Operand, state))
	case ir.NewObject:
		return dom.FromNewObject()
	default:
		// Call, FieldAccess, IndexAccess as expression values: conservative
		// top, same as the statement-level instruction forms.
		return dom.Top()
	}
}
