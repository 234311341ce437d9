// Package ssa rewrites a CFG produced by internal/cfgbuild into pruned SSA
// form: Braun-style on-the-fly construction with block sealing, incomplete
// phis, and trivial-phi elimination (spec.md §4.3), grounded on the
// renaming/phi-insertion bookkeeping in
// _examples/other_examples/9b8d0c62_…ssa-lift.go and
// _examples/other_examples/0fbcb2e4_golang-tools__go-ssa-func.go, adapted
// from their dominance-frontier lifting pass to Braun's on-the-fly algorithm.
package ssa

import "anteater/internal/ir"

// phiRec tracks one phi under construction: its block, the source-level
// variable name it stands for, its freshly allocated SSA target, and
// (eventually) its operands keyed by predecessor block id.
type phiRec struct {
	block    int
	varName  string
	target   ir.Variable
	operands map[int]ir.Value
	removed  bool
	aliasTo  ir.Value
}

// builder carries the mutable state of one function's SSA construction. A
// fresh builder is created per Function — never shared (spec.md §9).
type builder struct {
	cfg            *ir.CFG
	currentDef     map[string]map[int]ir.Value // varName -> blockID -> value
	sealed         map[int]bool
	predsFilled    map[int]int
	incompletePhis map[int]map[string]*phiRec
	phisByTarget   map[ir.Variable]*phiRec
	versionCounter map[string]int
}

// Build rewrites fn.CFG in place into SSA form.
func Build(fn *ir.Function) error {
	b := &builder{
		cfg:            fn.CFG,
		currentDef:     make(map[string]map[int]ir.Value),
		sealed:         make(map[int]bool),
		predsFilled:    make(map[int]int),
		incompletePhis: make(map[int]map[string]*phiRec),
		phisByTarget:   make(map[ir.Variable]*phiRec),
		versionCounter: make(map[string]int),
	}

	entry := fn.CFG.Entry
	for _, p := range fn.Parameters {
		b.writeVariable(p.Name, entry, ir.Var{Variable: ir.Variable{Name: p.Name, Version: 0}})
	}
	if fn.HasReceiver {
		b.writeVariable("this", entry, ir.Var{Variable: ir.Variable{Name: "this", Version: 0}})
	}

	b.seal(entry)

	order := b.cfg.ReversePostOrder()
	for _, blk := range order {
		b.fillBlock(blk)
		for _, succID := range blk.Succs {
			b.predsFilled[succID]++
			succ := b.cfg.Block(succID)
			if !b.sealed[succID] && b.predsFilled[succID] == len(succ.Preds) {
				b.seal(succID)
			}
		}
	}

	b.materializePhis(order)
	b.finalizeResolve(order)
	return nil
}

func (b *builder) writeVariable(name string, blockID int, val ir.Value) {
	m := b.currentDef[name]
	if m == nil {
		m = make(map[int]ir.Value)
		b.currentDef[name] = m
	}
	m[blockID] = val
}

func (b *builder) readVariable(name string, blockID int) ir.Value {
	if m, ok := b.currentDef[name]; ok {
		if v, ok := m[blockID]; ok {
			return b.resolve(v)
		}
	}
	return b.readVariableRecursive(name, blockID)
}

func (b *builder) readVariableRecursive(name string, blockID int) ir.Value {
	blk := b.cfg.Block(blockID)
	var val ir.Value

	switch {
	case !b.sealed[blockID]:
		rec := b.newPhiRec(name, blockID)
		if b.incompletePhis[blockID] == nil {
			b.incompletePhis[blockID] = make(map[string]*phiRec)
		}
		b.incompletePhis[blockID][name] = rec
		val = ir.Var{Variable: rec.target}
	case len(blk.Preds) == 0:
		// No predecessor defines this name: a genuinely undefined read
		// (e.g. a variable used before any assignment on every path).
		val = ir.Constant{Literal: ir.Literal{Kind: ir.LiteralNull}}
	case len(blk.Preds) == 1:
		val = b.readVariable(name, blk.Preds[0])
	default:
		rec := b.newPhiRec(name, blockID)
		b.writeVariable(name, blockID, ir.Var{Variable: rec.target})
		b.fillPhiOperands(rec)
		val = b.tryRemoveTrivialPhi(rec)
	}
	b.writeVariable(name, blockID, val)
	return val
}

func (b *builder) newPhiRec(name string, blockID int) *phiRec {
	rec := &phiRec{
		block:    blockID,
		varName:  name,
		target:   ir.Variable{Name: name, Version: b.nextVersion(name)},
		operands: make(map[int]ir.Value),
	}
	b.phisByTarget[rec.target] = rec
	return rec
}

func (b *builder) fillPhiOperands(rec *phiRec) {
	blk := b.cfg.Block(rec.block)
	for _, pred := range blk.Preds {
		rec.operands[pred] = b.readVariable(rec.varName, pred)
	}
}

// seal fills operands for every incomplete phi recorded in blockID, then
// attempts trivial-phi elimination on each (spec.md §4.3 seal_block).
func (b *builder) seal(blockID int) {
	if b.sealed[blockID] {
		return
	}
	b.sealed[blockID] = true
	for _, rec := range b.incompletePhis[blockID] {
		b.fillPhiOperands(rec)
		resolved := b.tryRemoveTrivialPhi(rec)
		b.writeVariable(rec.varName, blockID, resolved)
	}
	delete(b.incompletePhis, blockID)
}

// tryRemoveTrivialPhi implements spec.md §4.3's try_remove_trivial_phi: if
// every operand is either the phi itself or a single unique value v,
// collapse to v. Operands are always Var or Constant (every write_variable
// call in this package stores one of those two kinds), so Go's built-in ==
// on the Value interface is a valid identity/equality check here.
func (b *builder) tryRemoveTrivialPhi(rec *phiRec) ir.Value {
	self := ir.Var{Variable: rec.target}
	var same ir.Value
	for _, op := range rec.operands {
		op = b.resolve(op)
		if op == self {
			continue
		}
		if same != nil && op != same {
			return self // more than one distinct non-self operand: not trivial
		}
		same = op
	}
	if same == nil {
		same = ir.Constant{Literal: ir.Literal{Kind: ir.LiteralNull}}
	}
	rec.removed = true
	rec.aliasTo = same
	return same
}

// resolve follows the alias chain left by trivial-phi elimination. Per
// spec.md §4.3's "known trade-off", phis resolved after other code already
// captured their target are tolerated rather than retroactively rewritten;
// resolve() catches most of them anyway since it runs at every read.
func (b *builder) resolve(v ir.Value) ir.Value {
	for {
		vv, ok := v.(ir.Var)
		if !ok {
			return v
		}
		rec, ok := b.phisByTarget[vv.Variable]
		if !ok || !rec.removed {
			return v
		}
		v = rec.aliasTo
	}
}

func (b *builder) nextVersion(name string) int {
	b.versionCounter[name]++
	return b.versionCounter[name]
}

func (b *builder) defineFresh(name string, blockID int) ir.Variable {
	v := ir.Variable{Name: name, Version: b.nextVersion(name)}
	b.writeVariable(name, blockID, ir.Var{Variable: v})
	return v
}

func (b *builder) fillBlock(blk *ir.BasicBlock) {
	out := make([]ir.Instruction, len(blk.Instructions))
	for i, inst := range blk.Instructions {
		out[i] = b.renameInstruction(inst, blk.ID)
	}
	blk.Instructions = out
}

// materializePhis prepends one Phi instruction per surviving (non-trivial)
// phi record to its owning block, resolving operands through the final
// alias state (spec.md §3: "phi instructions, if present, appear before all
// non-phi instructions").
func (b *builder) materializePhis(order []*ir.BasicBlock) {
	byBlock := make(map[int][]*phiRec)
	for _, rec := range b.phisByTarget {
		if rec.removed {
			continue
		}
		byBlock[rec.block] = append(byBlock[rec.block], rec)
	}
	for _, blk := range order {
		recs := byBlock[blk.ID]
		if len(recs) == 0 {
			continue
		}
		phis := make([]ir.Instruction, len(recs))
		for i, rec := range recs {
			phi := ir.NewPhi(0, rec.target)
			for pred, val := range rec.operands {
				phi.Operands[pred] = b.resolve(val)
			}
			phis[i] = phi
		}
		blk.Instructions = append(phis, blk.Instructions...)
	}
}

// finalizeResolve re-applies resolve() across every already-renamed
// instruction, catching references to a phi that was proven trivial only
// after the referencing instruction was first renamed.
func (b *builder) finalizeResolve(order []*ir.BasicBlock) {
	for _, blk := range order {
		for i, inst := range blk.Instructions {
			blk.Instructions[i] = b.resolveInstruction(inst)
		}
	}
}

func (b *builder) resolveInstruction(inst ir.Instruction) ir.Instruction {
	switch v := inst.(type) {
	case ir.Assign:
		v.Value = b.resolveValue(v.Value)
		return v
	case ir.Branch:
		v.Cond = b.resolveValue(v.Cond)
		return v
	case ir.Return:
		v.Value = b.resolveValue(v.Value)
		return v
	case ir.Phi:
		for k, val := range v.Operands {
			v.Operands[k] = b.resolveValue(val)
		}
		return v
	case ir.CallInstr:
		v.Receiver = b.resolveValue(v.Receiver)
		v.Args = b.resolveValues(v.Args)
		return v
	case ir.LoadField:
		v.Base = b.resolveValue(v.Base)
		return v
	case ir.StoreField:
		v.Base = b.resolveValue(v.Base)
		v.Value = b.resolveValue(v.Value)
		return v
	case ir.LoadIndex:
		v.Base = b.resolveValue(v.Base)
		v.Index = b.resolveValue(v.Index)
		return v
	case ir.StoreIndex:
		v.Base = b.resolveValue(v.Base)
		v.Index = b.resolveValue(v.Index)
		v.Value = b.resolveValue(v.Value)
		return v
	case ir.NullCheck:
		v.Operand = b.resolveValue(v.Operand)
		return v
	case ir.Cast:
		v.Operand = b.resolveValue(v.Operand)
		return v
	case ir.TypeCheck:
		v.Operand = b.resolveValue(v.Operand)
		return v
	case ir.Throw:
		v.Exception = b.resolveValue(v.Exception)
		return v
	case ir.Await:
		v.Future = b.resolveValue(v.Future)
		return v
	default:
		return inst
	}
}

func (b *builder) resolveValue(v ir.Value) ir.Value {
	if v == nil {
		return nil
	}
	switch vv := v.(type) {
	case ir.Var:
		return b.resolve(vv)
	case ir.Binary:
		vv.Left, vv.Right = b.resolveValue(vv.Left), b.resolveValue(vv.Right)
		return vv
	case ir.Unary:
		vv.Operand = b.resolveValue(vv.Operand)
		return vv
	case ir.Call:
		vv.Receiver = b.resolveValue(vv.Receiver)
		vv.Args = b.resolveValues(vv.Args)
		return vv
	case ir.FieldAccess:
		vv.Receiver = b.resolveValue(vv.Receiver)
		return vv
	case ir.IndexAccess:
		vv.Receiver = b.resolveValue(vv.Receiver)
		vv.Index = b.resolveValue(vv.Index)
		return vv
	case ir.NewObject:
		vv.Args = b.resolveValues(vv.Args)
		return vv
	default:
		return v
	}
}

func (b *builder) resolveValues(vs []ir.Value) []ir.Value {
	if vs == nil {
		return nil
	}
	out := make([]ir.Value, len(vs))
	for i, v := range vs {
		out[i] = b.resolveValue(v)
	}
	return out
}

// renameValue applies the current renaming to v's sub-values, per spec.md
// §4.3 "Value renaming": Var(x) -> Var(x_n) where n = read_variable(x,
// currentBlock); composite values recurse.
func (b *builder) renameValue(v ir.Value, blockID int) ir.Value {
	if v == nil {
		return nil
	}
	switch vv := v.(type) {
	case ir.Constant:
		return vv
	case ir.Var:
		return b.readVariable(vv.Variable.Name, blockID)
	case ir.Binary:
		return ir.Binary{Op: vv.Op, Left: b.renameValue(vv.Left, blockID), Right: b.renameValue(vv.Right, blockID)}
	case ir.Unary:
		return ir.Unary{Op: vv.Op, Operand: b.renameValue(vv.Operand, blockID)}
	case ir.Call:
		return ir.Call{Receiver: b.renameValue(vv.Receiver, blockID), MethodName: vv.MethodName, Args: b.renameValues(vv.Args, blockID)}
	case ir.FieldAccess:
		return ir.FieldAccess{Receiver: b.renameValue(vv.Receiver, blockID), FieldName: vv.FieldName}
	case ir.IndexAccess:
		return ir.IndexAccess{Receiver: b.renameValue(vv.Receiver, blockID), Index: b.renameValue(vv.Index, blockID)}
	case ir.NewObject:
		return ir.NewObject{TypeName: vv.TypeName, CtorName: vv.CtorName, Args: b.renameValues(vv.Args, blockID)}
	default:
		return v
	}
}

func (b *builder) renameValues(vs []ir.Value, blockID int) []ir.Value {
	if vs == nil {
		return nil
	}
	out := make([]ir.Value, len(vs))
	for i, v := range vs {
		out[i] = b.renameValue(v, blockID)
	}
	return out
}

// renameInstruction renames inst's sub-values and, for instructions that
// define a result, allocates a fresh version for the result and records it
// via write_variable (spec.md §4.3).
func (b *builder) renameInstruction(inst ir.Instruction, blockID int) ir.Instruction {
	switch v := inst.(type) {
	case ir.Assign:
		val := b.renameValue(v.Value, blockID)
		v.Target = b.defineFresh(v.Target.Name, blockID)
		v.Value = val
		return v
	case ir.Branch:
		v.Cond = b.renameValue(v.Cond, blockID)
		return v
	case ir.Jump:
		return v
	case ir.Return:
		v.Value = b.renameValue(v.Value, blockID)
		return v
	case ir.CallInstr:
		recv := b.renameValue(v.Receiver, blockID)
		args := b.renameValues(v.Args, blockID)
		if v.HasResult {
			v.Result = b.defineFresh(v.Result.Name, blockID)
		}
		v.Receiver, v.Args = recv, args
		return v
	case ir.LoadField:
		base := b.renameValue(v.Base, blockID)
		v.Result = b.defineFresh(v.Result.Name, blockID)
		v.Base = base
		return v
	case ir.StoreField:
		v.Base = b.renameValue(v.Base, blockID)
		v.Value = b.renameValue(v.Value, blockID)
		return v
	case ir.LoadIndex:
		base := b.renameValue(v.Base, blockID)
		index := b.renameValue(v.Index, blockID)
		v.Result = b.defineFresh(v.Result.Name, blockID)
		v.Base, v.Index = base, index
		return v
	case ir.StoreIndex:
		v.Base = b.renameValue(v.Base, blockID)
		v.Index = b.renameValue(v.Index, blockID)
		v.Value = b.renameValue(v.Value, blockID)
		return v
	case ir.NullCheck:
		operand := b.renameValue(v.Operand, blockID)
		v.Result = b.defineFresh(v.Result.Name, blockID)
		v.Operand = operand
		return v
	case ir.Cast:
		operand := b.renameValue(v.Operand, blockID)
		v.Result = b.defineFresh(v.Result.Name, blockID)
		v.Operand = operand
		return v
	case ir.TypeCheck:
		operand := b.renameValue(v.Operand, blockID)
		v.Result = b.defineFresh(v.Result.Name, blockID)
		v.Operand = operand
		return v
	case ir.Throw:
		v.Exception = b.renameValue(v.Exception, blockID)
		return v
	case ir.Await:
		future := b.renameValue(v.Future, blockID)
		v.Result = b.defineFresh(v.Result.Name, blockID)
		v.Future = future
		return v
	default:
		return inst
	}
}
