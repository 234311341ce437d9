// Package facts walks an SSA internal/ir.CFG and emits the flow-insensitive
// and flow-sensitive fact tuples internal/datalog rules are written against
// (C4). The emission shape — a Predicate string plus a positional Args slice
// — is grounded on the teacher's internal/world CodeElement.ToFacts /
// ElementsToFacts, which builds core.Fact{Predicate, Args} tuples from a
// parsed element rather than from SSA, but establishes the same "one struct
// per tuple, named by predicate" idiom this package generalizes to the
// dataflow schema.
package facts

import (
	"strconv"
	"sync"

	"anteater/internal/ir"
)

// Fact is one emitted tuple: Predicate names the relation, Args are its
// positional arguments in declaration order.
type Fact struct {
	Predicate string
	Args      []interface{}
}

// HeapAllocator assigns heapId = "TypeName#n" with n monotonically
// increasing per type, across the whole extraction session — shared by
// every ExtractFunction call so two NewObject sites of the same type never
// collide, even across files.
type HeapAllocator struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{counts: make(map[string]int)}
}

func (h *HeapAllocator) Next(typeName string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.counts[typeName]
	h.counts[typeName] = n + 1
	return typeName + "#" + strconv.Itoa(n)
}

// indexFieldName is the synthetic field name index access is modeled under.
const indexFieldName = "[]"

// Extraction is the result of walking one or more functions: the emitted
// facts plus any instruction kinds the walker did not know how to handle,
// so test suites can assert completeness (spec.md §4.4).
type Extraction struct {
	Facts          []Fact
	UnhandledTypes map[string]bool
}

func newExtraction() *Extraction {
	return &Extraction{UnhandledTypes: make(map[string]bool)}
}

func (ex *Extraction) emit(predicate string, args ...interface{}) {
	ex.Facts = append(ex.Facts, Fact{Predicate: predicate, Args: args})
}

func (ex *Extraction) unhandled(kind string) {
	ex.UnhandledTypes[kind] = true
}

func (ex *Extraction) merge(other *Extraction) {
	ex.Facts = append(ex.Facts, other.Facts...)
	for k := range other.UnhandledTypes {
		ex.UnhandledTypes[k] = true
	}
}

// ExtractAll extracts facts from every function, sharing one heap allocator
// so heap ids stay unique across the whole session.
func ExtractAll(fns []*ir.Function, alloc *HeapAllocator) *Extraction {
	ex := newExtraction()
	for _, fn := range fns {
		ex.merge(ExtractFunction(fn, alloc))
	}
	return ex
}

// ExtractFunction walks one function's CFG in block order, emitting Flow,
// Reachable, and the per-instruction facts described in spec.md §4.4.
func ExtractFunction(fn *ir.Function, alloc *HeapAllocator) *Extraction {
	ex := newExtraction()
	x := &extractor{funcName: fn.Name, alloc: alloc, ex: ex}

	cfg := fn.CFG
	ex.emit("Reachable", x.blockID(cfg.Entry))

	for _, b := range cfg.Blocks() {
		for _, succ := range b.Succs {
			ex.emit("Flow", x.blockID(b.ID), x.blockID(succ))
		}
		for _, inst := range b.Instructions {
			x.walkInstruction(b.ID, inst)
		}
	}
	return ex
}

// extractor carries the per-function naming state: every variable, block,
// and call-site id is qualified by function name so facts from different
// functions never alias in the shared fact store.
type extractor struct {
	funcName string
	alloc    *HeapAllocator
	ex       *Extraction
}

func (x *extractor) blockID(id int) string {
	return x.funcName + ".b" + strconv.Itoa(id)
}

func (x *extractor) varID(v ir.Variable) string {
	return x.funcName + "." + v.CanonicalID()
}

func (x *extractor) callSiteID(offset int) string {
	return x.funcName + ".call@" + strconv.Itoa(offset)
}

// resolveValue returns the fact-schema id for v, or ok=false if v carries no
// pointer identity a fact can reference (constants, arithmetic results —
// spec.md §4.4 "Out-of-scope values").
func (x *extractor) resolveValue(v ir.Value) (string, bool) {
	switch val := v.(type) {
	case ir.Var:
		return x.varID(val.Variable), true
	case ir.PhiValue:
		return x.varID(val.Variable), true
	default:
		return "", false
	}
}

func (x *extractor) walkInstruction(block int, inst ir.Instruction) {
	switch v := inst.(type) {
	case ir.Assign:
		x.walkAssign(block, v)
	case ir.CallInstr:
		x.walkCall(block, v.Offset(), v.Receiver, v.MethodName, v.Result, v.HasResult)
	case ir.LoadField:
		x.emitLoadField(block, v.Base, v.FieldName, v.Result)
	case ir.StoreField:
		x.emitStoreField(block, v.Base, v.FieldName, v.Value)
	case ir.LoadIndex:
		x.emitLoadField(block, v.Base, indexFieldName, v.Result)
	case ir.StoreIndex:
		x.emitStoreField(block, v.Base, indexFieldName, v.Value)
	case ir.Phi:
		x.walkPhi(block, v)
	case ir.NullCheck:
		x.emitAliasAssign(block, v.Result, v.Operand)
	case ir.Cast:
		x.emitAliasAssign(block, v.Result, v.Operand)
	case ir.TypeCheck:
		// "is" tests yield a boolean, not an alias of the operand — same
		// out-of-scope treatment as binary/unary arithmetic.
	case ir.Await:
		// "Await transfers dataflow from future to result as an Assign."
		x.emitAliasAssign(block, v.Result, v.Future)
	case ir.Branch, ir.Jump, ir.Return, ir.Throw:
		// Terminators contribute only the Flow edges already emitted per
		// block; no instruction-level fact of their own.
	default:
		x.ex.unhandled(instructionKind(inst))
	}
}

func (x *extractor) walkAssign(block int, a ir.Assign) {
	targetID := x.varID(a.Target)

	switch val := a.Value.(type) {
	case ir.Var:
		x.emitAssign(block, targetID, x.varID(val.Variable))
	case ir.PhiValue:
		x.emitAssign(block, targetID, x.varID(val.Variable))
	case ir.Constant:
		// Constants emit none (spec.md §4.4).
	case ir.Binary, ir.Unary:
		// Arithmetic does not produce heap objects and emits no facts of
		// its own (spec.md §4.4).
	case ir.NewObject:
		heapID := x.alloc.Next(val.TypeName)
		x.ex.emit("Alloc", targetID, heapID)
		x.ex.emit("AllocAt", x.blockID(block), targetID, heapID)
	case ir.Call:
		x.walkCall(block, a.Offset(), val.Receiver, val.MethodName, a.Target, true)
	case ir.FieldAccess:
		x.emitLoadField(block, val.Receiver, val.FieldName, a.Target)
	case ir.IndexAccess:
		x.emitLoadField(block, val.Receiver, indexFieldName, a.Target)
	default:
		x.ex.unhandled("Assign(" + valueKind(a.Value) + ")")
	}
}

func (x *extractor) walkCall(block int, offset int, receiver ir.Value, method string, result ir.Variable, hasResult bool) {
	receiverID := interface{}(-1)
	if receiver != nil {
		if id, ok := x.resolveValue(receiver); ok {
			receiverID = id
		}
	}
	resultID := interface{}(-1)
	if hasResult {
		resultID = x.varID(result)
	}

	callSite := x.callSiteID(offset)
	x.ex.emit("Call", callSite, receiverID, method, resultID)
	x.ex.emit("CallAt", x.blockID(block), callSite, receiverID, method, resultID)
}

func (x *extractor) emitLoadField(block int, base ir.Value, field string, result ir.Variable) {
	baseID, ok := x.resolveValue(base)
	if !ok {
		x.ex.unhandled("LoadField(base=" + valueKind(base) + ")")
		return
	}
	targetID := x.varID(result)
	x.ex.emit("LoadField", baseID, field, targetID)
	x.ex.emit("LoadFieldAt", x.blockID(block), baseID, field, targetID)
}

func (x *extractor) emitStoreField(block int, base ir.Value, field string, source ir.Value) {
	baseID, ok := x.resolveValue(base)
	if !ok {
		x.ex.unhandled("StoreField(base=" + valueKind(base) + ")")
		return
	}
	sourceID, ok := x.resolveValue(source)
	if !ok {
		// Storing a non-pointer value (a constant, an arithmetic result):
		// no points-to edge to record.
		return
	}
	x.ex.emit("StoreField", baseID, field, sourceID)
	x.ex.emit("StoreFieldAt", x.blockID(block), baseID, field, sourceID)
}

func (x *extractor) emitAliasAssign(block int, result ir.Variable, operand ir.Value) {
	operandID, ok := x.resolveValue(operand)
	if !ok {
		return
	}
	x.emitAssign(block, x.varID(result), operandID)
}

func (x *extractor) emitAssign(block int, target, source string) {
	x.ex.emit("Assign", target, source)
	x.ex.emit("AssignAt", x.blockID(block), target, source)
}

// walkPhi emits one PhiAt fact per operand plus the flow-insensitive
// per-operand Assign the spec requires even though phi is itself
// flow-sensitive by nature.
func (x *extractor) walkPhi(block int, p ir.Phi) {
	targetID := x.varID(p.Target)
	for predBlock, val := range p.Operands {
		sourceID, ok := x.resolveValue(val)
		if !ok {
			continue
		}
		x.ex.emit("PhiAt", x.blockID(block), targetID, x.blockID(predBlock), sourceID)
		x.ex.emit("Assign", targetID, sourceID)
	}
}
