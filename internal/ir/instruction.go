package ir

// Instruction is the sealed instruction hierarchy. Every variant carries a
// SourceOffset for diagnostic attribution back to the originating AST node.
type Instruction interface {
	instr()
	Offset() int
	String() string
}

// At embeds the source offset every instruction variant carries. It is
// exported so constructor functions in this package can be used from other
// packages without a builder shim.
type At struct{ SourceOffset int }

func (a At) Offset() int { return a.SourceOffset }
func (At) instr()        {}

// Assign: target = value.
type Assign struct {
	At
	Target Variable
	Value  Value
}

func NewAssign(offset int, target Variable, value Value) Assign {
	return Assign{At: At{offset}, Target: target, Value: value}
}

// Branch is a terminator: control goes to ThenBlock if Cond is truthy, else
// ElseBlock.
type Branch struct {
	At
	Cond                 Value
	ThenBlock, ElseBlock int
}

func NewBranch(offset int, cond Value, thenBlock, elseBlock int) Branch {
	return Branch{At: At{offset}, Cond: cond, ThenBlock: thenBlock, ElseBlock: elseBlock}
}

// Jump is an unconditional terminator.
type Jump struct {
	At
	Target int
}

func NewJump(offset int, target int) Jump { return Jump{At: At{offset}, Target: target} }

// Return is a terminator; Value is nil for a bare `return;`.
type Return struct {
	At
	Value Value // nil-able
}

func NewReturn(offset int, value Value) Return { return Return{At: At{offset}, Value: value} }

// Phi is a pseudo-instruction materializing the reaching definition per
// predecessor block. Operands is keyed by predecessor block id.
type Phi struct {
	At
	Target   Variable
	Operands map[int]Value
}

func NewPhi(offset int, target Variable) Phi {
	return Phi{At: At{offset}, Target: target, Operands: make(map[int]Value)}
}

// Call as a statement-level instruction; Result is the zero Variable
// (Name=="") when the call's value is discarded.
type CallInstr struct {
	At
	Receiver   Value // nil-able
	MethodName string
	Args       []Value
	Result     Variable
	HasResult  bool
}

func NewCallInstr(offset int, receiver Value, method string, args []Value, result Variable, hasResult bool) CallInstr {
	return CallInstr{At: At{offset}, Receiver: receiver, MethodName: method, Args: args, Result: result, HasResult: hasResult}
}

type LoadField struct {
	At
	Base      Value
	FieldName string
	Result    Variable
}

func NewLoadField(offset int, base Value, field string, result Variable) LoadField {
	return LoadField{At: At{offset}, Base: base, FieldName: field, Result: result}
}

type StoreField struct {
	At
	Base      Value
	FieldName string
	Value     Value
}

func NewStoreField(offset int, base Value, field string, value Value) StoreField {
	return StoreField{At: At{offset}, Base: base, FieldName: field, Value: value}
}

type LoadIndex struct {
	At
	Base   Value
	Index  Value
	Result Variable
}

func NewLoadIndex(offset int, base, index Value, result Variable) LoadIndex {
	return LoadIndex{At: At{offset}, Base: base, Index: index, Result: result}
}

type StoreIndex struct {
	At
	Base  Value
	Index Value
	Value Value
}

func NewStoreIndex(offset int, base, index, value Value) StoreIndex {
	return StoreIndex{At: At{offset}, Base: base, Index: index, Value: value}
}

type NullCheck struct {
	At
	Operand Value
	Result  Variable
}

func NewNullCheck(offset int, operand Value, result Variable) NullCheck {
	return NullCheck{At: At{offset}, Operand: operand, Result: result}
}

type Cast struct {
	At
	Operand    Value
	TargetType string
	Result     Variable
	IsNullable bool
}

func NewCast(offset int, operand Value, targetType string, result Variable, isNullable bool) Cast {
	return Cast{At: At{offset}, Operand: operand, TargetType: targetType, Result: result, IsNullable: isNullable}
}

type TypeCheck struct {
	At
	Operand    Value
	TargetType string
	Result     Variable
	Negated    bool
}

func NewTypeCheck(offset int, operand Value, targetType string, result Variable, negated bool) TypeCheck {
	return TypeCheck{At: At{offset}, Operand: operand, TargetType: targetType, Result: result, Negated: negated}
}

// Throw is a terminator.
type Throw struct {
	At
	Exception Value
}

func NewThrow(offset int, exception Value) Throw { return Throw{At: At{offset}, Exception: exception} }

// Await is a terminator: control resumes in a fresh continuation block once
// Future completes.
type Await struct {
	At
	Future Value
	Result Variable
}

func NewAwait(offset int, future Value, result Variable) Await {
	return Await{At: At{offset}, Future: future, Result: result}
}

// DefinedVariable reports the result variable and whether the instruction
// defines one, for the uniform SSA-renaming and points-to extraction passes.
func DefinedVariable(i Instruction) (Variable, bool) {
	switch v := i.(type) {
	case Assign:
		return v.Target, true
	case Phi:
		return v.Target, true
	case CallInstr:
		return v.Result, v.HasResult
	case LoadField:
		return v.Result, true
	case LoadIndex:
		return v.Result, true
	case NullCheck:
		return v.Result, true
	case Cast:
		return v.Result, true
	case TypeCheck:
		return v.Result, true
	case Await:
		return v.Result, true
	default:
		return Variable{}, false
	}
}

// IsTerminator reports whether i is one of Branch, Jump, Return, Throw,
// Await — the only instruction kinds §3 permits to end a block.
func IsTerminator(i Instruction) bool {
	switch i.(type) {
	case Branch, Jump, Return, Throw, Await:
		return true
	default:
		return false
	}
}
