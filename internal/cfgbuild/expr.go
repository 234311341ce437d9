package cfgbuild

import (
	"anteater/internal/ir"
	"anteater/internal/sourceast"
)

// expr lowers an expression into zero or more instructions appended to the
// current block, returning the ir.Value representing its result.
func (b *builder) expr(e sourceast.Expr) (ir.Value, error) {
	switch e.Kind() {
	case sourceast.ExprLiteral:
		return b.literal(e.(sourceast.LiteralExpr)), nil
	case sourceast.ExprIdentifier:
		name := e.(sourceast.IdentifierExpr).Name()
		return ir.Var{Variable: b.freshVar(name)}, nil
	case sourceast.ExprBinary:
		return b.binary(e.(sourceast.BinaryExpr))
	case sourceast.ExprUnary:
		u := e.(sourceast.UnaryExpr)
		operand, err := b.expr(u.Operand())
		if err != nil {
			return nil, err
		}
		return ir.Unary{Op: ir.UnaryOp(u.Op()), Operand: operand}, nil
	case sourceast.ExprPostfix:
		return b.postfix(e.(sourceast.PostfixExpr))
	case sourceast.ExprPropertyAccess:
		p := e.(sourceast.PropertyAccessExpr)
		recv, err := b.expr(p.Receiver())
		if err != nil {
			return nil, err
		}
		result := b.freshVar(b.cfg.FreshTemp())
		b.emit(ir.NewLoadField(e.Offset(), recv, p.FieldName(), result))
		return ir.Var{Variable: result}, nil
	case sourceast.ExprIndex:
		idx := e.(sourceast.IndexExpr)
		recv, err := b.expr(idx.Receiver())
		if err != nil {
			return nil, err
		}
		index, err := b.expr(idx.Index())
		if err != nil {
			return nil, err
		}
		result := b.freshVar(b.cfg.FreshTemp())
		b.emit(ir.NewLoadIndex(e.Offset(), recv, index, result))
		return ir.Var{Variable: result}, nil
	case sourceast.ExprMethodInvocation:
		return b.methodInvocation(e.(sourceast.MethodInvocationExpr))
	case sourceast.ExprObjectCreation:
		return b.objectCreation(e.(sourceast.ObjectCreationExpr))
	case sourceast.ExprConditional:
		return b.conditional(e.(sourceast.ConditionalExpr))
	case sourceast.ExprCascade:
		return b.cascade(e.(sourceast.CascadeExpr))
	case sourceast.ExprNullAware:
		return b.nullAware(e.(sourceast.NullAwareExpr))
	case sourceast.ExprShortCircuit:
		sc := e.(sourceast.ShortCircuitExpr)
		return b.shortCircuit(e.Offset(), sc.Op(), sc.Left(), sc.Right())
	case sourceast.ExprAwait:
		a := e.(sourceast.AwaitExpr)
		future, err := b.expr(a.Future())
		if err != nil {
			return nil, err
		}
		result := b.freshVar(b.cfg.FreshTemp())
		b.emit(ir.NewAwait(e.Offset(), future, result))
		// Await is a terminator: connect to a fresh continuation block which
		// becomes current, per spec.md §4.2.
		cont := b.cfg.NewBlock()
		b.current.ConnectTo(b.cfg, cont.ID)
		b.current = cont
		return ir.Var{Variable: result}, nil
	case sourceast.ExprCast:
		c := e.(sourceast.CastExpr)
		operand, err := b.expr(c.Operand())
		if err != nil {
			return nil, err
		}
		result := b.freshVar(b.cfg.FreshTemp())
		b.emit(ir.NewCast(e.Offset(), operand, c.TargetType(), result, c.IsNullable()))
		return ir.Var{Variable: result}, nil
	case sourceast.ExprTypeTest:
		t := e.(sourceast.TypeTestExpr)
		operand, err := b.expr(t.Operand())
		if err != nil {
			return nil, err
		}
		result := b.freshVar(b.cfg.FreshTemp())
		b.emit(ir.NewTypeCheck(e.Offset(), operand, t.TargetType(), result, t.Negated()))
		return ir.Var{Variable: result}, nil
	case sourceast.ExprAssignment:
		return b.assignment(e.(sourceast.AssignmentExpr))
	default:
		return nil, unsupported("expr", e.Offset())
	}
}

func (b *builder) literal(e sourceast.LiteralExpr) ir.Value {
	switch e.LiteralKind() {
	case sourceast.LitNull:
		return ir.Constant{Literal: ir.Literal{Kind: ir.LiteralNull}}
	case sourceast.LitBool:
		return ir.Constant{Literal: ir.Literal{Kind: ir.LiteralBool, Bool: e.BoolValue()}}
	case sourceast.LitInt:
		return ir.Constant{Literal: ir.Literal{Kind: ir.LiteralInt, Int: e.IntValue()}}
	case sourceast.LitDouble:
		return ir.Constant{Literal: ir.Literal{Kind: ir.LiteralDouble, Double: e.DoubleValue()}}
	default:
		return ir.Constant{Literal: ir.Literal{Kind: ir.LiteralString, Str: e.StringValue()}}
	}
}

func (b *builder) binary(e sourceast.BinaryExpr) (ir.Value, error) {
	// && / || get the short-circuit diamond lowering even when the parser
	// reports them as a plain BinaryExpr (spec.md §4.2).
	if e.Op() == sourceast.BinAnd || e.Op() == sourceast.BinOr {
		return b.shortCircuit(e.Offset(), e.Op(), e.Left(), e.Right())
	}
	left, err := b.expr(e.Left())
	if err != nil {
		return nil, err
	}
	right, err := b.expr(e.Right())
	if err != nil {
		return nil, err
	}
	return ir.Binary{Op: ir.BinaryOp(e.Op()), Left: left, Right: right}, nil
}

// shortCircuit lowers `&&`/`||` into an explicit diamond materializing the
// result in a fresh temporary, per spec.md §4.2: `&&` evaluates the right
// operand only on the true side, `||` only on the false side.
func (b *builder) shortCircuit(offset int, op sourceast.BinaryOp, leftExpr, rightExpr sourceast.Expr) (ir.Value, error) {
	left, err := b.expr(leftExpr)
	if err != nil {
		return nil, err
	}
	evalRight := b.cfg.NewBlock()
	shortCircuitBlock := b.cfg.NewBlock()
	merge := b.cfg.NewBlock()
	resultVar := b.freshVar(b.cfg.FreshTemp())

	if op == sourceast.BinAnd {
		b.branchTo(offset, left, evalRight.ID, shortCircuitBlock.ID)
	} else {
		b.branchTo(offset, left, shortCircuitBlock.ID, evalRight.ID)
	}

	b.current = evalRight
	right, err := b.expr(rightExpr)
	if err != nil {
		return nil, err
	}
	b.emit(ir.NewAssign(offset, resultVar, right))
	b.jumpTo(offset, merge.ID)

	b.current = shortCircuitBlock
	shortCircuitValue := op == sourceast.BinOr
	b.emit(ir.NewAssign(offset, resultVar, ir.Constant{Literal: ir.Literal{Kind: ir.LiteralBool, Bool: shortCircuitValue}}))
	b.jumpTo(offset, merge.ID)

	b.current = merge
	return ir.Var{Variable: resultVar}, nil
}

// postfix desugars `x++`/`x--` to the compound-assignment shape; the
// resulting value is the UPDATED value (post-increment semantics beyond
// statement position are not required by spec.md, so the pre-increment
// value is not separately preserved).
func (b *builder) postfix(e sourceast.PostfixExpr) (ir.Value, error) {
	op := ir.OpAdd
	if e.Op() == sourceast.PostfixDec {
		op = ir.OpSub
	}
	return b.compoundAssignTo(e.Offset(), e.Operand(), op, ir.Constant{Literal: ir.Literal{Kind: ir.LiteralInt, Int: 1}})
}

func (b *builder) methodInvocation(e sourceast.MethodInvocationExpr) (ir.Value, error) {
	var recv ir.Value
	if e.Receiver() != nil {
		var err error
		recv, err = b.expr(e.Receiver())
		if err != nil {
			return nil, err
		}
	}
	args, err := b.exprList(e.Args())
	if err != nil {
		return nil, err
	}
	result := b.freshVar(b.cfg.FreshTemp())
	b.emit(ir.NewCallInstr(e.Offset(), recv, e.MethodName(), args, result, true))
	return ir.Var{Variable: result}, nil
}

func (b *builder) objectCreation(e sourceast.ObjectCreationExpr) (ir.Value, error) {
	args, err := b.exprList(e.Args())
	if err != nil {
		return nil, err
	}
	result := b.freshVar(b.cfg.FreshTemp())
	b.emit(ir.NewAssign(e.Offset(), result, ir.NewObject{TypeName: e.TypeName(), CtorName: e.CtorName(), Args: args}))
	return ir.Var{Variable: result}, nil
}

func (b *builder) exprList(exprs []sourceast.Expr) ([]ir.Value, error) {
	out := make([]ir.Value, len(exprs))
	for i, a := range exprs {
		v, err := b.expr(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (b *builder) conditional(e sourceast.ConditionalExpr) (ir.Value, error) {
	offset := e.Offset()
	cond, err := b.expr(e.Cond())
	if err != nil {
		return nil, err
	}
	thenB := b.cfg.NewBlock()
	elseB := b.cfg.NewBlock()
	merge := b.cfg.NewBlock()
	result := b.freshVar(b.cfg.FreshTemp())
	b.branchTo(offset, cond, thenB.ID, elseB.ID)

	b.current = thenB
	thenVal, err := b.expr(e.Then())
	if err != nil {
		return nil, err
	}
	b.emit(ir.NewAssign(offset, result, thenVal))
	b.jumpTo(offset, merge.ID)

	b.current = elseB
	elseVal, err := b.expr(e.Else())
	if err != nil {
		return nil, err
	}
	b.emit(ir.NewAssign(offset, result, elseVal))
	b.jumpTo(offset, merge.ID)

	b.current = merge
	return ir.Var{Variable: result}, nil
}

// cascade evaluates the target once into a temporary; each section is
// lowered as a call/store on that temporary; the cascade's value is the
// temporary (spec.md §4.2).
func (b *builder) cascade(e sourceast.CascadeExpr) (ir.Value, error) {
	offset := e.Offset()
	target, err := b.expr(e.Target())
	if err != nil {
		return nil, err
	}
	targetVar := b.freshVar(b.cfg.FreshTemp())
	b.emit(ir.NewAssign(offset, targetVar, target))
	targetRef := ir.Var{Variable: targetVar}

	for _, sec := range e.Sections() {
		if sec.MethodName != "" {
			args, err := b.exprList(sec.Args)
			if err != nil {
				return nil, err
			}
			b.emit(ir.NewCallInstr(offset, targetRef, sec.MethodName, args, ir.Variable{}, false))
			continue
		}
		val, err := b.expr(sec.Value)
		if err != nil {
			return nil, err
		}
		b.emit(ir.NewStoreField(offset, targetRef, sec.FieldName, val))
	}
	return targetRef, nil
}

// nullAware lowers `?.`, `??`, `??=` into the same diamond shape as
// short-circuit operators: the null side assigns Constant(null) (for `?.`)
// or the RHS (for `??`/`??=`) to the result temp (spec.md §4.2).
func (b *builder) nullAware(e sourceast.NullAwareExpr) (ir.Value, error) {
	offset := e.Offset()
	left, err := b.expr(e.Left())
	if err != nil {
		return nil, err
	}
	nullCheckTemp := b.freshVar(b.cfg.FreshTemp())
	b.emit(ir.NewAssign(offset, nullCheckTemp, ir.Binary{Op: ir.OpEq, Left: left, Right: ir.Constant{Literal: ir.Literal{Kind: ir.LiteralNull}}}))

	nullBlock := b.cfg.NewBlock()
	nonNullBlock := b.cfg.NewBlock()
	merge := b.cfg.NewBlock()
	result := b.freshVar(b.cfg.FreshTemp())
	b.branchTo(offset, ir.Var{Variable: nullCheckTemp}, nullBlock.ID, nonNullBlock.ID)

	b.current = nullBlock
	switch e.NullAwareKind() {
	case sourceast.NullAwareAccess:
		b.emit(ir.NewAssign(offset, result, ir.Constant{Literal: ir.Literal{Kind: ir.LiteralNull}}))
	default: // ?? and ??=
		rhs, err := b.expr(e.Right())
		if err != nil {
			return nil, err
		}
		b.emit(ir.NewAssign(offset, result, rhs))
	}
	b.jumpTo(offset, merge.ID)

	b.current = nonNullBlock
	switch e.NullAwareKind() {
	case sourceast.NullAwareAccess:
		// The caller wraps this node's Left() result with a property access
		// or method invocation on the non-null side; here we simply pass
		// the (non-null) left value through, and the surrounding
		// PropertyAccess/MethodInvocation node (if present in the parser's
		// encoding) operates on `result` in its own lowering.
		b.emit(ir.NewAssign(offset, result, left))
	default:
		b.emit(ir.NewAssign(offset, result, left))
	}
	b.jumpTo(offset, merge.ID)

	b.current = merge
	return ir.Var{Variable: result}, nil
}

func (b *builder) assignment(e sourceast.AssignmentExpr) (ir.Value, error) {
	if e.Op() == sourceast.AssignPlain {
		return b.plainAssignTo(e.Offset(), e.Target(), e.Value())
	}
	op, ok := compoundOp(e.Op())
	if !ok {
		// ??= is handled by treating it as the null-aware diamond into the
		// same target, rather than a Binary op.
		return b.coalesceAssignTo(e.Offset(), e.Target(), e.Value())
	}
	rhsVal, err := b.expr(e.Value())
	if err != nil {
		return nil, err
	}
	return b.compoundAssignTo(e.Offset(), e.Target(), op, rhsVal)
}

func compoundOp(op sourceast.AssignmentOp) (ir.BinaryOp, bool) {
	switch op {
	case sourceast.AssignAdd:
		return ir.OpAdd, true
	case sourceast.AssignSub:
		return ir.OpSub, true
	case sourceast.AssignMul:
		return ir.OpMul, true
	case sourceast.AssignDiv:
		return ir.OpDiv, true
	case sourceast.AssignMod:
		return ir.OpMod, true
	default:
		return "", false
	}
}

// plainAssignTo lowers `target = value`: identifier targets become a fresh
// SSA-eligible pre-SSA write, property/index targets emit
// StoreField/StoreIndex (spec.md §4.2).
func (b *builder) plainAssignTo(offset int, target sourceast.Expr, valueExpr sourceast.Expr) (ir.Value, error) {
	val, err := b.expr(valueExpr)
	if err != nil {
		return nil, err
	}
	switch target.Kind() {
	case sourceast.ExprIdentifier:
		name := target.(sourceast.IdentifierExpr).Name()
		v := b.freshVar(name)
		b.emit(ir.NewAssign(offset, v, val))
		return ir.Var{Variable: v}, nil
	case sourceast.ExprPropertyAccess:
		p := target.(sourceast.PropertyAccessExpr)
		recv, err := b.expr(p.Receiver())
		if err != nil {
			return nil, err
		}
		b.emit(ir.NewStoreField(offset, recv, p.FieldName(), val))
		return val, nil
	case sourceast.ExprIndex:
		idx := target.(sourceast.IndexExpr)
		recv, err := b.expr(idx.Receiver())
		if err != nil {
			return nil, err
		}
		index, err := b.expr(idx.Index())
		if err != nil {
			return nil, err
		}
		b.emit(ir.NewStoreIndex(offset, recv, index, val))
		return val, nil
	default:
		return nil, unsupported("assignment target", target.Offset())
	}
}

// compoundAssignTo desugars `x op= e` to `x = x op e` (spec.md §4.2).
func (b *builder) compoundAssignTo(offset int, target sourceast.Expr, op ir.BinaryOp, rhs ir.Value) (ir.Value, error) {
	switch target.Kind() {
	case sourceast.ExprIdentifier:
		name := target.(sourceast.IdentifierExpr).Name()
		current := ir.Var{Variable: b.freshVar(name)}
		combined := ir.Binary{Op: op, Left: current, Right: rhs}
		v := b.freshVar(name)
		b.emit(ir.NewAssign(offset, v, combined))
		return ir.Var{Variable: v}, nil
	case sourceast.ExprPropertyAccess:
		p := target.(sourceast.PropertyAccessExpr)
		recv, err := b.expr(p.Receiver())
		if err != nil {
			return nil, err
		}
		loadResult := b.freshVar(b.cfg.FreshTemp())
		b.emit(ir.NewLoadField(offset, recv, p.FieldName(), loadResult))
		combined := ir.Binary{Op: op, Left: ir.Var{Variable: loadResult}, Right: rhs}
		b.emit(ir.NewStoreField(offset, recv, p.FieldName(), combined))
		return combined, nil
	case sourceast.ExprIndex:
		idx := target.(sourceast.IndexExpr)
		recv, err := b.expr(idx.Receiver())
		if err != nil {
			return nil, err
		}
		index, err := b.expr(idx.Index())
		if err != nil {
			return nil, err
		}
		loadResult := b.freshVar(b.cfg.FreshTemp())
		b.emit(ir.NewLoadIndex(offset, recv, index, loadResult))
		combined := ir.Binary{Op: op, Left: ir.Var{Variable: loadResult}, Right: rhs}
		b.emit(ir.NewStoreIndex(offset, recv, index, combined))
		return combined, nil
	default:
		return nil, unsupported("compound assignment target", target.Offset())
	}
}

// coalesceAssignTo lowers `x ??= e`: if x is currently null, assign e;
// otherwise leave x unchanged. Identifier targets only need the diamond to
// decide the new value once; property targets additionally need a load
// before the diamond. Index targets are not lowered and return
// UnsupportedConstruct.
func (b *builder) coalesceAssignTo(offset int, target, valueExpr sourceast.Expr) (ir.Value, error) {
	var current ir.Value
	switch target.Kind() {
	case sourceast.ExprIdentifier:
		name := target.(sourceast.IdentifierExpr).Name()
		current = ir.Var{Variable: b.freshVar(name)}
	case sourceast.ExprPropertyAccess:
		p := target.(sourceast.PropertyAccessExpr)
		recv, err := b.expr(p.Receiver())
		if err != nil {
			return nil, err
		}
		loadResult := b.freshVar(b.cfg.FreshTemp())
		b.emit(ir.NewLoadField(offset, recv, p.FieldName(), loadResult))
		current = ir.Var{Variable: loadResult}
	default:
		return nil, unsupported("??= target", target.Offset())
	}

	isNullTemp := b.freshVar(b.cfg.FreshTemp())
	b.emit(ir.NewAssign(offset, isNullTemp, ir.Binary{Op: ir.OpEq, Left: current, Right: ir.Constant{Literal: ir.Literal{Kind: ir.LiteralNull}}}))

	nullBlock := b.cfg.NewBlock()
	nonNullBlock := b.cfg.NewBlock()
	merge := b.cfg.NewBlock()
	resultName := b.cfg.FreshTemp()
	if target.Kind() == sourceast.ExprIdentifier {
		resultName = target.(sourceast.IdentifierExpr).Name()
	}
	b.branchTo(offset, ir.Var{Variable: isNullTemp}, nullBlock.ID, nonNullBlock.ID)

	b.current = nullBlock
	rhs, err := b.expr(valueExpr)
	if err != nil {
		return nil, err
	}
	rv := b.freshVar(resultName)
	b.emit(ir.NewAssign(offset, rv, rhs))
	if target.Kind() == sourceast.ExprPropertyAccess {
		p := target.(sourceast.PropertyAccessExpr)
		recv, err := b.expr(p.Receiver())
		if err != nil {
			return nil, err
		}
		b.emit(ir.NewStoreField(offset, recv, p.FieldName(), ir.Var{Variable: rv}))
	}
	b.jumpTo(offset, merge.ID)

	b.current = nonNullBlock
	rv2 := b.freshVar(resultName)
	b.emit(ir.NewAssign(offset, rv2, current))
	b.jumpTo(offset, merge.ID)

	b.current = merge
	return ir.Var{Variable: b.freshVar(resultName)}, nil
}
