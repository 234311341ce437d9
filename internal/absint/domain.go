package absint

import "anteater/internal/ir"

// Domain supplies the domain-specific pieces the transfer function needs:
// how a literal or NewObject seeds a fresh abstract value, how Binary/Unary
// operators act on that domain's values, and how a null-check narrows a
// value on its true/false successor. Interval, Nullability and Combined
// each get a concrete Domain so the worklist interpreter stays
// domain-agnostic.
type Domain interface {
	Bottom() Value
	Top() Value
	FromIntLiteral(n int64) Value
	FromNullLiteral() Value
	FromNewObject() Value
	EvalBinary(op ir.BinaryOp, left, right Value) Value
	EvalUnary(op ir.UnaryOp, operand Value) Value
	// RefineNonNull/RefineNull narrow v on the branch where it's known
	// (respectively) non-null or null — the x == nil / x != nil successor
	// refinement §4.7's Null Verifier drives.
	RefineNonNull(v Value) Value
	RefineNull(v Value) Value
}

// IntervalDomain tracks only numeric ranges; null-related refinement is a
// no-op since Interval carries no nullness information.
type IntervalDomain struct{}

func (IntervalDomain) Bottom() Value                 { return BottomInterval() }
func (IntervalDomain) Top() Value                    { return TopInterval() }
func (IntervalDomain) FromIntLiteral(n int64) Value  { return ExactInterval(n) }
func (IntervalDomain) FromNullLiteral() Value        { return TopInterval() }
func (IntervalDomain) FromNewObject() Value          { return TopInterval() }
func (IntervalDomain) RefineNonNull(v Value) Value   { return v }
func (IntervalDomain) RefineNull(v Value) Value      { return v }

func (IntervalDomain) EvalBinary(op ir.BinaryOp, left, right Value) Value {
	l, r := asInterval(left), asInterval(right)
	switch op {
	case ir.OpAdd:
		return l.Add(r)
	case ir.OpSub:
		return l.Sub(r)
	case ir.OpMul:
		return l.Mul(r)
	case ir.OpDiv:
		return l.Div(r)
	case ir.OpMod:
		return l.Mod(r)
	default:
		// Comparisons and logical operators yield a boolean, which the
		// interval domain doesn't model — conservative top.
		return TopInterval()
	}
}

func (IntervalDomain) EvalUnary(op ir.UnaryOp, operand Value) Value {
	v := asInterval(operand)
	if op == ir.OpNeg {
		if v.IsBottom() {
			return v
		}
		return Interval{Min: negate(v.Max), Max: negate(v.Min)}
	}
	return TopInterval()
}

func negate(n int64) int64 {
	switch {
	case n <= negInf:
		return posInf
	case n >= posInf:
		return negInf
	default:
		return -n
	}
}

// NullabilityDomain tracks only nullness; numeric literals and arithmetic
// carry no information in this domain and evaluate to top.
type NullabilityDomain struct{}

func (NullabilityDomain) Bottom() Value                { return NullBottom }
func (NullabilityDomain) Top() Value                   { return MaybeNull }
func (NullabilityDomain) FromIntLiteral(int64) Value   { return MaybeNull }
func (NullabilityDomain) FromNullLiteral() Value       { return DefinitelyNull }
func (NullabilityDomain) FromNewObject() Value         { return DefinitelyNonNull }
func (NullabilityDomain) RefineNonNull(Value) Value    { return DefinitelyNonNull }
func (NullabilityDomain) RefineNull(Value) Value       { return DefinitelyNull }
func (NullabilityDomain) EvalBinary(ir.BinaryOp, Value, Value) Value { return MaybeNull }
func (NullabilityDomain) EvalUnary(ir.UnaryOp, Value) Value          { return MaybeNull }

// CombinedDomain is the product domain: each operation delegates to both
// components and reassembles a Combined.
type CombinedDomain struct{}

func (CombinedDomain) Bottom() Value { return BottomCombined() }
func (CombinedDomain) Top() Value    { return TopCombined() }

func (CombinedDomain) FromIntLiteral(n int64) Value {
	return Combined{Interval: ExactInterval(n), Nullability: MaybeNull}
}

func (CombinedDomain) FromNullLiteral() Value {
	return Combined{Interval: TopInterval(), Nullability: DefinitelyNull}
}

func (CombinedDomain) FromNewObject() Value {
	return Combined{Interval: TopInterval(), Nullability: DefinitelyNonNull}
}

func (CombinedDomain) RefineNonNull(v Value) Value {
	c := asCombined(v)
	c.Nullability = DefinitelyNonNull
	return c
}

func (CombinedDomain) RefineNull(v Value) Value {
	c := asCombined(v)
	c.Nullability = DefinitelyNull
	return c
}

func (CombinedDomain) EvalBinary(op ir.BinaryOp, left, right Value) Value {
	l, r := asCombined(left), asCombined(right)
	return Combined{
		Interval:    IntervalDomain{}.EvalBinary(op, l.Interval, r.Interval).(Interval),
		Nullability: MaybeNull,
	}
}

func (CombinedDomain) EvalUnary(op ir.UnaryOp, operand Value) Value {
	o := asCombined(operand)
	return Combined{
		Interval:    IntervalDomain{}.EvalUnary(op, o.Interval).(Interval),
		Nullability: MaybeNull,
	}
}
