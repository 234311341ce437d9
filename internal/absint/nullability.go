package absint

// Nullability is the four-point lattice ⊥ < {definitelyNull,
// definitelyNonNull} < maybeNull (⊤).
type Nullability int

const (
	NullBottom Nullability = iota
	DefinitelyNull
	DefinitelyNonNull
	MaybeNull
)

func (n Nullability) IsBottom() bool { return n == NullBottom }
func (n Nullability) IsTop() bool    { return n == MaybeNull }

func (n Nullability) String() string {
	switch n {
	case NullBottom:
		return "⊥"
	case DefinitelyNull:
		return "definitelyNull"
	case DefinitelyNonNull:
		return "definitelyNonNull"
	default:
		return "maybeNull"
	}
}

func asNullability(v Value) Nullability {
	n, ok := v.(Nullability)
	if !ok {
		return NullBottom
	}
	return n
}

func (n Nullability) Join(other Value) Value {
	o := asNullability(other)
	if n == o {
		return n
	}
	if n.IsBottom() {
		return o
	}
	if o.IsBottom() {
		return n
	}
	return MaybeNull
}

func (n Nullability) Meet(other Value) Value {
	o := asNullability(other)
	if n == o {
		return n
	}
	if n.IsTop() {
		return o
	}
	if o.IsTop() {
		return n
	}
	return NullBottom
}

// Widen on a lattice this shallow is just Join — there is no infinite
// ascending chain to truncate.
func (n Nullability) Widen(other Value) Value { return n.Join(other) }

// Narrow is Meet: it can only refine toward, never below, the fixpoint.
func (n Nullability) Narrow(other Value) Value { return n.Meet(other) }

func (n Nullability) IsSubsetOf(other Value) bool {
	o := asNullability(other)
	if n.IsBottom() {
		return true
	}
	if o.IsTop() {
		return true
	}
	return n == o
}
