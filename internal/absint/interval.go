package absint

import "fmt"

// interval endpoints range over ℤ ∪ {-∞, +∞}; infinities are represented by
// sentinel int64 values far from any real program constant rather than
// math.MinInt64/MaxInt64, so arithmetic can add/subtract one more step of
// headroom without wrapping.
const (
	negInf int64 = -(1 << 62)
	posInf int64 = 1 << 62
)

// Interval is [Min, Max]. Min > Max denotes bottom.
type Interval struct {
	Min, Max int64
}

// BottomInterval returns the empty interval (unreachable value).
func BottomInterval() Interval { return Interval{Min: 1, Max: 0} }

// TopInterval returns [-∞, +∞] (no information).
func TopInterval() Interval { return Interval{Min: negInf, Max: posInf} }

// ExactInterval returns the single-point interval [n, n].
func ExactInterval(n int64) Interval { return Interval{Min: n, Max: n} }

func (i Interval) IsBottom() bool { return i.Min > i.Max }
func (i Interval) IsTop() bool    { return i.Min <= negInf && i.Max >= posInf }

func (i Interval) String() string {
	if i.IsBottom() {
		return "⊥"
	}
	return fmt.Sprintf("[%s, %s]", endpointString(i.Min), endpointString(i.Max))
}

func endpointString(n int64) string {
	switch {
	case n <= negInf:
		return "-∞"
	case n >= posInf:
		return "+∞"
	default:
		return fmt.Sprintf("%d", n)
	}
}

func asInterval(v Value) Interval {
	iv, ok := v.(Interval)
	if !ok {
		return BottomInterval()
	}
	return iv
}

func (i Interval) Join(other Value) Value {
	o := asInterval(other)
	if i.IsBottom() {
		return o
	}
	if o.IsBottom() {
		return i
	}
	return Interval{Min: minI64(i.Min, o.Min), Max: maxI64(i.Max, o.Max)}
}

func (i Interval) Meet(other Value) Value {
	o := asInterval(other)
	return Interval{Min: maxI64(i.Min, o.Min), Max: minI64(i.Max, o.Max)}
}

// Widen jumps any endpoint that grew in the widening direction to infinity,
// guaranteeing the ascending chain terminates.
func (i Interval) Widen(other Value) Value {
	o := asInterval(other)
	if i.IsBottom() {
		return o
	}
	if o.IsBottom() {
		return i
	}
	min := i.Min
	if o.Min < i.Min {
		min = negInf
	}
	max := i.Max
	if o.Max > i.Max {
		max = posInf
	}
	return Interval{Min: min, Max: max}
}

// Narrow adopts a finite bound from other wherever this interval's
// corresponding endpoint is still infinite.
func (i Interval) Narrow(other Value) Value {
	o := asInterval(other)
	if i.IsBottom() || o.IsBottom() {
		return i
	}
	min := i.Min
	if min <= negInf && o.Min > negInf {
		min = o.Min
	}
	max := i.Max
	if max >= posInf && o.Max < posInf {
		max = o.Max
	}
	return Interval{Min: min, Max: max}
}

func (i Interval) IsSubsetOf(other Value) bool {
	o := asInterval(other)
	if i.IsBottom() {
		return true
	}
	if o.IsBottom() {
		return false
	}
	return o.Min <= i.Min && i.Max <= o.Max
}

func (i Interval) Add(other Interval) Interval {
	if i.IsBottom() || other.IsBottom() {
		return BottomInterval()
	}
	return Interval{Min: addSat(i.Min, other.Min), Max: addSat(i.Max, other.Max)}
}

// Sub swaps the second operand's endpoints: [a,b] - [c,d] = [a-d, b-c].
func (i Interval) Sub(other Interval) Interval {
	if i.IsBottom() || other.IsBottom() {
		return BottomInterval()
	}
	return Interval{Min: subSat(i.Min, other.Max), Max: subSat(i.Max, other.Min)}
}

func (i Interval) Mul(other Interval) Interval {
	if i.IsBottom() || other.IsBottom() {
		return BottomInterval()
	}
	corners := []int64{
		mulSat(i.Min, other.Min),
		mulSat(i.Min, other.Max),
		mulSat(i.Max, other.Min),
		mulSat(i.Max, other.Max),
	}
	min, max := corners[0], corners[0]
	for _, c := range corners[1:] {
		min = minI64(min, c)
		max = maxI64(max, c)
	}
	return Interval{Min: min, Max: max}
}

// Div is top if the divisor interval contains zero (division by an unknown
// zero is unsound to narrow); otherwise it's the min/max of the four corner
// quotients, same scheme as Mul.
func (i Interval) Div(other Interval) Interval {
	if i.IsBottom() || other.IsBottom() {
		return BottomInterval()
	}
	if other.Min <= 0 && other.Max >= 0 {
		return TopInterval()
	}
	corners := []int64{
		divSat(i.Min, other.Min),
		divSat(i.Min, other.Max),
		divSat(i.Max, other.Min),
		divSat(i.Max, other.Max),
	}
	min, max := corners[0], corners[0]
	for _, c := range corners[1:] {
		min = minI64(min, c)
		max = maxI64(max, c)
	}
	return Interval{Min: min, Max: max}
}

// Mod bounds the result by [0, |divisor|-1] for a non-negative dividend, or
// [-(|d|-1), |d|-1] otherwise.
func (i Interval) Mod(other Interval) Interval {
	if i.IsBottom() || other.IsBottom() {
		return BottomInterval()
	}
	if other.Min <= 0 && other.Max >= 0 {
		return TopInterval()
	}
	d := absI64(other.Min)
	if absI64(other.Max) > d {
		d = absI64(other.Max)
	}
	if i.Min >= 0 {
		return Interval{Min: 0, Max: d - 1}
	}
	return Interval{Min: -(d - 1), Max: d - 1}
}

func minI64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func absI64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// addSat/subSat/mulSat/divSat clamp to [negInf, posInf] instead of wrapping,
// since negInf/posInf are themselves used as finite-looking sentinels one
// step of headroom below the true int64 range.
func addSat(a, b int64) int64 {
	if a <= negInf || b <= negInf {
		return negInf
	}
	if a >= posInf || b >= posInf {
		return posInf
	}
	return clamp(a + b)
}

func subSat(a, b int64) int64 {
	if a <= negInf || b >= posInf {
		return negInf
	}
	if a >= posInf || b <= negInf {
		return posInf
	}
	return clamp(a - b)
}

func mulSat(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a <= negInf || a >= posInf || b <= negInf || b >= posInf {
		if (a < 0) != (b < 0) {
			return negInf
		}
		return posInf
	}
	return clamp(a * b)
}

func divSat(a, b int64) int64 {
	if b == 0 {
		if a >= 0 {
			return posInf
		}
		return negInf
	}
	if a <= negInf || a >= posInf {
		if (a < 0) != (b < 0) {
			return negInf
		}
		return posInf
	}
	return clamp(a / b)
}

func clamp(n int64) int64 {
	if n <= negInf {
		return negInf
	}
	if n >= posInf {
		return posInf
	}
	return n
}
