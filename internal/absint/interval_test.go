package absint_test

import (
	"testing"

	"anteater/internal/absint"

	"github.com/stretchr/testify/assert"
)

func TestInterval_JoinUnionsRange(t *testing.T) {
	a := absint.ExactInterval(1)
	b := absint.ExactInterval(5)
	joined := a.Join(b).(absint.Interval)
	assert.Equal(t, absint.Interval{Min: 1, Max: 5}, joined)
}

func TestInterval_BottomIsJoinIdentity(t *testing.T) {
	bot := absint.BottomInterval()
	v := absint.ExactInterval(3)
	assert.Equal(t, v, bot.Join(v).(absint.Interval))
}

func TestInterval_Add(t *testing.T) {
	a := absint.Interval{Min: 1, Max: 3}
	b := absint.Interval{Min: 10, Max: 20}
	assert.Equal(t, absint.Interval{Min: 11, Max: 23}, a.Add(b))
}

func TestInterval_SubSwapsSecondOperandEndpoints(t *testing.T) {
	a := absint.Interval{Min: 5, Max: 10}
	b := absint.Interval{Min: 1, Max: 2}
	assert.Equal(t, absint.Interval{Min: 3, Max: 9}, a.Sub(b))
}

func TestInterval_MulCornerCases(t *testing.T) {
	a := absint.Interval{Min: -2, Max: 3}
	b := absint.Interval{Min: -1, Max: 4}
	got := a.Mul(b)
	// corners: -2*-1=2, -2*4=-8, 3*-1=-3, 3*4=12 -> [-8, 12]
	assert.Equal(t, absint.Interval{Min: -8, Max: 12}, got)
}

func TestInterval_DivByIntervalContainingZeroIsTop(t *testing.T) {
	a := absint.Interval{Min: 1, Max: 10}
	b := absint.Interval{Min: -1, Max: 1}
	assert.True(t, a.Div(b).IsTop())
}

func TestInterval_ModNonNegativeDividend(t *testing.T) {
	a := absint.Interval{Min: 0, Max: 100}
	d := absint.Interval{Min: 7, Max: 7}
	assert.Equal(t, absint.Interval{Min: 0, Max: 6}, a.Mod(d))
}

func TestInterval_WideningJumpsToInfinityOnGrowth(t *testing.T) {
	prev := absint.Interval{Min: 0, Max: 5}
	next := absint.Interval{Min: 0, Max: 10}
	widened := prev.Widen(next).(absint.Interval)
	assert.True(t, widened.Max >= (1<<61), "growing upper bound must widen to +∞")
	assert.Equal(t, int64(0), widened.Min, "stable lower bound is not widened")
}

func TestInterval_NarrowingAdoptsFiniteBound(t *testing.T) {
	top := absint.TopInterval()
	finite := absint.Interval{Min: 0, Max: 10}
	narrowed := top.Narrow(finite).(absint.Interval)
	assert.Equal(t, absint.Interval{Min: 0, Max: 10}, narrowed)
}

func TestInterval_IsSubsetOf(t *testing.T) {
	inner := absint.Interval{Min: 2, Max: 4}
	outer := absint.Interval{Min: 0, Max: 10}
	assert.True(t, inner.IsSubsetOf(outer))
	assert.False(t, outer.IsSubsetOf(inner))
}
