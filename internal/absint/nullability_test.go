package absint_test

import (
	"testing"

	"anteater/internal/absint"

	"github.com/stretchr/testify/assert"
)

func TestNullability_JoinOfDifferentDefinitesIsMaybeNull(t *testing.T) {
	got := absint.DefinitelyNull.Join(absint.DefinitelyNonNull)
	assert.Equal(t, absint.MaybeNull, got)
}

func TestNullability_JoinWithBottomIsIdentity(t *testing.T) {
	got := absint.NullBottom.Join(absint.DefinitelyNonNull)
	assert.Equal(t, absint.DefinitelyNonNull, got)
}

func TestNullability_MeetOfDifferentDefinitesIsBottom(t *testing.T) {
	got := absint.DefinitelyNull.Meet(absint.DefinitelyNonNull)
	assert.Equal(t, absint.NullBottom, got)
}

func TestNullability_IsSubsetOf(t *testing.T) {
	assert.True(t, absint.DefinitelyNonNull.IsSubsetOf(absint.MaybeNull))
	assert.False(t, absint.MaybeNull.IsSubsetOf(absint.DefinitelyNonNull))
	assert.True(t, absint.NullBottom.IsSubsetOf(absint.DefinitelyNull))
}
