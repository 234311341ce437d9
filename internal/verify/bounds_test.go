package verify_test

import (
	"testing"

	"anteater/internal/absint"
	"anteater/internal/cfgbuild"
	"anteater/internal/cfgbuild/testast"
	"anteater/internal/sourceast"
	"anteater/internal/ssa"
	"anteater/internal/verify"

	"github.com/stretchr/testify/require"
)

// readAt5Decl: readAt(arr) { return arr[5]; }
func readAt5Decl() *testast.Decl {
	return &testast.Decl{
		DKind:   sourceast.DeclFunction,
		DName:   "readAt",
		DParams: []sourceast.Param{{Name: "arr", TypeName: "int[]"}},
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.Return{Value_: &testast.Index{
				Receiver_: &testast.Ident{Name_: "arr"},
				Index_:    &testast.IntLit{Value: 5},
			}},
		}},
	}
}

func TestBoundsChecker_ConstantIndexWithinKnownLength_IsSafe(t *testing.T) {
	fn, err := cfgbuild.Build(readAt5Decl(), "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))

	result := absint.NewInterpreter(absint.IntervalDomain{}).Run(fn)
	require.False(t, result.Inconclusive)

	bc := verify.NewBoundsChecker(verify.ArrayLengths{"arr_0": 10})
	results := bc.Check(fn, result)
	require.Len(t, results, 1)

	r := results[0]
	require.Equal(t, "LoadIndex", r.AccessKind)
	require.True(t, r.IsSafe)
	require.False(t, r.IsDefinitelyUnsafe)
	require.NotNil(t, r.ArrayLength)
	require.Equal(t, int64(10), *r.ArrayLength)
}

// readAtNeg1Decl: readAtNeg1(arr) { return arr[-1]; }
func readAtNeg1Decl() *testast.Decl {
	return &testast.Decl{
		DKind:   sourceast.DeclFunction,
		DName:   "readAtNeg1",
		DParams: []sourceast.Param{{Name: "arr", TypeName: "int[]"}},
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.Return{Value_: &testast.Index{
				Receiver_: &testast.Ident{Name_: "arr"},
				Index_:    &testast.Unary{Op_: sourceast.UnNeg, Operand_: &testast.IntLit{Value: 1}},
			}},
		}},
	}
}

func TestBoundsChecker_NegativeIndex_IsDefinitelyUnsafe(t *testing.T) {
	fn, err := cfgbuild.Build(readAtNeg1Decl(), "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))

	result := absint.NewInterpreter(absint.IntervalDomain{}).Run(fn)
	require.False(t, result.Inconclusive)

	bc := verify.NewBoundsChecker(nil)
	results := bc.Check(fn, result)
	require.Len(t, results, 1)
	require.True(t, results[0].IsDefinitelyUnsafe)
	require.False(t, results[0].IsSafe)
}

// readUnknownLenDecl: readUnknownLen(arr, i) { return arr[i]; }
func readUnknownLenDecl() *testast.Decl {
	return &testast.Decl{
		DKind:   sourceast.DeclFunction,
		DName:   "readUnknownLen",
		DParams: []sourceast.Param{{Name: "arr", TypeName: "int[]"}, {Name: "i", TypeName: "int"}},
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.Return{Value_: &testast.Index{
				Receiver_: &testast.Ident{Name_: "arr"},
				Index_:    &testast.Ident{Name_: "i"},
			}},
		}},
	}
}

func TestBoundsChecker_UnboundedIndexWithoutRegisteredLength_IsUnknown(t *testing.T) {
	fn, err := cfgbuild.Build(readUnknownLenDecl(), "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))

	result := absint.NewInterpreter(absint.IntervalDomain{}).Run(fn)
	require.False(t, result.Inconclusive)

	bc := verify.NewBoundsChecker(nil)
	results := bc.Check(fn, result)
	require.Len(t, results, 1)
	require.False(t, results[0].IsSafe)
	require.False(t, results[0].IsDefinitelyUnsafe)
	require.NotEmpty(t, results[0].Reason)
}
