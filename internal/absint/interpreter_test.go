package absint_test

import (
	"testing"

	"anteater/internal/absint"
	"anteater/internal/cfgbuild"
	"anteater/internal/cfgbuild/testast"
	"anteater/internal/sourceast"
	"anteater/internal/ssa"

	"github.com/stretchr/testify/require"
)

// checkNullDecl: checkNull(a) { if (a != null) { return a; } else { return a; } }
func checkNullDecl() *testast.Decl {
	return &testast.Decl{
		DKind:   sourceast.DeclFunction,
		DName:   "checkNull",
		DParams: []sourceast.Param{{Name: "a", TypeName: "Object"}},
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.If{
				Cond_: &testast.Binary{Op_: sourceast.BinNeq, Left_: &testast.Ident{Name_: "a"}, Right_: &testast.NullLit{}},
				Then_: &testast.Return{Value_: &testast.Ident{Name_: "a"}},
				Else_: &testast.Return{Value_: &testast.Ident{Name_: "a"}},
			},
		}},
	}
}

func TestInterpreter_NullCheckBranch_RefinesEachSuccessor(t *testing.T) {
	fn, err := cfgbuild.Build(checkNullDecl(), "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))

	interp := absint.NewInterpreter(absint.NullabilityDomain{})
	result := interp.Run(fn)
	require.False(t, result.Inconclusive)

	entryBlock := fn.CFG.Entry
	branchBlock := fn.CFG.Block(entryBlock)
	require.Len(t, branchBlock.Succs, 2, "the if should leave exactly two successors off the entry block")
	thenID, elseID := branchBlock.Succs[0], branchBlock.Succs[1]

	thenEntry := result.Entry[thenID]
	elseEntry := result.Entry[elseID]

	require.Equal(t, absint.DefinitelyNonNull, thenEntry["a_0"], "a != null must refine a to definitelyNonNull on the true branch")
	require.Equal(t, absint.DefinitelyNull, elseEntry["a_0"], "a != null must refine a to definitelyNull on the false branch")
}

// loopDecl: count(n) { i = 0; while (i < n) { i = i + 1; } return i; }
func loopDecl() *testast.Decl {
	return &testast.Decl{
		DKind:   sourceast.DeclFunction,
		DName:   "count",
		DParams: []sourceast.Param{{Name: "n", TypeName: "int"}},
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.ExprStmt{Expr: &testast.Assign{
				Op_: sourceast.AssignPlain, Target_: &testast.Ident{Name_: "i"}, Value_: &testast.IntLit{Value: 0},
			}},
			&testast.While{
				Cond_: &testast.Binary{Op_: sourceast.BinLt, Left_: &testast.Ident{Name_: "i"}, Right_: &testast.Ident{Name_: "n"}},
				Body_: &testast.ExprStmt{Expr: &testast.Assign{
					Op_:     sourceast.AssignAdd,
					Target_: &testast.Ident{Name_: "i"},
					Value_:  &testast.IntLit{Value: 1},
				}},
			},
			&testast.Return{Value_: &testast.Ident{Name_: "i"}},
		}},
	}
}

func TestInterpreter_LoopInductionVariable_WidensToUnboundedAboveAndTerminates(t *testing.T) {
	fn, err := cfgbuild.Build(loopDecl(), "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))

	interp := absint.NewInterpreter(absint.IntervalDomain{})
	result := interp.Run(fn)
	require.False(t, result.Inconclusive, "a 3-block loop must stabilize well within maxIterations")

	var sawUnbounded bool
	for _, st := range result.Entry {
		for varID, v := range st {
			if varID[0] == 'i' {
				if iv, ok := v.(absint.Interval); ok && iv.Min == 0 && iv.Max >= absint.TopInterval().Max {
					sawUnbounded = true
				}
			}
		}
	}
	require.True(t, sawUnbounded, "the unbounded loop induction variable must widen to [0, +inf] at the loop header")
}
