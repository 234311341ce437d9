package ssa_test

import (
	"testing"

	"anteater/internal/cfgbuild"
	"anteater/internal/cfgbuild/testast"
	"anteater/internal/ir"
	"anteater/internal/sourceast"
	"anteater/internal/ssa"

	"github.com/stretchr/testify/require"
)

// max(a, b) { if (a > b) return a; else return b; }
func maxDecl() *testast.Decl {
	return &testast.Decl{
		DKind: sourceast.DeclFunction,
		DName: "max",
		DParams: []sourceast.Param{
			{Name: "a", TypeName: "int"},
			{Name: "b", TypeName: "int"},
		},
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.If{
				Cond_: &testast.Binary{Op_: sourceast.BinGt, Left_: &testast.Ident{Name_: "a"}, Right_: &testast.Ident{Name_: "b"}},
				Then_: &testast.Return{Value_: &testast.Ident{Name_: "a"}},
				Else_: &testast.Return{Value_: &testast.Ident{Name_: "b"}},
			},
		}},
	}
}

func TestBuild_StraightLineBranches_NoPhisNeeded(t *testing.T) {
	fn, err := cfgbuild.Build(maxDecl(), "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))

	for _, blk := range fn.CFG.Blocks() {
		require.Empty(t, blk.Phis(), "max() never merges a or b, so no block should carry a phi")
	}
}

// count(n) { i = 0; while (i < n) { i = i + 1; } return i; }
func countDecl() *testast.Decl {
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

func TestBuild_WhileLoop_HeaderGetsPhiForInductionVariable(t *testing.T) {
	fn, err := cfgbuild.Build(countDecl(), "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))

	var found bool
	for _, blk := range fn.CFG.Blocks() {
		for _, phi := range blk.Phis() {
			if phi.Target.Name == "i" {
				found = true
				require.Len(t, phi.Operands, 2, "i's loop-header phi must have one operand per predecessor")
			}
		}
	}
	require.True(t, found, "expected a phi for the induction variable i at the loop header")
}

func TestBuild_EveryDefinitionIsUnique(t *testing.T) {
	fn, err := cfgbuild.Build(countDecl(), "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))

	defs := map[ir.Variable]int{}
	for _, blk := range fn.CFG.Blocks() {
		for _, inst := range blk.Instructions {
			if v, ok := ir.DefinedVariable(inst); ok {
				defs[v]++
			}
		}
	}
	for v, n := range defs {
		require.Equal(t, 1, n, "variable %s must be defined exactly once", v.CanonicalID())
	}
}
