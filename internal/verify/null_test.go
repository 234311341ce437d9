package verify_test

import (
	"testing"

	"anteater/internal/cfgbuild"
	"anteater/internal/cfgbuild/testast"
	"anteater/internal/sourceast"
	"anteater/internal/ssa"
	"anteater/internal/verify"

	"github.com/stretchr/testify/require"
)

// guardedCall: guardedCall(a) { if (a != null) { a.run(); } }
func guardedCallDecl() *testast.Decl {
	return &testast.Decl{
		DKind:   sourceast.DeclFunction,
		DName:   "guardedCall",
		DParams: []sourceast.Param{{Name: "a", TypeName: "Object"}},
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.If{
				Cond_: &testast.Binary{Op_: sourceast.BinNeq, Left_: &testast.Ident{Name_: "a"}, Right_: &testast.NullLit{}},
				Then_: &testast.ExprStmt{Expr: &testast.MethodCall{Receiver_: &testast.Ident{Name_: "a"}, Method_: "run"}},
			},
		}},
	}
}

func TestNullVerifier_CallGuardedByNullCheck_IsSafe(t *testing.T) {
	fn, err := cfgbuild.Build(guardedCallDecl(), "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))

	nv := verify.NewNullVerifier()
	results, converged := nv.Check(fn)
	require.True(t, converged)
	require.Len(t, results, 1)

	r := results[0]
	require.Equal(t, verify.SiteCallReceiver, r.Kind)
	require.True(t, r.IsSafe)
	require.False(t, r.IsDefinitelyNull)
}

// unguardedCall: unguardedCall(a) { a.run(); }
func unguardedCallDecl() *testast.Decl {
	return &testast.Decl{
		DKind:   sourceast.DeclFunction,
		DName:   "unguardedCall",
		DParams: []sourceast.Param{{Name: "a", TypeName: "Object"}},
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.ExprStmt{Expr: &testast.MethodCall{Receiver_: &testast.Ident{Name_: "a"}, Method_: "run"}},
		}},
	}
}

func TestNullVerifier_UnguardedCallOnParameter_IsUnknown(t *testing.T) {
	fn, err := cfgbuild.Build(unguardedCallDecl(), "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))

	nv := verify.NewNullVerifier()
	results, converged := nv.Check(fn)
	require.True(t, converged)
	require.Len(t, results, 1)

	r := results[0]
	require.False(t, r.IsSafe)
	require.False(t, r.IsDefinitelyNull)
}

// readNullField: readNullField() { b = null; return b.x; }
func readNullFieldDecl() *testast.Decl {
	return &testast.Decl{
		DKind: sourceast.DeclFunction,
		DName: "readNullField",
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.ExprStmt{Expr: &testast.Assign{
				Op_: sourceast.AssignPlain, Target_: &testast.Ident{Name_: "b"}, Value_: &testast.NullLit{},
			}},
			&testast.Return{Value_: &testast.PropAccess{Receiver_: &testast.Ident{Name_: "b"}, Field_: "x"}},
		}},
	}
}

func TestNullVerifier_FieldLoadOnKnownNull_IsDefinitelyNull(t *testing.T) {
	fn, err := cfgbuild.Build(readNullFieldDecl(), "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))

	nv := verify.NewNullVerifier()
	results, converged := nv.Check(fn)
	require.True(t, converged)
	require.Len(t, results, 1)

	r := results[0]
	require.Equal(t, verify.SiteFieldLoadBase, r.Kind)
	require.True(t, r.IsDefinitelyNull)
	require.False(t, r.IsSafe)
}
