package facts_test

import (
	"testing"

	"anteater/internal/cfgbuild"
	"anteater/internal/cfgbuild/testast"
	"anteater/internal/facts"
	"anteater/internal/ir"
	"anteater/internal/sourceast"
	"anteater/internal/ssa"

	"github.com/stretchr/testify/require"
)

func buildFn(t *testing.T, decl *testast.Decl) *ir.Function {
	t.Helper()
	fn, err := cfgbuild.Build(decl, "")
	require.NoError(t, err)
	require.NoError(t, ssa.Build(fn))
	return fn
}

func hasFact(fs []facts.Fact, predicate string, args ...interface{}) bool {
	for _, f := range fs {
		if f.Predicate != predicate || len(f.Args) != len(args) {
			continue
		}
		match := true
		for i, a := range args {
			if a == nil {
				continue // wildcard
			}
			if f.Args[i] != a {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

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

func TestExtractFunction_EmitsFlowAndReachable(t *testing.T) {
	fn := buildFn(t, maxDecl())
	ex := facts.ExtractFunction(fn, facts.NewHeapAllocator())

	require.True(t, hasFact(ex.Facts, "Reachable", "max.b0"), "entry block is always id 0")
	var sawFlow bool
	for _, f := range ex.Facts {
		if f.Predicate == "Flow" {
			sawFlow = true
		}
	}
	require.True(t, sawFlow, "expected at least one Flow edge across max()'s branches")
}

// makeObj() { p = Point(1, 2); return p; }
func makeObjDecl() *testast.Decl {
	return &testast.Decl{
		DKind: sourceast.DeclFunction,
		DName: "makeObj",
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.ExprStmt{Expr: &testast.Assign{
				Op_:     sourceast.AssignPlain,
				Target_: &testast.Ident{Name_: "p"},
				Value_: &testast.NewObj{
					Type_: "Point",
					Args_: []sourceast.Expr{&testast.IntLit{Value: 1}, &testast.IntLit{Value: 2}},
				},
			}},
			&testast.Return{Value_: &testast.Ident{Name_: "p"}},
		}},
	}
}

func TestExtractFunction_AllocGetsMonotonicHeapID(t *testing.T) {
	fn1 := buildFn(t, makeObjDecl())
	fn2 := buildFn(t, makeObjDecl())
	alloc := facts.NewHeapAllocator()

	ex1 := facts.ExtractFunction(fn1, alloc)
	ex2 := facts.ExtractFunction(fn2, alloc)

	require.True(t, hasFact(ex1.Facts, "Alloc", nil, "Point#0"))
	require.True(t, hasFact(ex2.Facts, "Alloc", nil, "Point#1"), "heap ids must stay monotonic across functions sharing one allocator")
}

// access(o) { return o.value; }
func accessDecl() *testast.Decl {
	return &testast.Decl{
		DKind:   sourceast.DeclFunction,
		DName:   "access",
		DParams: []sourceast.Param{{Name: "o", TypeName: "Point"}},
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.Return{Value_: &testast.PropAccess{Receiver_: &testast.Ident{Name_: "o"}, Field_: "value"}},
		}},
	}
}

func TestExtractFunction_FieldAccessEmitsLoadField(t *testing.T) {
	fn := buildFn(t, accessDecl())
	ex := facts.ExtractFunction(fn, facts.NewHeapAllocator())

	var saw bool
	for _, f := range ex.Facts {
		if f.Predicate == "LoadField" && f.Args[1] == "value" {
			saw = true
		}
	}
	require.True(t, saw, "reading o.value must emit a LoadField fact for field \"value\"")
	require.Empty(t, ex.UnhandledTypes)
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

func TestExtractFunction_LoopHeaderPhiEmitsPhiAtAndAssign(t *testing.T) {
	fn := buildFn(t, countDecl())
	ex := facts.ExtractFunction(fn, facts.NewHeapAllocator())

	var phiAt, assignFromPhi int
	for _, f := range ex.Facts {
		if f.Predicate == "PhiAt" {
			phiAt++
		}
	}
	require.Positive(t, phiAt, "the induction variable i must produce at least one PhiAt fact")

	// Every phi operand must also surface as a flow-insensitive Assign per
	// spec.md §4.4 ("the flow-insensitive form of a phi is still Assign").
	for _, f := range ex.Facts {
		if f.Predicate == "Assign" {
			assignFromPhi++
		}
	}
	require.Positive(t, assignFromPhi)
}

func TestExtractAll_SharesOneAllocatorAcrossFunctions(t *testing.T) {
	fn1 := buildFn(t, makeObjDecl())
	fn2 := buildFn(t, makeObjDecl())
	ex := facts.ExtractAll([]*ir.Function{fn1, fn2}, facts.NewHeapAllocator())

	require.True(t, hasFact(ex.Facts, "Alloc", nil, "Point#0"))
	require.True(t, hasFact(ex.Facts, "Alloc", nil, "Point#1"))
}
