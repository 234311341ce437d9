package metrics_test

import (
	"testing"

	"anteater/internal/cfgbuild/testast"
	"anteater/internal/config"
	"anteater/internal/metrics"
	"anteater/internal/sourceast"

	"github.com/stretchr/testify/require"
)

// fakeUnit resolves an offset to line offset/10 + 1 (column 0), so distinct
// AST nodes built in these fixtures (offsets spaced 10 apart) land on
// distinct lines.
type fakeUnit struct{}

func (fakeUnit) Declarations() []sourceast.Declaration { return nil }
func (fakeUnit) ResolveOffset(offset int) (int, int)   { return offset/10 + 1, 0 }
func (fakeUnit) Path() string                          { return "fake.dart" }

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
				Cond_:   &testast.Binary{Op_: sourceast.BinGt, Left_: &testast.Ident{Name_: "a", Offset_: 10}, Right_: &testast.Ident{Name_: "b", Offset_: 10}, Offset_: 10},
				Then_:   &testast.Return{Value_: &testast.Ident{Name_: "a", Offset_: 20}, Offset_: 20},
				Else_:   &testast.Return{Value_: &testast.Ident{Name_: "b", Offset_: 30}, Offset_: 30},
				Offset_: 10,
			},
		}, Offset_: 0},
		DOffset: 0,
	}
}

func TestCompute_Max_CyclomaticAndLOC(t *testing.T) {
	fm := metrics.Compute(maxDecl(), fakeUnit{})

	require.Equal(t, "max", fm.Name)
	require.Equal(t, 2, fm.Cyclomatic, "one if adds one decision point to the base of 1")
	require.Equal(t, 2, fm.Cognitive, "the unnested if and its else each contribute 1+0")
	require.Greater(t, fm.LinesOfCode, 0)
}

// count(n) { i = 0; while (i < n) { i = i + 1; } return i; }
func countDecl() *testast.Decl {
	return &testast.Decl{
		DKind:   sourceast.DeclFunction,
		DName:   "count",
		DParams: []sourceast.Param{{Name: "n", TypeName: "int"}},
		DBody: &testast.Block{Stmts: []sourceast.Stmt{
			&testast.ExprStmt{Expr: &testast.Assign{
				Op_: sourceast.AssignPlain, Target_: &testast.Ident{Name_: "i", Offset_: 0}, Value_: &testast.IntLit{Value: 0, Offset_: 0}, Offset_: 0,
			}, Offset_: 0},
			&testast.While{
				Cond_: &testast.Binary{Op_: sourceast.BinLt, Left_: &testast.Ident{Name_: "i", Offset_: 10}, Right_: &testast.Ident{Name_: "n", Offset_: 10}, Offset_: 10},
				Body_: &testast.ExprStmt{Expr: &testast.Assign{
					Op_:     sourceast.AssignAdd,
					Target_: &testast.Ident{Name_: "i", Offset_: 20},
					Value_:  &testast.IntLit{Value: 1, Offset_: 20},
					Offset_: 20,
				}, Offset_: 20},
				Offset_: 10,
			},
			&testast.Return{Value_: &testast.Ident{Name_: "i", Offset_: 30}, Offset_: 30},
		}, Offset_: 0},
	}
}

func TestCompute_Count_WhileLoopAddsOneDecisionPoint(t *testing.T) {
	fm := metrics.Compute(countDecl(), fakeUnit{})
	require.Equal(t, 2, fm.Cyclomatic)
	require.Equal(t, 1, fm.Cognitive)
	require.Greater(t, fm.Halstead.DistinctOperators, 0)
	require.Greater(t, fm.Halstead.DistinctOperands, 0)
}

func TestViolations_FlagsExceededThresholds(t *testing.T) {
	fm := metrics.FunctionMetrics{
		Name:                 "bloated",
		Cyclomatic:           25,
		Cognitive:            20,
		MaintainabilityIndex: 40,
		LinesOfCode:          200,
	}
	thresholds := config.DefaultMetricsThresholds()
	vs := metrics.Violations(fm, thresholds)

	codes := map[string]bool{}
	for _, v := range vs {
		codes[v.Code] = true
	}
	require.True(t, codes["high_cyclomatic_complexity"])
	require.True(t, codes["high_cognitive_complexity"])
	require.True(t, codes["low_maintainability_index"])
	require.True(t, codes["function_too_long"])
}

func TestAggregate_ComputesLOCWeightedHealthScore(t *testing.T) {
	fns := []metrics.FunctionMetrics{
		{Name: "a", MaintainabilityIndex: 100, LinesOfCode: 10},
		{Name: "b", MaintainabilityIndex: 50, LinesOfCode: 30},
	}
	r := metrics.Aggregate(fns, config.DefaultMetricsThresholds())

	// weighted mean: (100*10 + 50*30) / 40 = 62.5
	require.InDelta(t, 62.5, r.HealthScore, 0.001)
	require.Equal(t, 1, r.Histogram[metrics.BandGreen])
	require.Equal(t, 1, r.Histogram[metrics.BandYellow])
}
