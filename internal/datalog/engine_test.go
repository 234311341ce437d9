package datalog_test

import (
	"testing"

	"anteater/internal/datalog"
	"anteater/internal/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func v(name string) datalog.Term { return datalog.Var{Name: name} }
func c(val interface{}) datalog.Term { return datalog.Const{Value: val} }

func hasFact(facts []datalog.Fact, args ...interface{}) bool {
	for _, f := range facts {
		if len(f.Args) != len(args) {
			continue
		}
		match := true
		for i, a := range args {
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

// Points-to rule set from spec.md §4.5, grounded in the required-rule-sets
// list the Datalog engine's clients (not the engine itself) supply.
func pointsToRules() []datalog.Rule {
	return []datalog.Rule{
		{
			Head: datalog.Atom{Predicate: "VarPointsTo", Args: []datalog.Term{v("V"), v("H")}},
			Body: []datalog.Atom{{Predicate: "Alloc", Args: []datalog.Term{v("V"), v("H")}}},
		},
		{
			Head: datalog.Atom{Predicate: "VarPointsTo", Args: []datalog.Term{v("V"), v("H")}},
			Body: []datalog.Atom{
				{Predicate: "Assign", Args: []datalog.Term{v("V"), v("W")}},
				{Predicate: "VarPointsTo", Args: []datalog.Term{v("W"), v("H")}},
			},
		},
		{
			Head: datalog.Atom{Predicate: "FieldPointsTo", Args: []datalog.Term{v("H"), v("F"), v("H2")}},
			Body: []datalog.Atom{
				{Predicate: "StoreField", Args: []datalog.Term{v("B"), v("F"), v("S")}},
				{Predicate: "VarPointsTo", Args: []datalog.Term{v("B"), v("H")}},
				{Predicate: "VarPointsTo", Args: []datalog.Term{v("S"), v("H2")}},
			},
		},
		{
			Head: datalog.Atom{Predicate: "VarPointsTo", Args: []datalog.Term{v("V"), v("H2")}},
			Body: []datalog.Atom{
				{Predicate: "LoadField", Args: []datalog.Term{v("B"), v("F"), v("V")}},
				{Predicate: "VarPointsTo", Args: []datalog.Term{v("B"), v("H")}},
				{Predicate: "FieldPointsTo", Args: []datalog.Term{v("H"), v("F"), v("H2")}},
			},
		},
	}
}

func TestEngine_PointsTo_DirectAllocAndCopy(t *testing.T) {
	e := datalog.NewEngine()
	e.AddFacts([]datalog.Fact{
		{Predicate: "Alloc", Args: []interface{}{"x_0", "Point#0"}},
		{Predicate: "Assign", Args: []interface{}{"y_0", "x_0"}},
	})
	require.NoError(t, e.AddRules(pointsToRules()))
	require.NoError(t, e.Run())

	pts := e.Query("VarPointsTo")
	assert.True(t, hasFact(pts, "x_0", "Point#0"))
	assert.True(t, hasFact(pts, "y_0", "Point#0"), "y = x must propagate x's points-to set")
}

func TestEngine_PointsTo_FieldStoreThenLoad(t *testing.T) {
	e := datalog.NewEngine()
	e.AddFacts([]datalog.Fact{
		{Predicate: "Alloc", Args: []interface{}{"a_0", "A#0"}},
		{Predicate: "Alloc", Args: []interface{}{"b_0", "B#0"}},
		{Predicate: "StoreField", Args: []interface{}{"a_0", "next", "b_0"}},
		{Predicate: "LoadField", Args: []interface{}{"a_0", "next", "c_0"}},
	})
	require.NoError(t, e.AddRules(pointsToRules()))
	require.NoError(t, e.Run())

	assert.True(t, hasFact(e.Query("FieldPointsTo"), "A#0", "next", "B#0"))
	assert.True(t, hasFact(e.Query("VarPointsTo"), "c_0", "B#0"), "c = a.next after a.next = b must point to B#0")
}

func TestEngine_Reachability_TransitiveFlow(t *testing.T) {
	e := datalog.NewEngine()
	e.AddFacts([]datalog.Fact{
		{Predicate: "Reachable", Args: []interface{}{"b0"}},
		{Predicate: "Flow", Args: []interface{}{"b0", "b1"}},
		{Predicate: "Flow", Args: []interface{}{"b1", "b2"}},
	})
	require.NoError(t, e.AddRules([]datalog.Rule{
		{
			Head: datalog.Atom{Predicate: "Reachable", Args: []datalog.Term{v("S")}},
			Body: []datalog.Atom{
				{Predicate: "Reachable", Args: []datalog.Term{v("P")}},
				{Predicate: "Flow", Args: []datalog.Term{v("P"), v("S")}},
			},
		},
	}))
	require.NoError(t, e.Run())

	r := e.Query("Reachable")
	assert.True(t, hasFact(r, "b0"))
	assert.True(t, hasFact(r, "b1"))
	assert.True(t, hasFact(r, "b2"))
}

func TestEngine_Taint_SanitizerCutsPropagation(t *testing.T) {
	e := datalog.NewEngine()
	e.AddFacts([]datalog.Fact{
		{Predicate: "TaintSource", Args: []interface{}{"in_0", "http"}},
		{Predicate: "Assign", Args: []interface{}{"a_0", "in_0"}},
		{Predicate: "Assign", Args: []interface{}{"b_0", "a_0"}},
		{Predicate: "Sanitized", Args: []interface{}{"a_0", "escape"}},
		{Predicate: "TaintSink", Args: []interface{}{"b_0", "sql"}},
	})
	require.NoError(t, e.AddRules([]datalog.Rule{
		{
			Head: datalog.Atom{Predicate: "Tainted", Args: []datalog.Term{v("V")}},
			Body: []datalog.Atom{{Predicate: "TaintSource", Args: []datalog.Term{v("V"), v("_K")}}},
		},
		{
			Head:        datalog.Atom{Predicate: "Tainted", Args: []datalog.Term{v("V")}},
			Body:        []datalog.Atom{{Predicate: "Assign", Args: []datalog.Term{v("V"), v("W")}}, {Predicate: "Tainted", Args: []datalog.Term{v("W")}}},
			NegatedBody: []datalog.Atom{{Predicate: "Sanitized", Args: []datalog.Term{v("V"), v("_K2")}}},
		},
		{
			Head: datalog.Atom{Predicate: "TaintViolation", Args: []datalog.Term{v("V"), v("Sink")}},
			Body: []datalog.Atom{{Predicate: "TaintSink", Args: []datalog.Term{v("V"), v("Sink")}}, {Predicate: "Tainted", Args: []datalog.Term{v("V")}}},
		},
	}))
	require.NoError(t, e.Run())

	tainted := e.Query("Tainted")
	assert.True(t, hasFact(tainted, "in_0"))
	assert.False(t, hasFact(tainted, "a_0"), "a_0 is sanitized, so its own assignment shouldn't mark it tainted")
	assert.False(t, hasFact(tainted, "b_0"), "b_0 only derives taint through the sanitized a_0")
	assert.Empty(t, e.Query("TaintViolation"), "no violation should fire once the flow is sanitized")
}

func TestAddRules_RejectsUnsafeRule(t *testing.T) {
	e := datalog.NewEngine()
	err := e.AddRules([]datalog.Rule{
		{
			Head: datalog.Atom{Predicate: "Foo", Args: []datalog.Term{v("X"), v("Y")}},
			Body: []datalog.Atom{{Predicate: "Bar", Args: []datalog.Term{v("X")}}},
		},
	})
	require.Error(t, err)
	var unsafe *errs.UnsafeRuleError
	require.ErrorAs(t, err, &unsafe)
	assert.Equal(t, "Y", unsafe.Variable)
}

func TestRun_RejectsNegationCycle(t *testing.T) {
	e := datalog.NewEngine()
	require.NoError(t, e.AddRules([]datalog.Rule{
		{
			Head:        datalog.Atom{Predicate: "P", Args: []datalog.Term{v("X")}},
			Body:        []datalog.Atom{{Predicate: "Q", Args: []datalog.Term{v("X")}}},
			NegatedBody: []datalog.Atom{{Predicate: "P", Args: []datalog.Term{v("X")}}},
		},
	}))
	err := e.Run()
	require.Error(t, err)
	var strat *errs.StratificationError
	require.ErrorAs(t, err, &strat)
}
