package factwarehouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"anteater/internal/facts"
	"anteater/internal/factwarehouse"
)

func flowFact(from, to string) facts.Fact {
	return facts.Fact{Predicate: "Flow", Args: []interface{}{from, to}}
}

func TestNew_LoadsCoreSchema(t *testing.T) {
	w, err := factwarehouse.New(factwarehouse.DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, w)

	stats := w.Stats()
	require.Equal(t, 0, stats.TotalFacts)
}

func TestIngest_RoundTrip(t *testing.T) {
	w, err := factwarehouse.New(factwarehouse.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, w.Ingest([]facts.Fact{
		flowFact("f.b0", "f.b1"),
		flowFact("f.b1", "f.b2"),
		{Predicate: "Reachable", Args: []interface{}{"f.b0"}},
	}))

	got, err := w.GetFacts("Flow")
	require.NoError(t, err)
	require.Len(t, got, 2)

	stats := w.Stats()
	require.Equal(t, 3, stats.TotalFacts)
	require.Equal(t, 2, stats.PredicateCounts["Flow"])
	require.Equal(t, 1, stats.PredicateCounts["Reachable"])
}

func TestIngestFile_ReplacesStaleFacts(t *testing.T) {
	w, err := factwarehouse.New(factwarehouse.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, w.IngestFile("pkg/a.go", []facts.Fact{
		flowFact("f.b0", "f.b1"),
		flowFact("f.b1", "f.b2"),
	}))
	got, err := w.GetFacts("Flow")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Re-analysis of the same file after an edit: only one Flow fact survives.
	require.NoError(t, w.IngestFile("pkg/a.go", []facts.Fact{
		flowFact("f.b0", "f.b1"),
	}))
	got, err = w.GetFacts("Flow")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestQuery_BindsFreeVariables(t *testing.T) {
	w, err := factwarehouse.New(factwarehouse.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, w.Ingest([]facts.Fact{
		flowFact("f.b0", "f.b1"),
		flowFact("f.b1", "f.b2"),
	}))

	result, err := w.Query(context.Background(), "Flow(X, Y)")
	require.NoError(t, err)
	require.Len(t, result.Bindings, 2)

	seen := map[string]string{}
	for _, row := range result.Bindings {
		from, _ := row["X"].(string)
		to, _ := row["Y"].(string)
		seen[from] = to
	}
	require.Equal(t, "f.b1", seen["f.b0"])
	require.Equal(t, "f.b2", seen["f.b1"])
}

func TestIngest_UndeclaredPredicate_Errors(t *testing.T) {
	w, err := factwarehouse.New(factwarehouse.DefaultConfig())
	require.NoError(t, err)

	err = w.Ingest([]facts.Fact{{Predicate: "NoSuchPredicate", Args: []interface{}{"x"}}})
	require.Error(t, err)
}

func TestIngest_ArityMismatch_Errors(t *testing.T) {
	w, err := factwarehouse.New(factwarehouse.DefaultConfig())
	require.NoError(t, err)

	err = w.Ingest([]facts.Fact{{Predicate: "Flow", Args: []interface{}{"only-one"}}})
	require.Error(t, err)
}

func TestQuery_DuplicateOfPredicateIsPreloaded(t *testing.T) {
	w, err := factwarehouse.New(factwarehouse.DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, w.Ingest([]facts.Fact{
		{Predicate: "DuplicateOf", Args: []interface{}{"pkg/a.go", "pkg/b.go"}},
	}))

	result, err := w.Query(context.Background(), "DuplicateOf(X, Y)")
	require.NoError(t, err)
	require.Len(t, result.Bindings, 1)
	require.Equal(t, "pkg/a.go", result.Bindings[0]["X"])
	require.Equal(t, "pkg/b.go", result.Bindings[0]["Y"])
}
