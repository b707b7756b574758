package disttable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"tnrch/pkg/graph"
)

// TestBuildTransitPairs checks the core distance-table invariants: every
// transit pair is present, symmetric, and self-entries are zero. An
// assertion chain like this reads more clearly as require.* than as
// repeated if/t.Errorf blocks.
func TestBuildTransitPairs(t *testing.T) {
	g := graph.New[int]()
	require.NoError(t, g.AddEdge(0, 1, 1))
	require.NoError(t, g.AddEdge(1, 2, 1))
	require.NoError(t, g.AddEdge(2, 3, 1))
	require.NoError(t, g.AddEdge(3, 4, 1))

	table, err := Build(g, []int{1, 3})
	require.NoError(t, err)

	d, ok := table.Get(1, 3)
	require.True(t, ok)
	require.Equal(t, 2.0, d)

	d, ok = table.Get(3, 1)
	require.True(t, ok, "table must be symmetric")
	require.Equal(t, 2.0, d)

	d, ok = table.Get(1, 1)
	require.True(t, ok, "a transit node must have a self-entry")
	require.Equal(t, 0.0, d)
}

func TestBuildUnreachablePairAbsent(t *testing.T) {
	g := graph.New[int]()
	require.NoError(t, g.AddEdge(0, 1, 1)) // component 1
	require.NoError(t, g.AddEdge(2, 3, 1)) // component 2

	table, err := Build(g, []int{1, 3})
	require.NoError(t, err)

	_, ok := table.Get(1, 3)
	require.False(t, ok, "unreachable transit pair should be absent from the table")
	require.True(t, math.IsInf(table.GetOrInf(1, 3), 1), "GetOrInf must fall back to +Inf")
}

func TestRawFromMapRoundTrip(t *testing.T) {
	g := graph.New[int]()
	require.NoError(t, g.AddEdge(0, 1, 1))
	require.NoError(t, g.AddEdge(1, 2, 1))

	table, err := Build(g, []int{0, 2})
	require.NoError(t, err)

	rebuilt := FromMap(table.Raw())
	d, ok := rebuilt.Get(0, 2)
	require.True(t, ok)
	require.Equal(t, 2.0, d)
}
