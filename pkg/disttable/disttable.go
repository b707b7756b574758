// Package disttable implements component D of the TNR/CH pipeline: the
// all-pairs transit distance table, built with gonum's weighted-graph
// Dijkstra rather than a hand-rolled search, since every pair needs a
// full single-source run and gonum already solves that efficiently.
package disttable

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"tnrch/pkg/graph"
)

// Table is the symmetric distance map over transit-node pairs — spec.md
// §3's DistanceTable D. Absent pairs mean "unreachable"; callers must
// treat a missing lookup as +∞, never as an error.
type Table[K comparable] struct {
	dist map[K]map[K]float64
}

// Get returns D[{a,b}] and whether the pair is present. {t,t} pairs are
// always present (recorded as 0 during Build).
func (t *Table[K]) Get(a, b K) (float64, bool) {
	if t == nil {
		return 0, false
	}
	if row, ok := t.dist[a]; ok {
		if d, ok := row[b]; ok {
			return d, true
		}
	}
	return 0, false
}

// GetOrInf is Get with the missing-pair-as-+Inf convention spec.md §4.D
// and §4.F require at every call site.
func (t *Table[K]) GetOrInf(a, b K) float64 {
	if d, ok := t.Get(a, b); ok {
		return d
	}
	return math.Inf(1)
}

// Raw exposes the underlying pair map for serialization (pkg/tnrio).
// Callers must treat the result as read-only.
func (t *Table[K]) Raw() map[K]map[K]float64 {
	return t.dist
}

// FromMap rebuilds a Table from a map previously obtained via Raw — used
// by pkg/tnrio to reconstruct a Table after a gob round-trip, since Table
// itself has no exported fields for gob to see.
func FromMap[K comparable](raw map[K]map[K]float64) *Table[K] {
	return &Table[K]{dist: raw}
}

func (t *Table[K]) set(a, b K, d float64) {
	if t.dist[a] == nil {
		t.dist[a] = make(map[K]float64)
	}
	t.dist[a][b] = d
}

// Build computes D for every pair of transit nodes reachable from one
// another in a (the augmented graph, original edges plus shortcuts),
// per spec.md §4.D: single-source Dijkstra from each transit node,
// weight = edge length, recording only transit-to-transit distances.
// D[{t,t}] = 0 is always recorded — the fix spec.md §9 mandates over an
// earlier version that omitted self-entries.
func Build[K comparable](a *graph.Graph[K], transit []K) (*Table[K], error) {
	wg, idOf := toWeighted(a)

	out := &Table[K]{dist: make(map[K]map[K]float64, len(transit))}
	for _, t := range transit {
		out.set(t, t, 0)
	}

	for _, t1 := range transit {
		n1, ok := idOf[t1]
		if !ok {
			continue
		}
		shortest := path.DijkstraFrom(simple.Node(n1), wg)
		for _, t2 := range transit {
			if t1 == t2 {
				continue
			}
			n2, ok := idOf[t2]
			if !ok {
				continue
			}
			d := shortest.WeightTo(n2)
			if math.IsInf(d, 1) {
				continue
			}
			out.set(t1, t2, d)
		}
	}
	return out, nil
}

// toWeighted converts a into a gonum WeightedUndirectedGraph, mapping
// each NodeId to the dense int64 id gonum's node interface requires.
// Grounded on the node-interning scheme pkg/graph already performs
// internally (Graph.Seq), reused here instead of building a second
// parallel index.
func toWeighted[K comparable](a *graph.Graph[K]) (*simple.WeightedUndirectedGraph, map[K]int64) {
	wg := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	idOf := make(map[K]int64, a.NumNodes())
	for _, n := range a.Nodes() {
		seq, ok := a.Seq(n)
		if !ok {
			continue
		}
		id := int64(seq)
		idOf[n] = id
		wg.AddNode(simple.Node(id))
	}
	for _, e := range a.Edges() {
		ua, okA := idOf[e.A]
		ub, okB := idOf[e.B]
		if !okA || !okB {
			continue
		}
		// Parallel edges collapse to their minimum length, as in pkg/graph.
		if w, ok := wg.Weight(ua, ub); ok && w <= e.Length {
			continue
		}
		wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(ua), simple.Node(ub), e.Length))
	}
	return wg, idOf
}
