// Package graph implements the undirected, possibly multi-edge weighted
// graph used throughout the TNR/CH pipeline. NodeIds are opaque and
// supplied by the caller; internally every node is interned to a dense
// int index so per-node state can live in slices instead of maps.
package graph

import (
	"errors"
	"sync"
)

// ErrNoSuchNode is returned when an operation references a node that is
// not present in the graph.
var ErrNoSuchNode = errors.New("graph: no such node")

// ErrNoSuchEdge is returned by Length when the two nodes are not adjacent.
var ErrNoSuchEdge = errors.New("graph: no such edge")

// ErrNegativeLength is returned when an edge with a non-positive length is
// added to the graph.
var ErrNegativeLength = errors.New("graph: edge length must be positive")

// Graph is an undirected weighted graph over a comparable NodeId type K.
// Multiple parallel edges between the same pair of nodes are allowed; the
// effective length between two adjacent nodes is the minimum over the
// parallel edges. A zero Graph is not usable; construct with New.
type Graph[K comparable] struct {
	mu sync.RWMutex

	index map[K]int // NodeId -> dense index, assigned in insertion order
	ids   []K       // dense index -> NodeId

	// adjacency[u][v] holds the lengths of every parallel edge between the
	// dense indices u and v. Undirected: adjacency[u][v] and adjacency[v][u]
	// are kept in sync.
	adjacency []map[int][]float64
}

// New returns an empty graph.
func New[K comparable]() *Graph[K] {
	return &Graph[K]{index: make(map[K]int)}
}

// intern returns the dense index for id, assigning a new one if this is
// the first time id has been seen. Must be called with mu held for write.
func (g *Graph[K]) intern(id K) int {
	if idx, ok := g.index[id]; ok {
		return idx
	}
	idx := len(g.ids)
	g.index[id] = idx
	g.ids = append(g.ids, id)
	g.adjacency = append(g.adjacency, nil)
	return idx
}

// AddNode ensures id is present in the graph, with no incident edges if
// it is new. Returns the node's insertion sequence number (0-based, in
// the order nodes were first seen) — this is the tie-break key spec.md
// §4.B requires implementations to document and stabilize.
func (g *Graph[K]) AddNode(id K) (seq int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.intern(id)
}

// AddEdge adds an undirected edge between a and b with the given length.
// Both endpoints are auto-added if absent. A zero or negative length
// returns ErrNegativeLength and adds nothing.
func (g *Graph[K]) AddEdge(a, b K, length float64) error {
	if length <= 0 {
		return ErrNegativeLength
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	ua := g.intern(a)
	ub := g.intern(b)
	if g.adjacency[ua] == nil {
		g.adjacency[ua] = make(map[int][]float64)
	}
	if g.adjacency[ub] == nil {
		g.adjacency[ub] = make(map[int][]float64)
	}
	g.adjacency[ua][ub] = append(g.adjacency[ua][ub], length)
	if ua != ub {
		g.adjacency[ub][ua] = append(g.adjacency[ub][ua], length)
	}
	return nil
}

// RemoveNode deletes id and every edge incident to it. O(deg(id)).
func (g *Graph[K]) RemoveNode(id K) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	u, ok := g.index[id]
	if !ok {
		return ErrNoSuchNode
	}
	for v := range g.adjacency[u] {
		if v != u {
			delete(g.adjacency[v], u)
		}
	}
	g.adjacency[u] = nil
	delete(g.index, id)
	return nil
}

// Seq returns the insertion-sequence number assigned to id the first time
// it was added to the graph (via AddNode or AddEdge). This is the
// deterministic tie-break key used throughout pkg/chorder and pkg/transit
// — see SPEC_FULL.md §3. ok is false if id has since been removed or was
// never added.
func (g *Graph[K]) Seq(id K) (seq int, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	idx, ok := g.index[id]
	return idx, ok
}

// HasNode reports whether id is present.
func (g *Graph[K]) HasNode(id K) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.index[id]
	return ok
}

// Nodes returns every node currently in the graph, in no particular order.
func (g *Graph[K]) Nodes() []K {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]K, 0, len(g.index))
	for id := range g.index {
		out = append(out, id)
	}
	return out
}

// NumNodes returns the current node count.
func (g *Graph[K]) NumNodes() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.index)
}

// Neighbors returns the distinct neighbors of id, excluding id itself.
func (g *Graph[K]) Neighbors(id K) ([]K, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	u, ok := g.index[id]
	if !ok {
		return nil, ErrNoSuchNode
	}
	out := make([]K, 0, len(g.adjacency[u]))
	for v := range g.adjacency[u] {
		if v != u {
			out = append(out, g.ids[v])
		}
	}
	return out, nil
}

// Length returns the effective length between adjacent nodes a and b —
// the minimum over any parallel edges. Returns ErrNoSuchEdge if they are
// not adjacent, ErrNoSuchNode if either is absent.
func (g *Graph[K]) Length(a, b K) (float64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ua, ok := g.index[a]
	if !ok {
		return 0, ErrNoSuchNode
	}
	ub, ok := g.index[b]
	if !ok {
		return 0, ErrNoSuchNode
	}
	lengths, ok := g.adjacency[ua][ub]
	if !ok || len(lengths) == 0 {
		return 0, ErrNoSuchEdge
	}
	return minOf(lengths), nil
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// Clone returns a deep copy: a fresh adjacency structure sharing no
// mutable state with the receiver. Grounded on
// katalvlaran-lvlath/graph.Graph.Clone, generalized to parallel-edge
// length slices instead of edge structs.
func (g *Graph[K]) Clone() *Graph[K] {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := &Graph[K]{
		index: make(map[K]int, len(g.index)),
		ids:   append([]K(nil), g.ids...),
	}
	for k, v := range g.index {
		out.index[k] = v
	}
	out.adjacency = make([]map[int][]float64, len(g.adjacency))
	for u, nbrs := range g.adjacency {
		if nbrs == nil {
			continue
		}
		cp := make(map[int][]float64, len(nbrs))
		for v, lengths := range nbrs {
			cp[v] = append([]float64(nil), lengths...)
		}
		out.adjacency[u] = cp
	}
	return out
}

// Compose unions other's edges into g, adding any nodes not already
// present. Used by the preprocess façade to build A = G ∪ shortcuts.
func (g *Graph[K]) Compose(other *Graph[K]) {
	other.mu.RLock()
	edges := other.edgesLocked()
	other.mu.RUnlock()

	for _, e := range edges {
		// AddEdge takes its own lock; ignore the error since edge lengths
		// collected from an existing graph are already validated positive.
		_ = g.AddEdge(e.a, e.b, e.length)
	}
}

type edge[K comparable] struct {
	a, b   K
	length float64
}

// edgesLocked returns every undirected edge exactly once. Caller must
// hold at least a read lock.
func (g *Graph[K]) edgesLocked() []edge[K] {
	var out []edge[K]
	for u, nbrs := range g.adjacency {
		for v, lengths := range nbrs {
			if v < u {
				continue // undirected: emit each pair once, when u <= v
			}
			for _, l := range lengths {
				out = append(out, edge[K]{a: g.ids[u], b: g.ids[v], length: l})
			}
		}
	}
	return out
}

// Edges returns every undirected edge exactly once.
func (g *Graph[K]) Edges() []struct {
	A, B   K
	Length float64
} {
	g.mu.RLock()
	defer g.mu.RUnlock()
	raw := g.edgesLocked()
	out := make([]struct {
		A, B   K
		Length float64
	}, len(raw))
	for i, e := range raw {
		out[i] = struct {
			A, B   K
			Length float64
		}{e.a, e.b, e.length}
	}
	return out
}
