// Package chorder implements component B of the TNR/CH pipeline:
// node-ordering and shortcutting via iterative contraction driven by a
// pluggable priority heuristic (edge-difference by default).
package chorder

import (
	"fmt"
	"math"

	"tnrch/pkg/graph"
	"tnrch/pkg/pqueue"
)

// Heuristic assigns a contraction priority to a node in g — lower
// contracts sooner. The order key from spec.md §6's configuration table.
type Heuristic[K comparable] func(g *graph.Graph[K], n K) float64

// WitnessLimits bounds the optional witness-search truncation Design
// Notes §9 permits as an alternative to exact per-pair bidirectional
// Dijkstra during contraction. Grounded on
// azybler-map_router/pkg/ch/witness.go's maxSettled/maxHops constants.
// Nil (the Options.WitnessSearch zero value) means "off": every pair
// check uses exact bidirectional Dijkstra, matching spec.md's default.
type WitnessLimits struct {
	MaxSettled int
	MaxHops    int
}

// Options configures Contract. The zero value runs offline (Online=false)
// with exact edge-difference; DefaultOptions returns the online defaults.
type Options[K comparable] struct {
	// Heuristic is the order key. Nil selects EdgeDifference(WitnessSearch).
	Heuristic Heuristic[K]
	// Online: when true (default), a contracted node's neighbors have
	// their heuristic value refreshed immediately. When false, initial
	// priorities are used throughout. spec.md §4.B / §6.
	Online bool
	// WitnessSearch, if non-nil, bounds the shortest-path calls the
	// contraction pair-loop makes to decide whether a shortcut is
	// needed. Nil means exact bidirectional Dijkstra (the default).
	WitnessSearch *WitnessLimits
}

// DefaultOptions returns online=true, exact edge-difference, no witness
// truncation — spec.md's documented defaults.
func DefaultOptions[K comparable]() Options[K] {
	return Options[K]{Online: true}
}

// EdgeDifference is the default heuristic from spec.md §4.B:
//
//	edge_diff(n, g) = shortcuts_added - |neighbors(n)|
//
// where shortcuts_added counts unordered neighbor pairs (a, b) whose
// current shortest a–b path in g passes through n. Grounded on
// original_source/sources/ch_based_tnr_algo.py's get_edge_diff, which
// uses exactly this pairwise-bidirectional-Dijkstra definition. Passing
// a non-nil limits switches every pair check to the bounded witness
// search instead (see WitnessLimits).
func EdgeDifference[K comparable](limits *WitnessLimits) Heuristic[K] {
	return func(g *graph.Graph[K], n K) float64 {
		neighbors, err := g.Neighbors(n)
		if err != nil {
			return math.Inf(1)
		}
		shortcutsAdded := 0
		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				a, b := neighbors[i], neighbors[j]
				if needsShortcutThrough(g, n, a, b, limits) {
					shortcutsAdded++
				}
			}
		}
		return float64(shortcutsAdded - len(neighbors))
	}
}

// needsShortcutThrough reports whether the current shortest a–b path in g
// passes through n (exact mode), or — in witness mode — whether no
// witness path of length <= direct(a,n)+direct(n,b) survives excluding n.
func needsShortcutThrough[K comparable](g *graph.Graph[K], n, a, b K, limits *WitnessLimits) bool {
	if limits == nil {
		_, path, reachable := ShortestPath(g, a, b)
		return reachable && containsNode(path, n)
	}
	viaLen, ok := viaLength(g, a, n, b)
	if !ok {
		return false
	}
	return !witnessExists(g, n, a, b, viaLen, limits)
}

func viaLength[K comparable](g *graph.Graph[K], a, n, b K) (float64, bool) {
	lenAN, err := g.Length(a, n)
	if err != nil {
		return 0, false
	}
	lenNB, err := g.Length(n, b)
	if err != nil {
		return 0, false
	}
	return lenAN + lenNB, true
}

func containsNode[K comparable](path []K, n K) bool {
	for _, p := range path {
		if p == n {
			return true
		}
	}
	return false
}

// witnessExists runs a bounded Dijkstra from a, excluding node n entirely
// from the search, capped at maxWeight/MaxHops/MaxSettled. If it reaches
// b within maxWeight, the existing a..b path is a witness that no
// shortcut is needed. Grounded on witness.go's batchWitnessSearch,
// specialized to a single (a,b) pair rather than batched over all
// outgoing targets of one incoming neighbor.
func witnessExists[K comparable](g *graph.Graph[K], exclude, a, b K, maxWeight float64, limits *WitnessLimits) bool {
	dist := map[K]float64{a: 0}
	var pq pqueue.Heap[K]
	seqOf := func(id K) int {
		s, _ := g.Seq(id)
		return s
	}
	pq.Push(a, 0, seqOf(a))
	settled := 0
	hops := map[K]int{a: 0}

	for pq.Len() > 0 {
		item, _ := pq.Pop()
		u, du, h := item.ID, item.Key, hops[item.ID]
		if du > dist[u] {
			continue
		}
		if u == b {
			return du <= maxWeight
		}
		settled++
		if settled > limits.MaxSettled || du > maxWeight || h >= limits.MaxHops {
			continue
		}
		nbrs, err := g.Neighbors(u)
		if err != nil {
			continue
		}
		for _, v := range nbrs {
			if v == exclude {
				continue
			}
			length, err := g.Length(u, v)
			if err != nil {
				continue
			}
			nd := du + length
			if nd > maxWeight {
				continue
			}
			if cur, ok := dist[v]; !ok || nd < cur {
				dist[v] = nd
				hops[v] = h + 1
				pq.Push(v, nd, seqOf(v))
			}
		}
	}
	return false
}

// Result is the output of Contract: the ordering and the accumulated
// shortcut edges, kept as a plain graph so the façade can Compose it onto
// the original to build the augmented graph A.
type Result[K comparable] struct {
	Order     map[K]int
	Shortcuts *graph.Graph[K]
}

// Contract performs CH preprocessing (spec.md §4.B) on a deep copy of g,
// leaving g untouched. It returns the node ordering (order[n] = rank,
// smaller contracts earlier, larger = more important) and the emitted
// shortcut edges.
func Contract[K comparable](g *graph.Graph[K], opts Options[K]) (Result[K], error) {
	if g.NumNodes() == 0 {
		return Result[K]{}, fmt.Errorf("chorder: %w", ErrEmptyGraph)
	}
	if opts.Heuristic == nil {
		opts.Heuristic = EdgeDifference[K](opts.WitnessSearch)
	}

	w := g.Clone()
	shortcuts := graph.New[K]()
	order := make(map[K]int, w.NumNodes())
	contracted := make(map[K]bool, w.NumNodes())

	var pq pqueue.Heap[K]
	for _, n := range w.Nodes() {
		seq, _ := w.Seq(n)
		pq.Push(n, opts.Heuristic(w, n), seq)
	}

	counter := 0
	for pq.Len() > 0 {
		item, _ := pq.Pop()
		node := item.ID
		if contracted[node] {
			continue
		}

		// Lazy re-validation: the node's priority may be stale if it was
		// a neighbor of a node contracted since it was pushed (online
		// mode can leave superseded duplicate entries in the heap).
		// Offline mode keeps the initial priorities, so it skips this.
		if opts.Online {
			current := opts.Heuristic(w, node)
			if top, ok := pq.Peek(); ok && current > top.Key {
				seq, _ := w.Seq(node)
				pq.Push(node, current, seq)
				continue
			}
		}

		neighbors, err := w.Neighbors(node)
		if err != nil {
			contracted[node] = true
			continue
		}

		for i := 0; i < len(neighbors); i++ {
			for j := i + 1; j < len(neighbors); j++ {
				a, b := neighbors[i], neighbors[j]
				if opts.WitnessSearch == nil {
					dist, path, reachable := ShortestPath(w, a, b)
					if reachable && containsNode(path, node) {
						_ = w.AddEdge(a, b, dist)
						_ = shortcuts.AddEdge(a, b, dist)
					}
				} else {
					viaLen, ok := viaLength(w, a, node, b)
					if ok && !witnessExists(w, node, a, b, viaLen, opts.WitnessSearch) {
						_ = w.AddEdge(a, b, viaLen)
						_ = shortcuts.AddEdge(a, b, viaLen)
					}
				}
			}
		}

		order[node] = counter
		counter++
		contracted[node] = true
		_ = w.RemoveNode(node)

		if opts.Online {
			for _, m := range neighbors {
				if contracted[m] {
					continue
				}
				seq, ok := w.Seq(m)
				if !ok {
					continue
				}
				pq.Push(m, opts.Heuristic(w, m), seq)
			}
		}
	}

	return Result[K]{Order: order, Shortcuts: shortcuts}, nil
}
