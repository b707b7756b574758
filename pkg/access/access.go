// Package access implements component E of the TNR/CH pipeline: for each
// non-transit node, a modified upward search over the augmented graph
// that yields candidate access transit nodes and a locality set, followed
// by a stalling pass that prunes dominated candidates.
package access

import (
	"sort"

	"tnrch/pkg/disttable"
	"tnrch/pkg/graph"
	"tnrch/pkg/pqueue"
)

// Candidate is one (transit node, tentative distance) pair surviving
// pruning — spec.md §3's AccessNodes entry.
type Candidate[K comparable] struct {
	Node K
	Dist float64
}

// Node holds the access-node list and locality set for one non-transit
// node, spec.md §3's An[v] and S[v].
type Node[K comparable] struct {
	Access  []Candidate[K]
	Locality map[K]struct{}
}

// Compute runs the modified upward search and stalling pass for every
// node in a that is not in the transit set, per spec.md §4.E.
func Compute[K comparable](a *graph.Graph[K], order map[K]int, transit []K, table *disttable.Table[K]) map[K]Node[K] {
	isTransit := make(map[K]bool, len(transit))
	for _, t := range transit {
		isTransit[t] = true
	}

	out := make(map[K]Node[K])
	for _, v := range a.Nodes() {
		if isTransit[v] {
			continue
		}
		candidates, locality := searchFrom(a, order, isTransit, v)
		pruned := stall(candidates, table)
		out[v] = Node[K]{Access: pruned, Locality: locality}
	}
	return out
}

// searchFrom runs the modified upward search from v: a Dijkstra-like
// priority search pruned at transit nodes (they are labeled with their
// popped distance but not relaxed further) and restricted, away from v,
// to edges leading to a strictly higher-order node.
func searchFrom[K comparable](a *graph.Graph[K], order map[K]int, isTransit map[K]bool, v K) ([]Candidate[K], map[K]struct{}) {
	dist := map[K]float64{v: 0}
	searched := map[K]bool{}
	locality := make(map[K]struct{})
	var candidates []Candidate[K]

	var pq pqueue.Heap[K]
	seqOf := func(id K) int {
		s, _ := a.Seq(id)
		return s
	}
	pq.Push(v, 0, seqOf(v))

	for pq.Len() > 0 {
		item, _ := pq.Pop()
		u, du := item.ID, item.Key
		if searched[u] {
			continue
		}
		if cur, ok := dist[u]; ok && du > cur {
			continue
		}
		searched[u] = true

		if isTransit[u] {
			candidates = append(candidates, Candidate[K]{Node: u, Dist: du})
			continue // pruned: do not relax further from a transit node
		}
		locality[u] = struct{}{}

		neighbors, err := a.Neighbors(u)
		if err != nil {
			continue
		}
		for _, w := range neighbors {
			if searched[w] {
				continue
			}
			if order[w] <= order[u] {
				continue // upward-only
			}
			length, err := a.Length(u, w)
			if err != nil {
				continue
			}
			nd := du + length
			if cur, ok := dist[w]; !ok || nd < cur {
				dist[w] = nd
				pq.Push(w, nd, seqOf(w))
			}
		}
	}

	return candidates, locality
}

// stall removes dominated candidates: (t2, d2) is dominated if some other
// candidate (t1, d1) satisfies d1 + D[{t1,t2}] <= d2. Iterates with a
// reverse double-loop removing the higher-indexed element as it goes, per
// spec.md §4.E step 2, so a removal never invalidates comparisons still
// in flight against the surviving prefix.
func stall[K comparable](candidates []Candidate[K], table *disttable.Table[K]) []Candidate[K] {
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Dist < candidates[j].Dist })

	survivors := append([]Candidate[K](nil), candidates...)
	for i := 0; i < len(survivors); i++ {
		for j := len(survivors) - 1; j > i; j-- {
			t1, d1 := survivors[i].Node, survivors[i].Dist
			t2, d2 := survivors[j].Node, survivors[j].Dist
			bound := table.GetOrInf(t1, t2)
			if d1+bound <= d2 {
				survivors = append(survivors[:j], survivors[j+1:]...)
			}
		}
	}
	return survivors
}
