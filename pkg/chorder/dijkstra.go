package chorder

import (
	"math"

	"tnrch/pkg/graph"
	"tnrch/pkg/pqueue"
)

// Scratch holds the maps and heaps ShortestPath needs per call. Allocating
// a fresh Scratch is the default (see ShortestPath); callers issuing many
// queries against a stable graph — such as a high-QPS distance server —
// can instead keep a Scratch per worker (or pool one, as
// pkg/tnrquery.Distancer does) and call ShortestPathWithScratch to avoid
// reallocating six maps on every call (the maps are cleared and reused;
// the two heaps are reset to empty). Grounded on
// azybler-map_router/pkg/routing/engine.go's Engine.qsPool, which recycles
// a QueryState the same way.
type Scratch[K comparable] struct {
	distFwd, distBwd       map[K]float64
	predFwd, predBwd       map[K]K
	settledFwd, settledBwd map[K]bool
	fwdPQ, bwdPQ           pqueue.Heap[K]
}

// NewScratch returns a ready-to-use Scratch.
func NewScratch[K comparable]() *Scratch[K] {
	sc := &Scratch[K]{}
	sc.reset()
	return sc
}

func (sc *Scratch[K]) reset() {
	if sc.distFwd == nil {
		sc.distFwd = make(map[K]float64)
		sc.distBwd = make(map[K]float64)
		sc.predFwd = make(map[K]K)
		sc.predBwd = make(map[K]K)
		sc.settledFwd = make(map[K]bool)
		sc.settledBwd = make(map[K]bool)
	}
	clear(sc.distFwd)
	clear(sc.distBwd)
	clear(sc.predFwd)
	clear(sc.predBwd)
	clear(sc.settledFwd)
	clear(sc.settledBwd)
	sc.fwdPQ = pqueue.Heap[K]{}
	sc.bwdPQ = pqueue.Heap[K]{}
}

// ShortestPath computes the shortest a–b distance in g using bidirectional
// Dijkstra (weight = edge length), per spec.md §4.B ("compute the current
// shortest a–b distance in g (bidirectional Dijkstra, weight = length)").
// It also returns one witness shortest path from a to b — the edge-
// difference heuristic and the contraction loop both need to test whether
// a particular node lies on *some* shortest a–b path, and spec.md is
// explicit that ties are broken arbitrarily as long as a single witness
// path is produced. Here "arbitrary" is resolved deterministically via
// each node's insertion sequence (graph.Graph.Seq), so preprocessing is
// reproducible given a fixed input construction order.
//
// reachable is false if b is not reachable from a in g. Allocates a fresh
// Scratch each call; see ShortestPathWithScratch to reuse one.
func ShortestPath[K comparable](g *graph.Graph[K], a, b K) (dist float64, path []K, reachable bool) {
	return ShortestPathWithScratch(g, a, b, NewScratch[K]())
}

// ShortestPathWithScratch is ShortestPath but reusing the maps and heaps
// in sc instead of allocating new ones. sc is reset before use, so it may
// hold stale state from a prior call (or none at all, as from NewScratch).
func ShortestPathWithScratch[K comparable](g *graph.Graph[K], a, b K, sc *Scratch[K]) (dist float64, path []K, reachable bool) {
	if a == b {
		return 0, []K{a}, true
	}
	sc.reset()

	distFwd, distBwd := sc.distFwd, sc.distBwd
	predFwd, predBwd := sc.predFwd, sc.predBwd
	settledFwd, settledBwd := sc.settledFwd, sc.settledBwd
	fwdPQ, bwdPQ := &sc.fwdPQ, &sc.bwdPQ

	seqOf := func(id K) int {
		s, _ := g.Seq(id)
		return s
	}
	distFwd[a] = 0
	distBwd[b] = 0
	fwdPQ.Push(a, 0, seqOf(a))
	bwdPQ.Push(b, 0, seqOf(b))

	best := math.Inf(1)
	var meet K
	haveMeet := false

	relax := func(u K, du float64, dist map[K]float64, pred map[K]K, pq *pqueue.Heap[K], settled map[K]bool) {
		nbrs, err := g.Neighbors(u)
		if err != nil {
			return
		}
		for _, v := range nbrs {
			if settled[v] {
				continue
			}
			length, err := g.Length(u, v)
			if err != nil {
				continue
			}
			nd := du + length
			if cur, ok := dist[v]; !ok || nd < cur {
				dist[v] = nd
				pred[v] = u
				pq.Push(v, nd, seqOf(v))
			}
		}
	}

	for fwdPQ.Len() > 0 || bwdPQ.Len() > 0 {
		fwdTop, hasFwd := fwdPQ.Peek()
		bwdTop, hasBwd := bwdPQ.Peek()
		fwdMin, bwdMin := math.Inf(1), math.Inf(1)
		if hasFwd {
			fwdMin = fwdTop.Key
		}
		if hasBwd {
			bwdMin = bwdTop.Key
		}
		if fwdMin+bwdMin >= best {
			break
		}

		if hasFwd && fwdMin <= bwdMin {
			item, _ := fwdPQ.Pop()
			u, du := item.ID, item.Key
			if du > distFwd[u] || settledFwd[u] {
				continue
			}
			settledFwd[u] = true
			if db, ok := distBwd[u]; ok && du+db < best {
				best = du + db
				meet = u
				haveMeet = true
			}
			relax(u, du, distFwd, predFwd, fwdPQ, settledFwd)
		} else if hasBwd {
			item, _ := bwdPQ.Pop()
			u, du := item.ID, item.Key
			if du > distBwd[u] || settledBwd[u] {
				continue
			}
			settledBwd[u] = true
			if df, ok := distFwd[u]; ok && df+du < best {
				best = df + du
				meet = u
				haveMeet = true
			}
			relax(u, du, distBwd, predBwd, bwdPQ, settledBwd)
		} else {
			break
		}
	}

	if !haveMeet {
		return 0, nil, false
	}

	// Reconstruct a -> meet from predFwd, then meet -> b from predBwd.
	var fwdHalf []K
	for n := meet; ; {
		fwdHalf = append(fwdHalf, n)
		if n == a {
			break
		}
		n = predFwd[n]
	}
	for i, j := 0, len(fwdHalf)-1; i < j; i, j = i+1, j-1 {
		fwdHalf[i], fwdHalf[j] = fwdHalf[j], fwdHalf[i]
	}

	var bwdHalf []K
	for n := meet; ; {
		p, has := predBwd[n]
		if !has {
			break
		}
		bwdHalf = append(bwdHalf, p)
		n = p
	}

	full := append(fwdHalf, bwdHalf...)
	return best, full, true
}
