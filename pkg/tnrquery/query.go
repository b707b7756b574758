// Package tnrquery implements component F of the TNR/CH pipeline: the
// distance query resolver that dispatches on transit-set membership and
// locality-set disjointness, falling back to bidirectional Dijkstra on
// the augmented graph for the local case.
package tnrquery

import (
	"fmt"
	"math"

	"tnrch/pkg/access"
	"tnrch/pkg/chorder"
	"tnrch/pkg/disttable"
	"tnrch/pkg/graph"
)

// Distance answers distance(s, t) over the augmented graph a, per
// spec.md §4.F's dispatch table. isTransit, table and accessNodes are the
// artifact's T, D and An/S produced by components C, D and E.
//
// Returns (math.Inf(1), nil) when s and t are simply unreachable from one
// another — spec.md §7 is explicit that this is not an error condition.
// ErrUnknownNode is returned when s or t is absent from a.
func Distance[K comparable](
	a *graph.Graph[K],
	isTransit map[K]bool,
	table *disttable.Table[K],
	accessNodes map[K]access.Node[K],
	s, t K,
) (float64, error) {
	if !a.HasNode(s) || !a.HasNode(t) {
		return 0, fmt.Errorf("tnrquery: distance(%v, %v): %w", s, t, ErrUnknownNode)
	}
	if s == t {
		return 0, nil
	}

	sT, tT := isTransit[s], isTransit[t]

	switch {
	case sT && tT:
		return table.GetOrInf(s, t), nil

	case sT && !tT:
		return minOverAccess(accessNodes[t].Access, func(c access.Candidate[K]) float64 {
			return c.Dist + table.GetOrInf(s, c.Node)
		}), nil

	case !sT && tT:
		return minOverAccess(accessNodes[s].Access, func(c access.Candidate[K]) float64 {
			return c.Dist + table.GetOrInf(c.Node, t)
		}), nil

	default:
		if localitiesDisjoint(accessNodes[s].Locality, accessNodes[t].Locality) {
			return globalCase(accessNodes[s].Access, accessNodes[t].Access, table), nil
		}
		dist, _, reachable := chorder.ShortestPath(a, s, t)
		if !reachable {
			return math.Inf(1), nil
		}
		return dist, nil
	}
}

func minOverAccess[K comparable](candidates []access.Candidate[K], cost func(access.Candidate[K]) float64) float64 {
	best := math.Inf(1)
	for _, c := range candidates {
		if d := cost(c); d < best {
			best = d
		}
	}
	return best
}

func globalCase[K comparable](sAccess, tAccess []access.Candidate[K], table *disttable.Table[K]) float64 {
	best := math.Inf(1)
	for _, cs := range sAccess {
		for _, ct := range tAccess {
			d := cs.Dist + ct.Dist + table.GetOrInf(cs.Node, ct.Node)
			if d < best {
				best = d
			}
		}
	}
	return best
}

func localitiesDisjoint[K comparable](a, b map[K]struct{}) bool {
	small, large := a, b
	if len(large) < len(small) {
		small, large = large, small
	}
	for n := range small {
		if _, ok := large[n]; ok {
			return false
		}
	}
	return true
}
