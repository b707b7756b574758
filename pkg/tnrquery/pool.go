package tnrquery

import (
	"fmt"
	"math"
	"sync"

	"tnrch/pkg/access"
	"tnrch/pkg/chorder"
	"tnrch/pkg/disttable"
	"tnrch/pkg/graph"
)

// Distancer answers the same query as Distance but reuses the local
// fallback's search scratch across calls via a sync.Pool, instead of
// allocating six maps per query. Intended for high-QPS
// callers such as cmd/serve; a one-off caller should just use Distance.
// Grounded on azybler-map_router/pkg/routing/engine.go's Engine.qsPool.
type Distancer[K comparable] struct {
	a           *graph.Graph[K]
	isTransit   map[K]bool
	table       *disttable.Table[K]
	accessNodes map[K]access.Node[K]
	pool        sync.Pool
}

// NewDistancer builds a Distancer over the same artifact views Distance
// takes directly.
func NewDistancer[K comparable](
	a *graph.Graph[K],
	isTransit map[K]bool,
	table *disttable.Table[K],
	accessNodes map[K]access.Node[K],
) *Distancer[K] {
	d := &Distancer[K]{a: a, isTransit: isTransit, table: table, accessNodes: accessNodes}
	d.pool.New = func() any { return chorder.NewScratch[K]() }
	return d
}

// Distance answers distance(s, t) exactly as the package-level Distance
// function does, reusing a pooled local-fallback scratch buffer.
func (d *Distancer[K]) Distance(s, t K) (float64, error) {
	if !d.a.HasNode(s) || !d.a.HasNode(t) {
		return 0, fmt.Errorf("tnrquery: distance(%v, %v): %w", s, t, ErrUnknownNode)
	}
	if s == t {
		return 0, nil
	}

	sT, tT := d.isTransit[s], d.isTransit[t]
	switch {
	case sT && tT:
		return d.table.GetOrInf(s, t), nil

	case sT && !tT:
		return minOverAccess(d.accessNodes[t].Access, func(c access.Candidate[K]) float64 {
			return c.Dist + d.table.GetOrInf(s, c.Node)
		}), nil

	case !sT && tT:
		return minOverAccess(d.accessNodes[s].Access, func(c access.Candidate[K]) float64 {
			return c.Dist + d.table.GetOrInf(c.Node, t)
		}), nil

	default:
		if localitiesDisjoint(d.accessNodes[s].Locality, d.accessNodes[t].Locality) {
			return globalCase(d.accessNodes[s].Access, d.accessNodes[t].Access, d.table), nil
		}
		sc := d.pool.Get().(*chorder.Scratch[K])
		dist, _, reachable := chorder.ShortestPathWithScratch(d.a, s, t, sc)
		d.pool.Put(sc)
		if !reachable {
			return math.Inf(1), nil
		}
		return dist, nil
	}
}
