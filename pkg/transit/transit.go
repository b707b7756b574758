// Package transit implements component C of the TNR/CH pipeline: choosing
// the top-k most important nodes (by contraction order) as transit nodes.
package transit

import (
	"errors"
	"fmt"
	"sort"

	"tnrch/pkg/graph"
)

// ErrInvalidConfig is returned when k is outside [0, len(order)].
var ErrInvalidConfig = errors.New("transit: k out of range")

// Select returns the k nodes with the largest order values — spec.md §4.C.
// Ties (which cannot occur under the ordering's bijection invariant, but
// are guarded against regardless) are broken on insertion sequence via g.
func Select[K comparable](g *graph.Graph[K], order map[K]int, k int) ([]K, error) {
	if k < 0 || k > len(order) {
		return nil, fmt.Errorf("transit: k=%d, len(order)=%d: %w", k, len(order), ErrInvalidConfig)
	}
	nodes := make([]K, 0, len(order))
	for n := range order {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		oi, oj := order[nodes[i]], order[nodes[j]]
		if oi != oj {
			return oi > oj // descending: largest order first
		}
		si, _ := g.Seq(nodes[i])
		sj, _ := g.Seq(nodes[j])
		return si < sj
	})
	return nodes[:k], nil
}

// CountForPercent computes the transit-set size from a percentage of the
// node count, per spec.md §4.G's k = floor(|V| * k_percent / 100).
func CountForPercent(numNodes, kPercent int) int {
	return numNodes * kPercent / 100
}
