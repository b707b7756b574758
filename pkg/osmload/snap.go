package osmload

import (
	"errors"

	"github.com/paulmach/osm"
	"github.com/tidwall/rtree"
)

// ErrNoNodes is returned by Index.Nearest when the index is empty.
var ErrNoNodes = errors.New("osmload: spatial index has no nodes")

// Index maps a lat/lng query point to the nearest ingested NodeId.
// Grounded in purpose (not mechanism) on
// azybler-map_router/pkg/routing/snap.go's nearest-road snapping,
// simplified from segment-snapping to nearest-node since the core
// operates on NodeIds, not positions along an edge.
type Index struct {
	tree rtree.RTreeG[osm.NodeID]
	n    int
}

// NewIndex returns an empty spatial index.
func NewIndex() *Index {
	return &Index{}
}

// Insert adds a node at the given coordinates to the index.
func (idx *Index) Insert(id osm.NodeID, lat, lon float64) {
	point := [2]float64{lon, lat}
	idx.tree.Insert(point, point, id)
	idx.n++
}

// Nearest returns the ingested node closest to (lat, lon) by rtree's box
// distance over raw (lon, lat) degrees. This is a planar measure, not
// great-circle distance, so away from the equator its nearest node can
// differ from the great-circle nearest one.
func (idx *Index) Nearest(lat, lon float64) (osm.NodeID, error) {
	if idx.n == 0 {
		return 0, ErrNoNodes
	}
	target := [2]float64{lon, lat}
	var best osm.NodeID
	var found bool
	idx.tree.Nearby(rtree.BoxDist(target, target, nil), func(_, _ [2]float64, data osm.NodeID, _ float64) bool {
		best = data
		found = true
		return false // first result from Nearby is the closest; stop immediately
	})
	if !found {
		return 0, ErrNoNodes
	}
	return best, nil
}
