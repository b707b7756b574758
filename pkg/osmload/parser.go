// Package osmload is a concrete instance of the external graph loader
// the core treats as a black box: it parses an OpenStreetMap PBF extract
// into a graph.Graph[osm.NodeID] with haversine-derived edge lengths, and
// builds a spatial index for snapping query points to the nearest node.
// It is a consumer of pkg/graph's public constructors only — it never
// reaches into pkg/tnr's internals.
package osmload

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"tnrch/pkg/geodist"
	"tnrch/pkg/graph"
)

// carHighways lists highway tag values accessible by car. Ported from
// the teacher's pkg/osm/parser.go, unchanged.
var carHighways = map[string]bool{
	"motorway": true, "motorway_link": true,
	"trunk": true, "trunk_link": true,
	"primary": true, "primary_link": true,
	"secondary": true, "secondary_link": true,
	"tertiary": true, "tertiary_link": true,
	"unclassified": true, "residential": true,
	"living_street": true, "service": true,
}

func isCarAccessible(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] {
		return false
	}
	if tags.Find("area") == "yes" {
		return false
	}
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}
	return true
}

// Result is the output of Load: the undirected road graph plus a spatial
// index for nearest-node lookups.
type Result struct {
	Graph *graph.Graph[osm.NodeID]
	Index *Index
}

// Load parses an OSM PBF extract from rs (which must support seeking
// back to the start for the two-pass scan: ways first to determine which
// nodes matter, then nodes for their coordinates) into an undirected
// graph. Every accessible way contributes an undirected edge regardless
// of its oneway tag — the core this feeds is explicitly undirected-only,
// so direction flags the teacher's directed parser computes are dropped
// entirely rather than collapsed by hand.
//
// Grounded on azybler-map_router/pkg/osm/parser.go's two-pass structure;
// logger may be nil, in which case Load stays silent.
func Load(ctx context.Context, rs io.ReadSeeker, logger *log.Logger) (*Result, error) {
	logf := func(format string, args ...any) {
		if logger != nil {
			logger.Printf(format, args...)
		}
	}

	referenced := make(map[osm.NodeID]struct{})
	var ways [][]osm.NodeID

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || !isCarAccessible(w.Tags) || len(w.Nodes) < 2 {
			continue
		}
		ids := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			ids[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}
		ways = append(ways, ids)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("osmload: pass 1 (ways): %w", err)
	}
	scanner.Close()
	logf("osmload: pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referenced))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("osmload: seek for pass 2: %w", err)
	}

	lat := make(map[osm.NodeID]float64, len(referenced))
	lon := make(map[osm.NodeID]float64, len(referenced))
	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; !needed {
			continue
		}
		lat[n.ID] = n.Lat
		lon[n.ID] = n.Lon
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("osmload: pass 2 (nodes): %w", err)
	}
	scanner.Close()
	logf("osmload: pass 2 complete: %d node coordinates collected", len(lat))

	g := graph.New[osm.NodeID]()
	idx := NewIndex()
	var skipped int
	for _, ids := range ways {
		for i := 0; i+1 < len(ids); i++ {
			from, to := ids[i], ids[i+1]
			fLat, fOk := lat[from]
			fLon := lon[from]
			tLat, tOk := lat[to]
			tLon := lon[to]
			if !fOk || !tOk {
				skipped++
				continue
			}
			length := geodist.Haversine(fLat, fLon, tLat, tLon)
			if length <= 0 {
				length = 0.1 // avoid a zero-weight edge between coincident nodes
			}
			if err := g.AddEdge(from, to, length); err != nil {
				skipped++
				continue
			}
		}
	}
	for id := range lat {
		if !g.HasNode(id) {
			continue
		}
		idx.Insert(id, lat[id], lon[id])
	}
	logf("osmload: built graph with %d nodes, %d skipped edges", g.NumNodes(), skipped)

	return &Result{Graph: g, Index: idx}, nil
}
