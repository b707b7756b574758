package chorder

import (
	"testing"

	"tnrch/pkg/graph"
)

func TestShortestPathSameNode(t *testing.T) {
	g := graph.New[string]()
	g.AddNode("a")
	dist, path, reachable := ShortestPath(g, "a", "a")
	if !reachable || dist != 0 || len(path) != 1 || path[0] != "a" {
		t.Fatalf("ShortestPath(a,a) = %v, %v, %v", dist, path, reachable)
	}
}

func TestShortestPathGrid(t *testing.T) {
	g := gridGraph()
	dist, path, reachable := ShortestPath(g, 0, 5)
	if !reachable {
		t.Fatal("expected 0 and 5 to be reachable")
	}
	// 0-1-2-5 = 100+200+400 = 700, vs 0-3-4-5 = 300+500+600 = 1400.
	if dist != 700 {
		t.Errorf("dist(0,5) = %v, want 700", dist)
	}
	if path[0] != 0 || path[len(path)-1] != 5 {
		t.Errorf("path %v does not start at 0 and end at 5", path)
	}
	if !pathIsConnected(g, path) {
		t.Errorf("path %v is not a connected walk in the graph", path)
	}
}

func TestShortestPathUnreachable(t *testing.T) {
	g := graph.New[int]()
	_ = g.AddEdge(1, 2, 10)
	g.AddNode(99)
	_, _, reachable := ShortestPath(g, 1, 99)
	if reachable {
		t.Fatal("expected 1 and 99 to be unreachable (disconnected components)")
	}
}

func pathIsConnected[K comparable](g *graph.Graph[K], path []K) bool {
	for i := 0; i+1 < len(path); i++ {
		if _, err := g.Length(path[i], path[i+1]); err != nil {
			return false
		}
	}
	return true
}
