package tnr

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"tnrch/pkg/chorder"
	"tnrch/pkg/graph"
)

// buildPath constructs the 0-1-...-n-1 chain with unit-length edges —
// spec.md §8 scenario 1 ("path graph").
func buildPath(n int) *graph.Graph[int] {
	g := graph.New[int]()
	if n == 0 {
		return g
	}
	for i := 0; i < n-1; i++ {
		_ = g.AddEdge(i, i+1, 1)
	}
	return g
}

func TestPreprocessPathGraphScenario(t *testing.T) {
	g := buildPath(5)
	artifact, err := Preprocess(g, DefaultConfig[int](40))
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if len(artifact.Transit()) != 2 {
		t.Fatalf("transit set has %d nodes, want 2 (40%% of 5)", len(artifact.Transit()))
	}

	d04, err := artifact.Distance(0, 4)
	if err != nil || d04 != 4 {
		t.Errorf("Distance(0,4) = %v, %v, want 4, nil", d04, err)
	}
	d13, err := artifact.Distance(1, 3)
	if err != nil || d13 != 2 {
		t.Errorf("Distance(1,3) = %v, %v, want 2, nil", d13, err)
	}
}

// TestPreprocessTriangleScenario is spec.md §8 scenario 2: a–b=3, b–c=4,
// c–a=10. query(a,c) must take the a–b–c detour (7), not the direct
// 10-length edge.
func TestPreprocessTriangleScenario(t *testing.T) {
	g := graph.New[string]()
	_ = g.AddEdge("a", "b", 3)
	_ = g.AddEdge("b", "c", 4)
	_ = g.AddEdge("c", "a", 10)

	artifact, err := Preprocess(g, DefaultConfig[string](100))
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	d, err := artifact.Distance("a", "c")
	if err != nil || d != 7 {
		t.Errorf("Distance(a,c) = %v, %v, want 7, nil", d, err)
	}
}

// TestPreprocessStarScenario is spec.md §8 scenario 3: center h with
// leaves l1..l5, all unit edges, k_percent=20 so |T|=1. Contracting any
// leaf needs no shortcut (it has a single neighbor, edge difference -1),
// while h starts at 10-5=5. Online refresh lowers h as leaves go, and
// once two leaves remain h ties them at -1; ties go to the lower
// insertion sequence, so the leaves are added before h to keep h last,
// making it the sole transit node. query(l1,l5) must resolve to 2 by
// combining each leaf's access distance to h with D[h,h]=0.
func TestPreprocessStarScenario(t *testing.T) {
	g := graph.New[string]()
	h := "h"
	leaves := []string{"l1", "l2", "l3", "l4", "l5"}
	for _, l := range leaves {
		g.AddNode(l)
	}
	for _, l := range leaves {
		_ = g.AddEdge(h, l, 1)
	}

	artifact, err := Preprocess(g, DefaultConfig[string](20))
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if len(artifact.Transit()) != 1 {
		t.Fatalf("transit set has %d nodes, want 1 (20%% of 6)", len(artifact.Transit()))
	}
	if artifact.Transit()[0] != h {
		t.Fatalf("expected h to be the sole transit node, got %v", artifact.Transit())
	}
	d, err := artifact.Distance("l1", "l5")
	if err != nil || d != 2 {
		t.Errorf("Distance(l1,l5) = %v, %v, want 2, nil", d, err)
	}
}

// TestPreprocessParallelEdgesScenario is spec.md §8 scenario 5, exercised
// end-to-end through Preprocess/Distance (TestLengthIsMinOverParallelEdges
// in pkg/graph only checks the graph-model level): two parallel a-b edges
// of length 2 and 5 must behave everywhere as a single edge of length 2.
func TestPreprocessParallelEdgesScenario(t *testing.T) {
	g := graph.New[string]()
	_ = g.AddEdge("a", "b", 2)
	_ = g.AddEdge("a", "b", 5)

	artifact, err := Preprocess(g, DefaultConfig[string](100))
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	d, err := artifact.Distance("a", "b")
	if err != nil || d != 2 {
		t.Errorf("Distance(a,b) = %v, %v, want 2, nil", d, err)
	}
}

// roadNetworkFixture builds a deterministic ~1000-node grid-shaped graph
// with a handful of long diagonal shortcuts layered on top, standing in
// for spec.md §8 scenario 6's "fixed small map". A plain grid would make
// every shortest path a straight line; the diagonals give contraction
// something nontrivial to find shortcuts through.
func roadNetworkFixture() *graph.Graph[int] {
	const side = 32 // 32*32 = 1024 nodes
	g := graph.New[int]()
	rng := rand.New(rand.NewSource(1))

	id := func(row, col int) int { return row*side + col }
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			length := 1.0 + rng.Float64()*4.0
			if col+1 < side {
				_ = g.AddEdge(id(row, col), id(row, col+1), length)
			}
			length = 1.0 + rng.Float64()*4.0
			if row+1 < side {
				_ = g.AddEdge(id(row, col), id(row+1, col), length)
			}
		}
	}
	for i := 0; i < side*2; i++ {
		a := id(rng.Intn(side), rng.Intn(side))
		b := id(rng.Intn(side), rng.Intn(side))
		if a != b {
			_ = g.AddEdge(a, b, 1.0+rng.Float64()*20.0)
		}
	}
	return g
}

// TestQueryAgreesWithDijkstraOnRoadNetworkFixture is spec.md §8 scenario
// 6: over a ~1000-node fixture, query(s,t) must agree with bidirectional
// Dijkstra on the original graph for randomly sampled pairs.
func TestQueryAgreesWithDijkstraOnRoadNetworkFixture(t *testing.T) {
	g := roadNetworkFixture()
	artifact, err := Preprocess(g, DefaultConfig[int](10))
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	nodes := g.Nodes()
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 50; i++ {
		s := nodes[rng.Intn(len(nodes))]
		d := nodes[rng.Intn(len(nodes))]
		if s == d {
			continue
		}
		want, _, wantReachable := chorder.ShortestPath(g, s, d)
		got, err := artifact.Distance(s, d)
		if err != nil {
			t.Fatalf("Distance(%d,%d): %v", s, d, err)
		}
		if !wantReachable {
			if !math.IsInf(got, 1) {
				t.Errorf("Distance(%d,%d) = %v, want +Inf (unreachable)", s, d, got)
			}
			continue
		}
		if !scalar.EqualWithinAbsOrRel(got, want, 0, 1e-9) {
			t.Errorf("Distance(%d,%d) = %v, want %v (bidirectional Dijkstra), outside tolerance", s, d, got, want)
		}
	}
}

func TestPreprocessKPercentZeroForcesLocalFallback(t *testing.T) {
	g := buildPath(5)
	artifact, err := Preprocess(g, DefaultConfig[int](0))
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if len(artifact.Transit()) != 0 {
		t.Fatalf("k_percent=0 should produce an empty transit set, got %d", len(artifact.Transit()))
	}
	d, err := artifact.Distance(0, 4)
	if err != nil || d != 4 {
		t.Errorf("Distance(0,4) = %v, %v, want 4, nil", d, err)
	}
}

func TestPreprocessKPercentHundredAllTransit(t *testing.T) {
	g := buildPath(5)
	artifact, err := Preprocess(g, DefaultConfig[int](100))
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if len(artifact.Transit()) != 5 {
		t.Fatalf("k_percent=100 should select every node, got %d", len(artifact.Transit()))
	}
	d, err := artifact.Distance(0, 4)
	if err != nil || d != 4 {
		t.Errorf("Distance(0,4) = %v, %v, want 4, nil", d, err)
	}
}

func TestPreprocessRejectsEmptyGraph(t *testing.T) {
	if _, err := Preprocess(buildPath(0), DefaultConfig[int](40)); err == nil {
		t.Fatal("Preprocess on an empty graph should fail")
	}
}

func TestPreprocessRejectsBadKPercent(t *testing.T) {
	g := buildPath(5)
	if _, err := Preprocess(g, Config[int]{KPercent: -1, Online: true}); err == nil {
		t.Error("negative k_percent should be rejected")
	}
	if _, err := Preprocess(g, Config[int]{KPercent: 101, Online: true}); err == nil {
		t.Error("k_percent > 100 should be rejected")
	}
}

func TestArtifactDistancerMatchesDistance(t *testing.T) {
	g := buildPath(5)
	artifact, err := Preprocess(g, DefaultConfig[int](40))
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	d := artifact.NewDistancer()
	got, err := d.Distance(0, 4)
	if err != nil || got != 4 {
		t.Errorf("Distancer.Distance(0,4) = %v, %v, want 4, nil", got, err)
	}
}

// meshGraph builds a small graph with cycles (unlike buildPath's chain) so
// the round-trip law below exercises shortcut edges genuinely competing
// with original ones, not just a single path.
func meshGraph() *graph.Graph[int] {
	g := graph.New[int]()
	_ = g.AddEdge(0, 1, 4)
	_ = g.AddEdge(1, 2, 3)
	_ = g.AddEdge(2, 3, 2)
	_ = g.AddEdge(3, 0, 10)
	_ = g.AddEdge(0, 2, 6)
	_ = g.AddEdge(1, 3, 8)
	_ = g.AddEdge(3, 4, 1)
	_ = g.AddEdge(4, 5, 1)
	_ = g.AddEdge(5, 1, 2)
	return g
}

// TestQueryRoundTripLawMatchesPlainDijkstra checks spec.md §8's round-trip
// law: every query(s,t) equals the plain-graph shortest-path distance,
// within relative 1e-9 / absolute 0 tolerance. Grounded on
// _examples/gonum-gonum/floats/floats_test.go's use of
// scalar.EqualWithinAbsOrRel for exactly this kind of tolerance comparison.
func TestQueryRoundTripLawMatchesPlainDijkstra(t *testing.T) {
	g := meshGraph()
	artifact, err := Preprocess(g, DefaultConfig[int](40))
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}

	nodes := g.Nodes()
	for _, s := range nodes {
		for _, d := range nodes {
			if s == d {
				continue
			}
			want, _, wantReachable := chorder.ShortestPath(g, s, d)
			got, err := artifact.Distance(s, d)
			if err != nil {
				t.Fatalf("Distance(%d,%d): %v", s, d, err)
			}
			if !wantReachable {
				if !math.IsInf(got, 1) {
					t.Errorf("Distance(%d,%d) = %v, want +Inf (unreachable on plain graph)", s, d, got)
				}
				continue
			}
			if !scalar.EqualWithinAbsOrRel(got, want, 0, 1e-9) {
				t.Errorf("Distance(%d,%d) = %v, want %v (plain Dijkstra), outside tolerance", s, d, got, want)
			}
		}
	}
}

// TestPreprocessIsDeterministic checks spec.md §8's idempotence property:
// preprocessing the same input twice (same construction order, so the
// same tie-breaking sequence) yields artifacts that answer every query
// identically.
func TestPreprocessIsDeterministic(t *testing.T) {
	g1 := meshGraph()
	g2 := meshGraph()

	a1, err := Preprocess(g1, DefaultConfig[int](40))
	if err != nil {
		t.Fatalf("Preprocess g1: %v", err)
	}
	a2, err := Preprocess(g2, DefaultConfig[int](40))
	if err != nil {
		t.Fatalf("Preprocess g2: %v", err)
	}

	if len(a1.Transit()) != len(a2.Transit()) {
		t.Fatalf("transit set sizes differ: %d vs %d", len(a1.Transit()), len(a2.Transit()))
	}
	for _, s := range g1.Nodes() {
		for _, d := range g1.Nodes() {
			d1, err := a1.Distance(s, d)
			if err != nil {
				t.Fatalf("a1.Distance(%d,%d): %v", s, d, err)
			}
			d2, err := a2.Distance(s, d)
			if err != nil {
				t.Fatalf("a2.Distance(%d,%d): %v", s, d, err)
			}
			if d1 != d2 {
				t.Errorf("Distance(%d,%d) differs across repeated preprocessing: %v vs %v", s, d, d1, d2)
			}
		}
	}

	// Repeated queries against the same artifact return the same value.
	first, _ := a1.Distance(0, 4)
	second, _ := a1.Distance(0, 4)
	if first != second {
		t.Errorf("repeated Distance(0,4) on the same artifact = %v then %v", first, second)
	}
}

func TestPreprocessDisconnectedComponentsYieldInfinity(t *testing.T) {
	g := graph.New[int]()
	_ = g.AddEdge(0, 1, 1)
	_ = g.AddEdge(2, 3, 1)

	artifact, err := Preprocess(g, DefaultConfig[int](50))
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	d, err := artifact.Distance(0, 2)
	if err != nil {
		t.Fatalf("Distance across disconnected components returned an error: %v", err)
	}
	if !math.IsInf(d, 1) {
		t.Errorf("Distance(0,2) across disconnected components = %v, want +Inf", d)
	}
}
