// Package tnr implements component G of the TNR/CH pipeline: the
// Preprocess façade that orchestrates ordering (B), transit selection
// (C), the distance table (D) and access-node computation (E) into one
// immutable Artifact, plus the query entry point consumers call against
// it.
package tnr

import (
	"fmt"
	"log"

	"tnrch/pkg/access"
	"tnrch/pkg/chorder"
	"tnrch/pkg/disttable"
	"tnrch/pkg/graph"
	"tnrch/pkg/tnrquery"
	"tnrch/pkg/transit"
)

// Config carries Preprocess's options — spec.md §6's k_percent, heuristic
// and online, plus the ambient knobs (witness-search truncation, a
// nil-safe logger) §7 adds on top. The zero value selects k_percent 0 in
// offline mode; DefaultConfig sets Online=true.
type Config[K comparable] struct {
	// KPercent selects the transit-set size as a percentage of |V|,
	// 0 <= KPercent <= 100.
	KPercent int
	// Heuristic is the contraction order key. Nil selects
	// chorder.EdgeDifference(WitnessSearch).
	Heuristic chorder.Heuristic[K]
	// Online controls whether neighbor priorities are refreshed during
	// contraction. Defaults to true via DefaultConfig.
	Online bool
	// WitnessSearch, if set, bounds contraction's shortest-path calls.
	// Nil (the default) keeps exact bidirectional Dijkstra.
	WitnessSearch *chorder.WitnessLimits
	// Logger receives staged progress messages during Preprocess. A nil
	// Logger means no logging — library code never calls the global
	// logger directly, only an injected one.
	Logger *log.Logger
}

// DefaultConfig returns a Config with Online=true and no witness
// truncation, matching spec.md's documented defaults.
func DefaultConfig[K comparable](kPercent int) Config[K] {
	return Config[K]{KPercent: kPercent, Online: true}
}

func (c Config[K]) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}

// Artifact is the immutable output of Preprocess: the augmented graph,
// contraction order, shortcut edges, transit set, distance table and
// per-node access-node/search-space results — spec.md §4.G's
// (A, order, shortcuts, T, D, An, S). Every accessor is read-only;
// nothing here is ever mutated after Preprocess returns.
type Artifact[K comparable] struct {
	a           *graph.Graph[K]
	order       map[K]int
	shortcuts   *graph.Graph[K]
	transit     []K
	isTransit   map[K]bool
	table       *disttable.Table[K]
	accessNodes map[K][]access.Candidate[K]
	searchSpace map[K]map[K]struct{}
}

func (art *Artifact[K]) A() *graph.Graph[K]               { return art.a }
func (art *Artifact[K]) Order() map[K]int                 { return art.order }
func (art *Artifact[K]) Shortcuts() *graph.Graph[K]       { return art.shortcuts }
func (art *Artifact[K]) Transit() []K                     { return art.transit }
func (art *Artifact[K]) Table() *disttable.Table[K]       { return art.table }
func (art *Artifact[K]) AccessNodes() map[K][]access.Candidate[K] { return art.accessNodes }
func (art *Artifact[K]) SearchSpace() map[K]map[K]struct{} { return art.searchSpace }

// Distance answers a point-to-point shortest-distance query against the
// artifact — spec.md §4.F, delegated to pkg/tnrquery so the dispatch
// logic lives in one place regardless of whether a caller goes through
// the façade or calls tnrquery.Distance directly with raw components.
func (art *Artifact[K]) Distance(s, t K) (float64, error) {
	return tnrquery.Distance(art.a, art.isTransit, art.table, art.accessNodeView(), s, t)
}

// NewDistancer returns a tnrquery.Distancer bound to this artifact's
// views. Unlike Distance, a Distancer pools its local-fallback search
// scratch across calls — cmd/serve keeps one per loaded artifact rather
// than calling Distance, which rebuilds the access-node view and
// allocates fresh search state on every query.
func (art *Artifact[K]) NewDistancer() *tnrquery.Distancer[K] {
	return tnrquery.NewDistancer(art.a, art.isTransit, art.table, art.accessNodeView())
}

func (art *Artifact[K]) accessNodeView() map[K]access.Node[K] {
	view := make(map[K]access.Node[K], len(art.accessNodes))
	for n, candidates := range art.accessNodes {
		view[n] = access.Node[K]{Access: candidates, Locality: art.searchSpace[n]}
	}
	return view
}

// EdgeRecord is a (de)serializable undirected edge, used by Snapshot
// since gob cannot see across Graph's unexported adjacency fields.
type EdgeRecord[K comparable] struct {
	A, B   K
	Length float64
}

// Snapshot is a gob-friendly, fully-exported view of an Artifact —
// pkg/tnrio's payload. Artifact itself keeps its fields private so every
// mutation path stays inside Preprocess; Snapshot/FromSnapshot are the
// only bridge across that boundary.
type Snapshot[K comparable] struct {
	AugmentedEdges []EdgeRecord[K]
	Order          map[K]int
	ShortcutEdges  []EdgeRecord[K]
	Transit        []K
	Table          map[K]map[K]float64
	AccessNodes    map[K][]access.Candidate[K]
	SearchSpace    map[K]map[K]struct{}
}

// Snapshot captures art as a Snapshot.
func (art *Artifact[K]) Snapshot() Snapshot[K] {
	return Snapshot[K]{
		AugmentedEdges: edgeRecords(art.a),
		Order:          art.order,
		ShortcutEdges:  edgeRecords(art.shortcuts),
		Transit:        art.transit,
		Table:          art.table.Raw(),
		AccessNodes:    art.accessNodes,
		SearchSpace:    art.searchSpace,
	}
}

// FromSnapshot rebuilds an Artifact from a Snapshot, e.g. after
// pkg/tnrio.Load decodes one from disk.
func FromSnapshot[K comparable](snap Snapshot[K]) *Artifact[K] {
	a := graph.New[K]()
	for _, e := range snap.AugmentedEdges {
		_ = a.AddEdge(e.A, e.B, e.Length)
	}
	shortcuts := graph.New[K]()
	for _, e := range snap.ShortcutEdges {
		_ = shortcuts.AddEdge(e.A, e.B, e.Length)
	}
	isTransit := make(map[K]bool, len(snap.Transit))
	for _, t := range snap.Transit {
		isTransit[t] = true
	}
	return &Artifact[K]{
		a:           a,
		order:       snap.Order,
		shortcuts:   shortcuts,
		transit:     snap.Transit,
		isTransit:   isTransit,
		table:       disttable.FromMap(snap.Table),
		accessNodes: snap.AccessNodes,
		searchSpace: snap.SearchSpace,
	}
}

func edgeRecords[K comparable](g *graph.Graph[K]) []EdgeRecord[K] {
	raw := g.Edges()
	out := make([]EdgeRecord[K], len(raw))
	for i, e := range raw {
		out[i] = EdgeRecord[K]{A: e.A, B: e.B, Length: e.Length}
	}
	return out
}

// Preprocess runs the full pipeline: contract g (B), compose the
// augmented graph A = G ∪ shortcuts, select the transit set (C), build
// the transit distance table (D), then compute access nodes and search
// spaces for every non-transit node (E). spec.md §4.G.
func Preprocess[K comparable](g *graph.Graph[K], cfg Config[K]) (*Artifact[K], error) {
	if g.NumNodes() == 0 {
		return nil, fmt.Errorf("tnr: %w", ErrGraphStructure)
	}
	if cfg.KPercent < 0 || cfg.KPercent > 100 {
		return nil, fmt.Errorf("tnr: k_percent=%d: %w", cfg.KPercent, ErrInvalidConfig)
	}

	cfg.logf("tnr: contracting %d nodes", g.NumNodes())
	result, err := chorder.Contract(g, chorder.Options[K]{
		Heuristic:     cfg.Heuristic,
		Online:        cfg.Online,
		WitnessSearch: cfg.WitnessSearch,
	})
	if err != nil {
		return nil, fmt.Errorf("tnr: contraction: %w", err)
	}

	augmented := g.Clone()
	augmented.Compose(result.Shortcuts)
	cfg.logf("tnr: augmented graph has %d shortcut edges", len(result.Shortcuts.Edges()))

	k := transit.CountForPercent(g.NumNodes(), cfg.KPercent)
	transitNodes, err := transit.Select(augmented, result.Order, k)
	if err != nil {
		return nil, fmt.Errorf("tnr: transit selection: %w", err)
	}
	cfg.logf("tnr: selected %d transit nodes", len(transitNodes))

	table, err := disttable.Build(augmented, transitNodes)
	if err != nil {
		return nil, fmt.Errorf("tnr: distance table: %w", err)
	}

	accessResult := access.Compute(augmented, result.Order, transitNodes, table)
	cfg.logf("tnr: computed access nodes for %d non-transit nodes", len(accessResult))

	isTransit := make(map[K]bool, len(transitNodes))
	for _, t := range transitNodes {
		isTransit[t] = true
	}
	accessNodes := make(map[K][]access.Candidate[K], len(accessResult))
	searchSpace := make(map[K]map[K]struct{}, len(accessResult))
	for n, entry := range accessResult {
		accessNodes[n] = entry.Access
		searchSpace[n] = entry.Locality
	}

	return &Artifact[K]{
		a:           augmented,
		order:       result.Order,
		shortcuts:   result.Shortcuts,
		transit:     transitNodes,
		isTransit:   isTransit,
		table:       table,
		accessNodes: accessNodes,
		searchSpace: searchSpace,
	}, nil
}
