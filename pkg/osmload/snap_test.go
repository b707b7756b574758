package osmload

import (
	"testing"

	"github.com/paulmach/osm"
)

func TestIndexNearestEmptyIsError(t *testing.T) {
	idx := NewIndex()
	if _, err := idx.Nearest(1.35, 103.82); err != ErrNoNodes {
		t.Errorf("Nearest on an empty index: err = %v, want ErrNoNodes", err)
	}
}

func TestIndexNearestReturnsClosest(t *testing.T) {
	idx := NewIndex()
	idx.Insert(osm.NodeID(1), 1.3000, 103.8000)
	idx.Insert(osm.NodeID(2), 1.3100, 103.8100)
	idx.Insert(osm.NodeID(3), 1.5000, 104.0000)

	got, err := idx.Nearest(1.3010, 103.8010)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if got != osm.NodeID(1) {
		t.Errorf("Nearest(1.3010, 103.8010) = %v, want node 1", got)
	}

	got, err = idx.Nearest(1.49, 103.99)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if got != osm.NodeID(3) {
		t.Errorf("Nearest(1.49, 103.99) = %v, want node 3", got)
	}
}

func TestIndexNearestSingleNode(t *testing.T) {
	idx := NewIndex()
	idx.Insert(osm.NodeID(42), 0, 0)

	got, err := idx.Nearest(10, 10)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if got != osm.NodeID(42) {
		t.Errorf("Nearest with a single indexed node = %v, want 42", got)
	}
}
