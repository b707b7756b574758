package pqueue

import "testing"

func TestHeapPopsInKeyOrder(t *testing.T) {
	var h Heap[string]
	h.Push("c", 3, 2)
	h.Push("a", 1, 0)
	h.Push("b", 2, 1)

	var order []string
	for h.Len() > 0 {
		item, _ := h.Pop()
		order = append(order, item.ID)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("pop order = %v, want %v", order, want)
			break
		}
	}
}

func TestHeapBreaksTiesOnSeq(t *testing.T) {
	var h Heap[string]
	h.Push("second", 5, 2)
	h.Push("first", 5, 1)

	item, ok := h.Pop()
	if !ok || item.ID != "first" {
		t.Errorf("Pop() = %+v, want id=first (lower seq breaks the key tie)", item)
	}
}

func TestHeapPeekDoesNotRemove(t *testing.T) {
	var h Heap[int]
	h.Push(1, 1, 0)
	if _, ok := h.Peek(); !ok {
		t.Fatal("Peek should find the entry")
	}
	if h.Len() != 1 {
		t.Errorf("Len() = %d after Peek, want 1", h.Len())
	}
}

func TestHeapEmptyPopAndPeek(t *testing.T) {
	var h Heap[int]
	if _, ok := h.Pop(); ok {
		t.Error("Pop on empty heap should report ok=false")
	}
	if _, ok := h.Peek(); ok {
		t.Error("Peek on empty heap should report ok=false")
	}
}
