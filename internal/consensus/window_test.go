package consensus

import (
	"testing"

	"github.com/forgenet-io/forgenet-chain/pkg/types"
)

func TestIDWindow_PushAndContains(t *testing.T) {
	w := NewIDWindow(5)
	id := types.Hash{0x01}
	if w.Contains(id) {
		t.Error("empty window should not contain anything")
	}
	w.Push(id)
	if !w.Contains(id) {
		t.Error("window should contain pushed id")
	}
}

func TestIDWindow_EvictsOldestOverCapacity(t *testing.T) {
	w := NewIDWindow(3)
	ids := []types.Hash{{0x01}, {0x02}, {0x03}, {0x04}}
	for _, id := range ids {
		w.Push(id)
	}
	if w.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", w.Len())
	}
	if w.Contains(ids[0]) {
		t.Error("oldest id should have been evicted")
	}
	for _, id := range ids[1:] {
		if !w.Contains(id) {
			t.Errorf("window should still contain %x", id)
		}
	}
}

func TestIDWindow_Load_TruncatesToCapacity(t *testing.T) {
	w := NewIDWindow(2)
	w.Load([]types.Hash{{0x01}, {0x02}, {0x03}})
	if w.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", w.Len())
	}
	if w.Contains((types.Hash{0x01})) {
		t.Error("oldest loaded id beyond capacity should be dropped")
	}
	if !w.Contains((types.Hash{0x03})) {
		t.Error("most recent loaded id should be present")
	}
}
