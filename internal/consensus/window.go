package consensus

import (
	"sync"

	"github.com/forgenet-io/forgenet-chain/pkg/types"
)

// IDWindow is a bounded FIFO of the most recently accepted block ids,
// most-recent last. It backs the receipt verifier's anti-replay check
// (invariant 9) and is rebuilt from storage on startup.
//
// Mutated only from onNewBlock and onBlockchainReady; read from
// verifyReceipt. The mutex makes it safe to share across a
// multi-threaded executor even though the reference implementation
// assumes single-threaded cooperative scheduling.
type IDWindow struct {
	mu       sync.RWMutex
	capacity int
	ids      []types.Hash
}

// NewIDWindow creates an empty window with the given capacity (W).
func NewIDWindow(capacity int) *IDWindow {
	return &IDWindow{capacity: capacity}
}

// Push appends id, evicting the oldest entry if capacity is exceeded.
func (w *IDWindow) Push(id types.Hash) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ids = append(w.ids, id)
	if over := len(w.ids) - w.capacity; over > 0 {
		w.ids = w.ids[over:]
	}
}

// Contains reports whether id is currently in the window.
func (w *IDWindow) Contains(id types.Hash) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, existing := range w.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Len returns the number of ids currently held.
func (w *IDWindow) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.ids)
}

// Load replaces the window's contents wholesale, used by
// onBlockchainReady to seed it from the last W persisted block ids
// (oldest first, matching Push order).
func (w *IDWindow) Load(ids []types.Hash) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if over := len(ids) - w.capacity; over > 0 {
		ids = ids[over:]
	}
	w.ids = append([]types.Hash(nil), ids...)
}
