package consensus

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/forgenet-io/forgenet-chain/pkg/block"
)

// DelegateSet assigns each slot to a delegate by round-robin over a
// fixed, canonically-sorted public-key list, and accounts fork-cause
// events for the pipeline. This generalises the teacher's PoA
// time-slot election (validators[timestamp/blockTime % N]) to slot
// numbers rather than raw timestamps, and to a named delegate slate
// rather than an ad-hoc validator set.
type DelegateSet struct {
	mu        sync.RWMutex
	delegates [][]byte // compressed public keys, sorted ascending

	epoch, interval uint64

	forks [4]atomic.Uint64 // indexed by ForkCause; index 0 unused
}

// NewDelegateSet builds a slate from delegate public keys, sorting them
// for canonical ordering (every node must agree on slot assignment
// regardless of slate discovery order).
func NewDelegateSet(delegates [][]byte, epoch, interval uint64) *DelegateSet {
	sorted := append([][]byte(nil), delegates...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })
	return &DelegateSet{delegates: sorted, epoch: epoch, interval: interval}
}

// SlotDelegate returns the public key assigned to slot s.
func (d *DelegateSet) SlotDelegate(s uint64) []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.delegates) == 0 {
		return nil
	}
	return d.delegates[s%uint64(len(d.delegates))]
}

// ValidateBlockSlot implements DelegatesProvider: it checks that blk's
// generator is the delegate assigned to blk's slot.
func (d *DelegateSet) ValidateBlockSlot(blk *block.Block) error {
	s := SlotOf(blk.Header.Timestamp, d.epoch, d.interval)
	expected := d.SlotDelegate(s)
	if expected == nil {
		return fmt.Errorf("no delegates configured")
	}
	if !bytes.Equal(blk.Header.GeneratorPublicKey, expected) {
		return fmt.Errorf("wrong delegate for slot %d: expected %x, got %x",
			s, expected, blk.Header.GeneratorPublicKey)
	}
	return nil
}

// Fork implements DelegatesProvider: it tallies fork-cause occurrences
// for operational visibility. The reference daemon logs these; a
// production deployment would also feed them into validator-liveness
// accounting, which is out of scope here.
func (d *DelegateSet) Fork(blk *block.Block, cause ForkCause) {
	if cause < 0 || int(cause) >= len(d.forks) {
		return
	}
	d.forks[cause].Add(1)
}

// ForkCount returns how many times cause has been recorded.
func (d *DelegateSet) ForkCount(cause ForkCause) uint64 {
	if cause < 0 || int(cause) >= len(d.forks) {
		return 0
	}
	return d.forks[cause].Load()
}
