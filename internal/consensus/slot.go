// Package consensus implements the block verification and processing
// pipeline of the delegated-proof-of-stake core: slot arithmetic, the
// reward schedule, the recent-id replay window, the receipt and process
// verifiers, and the delegate keypair loader.
package consensus

import "time"

// SlotOf returns the slot a timestamp (unix seconds) falls into, given
// the protocol's epoch and slot interval. slotOf(t) = floor((t-epoch)/interval).
func SlotOf(timestamp, epoch, interval uint64) uint64 {
	if timestamp < epoch {
		return 0
	}
	return (timestamp - epoch) / interval
}

// WallClockSeconds returns the current wall-clock time as unix seconds.
func WallClockSeconds() uint64 {
	return uint64(time.Now().Unix())
}

// CurrentSlot returns the slot the given wall-clock reading falls into.
func CurrentSlot(now, epoch, interval uint64) uint64 {
	return SlotOf(now, epoch, interval)
}
