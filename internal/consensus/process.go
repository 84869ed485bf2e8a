package consensus

import (
	"fmt"

	"github.com/forgenet-io/forgenet-chain/config"
	"github.com/forgenet-io/forgenet-chain/pkg/block"
)

// ProcessVerifier is the superset verifier (component E) used once a
// block is a genuine fork-decision candidate: it adds previous-block
// mismatch (fork cause 1) and strict slot-monotonicity checks, and
// omits the receipt verifier's replay-window and slot-staleness guards
// (those are receipt-only anti-replay checks, not applicable once a
// block is already past that gate).
type ProcessVerifier struct {
	Genesis   *config.Genesis
	Blocks    BlocksProvider
	Delegates DelegatesProvider

	Now func() uint64
}

func (v *ProcessVerifier) now() uint64 {
	if v.Now != nil {
		return v.Now()
	}
	return WallClockSeconds()
}

// VerifyBlock runs the process-verifier predicate sequence.
func (v *ProcessVerifier) VerifyBlock(blk *block.Block) *Receipt {
	var errs []string
	last := v.Blocks.LastBlock()

	// 1. setHeight
	if last != nil && last.Header != nil {
		blk.Header.Height = last.Header.Height + 1
	}

	// 2. verifySignature
	if !blk.Header.VerifySignature() {
		errs = append(errs, "Failed to verify block signature")
	}

	// 3. verifyPreviousBlock (absence check)
	if msg := verifyPreviousBlockAbsence(blk); msg != "" {
		errs = append(errs, msg)
	}

	// verifyForkOne
	if last != nil && last.Header != nil && blk.Header.PreviousBlock != nil {
		lastID := last.Hash()
		if *blk.Header.PreviousBlock != lastID {
			if v.Delegates != nil {
				v.Delegates.Fork(blk, ForkPreviousBlockMismatch)
			}
			errs = append(errs, fmt.Sprintf("Invalid previous block: %s expected: %s",
				blk.Header.PreviousBlock.String(), lastID.String()))
		}
	}

	id := blk.Hash()
	blk.Header.ID = &id

	// verifyBlockSlot
	rules := v.Genesis.Protocol.Consensus
	bs := SlotOf(blk.Header.Timestamp, rules.Epoch, rules.SlotInterval)
	if last != nil && last.Header != nil {
		ls := SlotOf(last.Header.Timestamp, rules.Epoch, rules.SlotInterval)
		if bs > CurrentSlot(v.now(), rules.Epoch, rules.SlotInterval) || bs <= ls {
			errs = append(errs, "Invalid block timestamp")
		}
	}

	// 6. verifyVersion
	if msg := verifyVersion(blk); msg != "" {
		errs = append(errs, msg)
	}

	// 7. verifyReward
	if msg := verifyReward(v.Genesis, blk, id.String()); msg != "" {
		errs = append(errs, msg)
	}

	// 9. verifyPayload
	errs = append(errs, verifyPayload(blk, rules)...)

	r := &Receipt{Errors: errs}
	reverse(r.Errors)
	r.Verified = len(r.Errors) == 0
	return r
}
