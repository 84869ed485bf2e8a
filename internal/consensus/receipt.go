package consensus

import (
	"fmt"

	"github.com/forgenet-io/forgenet-chain/config"
	"github.com/forgenet-io/forgenet-chain/pkg/block"
)

// Receipt is the {verified, errors} pair returned by the verifiers.
// Verified is defined as len(Errors) == 0. Errors are accumulated in
// predicate-evaluation order, then reversed before being returned: a
// caller that reads Errors[0] sees the last-detected error, a quirk of
// the reference implementation preserved here deliberately.
type Receipt struct {
	Verified bool
	Errors   []string
}

// FirstError returns Errors[0] (the post-reversal "first" entry the
// reference surfaces to callers), or nil if verified.
func (r *Receipt) FirstError() error {
	if r.Verified || len(r.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("%s", r.Errors[0])
}

// ReceiptVerifier runs the stateless predicates applicable to any
// incoming block given the current chain tip (component D).
type ReceiptVerifier struct {
	Genesis *config.Genesis
	Blocks  BlocksProvider
	Window  *IDWindow

	// Now returns the current wall-clock time in unix seconds. Defaults
	// to WallClockSeconds; overridable so tests can fix the clock.
	Now func() uint64
}

func (v *ReceiptVerifier) now() uint64 {
	if v.Now != nil {
		return v.Now()
	}
	return WallClockSeconds()
}

// VerifyReceipt runs the receipt-verifier predicate sequence against
// blk, given the blocks provider's current tip.
func (v *ReceiptVerifier) VerifyReceipt(blk *block.Block) *Receipt {
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

	// 3. verifyPreviousBlock
	if msg := verifyPreviousBlockAbsence(blk); msg != "" {
		errs = append(errs, msg)
	}

	// verifyId: recompute and (re)assign. No failure mode in a typed
	// header — hashing cannot fail — but the side effect of populating
	// Header.ID must happen before the window/reward checks below that
	// key off the block id.
	id := blk.Hash()
	blk.Header.ID = &id

	// 4. verifyAgainstLastNBlockIds
	if v.Window.Contains(id) {
		errs = append(errs, "Block already exists in chain")
	}

	// 5. verifyBlockSlotWindow
	rules := v.Genesis.Protocol.Consensus
	s := SlotOf(blk.Header.Timestamp, rules.Epoch, rules.SlotInterval)
	c := CurrentSlot(v.now(), rules.Epoch, rules.SlotInterval)
	if c > s && c-s > uint64(rules.BlockSlotWindow) {
		errs = append(errs, "Block slot is too old")
	}
	if c < s {
		errs = append(errs, "Block slot is in the future")
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

func verifyPreviousBlockAbsence(blk *block.Block) string {
	if blk.Header.PreviousBlock == nil && blk.Header.Height != 1 {
		return "Invalid previous block"
	}
	return ""
}

func verifyVersion(blk *block.Block) string {
	if blk.Header.Version > block.CurrentVersion {
		return "Invalid block version"
	}
	return ""
}

func verifyReward(genesis *config.Genesis, blk *block.Block, idHex string) string {
	if blk.Header.Height == 1 {
		return ""
	}
	want := RewardAt(genesis, blk.Header.Height)
	if blk.Header.Reward != want && !RewardException(genesis, idHex) {
		return fmt.Sprintf("Invalid block reward: %d expected: %d", blk.Header.Reward, want)
	}
	return ""
}

// verifyPayload enforces invariants 2 (numberOfTransactions), 3
// (payloadLength / max tx count), 4 (payload hash), 5 (total
// amount/fee), and 6 (unique transaction ids).
func verifyPayload(blk *block.Block, rules config.ConsensusRules) []string {
	var errs []string

	if int(blk.Header.NumberOfTransactions) != len(blk.Transactions) {
		errs = append(errs, "Invalid number of transactions")
	}
	if len(blk.Transactions) > rules.MaxTxsPerBlock {
		errs = append(errs, "Number of transactions exceeds maximum")
	}
	if int(blk.Header.PayloadLength) > rules.MaxPayloadLength {
		errs = append(errs, "Payload length exceeds maximum")
	}

	seen := make(map[string]struct{}, len(blk.Transactions))
	var totalAmount, totalFee uint64
	for _, t := range blk.Transactions {
		id := t.ID()
		key := id.String()
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Sprintf("Encountered duplicate transaction: %s", key))
			continue
		}
		seen[key] = struct{}{}
		totalAmount += t.Amount
		totalFee += t.Fee
	}

	if got := block.ComputePayloadHash(blk.Transactions); got != blk.Header.PayloadHash {
		errs = append(errs, "Invalid payload hash")
	}
	if totalAmount != blk.Header.TotalAmount {
		errs = append(errs, "Invalid total amount")
	}
	if totalFee != blk.Header.TotalFee {
		errs = append(errs, "Invalid total fee")
	}

	return errs
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
