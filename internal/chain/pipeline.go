package chain

import (
	"errors"
	"fmt"

	"github.com/forgenet-io/forgenet-chain/internal/consensus"
	"github.com/forgenet-io/forgenet-chain/pkg/block"
	"github.com/forgenet-io/forgenet-chain/pkg/tx"
)

// Sentinel liveness errors (component G preconditions).
var (
	ErrCleaningUp        = errors.New("Cleaning up")
	ErrBlockchainLoading = errors.New("Blockchain is loading")
)

// Result is the outcome of a processBlock call.
type Result struct {
	Accepted bool
	Receipt  *consensus.Receipt
}

// Pipeline orchestrates the sequential, abort-on-first-error block
// processing pipeline (component G): normalise, verify, broadcast,
// existence check, slot validation, transaction checks, then apply.
type Pipeline struct {
	Blocks    *BlockStore
	Accounts  *AccountStore
	Delegates consensus.DelegatesProvider
	Txs       consensus.TransactionsProvider
	Process   *consensus.ProcessVerifier
	Broadcast consensus.Broadcaster
	Window    *consensus.IDWindow

	loaded bool
}

// OnBind opens the pipeline for work; the collaborators are the struct's
// fields, set before it is called. processBlock refuses everything until
// this has run.
func (p *Pipeline) OnBind() {
	p.loaded = true
}

// OnBlockchainReady populates the recent-id window from the last W
// persisted block ids. Errors are non-fatal: they are returned for the
// caller to log, but startup proceeds regardless.
func (p *Pipeline) OnBlockchainReady(windowSize int) error {
	ids, err := p.Blocks.LoadLastNBlockIds(windowSize)
	if err != nil {
		return fmt.Errorf("load recent block ids: %w", err)
	}
	p.Window.Load(ids)
	return nil
}

// OnNewBlock appends an accepted block's id to the recent-id window.
func (p *Pipeline) OnNewBlock(blk *block.Block) {
	p.Window.Push(blk.Hash())
}

// ProcessBlock runs the full sequential pipeline against blk.
func (p *Pipeline) ProcessBlock(blk *block.Block, broadcast, saveBlock bool) (*Result, error) {
	if p.Blocks.IsCleaning() {
		return nil, ErrCleaningUp
	}
	if !p.loaded {
		return nil, ErrBlockchainLoading
	}

	// 1. addBlockProperties (only when broadcast is false: blocks received
	// from peers or replayed arrive compact; locally forged blocks arrive
	// fully populated).
	if !broadcast {
		raw := blockToRaw(blk)
		raw = block.AddBlockProperties(raw)
		if err := rawToBlock(raw, blk); err != nil {
			return nil, fmt.Errorf("addBlockProperties: %w", err)
		}
	}

	// 2. normalizeBlock: structural sanity before verification proper.
	if err := blk.Validate(); err != nil {
		return nil, fmt.Errorf("normalizeBlock: %w", err)
	}

	// 3. verifyBlock
	receipt := p.Process.VerifyBlock(blk)
	if !receipt.Verified {
		return &Result{Accepted: false, Receipt: receipt}, receipt.FirstError()
	}

	// 4. broadcastBlock
	if broadcast && p.Broadcast != nil {
		reduced := block.DeleteBlockProperties(blockToRaw(blk))
		p.Broadcast.BroadcastReducedBlock(reduced, broadcast)
	}

	// 5. checkExists
	id := blk.Hash()
	exists, err := p.Blocks.BlockExists(id)
	if err != nil {
		return nil, fmt.Errorf("checkExists: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("Block %s already exists", id.String())
	}

	// 6. validateBlockSlot
	if err := p.Delegates.ValidateBlockSlot(blk); err != nil {
		p.Delegates.Fork(blk, consensus.ForkWrongDelegateForSlot)
		return nil, err
	}

	// 7. checkTransactions
	for _, t := range blk.Transactions {
		if err := p.checkTransaction(blk, t); err != nil {
			return nil, err
		}
	}

	// 8. applyBlock
	if err := p.Accounts.ApplyBlock(blk, saveBlock); err != nil {
		return nil, fmt.Errorf("applyBlock: %w", err)
	}

	// Confirmation is recorded only once the block is actually applied: a
	// mark written during checkTransactions would survive a later-stage
	// abort and falsely trip fork-cause-2 against a legitimate future
	// block carrying the same transaction.
	for _, t := range blk.Transactions {
		if err := p.Txs.MarkConfirmed(t); err != nil {
			return nil, fmt.Errorf("mark confirmed transaction %s: %w", t.ID().String(), err)
		}
	}

	p.OnNewBlock(blk)
	return &Result{Accepted: true, Receipt: receipt}, nil
}

func (p *Pipeline) checkTransaction(blk *block.Block, t *tx.Transaction) error {
	id := t.ID()
	t.BlockID = blk.Hash()

	confirmed, err := p.Txs.CheckConfirmed(t)
	if err != nil {
		return fmt.Errorf("checkConfirmed: %w", err)
	}
	if confirmed {
		p.Delegates.Fork(blk, consensus.ForkDuplicateConfirmedTx)
		if err := p.Txs.UndoUnconfirmed(t); err != nil {
			return fmt.Errorf("undo duplicate confirmed transaction %s: %w", id.String(), err)
		}
		if err := p.Txs.RemoveUnconfirmedTransaction(id); err != nil {
			return fmt.Errorf("remove duplicate confirmed transaction %s: %w", id.String(), err)
		}
		return fmt.Errorf("transaction %s already confirmed", id.String())
	}

	sender, err := p.Accounts.GetAccount(t.SenderPublicKey)
	if err != nil {
		return fmt.Errorf("look up sender account: %w", err)
	}

	if err := p.Txs.Verify(t, sender); err != nil {
		return fmt.Errorf("verify transaction %s: %w", id.String(), err)
	}
	return nil
}
