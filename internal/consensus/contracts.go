package consensus

import (
	"github.com/forgenet-io/forgenet-chain/pkg/block"
	"github.com/forgenet-io/forgenet-chain/pkg/tx"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
)

// ForkCause classifies a consensus violation reported to the delegate
// subsystem for accounting.
type ForkCause int

const (
	ForkPreviousBlockMismatch ForkCause = 1
	ForkDuplicateConfirmedTx  ForkCause = 2
	ForkWrongDelegateForSlot  ForkCause = 3
)

// Account is the minimal view of account state the core consults. A nil
// *Account represents a cold wallet: a sender not yet materialised in
// the accounts store.
type Account struct {
	PublicKey  []byte
	Address    types.Address
	IsDelegate bool
}

// BlocksProvider exposes the chain tip and existence checks the core
// consults but does not own.
type BlocksProvider interface {
	LastBlock() *block.Block
	IsCleaning() bool
	BlockExists(id types.Hash) (bool, error)
	LoadLastNBlockIds(n int) ([]types.Hash, error)
}

// DelegatesProvider exposes the delegate subsystem's fork accounting and
// per-slot generator assignment.
type DelegatesProvider interface {
	Fork(blk *block.Block, cause ForkCause)
	ValidateBlockSlot(blk *block.Block) error
}

// AccountsProvider resolves a sender public key to account state.
type AccountsProvider interface {
	GetAccount(publicKey []byte) (*Account, error)
}

// TransactionsProvider exposes the mempool bookkeeping and the
// transaction codec's confirmation/verification contract.
type TransactionsProvider interface {
	CheckConfirmed(txn *tx.Transaction) (bool, error)
	UndoUnconfirmed(txn *tx.Transaction) error
	RemoveUnconfirmedTransaction(id types.Hash) error
	Verify(txn *tx.Transaction, sender *Account) error
	MarkConfirmed(txn *tx.Transaction) error
}

// Broadcaster hands a compact (default-stripped) block to the gossip
// layer.
type Broadcaster interface {
	BroadcastReducedBlock(reduced map[string]any, broadcast bool)
}

// ChainApplier persists an accepted block's mutations and advances the
// chain tip.
type ChainApplier interface {
	ApplyBlock(blk *block.Block, saveBlock bool) error
}
