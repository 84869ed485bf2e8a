package chain

import (
	"fmt"

	"github.com/forgenet-io/forgenet-chain/internal/consensus"
	"github.com/forgenet-io/forgenet-chain/internal/storage"
	"github.com/forgenet-io/forgenet-chain/pkg/tx"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
)

var confirmedTxPrefix = []byte("tx:confirmed:")

func confirmedTxKey(id types.Hash) []byte {
	return append(append([]byte{}, confirmedTxPrefix...), id[:]...)
}

// TxIndex implements consensus.TransactionsProvider. There is no mempool
// in this repo (out of scope per spec.md's chain-application boundary),
// so the unconfirmed-pool bookkeeping the interface exposes is a no-op:
// only the confirmed-id set, used to catch a transaction replayed across
// two blocks, is actually persisted.
type TxIndex struct {
	db storage.DB
}

func NewTxIndex(db storage.DB) *TxIndex {
	return &TxIndex{db: db}
}

// CheckConfirmed reports whether txn's id has already been applied in a
// prior block.
func (x *TxIndex) CheckConfirmed(txn *tx.Transaction) (bool, error) {
	ok, err := x.db.Has(confirmedTxKey(txn.ID()))
	if err != nil {
		return false, fmt.Errorf("check confirmed transaction: %w", err)
	}
	return ok, nil
}

// MarkConfirmed records txn's id as applied. Called once a block
// containing it has been accepted.
func (x *TxIndex) MarkConfirmed(txn *tx.Transaction) error {
	if err := x.db.Put(confirmedTxKey(txn.ID()), []byte{1}); err != nil {
		return fmt.Errorf("mark confirmed transaction: %w", err)
	}
	return nil
}

// UndoUnconfirmed is a no-op: this node has no unconfirmed transaction
// pool to roll back.
func (x *TxIndex) UndoUnconfirmed(txn *tx.Transaction) error { return nil }

// RemoveUnconfirmedTransaction is a no-op for the same reason.
func (x *TxIndex) RemoveUnconfirmedTransaction(id types.Hash) error { return nil }

// Verify checks a transaction's structural validity and signature, and
// rejects a nil sender (a cold wallet). It does not check the sender's
// balance; AccountStore.ApplyBlock fails a block whose sender cannot
// cover amount+fee.
func (x *TxIndex) Verify(txn *tx.Transaction, sender *consensus.Account) error {
	if err := txn.Validate(); err != nil {
		return err
	}
	if err := txn.VerifySignatures(); err != nil {
		return err
	}
	if sender == nil {
		return fmt.Errorf("sender account %x not found", txn.SenderPublicKey)
	}
	return nil
}
