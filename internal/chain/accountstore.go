package chain

import (
	"encoding/json"
	"fmt"

	"github.com/forgenet-io/forgenet-chain/internal/consensus"
	"github.com/forgenet-io/forgenet-chain/internal/storage"
	"github.com/forgenet-io/forgenet-chain/pkg/block"
	"github.com/forgenet-io/forgenet-chain/pkg/crypto"
	"github.com/forgenet-io/forgenet-chain/pkg/tx"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
)

var accountPrefix = []byte("account:")

// accountRecord is the persisted shape of an account: balance plus the
// delegate flag the keypair loader and slot assignment consult.
type accountRecord struct {
	PublicKey  []byte        `json:"publicKey"`
	Address    types.Address `json:"address"`
	Balance    uint64        `json:"balance"`
	IsDelegate bool          `json:"isDelegate"`
}

func accountKey(address types.Address) []byte {
	return append(append([]byte{}, accountPrefix...), address[:]...)
}

// AccountStore persists account balances and implements consensus's
// AccountsProvider and ChainApplier contracts.
type AccountStore struct {
	db     storage.DB
	blocks *BlockStore
}

// NewAccountStore wraps db. blocks, if non-nil, is advanced by
// ApplyBlock when saveBlock is requested.
func NewAccountStore(db storage.DB, blocks *BlockStore) *AccountStore {
	return &AccountStore{db: db, blocks: blocks}
}

func (s *AccountStore) get(address types.Address) (*accountRecord, error) {
	data, err := s.db.Get(accountKey(address))
	if err != nil {
		return nil, nil // absent: cold wallet
	}
	var rec accountRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", address, err)
	}
	return &rec, nil
}

func (s *AccountStore) put(rec *accountRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	return s.db.Put(accountKey(rec.Address), data)
}

// GetAccount resolves a sender public key to account state, implementing
// consensus.AccountsProvider. It derives the address from the public key
// since accounts are stored keyed by address.
func (s *AccountStore) GetAccount(publicKey []byte) (*consensus.Account, error) {
	hash := crypto.Hash(publicKey)
	var addr types.Address
	copy(addr[:], hash[:types.AddressSize])

	rec, err := s.get(addr)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return &consensus.Account{
		PublicKey:  rec.PublicKey,
		Address:    rec.Address,
		IsDelegate: rec.IsDelegate,
	}, nil
}

// CreditGenesis seeds an account's balance at chain launch.
func (s *AccountStore) CreditGenesis(address types.Address, amount uint64, isDelegate bool) error {
	rec, err := s.get(address)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &accountRecord{Address: address}
	}
	rec.Balance += amount
	rec.IsDelegate = rec.IsDelegate || isDelegate
	return s.put(rec)
}

// ApplyBlock implements consensus.ChainApplier: it debits each
// transaction's sender and credits its recipient, then (when saveBlock)
// advances the persisted chain tip. Transactions are applied strictly in
// block order, matching the pipeline's serial-processing invariant.
func (s *AccountStore) ApplyBlock(blk *block.Block, saveBlock bool) error {
	for _, t := range blk.Transactions {
		if err := s.applyTransaction(t); err != nil {
			return fmt.Errorf("apply transaction: %w", err)
		}
	}

	if saveBlock && s.blocks != nil {
		return s.blocks.SetLastBlock(blk)
	}
	return nil
}

func (s *AccountStore) applyTransaction(t *tx.Transaction) error {
	senderHash := crypto.Hash(t.SenderPublicKey)
	var senderAddr types.Address
	copy(senderAddr[:], senderHash[:types.AddressSize])

	sender, err := s.get(senderAddr)
	if err != nil {
		return err
	}
	if sender == nil {
		sender = &accountRecord{PublicKey: t.SenderPublicKey, Address: senderAddr}
	}
	total := t.Amount + t.Fee
	if sender.Balance < total {
		return fmt.Errorf("insufficient balance for sender %s", senderAddr)
	}
	sender.Balance -= total
	if err := s.put(sender); err != nil {
		return err
	}

	recipient, err := s.get(t.RecipientID)
	if err != nil {
		return err
	}
	if recipient == nil {
		recipient = &accountRecord{Address: t.RecipientID}
	}
	recipient.Balance += t.Amount
	return s.put(recipient)
}
