// Package tx defines the account-based transaction type and its canonical
// byte encoding.
package tx

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"github.com/forgenet-io/forgenet-chain/pkg/crypto"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
)

// TransferType is the only transaction type the core currently recognises.
// Additional types (vote, delegate registration, ...) extend this constant
// set without changing the signing/id scheme.
const TransferType uint8 = 0

// Transaction is a single sender/amount/fee account transaction, the unit
// a block's payload is built from.
type Transaction struct {
	Type            uint8         `json:"type"`
	Timestamp       uint64        `json:"timestamp"`
	SenderPublicKey []byte        `json:"senderPublicKey"`
	RecipientID     types.Address `json:"recipientId"`
	Amount          uint64        `json:"amount"`
	Fee             uint64        `json:"fee"`
	Signature       []byte        `json:"signature"`

	// BlockID is stamped by the processing pipeline once a transaction is
	// confirmed into a block. It is not part of the signed payload.
	BlockID types.Hash `json:"blockId,omitempty"`
}

// transactionJSON shadows Transaction for hex-encoded byte fields.
type transactionJSON struct {
	Type            uint8         `json:"type"`
	Timestamp       uint64        `json:"timestamp"`
	SenderPublicKey string        `json:"senderPublicKey"`
	RecipientID     types.Address `json:"recipientId"`
	Amount          uint64        `json:"amount"`
	Fee             uint64        `json:"fee"`
	Signature       string        `json:"signature,omitempty"`
	BlockID         types.Hash    `json:"blockId,omitempty"`
}

// MarshalJSON encodes the transaction with hex-encoded public key and signature.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	j := transactionJSON{
		Type:        t.Type,
		Timestamp:   t.Timestamp,
		RecipientID: t.RecipientID,
		Amount:      t.Amount,
		Fee:         t.Fee,
		BlockID:     t.BlockID,
	}
	if t.SenderPublicKey != nil {
		j.SenderPublicKey = hex.EncodeToString(t.SenderPublicKey)
	}
	if t.Signature != nil {
		j.Signature = hex.EncodeToString(t.Signature)
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes a transaction with hex-encoded public key and signature.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var j transactionJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	t.Type = j.Type
	t.Timestamp = j.Timestamp
	t.RecipientID = j.RecipientID
	t.Amount = j.Amount
	t.Fee = j.Fee
	t.BlockID = j.BlockID
	if j.SenderPublicKey != "" {
		b, err := hex.DecodeString(j.SenderPublicKey)
		if err != nil {
			return err
		}
		t.SenderPublicKey = b
	}
	if j.Signature != "" {
		b, err := hex.DecodeString(j.Signature)
		if err != nil {
			return err
		}
		t.Signature = b
	}
	return nil
}

// SigningBytes returns the canonical bytes a transaction's id and signature
// are derived from. Excludes Signature itself so the signature can be
// verified over these bytes.
// Format: type(1) | timestamp(8) | sender_pubkey(33) | recipient(20) | amount(8) | fee(8)
func (t *Transaction) SigningBytes() []byte {
	buf := make([]byte, 0, 1+8+33+20+8+8)
	buf = append(buf, t.Type)
	buf = binary.LittleEndian.AppendUint64(buf, t.Timestamp)
	buf = append(buf, t.SenderPublicKey...)
	buf = append(buf, t.RecipientID[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, t.Amount)
	buf = binary.LittleEndian.AppendUint64(buf, t.Fee)
	return buf
}

// Hash computes the transaction id (BLAKE3 hash of the signing bytes).
func (t *Transaction) Hash() types.Hash {
	return crypto.Hash(t.SigningBytes())
}

// ID recomputes the transaction id from its canonical bytes.
func (t *Transaction) ID() types.Hash {
	return t.Hash()
}

// Sign signs the transaction's signing-bytes hash with the given private
// key and stores the resulting signature.
func (t *Transaction) Sign(key *crypto.PrivateKey) error {
	h := t.Hash()
	sig, err := key.Sign(h[:])
	if err != nil {
		return err
	}
	t.Signature = sig
	return nil
}

// VerifySignature checks the transaction's signature against its sender
// public key and signing bytes.
func (t *Transaction) VerifySignature() bool {
	if len(t.SenderPublicKey) == 0 || len(t.Signature) == 0 {
		return false
	}
	h := t.Hash()
	return crypto.VerifySignature(h[:], t.Signature, t.SenderPublicKey)
}
