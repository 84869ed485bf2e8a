package block

import (
	"errors"
	"testing"

	"github.com/forgenet-io/forgenet-chain/pkg/crypto"
	"github.com/forgenet-io/forgenet-chain/pkg/tx"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
)

func testSignedTx(t *testing.T) *tx.Transaction {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	txn := &tx.Transaction{
		Type:            tx.TransferType,
		Timestamp:       1000,
		SenderPublicKey: key.PublicKey(),
		RecipientID:     types.Address{0xaa, 0xbb},
		Amount:          5000,
		Fee:             10,
	}
	if err := txn.Sign(key); err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	return txn
}

func validBlock(t *testing.T) *Block {
	t.Helper()

	txn := testSignedTx(t)
	txs := []*tx.Transaction{txn}
	payloadHash := ComputePayloadHash(txs)

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	header := &Header{
		Version:              CurrentVersion,
		Height:               1,
		Timestamp:            1700000000,
		Reward:               500000000,
		PayloadHash:          payloadHash,
		PayloadLength:        uint32(len(txn.SigningBytes())),
		NumberOfTransactions: uint32(len(txs)),
		TotalAmount:          txn.Amount,
		TotalFee:             txn.Fee,
		GeneratorPublicKey:   key.PublicKey(),
	}
	if err := header.Sign(key); err != nil {
		t.Fatalf("Sign() error: %v", err)
	}

	return NewBlock(header, txs)
}

func TestBlock_Validate_Valid(t *testing.T) {
	blk := validBlock(t)
	if err := blk.Validate(); err != nil {
		t.Errorf("valid block should pass: %v", err)
	}
}

func TestBlock_Validate_NilBlock(t *testing.T) {
	var blk *Block
	if err := blk.Validate(); !errors.Is(err, ErrNilBlock) {
		t.Errorf("expected ErrNilBlock, got: %v", err)
	}
}

func TestBlock_Validate_NilHeader(t *testing.T) {
	blk := &Block{Header: nil}
	err := blk.Validate()
	if !errors.Is(err, ErrNilHeader) {
		t.Errorf("expected ErrNilHeader, got: %v", err)
	}
}

func TestBlock_Validate_MissingKey(t *testing.T) {
	blk := validBlock(t)
	blk.Header.GeneratorPublicKey = nil
	err := blk.Validate()
	if !errors.Is(err, ErrMissingKey) {
		t.Errorf("expected ErrMissingKey, got: %v", err)
	}
}

func TestBlock_Validate_MissingSig(t *testing.T) {
	blk := validBlock(t)
	blk.Header.Signature = nil
	err := blk.Validate()
	if !errors.Is(err, ErrMissingSig) {
		t.Errorf("expected ErrMissingSig, got: %v", err)
	}
}

func TestBlock_Validate_ZeroTimestamp(t *testing.T) {
	blk := validBlock(t)
	blk.Header.Timestamp = 0
	err := blk.Validate()
	if !errors.Is(err, ErrZeroTimestamp) {
		t.Errorf("expected ErrZeroTimestamp, got: %v", err)
	}
}

func TestBlock_Hash(t *testing.T) {
	blk := validBlock(t)
	h := blk.Hash()
	if h.IsZero() {
		t.Error("Block.Hash() should not be zero")
	}

	blk2 := &Block{}
	if !blk2.Hash().IsZero() {
		t.Error("Block.Hash() with nil header should be zero")
	}
}

func TestComputePayloadHash_Deterministic(t *testing.T) {
	txn := testSignedTx(t)
	txs := []*tx.Transaction{txn}

	h1 := ComputePayloadHash(txs)
	h2 := ComputePayloadHash(txs)
	if h1 != h2 {
		t.Error("ComputePayloadHash should be deterministic")
	}
	if h1.IsZero() {
		t.Error("ComputePayloadHash should not be zero for non-empty payload")
	}
}

func TestComputePayloadHash_Empty(t *testing.T) {
	h := ComputePayloadHash(nil)
	if h.IsZero() {
		t.Error(`ComputePayloadHash of empty payload should be sha256(""), not zero`)
	}
}

func TestComputePayloadHash_ChangesWithContent(t *testing.T) {
	txn1 := testSignedTx(t)
	txn2 := testSignedTx(t)
	txn2.Amount = 99999

	h1 := ComputePayloadHash([]*tx.Transaction{txn1})
	h2 := ComputePayloadHash([]*tx.Transaction{txn2})
	if h1 == h2 {
		t.Error("different payloads should hash differently")
	}
}
