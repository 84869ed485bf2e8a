package tx

import (
	"errors"
	"testing"

	"github.com/forgenet-io/forgenet-chain/pkg/crypto"
)

func validSignedTx(t *testing.T) *Transaction {
	t.Helper()
	key, _ := crypto.GenerateKey()
	txn := testTransaction()
	txn.SenderPublicKey = key.PublicKey()
	if err := txn.Sign(key); err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	return txn
}

func TestValidate_Valid(t *testing.T) {
	txn := validSignedTx(t)
	if err := txn.Validate(); err != nil {
		t.Errorf("valid transaction should pass: %v", err)
	}
}

func TestValidate_MissingPubKey(t *testing.T) {
	txn := testTransaction()
	txn.SenderPublicKey = nil
	txn.Signature = []byte("sig")
	err := txn.Validate()
	if !errors.Is(err, ErrMissingPubKey) {
		t.Errorf("expected ErrMissingPubKey, got: %v", err)
	}
}

func TestValidate_MissingSig(t *testing.T) {
	txn := testTransaction()
	txn.Signature = nil
	err := txn.Validate()
	if !errors.Is(err, ErrMissingSig) {
		t.Errorf("expected ErrMissingSig, got: %v", err)
	}
}

func TestValidate_ZeroAmount(t *testing.T) {
	txn := testTransaction()
	txn.Amount = 0
	txn.Signature = []byte("sig")
	err := txn.Validate()
	if !errors.Is(err, ErrZeroAmount) {
		t.Errorf("expected ErrZeroAmount, got: %v", err)
	}
}

func TestVerifySignatures_Valid(t *testing.T) {
	txn := validSignedTx(t)
	if err := txn.VerifySignatures(); err != nil {
		t.Errorf("valid signature should verify: %v", err)
	}
}

func TestVerifySignatures_WrongKey(t *testing.T) {
	key1, _ := crypto.GenerateKey()
	key2, _ := crypto.GenerateKey()

	txn := testTransaction()
	txn.SenderPublicKey = key1.PublicKey()
	_ = txn.Sign(key1)

	txn.SenderPublicKey = key2.PublicKey()

	err := txn.VerifySignatures()
	if !errors.Is(err, ErrInvalidSig) {
		t.Errorf("expected ErrInvalidSig, got: %v", err)
	}
}

func TestVerifySignatures_TamperedAmount(t *testing.T) {
	txn := validSignedTx(t)
	txn.Amount = 9999

	err := txn.VerifySignatures()
	if !errors.Is(err, ErrInvalidSig) {
		t.Errorf("tampered transaction should fail verification: %v", err)
	}
}

func TestVerifySignatures_CorruptedSig(t *testing.T) {
	txn := validSignedTx(t)
	txn.Signature[0] ^= 0xFF

	err := txn.VerifySignatures()
	if !errors.Is(err, ErrInvalidSig) {
		t.Errorf("corrupted signature should fail: %v", err)
	}
}
