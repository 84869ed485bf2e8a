package tx

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	ErrMissingPubKey = errors.New("transaction missing sender public key")
	ErrMissingSig    = errors.New("transaction missing signature")
	ErrInvalidSig    = errors.New("invalid transaction signature")
	ErrZeroAmount    = errors.New("transaction amount is zero")
)

// Validate checks transaction structure: presence of sender key, signature,
// and a non-zero amount. This does not check account state (balance,
// nonce) — that is the accounts collaborator's responsibility.
func (t *Transaction) Validate() error {
	if len(t.SenderPublicKey) == 0 {
		return ErrMissingPubKey
	}
	if len(t.Signature) == 0 {
		return ErrMissingSig
	}
	if t.Amount == 0 {
		return ErrZeroAmount
	}
	return nil
}

// VerifySignatures checks that the transaction's signature is valid for its
// sender public key. Named to mirror the plural verification step the
// processing pipeline runs per transaction.
func (t *Transaction) VerifySignatures() error {
	if !t.VerifySignature() {
		return fmt.Errorf("%w: sender %x", ErrInvalidSig, t.SenderPublicKey)
	}
	return nil
}
