package block

import (
	"crypto/sha256"
	"errors"

	"github.com/forgenet-io/forgenet-chain/pkg/tx"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
)

// Structural validation errors.
var (
	ErrNilHeader     = errors.New("block has nil header")
	ErrNilBlock      = errors.New("nil block")
	ErrMissingSig    = errors.New("block missing generator signature")
	ErrMissingKey    = errors.New("block missing generator public key")
	ErrZeroTimestamp = errors.New("block timestamp is zero")
)

// Validate checks block structure: a non-nil header, a present generator
// key and signature, and a non-zero timestamp. This is codec-level
// sanity, not the consensus predicates in the receipt/process verifiers.
func (b *Block) Validate() error {
	if b == nil {
		return ErrNilBlock
	}
	if b.Header == nil {
		return ErrNilHeader
	}
	if len(b.Header.GeneratorPublicKey) == 0 {
		return ErrMissingKey
	}
	if len(b.Header.Signature) == 0 {
		return ErrMissingSig
	}
	if b.Header.Timestamp == 0 {
		return ErrZeroTimestamp
	}
	return nil
}

// Hash returns the block id (the header's hash).
func (b *Block) Hash() types.Hash {
	if b.Header == nil {
		return types.Hash{}
	}
	return b.Header.Hash()
}

// ComputePayloadHash computes sha256(concat(canonicalBytes(tx) for tx in
// transactions)), the hash invariant 4 requires payloadHash to equal.
// Unlike id derivation (BLAKE3, free choice), this algorithm is mandated
// by the protocol and must not vary between implementations.
func ComputePayloadHash(transactions []*tx.Transaction) types.Hash {
	h := sha256.New()
	for _, t := range transactions {
		h.Write(t.SigningBytes())
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}
