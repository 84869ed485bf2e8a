package wallet

import (
	"fmt"

	"github.com/forgenet-io/forgenet-chain/pkg/crypto"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
	"github.com/tyler-smith/go-bip32"
)

// BIP-44 derivation path constants. Full path: m/44'/CoinType'/account'/change/index
const (
	PurposeBIP44 = bip32.FirstHardenedChild + 44

	// CoinTypeForgenet is the registered (placeholder) coin type (hardened).
	CoinTypeForgenet = bip32.FirstHardenedChild + 8888

	ChangeExternal = 0
	ChangeInternal = 1
)

// HDKey represents a hierarchical deterministic key (BIP-32).
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master HD key from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DeriveChild derives a child key at the given index. For hardened
// derivation, add bip32.FirstHardenedChild to the index.
func (k *HDKey) DeriveChild(index uint32) (*HDKey, error) {
	child, err := k.key.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("derive child %d: %w", index, err)
	}
	return &HDKey{key: child}, nil
}

// DerivePath derives a key along a sequence of indices.
func (k *HDKey) DerivePath(indices ...uint32) (*HDKey, error) {
	current := k
	for _, idx := range indices {
		child, err := current.DeriveChild(idx)
		if err != nil {
			return nil, err
		}
		current = child
	}
	return current, nil
}

// DeriveDelegate derives the key at m/44'/8888'/<delegateIndex>'/0/0, the
// path a delegate's signing key is recovered from.
func (k *HDKey) DeriveDelegate(delegateIndex uint32) (*HDKey, error) {
	return k.DerivePath(
		PurposeBIP44,
		CoinTypeForgenet,
		bip32.FirstHardenedChild+delegateIndex,
		ChangeExternal,
		0,
	)
}

// PrivateKeyBytes returns the raw 32-byte private key, or nil if this is
// a public-only key.
func (k *HDKey) PrivateKeyBytes() []byte {
	if !k.key.IsPrivate {
		return nil
	}
	raw := k.key.Key
	if len(raw) == 33 && raw[0] == 0 {
		return raw[1:]
	}
	return raw
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *HDKey) PublicKeyBytes() []byte {
	return k.key.PublicKey().Key
}

// Signer returns a crypto.PrivateKey from this HD key's private key.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	priv := k.PrivateKeyBytes()
	if priv == nil {
		return nil, fmt.Errorf("cannot create signer from public key")
	}
	return crypto.PrivateKeyFromBytes(priv)
}

// Address derives a Forgenet address from this key's public key.
func (k *HDKey) Address() types.Address {
	pub := k.PublicKeyBytes()
	hash := crypto.Hash(pub)
	var addr types.Address
	copy(addr[:], hash[:types.AddressSize])
	return addr
}
