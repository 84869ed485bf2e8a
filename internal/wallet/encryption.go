// Package wallet derives delegate signing keys from encrypted forging
// secrets: AEAD decryption, BIP-39 mnemonic recovery, and BIP-32 HD
// derivation of the final secp256k1 keypair.
package wallet

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// SaltSize is the Argon2id salt length in bytes.
const SaltSize = 32

// SchemeArgon2idXChaCha20Poly1305 is encryption scheme version 1: Argon2id
// key derivation feeding an XChaCha20-Poly1305 AEAD. It is the only scheme
// currently defined; an EncryptedEntry naming any other version fails
// decryption.
const SchemeArgon2idXChaCha20Poly1305 = 1

// EncryptionParams holds Argon2id parameters.
type EncryptionParams struct {
	Memory      uint32 // in KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams returns the Argon2id parameters for scheme version 1.
func DefaultParams() EncryptionParams {
	return EncryptionParams{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 4,
	}
}

func paramsForVersion(version int) (EncryptionParams, error) {
	if version != SchemeArgon2idXChaCha20Poly1305 {
		return EncryptionParams{}, fmt.Errorf("unsupported encryption scheme version: %d", version)
	}
	return DefaultParams(), nil
}

func deriveKey(passphrase, salt []byte, params EncryptionParams) []byte {
	return argon2.IDKey(
		passphrase,
		salt,
		params.Iterations,
		params.Memory,
		params.Parallelism,
		chacha20poly1305.KeySize,
	)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Encrypt seals data under passphrase, returning the hex-encoded
// ciphertext, iv (nonce), salt, and tag fields an EncryptedEntry carries.
func Encrypt(data, passphrase []byte, version int) (ciphertextHex, ivHex, saltHex, tagHex string, err error) {
	params, err := paramsForVersion(version)
	if err != nil {
		return "", "", "", "", err
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", "", "", "", fmt.Errorf("generate salt: %w", err)
	}

	key := deriveKey(passphrase, salt, params)
	defer zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", "", "", "", fmt.Errorf("create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, data, nil)
	overhead := aead.Overhead()
	ciphertext := sealed[:len(sealed)-overhead]
	tag := sealed[len(sealed)-overhead:]

	return hex.EncodeToString(ciphertext), hex.EncodeToString(nonce),
		hex.EncodeToString(salt), hex.EncodeToString(tag), nil
}

// Decrypt reverses Encrypt given the hex-encoded ciphertext/iv/salt/tag
// an EncryptedEntry carries and the scheme named by version. Any
// malformed field, unsupported version, or authentication failure is
// reported as a single decryption error — the caller does not
// distinguish among them (component H surfaces them all identically as
// "Invalid encryptedSecret for publicKey: <pk>").
func Decrypt(ciphertextHex, ivHex, saltHex, tagHex string, version int, passphrase []byte) ([]byte, error) {
	params, err := paramsForVersion(version)
	if err != nil {
		return nil, err
	}

	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	tag, err := hex.DecodeString(tagHex)
	if err != nil {
		return nil, fmt.Errorf("decode tag: %w", err)
	}

	key := deriveKey(passphrase, salt, params)
	defer zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	if len(iv) != aead.NonceSize() {
		return nil, fmt.Errorf("iv must be %d bytes, got %d", aead.NonceSize(), len(iv))
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}
