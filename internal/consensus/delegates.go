package consensus

import (
	"encoding/hex"
	"fmt"

	"github.com/forgenet-io/forgenet-chain/config"
	"github.com/forgenet-io/forgenet-chain/internal/wallet"
	"github.com/forgenet-io/forgenet-chain/pkg/crypto"
)

// DelegateKeypair is a loaded, ready-to-sign forging identity: the
// delegate's account and the private key recovered from its encrypted
// forging secret.
type DelegateKeypair struct {
	Account *Account
	Key     *crypto.PrivateKey
}

// LoadDelegates implements component H: it decrypts each configured
// forging secret, derives its keypair, matches it against an on-chain
// delegate account, and returns the subset that forge. Non-delegate
// accounts are skipped silently; any other failure aborts the whole
// sweep (the first failing entry is terminal).
func LoadDelegates(cfg config.ForgingConfig, accounts AccountsProvider, passphrase []byte) (map[string]*DelegateKeypair, error) {
	keypairs := make(map[string]*DelegateKeypair)

	if !cfg.Force {
		return keypairs, nil
	}
	if len(cfg.Secret) == 0 {
		return keypairs, nil
	}

	for _, entry := range cfg.Secret {
		plaintext, err := wallet.Decrypt(entry.EncryptedSecret, entry.IV, entry.Salt, entry.Tag, entry.Version, passphrase)
		if err != nil {
			return nil, fmt.Errorf("Invalid encryptedSecret for publicKey: %s", entry.PublicKey)
		}

		seed, err := wallet.SeedFromMnemonic(string(plaintext), "")
		if err != nil {
			return nil, fmt.Errorf("Invalid encryptedSecret for publicKey: %s", entry.PublicKey)
		}
		master, err := wallet.NewMasterKey(seed)
		if err != nil {
			return nil, fmt.Errorf("Invalid encryptedSecret for publicKey: %s", entry.PublicKey)
		}
		key, err := master.Signer()
		if err != nil {
			return nil, fmt.Errorf("Invalid encryptedSecret for publicKey: %s", entry.PublicKey)
		}

		derivedPubKey := hex.EncodeToString(master.PublicKeyBytes())
		if derivedPubKey != entry.PublicKey {
			return nil, fmt.Errorf("Public keys do not match")
		}

		pubKeyBytes, err := hex.DecodeString(entry.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("Invalid encryptedSecret for publicKey: %s", entry.PublicKey)
		}
		account, err := accounts.GetAccount(pubKeyBytes)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, fmt.Errorf("Account with public key: %s not found", entry.PublicKey)
		}
		if !account.IsDelegate {
			continue
		}

		keypairs[entry.PublicKey] = &DelegateKeypair{Account: account, Key: key}
	}

	return keypairs, nil
}
