package consensus

import (
	"encoding/hex"
	"testing"

	"github.com/forgenet-io/forgenet-chain/config"
	"github.com/forgenet-io/forgenet-chain/internal/wallet"
	"github.com/forgenet-io/forgenet-chain/pkg/types"
	"github.com/tyler-smith/go-bip39"
)

type fakeAccounts struct {
	byPubKey map[string]*Account
}

func (f *fakeAccounts) GetAccount(publicKey []byte) (*Account, error) {
	return f.byPubKey[hex.EncodeToString(publicKey)], nil
}

const testPassphrase = "forgenet-test-passphrase"

// encryptedEntryFor builds a valid EncryptedEntry encrypting mnemonic
// under testPassphrase, with its publicKey field set to the key the
// mnemonic actually derives.
func encryptedEntryFor(t *testing.T, mnemonic string) config.ForgingEncryptedEntry {
	t.Helper()

	seed, err := wallet.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	master, err := wallet.NewMasterKey(seed)
	if err != nil {
		t.Fatalf("NewMasterKey() error: %v", err)
	}
	pubKey := hex.EncodeToString(master.PublicKeyBytes())

	ciphertext, iv, salt, tag, err := wallet.Encrypt([]byte(mnemonic), []byte(testPassphrase), wallet.SchemeArgon2idXChaCha20Poly1305)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	return config.ForgingEncryptedEntry{
		PublicKey:       pubKey,
		EncryptedSecret: ciphertext,
		IV:              iv,
		Salt:            salt,
		Tag:             tag,
		Version:         wallet.SchemeArgon2idXChaCha20Poly1305,
	}
}

func delegateMnemonic(index byte) string {
	mnemonics := []string{
		"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art",
		"legal winner thank year wave sausage worth useful legal winner thank yellow",
		"letter advice cage absurd amount doctor acoustic avoid letter advice cage above",
	}
	return mnemonics[int(index)%len(mnemonics)]
}

func TestLoadDelegates_ForceFalse(t *testing.T) {
	entry := encryptedEntryFor(t, delegateMnemonic(0))
	cfg := config.ForgingConfig{Force: false, Secret: []config.ForgingEncryptedEntry{entry, entry, entry}}

	kp, err := LoadDelegates(cfg, &fakeAccounts{}, []byte(testPassphrase))
	if err != nil {
		t.Fatalf("LoadDelegates() error: %v", err)
	}
	if len(kp) != 0 {
		t.Errorf("expected no keypairs loaded, got %d", len(kp))
	}
}

func TestLoadDelegates_EmptySecrets(t *testing.T) {
	cfg := config.ForgingConfig{Force: true, Secret: []config.ForgingEncryptedEntry{}}
	kp, err := LoadDelegates(cfg, &fakeAccounts{}, []byte(testPassphrase))
	if err != nil {
		t.Fatalf("LoadDelegates() error: %v", err)
	}
	if len(kp) != 0 {
		t.Errorf("expected no keypairs loaded, got %d", len(kp))
	}
}

func TestLoadDelegates_NilSecrets(t *testing.T) {
	cfg := config.ForgingConfig{Force: true, Secret: nil}
	kp, err := LoadDelegates(cfg, &fakeAccounts{}, []byte(testPassphrase))
	if err != nil {
		t.Fatalf("LoadDelegates() error: %v", err)
	}
	if len(kp) != 0 {
		t.Errorf("expected no keypairs loaded, got %d", len(kp))
	}
}

func TestLoadDelegates_TruncatedSecretFails(t *testing.T) {
	entry := encryptedEntryFor(t, delegateMnemonic(0))
	entry.EncryptedSecret = entry.EncryptedSecret[:len(entry.EncryptedSecret)/2]
	cfg := config.ForgingConfig{Force: true, Secret: []config.ForgingEncryptedEntry{entry}}

	kp, err := LoadDelegates(cfg, &fakeAccounts{}, []byte(testPassphrase))
	if err == nil {
		t.Fatal("expected error for truncated encryptedSecret")
	}
	want := "Invalid encryptedSecret for publicKey: " + entry.PublicKey
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	if len(kp) != 0 {
		t.Errorf("expected no keypairs loaded on failure, got %d", len(kp))
	}
}

func TestLoadDelegates_PublicKeyMismatch(t *testing.T) {
	entry := encryptedEntryFor(t, delegateMnemonic(0))
	other := encryptedEntryFor(t, delegateMnemonic(1))
	entry.PublicKey = other.PublicKey // decrypts fine, derives a different key than claimed
	cfg := config.ForgingConfig{Force: true, Secret: []config.ForgingEncryptedEntry{entry}}

	kp, err := LoadDelegates(cfg, &fakeAccounts{}, []byte(testPassphrase))
	if err == nil || err.Error() != "Public keys do not match" {
		t.Fatalf("error = %v, want \"Public keys do not match\"", err)
	}
	if len(kp) != 0 {
		t.Errorf("expected no keypairs loaded on failure, got %d", len(kp))
	}
}

func TestLoadDelegates_AccountNotFound(t *testing.T) {
	entry := encryptedEntryFor(t, delegateMnemonic(0))
	cfg := config.ForgingConfig{Force: true, Secret: []config.ForgingEncryptedEntry{entry}}

	kp, err := LoadDelegates(cfg, &fakeAccounts{byPubKey: map[string]*Account{}}, []byte(testPassphrase))
	want := "Account with public key: " + entry.PublicKey + " not found"
	if err == nil || err.Error() != want {
		t.Fatalf("error = %v, want %q", err, want)
	}
	if len(kp) != 0 {
		t.Errorf("expected no keypairs loaded on failure, got %d", len(kp))
	}
}

func TestLoadDelegates_NonDelegateAccountSkippedSilently(t *testing.T) {
	entry := encryptedEntryFor(t, delegateMnemonic(0))
	accounts := &fakeAccounts{byPubKey: map[string]*Account{
		entry.PublicKey: {IsDelegate: false, Address: types.Address{0x01}},
	}}
	cfg := config.ForgingConfig{Force: true, Secret: []config.ForgingEncryptedEntry{entry}}

	kp, err := LoadDelegates(cfg, accounts, []byte(testPassphrase))
	if err != nil {
		t.Fatalf("LoadDelegates() error: %v", err)
	}
	if len(kp) != 0 {
		t.Errorf("expected silent skip, got %d keypairs", len(kp))
	}
}

func TestLoadDelegates_ThreeValidDelegates(t *testing.T) {
	entries := make([]config.ForgingEncryptedEntry, 3)
	byPubKey := map[string]*Account{}
	for i := range entries {
		e := encryptedEntryFor(t, delegateMnemonic(byte(i)))
		entries[i] = e
		byPubKey[e.PublicKey] = &Account{IsDelegate: true, Address: types.Address{byte(i + 1)}}
	}
	cfg := config.ForgingConfig{Force: true, Secret: entries}

	kp, err := LoadDelegates(cfg, &fakeAccounts{byPubKey: byPubKey}, []byte(testPassphrase))
	if err != nil {
		t.Fatalf("LoadDelegates() error: %v", err)
	}
	if len(kp) != 3 {
		t.Fatalf("expected 3 keypairs, got %d", len(kp))
	}
}

// TestLoadDelegates_AllGenesisDelegates exercises the full 101-delegate
// slate. Each delegate's own forging-secret mnemonic is generated
// deterministically as a BIP-32 child of the well-known testnet
// mnemonic, rather than hand-written — 101 independently-valid BIP-39
// mnemonics are impractical to author by hand, but deriving each one's
// entropy from a fixed HD path off TestnetMnemonic is itself ordinary,
// reproducible BIP-32/BIP-39 usage.
func TestLoadDelegates_AllGenesisDelegates(t *testing.T) {
	const n = config.NumGenesisDelegates

	seed, err := wallet.SeedFromMnemonic(config.TestnetMnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	root, err := wallet.NewMasterKey(seed)
	if err != nil {
		t.Fatalf("NewMasterKey() error: %v", err)
	}

	entries := make([]config.ForgingEncryptedEntry, 0, n)
	byPubKey := map[string]*Account{}

	for i := 0; i < n; i++ {
		child, err := root.DeriveDelegate(uint32(i))
		if err != nil {
			t.Fatalf("DeriveDelegate(%d) error: %v", i, err)
		}

		mnemonic, err := bip39.NewMnemonic(child.PrivateKeyBytes())
		if err != nil {
			t.Fatalf("NewMnemonic(%d) error: %v", i, err)
		}

		entry := encryptedEntryFor(t, mnemonic)
		entries = append(entries, entry)
		byPubKey[entry.PublicKey] = &Account{IsDelegate: true, Address: types.Address{byte(i), byte(i >> 8)}}
	}

	if len(byPubKey) != n {
		t.Fatalf("expected %d distinct derived delegate keys, got %d", n, len(byPubKey))
	}

	cfg := config.ForgingConfig{Force: true, Secret: entries}
	kp, err := LoadDelegates(cfg, &fakeAccounts{byPubKey: byPubKey}, []byte(testPassphrase))
	if err != nil {
		t.Fatalf("LoadDelegates() error: %v", err)
	}
	if len(kp) != n {
		t.Fatalf("expected %d keypairs loaded, got %d", n, len(kp))
	}
}
