package wallet

import (
	"bytes"
	"testing"
)

func testEncrypt(t *testing.T, data, passphrase []byte) (ciphertextHex, ivHex, saltHex, tagHex string) {
	t.Helper()
	ciphertextHex, ivHex, saltHex, tagHex, err := Encrypt(data, passphrase, SchemeArgon2idXChaCha20Poly1305)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	return
}

func TestEncryptDecrypt_Roundtrip(t *testing.T) {
	plaintext := []byte("secret wallet data")
	password := []byte("strong-password-123")

	ciphertextHex, ivHex, saltHex, tagHex := testEncrypt(t, plaintext, password)

	decrypted, err := Decrypt(ciphertextHex, ivHex, saltHex, tagHex, SchemeArgon2idXChaCha20Poly1305, password)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("decrypted = %q, want %q", decrypted, plaintext)
	}
}

func TestEncryptDecrypt_EmptyData(t *testing.T) {
	ciphertextHex, ivHex, saltHex, tagHex := testEncrypt(t, []byte{}, []byte("pass"))

	decrypted, err := Decrypt(ciphertextHex, ivHex, saltHex, tagHex, SchemeArgon2idXChaCha20Poly1305, []byte("pass"))
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if len(decrypted) != 0 {
		t.Errorf("decrypted empty data should be empty, got %d bytes", len(decrypted))
	}
}

func TestEncryptDecrypt_LargeData(t *testing.T) {
	plaintext := make([]byte, 10000)
	for i := range plaintext {
		plaintext[i] = byte(i % 256)
	}

	ciphertextHex, ivHex, saltHex, tagHex := testEncrypt(t, plaintext, []byte("pass"))

	decrypted, err := Decrypt(ciphertextHex, ivHex, saltHex, tagHex, SchemeArgon2idXChaCha20Poly1305, []byte("pass"))
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Error("large data roundtrip failed")
	}
}

func TestDecrypt_WrongPassword(t *testing.T) {
	ciphertextHex, ivHex, saltHex, tagHex := testEncrypt(t, []byte("secret data"), []byte("correct"))

	_, err := Decrypt(ciphertextHex, ivHex, saltHex, tagHex, SchemeArgon2idXChaCha20Poly1305, []byte("wrong"))
	if err == nil {
		t.Error("Decrypt with wrong password should fail")
	}
}

func TestDecrypt_CorruptedTag(t *testing.T) {
	ciphertextHex, ivHex, saltHex, tagHex := testEncrypt(t, []byte("data"), []byte("pass"))

	corrupted := []byte(tagHex)
	corrupted[0] ^= 1
	_, err := Decrypt(ciphertextHex, ivHex, saltHex, string(corrupted), SchemeArgon2idXChaCha20Poly1305, []byte("pass"))
	if err == nil {
		t.Error("Decrypt with corrupted tag should fail")
	}
}

func TestDecrypt_UnsupportedVersion(t *testing.T) {
	ciphertextHex, ivHex, saltHex, tagHex := testEncrypt(t, []byte("data"), []byte("pass"))

	_, err := Decrypt(ciphertextHex, ivHex, saltHex, tagHex, 99, []byte("pass"))
	if err == nil {
		t.Error("Decrypt with unsupported version should fail")
	}
}

func TestDecrypt_MalformedHex(t *testing.T) {
	_, err := Decrypt("not-hex", "00", "00", "00", SchemeArgon2idXChaCha20Poly1305, []byte("pass"))
	if err == nil {
		t.Error("Decrypt with malformed hex should fail")
	}
}

func TestEncrypt_DifferentEachTime(t *testing.T) {
	plaintext := []byte("same data")
	password := []byte("same pass")

	c1, iv1, s1, t1 := testEncrypt(t, plaintext, password)
	c2, iv2, s2, t2 := testEncrypt(t, plaintext, password)

	if c1 == c2 && iv1 == iv2 && s1 == s2 {
		t.Error("encrypting same data twice should produce different ciphertext/iv/salt (random nonce/salt)")
	}

	d1, err := Decrypt(c1, iv1, s1, t1, SchemeArgon2idXChaCha20Poly1305, password)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	d2, err := Decrypt(c2, iv2, s2, t2, SchemeArgon2idXChaCha20Poly1305, password)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if !bytes.Equal(d1, plaintext) || !bytes.Equal(d2, plaintext) {
		t.Error("both encryptions should decrypt to same plaintext")
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if p.Memory != 64*1024 {
		t.Errorf("Memory = %d, want %d", p.Memory, 64*1024)
	}
	if p.Iterations != 3 {
		t.Errorf("Iterations = %d, want 3", p.Iterations)
	}
	if p.Parallelism != 4 {
		t.Errorf("Parallelism = %d, want 4", p.Parallelism)
	}
}

func TestEncryptDecrypt_WalletSeed(t *testing.T) {
	mnemonic := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	seed, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}

	password := []byte("wallet-password-2024!")
	ciphertextHex, ivHex, saltHex, tagHex := testEncrypt(t, seed, password)

	decrypted, err := Decrypt(ciphertextHex, ivHex, saltHex, tagHex, SchemeArgon2idXChaCha20Poly1305, password)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	if !bytes.Equal(decrypted, seed) {
		t.Error("decrypted seed does not match original")
	}
}
