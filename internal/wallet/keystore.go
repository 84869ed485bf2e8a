package wallet

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/forgenet-io/forgenet-chain/config"
)

// forgingKeyfile is the on-disk JSON shape of a keystore-backed forging
// secrets file: the EncryptedEntry sequence that populates
// config.ForgingConfig.Secret (the .conf file has no key for it).
type forgingKeyfile struct {
	Secrets []config.ForgingEncryptedEntry `json:"secrets"`
}

// LoadForgingKeyfile reads the keystore-backed forging secrets file at
// path. A missing file is not an error: it returns a nil slice, letting
// callers fall back to (or merge with) config.ForgingConfig.Secret.
func LoadForgingKeyfile(path string) ([]config.ForgingEncryptedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read forging keyfile: %w", err)
	}
	var kf forgingKeyfile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse forging keyfile: %w", err)
	}
	return kf.Secrets, nil
}

// SaveForgingKeyfile writes secrets to path as a keystore-backed forging
// secrets file, mode 0600 since it holds encrypted delegate key material.
func SaveForgingKeyfile(path string, secrets []config.ForgingEncryptedEntry) error {
	data, err := json.MarshalIndent(forgingKeyfile{Secrets: secrets}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal forging keyfile: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write forging keyfile: %w", err)
	}
	return nil
}
