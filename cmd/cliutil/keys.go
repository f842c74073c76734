package cliutil

import (
	"fmt"
	"os"

	"github.com/storacha/sandbox/pkg/burner"
)

// ReadPrivateKeyFile reads a hex encoded private key from path.
func ReadPrivateKeyFile(path string) (burner.Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return burner.Credential{}, fmt.Errorf("reading private key: %w", err)
	}
	cred, err := burner.FromHex(string(data))
	if err != nil {
		return burner.Credential{}, fmt.Errorf("parsing private key from %s: %w", path, err)
	}
	return cred, nil
}

// WritePrivateKeyFile stores the credential's key as hex, readable only by the
// owner.
func WritePrivateKeyFile(path string, cred burner.Credential) error {
	if err := os.WriteFile(path, []byte(cred.PrivateKeyHex()+"\n"), 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	return nil
}

// Credential resolves the burner used by a command: an explicit hex key, a
// key file, or a freshly generated one.
func Credential(hexKey, keyFile string) (burner.Credential, bool, error) {
	switch {
	case hexKey != "" && keyFile != "":
		return burner.Credential{}, false, fmt.Errorf("only one of --private-key and --key-file may be set")
	case hexKey != "":
		cred, err := burner.FromHex(hexKey)
		return cred, false, err
	case keyFile != "":
		cred, err := ReadPrivateKeyFile(keyFile)
		return cred, false, err
	}
	cred, err := burner.Generate()
	return cred, true, err
}
