// Package burner creates disposable externally owned accounts. A burner
// credential lives only as long as the process or session that created it.
package burner

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidPrivateKey = errors.New("invalid private key")

// Credential is a private key and the address derived from it.
type Credential struct {
	PrivateKey *ecdsa.PrivateKey
	Address    common.Address
}

// Generate creates a new random credential.
func Generate() (Credential, error) {
	sk, err := crypto.GenerateKey()
	if err != nil {
		return Credential{}, fmt.Errorf("generating key: %w", err)
	}
	return FromKey(sk), nil
}

// FromKey derives the credential for an existing key.
func FromKey(sk *ecdsa.PrivateKey) Credential {
	return Credential{
		PrivateKey: sk,
		Address:    crypto.PubkeyToAddress(sk.PublicKey),
	}
}

// FromHex parses a hex encoded private key, with or without the 0x prefix.
func FromHex(s string) (Credential, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	sk, err := crypto.HexToECDSA(s)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}
	return FromKey(sk), nil
}

// FromBytes parses a raw 32 byte private key.
func FromBytes(b []byte) (Credential, error) {
	sk, err := crypto.ToECDSA(b)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}
	return FromKey(sk), nil
}

// Bytes returns the raw private key.
func (c Credential) Bytes() []byte {
	return crypto.FromECDSA(c.PrivateKey)
}

// PrivateKeyHex renders the private key as 0x prefixed hex.
func (c Credential) PrivateKeyHex() string {
	return hexutil.Encode(c.Bytes())
}

// String renders the address only; the key is never printed implicitly.
func (c Credential) String() string {
	return c.Address.Hex()
}
