// Package delegate describes the contract an account delegates its code to.
package delegate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// InitializeMethod is invoked on the upgraded account right after the
// authorization is applied.
const InitializeMethod = "initialize"

// DefaultAddress is a delegate deployed on Sepolia exposing initialize().
const DefaultAddress = "0x3832923A34ac8Fd092ed9941B9302006C16D789f"

const DefaultABI = `[{"type":"function","name":"initialize","inputs":[],"outputs":[],"stateMutability":"pure"}]`

var (
	ErrInvalidAddress = errors.New("invalid delegate contract address")
	ErrInvalidABI     = errors.New("invalid delegate contract ABI")
)

// Target is a delegate contract address together with the ABI text used to
// encode the initialization call.
type Target struct {
	Address string `json:"address"`
	ABI     string `json:"abi"`
}

func Default() Target {
	return Target{Address: DefaultAddress, ABI: DefaultABI}
}

// Contract returns the parsed delegate address.
func (t Target) Contract() (common.Address, error) {
	if !common.IsHexAddress(t.Address) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, t.Address)
	}
	return common.HexToAddress(t.Address), nil
}

// ParseABI parses the ABI text.
func (t Target) ParseABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(t.ABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("%w: %w", ErrInvalidABI, err)
	}
	return parsed, nil
}

// InitializeCalldata encodes a call to the initialize method.
func (t Target) InitializeCalldata() ([]byte, error) {
	parsed, err := t.ParseABI()
	if err != nil {
		return nil, err
	}
	if _, ok := parsed.Methods[InitializeMethod]; !ok {
		return nil, fmt.Errorf("%w: no %s method", ErrInvalidABI, InitializeMethod)
	}
	data, err := parsed.Pack(InitializeMethod)
	if err != nil {
		return nil, fmt.Errorf("packing %s call: %w", InitializeMethod, err)
	}
	return data, nil
}

// Validate checks both the address and the ABI.
func (t Target) Validate() error {
	if _, err := t.Contract(); err != nil {
		return err
	}
	_, err := t.InitializeCalldata()
	return err
}
