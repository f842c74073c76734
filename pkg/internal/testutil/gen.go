package testutil

import (
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/storacha/sandbox/pkg/burner"
)

// RandomCredential generates a burner credential for a test.
func RandomCredential(t *testing.T) burner.Credential {
	return Must(burner.Generate())(t)
}

// RandomAddress returns an address nobody holds the key for.
func RandomAddress(t *testing.T) common.Address {
	var addr common.Address
	_, err := rand.Read(addr[:])
	require.NoError(t, err)
	return addr
}
