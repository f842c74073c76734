package wallet_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/storacha/sandbox/pkg/internal/testutil"
	"github.com/storacha/sandbox/pkg/wallet"
)

func TestImportAndList(t *testing.T) {
	ctx := context.Background()
	w := wallet.NewMemoryWallet()

	cred := testutil.RandomCredential(t)
	_, err := w.ImportCredential(ctx, cred)
	require.NoError(t, err)

	has, err := w.Has(ctx, cred.Address)
	require.NoError(t, err)
	require.True(t, has)

	keys, err := w.List(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, cred.Address, keys[0].Address)

	require.NoError(t, w.Delete(ctx, cred.Address))
	has, err = w.Has(ctx, cred.Address)
	require.NoError(t, err)
	require.False(t, has)

	_, err = w.SignAuthorization(ctx, cred.Address, types.SetCodeAuthorization{})
	require.Error(t, err)
}

func TestSignAuthorization(t *testing.T) {
	ctx := context.Background()
	w := wallet.NewMemoryWallet()

	cred := testutil.RandomCredential(t)
	addr, err := w.ImportCredential(ctx, cred)
	require.NoError(t, err)
	require.Equal(t, cred.Address, addr)

	delegate := common.HexToAddress("0x3832923A34ac8Fd092ed9941B9302006C16D789f")
	auth, err := w.SignAuthorization(ctx, addr, types.SetCodeAuthorization{
		ChainID: *uint256.NewInt(11155111),
		Address: delegate,
		Nonce:   1,
	})
	require.NoError(t, err)
	require.Equal(t, delegate, auth.Address)
	require.EqualValues(t, 1, auth.Nonce)

	authority, err := auth.Authority()
	require.NoError(t, err)
	require.Equal(t, cred.Address, authority)
}

func TestSignTransaction(t *testing.T) {
	ctx := context.Background()
	w := wallet.NewMemoryWallet()

	cred := testutil.RandomCredential(t)
	_, err := w.ImportCredential(ctx, cred)
	require.NoError(t, err)

	chainID := big.NewInt(11155111)
	signer := types.LatestSignerForChainID(chainID)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     0,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       21000,
		To:        &cred.Address,
		Value:     big.NewInt(0),
	})

	signed, err := w.SignTransaction(ctx, cred.Address, signer, tx)
	require.NoError(t, err)

	from, err := types.Sender(signer, signed)
	require.NoError(t, err)
	require.Equal(t, cred.Address, from)
}
