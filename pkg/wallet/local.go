package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/storacha/sandbox/pkg/burner"
	"github.com/storacha/sandbox/pkg/store/keystore"
)

const KNamePrefix = "wallet-"

var ErrKeystoreNotInitialized = errors.New("keystore not initialized")

type Key struct {
	keystore.KeyInfo

	PublicKey []byte
	Address   common.Address
}

func NewKey(keyinfo keystore.KeyInfo) (*Key, error) {
	k := &Key{
		KeyInfo: keyinfo,
	}

	sk, err := crypto.ToECDSA(keyinfo.PrivateKey)
	if err != nil {
		return nil, err
	}
	k.PublicKey = crypto.FromECDSAPub(&sk.PublicKey)
	k.Address = crypto.PubkeyToAddress(sk.PublicKey)

	return k, nil
}

// Wallet holds burner keys and signs on their behalf.
type Wallet interface {
	Import(ctx context.Context, ki *keystore.KeyInfo) (common.Address, error)
	Has(ctx context.Context, addr common.Address) (bool, error)
	Delete(ctx context.Context, addr common.Address) error
	SignTransaction(ctx context.Context, addr common.Address, signer types.Signer, tx *types.Transaction) (*types.Transaction, error)
	SignAuthorization(ctx context.Context, addr common.Address, auth types.SetCodeAuthorization) (types.SetCodeAuthorization, error)
}

var _ Wallet = (*LocalWallet)(nil)

type LocalWallet struct {
	keys     map[common.Address]*Key
	keystore keystore.KeyStore
	keysMu   sync.Mutex
}

func NewWallet(keystore keystore.KeyStore) (*LocalWallet, error) {
	w := &LocalWallet{
		keys:     make(map[common.Address]*Key),
		keystore: keystore,
	}

	return w, nil
}

// NewMemoryWallet returns a wallet whose keys are never persisted.
func NewMemoryWallet() *LocalWallet {
	w, _ := NewWallet(keystore.NewMemoryKeyStore())
	return w
}

func (w *LocalWallet) SignTransaction(ctx context.Context, addr common.Address, signer types.Signer, tx *types.Transaction) (*types.Transaction, error) {
	k, err := w.findKey(ctx, addr)
	if err != nil {
		return nil, err
	}
	privateKey, err := crypto.ToECDSA(k.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("converting private key: %w", err)
	}
	return types.SignTx(tx, signer, privateKey)
}

// SignAuthorization signs an EIP-7702 authorization delegating the code of
// addr to auth.Address.
func (w *LocalWallet) SignAuthorization(ctx context.Context, addr common.Address, auth types.SetCodeAuthorization) (types.SetCodeAuthorization, error) {
	k, err := w.findKey(ctx, addr)
	if err != nil {
		return types.SetCodeAuthorization{}, err
	}
	privateKey, err := crypto.ToECDSA(k.PrivateKey)
	if err != nil {
		return types.SetCodeAuthorization{}, fmt.Errorf("converting private key: %w", err)
	}
	signed, err := types.SignSetCode(privateKey, auth)
	if err != nil {
		return types.SetCodeAuthorization{}, fmt.Errorf("signing authorization: %w", err)
	}
	return signed, nil
}

func (w *LocalWallet) Import(ctx context.Context, ki *keystore.KeyInfo) (common.Address, error) {
	w.keysMu.Lock()
	defer w.keysMu.Unlock()

	if w.keystore == nil {
		return common.Address{}, ErrKeystoreNotInitialized
	}

	k, err := NewKey(*ki)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to make key: %w", err)
	}

	if err := w.keystore.Put(ctx, KNamePrefix+k.Address.String(), k.KeyInfo); err != nil {
		return common.Address{}, fmt.Errorf("saving to keystore: %w", err)
	}
	w.keys[k.Address] = k

	return k.Address, nil
}

// ImportCredential stores a burner credential.
func (w *LocalWallet) ImportCredential(ctx context.Context, cred burner.Credential) (common.Address, error) {
	return w.Import(ctx, &keystore.KeyInfo{PrivateKey: cred.Bytes()})
}

// List returns every key in the wallet.
func (w *LocalWallet) List(ctx context.Context) ([]*Key, error) {
	w.keysMu.Lock()
	defer w.keysMu.Unlock()

	kis, err := w.keystore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	out := make([]*Key, len(kis))
	for i, k := range kis {
		out[i], err = NewKey(k)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Has reports whether the wallet holds a key for addr.
func (w *LocalWallet) Has(ctx context.Context, addr common.Address) (bool, error) {
	w.keysMu.Lock()
	defer w.keysMu.Unlock()

	return w.keystore.Has(ctx, KNamePrefix+addr.String())
}

// Delete forgets the key for addr.
func (w *LocalWallet) Delete(ctx context.Context, addr common.Address) error {
	w.keysMu.Lock()
	defer w.keysMu.Unlock()

	delete(w.keys, addr)
	return w.keystore.Delete(ctx, KNamePrefix+addr.String())
}

func (w *LocalWallet) findKey(ctx context.Context, addr common.Address) (*Key, error) {
	w.keysMu.Lock()
	defer w.keysMu.Unlock()

	k, ok := w.keys[addr]
	if ok {
		return k, nil
	}
	if w.keystore == nil {
		return nil, ErrKeystoreNotInitialized
	}

	ki, err := w.keystore.Get(ctx, KNamePrefix+addr.String())
	if err != nil {
		return nil, fmt.Errorf("key not found for address (%s): %w", addr, err)
	}

	k, err = NewKey(ki)
	if err != nil {
		return nil, fmt.Errorf("decoding from keystore for address (%s): %w", addr, err)
	}

	w.keys[k.Address] = k

	return k, nil
}
