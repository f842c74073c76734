package keystore

import (
	"context"
	"fmt"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	"github.com/ipfs/go-datastore/query"
	dssync "github.com/ipfs/go-datastore/sync"
)

const (
	DatastorePrefix = "keystore/"
)

// KeyInfo is used for storing keys in KeyStore
type KeyInfo struct {
	PrivateKey []byte
}

// KeyStore is used for storing secret keys
type KeyStore interface {
	// Get gets a key out of keystore and returns KeyInfo corresponding to named key
	Get(context.Context, string) (KeyInfo, error)
	// Put saves a key info under given name
	Put(context.Context, string, KeyInfo) error
	// Has reports whether a key exists under the given name
	Has(context.Context, string) (bool, error)
	// Delete removes the named key
	Delete(context.Context, string) error
	// List returns every stored key
	List(context.Context) ([]KeyInfo, error)
}

type keyStore struct {
	ds datastore.Datastore
}

func NewKeyStore(ds datastore.Datastore) (KeyStore, error) {
	ks := namespace.Wrap(ds, datastore.NewKey(DatastorePrefix))
	return &keyStore{ds: ks}, nil
}

// NewMemoryKeyStore returns a keystore that never touches the disk. Burner
// keys are held here and disappear with the process.
func NewMemoryKeyStore() KeyStore {
	ks, _ := NewKeyStore(dssync.MutexWrap(datastore.NewMapDatastore()))
	return ks
}

func (k *keyStore) Get(ctx context.Context, s string) (KeyInfo, error) {
	res, err := k.ds.Get(ctx, datastore.NewKey(s))
	if err != nil {
		return KeyInfo{}, fmt.Errorf("getting key (%s): %w", s, err)
	}
	return KeyInfo{PrivateKey: res}, nil
}

func (k *keyStore) Put(ctx context.Context, s string, info KeyInfo) error {
	if err := k.ds.Put(ctx, datastore.NewKey(s), info.PrivateKey); err != nil {
		return fmt.Errorf("putting key (%s): %w", s, err)
	}
	return nil
}

func (k *keyStore) Has(ctx context.Context, s string) (bool, error) {
	has, err := k.ds.Has(ctx, datastore.NewKey(s))
	if err != nil {
		return false, fmt.Errorf("checking key (%s): %w", s, err)
	}
	return has, nil
}

func (k *keyStore) Delete(ctx context.Context, s string) error {
	if err := k.ds.Delete(ctx, datastore.NewKey(s)); err != nil {
		return fmt.Errorf("deleting key (%s): %w", s, err)
	}
	return nil
}

func (k *keyStore) List(ctx context.Context) ([]KeyInfo, error) {
	results, err := k.ds.Query(ctx, query.Query{})
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	entries, err := results.Rest()
	if err != nil {
		return nil, fmt.Errorf("reading keys: %w", err)
	}
	out := make([]KeyInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, KeyInfo{PrivateKey: e.Value})
	}
	return out, nil
}
