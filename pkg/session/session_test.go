package session_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/storacha/sandbox/pkg/delegate"
	"github.com/storacha/sandbox/pkg/session"
	"github.com/storacha/sandbox/pkg/upgrade"
	"github.com/storacha/sandbox/pkg/wallet"
	"github.com/storacha/sandbox/pkg/wizard"
)

type blockingUpgrader struct {
	release chan error
	started chan upgrade.Request
}

func newBlockingUpgrader() *blockingUpgrader {
	return &blockingUpgrader{release: make(chan error), started: make(chan upgrade.Request, 1)}
}

func (u *blockingUpgrader) Execute(ctx context.Context, req upgrade.Request) (upgrade.Result, error) {
	u.started <- req
	var err error
	select {
	case err = <-u.release:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		req.Tracker.Fail(err)
		return upgrade.Result{}, err
	}
	req.Tracker.Set(upgrade.StatusDone)
	return upgrade.Result{Account: req.Credential.Address, Hash: common.HexToHash("0x01")}, nil
}

// forgetter behaves as if it held every key it has not deleted yet.
type forgetter struct {
	mu      sync.Mutex
	deleted []common.Address
}

func (f *forgetter) Has(_ context.Context, addr common.Address) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !slices.Contains(f.deleted, addr), nil
}

func (f *forgetter) Delete(_ context.Context, addr common.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, addr)
	return nil
}

func toAccount(t *testing.T, m *session.Manager, id string) {
	t.Helper()
	_, err := m.Next(id)
	require.NoError(t, err)
	snap, err := m.Next(id)
	require.NoError(t, err)
	require.Equal(t, wizard.StepAccount, snap.Step)
}

func TestCreateAndNavigate(t *testing.T) {
	m := session.NewManager(context.Background(), newBlockingUpgrader())

	snap, err := m.Create()
	require.NoError(t, err)
	require.NotEmpty(t, snap.ID)
	require.Equal(t, wizard.StepBurner, snap.Step)
	require.Equal(t, 1, snap.Progress)
	require.Equal(t, delegate.Default(), snap.Target)
	require.True(t, common.IsHexAddress(snap.Burner.Address.Hex()))

	regen, err := m.Regenerate(snap.ID)
	require.NoError(t, err)
	require.NotEqual(t, snap.Burner.Address, regen.Burner.Address)

	next, err := m.Next(snap.ID)
	require.NoError(t, err)
	require.Equal(t, wizard.StepRecovery, next.Step)
	require.Equal(t, 33, next.Progress)

	back, err := m.Back(snap.ID)
	require.NoError(t, err)
	require.Equal(t, wizard.StepBurner, back.Step)

	_, err = m.Back(snap.ID)
	require.ErrorIs(t, err, wizard.ErrNoTransition)

	target := delegate.Target{Address: "0x0000000000000000000000000000000000000001", ABI: delegate.DefaultABI}
	got, err := m.SetTarget(snap.ID, target)
	require.NoError(t, err)
	require.Equal(t, target, got.Target)

	_, err = m.Get("missing")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestStartUpgrade(t *testing.T) {
	u := newBlockingUpgrader()
	m := session.NewManager(context.Background(), u)

	snap, err := m.Create()
	require.NoError(t, err)

	_, err = m.StartUpgrade(snap.ID)
	require.ErrorIs(t, err, session.ErrWrongStep)

	toAccount(t, m, snap.ID)

	started, err := m.StartUpgrade(snap.ID)
	require.NoError(t, err)
	require.Equal(t, upgrade.StatusFunding, started.Status)

	req := <-u.started
	require.Equal(t, snap.Burner.Address, req.Credential.Address)
	require.Equal(t, snap.ID, req.SessionID)

	_, err = m.StartUpgrade(snap.ID)
	require.ErrorIs(t, err, session.ErrUpgradeInProgress)
	_, err = m.Regenerate(snap.ID)
	require.ErrorIs(t, err, session.ErrUpgradeInProgress)

	u.release <- nil
	m.Wait()

	done, err := m.Get(snap.ID)
	require.NoError(t, err)
	require.Equal(t, upgrade.StatusDone, done.Status)
	require.Equal(t, wizard.StepDone, done.Step)
	require.Equal(t, 100, done.Progress)
	require.NotNil(t, done.Result)
	require.Equal(t, common.HexToHash("0x01"), done.Result.Hash)
}

func TestStartUpgradeFailure(t *testing.T) {
	u := newBlockingUpgrader()
	m := session.NewManager(context.Background(), u)

	snap, err := m.Create()
	require.NoError(t, err)
	toAccount(t, m, snap.ID)

	_, err = m.StartUpgrade(snap.ID)
	require.NoError(t, err)
	<-u.started
	u.release <- errors.New("funding failed")
	m.Wait()

	failed, err := m.Get(snap.ID)
	require.NoError(t, err)
	require.Equal(t, upgrade.StatusError, failed.Status)
	require.Equal(t, "funding failed", failed.Error)
	require.Equal(t, wizard.StepAccount, failed.Step)

	// a failed upgrade can be retried
	_, err = m.StartUpgrade(snap.ID)
	require.NoError(t, err)
	<-u.started
	u.release <- nil
	m.Wait()
}

func TestDeleteCancelsUpgrade(t *testing.T) {
	u := newBlockingUpgrader()
	f := &forgetter{}
	m := session.NewManager(context.Background(), u, session.WithKeyForgetter(f))

	snap, err := m.Create()
	require.NoError(t, err)
	toAccount(t, m, snap.ID)
	_, err = m.StartUpgrade(snap.ID)
	require.NoError(t, err)
	<-u.started

	require.NoError(t, m.Delete(snap.ID))
	m.Wait()

	f.mu.Lock()
	require.NotEmpty(t, f.deleted)
	for _, addr := range f.deleted {
		require.Equal(t, snap.Burner.Address, addr)
	}
	f.mu.Unlock()
	_, err = m.Get(snap.ID)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
	require.ErrorIs(t, m.Delete(snap.ID), session.ErrSessionNotFound)
}

func TestSweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := session.NewManager(context.Background(), newBlockingUpgrader(),
		session.WithTTL(time.Hour),
		session.WithClock(clock),
	)

	a, err := m.Create()
	require.NoError(t, err)
	now = now.Add(30 * time.Minute)
	b, err := m.Create()
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	require.Equal(t, 1, m.Sweep())
	require.Equal(t, 1, m.Len())

	_, err = m.Get(a.ID)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = m.Get(b.ID)
	require.NoError(t, err)
}

// importingUpgrader imports the burner into the wallet the way the upgrade
// service does and fails afterwards.
type importingUpgrader struct {
	wallet *wallet.LocalWallet
}

func (u importingUpgrader) Execute(ctx context.Context, req upgrade.Request) (upgrade.Result, error) {
	if _, err := u.wallet.ImportCredential(ctx, req.Credential); err != nil {
		return upgrade.Result{}, err
	}
	err := errors.New("relayer unavailable")
	req.Tracker.Fail(err)
	return upgrade.Result{}, err
}

func TestBurnerKeysDoNotOutliveSession(t *testing.T) {
	ctx := context.Background()
	w := wallet.NewMemoryWallet()
	m := session.NewManager(ctx, importingUpgrader{wallet: w}, session.WithKeyForgetter(w))

	snap, err := m.Create()
	require.NoError(t, err)
	first := snap.Burner.Address
	toAccount(t, m, snap.ID)

	_, err = m.StartUpgrade(snap.ID)
	require.NoError(t, err)
	m.Wait()

	has, err := w.Has(ctx, first)
	require.NoError(t, err)
	require.False(t, has)

	regen, err := m.Regenerate(snap.ID)
	require.NoError(t, err)
	require.NotEqual(t, first, regen.Burner.Address)

	require.NoError(t, m.Delete(snap.ID))
	keys, err := w.List(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestRegenerateForgetsPreviousKey(t *testing.T) {
	f := &forgetter{}
	m := session.NewManager(context.Background(), newBlockingUpgrader(), session.WithKeyForgetter(f))

	snap, err := m.Create()
	require.NoError(t, err)
	_, err = m.Regenerate(snap.ID)
	require.NoError(t, err)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Equal(t, []common.Address{snap.Burner.Address}, f.deleted)
}

func TestForgetSkipsKeysNotHeld(t *testing.T) {
	f := &forgetter{}
	m := session.NewManager(context.Background(), newBlockingUpgrader(), session.WithKeyForgetter(f))
	snap, err := m.Create()
	require.NoError(t, err)

	// the wallet never saw this burner
	f.mu.Lock()
	f.deleted = append(f.deleted, snap.Burner.Address)
	f.mu.Unlock()

	require.NoError(t, m.Delete(snap.ID))
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.deleted, 1)
}

func TestRegenerateAndStartUpgradeAgree(t *testing.T) {
	u := newBlockingUpgrader()
	m := session.NewManager(context.Background(), u)

	snap, err := m.Create()
	require.NoError(t, err)
	toAccount(t, m, snap.ID)

	var wg sync.WaitGroup
	wg.Add(2)
	var regenErr, startErr error
	go func() {
		defer wg.Done()
		_, regenErr = m.Regenerate(snap.ID)
	}()
	go func() {
		defer wg.Done()
		_, startErr = m.StartUpgrade(snap.ID)
	}()
	wg.Wait()
	require.NoError(t, startErr)

	req := <-u.started
	current, err := m.Get(snap.ID)
	require.NoError(t, err)
	// either the regeneration was refused or it happened before the start
	if regenErr != nil {
		require.ErrorIs(t, regenErr, session.ErrUpgradeInProgress)
	}
	require.Equal(t, current.Burner.Address, req.Credential.Address)

	u.release <- nil
	m.Wait()
}
