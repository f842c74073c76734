// Package session keeps the per-visitor wizard state of the HTTP API in
// memory. Nothing here outlives the process.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"

	"github.com/storacha/sandbox/pkg/burner"
	"github.com/storacha/sandbox/pkg/delegate"
	"github.com/storacha/sandbox/pkg/upgrade"
	"github.com/storacha/sandbox/pkg/wizard"
)

var log = logging.Logger("session")

const DefaultTTL = time.Hour

var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrUpgradeInProgress = upgrade.ErrUpgradeInProgress
	ErrWrongStep         = errors.New("upgrade can only start from the account step")
)

// Upgrader runs an upgrade whose tracker has already been started.
type Upgrader interface {
	Execute(ctx context.Context, req upgrade.Request) (upgrade.Result, error)
}

// KeyForgetter drops burner keys imported during an upgrade.
type KeyForgetter interface {
	Has(ctx context.Context, addr common.Address) (bool, error)
	Delete(ctx context.Context, addr common.Address) error
}

type Session struct {
	ID        string
	CreatedAt time.Time

	wizard  *wizard.Wizard
	tracker *upgrade.Tracker
	ctx     context.Context
	cancel  context.CancelFunc

	mu       sync.Mutex
	target   delegate.Target
	result   *upgrade.Result
	lastSeen time.Time
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID        string
	CreatedAt time.Time
	Burner    burner.Credential
	Step      wizard.Step
	Progress  int
	Target    delegate.Target
	Status    upgrade.Status
	Error     string
	Result    *upgrade.Result
}

func (s *Session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Step:      s.wizard.Step(),
		Progress:  s.wizard.Progress(),
		Target:    s.target,
		Status:    s.tracker.Status(),
	}
	snap.Burner, _ = s.wizard.Burner()
	if err := s.tracker.Err(); err != nil {
		snap.Error = err.Error()
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Manager struct {
	ctx      context.Context
	upgrader Upgrader
	keys     KeyForgetter
	ttl      time.Duration
	target   delegate.Target
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

type Option func(*Manager)

// WithTTL sets how long an idle session is kept. Zero keeps sessions forever.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithTarget sets the delegate new sessions start with.
func WithTarget(t delegate.Target) Option {
	return func(m *Manager) { m.target = t }
}

func WithKeyForgetter(k KeyForgetter) Option {
	return func(m *Manager) { m.keys = k }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager. Upgrades started through it are canceled
// when ctx is done.
func NewManager(ctx context.Context, upgrader Upgrader, opts ...Option) *Manager {
	m := &Manager{
		ctx:      ctx,
		upgrader: upgrader,
		ttl:      DefaultTTL,
		target:   delegate.Default(),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a session at the burner step with a fresh burner.
func (m *Manager) Create() (Snapshot, error) {
	cred, err := burner.Generate()
	if err != nil {
		return Snapshot{}, err
	}
	now := m.now()
	ctx, cancel := context.WithCancel(m.ctx)
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		wizard:    wizard.New(),
		tracker:   &upgrade.Tracker{},
		ctx:       ctx,
		cancel:    cancel,
		target:    m.target,
		lastSeen:  now,
	}
	s.wizard.SetBurner(cred)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Infow("session created", "session", s.ID, "address", cred.Address)
	return s.snapshot(), nil
}

func (m *Manager) lookup(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.touch(m.now())
	return s, nil
}

func (m *Manager) Get(id string) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// Delete cancels any upgrade in flight and forgets the session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.release(s)
	log.Infow("session deleted", "session", id)
	return nil
}

func (m *Manager) release(s *Session) {
	s.cancel()
	if cred, ok := s.wizard.Burner(); ok {
		m.forget(s.ID, cred.Address)
	}
}

// forget drops a burner key from the signing wallet. Keys that were never
// imported are ignored.
func (m *Manager) forget(sessionID string, addr common.Address) {
	if m.keys == nil {
		return
	}
	ctx := context.Background()
	if has, err := m.keys.Has(ctx, addr); err != nil || !has {
		return
	}
	if err := m.keys.Delete(ctx, addr); err != nil {
		log.Debugw("forgetting burner key", "session", sessionID, "address", addr, "error", err)
	}
}

// Regenerate replaces the session's burner. It is refused while an upgrade
// is running for the current one.
func (m *Manager) Regenerate(id string) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	cred, err := burner.Generate()
	if err != nil {
		return Snapshot{}, err
	}

	// same lock as StartUpgrade, so an upgrade never runs with a replaced key
	s.mu.Lock()
	if !s.tracker.CanStart() {
		s.mu.Unlock()
		return Snapshot{}, ErrUpgradeInProgress
	}
	prev, hadPrev := s.wizard.Burner()
	s.wizard.SetBurner(cred)
	s.mu.Unlock()

	if hadPrev {
		m.forget(id, prev.Address)
	}
	log.Infow("burner regenerated", "session", id, "address", cred.Address)
	return s.snapshot(), nil
}

func (m *Manager) Next(id string) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := s.wizard.Next(); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

func (m *Manager) Back(id string) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := s.wizard.Back(); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// SetTarget changes the delegate used by the next upgrade.
func (m *Manager) SetTarget(id string, t delegate.Target) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	s.target = t
	s.mu.Unlock()
	return s.snapshot(), nil
}

// StartUpgrade launches the upgrade in the background and returns at once.
// Poll Get for progress.
func (m *Manager) StartUpgrade(id string) (Snapshot, error) {
	s, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	if s.wizard.Step() != wizard.StepAccount {
		s.mu.Unlock()
		return Snapshot{}, ErrWrongStep
	}
	cred, ok := s.wizard.Burner()
	if !ok {
		s.mu.Unlock()
		return Snapshot{}, wizard.ErrNoBurner
	}
	if !s.tracker.TryStart() {
		s.mu.Unlock()
		return Snapshot{}, ErrUpgradeInProgress
	}
	s.result = nil
	target := s.target
	s.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		res, err := m.upgrader.Execute(s.ctx, upgrade.Request{
			SessionID:  s.ID,
			Credential: cred,
			Target:     target,
			Tracker:    s.tracker,
		})
		// the key is only needed while the upgrade runs
		m.forget(s.ID, cred.Address)
		s.mu.Lock()
		s.result = &res
		s.mu.Unlock()
		if err != nil {
			return
		}
		if err := s.wizard.Complete(); err != nil {
			log.Warnw("completing wizard", "session", s.ID, "error", err)
		}
	}()

	return s.snapshot(), nil
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) && s.tracker.CanStart() {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.release(s)
		log.Infow("session expired", "session", s.ID)
	}
	return len(expired)
}

// Run sweeps expired sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}
	interval := m.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Wait blocks until background upgrades have returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}
