package upgrade

import (
	"sync"
	"time"
)

type Status string

const (
	StatusIdle       Status = ""
	StatusFunding    Status = "funding"
	StatusSubmitting Status = "submitting"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// CanStart reports whether a new upgrade may begin while in status s.
func CanStart(s Status) bool {
	switch s {
	case StatusFunding, StatusSubmitting:
		return false
	default:
		return true
	}
}

type Transition struct {
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
}

// Tracker records the status of a single account's upgrade. It is safe for
// concurrent use.
type Tracker struct {
	mu      sync.RWMutex
	status  Status
	err     error
	history []Transition
}

func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Err is the failure that moved the tracker to StatusError, if any.
func (t *Tracker) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

func (t *Tracker) History() []Transition {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Transition(nil), t.history...)
}

func (t *Tracker) CanStart() bool {
	return CanStart(t.Status())
}

// TryStart moves the tracker to funding unless an upgrade is in flight.
func (t *Tracker) TryStart() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !CanStart(t.status) {
		return false
	}
	t.set(StatusFunding, nil)
	return true
}

func (t *Tracker) Set(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.set(s, nil)
}

func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.set(StatusError, err)
}

func (t *Tracker) set(s Status, err error) {
	t.status = s
	t.err = err
	t.history = append(t.history, Transition{Status: s, At: time.Now()})
}
