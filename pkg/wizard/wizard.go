// Package wizard drives the linear burner, recovery, account, done flow.
package wizard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/storacha/sandbox/pkg/burner"
)

type Step string

const (
	StepBurner   Step = "burner"
	StepRecovery Step = "recovery"
	StepAccount  Step = "account"
	StepDone     Step = "done"
)

var Steps = []Step{StepBurner, StepRecovery, StepAccount, StepDone}

var progress = map[Step]int{
	StepBurner:   1,
	StepRecovery: 33,
	StepAccount:  66,
	StepDone:     100,
}

var (
	ErrNoTransition = errors.New("no transition from step")
	ErrNoBurner     = errors.New("no burner generated")
)

// Progress is the completion percentage shown for a step.
func Progress(s Step) int {
	return progress[s]
}

func ParseStep(s string) (Step, error) {
	for _, st := range Steps {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown step %q", s)
}

func index(s Step) int {
	for i, st := range Steps {
		if st == s {
			return i
		}
	}
	return -1
}

// Wizard is safe for concurrent use.
type Wizard struct {
	mu     sync.RWMutex
	step   Step
	burner *burner.Credential
}

func New() *Wizard {
	return &Wizard{step: StepBurner}
}

func (w *Wizard) Step() Step {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.step
}

func (w *Wizard) Progress() int {
	return Progress(w.Step())
}

// Next advances one step. Leaving the burner step requires a burner.
func (w *Wizard) Next() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := index(w.step)
	if i == len(Steps)-1 {
		return w.step, fmt.Errorf("%w %s", ErrNoTransition, w.step)
	}
	if w.step == StepBurner && w.burner == nil {
		return w.step, ErrNoBurner
	}
	w.step = Steps[i+1]
	return w.step, nil
}

func (w *Wizard) Back() (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := index(w.step)
	if i == 0 {
		return w.step, fmt.Errorf("%w %s", ErrNoTransition, w.step)
	}
	w.step = Steps[i-1]
	return w.step, nil
}

// Complete moves account to done once the upgrade went through.
func (w *Wizard) Complete() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepAccount {
		return fmt.Errorf("%w %s: upgrade completes from %s", ErrNoTransition, w.step, StepAccount)
	}
	w.step = StepDone
	return nil
}

// SetBurner stores the credential handed to the account step.
func (w *Wizard) SetBurner(c burner.Credential) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.burner = &c
}

func (w *Wizard) Burner() (burner.Credential, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.burner == nil {
		return burner.Credential{}, false
	}
	return *w.burner, true
}
