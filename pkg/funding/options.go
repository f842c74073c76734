package funding

import (
	"time"

	"github.com/storacha/sandbox/pkg/relayer"
)

type Option func(*Funder)

// WithRelayerID pins funding to a relayer instead of picking the first
// available one.
func WithRelayerID(id string) Option {
	return func(f *Funder) {
		f.relayerID = id
	}
}

func WithValueWei(v uint64) Option {
	return func(f *Funder) {
		if v > 0 {
			f.valueWei = v
		}
	}
}

func WithGasLimit(g uint64) Option {
	return func(f *Funder) {
		if g > 0 {
			f.gasLimit = g
		}
	}
}

func WithSpeed(s relayer.Speed) Option {
	return func(f *Funder) {
		if s != "" {
			f.speed = s
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(f *Funder) {
		if d > 0 {
			f.pollInterval = d
		}
	}
}

// WithMaxPolls bounds the number of status queries, zero means unbounded.
func WithMaxPolls(n int) Option {
	return func(f *Funder) {
		f.maxPolls = n
	}
}

// WithTimeout bounds the whole funding sequence, zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(f *Funder) {
		f.timeout = d
	}
}

func WithJournal(j Journal) Option {
	return func(f *Funder) {
		f.journal = j
	}
}

// WithPollHook observes every status reported while waiting.
func WithPollHook(fn func(attempt int, tx relayer.Transaction)) Option {
	return func(f *Funder) {
		f.onPoll = fn
	}
}
