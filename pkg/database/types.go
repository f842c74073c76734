package database

import (
	"fmt"
	"strings"
	"time"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

type JournalMode string

const (
	// JournalModeDELETE deletes the rollback journal at the end of each transaction.
	JournalModeDELETE JournalMode = "DELETE"
	// JournalModeTRUNCATE truncates the rollback journal instead of deleting it.
	JournalModeTRUNCATE JournalMode = "TRUNCATE"
	// JournalModePERSIST overwrites the journal header with zeros instead of deleting it.
	JournalModePERSIST JournalMode = "PERSIST"
	// JournalModeMEMORY keeps the rollback journal in RAM.
	JournalModeMEMORY JournalMode = "MEMORY"
	// JournalModeWAL uses a write-ahead log. It is persistent across connections.
	JournalModeWAL JournalMode = "WAL"
	// JournalModeOFF disables the rollback journal and with it atomic commit.
	JournalModeOFF JournalMode = "OFF"
)

// ParseJournalMode accepts a journal mode name in any case.
func ParseJournalMode(s string) (JournalMode, error) {
	switch m := JournalMode(strings.ToUpper(s)); m {
	case JournalModeDELETE, JournalModeTRUNCATE, JournalModePERSIST, JournalModeMEMORY, JournalModeWAL, JournalModeOFF:
		return m, nil
	}
	return "", fmt.Errorf("unknown journal mode %q", s)
}

type SyncMode int

// ParseSyncMode accepts a synchronous pragma name in any case.
func ParseSyncMode(s string) (SyncMode, error) {
	switch strings.ToUpper(s) {
	case "OFF":
		return SyncModeOFF, nil
	case "NORMAL":
		return SyncModeNORMAL, nil
	case "FULL":
		return SyncModeFULL, nil
	case "EXTRA":
		return SyncModeEXTRA, nil
	}
	return 0, fmt.Errorf("unknown sync mode %q", s)
}

func (s SyncMode) String() string {
	switch s {
	case SyncModeOFF:
		return "OFF"
	case SyncModeNORMAL:
		return "NORMAL"
	case SyncModeFULL:
		return "FULL"
	case SyncModeEXTRA:
		return "EXTRA"
	}
	panic("developer error")
}

const (
	// SyncModeOFF hands data to the OS without syncing.
	SyncModeOFF SyncMode = 0
	// SyncModeNORMAL syncs at the critical moments only. Safe with WAL.
	SyncModeNORMAL SyncMode = 1
	// SyncModeFULL syncs before every commit completes.
	SyncModeFULL SyncMode = 2
	// SyncModeEXTRA also syncs the journal directory in DELETE mode.
	SyncModeEXTRA SyncMode = 3
)

type Option func(*Config) error

func WithJournalMode(mode JournalMode) Option {
	return func(o *Config) error {
		o.JournalMode = mode
		return nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *Config) error {
		o.Timeout = timeout
		return nil
	}
}

func WithForeignKeyConstraintsEnable(enabled bool) Option {
	return func(o *Config) error {
		o.ForeignKeyConstraintsEnable = enabled
		return nil
	}
}

func WithSyncMode(mode SyncMode) Option {
	return func(o *Config) error {
		o.SyncMode = mode
		return nil
	}
}

type Config struct {
	JournalMode                 JournalMode
	Timeout                     time.Duration
	ForeignKeyConstraintsEnable bool
	SyncMode                    SyncMode
}
