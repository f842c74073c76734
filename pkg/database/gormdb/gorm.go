package gormdb

import (
	"context"
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	logging "github.com/ipfs/go-log/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storacha/sandbox/pkg/database"
)

var log = logging.Logger("database/gorm")

var (
	DefaultJournalMode                 = database.JournalModeWAL
	DefaultTimeout                     = 3 * time.Second
	DefaultSyncMode                    = database.SyncModeNORMAL
	DefaultForeignKeyConstraintsEnable = true
)

// New opens a sqlite database at dsn. database.MemoryDSN (or an empty dsn)
// yields a private in-memory database held by a single connection.
func New(dsn string, opts ...database.Option) (*gorm.DB, error) {
	cfg := &database.Config{
		JournalMode:                 DefaultJournalMode,
		Timeout:                     DefaultTimeout,
		ForeignKeyConstraintsEnable: DefaultForeignKeyConstraintsEnable,
		SyncMode:                    DefaultSyncMode,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option %T: %w", opt, err)
		}
	}

	memory := dsn == "" || dsn == database.MemoryDSN
	if memory {
		dsn = database.MemoryDSN
	}

	var pragmas []string
	if !memory {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=journal_mode(%s)", cfg.JournalMode))
	}
	pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", cfg.Timeout.Milliseconds()))
	pragmas = append(pragmas, fmt.Sprintf("_pragma=synchronous(%s)", cfg.SyncMode))
	pragmas = append(pragmas, fmt.Sprintf("_pragma=foreign_keys(%d)", bool2int(cfg.ForeignKeyConstraintsEnable)))
	connStr := fmt.Sprintf("%s?%s", dsn, strings.Join(pragmas, "&"))

	log.Infof("connecting to GORM SQLite at %s", connStr)
	db, err := gorm.Open(
		sqlite.Open(connStr),
		&gorm.Config{
			// No need to run every operation in a transaction, we are explicit about where transactions are required.
			SkipDefaultTransaction: true,
			Logger:                 newGormLogger(log),
		})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if memory {
		// every new connection to :memory: is a fresh, empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("getting sql handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// gormLogger routes GORM output through go-log so queries show up next to
// the rest of the application logs.
type gormLogger struct {
	log     *logging.ZapEventLogger
	level   logger.LogLevel
	slowSQL time.Duration
}

func newGormLogger(log *logging.ZapEventLogger) *gormLogger {
	return &gormLogger{
		log:     log,
		level:   logger.Warn,
		slowSQL: time.Second,
	}
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *g
	newLogger.level = level
	return &newLogger
}

func (g *gormLogger) Info(ctx context.Context, s string, i ...interface{}) {
	if g.level >= logger.Info {
		g.log.Infof(s, i...)
	}
}

func (g *gormLogger) Warn(ctx context.Context, s string, i ...interface{}) {
	if g.level >= logger.Warn {
		g.log.Warnf(s, i...)
	}
}

func (g *gormLogger) Error(ctx context.Context, s string, i ...interface{}) {
	if g.level >= logger.Error {
		g.log.Errorf(s, i...)
	}
}

// caller returns the first frame outside of gorm that issued the query.
func caller(skip int) string {
	for i := skip; i < skip+8; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.Contains(file, "gorm.io/") {
			continue
		}
		name := "unknown"
		if fn := runtime.FuncForPC(pc); fn != nil {
			name = fn.Name()
		}
		_, fileName := path.Split(file)
		return fmt.Sprintf("%s:%d %s", fileName, line, name)
	}
	return "unknown"
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= logger.Error:
		g.log.Errorw("SQL Error", "error", err, "elapsed", elapsed, "sql", sql, "rows", rows, "caller", caller(3))
	case elapsed > g.slowSQL && g.level >= logger.Warn:
		g.log.Warnw("Slow SQL", "elapsed", elapsed, "sql", sql, "rows", rows, "caller", caller(3))
	case g.level >= logger.Info:
		g.log.Debugw("SQL", "elapsed", elapsed, "sql", sql, "rows", rows)
	}
}

func bool2int(b bool) int {
	if b {
		return 1
	}
	return 0
}
