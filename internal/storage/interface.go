/*
Package storage implements the persistent storage layer for engine state
and the action journal.

Engine state is a single JSON blob kept under a string key, so every
backend only needs the get/set contract of StateStore. Three backends
exist: SQLite (default), bbolt and an in-memory store for tests and
throwaway sessions. The action journal is an append-only SQLite table
used for history export.

SQLite goes through modernc.org/sqlite (a pure Go, CGo-free
implementation) and degrades gracefully: if the database can't be opened
the store is disabled, reads report "absent" and writes are no-ops.
*/
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// StateStore is the durable key-value contract the engine persists to.
type StateStore interface {
	// Get returns the value for key. found is false if the key was never set.
	Get(key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Close releases the underlying resources.
	Close() error
}

// ActionLog is the append-only journal of recorded actions.
type ActionLog interface {
	// RecordActions appends a batch of records.
	RecordActions(records []ActionRecord) error

	// History returns records matching the filter, oldest first.
	History(filter HistoryFilter) ([]ActionRecord, error)

	// Clear removes every record.
	Clear() error

	// Cleanup removes records older than the retention and reports how many went.
	Cleanup(retention time.Duration) (int64, error)
}

// SQLiteStorage implements StateStore and ActionLog on SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	logger   *zap.Logger
	mu       sync.Mutex
	initOnce sync.Once
}

// NewSQLite creates a SQLite storage for the database at path.
//
// Nothing is opened until Init. A nil logger discards warnings.
func NewSQLite(path string, logger *zap.Logger) *SQLiteStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStorage{
		dbPath:  path,
		enabled: path != "",
		logger:  logger,
	}
}

// Init opens the database and runs migrations.
//
// If initialization fails, storage is disabled and subsequent operations
// become no-ops (graceful degradation). The error is still returned so
// callers can report it.
func (s *SQLiteStorage) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		defer func() {
			if initErr != nil {
				if s.db != nil {
					s.db.Close()
					s.db = nil
				}
				s.enabled = false
				s.logger.Warn("sqlite storage disabled", zap.String("path", s.dbPath), zap.Error(initErr))
			}
		}()

		if err := os.MkdirAll(filepath.Dir(s.dbPath), 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			return
		}
		// One connection keeps writers serialized inside SQLite.
		db.SetMaxOpenConns(1)
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			return
		}

		if err := s.runMigrations(); err != nil {
			initErr = fmt.Errorf("failed to run migrations: %w", err)
			return
		}
	})

	return initErr
}

// Enabled reports whether the database is usable.
func (s *SQLiteStorage) Enabled() bool {
	return s.enabled && s.db != nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Backends lists the supported state backends.
func Backends() []string {
	return []string{BackendSQLite, BackendBolt, BackendMemory}
}

// Open creates and initializes the state store for a backend.
//
// A SQLite store that fails to initialize is still returned, disabled, so
// the engine can run on defaults. A bbolt store that fails to open is an
// error because bbolt holds a file lock that another process may own.
func Open(backend, path string, logger *zap.Logger) (StateStore, error) {
	switch backend {
	case BackendSQLite, "":
		s := NewSQLite(path, logger)
		_ = s.Init()
		return s, nil
	case BackendBolt:
		return NewBoltStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (valid: %s)", backend, strings.Join(Backends(), ", "))
	}
}
