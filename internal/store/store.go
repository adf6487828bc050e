// Package store implements agentmemory's durable on-disk index: one SQLite
// database file holding chunk rows, code-node trees, fingerprints, and
// their FTS5 and sqlite-vec mirrors.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/gofrs/flock"
	_ "github.com/mattn/go-sqlite3"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
)

var vecRegisterOnce sync.Once

func registerVecExtension() {
	vecRegisterOnce.Do(func() {
		sqlite_vec.Auto()
	})
}

// Store owns the single connection used by one invocation of the CLI.
// There is no persistent server and no multi-writer support:
// one *Store maps to one process, serialized by an advisory file lock.
type Store struct {
	db            *sql.DB
	path          string
	lock          *flock.Flock
	vectorEnabled bool
	dim           int
}

// Open opens (creating if necessary) the database at path, runs the schema
// migration, enables WAL mode, and probes for sqlite-vec availability.
// dim is the embedding dimensionality used for the vector virtual table.
func Open(path string, dim int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, agentmemoryerrors.IOError(agentmemoryerrors.ErrCodeDBOpen, "cannot create db directory", err)
	}

	registerVecExtension()

	lockPath := filepath.Join(filepath.Dir(path), ".agentmemory.lock")
	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, agentmemoryerrors.IOError(agentmemoryerrors.ErrCodeLockBusy, "cannot acquire index lock", err)
	}
	if !locked {
		return nil, agentmemoryerrors.New(agentmemoryerrors.ErrCodeLockBusy, "another agentmemory process holds the index lock", nil)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		_ = fl.Unlock()
		return nil, agentmemoryerrors.IOError(agentmemoryerrors.ErrCodeDBOpen, "cannot open database", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			_ = fl.Unlock()
			return nil, agentmemoryerrors.IOError(agentmemoryerrors.ErrCodeDBOpen, "cannot set pragma "+p, err)
		}
	}

	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		_ = fl.Unlock()
		return nil, agentmemoryerrors.IOError(agentmemoryerrors.ErrCodeDBOpen, "cannot apply schema", err)
	}

	s := &Store{db: db, path: path, lock: fl, dim: dim}
	s.vectorEnabled = s.enableVectorTable(dim)

	if err := s.setMetaIfAbsent("schema_version", schemaVersion); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// enableVectorTable attempts to create the chunks_vec virtual table. Its
// absence is a CapabilityMissing condition, not a fatal error:
// the store still functions for keyword search.
func (s *Store) enableVectorTable(dim int) bool {
	stmt := fmt.Sprintf(vecTableDDLTemplate, dim)
	_, err := s.db.Exec(stmt)
	return err == nil
}

// VectorCapable reports whether the vector index is usable.
func (s *Store) VectorCapable() bool {
	return s.vectorEnabled
}

// DB exposes the underlying connection for callers that need to run
// hand-written queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close releases the connection and the advisory lock.
func (s *Store) Close() error {
	err := s.db.Close()
	if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
		err = unlockErr
	}
	return err
}

// Size returns the database file size in bytes.
func (s *Store) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeFileRead, err)
	}
	return info.Size(), nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
