// Package cache records which stubs are up to date so unchanged sources
// can be skipped.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Entry is the record of the last successful generation for a source.
type Entry struct {
	SourcePath  string
	SourceHash  string
	OptionsHash string
	StubHash    string
	RunID       string
	GeneratedAt time.Time
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("cache path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("cache path %q is a directory, expected file", cleanPath)
	}
	if dir := filepath.Dir(cleanPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite cache %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}
	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Fresh reports whether the last recorded generation of path used the same
// source and options.
func (s *Store) Fresh(path, sourceHash, optionsHash string) (bool, error) {
	entry, ok, err := s.Lookup(path)
	if err != nil || !ok {
		return false, err
	}
	return entry.SourceHash == sourceHash && entry.OptionsHash == optionsHash, nil
}

func (s *Store) Lookup(path string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		entry Entry
		tsRaw string
	)
	err := s.withRetry("lookup stub", func() error {
		return s.db.QueryRow(`
SELECT source_path, source_hash, options_hash, stub_hash, run_id, generated_at_utc
FROM stubs WHERE source_path = ?`, path).Scan(
			&entry.SourcePath,
			&entry.SourceHash,
			&entry.OptionsHash,
			&entry.StubHash,
			&entry.RunID,
			&tsRaw,
		)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	ts, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return Entry{}, false, fmt.Errorf("parse generated_at_utc %q: %w", tsRaw, err)
	}
	entry.GeneratedAt = ts
	return entry, true, nil
}

func (s *Store) Record(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(entry.SourcePath) == "" {
		return fmt.Errorf("source path must not be empty")
	}
	if entry.GeneratedAt.IsZero() {
		entry.GeneratedAt = time.Now().UTC()
	}
	return s.withRetry("record stub", func() error {
		_, err := s.db.Exec(`
INSERT INTO stubs (source_path, source_hash, options_hash, stub_hash, run_id, generated_at_utc)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(source_path) DO UPDATE SET
  source_hash=excluded.source_hash,
  options_hash=excluded.options_hash,
  stub_hash=excluded.stub_hash,
  run_id=excluded.run_id,
  generated_at_utc=excluded.generated_at_utc
`,
			entry.SourcePath,
			entry.SourceHash,
			entry.OptionsHash,
			entry.StubHash,
			entry.RunID,
			entry.GeneratedAt.UTC().Format(time.RFC3339Nano),
		)
		return err
	})
}

func (s *Store) Forget(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withRetry("forget stub", func() error {
		_, err := s.db.Exec(`DELETE FROM stubs WHERE source_path = ?`, path)
		return err
	})
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	if errors.Is(lastErr, sql.ErrNoRows) {
		return lastErr
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

// Hash returns the hex SHA-256 of the given parts, each terminated by a
// zero byte.
func Hash(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
