// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package cache stores lint results keyed by file content and the resolved
// configuration, so unchanged files are not linted again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/xojs/xo-sub000/internal/constants"
	"github.com/xojs/xo-sub000/internal/engine"
	"github.com/xojs/xo-sub000/internal/testable"
)

// DefaultTTL bounds how long an entry is kept.
const DefaultTTL = 7 * 24 * time.Hour

// storeDir is the badger directory inside the cache directory.
const storeDir = "lint-cache"

// Dir returns the cache directory for cwd: node_modules/.cache/xo-linter
// beside the nearest package.json, or a directory under the system temp dir.
func Dir(fsys testable.FileSystem, cwd string) string {
	if fsys == nil {
		fsys = testable.DefaultFS
	}
	for dir := cwd; ; {
		if testable.FileExists(fsys, filepath.Join(dir, "package.json")) {
			return filepath.Join(dir, "node_modules", ".cache", constants.CacheDirName)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return filepath.Join(os.TempDir(), constants.CacheDirName)
}

// Key derives the cache key for one file.
func Key(configPath, fingerprint, matchKey string, content []byte) string {
	h := sha256.New()
	for _, part := range []string{configPath, fingerprint, matchKey} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// Config controls how the store is opened.
type Config struct {
	// Dir is the cache directory; the store lives in a subdirectory.
	Dir string

	// InMemory keeps everything in memory. Dir is ignored.
	InMemory bool

	// TTL is the lifetime of an entry. Zero means DefaultTTL.
	TTL time.Duration

	// Logger receives badger's own log output. Nil silences it.
	Logger *slog.Logger
}

// Store is a badger-backed result cache. A nil *Store is a valid, empty
// cache that stores nothing.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open opens or creates the store.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Dir == "" {
			return nil, errors.New("cache directory is required")
		}
		path := filepath.Join(cfg.Dir, storeDir)
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open lint cache: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{db: db, ttl: ttl}, nil
}

// OpenOrDisable opens the store, logging and returning nil on failure so
// linting carries on uncached.
func OpenOrDisable(cfg Config) *Store {
	s, err := Open(cfg)
	if err != nil {
		slog.Warn("lint cache disabled", "dir", cfg.Dir, "error", err)
		return nil
	}
	return s
}

// Get returns the cached result for key.
func (s *Store) Get(key string) (engine.Result, bool) {
	if s == nil {
		return engine.Result{}, false
	}
	var r engine.Result
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			slog.Debug("lint cache read failed", "error", err)
		}
		return engine.Result{}, false
	}
	return r, true
}

// Put stores r under key. Failures are logged and otherwise ignored.
func (s *Store) Put(key string, r engine.Result) {
	if s == nil {
		return
	}
	val, err := json.Marshal(r)
	if err != nil {
		slog.Debug("lint cache encode failed", "error", err)
		return
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), val).WithTTL(s.ttl))
	})
	if err != nil {
		slog.Warn("lint cache write failed", "error", err)
	}
}

// Close releases the store.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
