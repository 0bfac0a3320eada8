package config

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/xojs/xo-sub000/internal/constants"
	"github.com/xojs/xo-sub000/internal/testable"
)

// DefaultCacheSize bounds the number of memoized lookups per Locator.
const DefaultCacheSize = 256

// Result is the outcome of a configuration lookup. ConfigPath is empty when
// nothing was found.
type Result struct {
	Fragments  []Fragment
	ConfigPath string
}

// Found reports whether a configuration file was discovered.
func (r *Result) Found() bool { return r.ConfigPath != "" }

// Locator finds the nearest user configuration. Lookups are memoized per
// start directory and search boundary for the lifetime of the Locator.
type Locator struct {
	// Exec runs node for configuration modules. Nil turns a discovered
	// module into a shape error.
	Exec testable.CommandExecutor

	fs    testable.FileSystem
	cache *lru.Cache[string, *Result]
}

// NewLocator returns a Locator reading through fsys. A nil fsys means the
// real file system.
func NewLocator(fsys testable.FileSystem, size int) (*Locator, error) {
	if fsys == nil {
		fsys = testable.DefaultFS
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Result](size)
	if err != nil {
		return nil, err
	}
	return &Locator{Exec: testable.DefaultExecutor(), fs: fsys, cache: cache}, nil
}

// Locate searches from the directory of filePath (or cwd when filePath is
// empty or lies outside the parent of cwd) upward, checking each candidate
// file name in order, and stops after the parent of cwd. Finding nothing is
// not an error.
func (l *Locator) Locate(ctx context.Context, cwd, filePath string) (*Result, error) {
	cwd, err := l.fs.Abs(cwd)
	if err != nil {
		return nil, err
	}
	start := cwd
	if filePath != "" {
		if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(cwd, filePath)
		}
		start = filepath.Dir(filePath)
	}
	stop := filepath.Dir(cwd)
	if !within(stop, start) {
		start = cwd
	}

	key := start + "\x00" + stop
	if cached, ok := l.cache.Get(key); ok {
		return cached.clone(), nil
	}

	res, err := l.search(ctx, start, stop)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, res)
	return res.clone(), nil
}

func (l *Locator) search(ctx context.Context, start, stop string) (*Result, error) {
	dir := start
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, name := range constants.ConfigFiles {
			path := filepath.Join(dir, name)
			data, err := l.fs.ReadFile(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return nil, err
			}
			doc, ok, err := l.parse(ctx, path, data)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			fragments, err := doc.Fragments(path)
			if err != nil {
				return nil, err
			}
			if err := Validate(path, fragments); err != nil {
				return nil, err
			}
			slog.Debug("found configuration", "path", path, "fragments", len(fragments))
			return &Result{Fragments: fragments, ConfigPath: path}, nil
		}

		parent := filepath.Dir(dir)
		if dir == stop || parent == dir {
			break
		}
		dir = parent
	}
	slog.Debug("no configuration found", "start", start)
	return &Result{}, nil
}

func (l *Locator) parse(ctx context.Context, path string, data []byte) (Document, bool, error) {
	if !IsScript(path) {
		return Parse(path, data)
	}
	v, err := evalScript(ctx, l.Exec, path)
	if err != nil {
		return Document{}, false, err
	}
	doc, err := NewDocument(path, v)
	if err != nil {
		return Document{}, false, err
	}
	return doc, true, nil
}

// within reports whether dir is root or lies below it.
func within(root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// clone keeps cached results immutable from the caller's point of view.
func (r *Result) clone() *Result {
	return &Result{Fragments: slices.Clone(r.Fragments), ConfigPath: r.ConfigPath}
}
