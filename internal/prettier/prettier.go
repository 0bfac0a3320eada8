// Package prettier resolves the Prettier options that apply to a directory.
package prettier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/xojs/xo-sub000/internal/testable"
)

// DefaultCacheSize bounds the number of memoized directories per Resolver.
const DefaultCacheSize = 256

// rcFiles are searched in order in each directory.
var rcFiles = []string{
	".prettierrc",
	".prettierrc.json",
	".prettierrc.yaml",
	".prettierrc.yml",
	".prettierrc.toml",
	"package.json",
}

// Options is a resolved Prettier configuration.
type Options map[string]any

// Bool returns a boolean option.
func (o Options) Bool(key string) (bool, bool) {
	b, ok := o[key].(bool)
	return b, ok
}

// Int returns an integral numeric option.
func (o Options) Int(key string) (int, bool) {
	switch n := o[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

type entry struct {
	opts  Options
	found bool
}

// Resolver finds the nearest Prettier configuration. Results are memoized
// per directory for the lifetime of the Resolver.
type Resolver struct {
	fs    testable.FileSystem
	cache *lru.Cache[string, entry]
}

// NewResolver returns a Resolver reading through fsys. A nil fsys means the
// real file system.
func NewResolver(fsys testable.FileSystem, size int) (*Resolver, error) {
	if fsys == nil {
		fsys = testable.DefaultFS
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Resolver{fs: fsys, cache: cache}, nil
}

// Resolve walks upward from dir and returns the first Prettier configuration
// found. found is false when there is none. The overrides and $schema keys
// are dropped.
func (r *Resolver) Resolve(dir string) (opts Options, found bool, err error) {
	dir, err = r.fs.Abs(dir)
	if err != nil {
		return nil, false, err
	}
	if e, ok := r.cache.Get(dir); ok {
		return maps.Clone(e.opts), e.found, nil
	}

	e, err := r.lookup(dir)
	if err != nil {
		return nil, false, err
	}
	r.cache.Add(dir, e)
	return maps.Clone(e.opts), e.found, nil
}

func (r *Resolver) lookup(dir string) (entry, error) {
	for {
		for _, name := range rcFiles {
			path := filepath.Join(dir, name)
			data, err := r.fs.ReadFile(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return entry{}, err
			}
			opts, ok, err := parse(name, data)
			if err != nil {
				return entry{}, fmt.Errorf("reading prettier config %s: %w", path, err)
			}
			if !ok {
				continue
			}
			slog.Debug("found prettier configuration", "path", path)
			delete(opts, "overrides")
			delete(opts, "$schema")
			return entry{opts: opts, found: true}, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return entry{}, nil
		}
		dir = parent
	}
}

func parse(name string, data []byte) (Options, bool, error) {
	var opts Options
	switch {
	case name == "package.json":
		var manifest struct {
			Prettier any `json:"prettier"`
		}
		if err := json.Unmarshal(data, &manifest); err != nil {
			return nil, false, err
		}
		m, ok := manifest.Prettier.(map[string]any)
		if !ok {
			// A string value names a shared config package, which xo does not
			// load.
			return nil, false, nil
		}
		return m, true, nil
	case strings.HasSuffix(name, ".toml"):
		if _, err := toml.Decode(string(data), &opts); err != nil {
			return nil, false, err
		}
	case strings.HasSuffix(name, ".json"):
		if err := json.Unmarshal(data, &opts); err != nil {
			return nil, false, err
		}
	default:
		// .prettierrc may be JSON or YAML; YAML is a superset of JSON.
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return nil, false, err
		}
	}
	if opts == nil {
		opts = Options{}
	}
	return opts, true, nil
}
