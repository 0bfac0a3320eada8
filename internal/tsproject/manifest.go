package tsproject

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/xojs/xo-sub000/internal/testable"
)

// ManifestName is the TypeScript project file looked up from cwd.
const ManifestName = "tsconfig.json"

// maxExtendsDepth bounds extends chains, which also breaks cycles.
const maxExtendsDepth = 16

// patternList is a list of patterns together with the directory they are
// relative to: the manifest that declared them.
type patternList struct {
	Patterns []string
	Dir      string
	Set      bool
}

// Manifest is a tsconfig.json with its extends chain applied.
type Manifest struct {
	Path            string
	CompilerOptions map[string]any
	Include         patternList
	Files           patternList
	Exclude         patternList
}

// DeclaresScope reports whether include or files were given anywhere in the
// chain.
func (m *Manifest) DeclaresScope() bool {
	return m.Include.Set || m.Files.Set
}

type rawManifest struct {
	Extends         any            `json:"extends"`
	CompilerOptions map[string]any `json:"compilerOptions"`
	Include         *[]string      `json:"include"`
	Files           *[]string      `json:"files"`
	Exclude         *[]string      `json:"exclude"`
}

// findManifest returns the nearest tsconfig.json at or above dir, or "" when
// there is none.
func findManifest(fsys testable.FileSystem, dir string) string {
	for {
		path := filepath.Join(dir, ManifestName)
		if testable.FileExists(fsys, path) {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadManifest reads path and every manifest it extends. Keys set by a child
// override those of its parent; compilerOptions merge per option.
func loadManifest(fsys testable.FileSystem, path string) (*Manifest, error) {
	return loadChain(fsys, path, 0)
}

func loadChain(fsys testable.FileSystem, path string, depth int) (*Manifest, error) {
	if depth > maxExtendsDepth {
		return nil, fmt.Errorf("%s: extends chain too deep", path)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	var raw rawManifest
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	m := &Manifest{Path: path, CompilerOptions: map[string]any{}}
	for _, parentPath := range extendsPaths(raw.Extends, filepath.Dir(path)) {
		parent, err := loadChain(fsys, parentPath, depth+1)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("extended tsconfig not found", "path", parentPath, "from", path)
				continue
			}
			return nil, err
		}
		maps.Copy(m.CompilerOptions, parent.CompilerOptions)
		inherit(&m.Include, parent.Include)
		inherit(&m.Files, parent.Files)
		inherit(&m.Exclude, parent.Exclude)
	}

	maps.Copy(m.CompilerOptions, raw.CompilerOptions)
	dir := filepath.Dir(path)
	override(&m.Include, raw.Include, dir)
	override(&m.Files, raw.Files, dir)
	override(&m.Exclude, raw.Exclude, dir)
	return m, nil
}

// extendsPaths resolves the relative entries of extends. Package references
// are not followed.
func extendsPaths(v any, dir string) []string {
	var entries []string
	switch e := v.(type) {
	case string:
		entries = []string{e}
	case []any:
		for _, item := range e {
			if s, ok := item.(string); ok {
				entries = append(entries, s)
			}
		}
	}
	var out []string
	for _, e := range entries {
		if !strings.HasPrefix(e, "./") && !strings.HasPrefix(e, "../") && !filepath.IsAbs(e) {
			slog.Debug("skipping package tsconfig reference", "extends", e)
			continue
		}
		if !strings.HasSuffix(e, ".json") {
			e += ".json"
		}
		if !filepath.IsAbs(e) {
			e = filepath.Join(dir, e)
		}
		out = append(out, e)
	}
	return out
}

func inherit(dst *patternList, parent patternList) {
	if parent.Set {
		*dst = parent
	}
}

func override(dst *patternList, patterns *[]string, dir string) {
	if patterns != nil {
		*dst = patternList{Patterns: *patterns, Dir: dir, Set: true}
	}
}
