// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package tsproject decides which TypeScript files the project's tsconfig
// covers and writes a fallback project for the rest, so type-aware rules can
// run on every file.
package tsproject

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/xojs/xo-sub000/internal/constants"
	"github.com/xojs/xo-sub000/internal/testable"
	"github.com/xojs/xo-sub000/internal/xoerrors"
)

// defaultExclude applies when no manifest in the chain sets exclude.
var defaultExclude = []string{"node_modules", "bower_components", "jspm_packages"}

// DefaultCompilerOptions are used for the fallback project when no
// tsconfig.json was discovered.
func DefaultCompilerOptions() map[string]any {
	return map[string]any{
		"target":           "es2022",
		"module":           "nodenext",
		"moduleResolution": "nodenext",
		"strict":           true,
		"jsx":              "react-jsx",
		"allowJs":          true,
		"skipLibCheck":     true,
		"noEmit":           true,
	}
}

// Membership is the outcome of a coverage check.
type Membership struct {
	// Uncovered lists the TypeScript candidates outside the discovered
	// project, sorted.
	Uncovered []string

	// FallbackPath is the written fallback project, empty when nothing was
	// uncovered or the write failed.
	FallbackPath string

	// ManifestPath is the discovered tsconfig.json, if any.
	ManifestPath string
}

// Resolver checks project membership and maintains the fallback project.
type Resolver struct {
	fs testable.FileSystem
}

// NewResolver returns a Resolver using fsys. A nil fsys means the real file
// system.
func NewResolver(fsys testable.FileSystem) *Resolver {
	if fsys == nil {
		fsys = testable.DefaultFS
	}
	return &Resolver{fs: fsys}
}

// FallbackPath is the location of the fallback project for cwd.
func FallbackPath(cwd string) string {
	return filepath.Join(cwd, "node_modules", ".cache", constants.CacheDirName, constants.FallbackTsconfigName)
}

// Resolve finds the tsconfig.json nearest to cwd and sorts the TypeScript
// candidates into covered and uncovered. Uncovered files are written to the
// fallback project. A failed write is logged and leaves FallbackPath empty.
func (r *Resolver) Resolve(ctx context.Context, cwd string, candidates []string) (*Membership, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var tsFiles []string
	for _, c := range candidates {
		if !constants.IsTS(c) {
			continue
		}
		if !filepath.IsAbs(c) {
			c = filepath.Join(cwd, c)
		}
		tsFiles = append(tsFiles, filepath.Clean(c))
	}

	res := &Membership{}
	var manifest *Manifest
	if path := findManifest(r.fs, cwd); path != "" {
		m, err := loadManifest(r.fs, path)
		if err != nil {
			return nil, err
		}
		manifest = m
		res.ManifestPath = path
	}

	for _, f := range tsFiles {
		if manifest == nil || !covers(manifest, f) {
			res.Uncovered = append(res.Uncovered, f)
		}
	}
	slices.Sort(res.Uncovered)
	res.Uncovered = slices.Compact(res.Uncovered)

	slog.Debug("typescript project membership",
		"manifest", res.ManifestPath, "candidates", len(tsFiles), "uncovered", len(res.Uncovered))
	if len(res.Uncovered) == 0 {
		return res, nil
	}

	compilerOptions := DefaultCompilerOptions()
	if manifest != nil && len(manifest.CompilerOptions) > 0 {
		compilerOptions = maps.Clone(manifest.CompilerOptions)
	}
	path := FallbackPath(cwd)
	if err := r.write(path, compilerOptions, res.Uncovered); err != nil {
		slog.Warn("type-aware linting disabled for files outside the TypeScript project",
			"error", &xoerrors.ManifestWriteWarning{Path: path, Err: err}, "files", len(res.Uncovered))
		return res, nil
	}
	res.FallbackPath = path
	return res, nil
}

// FallbackManifest renders the fallback project. Identical inputs give
// identical bytes.
func FallbackManifest(compilerOptions map[string]any, files []string) ([]byte, error) {
	doc := map[string]any{
		"compilerOptions": compilerOptions,
		"include":         []string{},
		"exclude":         []string{},
		"files":           files,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (r *Resolver) write(path string, compilerOptions map[string]any, files []string) error {
	data, err := FallbackManifest(compilerOptions, files)
	if err != nil {
		return err
	}
	if err := r.fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return r.fs.WriteFile(path, data, 0o600)
}

// covers applies tsc's rules: without include or files everything not
// excluded is in the project; otherwise a file must be listed or included,
// and not excluded. Listed files cannot be excluded.
func covers(m *Manifest, file string) bool {
	if m.Files.Set {
		for _, f := range m.Files.Patterns {
			if filepath.Clean(filepath.Join(m.Files.Dir, f)) == file {
				return true
			}
		}
	}
	if m.DeclaresScope() && !(m.Include.Set && matchAny(m.Include, file)) {
		return false
	}

	exclude := m.Exclude
	if !exclude.Set {
		exclude = patternList{Patterns: defaultExclude, Dir: filepath.Dir(m.Path), Set: true}
	}
	return !matchAny(exclude, file)
}

// matchAny matches file against patterns relative to their manifest
// directory. Entries naming a directory match everything beneath it.
func matchAny(list patternList, file string) bool {
	for _, p := range list.Patterns {
		p = strings.TrimSuffix(filepath.ToSlash(p), "/")
		if isDirectoryPattern(p) {
			p += "/**"
		}
		base, pattern := doublestar.SplitPattern(p)
		rel, err := filepath.Rel(filepath.Join(list.Dir, base), file)
		if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}
		if ok, err := doublestar.Match(pattern, filepath.ToSlash(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

// isDirectoryPattern reports whether p names a directory: no wildcard and no
// file extension in its last segment.
func isDirectoryPattern(p string) bool {
	if p == "" || p == "." {
		return true
	}
	last := p[strings.LastIndex(p, "/")+1:]
	if strings.ContainsAny(last, "*?[{") {
		return false
	}
	return filepath.Ext(last) == ""
}
