// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package files expands lint patterns into the concrete list of source files,
// honoring the default ignores, user ignores, and .gitignore files.
package files

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/xojs/xo-sub000/internal/constants"
	"github.com/xojs/xo-sub000/internal/testable"
)

// FS is the file system used for walking. Tests replace it.
var FS testable.FileSystem = testable.DefaultFS

// Options control file enumeration.
type Options struct {
	// Cwd is the directory patterns are relative to.
	Cwd string

	// IgnorePatterns are added to the default ignores.
	IgnorePatterns []string

	// RespectGitignore enables .gitignore handling.
	RespectGitignore bool
}

type gitignore struct {
	dir     string
	matcher *ignore.GitIgnore
}

// Glob returns the sorted absolute paths of lintable files under opts.Cwd
// matching any of patterns. With no patterns every lintable file matches.
// Patterns naming a file or directory are taken literally.
func Glob(ctx context.Context, patterns []string, opts Options) ([]string, error) {
	cwd, err := FS.Abs(opts.Cwd)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", opts.Cwd, err)
	}
	include, err := includePatterns(cwd, patterns)
	if err != nil {
		return nil, err
	}
	ignores := slices.Concat(constants.DefaultIgnores, opts.IgnorePatterns)
	for _, p := range ignores {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}

	var gitignores []gitignore
	var out []string
	err = FS.WalkDir(cwd, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil // skip unreadable entries
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, relErr := filepath.Rel(cwd, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && (prunedDir(rel, ignores) || gitIgnored(gitignores, path, true)) {
				return filepath.SkipDir
			}
			if opts.RespectGitignore {
				gitignores = loadGitignore(gitignores, path)
			}
			return nil
		}

		if !constants.IsLintable(path) || matchAny(ignores, rel) {
			return nil
		}
		if opts.RespectGitignore && gitIgnored(gitignores, path, false) {
			return nil
		}
		if matchAny(include, rel) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(out)
	slog.Debug("expanded lint patterns", "patterns", len(include), "files", len(out))
	return out, nil
}

// includePatterns turns user patterns into globs relative to cwd.
func includePatterns(cwd string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return []string{constants.AllFilesGlob}, nil
	}
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if filepath.IsAbs(p) {
			rel, err := filepath.Rel(cwd, p)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", p, err)
			}
			p = rel
		}
		p = strings.TrimPrefix(filepath.ToSlash(p), "./")
		if testable.DirExists(FS, filepath.Join(cwd, p)) {
			p = strings.TrimSuffix(p, "/") + "/" + constants.AllFilesGlob
			p = strings.TrimPrefix(p, "./")
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
		out = append(out, p)
	}
	return out, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// prunedDir reports whether a directory-wide ignore covers rel.
func prunedDir(rel string, ignores []string) bool {
	for _, p := range ignores {
		dir, ok := strings.CutSuffix(p, "/**")
		if !ok {
			continue
		}
		if matched, _ := doublestar.Match(dir, rel); matched {
			return true
		}
	}
	return false
}

func loadGitignore(stack []gitignore, dir string) []gitignore {
	data, err := FS.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return stack
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	return append(stack, gitignore{dir: dir, matcher: ignore.CompileIgnoreLines(lines...)})
}

// gitIgnored applies every .gitignore scoped to an ancestor of path.
func gitIgnored(stack []gitignore, path string, isDir bool) bool {
	for _, g := range stack {
		rel, err := filepath.Rel(g.dir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		rel = filepath.ToSlash(rel)
		if g.matcher.MatchesPath(rel) || (isDir && g.matcher.MatchesPath(rel+"/")) {
			return true
		}
	}
	return false
}
