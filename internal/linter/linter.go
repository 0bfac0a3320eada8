// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package linter resolves the configuration for a working directory and
// drives the lint engine over files and text.
package linter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/xojs/xo-sub000/internal/cache"
	"github.com/xojs/xo-sub000/internal/compose"
	"github.com/xojs/xo-sub000/internal/config"
	"github.com/xojs/xo-sub000/internal/engine"
	"github.com/xojs/xo-sub000/internal/output"
	"github.com/xojs/xo-sub000/internal/prettier"
	"github.com/xojs/xo-sub000/internal/ruleset"
	"github.com/xojs/xo-sub000/internal/testable"
	"github.com/xojs/xo-sub000/internal/tsproject"
	"github.com/xojs/xo-sub000/internal/xoerrors"
)

// ErrNoConfig is returned by GetConfig for a file that is ignored or that no
// configuration block selects.
var ErrNoConfig = errors.New("file is ignored or not matched by any configuration")

// Options configure a Linter. The shorthand fields take the same values as
// their configuration-file counterparts and form the first fragment.
type Options struct {
	Cwd      string
	FilePath string
	Fix      bool
	Quiet    bool
	TS       bool
	Cache    bool
	Ignores  []string

	// Space is nil when unset; otherwise bool, number, or numeric string.
	Space any

	// Semicolon is nil when unset.
	Semicolon *bool

	// Prettier is nil when unset; otherwise bool or "compat".
	Prettier any

	React bool

	// Concurrency bounds parallel lint work. Zero means runtime.NumCPU().
	Concurrency int
}

// TextOptions configure LintText.
type TextOptions struct {
	FilePath      string
	WarnIfIgnored bool
}

// ResolvedConfig is the outcome of configuration resolution.
type ResolvedConfig struct {
	RuleSet    *ruleset.RuleSet
	ConfigPath string
	OptedOut   []compose.Scope
}

// Linter lints one working directory.
type Linter struct {
	opts     Options
	cwd      string
	fs       testable.FileSystem
	locator  *config.Locator
	prettier *prettier.Resolver
	projects *tsproject.Resolver
	engine   engine.Engine
}

// New creates a Linter backed by the eslint command line.
func New(opts Options) (*Linter, error) {
	cwd, err := absCwd(testable.DefaultFS, opts.Cwd)
	if err != nil {
		return nil, err
	}
	eng := engine.NewESLint(cwd, cache.Dir(testable.DefaultFS, cwd), opts.Fix)
	return NewWithEngine(opts, eng, testable.DefaultFS)
}

// NewWithEngine creates a Linter with an explicit engine and file system.
func NewWithEngine(opts Options, eng engine.Engine, fsys testable.FileSystem) (*Linter, error) {
	if fsys == nil {
		fsys = testable.DefaultFS
	}
	cwd, err := absCwd(fsys, opts.Cwd)
	if err != nil {
		return nil, err
	}
	opts.Cwd = cwd
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}

	locator, err := config.NewLocator(fsys, config.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	formatter, err := prettier.NewResolver(fsys, config.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Linter{
		opts:     opts,
		cwd:      cwd,
		fs:       fsys,
		locator:  locator,
		prettier: formatter,
		projects: tsproject.NewResolver(fsys),
		engine:   eng,
	}, nil
}

func absCwd(fsys testable.FileSystem, cwd string) (string, error) {
	if cwd == "" {
		cwd = "."
	}
	abs, err := fsys.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("resolving working directory %q: %w", cwd, err)
	}
	return abs, nil
}

// Cwd returns the absolute working directory.
func (l *Linter) Cwd() string { return l.cwd }

// Resolve locates the user configuration starting at filePath (or the
// working directory) and composes the rule-set. Configuration errors are
// returned unmodified.
func (l *Linter) Resolve(ctx context.Context, filePath string) (*ResolvedConfig, error) {
	located, err := l.locator.Locate(ctx, l.cwd, filePath)
	if err != nil {
		return nil, err
	}
	fragments, err := l.optionFragments()
	if err != nil {
		return nil, err
	}
	fragments = append(fragments, located.Fragments...)

	composer := compose.Composer{Prettier: l.prettier, Cwd: l.cwd, TS: l.opts.TS}
	res, err := composer.Compose(ctx, compose.Base(l.cwd, l.opts.TS), fragments)
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved configuration", "config", located.ConfigPath, "blocks", len(res.RuleSet.Blocks))
	return &ResolvedConfig{RuleSet: res.RuleSet, ConfigPath: located.ConfigPath, OptedOut: res.OptedOut}, nil
}

// optionFragments turns the programmatic options into fragments: the
// ignores as a global ignore, then the shorthands.
func (l *Linter) optionFragments() ([]config.Fragment, error) {
	var raws []map[string]any
	if len(l.opts.Ignores) > 0 {
		ignores := make([]any, len(l.opts.Ignores))
		for i, p := range l.opts.Ignores {
			ignores[i] = p
		}
		raws = append(raws, map[string]any{"ignores": ignores})
	}

	shorthands := map[string]any{}
	if l.opts.Space != nil {
		shorthands["space"] = l.opts.Space
	}
	if l.opts.Semicolon != nil {
		shorthands["semicolon"] = *l.opts.Semicolon
	}
	if l.opts.Prettier != nil {
		shorthands["prettier"] = l.opts.Prettier
	}
	if l.opts.React {
		shorthands["react"] = true
	}
	if len(shorthands) > 0 {
		raws = append(raws, shorthands)
	}

	fragments := make([]config.Fragment, 0, len(raws))
	for _, raw := range raws {
		f, err := config.DecodeFragment(raw)
		if err != nil {
			return nil, &xoerrors.ShapeError{Index: -1, Reason: err.Error()}
		}
		fragments = append(fragments, f)
	}
	return fragments, nil
}

// GetConfig returns the merged configuration that applies to filePath.
func (l *Linter) GetConfig(ctx context.Context, filePath string) (*ruleset.FileConfig, error) {
	if filePath == "" {
		filePath = l.opts.FilePath
	}
	if filePath == "" {
		return nil, errors.New("a file path is required to print its configuration")
	}
	path := l.abs(filePath)
	rc, err := l.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	fc, ok := rc.RuleSet.ConfigForFile(path)
	if !ok {
		return nil, fmt.Errorf("%s: %w", filePath, ErrNoConfig)
	}
	return fc, nil
}

// OutputFixes writes the fixed output of every result in report.
func (l *Linter) OutputFixes(report *Report) error {
	if report == nil {
		return nil
	}
	return l.engine.OutputFixes(report.Results)
}

// GetFormatter returns the named report formatter.
func GetFormatter(name string) (output.Formatter, error) {
	return output.GetFormatter(name)
}

func (l *Linter) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(l.cwd, path)
}
