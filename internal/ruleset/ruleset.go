// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package ruleset holds the fully resolved, ordered list of configuration
// blocks handed to the lint engine, and answers which blocks apply to a file.
package ruleset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/xojs/xo-sub000/internal/rules"
)

// Block is one entry of a resolved rule-set.
type Block struct {
	Name            string
	Files           []string
	Ignores         []string
	Rules           rules.Rules
	Plugins         []string
	Envs            []string
	Globals         []string
	Extends         []string
	LanguageOptions map[string]any
	Settings        map[string]any
	Extra           map[string]any

	// Base marks the block carrying the built-in defaults. It is never
	// serialized.
	Base bool
}

// IsGlobalIgnore reports whether the block only lists ignore patterns, in
// which case the patterns apply to every file.
func (b Block) IsGlobalIgnore() bool {
	return len(b.Ignores) > 0 &&
		len(b.Files) == 0 &&
		b.Rules == nil &&
		len(b.Plugins) == 0 &&
		len(b.Envs) == 0 &&
		len(b.Globals) == 0 &&
		len(b.Extends) == 0 &&
		len(b.LanguageOptions) == 0 &&
		len(b.Settings) == 0 &&
		len(b.Extra) == 0
}

// MarshalJSON emits only the populated keys. Map keys come out sorted.
func (b Block) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Extra)+10)
	maps.Copy(out, b.Extra)
	set := func(key string, v any, populated bool) {
		if populated {
			out[key] = v
		}
	}
	set("name", b.Name, b.Name != "")
	set("files", b.Files, len(b.Files) > 0)
	set("ignores", b.Ignores, len(b.Ignores) > 0)
	set("rules", b.Rules, b.Rules != nil)
	set("plugins", b.Plugins, len(b.Plugins) > 0)
	set("envs", b.Envs, len(b.Envs) > 0)
	set("globals", b.Globals, len(b.Globals) > 0)
	set("extends", b.Extends, len(b.Extends) > 0)
	set("languageOptions", b.LanguageOptions, len(b.LanguageOptions) > 0)
	set("settings", b.Settings, len(b.Settings) > 0)
	return json.Marshal(out)
}

// Clone returns a copy whose slices and top-level maps may be modified
// without affecting b.
func (b Block) Clone() Block {
	b.Files = slices.Clone(b.Files)
	b.Ignores = slices.Clone(b.Ignores)
	b.Rules = b.Rules.Clone()
	b.Plugins = slices.Clone(b.Plugins)
	b.Envs = slices.Clone(b.Envs)
	b.Globals = slices.Clone(b.Globals)
	b.Extends = slices.Clone(b.Extends)
	b.LanguageOptions = maps.Clone(b.LanguageOptions)
	b.Settings = maps.Clone(b.Settings)
	b.Extra = maps.Clone(b.Extra)
	return b
}

// RuleSet is the ordered block list for one working directory. Later blocks
// override earlier ones.
type RuleSet struct {
	Cwd    string
	Blocks []Block
}

// MarshalJSON encodes the block list.
func (rs *RuleSet) MarshalJSON() ([]byte, error) {
	if rs.Blocks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(rs.Blocks)
}

// Fingerprint is a stable digest of the canonical JSON encoding.
func (rs *RuleSet) Fingerprint() (string, error) {
	data, err := json.Marshal(rs)
	if err != nil {
		return "", fmt.Errorf("encoding rule-set: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// rel converts path to a slash-separated path relative to Cwd. Relative
// inputs are taken as relative to Cwd already.
func (rs *RuleSet) rel(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	r, err := filepath.Rel(rs.Cwd, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}

// IsIgnored evaluates the patterns of every global-ignore block in order.
// A later negated pattern re-includes a path.
func (rs *RuleSet) IsIgnored(path string) bool {
	rel := rs.rel(path)
	ignored := false
	for _, b := range rs.Blocks {
		if b.IsGlobalIgnore() {
			ignored = applyIgnores(b.Ignores, rel, ignored)
		}
	}
	return ignored
}

// Matches reports whether b applies to path. Blocks without files apply to
// every path; a block's own ignores exclude paths from it. Global-ignore
// blocks never match.
func (rs *RuleSet) Matches(b Block, path string) bool {
	return matches(b, rs.rel(path))
}

func matches(b Block, rel string) bool {
	if b.IsGlobalIgnore() {
		return false
	}
	if len(b.Files) > 0 && !anyMatch(b.Files, rel) {
		return false
	}
	return !applyIgnores(b.Ignores, rel, false)
}

// MatchedBlocks returns the indices of the blocks applying to path, in
// order.
func (rs *RuleSet) MatchedBlocks(path string) []int {
	rel := rs.rel(path)
	var idx []int
	for i, b := range rs.Blocks {
		if matches(b, rel) {
			idx = append(idx, i)
		}
	}
	return idx
}

// MatchKey identifies the set of blocks applying to path. Files with equal
// keys share an effective configuration.
func (rs *RuleSet) MatchKey(path string) string {
	idx := rs.MatchedBlocks(path)
	parts := make([]string, len(idx))
	for i, n := range idx {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// anyMatch reports whether any pattern matches rel.
func anyMatch(patterns []string, rel string) bool {
	for _, p := range patterns {
		if matchPattern(p, rel) {
			return true
		}
	}
	return false
}

// applyIgnores folds ignore patterns over the current state. Negated
// patterns ("!dist/keep.js") re-include.
func applyIgnores(patterns []string, rel string, ignored bool) bool {
	for _, p := range patterns {
		negated := strings.HasPrefix(p, "!")
		p = strings.TrimPrefix(p, "!")
		if matchPattern(p, rel) || matchesAncestor(p, rel) {
			ignored = !negated
		}
	}
	return ignored
}

// matchPattern matches a slash-separated pattern. A trailing slash means the
// pattern only names directories.
func matchPattern(pattern, rel string) bool {
	pattern = strings.TrimPrefix(pattern, "./")
	if strings.HasSuffix(pattern, "/") {
		return false
	}
	ok, err := doublestar.Match(pattern, rel)
	return err == nil && ok
}

// matchesAncestor reports whether pattern names a directory containing rel.
func matchesAncestor(pattern, rel string) bool {
	pattern = strings.TrimSuffix(strings.TrimPrefix(pattern, "./"), "/")
	for dir := filepath.ToSlash(filepath.Dir(rel)); dir != "." && dir != "/" && dir != ".."; dir = filepath.ToSlash(filepath.Dir(dir)) {
		if ok, err := doublestar.Match(pattern, dir); err == nil && ok {
			return true
		}
	}
	return false
}
