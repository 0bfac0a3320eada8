// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package constants holds the fixed file-extension, glob, and filename sets
// shared by every stage of configuration resolution.
package constants

import (
	"path/filepath"
	"slices"
	"strings"
)

// ToolName is used for cache directories and config file prefixes.
const ToolName = "xo"

// CacheDirName is the directory created under node_modules/.cache.
const CacheDirName = "xo-linter"

// FallbackTsconfigName is the filename of the synthesized TypeScript project.
const FallbackTsconfigName = "tsconfig.xo.json"

// TSRulePrefix namespaces every rule provided by the TypeScript plugin.
const TSRulePrefix = "@typescript-eslint/"

// TSParser is the parser module wired into TypeScript-scoped blocks.
const TSParser = "@typescript-eslint/parser"

// PackageJSONField is the key read from package.json when it carries config.
const PackageJSONField = "xo"

// JSExtensions are the plain JavaScript extensions, without leading dot.
var JSExtensions = []string{"js", "jsx", "mjs", "cjs"}

// TSExtensions are the TypeScript extensions, without leading dot.
var TSExtensions = []string{"ts", "tsx", "cts", "mts"}

// AllExtensions is JSExtensions followed by TSExtensions.
var AllExtensions = slices.Concat(JSExtensions, TSExtensions)

var (
	// AllFilesGlob matches every recognized source file.
	AllFilesGlob = extGlob(AllExtensions)

	// JSFilesGlob matches plain JavaScript files.
	JSFilesGlob = extGlob(JSExtensions)

	// TSFilesGlob matches TypeScript files.
	TSFilesGlob = extGlob(TSExtensions)
)

// DefaultIgnores are always excluded from linting.
var DefaultIgnores = []string{
	"**/node_modules/**",
	"**/bower_components/**",
	"flow-typed/**",
	"coverage/**",
	"{tmp,temp}/**",
	"**/*.min.js",
	"vendor/**",
	"dist/**",
	"tap-snapshots/*.{cjs,js}",
}

// ConfigScripts are the configuration modules evaluated with node.
var ConfigScripts = []string{
	"xo.config.js",
	"xo.config.cjs",
	"xo.config.mjs",
	"xo.config.ts",
}

// ConfigFiles is the ordered list of user configuration filenames searched in
// each directory. The first one present wins.
var ConfigFiles = []string{
	"xo.config.js",
	"xo.config.cjs",
	"xo.config.mjs",
	"xo.config.ts",
	"xo.config.json",
	"xo.config.jsonc",
	"xo.config.yaml",
	"xo.config.yml",
	"xo.config.toml",
	"xo.config.hcl",
	".xo-config.json",
	".xo-config.yaml",
	"package.json",
}

func extGlob(exts []string) string {
	return "**/*.{" + strings.Join(exts, ",") + "}"
}

// Ext returns the extension of path, lowercased and without the leading dot.
func Ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// IsJS reports whether path has a plain JavaScript extension.
func IsJS(path string) bool {
	return slices.Contains(JSExtensions, Ext(path))
}

// IsTS reports whether path has a TypeScript extension.
func IsTS(path string) bool {
	return slices.Contains(TSExtensions, Ext(path))
}

// IsLintable reports whether path has any recognized extension.
func IsLintable(path string) bool {
	return IsJS(path) || IsTS(path)
}
