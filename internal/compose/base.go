// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package compose turns user configuration fragments into a resolved
// rule-set on top of xo's built-in defaults.
package compose

import (
	"slices"

	"github.com/xojs/xo-sub000/internal/constants"
	"github.com/xojs/xo-sub000/internal/rules"
	"github.com/xojs/xo-sub000/internal/ruleset"
)

// Base returns the built-in blocks every rule-set starts with: the default
// ignores, the base catalog for all recognized files, and, when TypeScript
// support is on, the TypeScript defaults.
func Base(cwd string, tsEnabled bool) []ruleset.Block {
	blocks := []ruleset.Block{
		{
			Name:    "xo/ignores",
			Ignores: slices.Clone(constants.DefaultIgnores),
		},
		{
			Name:    "xo/base",
			Files:   []string{constants.AllFilesGlob},
			Rules:   rules.Base(),
			Plugins: rules.BasePlugins(),
			LanguageOptions: map[string]any{
				"ecmaVersion": "latest",
				"sourceType":  "module",
			},
			Envs: []string{"es2021", "node"},
			Base: true,
		},
	}
	if tsEnabled {
		blocks = append(blocks, ruleset.Block{
			Name:            "xo/typescript",
			Files:           []string{constants.TSFilesGlob},
			Rules:           rules.TypeScript(),
			Plugins:         rules.TypeScriptPlugins(),
			LanguageOptions: typeScriptLanguageOptions(cwd),
		})
	}
	return blocks
}

// typeScriptLanguageOptions wires the TypeScript parser with the project
// service rooted at cwd.
func typeScriptLanguageOptions(cwd string) map[string]any {
	return map[string]any{
		"parser": constants.TSParser,
		"parserOptions": map[string]any{
			"projectService":  true,
			"tsconfigRootDir": cwd,
		},
	}
}
