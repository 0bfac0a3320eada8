// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

package rules

import "strings"

type obj = map[string]any

// Base returns the default rule catalog applied to every recognized file.
// Indentation defaults to tabs.
func Base() Rules {
	return Rules{
		"array-callback-return":                               E(Error, obj{"allowImplicit": true}),
		"curly":                                               E(Error),
		"default-case-last":                                   E(Error),
		"eqeqeq":                                              E(Error),
		"no-await-in-loop":                                    E(Error),
		"no-console":                                          E(Off),
		"no-debugger":                                         E(Error),
		"no-else-return":                                      E(Error, obj{"allowElseIf": false}),
		"no-empty":                                            E(Error, obj{"allowEmptyCatch": true}),
		"no-implicit-coercion":                                E(Error),
		"no-lonely-if":                                        E(Error),
		"no-unused-vars":                                      E(Error, obj{"vars": "all", "args": "after-used", "ignoreRestSiblings": true, "caughtErrors": "all"}),
		"no-useless-return":                                   E(Error),
		"no-var":                                              E(Error),
		"object-shorthand":                                    E(Error, "always"),
		"prefer-arrow-callback":                               E(Error, obj{"allowNamedFunctions": true}),
		"prefer-const":                                        E(Error),
		"prefer-object-spread":                                E(Error),
		"prefer-rest-params":                                  E(Error),
		"prefer-spread":                                       E(Error),
		"arrow-body-style":                                    E(Error, "as-needed"),
		"@stylistic/indent":                                   E(Error, "tab", obj{"SwitchCase": 1}),
		"@stylistic/indent-binary-ops":                        E(Error, "tab"),
		"@stylistic/semi":                                     E(Error, "always"),
		"@stylistic/semi-spacing":                             E(Error, obj{"before": false, "after": true}),
		"@stylistic/quotes":                                   E(Error, "single"),
		"@stylistic/comma-dangle":                             E(Error, "always-multiline"),
		"@stylistic/object-curly-spacing":                     E(Error, "never"),
		"@stylistic/arrow-parens":                             E(Error, "as-needed"),
		"@stylistic/brace-style":                              E(Error, "1tbs", obj{"allowSingleLine": false}),
		"@stylistic/eol-last":                                 E(Error),
		"@stylistic/no-trailing-spaces":                       E(Error),
		"@stylistic/no-mixed-spaces-and-tabs":                 E(Error),
		"@stylistic/max-statements-per-line":                  E(Error),
		"unicorn/prefer-node-protocol":                        E(Error),
		"unicorn/prefer-module":                               E(Error),
		"unicorn/no-array-for-each":                           E(Error),
		"unicorn/filename-case":                               E(Error, obj{"case": "kebabCase"}),
		"import-x/no-duplicates":                              E(Error),
		"import-x/first":                                      E(Error),
		"import-x/extensions":                                 E(Error, "always", obj{"ignorePackages": true}),
		"n/prefer-global/process":                             E(Error, "never"),
		"n/no-deprecated-api":                                 E(Error),
		"promise/param-names":                                 E(Error),
		"promise/prefer-await-to-then":                        E(Error),
		"@eslint-community/eslint-comments/no-unused-disable": E(Error),
	}
}

// BasePlugins are registered on the base block.
func BasePlugins() []string {
	return []string{"@stylistic", "unicorn", "import-x", "n", "promise", "@eslint-community/eslint-comments"}
}

// TypeScript returns the rules applied to TypeScript files on top of Base.
// Core rules that the TypeScript compiler already checks are turned off.
func TypeScript() Rules {
	return Rules{
		"no-unused-vars":                                   E(Off),
		"no-undef":                                         E(Off),
		"@typescript-eslint/no-unused-vars":                E(Error, obj{"vars": "all", "args": "after-used", "ignoreRestSiblings": true, "caughtErrors": "all"}),
		"@typescript-eslint/consistent-type-imports":       E(Error, obj{"fixStyle": "inline-type-imports"}),
		"@typescript-eslint/consistent-type-definitions":   E(Error, "type"),
		"@typescript-eslint/no-explicit-any":               E(Error),
		"@typescript-eslint/no-floating-promises":          E(Error),
		"@typescript-eslint/no-misused-promises":           E(Error),
		"@typescript-eslint/no-unnecessary-type-assertion": E(Error),
		"@typescript-eslint/prefer-nullish-coalescing":     E(Error),
		"@typescript-eslint/prefer-optional-chain":         E(Error),
		"@typescript-eslint/switch-exhaustiveness-check":   E(Error),
		"@typescript-eslint/restrict-template-expressions": E(Error, obj{"allowNumber": true}),
		"@typescript-eslint/array-type":                    E(Error, obj{"default": "array-simple"}),
		"@typescript-eslint/ban-ts-comment":                E(Error, obj{"ts-expect-error": "allow-with-description"}),
		"@typescript-eslint/member-ordering":               E(Error),
	}
}

// TypeScriptPlugins are registered on TypeScript-scoped blocks.
func TypeScriptPlugins() []string {
	return []string{"@typescript-eslint"}
}

// React returns the framework bundle appended when react is enabled.
func React() Rules {
	return Rules{
		"react/jsx-key":                  E(Error),
		"react/jsx-no-duplicate-props":   E(Error, obj{"ignoreCase": true}),
		"react/jsx-no-undef":             E(Error),
		"react/jsx-uses-react":           E(Off),
		"react/react-in-jsx-scope":       E(Off),
		"react/no-danger-with-children":  E(Error),
		"react/no-unknown-property":      E(Error),
		"react/self-closing-comp":        E(Error),
		"react/jsx-boolean-value":        E(Error, "never"),
		"react/jsx-curly-brace-presence": E(Error, "never"),
		"react/jsx-indent":               E(Error, "tab"),
		"react/jsx-indent-props":         E(Error, "tab"),
		"react-hooks/rules-of-hooks":     E(Error),
		"react-hooks/exhaustive-deps":    E(Warn),
	}
}

// ReactPlugins are registered on the react bundle block.
func ReactPlugins() []string {
	return []string{"react", "react-hooks"}
}

// ReactSettings are attached to the react bundle block.
func ReactSettings() map[string]any {
	return obj{"react": obj{"version": "detect"}}
}

// PrettierRecommended mirrors the prettier plugin's recommended overrides.
// The compliance rule itself is added separately with computed options.
func PrettierRecommended() Rules {
	return Rules{
		"arrow-body-style":      E(Off),
		"prefer-arrow-callback": E(Off),
	}
}

// PrettierRuleID is the formatter-compliance rule.
const PrettierRuleID = "prettier/prettier"

// PrettierPlugins are registered when prettier is fully enabled.
func PrettierPlugins() []string {
	return []string{"prettier"}
}

// PrettierCompat disables every style rule that would fight the formatter.
func PrettierCompat() Rules {
	ids := []string{
		"@stylistic/indent",
		"@stylistic/indent-binary-ops",
		"@stylistic/semi",
		"@stylistic/semi-spacing",
		"@stylistic/quotes",
		"@stylistic/comma-dangle",
		"@stylistic/object-curly-spacing",
		"@stylistic/arrow-parens",
		"@stylistic/brace-style",
		"@stylistic/eol-last",
		"@stylistic/no-trailing-spaces",
		"@stylistic/no-mixed-spaces-and-tabs",
		"@stylistic/max-statements-per-line",
		"react/jsx-indent",
		"react/jsx-indent-props",
		"unicorn/number-literal-case",
		"unicorn/template-indent",
	}
	out := make(Rules, len(ids))
	for _, id := range ids {
		out[id] = E(Off)
	}
	return out
}

// wellKnownPlugins maps short plugin names to the module that provides them.
var wellKnownPlugins = map[string]string{
	"@stylistic":                        "@stylistic/eslint-plugin",
	"@typescript-eslint":                "@typescript-eslint/eslint-plugin",
	"@eslint-community/eslint-comments": "@eslint-community/eslint-plugin-eslint-comments",
	"import-x":                          "eslint-plugin-import-x",
	"react-hooks":                       "eslint-plugin-react-hooks",
}

// PluginModule returns the package that provides the named plugin, following
// the ESLint naming convention when the plugin is not well known.
func PluginModule(name string) string {
	if m, ok := wellKnownPlugins[name]; ok {
		return m
	}
	if strings.HasPrefix(name, "@") {
		if scope, rest, ok := strings.Cut(name, "/"); ok {
			return scope + "/eslint-plugin-" + rest
		}
		return name + "/eslint-plugin"
	}
	return "eslint-plugin-" + name
}
