package ruleset

import (
	"maps"
	"slices"

	"github.com/xojs/xo-sub000/internal/rules"
)

// FileConfig is the effective configuration of a single file: every matching
// block merged in order.
type FileConfig struct {
	Rules           rules.Rules    `json:"rules"`
	Plugins         []string       `json:"plugins,omitempty"`
	Envs            []string       `json:"envs,omitempty"`
	Globals         []string       `json:"globals,omitempty"`
	Extends         []string       `json:"extends,omitempty"`
	LanguageOptions map[string]any `json:"languageOptions,omitempty"`
	Settings        map[string]any `json:"settings,omitempty"`
	Extra           map[string]any `json:"extra,omitempty"`
}

// ConfigForFile merges the blocks applying to path. ok is false when the
// path is ignored or no block with a files pattern selects it.
//
// Rules are last-write-wins per identifier. plugins, envs, globals and
// extends are concatenated without duplicates in discovery order. Object
// options are shallow-merged per key; any other value is replaced.
func (rs *RuleSet) ConfigForFile(path string) (*FileConfig, bool) {
	if rs.IsIgnored(path) {
		return nil, false
	}
	rel := rs.rel(path)

	selected := false
	fc := &FileConfig{Rules: rules.Rules{}}
	for _, b := range rs.Blocks {
		if !matches(b, rel) {
			continue
		}
		if len(b.Files) > 0 {
			selected = true
		}
		fc.Rules = rules.Merge(fc.Rules, b.Rules)
		fc.Plugins = concatUnique(fc.Plugins, b.Plugins)
		fc.Envs = concatUnique(fc.Envs, b.Envs)
		fc.Globals = concatUnique(fc.Globals, b.Globals)
		fc.Extends = concatUnique(fc.Extends, b.Extends)
		fc.LanguageOptions = mergeObject(fc.LanguageOptions, b.LanguageOptions)
		fc.Settings = mergeObject(fc.Settings, b.Settings)
		fc.Extra = mergeObject(fc.Extra, b.Extra)
	}
	if !selected {
		return nil, false
	}
	return fc, true
}

func concatUnique(dst, src []string) []string {
	for _, s := range src {
		if !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}

// mergeObject writes every key of src over a copy of dst. Nested objects
// are merged one level deep so that, for example, parserOptions from two
// blocks combine.
func mergeObject(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	out := maps.Clone(dst)
	if out == nil {
		out = make(map[string]any, len(src))
	}
	for k, v := range src {
		prev, prevIsObject := out[k].(map[string]any)
		next, nextIsObject := v.(map[string]any)
		if prevIsObject && nextIsObject {
			merged := maps.Clone(prev)
			maps.Copy(merged, next)
			out[k] = merged
			continue
		}
		out[k] = v
	}
	return out
}
