package compose

import (
	"maps"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/xojs/xo-sub000/internal/constants"
	"github.com/xojs/xo-sub000/internal/rules"
	"github.com/xojs/xo-sub000/internal/ruleset"
)

// Partition splits a block that switches on TypeScript rules while also
// applying to plain JavaScript files. The TypeScript-scoped block, carrying
// only the TypeScript rules plus parser wiring, comes first; the original
// scope keeps everything else. Blocks that pin their own parser or
// TypeScript project, or whose scope cannot reach JavaScript files, are
// returned unchanged. The TypeScript block is named label/typescript.
func Partition(b ruleset.Block, label, cwd string) []ruleset.Block {
	if len(b.Rules) == 0 || !b.Rules.HasActive(constants.TSRulePrefix) {
		return []ruleset.Block{b}
	}
	if _, pinned := b.LanguageOptions["parser"]; pinned || pinsProject(b.LanguageOptions) {
		return []ruleset.Block{b}
	}
	if !plausiblyJS(b.Files) {
		return []ruleset.Block{b}
	}

	tsRules, rest := b.Rules.Split(constants.TSRulePrefix)

	languageOptions := maps.Clone(b.LanguageOptions)
	if languageOptions == nil {
		languageOptions = map[string]any{}
	}
	maps.Copy(languageOptions, typeScriptLanguageOptions(cwd))

	ts := ruleset.Block{
		Name:            label + "/typescript",
		Files:           typeScriptScope(b.Files),
		Ignores:         slices.Clone(b.Ignores),
		Rules:           tsRules,
		Plugins:         rules.TypeScriptPlugins(),
		LanguageOptions: languageOptions,
	}

	plain := b.Clone()
	plain.Rules = rest
	if len(plain.Files) == 0 {
		plain.Files = []string{constants.AllFilesGlob}
	}
	return []ruleset.Block{ts, plain}
}

// plausiblyJS reports whether a files list may select plain JavaScript
// files: no list at all, the catch-all or JavaScript globs, or a pattern
// matching a root-level test file such as test.js.
func plausiblyJS(files []string) bool {
	if len(files) == 0 {
		return true
	}
	for _, p := range files {
		if p == constants.AllFilesGlob || p == constants.JSFilesGlob {
			return true
		}
		for _, ext := range constants.JSExtensions {
			if ok, _ := doublestar.Match(p, "test."+ext); ok {
				return true
			}
		}
	}
	return false
}

// typeScriptScope narrows a files list to TypeScript files. Catch-all
// patterns become the TypeScript glob; a pattern ending in a JavaScript
// extension gets the TypeScript extensions instead.
func typeScriptScope(files []string) []string {
	if len(files) == 0 {
		return []string{constants.TSFilesGlob}
	}
	tsExt := "{" + strings.Join(constants.TSExtensions, ",") + "}"
	var out []string
	for _, p := range files {
		switch {
		case p == constants.AllFilesGlob || p == constants.JSFilesGlob:
			out = append(out, constants.TSFilesGlob)
		default:
			if base, ok := trimJSExt(p); ok {
				out = append(out, base+"."+tsExt)
			}
		}
	}
	if len(out) == 0 {
		return []string{constants.TSFilesGlob}
	}
	return slices.Compact(out)
}

func trimJSExt(pattern string) (string, bool) {
	for _, ext := range constants.JSExtensions {
		if base, ok := strings.CutSuffix(pattern, "."+ext); ok {
			return base, true
		}
	}
	return "", false
}
