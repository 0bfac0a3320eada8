package options

import (
	"maps"

	"github.com/xojs/xo-sub000/internal/xoerrors"
)

// CheckFormatterConflicts compares the shorthands with the resolved Prettier
// options and returns a *xoerrors.ConflictError naming both sides of the
// first contradiction.
func CheckFormatterConflicts(s Shorthands, formatter map[string]any) error {
	if semi, ok := boolOption(formatter, "semi"); ok {
		if (s.Semicolon == SemicolonAlways && !semi) || (s.Semicolon == SemicolonNever && semi) {
			return &xoerrors.ConflictError{
				Option:          "semicolon",
				Value:           s.Semicolon == SemicolonAlways,
				FormatterOption: "semi",
				FormatterValue:  semi,
			}
		}
	}

	if useTabs, ok := boolOption(formatter, "useTabs"); ok {
		if _, spaces := s.Indent.Spaces(); spaces && useTabs {
			return &xoerrors.ConflictError{Option: "space", Value: s.Indent, FormatterOption: "useTabs", FormatterValue: useTabs}
		}
		if s.Indent.Tabs() && !useTabs {
			return &xoerrors.ConflictError{Option: "space", Value: s.Indent, FormatterOption: "useTabs", FormatterValue: useTabs}
		}
	}

	if tabWidth, ok := intOption(formatter, "tabWidth"); ok {
		if width, spaces := s.Indent.Spaces(); spaces && s.Indent.ExplicitWidth() && width != tabWidth {
			return &xoerrors.ConflictError{Option: "space", Value: width, FormatterOption: "tabWidth", FormatterValue: tabWidth}
		}
	}
	return nil
}

// PrettierRuleOptions computes the options object for the formatter
// compliance rule: xo's style defaults derived from the shorthands, overlaid
// with the resolved Prettier options. Contradictions are reported before any
// overlay happens.
func PrettierRuleOptions(s Shorthands, formatter map[string]any) (map[string]any, error) {
	if err := CheckFormatterConflicts(s, formatter); err != nil {
		return nil, err
	}
	width, spaces := s.Indent.Spaces()
	if !spaces {
		width = DefaultSpaces
	}
	out := map[string]any{
		"singleQuote":     true,
		"bracketSpacing":  false,
		"bracketSameLine": false,
		"trailingComma":   "all",
		"tabWidth":        width,
		"useTabs":         !spaces,
		"semi":            s.Semicolon != SemicolonNever,
	}
	maps.Copy(out, formatter)
	return out, nil
}

func boolOption(m map[string]any, key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

func intOption(m map[string]any, key string) (int, bool) {
	switch n := m[key].(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
