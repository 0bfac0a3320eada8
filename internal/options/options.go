// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package options normalizes user-facing shorthand options into closed
// variants. Everything downstream of Extract works with Shorthands only and
// never re-inspects the raw document values.
package options

import (
	"maps"
	"math"
	"strconv"
	"strings"
)

// DefaultSpaces is the indentation width used when space is enabled without
// an explicit width.
const DefaultSpaces = 2

type indentKind int

const (
	indentUnset indentKind = iota
	indentTabs
	indentSpaces
)

// Indent is the resolved space option.
type Indent struct {
	kind     indentKind
	width    int
	explicit bool
}

// IndentUnset means the option was absent.
var IndentUnset = Indent{}

// IndentTabs means the user explicitly asked for tabs (space: false).
func IndentTabs() Indent { return Indent{kind: indentTabs} }

// IndentSpaces means the user asked for exactly n spaces.
func IndentSpaces(n int) Indent { return Indent{kind: indentSpaces, width: n, explicit: true} }

// defaultIndent is space: true, where the width is ours to choose.
func defaultIndent() Indent { return Indent{kind: indentSpaces, width: DefaultSpaces} }

// IsSet reports whether the user gave the option at all.
func (i Indent) IsSet() bool { return i.kind != indentUnset }

// Tabs reports an explicit request for tabs.
func (i Indent) Tabs() bool { return i.kind == indentTabs }

// Spaces returns the width when spaces were requested.
func (i Indent) Spaces() (int, bool) {
	return i.width, i.kind == indentSpaces
}

// ExplicitWidth reports whether the width was given as a number rather than
// implied by space: true.
func (i Indent) ExplicitWidth() bool { return i.explicit }

func (i Indent) String() string {
	switch i.kind {
	case indentTabs:
		return "false"
	case indentSpaces:
		return strconv.Itoa(i.width)
	default:
		return "unset"
	}
}

// Semicolon is the resolved semicolon option.
type Semicolon int

const (
	SemicolonUnset Semicolon = iota
	SemicolonAlways
	SemicolonNever
)

// PrettierMode is the resolved prettier option.
type PrettierMode int

const (
	PrettierOff PrettierMode = iota
	PrettierOn
	PrettierCompat
)

// Shorthands holds every resolved shorthand option of a fragment.
type Shorthands struct {
	Indent    Indent
	Semicolon Semicolon
	Prettier  PrettierMode
	React     bool
}

// DeletableKeys are shorthand keys that must never appear verbatim in a
// resolved rule-set.
var DeletableKeys = []string{"space", "semicolon", "prettier", "react"}

// aliases maps singular option names to their plural canonical form.
var aliases = []string{"env", "global", "ignore", "plugin", "rule", "setting", "extend", "extension"}

// mapValued aliases keep their value as-is instead of being wrapped in a list.
var mapValued = map[string]bool{"rule": true, "setting": true}

// Canonicalize returns a copy of raw with singular aliases folded into their
// plural form. The plural wins when both are present. Absent values stay
// absent, and scalars are wrapped in a one-element list.
func Canonicalize(raw map[string]any) map[string]any {
	out := maps.Clone(raw)
	if out == nil {
		return nil
	}
	for _, singular := range aliases {
		plural := singular + "s"
		value, ok := out[plural]
		if !ok || value == nil {
			value, ok = out[singular]
		}
		delete(out, singular)
		if !ok || value == nil {
			continue
		}
		if !mapValued[singular] {
			value = arrify(value)
		}
		out[plural] = value
	}
	return out
}

func arrify(v any) any {
	switch v.(type) {
	case []any, []string:
		return v
	default:
		return []any{v}
	}
}

// Extract resolves the shorthand options in raw and returns them together
// with a copy of raw that no longer carries any DeletableKeys.
func Extract(raw map[string]any) (Shorthands, map[string]any) {
	s := Shorthands{
		Indent:    ParseSpace(raw["space"]),
		Semicolon: parseSemicolon(raw["semicolon"]),
		Prettier:  parsePrettier(raw["prettier"]),
		React:     truthy(raw["react"]),
	}
	rest := maps.Clone(raw)
	for _, k := range DeletableKeys {
		delete(rest, k)
	}
	return s, rest
}

// ParseSpace resolves the space option: true → 2, a numeric string → its
// value, false/0/"" → tabs, absent → unset, anything else truthy → 2.
func ParseSpace(v any) Indent {
	switch s := v.(type) {
	case nil:
		return IndentUnset
	case bool:
		if s {
			return defaultIndent()
		}
		return IndentTabs()
	case int:
		return spacesFromNumber(float64(s))
	case int64:
		return spacesFromNumber(float64(s))
	case uint64:
		return spacesFromNumber(float64(s))
	case float64:
		return spacesFromNumber(s)
	case string:
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return IndentTabs()
		}
		if n, err := strconv.Atoi(trimmed); err == nil {
			return spacesFromNumber(float64(n))
		}
		return defaultIndent()
	default:
		return defaultIndent()
	}
}

func spacesFromNumber(n float64) Indent {
	if n == 0 || math.IsNaN(n) {
		return IndentTabs()
	}
	if n < 0 || n != math.Trunc(n) {
		return defaultIndent()
	}
	return IndentSpaces(int(n))
}

func parseSemicolon(v any) Semicolon {
	if v == nil {
		return SemicolonUnset
	}
	if truthy(v) {
		return SemicolonAlways
	}
	return SemicolonNever
}

func parsePrettier(v any) PrettierMode {
	if s, ok := v.(string); ok && s == "compat" {
		return PrettierCompat
	}
	if truthy(v) {
		return PrettierOn
	}
	return PrettierOff
}

func truthy(v any) bool {
	switch s := v.(type) {
	case nil:
		return false
	case bool:
		return s
	case string:
		return s != ""
	case int:
		return s != 0
	case int64:
		return s != 0
	case uint64:
		return s != 0
	case float64:
		return s != 0 && !math.IsNaN(s)
	default:
		return true
	}
}
