// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package rules defines canonical rule entries (identifier → severity plus
// optional options) and the built-in rule catalogs.
package rules

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Severity is the tri-state rule level.
type Severity int

const (
	Off   Severity = 0
	Warn  Severity = 1
	Error Severity = 2
)

// String returns the ESLint spelling of the severity.
func (s Severity) String() string {
	switch s {
	case Off:
		return "off"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity accepts "off"/"warn"/"error" or 0/1/2 in any numeric form a
// JSON, YAML, TOML, or HCL decoder produces.
func ParseSeverity(v any) (Severity, error) {
	switch s := v.(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "off", "0":
			return Off, nil
		case "warn", "1":
			return Warn, nil
		case "error", "2":
			return Error, nil
		}
	case int:
		return severityFromInt(int64(s))
	case int64:
		return severityFromInt(s)
	case uint64:
		return severityFromInt(int64(s)) //nolint:gosec // range checked below
	case float64:
		if s == float64(int64(s)) {
			return severityFromInt(int64(s))
		}
	}
	return Off, fmt.Errorf("invalid severity %v (must be off, warn, error, 0, 1, or 2)", v)
}

func severityFromInt(n int64) (Severity, error) {
	if n < 0 || n > 2 {
		return Off, fmt.Errorf("invalid severity %d (must be 0, 1, or 2)", n)
	}
	return Severity(n), nil
}

// Entry is a single canonical rule configuration.
type Entry struct {
	Severity Severity
	Options  []any
}

// E builds an Entry. It keeps catalog tables readable.
func E(sev Severity, opts ...any) Entry {
	if len(opts) == 0 {
		return Entry{Severity: sev}
	}
	return Entry{Severity: sev, Options: opts}
}

// Active reports whether the rule is switched on.
func (e Entry) Active() bool {
	return e.Severity != Off
}

// ParseEntry converts a raw document value (a severity, or an array whose
// first element is a severity) into an Entry.
func ParseEntry(v any) (Entry, error) {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return Entry{}, fmt.Errorf("empty rule configuration")
		}
		sev, err := ParseSeverity(arr[0])
		if err != nil {
			return Entry{}, err
		}
		return E(sev, arr[1:]...), nil
	}
	sev, err := ParseSeverity(v)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Severity: sev}, nil
}

// MarshalJSON encodes the entry the way ESLint expects: a bare severity
// string, or an array when options are present.
func (e Entry) MarshalJSON() ([]byte, error) {
	if len(e.Options) == 0 {
		return json.Marshal(e.Severity.String())
	}
	return json.Marshal(append([]any{e.Severity.String()}, e.Options...))
}

// UnmarshalJSON accepts any form ParseEntry accepts.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseEntry(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Rules maps rule identifiers to entries.
type Rules map[string]Entry

// Parse converts a raw rules mapping into Rules. The error names the rule.
func Parse(raw map[string]any) (Rules, error) {
	if raw == nil {
		return nil, nil
	}
	out := make(Rules, len(raw))
	for id, v := range raw {
		e, err := ParseEntry(v)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", id, err)
		}
		out[id] = e
	}
	return out, nil
}

// Clone returns a shallow copy. Options slices are shared; entries are never
// mutated in place.
func (r Rules) Clone() Rules {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Merge returns a new Rules with every entry of src written over dst.
// Options are replaced wholesale, never concatenated.
func Merge(dst, src Rules) Rules {
	out := make(Rules, len(dst)+len(src))
	maps.Copy(out, dst)
	maps.Copy(out, src)
	return out
}

// IDs returns the rule identifiers in sorted order.
func (r Rules) IDs() []string {
	return slices.Sorted(maps.Keys(r))
}

// Split partitions r into the entries whose identifier has prefix and the
// rest.
func (r Rules) Split(prefix string) (matched, rest Rules) {
	matched, rest = Rules{}, Rules{}
	for id, e := range r {
		if strings.HasPrefix(id, prefix) {
			matched[id] = e
		} else {
			rest[id] = e
		}
	}
	return matched, rest
}

// HasActive reports whether any rule under prefix is switched on.
func (r Rules) HasActive(prefix string) bool {
	for id, e := range r {
		if strings.HasPrefix(id, prefix) && e.Active() {
			return true
		}
	}
	return false
}
