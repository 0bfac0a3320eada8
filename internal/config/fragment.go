// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package config discovers and decodes xo configuration documents.
package config

import (
	"fmt"
	"maps"
	"slices"

	"github.com/xojs/xo-sub000/internal/options"
	"github.com/xojs/xo-sub000/internal/rules"
	"github.com/xojs/xo-sub000/internal/xoerrors"
)

// Fragment is one configuration object of a document. Shorthand options are
// already resolved; the raw values never travel past decoding.
type Fragment struct {
	Name            string
	Files           []string
	Ignores         []string
	Rules           rules.Rules
	Shorthands      options.Shorthands
	Envs            []string
	Globals         []string
	Plugins         []string
	Extends         []string
	Settings        map[string]any
	LanguageOptions map[string]any

	// Extra carries keys xo does not interpret. They pass through to the
	// resolved rule-set unchanged.
	Extra map[string]any

	keys []string
}

// Has reports whether key was present in the source document, after alias
// folding.
func (f Fragment) Has(key string) bool {
	return slices.Contains(f.keys, key)
}

// IsGlobalIgnore reports whether the fragment holds nothing but ignores (and
// optionally a name). Such fragments ignore files everywhere.
func (f Fragment) IsGlobalIgnore() bool {
	if !f.Has("ignores") {
		return false
	}
	for _, k := range f.keys {
		if k != "ignores" && k != "name" {
			return false
		}
	}
	return true
}

// HasShorthands reports whether any shorthand option was given.
func (f Fragment) HasShorthands() bool {
	return f.Shorthands != options.Shorthands{}
}

// DocumentKind tags the two shapes a configuration document may take.
type DocumentKind int

const (
	SingleFragment DocumentKind = iota
	FragmentList
)

// Document is a decoded configuration document before fragment decoding.
type Document struct {
	Kind  DocumentKind
	Items []map[string]any
}

// NewDocument classifies a generically decoded value. Objects become a
// single fragment, arrays of objects a fragment list. An empty document has
// no fragments.
func NewDocument(path string, v any) (Document, error) {
	switch doc := normalize(v).(type) {
	case nil:
		return Document{Kind: SingleFragment}, nil
	case map[string]any:
		return Document{Kind: SingleFragment, Items: []map[string]any{doc}}, nil
	case []any:
		items := make([]map[string]any, 0, len(doc))
		for i, item := range doc {
			m, ok := item.(map[string]any)
			if !ok {
				return Document{}, &xoerrors.ShapeError{Path: path, Index: i, Reason: fmt.Sprintf("expected an object, got %T", item)}
			}
			items = append(items, m)
		}
		return Document{Kind: FragmentList, Items: items}, nil
	default:
		return Document{}, &xoerrors.ShapeError{Path: path, Index: -1, Reason: fmt.Sprintf("expected an object or a list of objects, got %T", v)}
	}
}

// Fragments decodes every item of the document.
func (d Document) Fragments(path string) ([]Fragment, error) {
	out := make([]Fragment, 0, len(d.Items))
	for i, item := range d.Items {
		f, err := DecodeFragment(item)
		if err != nil {
			idx := i
			if d.Kind == SingleFragment {
				idx = -1
			}
			return nil, &xoerrors.ShapeError{Path: path, Index: idx, Reason: err.Error()}
		}
		out = append(out, f)
	}
	return out, nil
}

// DecodeFragment folds aliases, resolves shorthands, and types the known
// keys of raw. raw is not modified.
func DecodeFragment(raw map[string]any) (Fragment, error) {
	canonical := options.Canonicalize(normalizeMap(raw))
	shorthands, rest := options.Extract(canonical)

	f := Fragment{Shorthands: shorthands, keys: slices.Sorted(maps.Keys(canonical))}

	var err error
	if v, ok := rest["name"]; ok {
		name, isString := v.(string)
		if !isString {
			return Fragment{}, fmt.Errorf("name must be a string")
		}
		f.Name = name
	}
	if f.Files, err = stringList(rest, "files"); err != nil {
		return Fragment{}, err
	}
	if f.Ignores, err = stringList(rest, "ignores"); err != nil {
		return Fragment{}, err
	}
	if f.Envs, err = stringList(rest, "envs"); err != nil {
		return Fragment{}, err
	}
	if f.Globals, err = stringList(rest, "globals"); err != nil {
		return Fragment{}, err
	}
	if f.Plugins, err = stringList(rest, "plugins"); err != nil {
		return Fragment{}, err
	}
	if f.Extends, err = stringList(rest, "extends"); err != nil {
		return Fragment{}, err
	}
	if f.Settings, err = objectValue(rest, "settings"); err != nil {
		return Fragment{}, err
	}
	if f.LanguageOptions, err = objectValue(rest, "languageOptions"); err != nil {
		return Fragment{}, err
	}
	rawRules, err := objectValue(rest, "rules")
	if err != nil {
		return Fragment{}, err
	}
	if f.Rules, err = rules.Parse(rawRules); err != nil {
		return Fragment{}, err
	}

	for _, k := range []string{"name", "files", "ignores", "envs", "globals", "plugins", "extends", "settings", "languageOptions", "rules"} {
		delete(rest, k)
	}
	if len(rest) > 0 {
		f.Extra = rest
	}
	return f, nil
}

func stringList(m map[string]any, key string) ([]string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch list := v.(type) {
	case string:
		return []string{list}, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, isString := item.(string)
			if !isString {
				return nil, fmt.Errorf("%s must be a string or list of strings", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s must be a string or list of strings", key)
	}
}

func objectValue(m map[string]any, key string) (map[string]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	obj, isObject := v.(map[string]any)
	if !isObject {
		return nil, fmt.Errorf("%s must be an object", key)
	}
	return obj, nil
}

// normalize converts the container types produced by the different decoders
// into map[string]any and []any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeMap(val)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = val
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}
