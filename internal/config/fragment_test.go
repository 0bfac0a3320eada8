package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xojs/xo-sub000/internal/options"
	"github.com/xojs/xo-sub000/internal/rules"
	"github.com/xojs/xo-sub000/internal/xoerrors"
)

func TestDecodeFragment_KnownKeys(t *testing.T) {
	f, err := DecodeFragment(map[string]any{
		"name":     "app",
		"files":    "src/**/*.js",
		"ignore":   "vendor/**",
		"env":      []any{"node", "browser"},
		"plugin":   "unicorn",
		"extends":  []string{"some-config"},
		"settings": map[string]any{"react": map[string]any{"version": "18"}},
		"rules":    map[string]any{"semi": []any{"error", "always"}, "no-var": 1},
		"space":    4,
		"custom":   true,
	})
	require.NoError(t, err)

	assert.Equal(t, "app", f.Name)
	assert.Equal(t, []string{"src/**/*.js"}, f.Files)
	assert.Equal(t, []string{"vendor/**"}, f.Ignores)
	assert.Equal(t, []string{"node", "browser"}, f.Envs)
	assert.Equal(t, []string{"unicorn"}, f.Plugins)
	assert.Equal(t, []string{"some-config"}, f.Extends)
	assert.Equal(t, rules.E(rules.Error, "always"), f.Rules["semi"])
	assert.Equal(t, rules.E(rules.Warn), f.Rules["no-var"])
	assert.Equal(t, map[string]any{"custom": true}, f.Extra)

	width, ok := f.Shorthands.Indent.Spaces()
	assert.True(t, ok)
	assert.Equal(t, 4, width)
	assert.True(t, f.HasShorthands())
	assert.True(t, f.Has("ignores"))
	assert.False(t, f.Has("ignore"))
}

func TestDecodeFragment_ShorthandsNeverInExtra(t *testing.T) {
	f, err := DecodeFragment(map[string]any{"semicolon": false, "prettier": "compat", "react": true})
	require.NoError(t, err)
	assert.Nil(t, f.Extra)
	assert.Equal(t, options.SemicolonNever, f.Shorthands.Semicolon)
	assert.Equal(t, options.PrettierCompat, f.Shorthands.Prettier)
	assert.True(t, f.Shorthands.React)
}

func TestDecodeFragment_DoesNotMutateInput(t *testing.T) {
	raw := map[string]any{"space": true, "rule": map[string]any{"semi": "off"}}
	_, err := DecodeFragment(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"space": true, "rule": map[string]any{"semi": "off"}}, raw)
}

func TestDecodeFragment_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"ignores number", map[string]any{"ignores": 3}, "ignores must be a string or list of strings"},
		{"ignores mixed list", map[string]any{"ignores": []any{"a", 1}}, "ignores must be a string or list of strings"},
		{"rules not object", map[string]any{"rules": "semi"}, "rules must be an object"},
		{"bad severity", map[string]any{"rules": map[string]any{"semi": "loud"}}, `rule "semi"`},
		{"name not string", map[string]any{"name": 1}, "name must be a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFragment(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestIsGlobalIgnore(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want bool
	}{
		{"ignores only", map[string]any{"ignores": []any{"dist/**"}}, true},
		{"ignores and name", map[string]any{"name": "skip", "ignores": "dist/**"}, true},
		{"singular alias", map[string]any{"ignore": "dist/**"}, true},
		{"with files", map[string]any{"files": "a.js", "ignores": "dist/**"}, false},
		{"with rules", map[string]any{"ignores": "dist/**", "rules": map[string]any{}}, false},
		{"with shorthand", map[string]any{"ignores": "dist/**", "space": true}, false},
		{"no ignores", map[string]any{"name": "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := DecodeFragment(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.IsGlobalIgnore())
		})
	}
}

func TestNewDocument(t *testing.T) {
	single, err := NewDocument("x", map[string]any{"space": true})
	require.NoError(t, err)
	assert.Equal(t, SingleFragment, single.Kind)
	assert.Len(t, single.Items, 1)

	list, err := NewDocument("x", []any{map[string]any{}, map[string]any{"space": 2}})
	require.NoError(t, err)
	assert.Equal(t, FragmentList, list.Kind)
	assert.Len(t, list.Items, 2)

	empty, err := NewDocument("x", nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	_, err = NewDocument("x", "space")
	var shape *xoerrors.ShapeError
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, -1, shape.Index)

	_, err = NewDocument("x", []any{map[string]any{}, 3})
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, 1, shape.Index)
}

func TestDocumentFragments_IndexInError(t *testing.T) {
	doc, err := NewDocument("/p/xo.config.json", []any{map[string]any{}, map[string]any{"ignores": 5}})
	require.NoError(t, err)

	_, err = doc.Fragments("/p/xo.config.json")
	var shape *xoerrors.ShapeError
	require.ErrorAs(t, err, &shape)
	assert.Equal(t, 1, shape.Index)
	assert.Equal(t, "/p/xo.config.json", shape.Path)
}
