package prettier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xojs/xo-sub000/internal/testable"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newResolver(t *testing.T, fsys testable.FileSystem) *Resolver {
	t.Helper()
	r, err := NewResolver(fsys, 0)
	require.NoError(t, err)
	return r
}

func TestResolve_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"rc json", ".prettierrc", `{"semi": false, "tabWidth": 4}`},
		{"rc yaml", ".prettierrc", "semi: false\ntabWidth: 4\n"},
		{"json", ".prettierrc.json", `{"semi": false, "tabWidth": 4}`},
		{"yaml", ".prettierrc.yaml", "semi: false\ntabWidth: 4\n"},
		{"yml", ".prettierrc.yml", "semi: false\ntabWidth: 4\n"},
		{"toml", ".prettierrc.toml", "semi = false\ntabWidth = 4\n"},
		{"package.json", "package.json", `{"prettier": {"semi": false, "tabWidth": 4}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, tt.file), tt.content)

			opts, found, err := newResolver(t, nil).Resolve(dir)
			require.NoError(t, err)
			require.True(t, found)
			semi, ok := opts.Bool("semi")
			assert.True(t, ok)
			assert.False(t, semi)
			width, ok := opts.Int("tabWidth")
			assert.True(t, ok)
			assert.Equal(t, 4, width)
		})
	}
}

func TestResolve_WalksUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".prettierrc.json"), `{"useTabs": true}`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	opts, found, err := newResolver(t, nil).Resolve(nested)
	require.NoError(t, err)
	require.True(t, found)
	useTabs, _ := opts.Bool("useTabs")
	assert.True(t, useTabs)
}

func TestResolve_StripsOverridesAndSchema(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".prettierrc.json"), `{
		"$schema": "http://json.schemastore.org/prettierrc",
		"semi": true,
		"overrides": [{"files": "*.md", "options": {"semi": false}}]
	}`)

	opts, _, err := newResolver(t, nil).Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, Options{"semi": true}, opts)
}

func TestResolve_PackageJSONWithoutPrettierIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".prettierrc.json"), `{"semi": true}`)
	writeFile(t, filepath.Join(root, "app", "package.json"), `{"name": "app", "prettier": "@company/prettier-config"}`)

	opts, found, err := newResolver(t, nil).Resolve(filepath.Join(root, "app"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, Options{"semi": true}, opts)
}

func TestResolve_Memoized(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".prettierrc.json"), `{"semi": true}`)
	fsys := &testable.MockFileSystem{}
	r := newResolver(t, fsys)

	first, _, err := r.Resolve(dir)
	require.NoError(t, err)
	reads := fsys.Reads.Load()

	first["semi"] = false
	second, _, err := r.Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, reads, fsys.Reads.Load())
	assert.Equal(t, true, second["semi"])
}

func TestResolve_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".prettierrc.json"), `{"semi": `)
	_, _, err := newResolver(t, nil).Resolve(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".prettierrc.json")
}
