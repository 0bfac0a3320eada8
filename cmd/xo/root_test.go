package main

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xojs/xo-sub000/internal/engine"
)

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return ExitOK
	}
	var ece *exitCodeError
	require.True(t, errors.As(err, &ece), "unexpected error type: %v", err)
	return ece.ExitCode()
}

func TestRootHelp(t *testing.T) {
	cmd, stdout, _ := newTestCmd("--help")
	require.NoError(t, cmd.Execute())

	out := stdout.String()
	assert.Contains(t, out, "xo lints JavaScript and TypeScript")
	assert.Contains(t, out, "--print-config")
	assert.Contains(t, out, "version")
}

func TestFlagsRegistered(t *testing.T) {
	for _, name := range []string{"cwd", "fix", "space", "semicolon", "prettier", "react", "ts", "ignore", "reporter", "stdin", "stdin-filename", "print-config", "no-cache"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), name)
	}
	for _, name := range []string{"verbose", "quiet", "no-color"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "verbose", rootCmd.PersistentFlags().ShorthandLookup("v").Name)
	assert.Equal(t, "quiet", rootCmd.PersistentFlags().ShorthandLookup("q").Name)
}

func TestLint_Clean(t *testing.T) {
	dir := writeProject(t, map[string]string{"good.js": "const a = 1;\n"})
	withStubEngine(t, &stubEngine{})

	cmd, stdout, _ := newTestCmd("--cwd", dir, "--no-cache")
	require.NoError(t, cmd.Execute())
	assert.Empty(t, stdout.String())
}

func TestLint_ErrorsExitOne(t *testing.T) {
	dir := writeProject(t, map[string]string{"good.js": "const a = 1;\n", "bad.js": "var a;\n"})
	withStubEngine(t, &stubEngine{})

	cmd, stdout, _ := newTestCmd("--cwd", dir, "--no-cache")
	err := cmd.Execute()
	assert.Equal(t, ExitLintErrors, exitCode(t, err))
	assert.Empty(t, err.Error())

	out := stdout.String()
	assert.Contains(t, out, filepath.Join(dir, "bad.js"))
	assert.NotContains(t, out, "good.js")
	assert.Contains(t, out, "✖ 1 problem (1 error, 0 warnings)")
}

func TestLint_JSONReporter(t *testing.T) {
	dir := writeProject(t, map[string]string{"a.js": "a\n", "bad.js": "b\n"})
	withStubEngine(t, &stubEngine{})

	cmd, stdout, _ := newTestCmd("--cwd", dir, "--no-cache", "--reporter", "json")
	assert.Equal(t, ExitLintErrors, exitCode(t, cmd.Execute()))

	var results []engine.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(dir, "a.js"), results[0].FilePath)
	assert.Equal(t, 1, results[1].ErrorCount)
}

func TestLint_Fix(t *testing.T) {
	dir := writeProject(t, map[string]string{"bad.js": "var a;\n"})
	eng := &stubEngine{}
	withStubEngine(t, eng)

	cmd, _, _ := newTestCmd("--cwd", dir, "--fix")
	assert.Equal(t, ExitLintErrors, exitCode(t, cmd.Execute()))
	require.Len(t, eng.fixed, 1)
	assert.Equal(t, "let a;\n", eng.fixed[0].Output)
}

func TestLint_UnknownReporter(t *testing.T) {
	withStubEngine(t, &stubEngine{})
	cmd, _, _ := newTestCmd("--cwd", t.TempDir(), "--reporter", "junit")
	err := cmd.Execute()
	assert.Equal(t, ExitConfigError, exitCode(t, err))
	assert.Contains(t, err.Error(), "unknown reporter")
}

func TestLint_ConfigConflict(t *testing.T) {
	dir := writeProject(t, map[string]string{".prettierrc": "semi: false\n", "a.js": "a\n"})
	withStubEngine(t, &stubEngine{})

	cmd, stdout, _ := newTestCmd("--cwd", dir, "--no-cache", "--prettier", "--semicolon")
	err := cmd.Execute()
	assert.Equal(t, ExitConfigError, exitCode(t, err))
	assert.Contains(t, err.Error(), "`semi` is false")
	assert.Empty(t, stdout.String())
}

func TestLint_MalformedConfig(t *testing.T) {
	dir := writeProject(t, map[string]string{"xo.config.json": `[1]`, "a.js": "a\n"})
	withStubEngine(t, &stubEngine{})

	cmd, _, _ := newTestCmd("--cwd", dir, "--no-cache")
	err := cmd.Execute()
	assert.Equal(t, ExitConfigError, exitCode(t, err))
	assert.Contains(t, err.Error(), "config[0]")
}

func TestLint_InvalidPrettierValue(t *testing.T) {
	withStubEngine(t, &stubEngine{})
	cmd, _, _ := newTestCmd("--cwd", t.TempDir(), "--prettier=maybe")
	assert.Equal(t, ExitConfigError, exitCode(t, cmd.Execute()))
}

func TestLintOptions(t *testing.T) {
	dir := writeProject(t, map[string]string{})
	opts := withStubEngine(t, &stubEngine{})

	cmd, _, _ := newTestCmd("--cwd", dir, "--space=4", "--semicolon=false", "--ignore", "gen/**", "--ignore", "tmp/**", "-q")
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "4", opts.Space)
	require.NotNil(t, opts.Semicolon)
	assert.False(t, *opts.Semicolon)
	assert.Nil(t, opts.Prettier)
	assert.Equal(t, []string{"gen/**", "tmp/**"}, opts.Ignores)
	assert.True(t, opts.Quiet)
	assert.True(t, opts.Cache)
	assert.True(t, opts.TS)

	cmd, _, _ = newTestCmd("--cwd", dir, "--space", "--prettier=compat", "--no-cache", "--ts=false")
	require.NoError(t, cmd.Execute())
	assert.Equal(t, true, opts.Space)
	assert.Nil(t, opts.Semicolon)
	assert.Equal(t, "compat", opts.Prettier)
	assert.Empty(t, opts.Ignores)
	assert.False(t, opts.Cache)
	assert.False(t, opts.TS)
}

func TestPrintConfig(t *testing.T) {
	dir := writeProject(t, map[string]string{"xo.config.json": `{"rules": {"no-console": "warn"}}`})
	withStubEngine(t, &stubEngine{})

	cmd, stdout, _ := newTestCmd("--cwd", dir, "--space", "--print-config", "src/index.js")
	require.NoError(t, cmd.Execute())

	var fc struct {
		Rules map[string]any `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &fc))
	assert.Equal(t, "warn", fc.Rules["no-console"])
	assert.Equal(t, []any{"error", float64(2), map[string]any{"SwitchCase": float64(1)}}, fc.Rules["@stylistic/indent"])
}

func TestPrintConfig_IgnoredFile(t *testing.T) {
	dir := writeProject(t, map[string]string{})
	withStubEngine(t, &stubEngine{})

	cmd, _, _ := newTestCmd("--cwd", dir, "--print-config", "node_modules/x/index.js")
	err := cmd.Execute()
	assert.Equal(t, ExitConfigError, exitCode(t, err))
	assert.Contains(t, err.Error(), "ignored")
}

func TestStdin(t *testing.T) {
	dir := writeProject(t, map[string]string{})
	eng := &stubEngine{}
	withStubEngine(t, eng)

	cmd, stdout, _ := newTestCmd("--cwd", dir, "--stdin", "--stdin-filename", "a.js")
	cmd.SetIn(strings.NewReader("const a = 1;\n"))
	require.NoError(t, cmd.Execute())
	assert.Equal(t, []string{"const a = 1;\n"}, eng.texts)
	assert.Empty(t, stdout.String())
}

func TestStdin_IgnoredFileWarns(t *testing.T) {
	dir := writeProject(t, map[string]string{})
	eng := &stubEngine{}
	withStubEngine(t, eng)

	cmd, stdout, _ := newTestCmd("--cwd", dir, "--stdin", "--stdin-filename", "dist/a.js")
	cmd.SetIn(strings.NewReader("a\n"))
	require.NoError(t, cmd.Execute())
	assert.Empty(t, eng.texts)
	assert.Contains(t, stdout.String(), "File ignored because of a matching ignore pattern.")
}

func TestStdin_Fix(t *testing.T) {
	dir := writeProject(t, map[string]string{})
	withStubEngine(t, &stubEngine{output: "const a = 1;\n"})

	cmd, stdout, _ := newTestCmd("--cwd", dir, "--stdin", "--stdin-filename", "a.js", "--fix")
	cmd.SetIn(strings.NewReader("var a = 1\n"))
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "const a = 1;\n", stdout.String())
}

func TestStdin_FixUnchanged(t *testing.T) {
	dir := writeProject(t, map[string]string{})
	withStubEngine(t, &stubEngine{})

	cmd, stdout, _ := newTestCmd("--cwd", dir, "--stdin", "--stdin-filename", "a.js", "--fix")
	cmd.SetIn(strings.NewReader("const a = 1;\n"))
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "const a = 1;\n", stdout.String())
}

func TestParseSpace(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"4", "4"},
		{"1", "1"},
		{"0", "0"},
		{"wide", "wide"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSpace(tt.in))
		})
	}
}

func TestParsePrettier(t *testing.T) {
	v, err := parsePrettier("compat")
	require.NoError(t, err)
	assert.Equal(t, "compat", v)

	v, err = parsePrettier("false")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = parsePrettier("sometimes")
	assert.Error(t, err)
}
