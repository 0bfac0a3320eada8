package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/xojs/xo-sub000/internal/engine"
	"github.com/xojs/xo-sub000/internal/linter"
	"github.com/xojs/xo-sub000/internal/ruleset"
)

// stubEngine reports one error for every file whose name contains "bad".
type stubEngine struct {
	mu     sync.Mutex
	texts  []string
	fixed  []engine.Result
	output string
}

func (s *stubEngine) LintFiles(_ context.Context, _ *ruleset.RuleSet, files []string) ([]engine.Result, error) {
	out := make([]engine.Result, len(files))
	for i, f := range files {
		out[i] = engine.Result{FilePath: f, Messages: []engine.Message{}}
		if strings.Contains(filepath.Base(f), "bad") {
			out[i].Messages = []engine.Message{{RuleID: "no-var", Severity: engine.SeverityError, Line: 1, Column: 1, Message: "Unexpected var, use let or const instead."}}
			out[i].ErrorCount = 1
			out[i].FixableErrorCount = 1
			out[i].Output = "let a;\n"
		}
	}
	return out, nil
}

func (s *stubEngine) LintText(_ context.Context, _ *ruleset.RuleSet, text, path string) (engine.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return engine.Result{FilePath: path, Messages: []engine.Message{}, Output: s.output}, nil
}

func (s *stubEngine) OutputFixes(results []engine.Result) error {
	s.fixed = append(s.fixed, results...)
	return nil
}

// withStubEngine makes every run use eng and records the options the CLI
// built.
func withStubEngine(t *testing.T, eng engine.Engine) *linter.Options {
	t.Helper()
	captured := new(linter.Options)
	orig := newLinter
	newLinter = func(opts linter.Options) (*linter.Linter, error) {
		*captured = opts
		return linter.NewWithEngine(opts, eng, nil)
	}
	t.Cleanup(func() { newLinter = orig })
	return captured
}

// resetFlags restores every flag to its default so tests do not leak state.
func resetFlags() {
	for _, fs := range []*pflag.FlagSet{rootCmd.Flags(), rootCmd.PersistentFlags()} {
		fs.VisitAll(func(f *pflag.Flag) {
			if sv, ok := f.Value.(pflag.SliceValue); ok {
				_ = sv.Replace(nil)
			} else {
				_ = f.Value.Set(f.DefValue)
			}
			f.Changed = false
		})
	}
}

func newTestCmd(args ...string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	resetFlags()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	return rootCmd, stdout, stderr
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["package.json"] = `{"name": "fixture"}`
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}
