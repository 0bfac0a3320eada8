package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xojs/xo-sub000/internal/ruleset"
	"github.com/xojs/xo-sub000/internal/testable"
	"github.com/xojs/xo-sub000/internal/xoerrors"
)

// exitProblems is eslint's status when it ran and found errors.
const exitProblems = 1

// ESLint runs the eslint command line with a generated flat config.
type ESLint struct {
	// Cwd is the directory eslint runs in.
	Cwd string

	// ConfigDir receives the generated config. Plugin imports resolve from
	// here, so it should sit inside the project.
	ConfigDir string

	// Fix asks eslint for fixed output without writing files.
	Fix bool

	Exec testable.CommandExecutor
	FS   testable.FileSystem

	mu      sync.Mutex
	written map[string]string // fingerprint -> config path
}

// Compile-time interface check.
var _ Engine = (*ESLint)(nil)

// NewESLint returns an ESLint engine using the real executor and file
// system.
func NewESLint(cwd, configDir string, fix bool) *ESLint {
	return &ESLint{
		Cwd:       cwd,
		ConfigDir: configDir,
		Fix:       fix,
		Exec:      testable.DefaultExecutor(),
		FS:        testable.DefaultFS,
	}
}

// LintFiles runs eslint once over files.
func (e *ESLint) LintFiles(ctx context.Context, rs *ruleset.RuleSet, files []string) ([]Result, error) {
	if len(files) == 0 {
		return nil, nil
	}
	results, err := e.run(ctx, rs, append([]string{"--"}, files...), "")
	if err != nil {
		return nil, err
	}
	return order(results, files), nil
}

// LintText feeds text to eslint on stdin as the file at path.
func (e *ESLint) LintText(ctx context.Context, rs *ruleset.RuleSet, text, path string) (Result, error) {
	args := []string{"--stdin"}
	if path != "" {
		args = append(args, "--stdin-filename", path)
	}
	results, err := e.run(ctx, rs, args, text)
	if err != nil {
		return Result{}, err
	}
	if len(results) == 0 {
		return Result{FilePath: path}, nil
	}
	return results[0], nil
}

// OutputFixes writes fixed output back to disk.
func (e *ESLint) OutputFixes(results []Result) error {
	return WriteFixes(e.fs(), results)
}

func (e *ESLint) run(ctx context.Context, rs *ruleset.RuleSet, extra []string, stdin string) ([]Result, error) {
	bin, err := e.binary()
	if err != nil {
		return nil, &xoerrors.EngineInitError{Err: err}
	}
	configPath, err := e.writeConfig(rs)
	if err != nil {
		return nil, &xoerrors.EngineInitError{Err: err}
	}

	args := []string{"--format", "json", "--config", configPath}
	if e.Fix {
		args = append(args, "--fix-dry-run")
	}
	args = append(args, extra...)

	cmd := e.Exec.CommandContext(ctx, bin, args...)
	cmd.Dir = e.Cwd
	cmd.Stdin = strings.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("running eslint", "config", configPath, "args", len(args))
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != exitProblems || len(bytes.TrimSpace(out)) == 0 {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = err.Error()
			}
			return nil, &xoerrors.EngineInitError{Err: errors.New(msg)}
		}
	}

	var results []Result
	if err := json.Unmarshal(out, &results); err != nil {
		return nil, fmt.Errorf("parsing eslint output: %w", err)
	}
	return results, nil
}

// binary prefers the project's own eslint.
func (e *ESLint) binary() (string, error) {
	local := filepath.Join(e.Cwd, "node_modules", ".bin", "eslint")
	if testable.FileExists(e.fs(), local) {
		return local, nil
	}
	path, err := e.Exec.LookPath("eslint")
	if err != nil {
		return "", fmt.Errorf("eslint not found: %w", err)
	}
	return path, nil
}

// writeConfig renders rs once per fingerprint.
func (e *ESLint) writeConfig(rs *ruleset.RuleSet) (string, error) {
	fp, err := rs.Fingerprint()
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if path, ok := e.written[fp]; ok {
		return path, nil
	}

	data, err := FlatConfig(rs)
	if err != nil {
		return "", err
	}
	path := filepath.Join(e.ConfigDir, "eslint.config."+fp[:16]+".mjs")
	fsys := e.fs()
	if err := fsys.MkdirAll(e.ConfigDir, 0o750); err != nil {
		return "", fmt.Errorf("creating %s: %w", e.ConfigDir, err)
	}
	if err := fsys.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if e.written == nil {
		e.written = make(map[string]string)
	}
	e.written[fp] = path
	return path, nil
}

func (e *ESLint) fs() testable.FileSystem {
	if e.FS == nil {
		return testable.DefaultFS
	}
	return e.FS
}

// order returns one result per file in the order of files. Files eslint did
// not report on get an empty result.
func order(results []Result, files []string) []Result {
	byPath := make(map[string]Result, len(results))
	for _, r := range results {
		byPath[filepath.Clean(r.FilePath)] = r
	}
	out := make([]Result, len(files))
	for i, f := range files {
		if r, ok := byPath[filepath.Clean(f)]; ok {
			out[i] = r
			continue
		}
		out[i] = Result{FilePath: f}
	}
	return out
}
