package linter

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/xojs/xo-sub000/internal/cache"
	"github.com/xojs/xo-sub000/internal/compose"
	"github.com/xojs/xo-sub000/internal/constants"
	"github.com/xojs/xo-sub000/internal/engine"
	"github.com/xojs/xo-sub000/internal/files"
	"github.com/xojs/xo-sub000/internal/ruleset"
	"github.com/xojs/xo-sub000/internal/xoerrors"
)

// ignoredFileMessage is reported by LintText for an ignored file when asked
// to warn.
const ignoredFileMessage = "File ignored because of a matching ignore pattern."

// LintFiles lints every file matched by patterns. Configuration is fully
// resolved, including the fallback TypeScript project, before any file is
// linted. A file that fails to lint becomes a fatal entry in the report.
func (l *Linter) LintFiles(ctx context.Context, patterns []string) (*Report, error) {
	rc, err := l.Resolve(ctx, "")
	if err != nil {
		return nil, err
	}
	matched, err := files.Glob(ctx, patterns, files.Options{
		Cwd:              l.cwd,
		IgnorePatterns:   l.opts.Ignores,
		RespectGitignore: true,
	})
	if err != nil {
		return nil, err
	}
	paths := slices.DeleteFunc(matched, rc.RuleSet.IsIgnored)
	if len(paths) == 0 {
		return newReport(nil), nil
	}

	rs, err := l.withFallbackProject(ctx, rc, paths)
	if err != nil {
		return nil, err
	}

	var store *cache.Store
	if l.opts.Cache && !l.opts.Fix {
		store = cache.OpenOrDisable(cache.Config{
			Dir:    cache.Dir(l.fs, l.cwd),
			Logger: slog.Default().With("component", "badger"),
		})
		defer func() {
			if err := store.Close(); err != nil {
				slog.Warn("closing lint cache", "error", err)
			}
		}()
	}

	results, err := l.lintAll(ctx, rs, rc.ConfigPath, paths, store)
	if err != nil {
		return nil, err
	}
	return l.report(results), nil
}

// lintAll looks every file up in the cache, then lints the misses in
// bounded batches. Results come back in the order of paths.
func (l *Linter) lintAll(ctx context.Context, rs *ruleset.RuleSet, configPath string, paths []string, store *cache.Store) ([]engine.Result, error) {
	fingerprint, err := rs.Fingerprint()
	if err != nil {
		return nil, err
	}
	results := make([]engine.Result, len(paths))
	keys := make([]string, len(paths))
	hit := make([]bool, len(paths))

	if store != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(l.opts.Concurrency)
		for i, path := range paths {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				content, err := l.fs.ReadFile(path)
				if err != nil {
					results[i], hit[i] = engine.FatalResult(path, err), true
					return nil
				}
				keys[i] = cache.Key(configPath, fingerprint, rs.MatchKey(path), content)
				results[i], hit[i] = store.Get(keys[i])
				results[i].FilePath = path
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	var pending []int
	for i := range paths {
		if !hit[i] {
			pending = append(pending, i)
		}
	}
	slog.Debug("linting files", "files", len(paths), "cached", len(paths)-len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)
	for _, batch := range batches(pending, l.opts.Concurrency) {
		g.Go(func() error {
			batchPaths := make([]string, len(batch))
			for j, i := range batch {
				batchPaths[j] = paths[i]
			}
			out, err := l.engine.LintFiles(gctx, rs, batchPaths)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				var initErr *xoerrors.EngineInitError
				if errors.As(err, &initErr) {
					return err
				}
				for _, i := range batch {
					results[i] = engine.FatalResult(paths[i], err)
				}
				return nil
			}
			for j, i := range batch {
				results[i] = out[j]
				if keys[i] != "" {
					store.Put(keys[i], out[j])
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// batches splits indices into at most n contiguous, evenly sized groups.
func batches(indices []int, n int) [][]int {
	if len(indices) == 0 {
		return nil
	}
	n = max(1, min(n, len(indices)))
	size := (len(indices) + n - 1) / n
	var out [][]int
	for start := 0; start < len(indices); start += size {
		out = append(out, indices[start:min(start+size, len(indices))])
	}
	return out
}

// LintText lints code as the file given in opts.
func (l *Linter) LintText(ctx context.Context, code string, opts TextOptions) (*Report, error) {
	filePath := opts.FilePath
	if filePath == "" {
		filePath = l.opts.FilePath
	}
	if len(l.opts.Ignores) > 0 && filePath == "" {
		return nil, xoerrors.ErrMissingFilePath
	}
	var path string
	if filePath != "" {
		path = l.abs(filePath)
	}

	rc, err := l.Resolve(ctx, path)
	if err != nil {
		return nil, err
	}
	if path != "" && rc.RuleSet.IsIgnored(path) {
		if !opts.WarnIfIgnored {
			return newReport(nil), nil
		}
		return newReport([]engine.Result{{
			FilePath:     path,
			Messages:     []engine.Message{{Severity: engine.SeverityWarning, Message: ignoredFileMessage}},
			WarningCount: 1,
		}}), nil
	}

	rs := rc.RuleSet
	if path != "" {
		if rs, err = l.withFallbackProject(ctx, rc, []string{path}); err != nil {
			return nil, err
		}
	}
	res, err := l.engine.LintText(ctx, rs, code, path)
	if err != nil {
		return nil, err
	}
	return l.report([]engine.Result{res}), nil
}

// withFallbackProject resolves TypeScript project membership for paths and,
// when some files are outside the project, returns a copy of the rule-set
// with a block pointing those files at the fallback project. Files in scopes
// that configure the project themselves are left alone.
func (l *Linter) withFallbackProject(ctx context.Context, rc *ResolvedConfig, paths []string) (*ruleset.RuleSet, error) {
	rs := rc.RuleSet
	if !l.opts.TS {
		return rs, nil
	}
	var candidates []string
	for _, p := range paths {
		if constants.IsTS(p) && !inScopes(rs, rc.OptedOut, p) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return rs, nil
	}

	membership, err := l.projects.Resolve(ctx, l.cwd, candidates)
	if err != nil {
		return nil, err
	}
	if membership.FallbackPath == "" {
		return rs, nil
	}

	filesGlobs := make([]string, 0, len(membership.Uncovered))
	for _, f := range membership.Uncovered {
		rel, err := filepath.Rel(l.cwd, f)
		if err != nil {
			continue
		}
		filesGlobs = append(filesGlobs, escapeGlob(filepath.ToSlash(rel)))
	}
	out := &ruleset.RuleSet{Cwd: rs.Cwd, Blocks: slices.Clone(rs.Blocks)}
	out.Blocks = append(out.Blocks, ruleset.Block{
		Name:  "xo/typescript-fallback",
		Files: filesGlobs,
		LanguageOptions: map[string]any{
			"parserOptions": map[string]any{
				"projectService":  false,
				"project":         membership.FallbackPath,
				"tsconfigRootDir": l.cwd,
			},
		},
	})
	return out, nil
}

func inScopes(rs *ruleset.RuleSet, scopes []compose.Scope, path string) bool {
	for _, s := range scopes {
		if rs.Matches(ruleset.Block{Files: s.Files, Ignores: s.Ignores}, path) {
			return true
		}
	}
	return false
}

// escapeGlob makes a literal path safe to use as a glob pattern.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`*?[]{}!\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (l *Linter) report(results []engine.Result) *Report {
	if l.opts.Quiet {
		results = errorsOnly(results)
	}
	return newReport(results)
}
