package compose

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xojs/xo-sub000/internal/config"
	"github.com/xojs/xo-sub000/internal/constants"
	"github.com/xojs/xo-sub000/internal/prettier"
	"github.com/xojs/xo-sub000/internal/rules"
	"github.com/xojs/xo-sub000/internal/ruleset"
	"github.com/xojs/xo-sub000/internal/xoerrors"
)

const cwd = "/project"

type fakeFormatter struct {
	opts  prettier.Options
	err   error
	calls int
}

func (f *fakeFormatter) Resolve(string) (prettier.Options, bool, error) {
	f.calls++
	return f.opts, f.opts != nil, f.err
}

func fragments(t *testing.T, raws ...map[string]any) []config.Fragment {
	t.Helper()
	out := make([]config.Fragment, 0, len(raws))
	for _, raw := range raws {
		f, err := config.DecodeFragment(raw)
		require.NoError(t, err)
		out = append(out, f)
	}
	return out
}

func compose(t *testing.T, c *Composer, raws ...map[string]any) *Result {
	t.Helper()
	res, err := c.Compose(context.Background(), Base(c.Cwd, c.TS), fragments(t, raws...))
	require.NoError(t, err)
	return res
}

func encode(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestCompose_NoFragmentsIsBase(t *testing.T) {
	c := &Composer{Cwd: cwd, TS: true}
	res := compose(t, c)
	assert.Equal(t, encode(t, Base(cwd, true)), encode(t, res.RuleSet.Blocks))
	assert.Empty(t, res.OptedOut)
}

func TestCompose_Idempotent(t *testing.T) {
	c := &Composer{Cwd: cwd, TS: true, Prettier: &fakeFormatter{opts: prettier.Options{"printWidth": 100}}}
	raws := []map[string]any{
		{"ignores": []any{"dist/**"}},
		{"space": 4, "prettier": true, "react": true, "rules": map[string]any{"@typescript-eslint/no-explicit-any": "warn"}},
	}
	a := compose(t, c, raws...)
	b := compose(t, c, raws...)

	fa, err := a.RuleSet.Fingerprint()
	require.NoError(t, err)
	fb, err := b.RuleSet.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Equal(t, encode(t, a.RuleSet), encode(t, b.RuleSet))
}

func TestCompose_SpaceOverridesBaseTabs(t *testing.T) {
	c := &Composer{Cwd: cwd}
	res := compose(t, c, map[string]any{}, map[string]any{"space": true})

	blocks := res.RuleSet.Blocks
	last := blocks[len(blocks)-1]
	assert.Equal(t, rules.E(rules.Error, 2, map[string]any{"SwitchCase": 1}), last.Rules["@stylistic/indent"])

	fc, ok := res.RuleSet.ConfigForFile("/project/src/index.js")
	require.True(t, ok)
	assert.Equal(t, rules.E(rules.Error, 2, map[string]any{"SwitchCase": 1}), fc.Rules["@stylistic/indent"])
}

func TestCompose_GlobalIgnorePassthrough(t *testing.T) {
	c := &Composer{Cwd: cwd}
	res := compose(t, c, map[string]any{"ignores": []any{"**/test"}})

	blocks := res.RuleSet.Blocks
	assert.JSONEq(t, `{"ignores":["**/test"]}`, encode(t, blocks[len(blocks)-1]))
	assert.True(t, res.RuleSet.IsIgnored("/project/a/test/x.js"))
}

func TestCompose_LastWriteWins(t *testing.T) {
	c := &Composer{Cwd: cwd}
	res := compose(t, c,
		map[string]any{"rules": map[string]any{"no-console": []any{"error", map[string]any{"allow": []any{"warn"}}}}},
		map[string]any{"files": "src/**", "rules": map[string]any{"no-console": "warn"}},
	)

	fc, ok := res.RuleSet.ConfigForFile("/project/src/a.js")
	require.True(t, ok)
	assert.Equal(t, rules.E(rules.Warn), fc.Rules["no-console"])

	fc, ok = res.RuleSet.ConfigForFile("/project/lib/a.js")
	require.True(t, ok)
	assert.Equal(t, rules.E(rules.Error, map[string]any{"allow": []any{"warn"}}), fc.Rules["no-console"])
}

func TestCompose_ExplicitRulesBeatShorthands(t *testing.T) {
	c := &Composer{Cwd: cwd, Prettier: &fakeFormatter{}}
	res := compose(t, c, map[string]any{
		"semicolon": false,
		"prettier":  "compat",
		"react":     true,
		"rules": map[string]any{
			"@stylistic/semi": []any{"error", "always"},
			"react/jsx-key":   "off",
		},
	})

	fc, ok := res.RuleSet.ConfigForFile("/project/a.jsx")
	require.True(t, ok)
	assert.Equal(t, rules.E(rules.Error, "always"), fc.Rules["@stylistic/semi"])
	assert.Equal(t, rules.E(rules.Off), fc.Rules["react/jsx-key"])
	// Compat still switches off style rules the fragment did not set.
	assert.Equal(t, rules.E(rules.Off), fc.Rules["@stylistic/quotes"])
	assert.Contains(t, fc.Plugins, "react")
}

func TestCompose_SemicolonFalse(t *testing.T) {
	res := compose(t, &Composer{Cwd: cwd}, map[string]any{"semicolon": false})
	fc, ok := res.RuleSet.ConfigForFile("/project/a.js")
	require.True(t, ok)
	assert.Equal(t, rules.E(rules.Error, "never"), fc.Rules["@stylistic/semi"])
	assert.Equal(t, rules.E(rules.Error, map[string]any{"before": false, "after": true}), fc.Rules["@stylistic/semi-spacing"])
}

func TestCompose_PrettierBlockAfterFragment(t *testing.T) {
	formatter := &fakeFormatter{opts: prettier.Options{"printWidth": float64(100)}}
	c := &Composer{Cwd: cwd, Prettier: formatter}
	res := compose(t, c, map[string]any{"files": "src/**/*.js", "prettier": true, "space": 4})

	blocks := res.RuleSet.Blocks
	own, formatterBlock := blocks[len(blocks)-2], blocks[len(blocks)-1]
	assert.Equal(t, []string{"src/**/*.js"}, own.Files)
	assert.Equal(t, []string{"src/**/*.js"}, formatterBlock.Files)
	assert.Equal(t, []string{"prettier"}, formatterBlock.Plugins)

	entry := formatterBlock.Rules[rules.PrettierRuleID]
	require.Len(t, entry.Options, 1)
	assert.Equal(t, map[string]any{
		"singleQuote":     true,
		"bracketSpacing":  false,
		"bracketSameLine": false,
		"trailingComma":   "all",
		"tabWidth":        4,
		"useTabs":         false,
		"semi":            true,
		"printWidth":      float64(100),
	}, entry.Options[0])
	assert.Equal(t, 1, formatter.calls)
}

func TestCompose_ConflictAborts(t *testing.T) {
	c := &Composer{Cwd: cwd, Prettier: &fakeFormatter{opts: prettier.Options{"semi": false}}}
	res, err := c.Compose(context.Background(), Base(cwd, false),
		fragments(t, map[string]any{"semicolon": true, "prettier": true}))
	assert.Nil(t, res)

	var conflict *xoerrors.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "semi", conflict.FormatterOption)
	assert.True(t, xoerrors.IsConfigError(err))
}

func TestCompose_NoConflictWhenAgreeing(t *testing.T) {
	c := &Composer{Cwd: cwd, Prettier: &fakeFormatter{opts: prettier.Options{"semi": true}}}
	_, err := c.Compose(context.Background(), Base(cwd, false),
		fragments(t, map[string]any{"semicolon": true, "prettier": true}))
	assert.NoError(t, err)
}

func TestCompose_FormatterErrorPropagates(t *testing.T) {
	boom := errors.New("bad rc")
	c := &Composer{Cwd: cwd, Prettier: &fakeFormatter{err: boom}}
	_, err := c.Compose(context.Background(), nil, fragments(t, map[string]any{"prettier": true}))
	assert.ErrorIs(t, err, boom)
}

func TestCompose_TypeScriptSplit(t *testing.T) {
	res := compose(t, &Composer{Cwd: cwd, TS: true}, map[string]any{
		"rules": map[string]any{
			"@typescript-eslint/no-explicit-any": "error",
			"no-console":                         "warn",
		},
	})

	blocks := res.RuleSet.Blocks
	require.Len(t, blocks, len(Base(cwd, true))+2)
	tsBlock, plainBlock := blocks[len(blocks)-2], blocks[len(blocks)-1]
	assert.Equal(t, []string{constants.TSFilesGlob}, tsBlock.Files)
	assert.Contains(t, tsBlock.Rules, "@typescript-eslint/no-explicit-any")
	assert.Equal(t, constants.TSParser, tsBlock.LanguageOptions["parser"])
	assert.Equal(t, []string{constants.AllFilesGlob}, plainBlock.Files)
	assert.NotContains(t, plainBlock.Rules, "@typescript-eslint/no-explicit-any")
	assert.Contains(t, plainBlock.Rules, "no-console")

	js, ok := res.RuleSet.ConfigForFile("/project/a.js")
	require.True(t, ok)
	assert.NotContains(t, js.Rules, "@typescript-eslint/no-explicit-any")
	assert.Equal(t, rules.E(rules.Warn), js.Rules["no-console"])

	ts, ok := res.RuleSet.ConfigForFile("/project/a.ts")
	require.True(t, ok)
	assert.Equal(t, rules.E(rules.Error), ts.Rules["@typescript-eslint/no-explicit-any"])
	assert.Equal(t, rules.E(rules.Warn), ts.Rules["no-console"])
}

func TestCompose_OptedOutScopes(t *testing.T) {
	res := compose(t, &Composer{Cwd: cwd, TS: true},
		map[string]any{
			"files":           []any{"packages/a/**/*.ts"},
			"ignores":         []any{"packages/a/gen/**"},
			"languageOptions": map[string]any{"parserOptions": map[string]any{"project": "./packages/a/tsconfig.json"}},
		},
		map[string]any{"languageOptions": map[string]any{"parserOptions": map[string]any{"ecmaFeatures": map[string]any{"jsx": true}}}},
	)
	require.Len(t, res.OptedOut, 1)
	assert.Equal(t, Scope{Files: []string{"packages/a/**/*.ts"}, Ignores: []string{"packages/a/gen/**"}}, res.OptedOut[0])
}

func TestCompose_PinnedProjectNotSplit(t *testing.T) {
	res := compose(t, &Composer{Cwd: cwd, TS: true}, map[string]any{
		"languageOptions": map[string]any{"parserOptions": map[string]any{"project": "./tsconfig.eslint.json"}},
		"rules":           map[string]any{"@typescript-eslint/no-floating-promises": "error"},
	})
	require.Len(t, res.OptedOut, 1)
	require.Len(t, res.RuleSet.Blocks, len(Base(cwd, true))+1)
	own := res.RuleSet.Blocks[len(res.RuleSet.Blocks)-1]
	assert.Equal(t, map[string]any{"project": "./tsconfig.eslint.json"}, own.LanguageOptions["parserOptions"])

	ts, ok := res.RuleSet.ConfigForFile("/project/a.ts")
	require.True(t, ok)
	assert.Equal(t, "./tsconfig.eslint.json", ts.LanguageOptions["parserOptions"].(map[string]any)["project"])
	assert.Equal(t, rules.E(rules.Error), ts.Rules["@typescript-eslint/no-floating-promises"])
}

func TestCompose_UnnamedFragmentBlockNames(t *testing.T) {
	res := compose(t, &Composer{Cwd: cwd, TS: true},
		map[string]any{"rules": map[string]any{"semi": "error"}},
		map[string]any{
			"react": true,
			"rules": map[string]any{"@typescript-eslint/no-explicit-any": "error"},
		},
	)
	names := make(map[string]int)
	for _, b := range res.RuleSet.Blocks {
		if b.Name != "" {
			names[b.Name]++
		}
	}
	for name, n := range names {
		assert.Equal(t, 1, n, name)
	}
	assert.Contains(t, names, "xo/config-1/typescript")
	assert.Contains(t, names, "xo/config-1/react")
}

func TestCompose_DoesNotMutateBase(t *testing.T) {
	base := Base(cwd, false)
	before := encode(t, base)
	c := &Composer{Cwd: cwd}
	res, err := c.Compose(context.Background(), base, fragments(t, map[string]any{"space": 2}))
	require.NoError(t, err)
	res.RuleSet.Blocks[1].Rules["curly"] = rules.E(rules.Off)
	assert.Equal(t, before, encode(t, base))
}

func TestCompose_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Composer{Cwd: cwd}).Compose(ctx, nil, fragments(t, map[string]any{}))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBase(t *testing.T) {
	plain := Base(cwd, false)
	require.Len(t, plain, 2)
	assert.True(t, plain[0].IsGlobalIgnore())
	assert.True(t, plain[1].Base)
	assert.Equal(t, rules.E(rules.Error, "tab", map[string]any{"SwitchCase": 1}), plain[1].Rules["@stylistic/indent"])

	withTS := Base(cwd, true)
	require.Len(t, withTS, 3)
	assert.Equal(t, []string{constants.TSFilesGlob}, withTS[2].Files)

	rs := &ruleset.RuleSet{Cwd: cwd, Blocks: withTS}
	assert.True(t, rs.IsIgnored("/project/node_modules/x/index.js"))
}
