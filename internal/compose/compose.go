package compose

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/xojs/xo-sub000/internal/config"
	"github.com/xojs/xo-sub000/internal/constants"
	"github.com/xojs/xo-sub000/internal/options"
	"github.com/xojs/xo-sub000/internal/prettier"
	"github.com/xojs/xo-sub000/internal/rules"
	"github.com/xojs/xo-sub000/internal/ruleset"
)

// FormatterResolver supplies the Prettier options for a directory.
type FormatterResolver interface {
	Resolve(dir string) (prettier.Options, bool, error)
}

// Scope is the file scope of a fragment.
type Scope struct {
	Files   []string
	Ignores []string
}

// Result is a composed rule-set plus the scopes that configure the
// TypeScript project themselves.
type Result struct {
	RuleSet  *ruleset.RuleSet
	OptedOut []Scope
}

// Composer builds resolved rule-sets for one working directory.
type Composer struct {
	Prettier FormatterResolver
	Cwd      string
	TS       bool
}

// Compose appends one or more blocks per fragment to base, in order. A
// conflict between shorthands and the Prettier configuration aborts the
// whole composition.
func (c *Composer) Compose(ctx context.Context, base []ruleset.Block, fragments []config.Fragment) (*Result, error) {
	blocks := make([]ruleset.Block, 0, len(base)+2*len(fragments))
	for _, b := range base {
		blocks = append(blocks, b.Clone())
	}

	var optedOut []Scope
	for i, f := range fragments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.IsGlobalIgnore() {
			blocks = append(blocks, ruleset.Block{Name: f.Name, Ignores: slices.Clone(f.Ignores)})
			continue
		}

		label := fragmentLabel(f.Name, i)
		expanded, err := c.expand(f, label)
		if err != nil {
			return nil, fmt.Errorf("config[%d]: %w", i, err)
		}
		if pinsProject(f.LanguageOptions) {
			optedOut = append(optedOut, Scope{Files: slices.Clone(expanded[0].Files), Ignores: slices.Clone(f.Ignores)})
		}
		for j, b := range expanded {
			if j == 0 {
				blocks = append(blocks, Partition(b, label, c.Cwd)...)
				continue
			}
			blocks = append(blocks, b)
		}
	}

	slog.Debug("composed rule-set", "fragments", len(fragments), "blocks", len(blocks))
	return &Result{
		RuleSet:  &ruleset.RuleSet{Cwd: c.Cwd, Blocks: blocks},
		OptedOut: optedOut,
	}, nil
}

// expand returns the fragment's own block followed by the blocks its
// shorthands append: the framework bundle, then the formatter block.
// Appended blocks are named after label.
func (c *Composer) expand(f config.Fragment, label string) ([]ruleset.Block, error) {
	files := slices.Clone(f.Files)
	if len(files) == 0 {
		files = []string{constants.AllFilesGlob}
	}

	own := ruleset.Block{
		Name:            f.Name,
		Files:           files,
		Ignores:         slices.Clone(f.Ignores),
		Plugins:         slices.Clone(f.Plugins),
		Envs:            slices.Clone(f.Envs),
		Globals:         slices.Clone(f.Globals),
		Extends:         slices.Clone(f.Extends),
		LanguageOptions: maps.Clone(f.LanguageOptions),
		Settings:        maps.Clone(f.Settings),
		Extra:           maps.Clone(f.Extra),
	}
	derived := shorthandRules(f.Shorthands)
	if len(derived) > 0 || f.Rules != nil {
		own.Rules = rules.Merge(derived, f.Rules)
	}
	out := []ruleset.Block{own}

	scoped := func(name string, r rules.Rules) ruleset.Block {
		// Explicit rules of the fragment win over anything its shorthands
		// pull in.
		for id := range f.Rules {
			delete(r, id)
		}
		return ruleset.Block{Name: label + "/" + name, Files: slices.Clone(files), Ignores: slices.Clone(f.Ignores), Rules: r}
	}

	if f.Shorthands.React {
		r := rules.React()
		if width, ok := f.Shorthands.Indent.Spaces(); ok {
			r["react/jsx-indent"] = rules.E(rules.Error, width)
			r["react/jsx-indent-props"] = rules.E(rules.Error, width)
		}
		b := scoped("react", r)
		b.Plugins = rules.ReactPlugins()
		b.Settings = rules.ReactSettings()
		out = append(out, b)
	}

	// The formatter block comes last so it can switch off style rules
	// from the framework bundle too.
	switch f.Shorthands.Prettier {
	case options.PrettierOn:
		formatter, err := c.formatterOptions()
		if err != nil {
			return nil, err
		}
		ruleOptions, err := options.PrettierRuleOptions(f.Shorthands, formatter)
		if err != nil {
			return nil, err
		}
		r := rules.Merge(rules.PrettierCompat(), rules.PrettierRecommended())
		r[rules.PrettierRuleID] = rules.E(rules.Error, ruleOptions)
		b := scoped("prettier", r)
		b.Plugins = rules.PrettierPlugins()
		out = append(out, b)
	case options.PrettierCompat:
		out = append(out, scoped("prettier-compat", rules.PrettierCompat()))
	}

	return out, nil
}

func (c *Composer) formatterOptions() (map[string]any, error) {
	if c.Prettier == nil {
		return nil, nil
	}
	opts, found, err := c.Prettier.Resolve(c.Cwd)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return opts, nil
}

// shorthandRules expands indentation and semicolon shorthands into rule
// entries.
func shorthandRules(s options.Shorthands) rules.Rules {
	r := rules.Rules{}
	switch {
	case s.Indent.Tabs():
		r["@stylistic/indent"] = rules.E(rules.Error, "tab", map[string]any{"SwitchCase": 1})
		r["@stylistic/indent-binary-ops"] = rules.E(rules.Error, "tab")
	case s.Indent.IsSet():
		width, _ := s.Indent.Spaces()
		r["@stylistic/indent"] = rules.E(rules.Error, width, map[string]any{"SwitchCase": 1})
		r["@stylistic/indent-binary-ops"] = rules.E(rules.Error, width)
	}
	switch s.Semicolon {
	case options.SemicolonNever:
		r["@stylistic/semi"] = rules.E(rules.Error, "never")
		r["@stylistic/semi-spacing"] = rules.E(rules.Error, map[string]any{"before": false, "after": true})
	case options.SemicolonAlways:
		r["@stylistic/semi"] = rules.E(rules.Error, "always")
	}
	return r
}

// pinsProject reports whether languageOptions configure the TypeScript
// project explicitly.
func pinsProject(languageOptions map[string]any) bool {
	parserOptions, ok := languageOptions["parserOptions"].(map[string]any)
	if !ok {
		return false
	}
	for _, k := range []string{"project", "projectService", "tsconfigRootDir"} {
		if _, ok := parserOptions[k]; ok {
			return true
		}
	}
	return false
}

// fragmentLabel names the blocks derived from the i-th fragment. Unnamed
// fragments get a positional name so derived blocks never collide with the
// base blocks.
func fragmentLabel(name string, i int) string {
	if name == "" {
		return fmt.Sprintf("xo/config-%d", i)
	}
	return name
}
