package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"text/template"

	"github.com/xojs/xo-sub000/internal/rules"
	"github.com/xojs/xo-sub000/internal/ruleset"
)

type importSpec struct {
	Ident  string
	Key    string // JSON-quoted plugin or parser name
	Module string // JSON-quoted module specifier
}

type flatConfigData struct {
	Plugins []importSpec
	Parsers []importSpec
	Globals bool
	Blocks  string
}

var flatConfigTmpl = template.Must(template.New("eslint.config.mjs").Parse(`// Generated by xo. Do not edit.
{{- range .Plugins}}
import {{.Ident}} from {{.Module}};
{{- end}}
{{- range .Parsers}}
import {{.Ident}} from {{.Module}};
{{- end}}
{{- if .Globals}}
import globals from "globals";
{{- else}}
const globals = {};
{{- end}}

const plugins = {
{{- range .Plugins}}
	{{.Key}}: {{.Ident}},
{{- end}}
};

const parsers = {
{{- range .Parsers}}
	{{.Key}}: {{.Ident}},
{{- end}}
};

const blocks = {{.Blocks}};

export default blocks.map(({plugins: names, envs, globals: declared, ...block}) => {
	if (names) {
		block.plugins = Object.fromEntries(names.map(name => [name, plugins[name]]));
	}
	const parser = block.languageOptions?.parser;
	if (typeof parser === "string") {
		block.languageOptions = {...block.languageOptions, parser: parsers[parser]};
	}
	if (envs || declared) {
		block.languageOptions = {
			...block.languageOptions,
			globals: {
				...Object.assign({}, ...(envs ?? []).map(env => globals[env] ?? {})),
				...Object.fromEntries((declared ?? []).map(name => [name, "readonly"])),
				...block.languageOptions?.globals,
			},
		};
	}
	return block;
});
`))

// FlatConfig renders rs as an ESLint flat config module. Plugins and parsers
// are imported by package name. Extends entries are not forwarded.
func FlatConfig(rs *ruleset.RuleSet) ([]byte, error) {
	var pluginNames, parserNames []string
	useGlobals := false
	blocks := make([]ruleset.Block, 0, len(rs.Blocks))
	for _, b := range rs.Blocks {
		pluginNames = append(pluginNames, b.Plugins...)
		if p, ok := b.LanguageOptions["parser"].(string); ok {
			parserNames = append(parserNames, p)
		}
		if len(b.Envs) > 0 {
			useGlobals = true
		}
		if len(b.Extends) > 0 {
			slog.Debug("extends entries are not forwarded to the engine", "block", b.Name, "extends", b.Extends)
			b.Extends = nil
		}
		blocks = append(blocks, b)
	}
	slices.Sort(pluginNames)
	pluginNames = slices.Compact(pluginNames)
	slices.Sort(parserNames)
	parserNames = slices.Compact(parserNames)

	data := flatConfigData{Globals: useGlobals}
	for i, name := range pluginNames {
		spec, err := newImport(fmt.Sprintf("plugin%d", i), name, rules.PluginModule(name))
		if err != nil {
			return nil, err
		}
		data.Plugins = append(data.Plugins, spec)
	}
	for i, name := range parserNames {
		spec, err := newImport(fmt.Sprintf("parser%d", i), name, name)
		if err != nil {
			return nil, err
		}
		data.Parsers = append(data.Parsers, spec)
	}

	encoded, err := json.MarshalIndent(blocks, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("encoding rule-set: %w", err)
	}
	data.Blocks = string(encoded)

	var buf bytes.Buffer
	if err := flatConfigTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering engine config: %w", err)
	}
	return buf.Bytes(), nil
}

func newImport(ident, key, module string) (importSpec, error) {
	k, err := json.Marshal(key)
	if err != nil {
		return importSpec{}, err
	}
	m, err := json.Marshal(module)
	if err != nil {
		return importSpec{}, err
	}
	return importSpec{Ident: ident, Key: string(k), Module: string(m)}, nil
}
