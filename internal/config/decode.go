package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/tailscale/hujson"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"

	"github.com/xojs/xo-sub000/internal/constants"
	"github.com/xojs/xo-sub000/internal/xoerrors"
)

// hclBlockType is the block that wraps one fragment in an HCL document.
const hclBlockType = "config"

// tomlListKey holds the fragment list of a TOML document ([[config]]).
const tomlListKey = "config"

// Parse decodes the document stored at path. The format follows the file
// name. For package.json, ok is false when the manifest has no xo field.
func Parse(path string, data []byte) (doc Document, ok bool, err error) {
	base := filepath.Base(path)
	var v any
	switch {
	case base == "package.json":
		var manifest map[string]any
		if err := json.Unmarshal(data, &manifest); err != nil {
			return Document{}, false, &xoerrors.ShapeError{Path: path, Index: -1, Reason: err.Error()}
		}
		field, present := manifest[constants.PackageJSONField]
		if !present {
			return Document{}, false, nil
		}
		v = field
	case strings.HasSuffix(base, ".json"), strings.HasSuffix(base, ".jsonc"):
		v, err = decodeJSONC(data)
	case strings.HasSuffix(base, ".yaml"), strings.HasSuffix(base, ".yml"):
		err = yaml.Unmarshal(data, &v)
	case strings.HasSuffix(base, ".toml"):
		v, err = decodeTOML(data)
	case strings.HasSuffix(base, ".hcl"):
		v, err = decodeHCL(path, data)
	default:
		return Document{}, false, &xoerrors.ShapeError{Path: path, Index: -1, Reason: "unsupported configuration format"}
	}
	if err != nil {
		return Document{}, false, &xoerrors.ShapeError{Path: path, Index: -1, Reason: err.Error()}
	}
	doc, err = NewDocument(path, v)
	if err != nil {
		return Document{}, false, err
	}
	return doc, true, nil
}

// decodeJSONC accepts JSON with comments and trailing commas.
func decodeJSONC(data []byte) (any, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(std, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// decodeTOML returns a single fragment for a plain table and a fragment list
// when the document consists of [[config]] tables only.
func decodeTOML(data []byte) (any, error) {
	var m map[string]any
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, err
	}
	if list, ok := m[tomlListKey]; ok && len(m) == 1 {
		if tables, isList := list.([]map[string]any); isList {
			return tables, nil
		}
	}
	return m, nil
}

// decodeHCL evaluates a document made of top-level attributes (one fragment)
// or of config blocks (one fragment each). Mixing both is an error.
func decodeHCL(path string, data []byte) (any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	content, remain, diags := file.Body.PartialContent(&hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{{Type: hclBlockType}},
	})
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	attrs, diags := remain.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	if len(content.Blocks) > 0 && len(attrs) > 0 {
		return nil, fmt.Errorf("top-level attributes cannot be mixed with %s blocks", hclBlockType)
	}
	if len(content.Blocks) == 0 {
		return hclAttributes(attrs)
	}

	list := make([]any, 0, len(content.Blocks))
	for _, block := range content.Blocks {
		blockAttrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s block: %s", hclBlockType, diags.Error())
		}
		m, err := hclAttributes(blockAttrs)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, nil
}

// hclAttributes evaluates static attribute expressions and converts the
// resulting cty values to plain Go values through their JSON encoding.
func hclAttributes(attrs hcl.Attributes) (map[string]any, error) {
	out := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("attribute %q: %s", name, diags.Error())
		}
		encoded, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		var v any
		if err := json.Unmarshal(encoded, &v); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}
