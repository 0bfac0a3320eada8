package config

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xojs/xo-sub000/internal/constants"
	"github.com/xojs/xo-sub000/internal/testable"
	"github.com/xojs/xo-sub000/internal/xoerrors"
)

// scriptLoader prints the default export of the module named by its first
// argument as JSON.
const scriptLoader = `import {pathToFileURL} from 'node:url';
const mod = await import(pathToFileURL(process.argv[1]).href);
process.stdout.write(JSON.stringify(mod.default ?? null));`

// IsScript reports whether path names a configuration module.
func IsScript(path string) bool {
	return slices.Contains(constants.ConfigScripts, filepath.Base(path))
}

// evalScript runs a configuration module through node and returns its
// default export.
func evalScript(ctx context.Context, exec testable.CommandExecutor, path string) (any, error) {
	fail := func(reason string) error {
		return &xoerrors.ShapeError{Path: path, Index: -1, Reason: reason}
	}
	if exec == nil {
		return nil, fail("script configuration requires node")
	}
	node, err := exec.LookPath("node")
	if err != nil {
		return nil, fail("script configuration requires node: " + err.Error())
	}

	args := []string{"--input-type=module"}
	if filepath.Ext(path) == ".ts" {
		args = append(args, "--experimental-strip-types")
	}
	args = append(args, "-e", scriptLoader, "--", path)

	cmd := exec.CommandContext(ctx, node, args...)
	cmd.Dir = filepath.Dir(path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("evaluating configuration module", "path", path)
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fail(msg)
	}

	var v any
	if err := json.Unmarshal(out, &v); err != nil {
		return nil, fail("reading module export: " + err.Error())
	}
	return v, nil
}
