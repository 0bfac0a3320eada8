package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/xojs/xo-sub000/internal/xoerrors"
)

// Validate checks every fragment and returns all problems at once as a single
// *xoerrors.ShapeError.
func Validate(path string, fragments []Fragment) error {
	var errs []string

	for i, f := range fragments {
		for _, p := range f.Files {
			if !doublestar.ValidatePattern(p) {
				errs = append(errs, fmt.Sprintf("config[%d].files: invalid pattern %q", i, p))
			}
		}
		for _, p := range f.Ignores {
			if !doublestar.ValidatePattern(strings.TrimPrefix(p, "!")) {
				errs = append(errs, fmt.Sprintf("config[%d].ignores: invalid pattern %q", i, p))
			}
		}
		for id := range f.Rules {
			if strings.TrimSpace(id) == "" {
				errs = append(errs, fmt.Sprintf("config[%d].rules: empty rule identifier", i))
			}
		}
		if f.Has("files") && len(f.Files) == 0 {
			errs = append(errs, fmt.Sprintf("config[%d].files: must not be empty", i))
		}
	}

	if len(errs) > 0 {
		return &xoerrors.ShapeError{
			Path:   path,
			Index:  -1,
			Reason: "config validation failed:\n  " + strings.Join(errs, "\n  "),
		}
	}
	return nil
}
