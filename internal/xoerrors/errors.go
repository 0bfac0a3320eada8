// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package xoerrors defines the error taxonomy shared by configuration
// resolution and linting. Callers match with errors.Is / errors.As.
package xoerrors

import (
	"errors"
	"fmt"
)

// ConflictError reports two explicit options that contradict each other,
// typically an xo shorthand and the resolved Prettier configuration.
type ConflictError struct {
	Option          string // xo option, e.g. "semicolon"
	Value           any
	FormatterOption string // Prettier option, e.g. "semi"
	FormatterValue  any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("the Prettier config `%s` is %v while xo `%s` is %v",
		e.FormatterOption, e.FormatterValue, e.Option, e.Value)
}

// ShapeError reports a configuration document or fragment that cannot be
// interpreted.
type ShapeError struct {
	Path   string // config file, empty for inline options
	Index  int    // fragment index, -1 for the whole document
	Reason string
}

func (e *ShapeError) Error() string {
	where := e.Path
	if where == "" {
		where = "inline options"
	}
	if e.Index >= 0 {
		return fmt.Sprintf("%s: config[%d]: %s", where, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s: %s", where, e.Reason)
}

// ErrMissingFilePath is returned by text linting when ignore patterns are
// supplied without the path needed to evaluate them.
var ErrMissingFilePath = errors.New("the `ignores` option requires the `filePath` option to be defined")

// EngineInitError wraps a failure to construct the lint engine from a
// resolved rule-set. The underlying message is kept verbatim.
type EngineInitError struct {
	Err error
}

func (e *EngineInitError) Error() string {
	return "failed to initialize lint engine: " + e.Err.Error()
}

func (e *EngineInitError) Unwrap() error { return e.Err }

// ManifestWriteWarning describes a fallback TypeScript project that could not
// be written. It is logged, never returned to callers of lint operations.
type ManifestWriteWarning struct {
	Path string
	Err  error
}

func (w *ManifestWriteWarning) Error() string {
	return fmt.Sprintf("could not write fallback tsconfig %s: %v", w.Path, w.Err)
}

func (w *ManifestWriteWarning) Unwrap() error { return w.Err }

// IsConfigError reports whether err belongs to the configuration stage and
// must abort the run.
func IsConfigError(err error) bool {
	var conflict *ConflictError
	var shape *ShapeError
	return errors.As(err, &conflict) || errors.As(err, &shape)
}
