// Copyright 2026 The XO Authors
// SPDX-License-Identifier: MIT

// Package engine runs a lint engine over a resolved rule-set and reports
// per-file results.
package engine

import (
	"context"
	"fmt"

	"github.com/xojs/xo-sub000/internal/ruleset"
	"github.com/xojs/xo-sub000/internal/testable"
)

// Message severities as reported by the engine.
const (
	SeverityWarning = 1
	SeverityError   = 2
)

// Message is a single problem found in a file.
type Message struct {
	RuleID    string `json:"ruleId"`
	Severity  int    `json:"severity"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Message   string `json:"message"`
	Fatal     bool   `json:"fatal,omitempty"`
	EndLine   int    `json:"endLine,omitempty"`
	EndColumn int    `json:"endColumn,omitempty"`
}

// DeprecatedRule names a deprecated rule that was used, with its
// replacements.
type DeprecatedRule struct {
	RuleID     string   `json:"ruleId"`
	ReplacedBy []string `json:"replacedBy"`
}

// Result is the outcome of linting one file.
type Result struct {
	FilePath            string           `json:"filePath"`
	Messages            []Message        `json:"messages"`
	ErrorCount          int              `json:"errorCount"`
	WarningCount        int              `json:"warningCount"`
	FixableErrorCount   int              `json:"fixableErrorCount"`
	FixableWarningCount int              `json:"fixableWarningCount"`
	Output              string           `json:"output,omitempty"`
	UsedDeprecatedRules []DeprecatedRule `json:"usedDeprecatedRules,omitempty"`
}

// Recount recomputes the error and warning counts from Messages. Fixable
// counts are kept.
func (r *Result) Recount() {
	r.ErrorCount, r.WarningCount = 0, 0
	for _, m := range r.Messages {
		if m.Severity == SeverityError {
			r.ErrorCount++
		} else {
			r.WarningCount++
		}
	}
}

// FatalResult reports a file that could not be linted.
func FatalResult(path string, err error) Result {
	return Result{
		FilePath:   path,
		Messages:   []Message{{Severity: SeverityError, Message: err.Error(), Fatal: true}},
		ErrorCount: 1,
	}
}

// Engine lints files and text against a resolved rule-set.
type Engine interface {
	// LintFiles lints files, returning one result per file in input order.
	LintFiles(ctx context.Context, rs *ruleset.RuleSet, files []string) ([]Result, error)

	// LintText lints text as if it were the file at path.
	LintText(ctx context.Context, rs *ruleset.RuleSet, text, path string) (Result, error)

	// OutputFixes writes the fixed output of each result back to its file.
	OutputFixes(results []Result) error
}

// WriteFixes writes every non-empty Output to its FilePath.
func WriteFixes(fsys testable.FileSystem, results []Result) error {
	for _, r := range results {
		if r.Output == "" || r.FilePath == "" {
			continue
		}
		if err := fsys.WriteFile(r.FilePath, []byte(r.Output), 0o644); err != nil { //nolint:gosec // source files keep their usual mode
			return fmt.Errorf("writing fixes to %s: %w", r.FilePath, err)
		}
	}
	return nil
}
