package linter

import (
	"sync"

	"github.com/xojs/xo-sub000/internal/engine"
)

// Report aggregates the results of one lint call.
type Report struct {
	Results             []engine.Result `json:"results"`
	ErrorCount          int             `json:"errorCount"`
	WarningCount        int             `json:"warningCount"`
	FixableErrorCount   int             `json:"fixableErrorCount"`
	FixableWarningCount int             `json:"fixableWarningCount"`

	deprecatedOnce sync.Once
	deprecated     []engine.DeprecatedRule
}

func newReport(results []engine.Result) *Report {
	if results == nil {
		results = []engine.Result{}
	}
	r := &Report{Results: results}
	for _, res := range results {
		r.ErrorCount += res.ErrorCount
		r.WarningCount += res.WarningCount
		r.FixableErrorCount += res.FixableErrorCount
		r.FixableWarningCount += res.FixableWarningCount
	}
	return r
}

// UsedDeprecatedRules lists the deprecated rules reported for any file, once
// per rule, in first-seen order. It is computed on first use.
func (r *Report) UsedDeprecatedRules() []engine.DeprecatedRule {
	r.deprecatedOnce.Do(func() {
		seen := make(map[string]bool)
		r.deprecated = []engine.DeprecatedRule{}
		for _, res := range r.Results {
			for _, d := range res.UsedDeprecatedRules {
				if seen[d.RuleID] {
					continue
				}
				seen[d.RuleID] = true
				r.deprecated = append(r.deprecated, d)
			}
		}
	})
	return r.deprecated
}

// errorsOnly drops warnings from every result.
func errorsOnly(results []engine.Result) []engine.Result {
	out := make([]engine.Result, len(results))
	for i, res := range results {
		kept := make([]engine.Message, 0, len(res.Messages))
		for _, m := range res.Messages {
			if m.Severity == engine.SeverityError {
				kept = append(kept, m)
			}
		}
		res.Messages = kept
		res.Recount()
		res.FixableWarningCount = 0
		out[i] = res
	}
	return out
}
