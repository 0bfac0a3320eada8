package output

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"

	"github.com/xojs/xo-sub000/internal/engine"
)

func init() {
	RegisterFormatter(NewStylishFormatter())
}

// StylishFormatter groups problems by file in aligned columns and ends with a
// summary line.
type StylishFormatter struct {
	// NoColor disables ANSI colors. Colors are also off when the writer is
	// not a terminal.
	NoColor bool
}

// Compile-time interface check.
var _ Formatter = (*StylishFormatter)(nil)

// NewStylishFormatter returns a new StylishFormatter with default settings.
func NewStylishFormatter() *StylishFormatter {
	return &StylishFormatter{}
}

// Name returns the format name.
func (f *StylishFormatter) Name() string {
	return "stylish"
}

type palette struct {
	red, yellow, dim, underline, bold *color.Color
}

func (f *StylishFormatter) palette(w io.Writer) palette {
	p := palette{
		red:       color.New(color.FgRed),
		yellow:    color.New(color.FgYellow),
		dim:       color.New(color.Faint),
		underline: color.New(color.Underline),
		bold:      color.New(color.Bold),
	}
	file, isFile := w.(*os.File)
	plain := f.NoColor || color.NoColor || !isFile || !isTerminal(file)
	for _, c := range []*color.Color{p.red, p.yellow, p.dim, p.underline, p.bold} {
		if plain {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	return p
}

// Format writes the results to w. Files without messages are skipped and
// nothing is written when there are no problems at all.
func (f *StylishFormatter) Format(results []engine.Result, w io.Writer) error {
	p := f.palette(w)
	var errors, warnings, fixableErrors, fixableWarnings int

	for _, r := range results {
		if len(r.Messages) == 0 {
			continue
		}
		errors += r.ErrorCount
		warnings += r.WarningCount
		fixableErrors += r.FixableErrorCount
		fixableWarnings += r.FixableWarningCount

		if _, err := fmt.Fprintln(w, p.underline.Sprint(r.FilePath)); err != nil {
			return fmt.Errorf("write stylish: %w", err)
		}
		table := NewTable(
			Column{Color: func(s string) string { return p.dim.Sprint(s) }},
			Column{Color: func(s string) string {
				if s == "error" {
					return p.red.Sprint(s)
				}
				return p.yellow.Sprint(s)
			}},
			Column{},
			Column{Color: func(s string) string { return p.dim.Sprint(s) }},
		)
		for _, m := range r.Messages {
			severity := "warning"
			if m.Fatal || m.Severity == engine.SeverityError {
				severity = "error"
			}
			table.AddRow(strconv.Itoa(m.Line)+":"+strconv.Itoa(m.Column), severity, m.Message, m.RuleID)
		}
		if err := table.Render(w); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return fmt.Errorf("write stylish: %w", err)
		}
	}

	total := errors + warnings
	if total == 0 {
		return nil
	}
	summary := p.yellow
	if errors > 0 {
		summary = p.red
	}
	line := fmt.Sprintf("✖ %d %s (%d %s, %d %s)",
		total, plural("problem", total), errors, plural("error", errors), warnings, plural("warning", warnings))
	if _, err := fmt.Fprintln(w, p.bold.Sprint(summary.Sprint(line))); err != nil {
		return fmt.Errorf("write stylish: %w", err)
	}
	if fixableErrors+fixableWarnings > 0 {
		fixLine := fmt.Sprintf("  %d %s and %d %s potentially fixable with the `--fix` option.",
			fixableErrors, plural("error", fixableErrors), fixableWarnings, plural("warning", fixableWarnings))
		if _, err := fmt.Fprintln(w, summary.Sprint(fixLine)); err != nil {
			return fmt.Errorf("write stylish: %w", err)
		}
	}
	return nil
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
