package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/xojs/xo-sub000/internal/engine"
)

func init() {
	RegisterFormatter(NewJSONFormatter())
}

// JSONFormatter writes results as the JSON array ESLint's json format
// produces.
type JSONFormatter struct {
	// Compact controls whether output is compact (single line) or pretty-printed.
	// When false (default), terminals get two-space indentation.
	Compact bool
}

// Compile-time interface check.
var _ Formatter = (*JSONFormatter)(nil)

// NewJSONFormatter returns a new JSONFormatter with default settings.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format writes results to w followed by a newline.
func (f *JSONFormatter) Format(results []engine.Result, w io.Writer) error {
	if results == nil {
		results = []engine.Result{}
	}

	var data []byte
	var err error
	if f.shouldCompact(w) {
		data, err = json.Marshal(results)
	} else {
		data, err = json.MarshalIndent(results, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write json trailing newline: %w", err)
	}
	return nil
}

// shouldCompact pretty-prints for terminals and compacts for pipes and
// files. Other writers get pretty output unless Compact is set.
func (f *JSONFormatter) shouldCompact(w io.Writer) bool {
	if f.Compact {
		return true
	}
	if file, ok := w.(*os.File); ok {
		return !isTerminal(file)
	}
	return false
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
