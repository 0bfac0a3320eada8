// Package output defines the Formatter interface for writing lint results in
// various formats.
package output

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/xojs/xo-sub000/internal/engine"
)

// Formatter writes lint results to the given writer in a specific format.
type Formatter interface {
	// Name returns the format name (e.g., "stylish", "json").
	Name() string

	// Format writes the results to w.
	Format(results []engine.Result, w io.Writer) error
}

var (
	fmtMu       sync.RWMutex
	fmtRegistry = make(map[string]Formatter)
)

// RegisterFormatter adds a formatter to the global registry.
func RegisterFormatter(f Formatter) {
	fmtMu.Lock()
	defer fmtMu.Unlock()
	fmtRegistry[f.Name()] = f
}

// GetFormatter returns the formatter with the given name, or an error if not found.
func GetFormatter(name string) (Formatter, error) {
	fmtMu.RLock()
	defer fmtMu.RUnlock()
	f, ok := fmtRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown reporter: %q (available: %s)", name, formatNames())
	}
	return f, nil
}

// resetFmtForTesting clears the formatter registry. Only for use in tests.
func resetFmtForTesting() {
	fmtMu.Lock()
	defer fmtMu.Unlock()
	fmtRegistry = make(map[string]Formatter)
}

// formatNames returns a comma-separated sorted list of registered format names.
func formatNames() string {
	names := make([]string, 0, len(fmtRegistry))
	for name := range fmtRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return strings.Join(names, ", ")
}
