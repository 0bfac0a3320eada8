package output

import (
	"fmt"
	"io"
	"strings"
)

// Alignment controls how a column's content is justified.
type Alignment int

const (
	// AlignLeft pads on the right (default).
	AlignLeft Alignment = iota
	// AlignRight pads on the left.
	AlignRight
)

// ColorFunc maps a cell value to a colored string. If nil, no color is applied.
type ColorFunc func(value string) string

// Column describes a single table column.
type Column struct {
	Align Alignment
	Color ColorFunc
}

// Table renders aligned, headerless text rows, indented by two spaces.
type Table struct {
	columns []Column
	rows    [][]string
}

// NewTable creates a table with the given column definitions.
func NewTable(columns ...Column) *Table {
	return &Table{columns: columns}
}

// AddRow appends a row. Values beyond the column count are silently ignored;
// missing values are treated as empty strings.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.columns))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Render writes the rows to w with computed column widths. Trailing padding
// is trimmed.
func (t *Table) Render(w io.Writer) error {
	widths := make([]int, len(t.columns))
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	for _, row := range t.rows {
		parts := make([]string, len(t.columns))
		for i, col := range t.columns {
			val := row[i]
			display := val
			if col.Color != nil && val != "" {
				display = col.Color(val)
			}
			// Padding is based on raw value length, not ANSI-colored length.
			pad := strings.Repeat(" ", widths[i]-len(val))
			if col.Align == AlignRight {
				parts[i] = pad + display
			} else {
				parts[i] = display + pad
			}
		}
		line := strings.TrimRight(strings.Join(parts, "  "), " ")
		if _, err := fmt.Fprintf(w, "  %s\n", line); err != nil {
			return fmt.Errorf("render table: %w", err)
		}
	}
	return nil
}
