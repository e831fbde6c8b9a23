package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table represents a simple table for displaying tabular data
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{writer: w, headers: headers, noColor: noColor}
}

// AddRow adds a row to the table. Missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if t.noColor {
		bold.DisableColor()
		gray.DisableColor()
	}

	for i, header := range t.headers {
		bold.Fprint(t.writer, t.cell(header, i, widths))
	}
	fmt.Fprintln(t.writer)

	for i, width := range widths {
		gray.Fprint(t.writer, t.cell(strings.Repeat("─", width), i, widths))
	}
	fmt.Fprintln(t.writer)

	for _, row := range t.rows {
		for i := range widths {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprint(t.writer, t.cell(cell, i, widths))
		}
		fmt.Fprintln(t.writer)
	}
}

// cell pads s to the column width. The last column is not padded.
func (t *Table) cell(s string, i int, widths []int) string {
	if i == len(widths)-1 {
		return s
	}
	if n := widths[i] - len([]rune(s)); n > 0 {
		s += strings.Repeat(" ", n)
	}
	return s + "  "
}

// Header renders a styled header
func Header(w io.Writer, title string, noColor bool) {
	bold := color.New(color.Bold, color.FgCyan)
	if noColor {
		bold.DisableColor()
	}
	bold.Fprintln(w, title)
}
