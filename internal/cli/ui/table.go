package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/proofkit/proofkit/internal/typegen/engine"
)

// Table represents a simple table for displaying tabular data
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	styles  [][]*color.Color
	noColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, headers []string, noColor bool) *Table {
	return &Table{
		writer:  w,
		headers: headers,
		noColor: noColor,
	}
}

// AddRow adds a plain row to the table
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
	t.styles = append(t.styles, nil)
}

// AddStyledRow adds a row whose cells are drawn with the matching style. A nil
// style draws the cell plain.
func (t *Table) AddStyledRow(cells []string, styles []*color.Color) {
	t.rows = append(t.rows, cells)
	t.styles = append(t.styles, styles)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
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
		text := t.cell(header, widths, i)
		if i == len(t.headers)-1 {
			text = strings.TrimRight(text, " ")
		}
		bold.Fprint(t.writer, text)
	}
	fmt.Fprintln(t.writer)

	for i, width := range widths {
		sep := strings.Repeat("─", width)
		if i < len(widths)-1 {
			sep += "  "
		}
		gray.Fprint(t.writer, sep)
	}
	fmt.Fprintln(t.writer)

	for r, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			text := t.cell(cell, widths, i)
			if i == len(row)-1 {
				text = strings.TrimRight(text, " ")
			}
			if style := t.style(r, i); style != nil {
				style.Fprint(t.writer, text)
			} else {
				fmt.Fprint(t.writer, text)
			}
		}
		fmt.Fprintln(t.writer)
	}
}

// cell pads a value to its column width plus the column gap
func (t *Table) cell(s string, widths []int, col int) string {
	s = padRight(s, widths[col])
	if col < len(widths)-1 {
		s += "  "
	}
	return s
}

func (t *Table) style(row, col int) *color.Color {
	styles := t.styles[row]
	if col >= len(styles) || styles[col] == nil {
		return nil
	}
	if t.noColor {
		return nil
	}
	return styles[col]
}

// padRight pads a string with spaces on the right to reach the target width
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// statusColor picks the display color of a file status
func statusColor(s engine.FileStatus) *color.Color {
	switch s {
	case engine.StatusWritten, engine.StatusCreated:
		return color.New(color.FgGreen)
	case engine.StatusFailed, engine.StatusOutOfDate, engine.StatusMissing:
		return color.New(color.FgRed)
	case engine.StatusSkipped:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgHiBlack)
	}
}

// WriteReport renders one row per table with the status of both files and
// the number of problems found
func WriteReport(w io.Writer, tables []engine.TableReport, noColor bool) {
	t := NewTable(w, []string{"TABLE", "GENERATED", "OVERRIDE", "PROBLEMS"}, noColor)
	for _, tr := range tables {
		errs, warnings, _ := tr.Diagnostics.Count()
		problems := "-"
		switch {
		case errs > 0 && warnings > 0:
			problems = fmt.Sprintf("%d error(s), %d warning(s)", errs, warnings)
		case errs > 0:
			problems = fmt.Sprintf("%d error(s)", errs)
		case warnings > 0:
			problems = fmt.Sprintf("%d warning(s)", warnings)
		}

		var problemStyle *color.Color
		if errs > 0 {
			problemStyle = color.New(color.FgRed)
		} else if warnings > 0 {
			problemStyle = color.New(color.FgYellow)
		}

		t.AddStyledRow(
			[]string{tr.Table, string(tr.Generated), string(tr.Override), problems},
			[]*color.Color{nil, statusColor(tr.Generated), statusColor(tr.Override), problemStyle},
		)
	}
	t.Render()
}
