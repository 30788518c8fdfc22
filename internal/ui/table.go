package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column is a fixed-width table column.
type Column struct {
	Title string
	Width int
}

// Row is one line of cells.
type Row []string

// Table renders rows under styled headers, used by the chains and wallet listings.
type Table struct {
	Columns []Column
	Rows    []Row
	// Marked rows are highlighted, e.g. the default wallet.
	Marked map[int]bool
}

// NewTable creates an empty table.
func NewTable(cols ...Column) *Table {
	return &Table{Columns: cols, Marked: map[int]bool{}}
}

// AddRow appends a row; mark highlights it.
func (t *Table) AddRow(r Row, mark bool) {
	if mark {
		t.Marked[len(t.Rows)] = true
	}
	t.Rows = append(t.Rows, r)
}

// Render returns the table. Cells are padded by hand so column widths stay
// exact; lipgloss Width would wrap long addresses.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)

	line := func(cells []string) {
		sb.WriteString(strings.TrimRight(strings.Join(cells, " "), " "))
		sb.WriteString("\n")
	}

	var cells []string
	for _, col := range t.Columns {
		cells = append(cells, headerStyle.Render(fit(col.Title, col.Width)))
	}
	line(cells)

	cells = cells[:0]
	for _, col := range t.Columns {
		cells = append(cells, StyleDim.Render(strings.Repeat("-", col.Width)))
	}
	line(cells)

	for i, row := range t.Rows {
		style := cellStyle
		if t.Marked[i] {
			style = StyleSelected
		}
		cells = cells[:0]
		for j, col := range t.Columns {
			var v string
			if j < len(row) {
				v = row[j]
			}
			cells = append(cells, style.Render(fit(v, col.Width)))
		}
		line(cells)
	}
	return sb.String()
}

// fit left-aligns s in exactly width terminal columns, cutting it when longer.
func fit(s string, width int) string {
	if w := lipgloss.Width(s); w <= width {
		return s + strings.Repeat(" ", width-w)
	}
	r := []rune(s)
	for lipgloss.Width(string(r)) > width {
		r = r[:len(r)-1]
	}
	return string(r)
}

// KeyValueBlock renders key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-20s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}
