package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// CellStyler picks a style for a body cell; nil keeps TableCellStyle
type CellStyler func(row, col int, value string) *lipgloss.Style

// Table renders rows under headers with a rounded border
type Table struct {
	Headers []string
	Rows    [][]string
	Styler  CellStyler
}

// NewTable creates a table with the given column titles
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends one row of cells
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// Render returns the styled table
func (t *Table) Render() string {
	rows := t.Rows
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(PrimaryColor)).
		Headers(t.Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if t.Styler != nil && row >= 0 && row < len(rows) && col < len(rows[row]) {
				if s := t.Styler(row, col, rows[row][col]); s != nil {
					return *s
				}
			}
			return TableCellStyle
		})
	return tbl.Render()
}

// String implements fmt.Stringer
func (t *Table) String() string {
	return t.Render()
}
