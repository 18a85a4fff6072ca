package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	tableLineTemplateConstant     = "%s\n"
	emptyTableMessageConstant     = "No %s found.\n"
	cellHorizontalPaddingConstant = 1
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#61AFEF")).Padding(0, cellHorizontalPaddingConstant)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, cellHorizontalPaddingConstant)
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5C6370"))
	tableTitleStyle  = lipgloss.NewStyle().Bold(true)
)

// Table is a titled grid of rows rendered with rounded borders.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Render returns the table text. Rows shorter than the header are padded with empty cells.
func (grid Table) Render() string {
	rows := make([][]string, 0, len(grid.Rows))
	for _, row := range grid.Rows {
		paddedRow := append([]string{}, row...)
		for len(paddedRow) < len(grid.Headers) {
			paddedRow = append(paddedRow, "")
		}
		rows = append(rows, paddedRow)
	}

	rendered := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers(grid.Headers...).
		Rows(rows...).
		StyleFunc(func(row int, column int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		String()

	if len(grid.Title) == 0 {
		return rendered
	}
	return tableTitleStyle.Render(grid.Title) + "\n" + rendered
}

// WriteTable writes the rendered table, or a "No <noun> found." line when the table has no rows.
func WriteTable(writer io.Writer, grid Table, emptyNoun string) {
	if writer == nil {
		return
	}
	if len(grid.Rows) == 0 {
		fmt.Fprintf(writer, emptyTableMessageConstant, emptyNoun)
		return
	}
	fmt.Fprintf(writer, tableLineTemplateConstant, grid.Render())
}
