package outwriter

import (
	"io"
	"slices"

	"github.com/jirametrics/jirametrics/schema"
)

// writeCSVTable writes the two header rows followed by one row per metric.
func writeCSVTable(w io.Writer, table *schema.ReportTable, precision int) error {
	return writeCSVRows(w, table.Render(precision))
}

// writeCSVCombined writes several tables under a single header. Every data
// row is prefixed with the title of the table it belongs to.
func writeCSVCombined(w io.Writer, tables []*schema.ReportTable, precision int) error {
	var rows [][]string
	for i, header := range schema.HeaderRows() {
		label := ""
		if i == 0 {
			label = "Title"
		}
		rows = append(rows, slices.Insert(header, 0, label))
	}
	for _, table := range tables {
		for _, line := range table.Render(precision)[2:] {
			rows = append(rows, slices.Insert(line, 0, table.Title))
		}
	}
	return writeCSVRows(w, rows)
}
