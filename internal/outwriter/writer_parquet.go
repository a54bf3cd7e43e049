package outwriter

import (
	"io"

	"github.com/jirametrics/jirametrics/internal/parquet"
	"github.com/jirametrics/jirametrics/schema"
)

// writeParquetTables writes one Parquet row per cell of every table.
func writeParquetTables(w io.Writer, tables []*schema.ReportTable, precision int) error {
	var cells []parquet.ReportCell
	for _, table := range tables {
		cells = append(cells, parquet.TableCells(table, precision)...)
	}
	return parquet.WriteReportCells(w, cells)
}
