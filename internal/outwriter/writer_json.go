package outwriter

import (
	"io"

	"github.com/jirametrics/jirametrics/schema"
)

func writeJSONTable(w io.Writer, table *schema.ReportTable, precision int) error {
	return writeJSON(w, table.Output(precision))
}

func writeJSONCombined(w io.Writer, tables []*schema.ReportTable, precision int) error {
	out := make([]schema.ReportOutput, 0, len(tables))
	for _, table := range tables {
		out = append(out, table.Output(precision))
	}
	return writeJSON(w, out)
}
