package outwriter

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jirametrics/jirametrics/core/agg"
	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"
)

// wideTableWidth is the terminal width from which full column labels fit.
const wideTableWidth = 120

var categoryAbbrev = map[schema.Category]string{
	schema.Regression:  "Reg",
	schema.Exploratory: "Exp",
	schema.Overall:     "Overall",
}

// GetTableWidth returns the width available for table output: the
// configured width, else the terminal width, else 80.
func GetTableWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// headerLabels returns one label per column, abbreviated on narrow terminals.
func headerLabels(width int) []string {
	labels := []string{"Metrics"}
	for _, col := range schema.Columns() {
		if width >= wideTableWidth || col == schema.OverallColumn {
			labels = append(labels, col.String())
			continue
		}
		labels = append(labels, categoryAbbrev[col.Category]+" "+string(col.Priority))
	}
	return labels
}

// textStyle colors table values. The zero value leaves values untouched.
type textStyle struct {
	overall func(...any) string
	zero    func(...any) string
	alert   func(...any) string
}

func newTextStyle(useColors bool) textStyle {
	if !useColors {
		return textStyle{overall: fmt.Sprint, zero: fmt.Sprint, alert: fmt.Sprint}
	}
	return textStyle{
		overall: contract.OverallColor.SprintFunc(),
		zero:    contract.ZeroColor.SprintFunc(),
		alert:   contract.AlertColor.SprintFunc(),
	}
}

// isZero reports whether a rendered value carries no information.
func isZero(v string) bool {
	switch v {
	case "0", agg.ZeroPercent:
		return true
	}
	return false
}

// percentValue parses a rendered percentage such as "66.67%".
func percentValue(v string) (float64, bool) {
	if !strings.HasSuffix(v, "%") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
	return f, err == nil
}

func (s textStyle) apply(metric schema.Metric, col schema.ColumnKey, v string) string {
	if metric == schema.NoisePercent {
		if p, ok := percentValue(v); ok && p >= contract.NoiseAlertPercent {
			return s.alert(v)
		}
	}
	switch {
	case isZero(v):
		return s.zero(v)
	case col == schema.OverallColumn:
		return s.overall(v)
	}
	return v
}

// renderTable draws a report table with its title line.
func renderTable(w io.Writer, table *schema.ReportTable, precision, width int, style textStyle, title func(...any) string) error {
	if _, err := fmt.Fprintln(w, title(table.Title)); err != nil {
		return err
	}

	tbl := tablewriter.NewWriter(w)
	defer func() { _ = tbl.Close() }()
	tbl.Header(headerLabels(width))
	tbl.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	cols := schema.Columns()
	rendered := table.Render(precision)[2:]
	rows := table.Rows()
	data := make([][]string, 0, len(rendered))
	for i, line := range rendered {
		row := []string{line[0]}
		for j, v := range line[1:] {
			row = append(row, style.apply(rows[i], cols[j], v))
		}
		data = append(data, row)
	}

	if err := tbl.Bulk(data); err != nil {
		return err
	}
	return tbl.Render()
}

// writeTextTables writes uncolored tables separated by blank lines.
func writeTextTables(w io.Writer, tables []*schema.ReportTable, precision, width int) error {
	for i, table := range tables {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := renderTable(w, table, precision, width, newTextStyle(false), fmt.Sprint); err != nil {
			return err
		}
	}
	return nil
}

func titleFunc(useColors bool) func(...any) string {
	if !useColors {
		return fmt.Sprint
	}
	return contract.HeaderColor.SprintFunc()
}
