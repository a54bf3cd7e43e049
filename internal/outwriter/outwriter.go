// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/schema"
)

// tableWriter writes one or more tables in a single output format.
type tableWriter struct {
	single   func(w io.Writer, table *schema.ReportTable, precision int) error
	combined func(w io.Writer, tables []*schema.ReportTable, precision int) error
}

// FileSink writes report tables to files in the configured output format and
// displays them as text tables.
type FileSink struct {
	cfg     *contract.Config
	display io.Writer
	writers map[schema.OutputMode]tableWriter
}

// Ensure FileSink implements the interface.
var _ contract.ReportSink = (*FileSink)(nil)

// NewFileSink creates a sink for the given configuration. Tables are
// displayed on display, or on stdout when it is nil.
func NewFileSink(cfg *contract.Config, display io.Writer) *FileSink {
	if display == nil {
		display = os.Stdout
	}
	width := GetTableWidth(cfg)
	text := func(w io.Writer, tables []*schema.ReportTable, precision int) error {
		return writeTextTables(w, tables, precision, width)
	}
	return &FileSink{
		cfg:     cfg,
		display: display,
		writers: map[schema.OutputMode]tableWriter{
			schema.XLSXOut: {single: writeXLSXTable, combined: writeXLSXCombined},
			schema.CSVOut:  {single: writeCSVTable, combined: writeCSVCombined},
			schema.JSONOut: {single: writeJSONTable, combined: writeJSONCombined},
			schema.ParquetOut: {
				single: func(w io.Writer, table *schema.ReportTable, precision int) error {
					return writeParquetTables(w, []*schema.ReportTable{table}, precision)
				},
				combined: writeParquetTables,
			},
			schema.TextOut: {
				single: func(w io.Writer, table *schema.ReportTable, precision int) error {
					return text(w, []*schema.ReportTable{table}, precision)
				},
				combined: text,
			},
		},
	}
}

func (s *FileSink) writer() (tableWriter, error) {
	tw, ok := s.writers[s.cfg.Output]
	if !ok {
		return tableWriter{}, fmt.Errorf("unsupported output format %q", s.cfg.Output)
	}
	return tw, nil
}

// WriteReport writes one table to path.
func (s *FileSink) WriteReport(table *schema.ReportTable, path string) error {
	tw, err := s.writer()
	if err != nil {
		return err
	}
	return writeWithFile(path, func(w io.Writer) error {
		return tw.single(w, table, s.cfg.Precision)
	}, "Saved "+table.Title)
}

// WriteCombined writes several tables one after another to path.
func (s *FileSink) WriteCombined(tables []*schema.ReportTable, path string) error {
	tw, err := s.writer()
	if err != nil {
		return err
	}
	return writeWithFile(path, func(w io.Writer) error {
		return tw.combined(w, tables, s.cfg.Precision)
	}, fmt.Sprintf("Combined %d reports", len(tables)))
}

// Display renders a table for the user.
func (s *FileSink) Display(table *schema.ReportTable) error {
	width := GetTableWidth(s.cfg)
	style := newTextStyle(s.cfg.UseColors)
	if err := renderTable(s.display, table, s.cfg.Precision, width, style, titleFunc(s.cfg.UseColors)); err != nil {
		return fmt.Errorf("error rendering table: %w", err)
	}
	return nil
}
