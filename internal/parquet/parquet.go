// Package parquet provides data structures and functions for exporting report
// tables and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jirametrics/jirametrics/schema"
	"github.com/parquet-go/parquet-go"
)

// ReportRun represents a single report run with metadata.
// This struct maps to the report_runs database table.
type ReportRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Kind is the report kind, qmr or defect-age
	Kind string `parquet:"kind,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalReports is the number of tables written by this run
	TotalReports int32 `parquet:"total_reports,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// ReportCell represents one cell of a generated report table.
// This struct maps to the report_cells database table.
type ReportCell struct {
	// RunID references the parent run, zero for standalone report files
	RunID int64 `parquet:"run_id,snappy"`

	// Title is the table title, e.g. "Report January 2024"
	Title string `parquet:"title,snappy"`

	PeriodLabel string    `parquet:"period_label,snappy"`
	PeriodStart time.Time `parquet:"period_start,snappy"`
	PeriodEnd   time.Time `parquet:"period_end,snappy"`

	// OutputFile is the file the table was written to (nullable)
	OutputFile *string `parquet:"output_file,optional,snappy"`

	Metric   string `parquet:"metric,snappy"`
	Category string `parquet:"category,snappy"`
	Priority string `parquet:"priority,snappy"`

	// CellKind is one of blank, count, days or percent
	CellKind string `parquet:"cell_kind,snappy"`

	// CellValue is the rendered value
	CellValue string `parquet:"cell_value,snappy"`

	// CellNumber is the numeric value of count and days cells (nullable)
	CellNumber *float64 `parquet:"cell_number,optional,snappy"`
}

// TableCells flattens a report table into Parquet cell rows.
func TableCells(table *schema.ReportTable, precision int) []ReportCell {
	records := table.Records(precision)
	result := make([]ReportCell, len(records))
	for i, r := range records {
		result[i] = ReportCell{
			Title:       table.Title,
			PeriodLabel: table.Period.Label,
			PeriodStart: table.Period.Start,
			PeriodEnd:   table.Period.End,
			Metric:      r.Metric,
			Category:    r.Category,
			Priority:    r.Priority,
			CellKind:    r.Kind,
			CellValue:   r.Value,
			CellNumber:  r.Number,
		}
	}
	return result
}

// WriteReportCells writes cell rows to w.
func WriteReportCells(w io.Writer, data []ReportCell) error {
	return writeRows(w, data)
}

// WriteReportRunsParquet writes a slice of ReportRun structs to a Parquet file.
func WriteReportRunsParquet(data []ReportRun, outputPath string) error {
	return writeFile(outputPath, func(w io.Writer) error { return writeRows(w, data) })
}

// WriteReportCellsParquet writes a slice of ReportCell structs to a Parquet file.
func WriteReportCellsParquet(data []ReportCell, outputPath string) error {
	return writeFile(outputPath, func(w io.Writer) error { return writeRows(w, data) })
}

func writeFile(outputPath string, write func(io.Writer) error) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// writeRows writes rows with a schema derived from the struct tags of T.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ConvertRunRecords converts schema.RunRecord to ReportRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []ReportRun {
	result := make([]ReportRun, len(records))
	for i, record := range records {
		result[i] = ReportRun{
			RunID:         record.RunID,
			Kind:          record.Kind,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalReports:  record.TotalReports,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertCellRecords converts schema.StoredCellRecord to ReportCell for Parquet export.
func ConvertCellRecords(records []schema.StoredCellRecord) []ReportCell {
	result := make([]ReportCell, len(records))
	for i, record := range records {
		result[i] = ReportCell{
			RunID:       record.RunID,
			Title:       record.Title,
			PeriodLabel: record.PeriodLabel,
			PeriodStart: record.PeriodStart,
			PeriodEnd:   record.PeriodEnd,
			OutputFile:  record.OutputFile,
			Metric:      record.Metric,
			Category:    record.Category,
			Priority:    record.Priority,
			CellKind:    record.CellKind,
			CellValue:   record.CellValue,
			CellNumber:  record.CellNumber,
		}
	}
	return result
}
