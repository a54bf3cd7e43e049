package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/internal/parquet"
)

// ExportHistory writes the run history of store to two Parquet files,
// <prefix>.report_runs.parquet and <prefix>.report_cells.parquet, and
// returns their paths. Progress is reported on w.
func ExportHistory(store contract.HistoryStore, prefix string, w io.Writer) ([]string, error) {
	if prefix == "" {
		return nil, errors.New("an output file prefix is required for export")
	}
	if store == nil {
		return nil, errors.New("history tracking is not enabled")
	}

	status, err := store.GetStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return nil, errors.New("no run history found to export")
	}
	_, _ = fmt.Fprintf(w, "Exporting history from %s backend (%d runs)\n", status.Backend, status.TotalRuns)

	runs, err := store.GetAllRuns()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve report runs: %w", err)
	}
	cells, err := store.GetAllCells()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve report cells: %w", err)
	}

	runsFile := prefix + "." + runsTable + ".parquet"
	if err := parquet.WriteReportRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return nil, fmt.Errorf("failed to write report runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "💾 Exported %d report runs to %s\n", len(runs), runsFile)

	cellsFile := prefix + "." + cellsTable + ".parquet"
	if err := parquet.WriteReportCellsParquet(parquet.ConvertCellRecords(cells), cellsFile); err != nil {
		return nil, fmt.Errorf("failed to write report cells: %w", err)
	}
	_, _ = fmt.Fprintf(w, "💾 Exported %d report cells to %s\n", len(cells), cellsFile)

	return []string{runsFile, cellsFile}, nil
}
