package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/schema"
)

// Table names for run history.
const (
	runsTable  = "report_runs"
	cellsTable = "report_cells"
)

// historyTables lists the history tables in creation order.
var historyTables = []string{runsTable, cellsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
// The none backend yields a store that records nothing.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (*HistoryStoreImpl, error) {
	store := &HistoryStoreImpl{backend: backend, connStr: connStr}
	if backend == schema.NoneBackend {
		return store, nil
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return nil, err
	}
	for _, table := range historyTables {
		if _, err := db.Exec(historyTableDDL(table, backend)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	store.db = db
	return store, nil
}

// historyTableDDL returns the CREATE TABLE query of a history table. The
// statements match the first two embedded migrations.
func historyTableDDL(table string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(table, backend)
	if table == runsTable {
		switch backend {
		case schema.MySQLBackend:
			return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				kind VARCHAR(32) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_reports INT NOT NULL DEFAULT 0,
				config_params TEXT
			)`, quoted)
		case schema.PostgreSQLBackend:
			return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				kind TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_reports INT NOT NULL DEFAULT 0,
				config_params TEXT
			)`, quoted)
		default: // SQLite
			return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				kind TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_reports INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			)`, quoted)
		}
	}

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id BIGINT NOT NULL,
			title VARCHAR(255) NOT NULL,
			period_label VARCHAR(64) NOT NULL,
			period_start DATETIME(6) NOT NULL,
			period_end DATETIME(6) NOT NULL,
			output_file VARCHAR(1024),
			cell_index INT NOT NULL,
			metric VARCHAR(32) NOT NULL,
			category VARCHAR(32) NOT NULL,
			priority VARCHAR(32) NOT NULL,
			cell_kind VARCHAR(16) NOT NULL,
			cell_value VARCHAR(64) NOT NULL,
			cell_number DOUBLE,
			PRIMARY KEY (run_id, period_label, metric, category, priority)
		)`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id BIGINT NOT NULL,
			title TEXT NOT NULL,
			period_label TEXT NOT NULL,
			period_start TIMESTAMPTZ NOT NULL,
			period_end TIMESTAMPTZ NOT NULL,
			output_file TEXT,
			cell_index INTEGER NOT NULL,
			metric TEXT NOT NULL,
			category TEXT NOT NULL,
			priority TEXT NOT NULL,
			cell_kind TEXT NOT NULL,
			cell_value TEXT NOT NULL,
			cell_number DOUBLE PRECISION,
			PRIMARY KEY (run_id, period_label, metric, category, priority)
		)`, quoted)
	default: // SQLite
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			run_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			period_label TEXT NOT NULL,
			period_start TEXT NOT NULL,
			period_end TEXT NOT NULL,
			output_file TEXT,
			cell_index INTEGER NOT NULL,
			metric TEXT NOT NULL,
			category TEXT NOT NULL,
			priority TEXT NOT NULL,
			cell_kind TEXT NOT NULL,
			cell_value TEXT NOT NULL,
			cell_number REAL,
			PRIMARY KEY (run_id, period_label, metric, category, priority)
		)`, quoted)
	}
}

// BeginRun creates a new report run and returns its unique ID.
func (hs *HistoryStoreImpl) BeginRun(kind schema.ReportKind, startTime time.Time, configParams map[string]any) (int64, error) {
	if hs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(runsTable, hs.backend)
	args := []any{string(kind), formatTime(startTime, hs.backend), string(configJSON)}

	var runID int64
	if hs.backend == schema.PostgreSQLBackend {
		query := fmt.Sprintf(`INSERT INTO %s (kind, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quoted)
		err = hs.db.QueryRow(query, args...).Scan(&runID)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (kind, start_time, config_params) VALUES (?, ?, ?)`, quoted)
		var result sql.Result
		if result, err = hs.db.Exec(query, args...); err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert report run: %w", err)
	}
	return runID, nil
}

// RecordReport stores every cell of a generated table in one transaction.
func (hs *HistoryStoreImpl) RecordReport(runID int64, table *schema.ReportTable, outputFile string, precision int) error {
	if hs.db == nil {
		return nil
	}

	var output *string
	if outputFile != "" {
		output = &outputFile
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, title, period_label, period_start, period_end, output_file,
		cell_index, metric, category, priority, cell_kind, cell_value, cell_number) VALUES (%s)`,
		quoteTableName(cellsTable, hs.backend), placeholders(hs.backend, 1, 13))

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare cell insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	start := formatTime(table.Period.Start, hs.backend)
	end := formatTime(table.Period.End, hs.backend)
	for i, rec := range table.Records(precision) {
		if _, err := stmt.Exec(runID, table.Title, table.Period.Label, start, end, output, i,
			rec.Metric, rec.Category, rec.Priority, rec.Kind, rec.Value, rec.Number); err != nil {
			return fmt.Errorf("failed to insert cell %s/%s/%s: %w", rec.Metric, rec.Category, rec.Priority, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cells: %w", err)
	}
	return nil
}

// EndRun updates the report run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID int64, endTime time.Time, totalReports int) error {
	if hs.db == nil {
		return nil
	}

	quoted := quoteTableName(runsTable, hs.backend)
	var start dbTime
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, placeholder(hs.backend, 1))
	if err := hs.db.QueryRow(query, runID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_reports = %s WHERE run_id = %s`,
		quoted, placeholder(hs.backend, 1), placeholder(hs.backend, 2), placeholder(hs.backend, 3), placeholder(hs.backend, 4))
	if _, err := hs.db.Exec(update, formatTime(endTime, hs.backend), durationMs, totalReports, runID); err != nil {
		return fmt.Errorf("failed to update report run: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.db == nil {
		return status, nil
	}

	quoted := quoteTableName(runsTable, hs.backend)
	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest dbTime
		lastQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quoted)
		if err := hs.db.QueryRow(lastQuery).Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		oldestQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quoted)
		if err := hs.db.QueryRow(oldestQuery).Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.LastRunTime, status.OldestRunTime = last.Time, oldest.Time

		reportsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_reports), 0) FROM %s", quoted)
		if err := hs.db.QueryRow(reportsQuery).Scan(&status.TotalReports); err != nil {
			return status, fmt.Errorf("failed to get total reports: %w", err)
		}
	}

	for _, table := range historyTables {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))
		if err := hs.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns retrieves every recorded run, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, kind, start_time, end_time, run_duration_ms, total_reports, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		var start, end dbTime
		if err := rows.Scan(&record.RunID, &record.Kind, &start, &end, &record.RunDurationMs,
			&record.TotalReports, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}
	return results, nil
}

// GetAllCells retrieves every recorded cell, grouped by run and period.
func (hs *HistoryStoreImpl) GetAllCells() ([]schema.StoredCellRecord, error) {
	if hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, title, period_label, period_start, period_end, output_file,
		metric, category, priority, cell_kind, cell_value, cell_number
		FROM %s ORDER BY run_id, period_start, period_label, cell_index`, quoteTableName(cellsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query report cells: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.StoredCellRecord
	for rows.Next() {
		var record schema.StoredCellRecord
		var start, end dbTime
		if err := rows.Scan(&record.RunID, &record.Title, &record.PeriodLabel, &start, &end, &record.OutputFile,
			&record.Metric, &record.Category, &record.Priority, &record.CellKind, &record.CellValue,
			&record.CellNumber); err != nil {
			return nil, fmt.Errorf("failed to scan report cell: %w", err)
		}
		record.PeriodStart, record.PeriodEnd = start.Time, end.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report cells: %w", err)
	}
	return results, nil
}
