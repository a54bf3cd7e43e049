package schema

import "time"

// CacheStatus represents the status of the search cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// HistoryStatus represents the status of the run history store.
type HistoryStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalReports  int              `json:"total_reports"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the report_runs table.
type RunRecord struct {
	RunID         int64
	Kind          string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalReports  int32
	ConfigParams  *string
}

// StoredCellRecord represents a row from the report_cells table.
type StoredCellRecord struct {
	RunID       int64
	Title       string
	PeriodLabel string
	PeriodStart time.Time
	PeriodEnd   time.Time
	OutputFile  *string
	Metric      string
	Category    string
	Priority    string
	CellKind    string
	CellValue   string
	CellNumber  *float64
}
