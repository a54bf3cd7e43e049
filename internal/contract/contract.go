// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/jirametrics/jirametrics/schema"
)

// TokenSource hands out a bearer token that is valid for at least the next minute.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// IssueSearcher runs a JQL query against the tracker.
// This allows the report logic to be tested without a live tracker.
type IssueSearcher interface {
	// Search returns the issues matching the query. Failures are *QueryError.
	Search(ctx context.Context, jql string) ([]schema.Issue, error)
}

// ReportSink persists and displays generated report tables.
type ReportSink interface {
	// WriteReport writes one table to path
	WriteReport(table *schema.ReportTable, path string) error

	// WriteCombined writes several tables one after another to path
	WriteCombined(tables []*schema.ReportTable, path string) error

	// Display renders a table for the user
	Display(table *schema.ReportTable) error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSearchStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for tracking report runs and the tables they produced.
type HistoryStore interface {
	// BeginRun creates a new report run and returns its unique ID
	BeginRun(kind schema.ReportKind, startTime time.Time, configParams map[string]any) (int64, error)

	// RecordReport stores every cell of a generated table
	RecordReport(runID int64, table *schema.ReportTable, outputFile string, precision int) error

	// EndRun updates the report run with completion data
	EndRun(runID int64, endTime time.Time, totalReports int) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllCells returns every recorded cell
	GetAllCells() ([]schema.StoredCellRecord, error)

	// Close closes the underlying connection
	Close() error
}
