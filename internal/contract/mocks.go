package contract

import (
	"context"
	"time"

	"github.com/jirametrics/jirametrics/schema"
	"github.com/stretchr/testify/mock"
)

// MockTokenSource is a mock implementation of TokenSource for testing.
type MockTokenSource struct {
	mock.Mock
}

var _ TokenSource = &MockTokenSource{} // Compile-time check

// Token implements the TokenSource interface.
func (m *MockTokenSource) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockIssueSearcher is a mock implementation of IssueSearcher for testing.
type MockIssueSearcher struct {
	mock.Mock
}

var _ IssueSearcher = &MockIssueSearcher{} // Compile-time check

// Search implements the IssueSearcher interface.
func (m *MockIssueSearcher) Search(ctx context.Context, jql string) ([]schema.Issue, error) {
	args := m.Called(ctx, jql)
	issues, _ := args.Get(0).([]schema.Issue)
	return issues, args.Error(1)
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	args := m.Called(key, value, version, timestamp)
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	return m.Called().Error(0)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(kind schema.ReportKind, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(kind, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// RecordReport implements the HistoryStore interface.
func (m *MockHistoryStore) RecordReport(runID int64, table *schema.ReportTable, outputFile string, precision int) error {
	args := m.Called(runID, table, outputFile, precision)
	return args.Error(0)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID int64, endTime time.Time, totalReports int) error {
	args := m.Called(runID, endTime, totalReports)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RunRecord)
	return runs, args.Error(1)
}

// GetAllCells implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllCells() ([]schema.StoredCellRecord, error) {
	args := m.Called()
	cells, _ := args.Get(0).([]schema.StoredCellRecord)
	return cells, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	return m.Called().Error(0)
}

// MockReportSink is a mock implementation of ReportSink for testing.
type MockReportSink struct {
	mock.Mock
}

var _ ReportSink = &MockReportSink{} // Compile-time check

// WriteReport implements the ReportSink interface.
func (m *MockReportSink) WriteReport(table *schema.ReportTable, path string) error {
	return m.Called(table, path).Error(0)
}

// WriteCombined implements the ReportSink interface.
func (m *MockReportSink) WriteCombined(tables []*schema.ReportTable, path string) error {
	return m.Called(tables, path).Error(0)
}

// Display implements the ReportSink interface.
func (m *MockReportSink) Display(table *schema.ReportTable) error {
	return m.Called(table).Error(0)
}

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ CacheManager = &MockCacheManager{} // Compile-time check

// GetSearchStore implements the CacheManager interface.
func (m *MockCacheManager) GetSearchStore() CacheStore {
	store, _ := m.Called().Get(0).(CacheStore)
	return store
}

// GetHistoryStore implements the CacheManager interface.
func (m *MockCacheManager) GetHistoryStore() HistoryStore {
	store, _ := m.Called().Get(0).(HistoryStore)
	return store
}
