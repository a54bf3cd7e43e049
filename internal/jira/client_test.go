package jira

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jirametrics/jirametrics/core/agg"
	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/internal/jiratime"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
  "startAt": 0,
  "maxResults": 10000,
  "total": 3,
  "issues": [
    {"key": "QA-1", "fields": {"summary": "Crash on save", "priority": {"name": "Blocker"},
      "created": "2024-01-02T10:00:00.000+0000", "resolutiondate": "2024-01-05T10:00:00.000+0000"}},
    {"key": "QA-2", "fields": {"summary": "Typo", "priority": {"name": "Minor"},
      "created": "2024-01-03T08:30:00.000+05:30", "resolutiondate": null}},
    {"key": "QA-3", "fields": {"summary": "No priority", "created": "yesterday", "resolutiondate": ""}}
  ]
}`

func staticTokens(t *testing.T) *contract.MockTokenSource {
	t.Helper()
	ts := &contract.MockTokenSource{}
	ts.On("Token", mock.Anything).Return("tok", nil)
	return ts
}

func newTestClient(t *testing.T, srvURL string, opts ...Option) *SearchClient {
	t.Helper()
	opts = append([]Option{WithRetryWait(time.Millisecond, 5*time.Millisecond)}, opts...)
	return NewSearchClient(SearchConfig{URL: srvURL, Timeout: 2 * time.Second}, staticTokens(t), opts...)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "project = QA AND created >= 2024-01-01", r.URL.Query().Get("jql"))
		assert.Equal(t, "0", r.URL.Query().Get("startAt"))
		assert.Equal(t, "10000", r.URL.Query().Get("maxResults"))
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	issues, err := newTestClient(t, srv.URL).Search(context.Background(), "project = QA AND created >= 2024-01-01")
	require.NoError(t, err)
	require.Len(t, issues, 3)

	assert.Equal(t, "QA-1", issues[0].Key)
	assert.Equal(t, "Crash on save", issues[0].Title)
	assert.Equal(t, schema.Blocker, issues[0].Bucket())
	require.True(t, issues[0].IsResolved())
	assert.Equal(t, 72*time.Hour, issues[0].Resolved.Sub(issues[0].Created))

	assert.Equal(t, schema.Others, issues[1].Bucket())
	assert.False(t, issues[1].IsResolved())
	assert.NoError(t, issues[1].DateErr)

	assert.Equal(t, "", issues[2].Priority)
	assert.False(t, issues[2].IsResolved(), "empty resolutiondate means unresolved")
	var dfe *jiratime.DateFormatError
	assert.True(t, errors.As(issues[2].DateErr, &dfe))
}

func TestSearchFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		statusCode int
	}{
		{"bad request", http.StatusBadRequest, `{"errorMessages":["bad jql"]}`, http.StatusBadRequest},
		{"forbidden", http.StatusForbidden, "", http.StatusForbidden},
		{"server error after retries", http.StatusBadGateway, "", http.StatusBadGateway},
		{"malformed body", http.StatusOK, "<html>", 0},
		{"missing issues field", http.StatusOK, `{"total": 0}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Search(context.Background(), "project = QA")
			var qe *contract.QueryError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, "project = QA", qe.JQL)
			assert.Equal(t, tt.statusCode, qe.StatusCode)
		})
	}
}

func TestSearchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"issues": []}`))
	}))
	defer srv.Close()

	issues, err := newTestClient(t, srv.URL).Search(context.Background(), "project = QA")
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()

	client := NewSearchClient(SearchConfig{URL: u, RetryMax: 1}, staticTokens(t), WithRetryWait(time.Millisecond, time.Millisecond))
	_, err := client.Search(context.Background(), "project = QA")
	var qe *contract.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Zero(t, qe.StatusCode)
}

func TestSearchTokenFailure(t *testing.T) {
	ts := &contract.MockTokenSource{}
	ts.On("Token", mock.Anything).Return("", &contract.AuthError{StatusCode: http.StatusUnauthorized})

	client := NewSearchClient(SearchConfig{URL: "http://127.0.0.1:1"}, ts)
	_, err := client.Search(context.Background(), "project = QA")
	var authErr *contract.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestSearchUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	now := time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC)
	store := &contract.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, 0, int64(0), sql.ErrNoRows).Once()
	store.On("Set", mock.Anything, []byte(searchBody), searchCacheVersion, now.Unix()).Return(nil).Once()
	store.On("Get", mock.Anything).Return([]byte(searchBody), searchCacheVersion, now.Unix(), nil).Once()

	client := newTestClient(t, srv.URL, WithCache(store), WithClock(func() time.Time { return now }))
	client.cfg.CacheTTL = time.Hour

	first, err := client.Search(context.Background(), "project = QA")
	require.NoError(t, err)
	second, err := client.Search(context.Background(), "project = QA")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, len(first), len(second))
	store.AssertExpectations(t)
}

func TestCacheMisses(t *testing.T) {
	now := time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		version int
		ts      int64
		hit     bool
	}{
		{"fresh", searchCacheVersion, now.Add(-time.Minute).Unix(), true},
		{"expired", searchCacheVersion, now.Add(-2 * time.Hour).Unix(), false},
		{"other version", searchCacheVersion + 1, now.Unix(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &contract.MockCacheStore{}
			store.On("Get", "k").Return([]byte("{}"), tt.version, tt.ts, nil)

			client := NewSearchClient(SearchConfig{URL: "http://x", CacheTTL: time.Hour}, nil,
				WithCache(store), WithClock(func() time.Time { return now }))
			_, hit := client.fromCache("k")
			assert.Equal(t, tt.hit, hit)
		})
	}
}

func TestCacheKeyDependsOnQueryAndCap(t *testing.T) {
	a := NewSearchClient(SearchConfig{URL: "http://x", MaxResults: 10}, nil)
	b := NewSearchClient(SearchConfig{URL: "http://x", MaxResults: 20}, nil)

	assert.NotEqual(t, a.cacheKey("q1"), a.cacheKey("q2"))
	assert.NotEqual(t, a.cacheKey("q1"), b.cacheKey("q1"))
	assert.Equal(t, a.cacheKey("q1"), a.cacheKey("q1"))
}

func TestConvertIssuesBadResolutionDate(t *testing.T) {
	bad := "not a date"
	raw := []schema.RawIssue{{
		Key:    "QA-9",
		Fields: schema.RawFields{Created: "2024-01-01T00:00:00.000+0000", ResolutionDate: &bad},
	}}
	issues := ConvertIssues(raw, logrus.NewEntry(logrus.New()))
	require.Len(t, issues, 1)
	assert.Error(t, issues[0].DateErr)
	assert.False(t, issues[0].IsResolved())
	assert.False(t, issues[0].Created.IsZero())
}

func TestConvertIssuesNegativeOffset(t *testing.T) {
	resolvedAt := "2024-01-11T10:30:00.000-0800"
	raw := []schema.RawIssue{{
		Key: "QA-10",
		Fields: schema.RawFields{
			Priority:       &schema.RawPriority{Name: "Blocker"},
			Created:        "2024-01-01T10:30:00.000-0800",
			ResolutionDate: &resolvedAt,
		},
	}}
	issues := ConvertIssues(raw, logrus.NewEntry(logrus.New()))
	require.Len(t, issues, 1)
	require.NoError(t, issues[0].DateErr)
	require.True(t, issues[0].IsResolved())
	assert.Equal(t, 10*24*time.Hour, issues[0].Resolved.Sub(issues[0].Created))
	assert.Equal(t, 10, agg.AverageAgeDays(issues, true, time.Now()))
}
