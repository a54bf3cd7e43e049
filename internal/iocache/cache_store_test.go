package iocache

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jirametrics/jirametrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStore_NoneBackend(t *testing.T) {
	store, err := NewCacheStore(searchTable, schema.NoneBackend, "")
	require.NoError(t, err)

	require.NoError(t, store.Set("k", []byte("v"), 1, 10))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestCacheStore_SQLite(t *testing.T) {
	store, err := NewCacheStore(searchTable, schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("search:missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("search:a", []byte(`{"issues":[]}`), 1, 100))
	require.NoError(t, store.Set("search:b", []byte(`[]`), 1, 300))
	require.NoError(t, store.Set("search:a", []byte(`{"issues":[1]}`), 2, 200))

	value, version, ts, err := store.Get("search:a")
	require.NoError(t, err)
	assert.Equal(t, `{"issues":[1]}`, string(value))
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(200), ts)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(300, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(200, 0), status.OldestEntryTime)
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStore_InvalidInput(t *testing.T) {
	_, err := NewCacheStore("bad-name;", schema.SQLiteBackend, ":memory:")
	assert.Error(t, err)

	_, err = NewCacheStore(searchTable, "oracle", "")
	assert.ErrorContains(t, err, "unsupported backend")
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"search_cache", true},
		{"_private", true},
		{"Table2", true},
		{"", false},
		{"2fast", false},
		{"drop table;", false},
		{"a-b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.name)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestQuoteAndPlaceholders(t *testing.T) {
	assert.Equal(t, "`report_runs`", quoteTableName(runsTable, schema.MySQLBackend))
	assert.Equal(t, `"report_runs"`, quoteTableName(runsTable, schema.PostgreSQLBackend))
	assert.Equal(t, `"report_runs"`, quoteTableName(runsTable, schema.SQLiteBackend))

	assert.Equal(t, "$2, $3, $4", placeholders(schema.PostgreSQLBackend, 2, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 1, 2))
	assert.Equal(t, "?", placeholder(schema.SQLiteBackend, 5))
}

func TestDBTimeScan(t *testing.T) {
	want := time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		src   any
		valid bool
	}{
		{"native", want, true},
		{"rfc3339 string", "2024-03-01T12:30:00Z", true},
		{"sqlite text", "2024-03-01T12:30:00.000000+0000", true},
		{"mysql bytes", []byte("2024-03-01 12:30:00.000000"), true},
		{"null", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v dbTime
			require.NoError(t, v.Scan(tt.src))
			assert.Equal(t, tt.valid, v.Valid)
			if tt.valid {
				assert.True(t, want.Equal(v.Time))
				require.NotNil(t, v.ptr())
			} else {
				assert.Nil(t, v.ptr())
			}
		})
	}

	var v dbTime
	assert.Error(t, v.Scan("yesterday"))
	assert.Error(t, v.Scan(42))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, time.March, 1, 12, 30, 0, 0, time.FixedZone("X", 3600))
	assert.Equal(t, "2024-03-01T11:30:00.000000+0000", formatTime(ts, schema.SQLiteBackend))
	assert.Equal(t, ts, formatTime(ts, schema.PostgreSQLBackend))
}
