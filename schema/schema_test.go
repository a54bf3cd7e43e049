package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssueBucket(t *testing.T) {
	tests := []struct {
		priority string
		expected Priority
	}{
		{"Blocker", Blocker},
		{"Critical", Critical},
		{"Major", Others},
		{"Minor", Others},
		{"blocker", Others}, // bucketing is case-sensitive
		{"", Others},
	}

	for _, tt := range tests {
		t.Run(tt.priority, func(t *testing.T) {
			assert.Equal(t, tt.expected, Issue{Priority: tt.priority}.Bucket())
		})
	}
}

func TestPeriodDates(t *testing.T) {
	p := Period{
		Start: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "2024-02-01", p.StartDate())
	assert.Equal(t, "2024-02-29", p.EndDate())
}

func TestOutputModeFileExtension(t *testing.T) {
	assert.Equal(t, ".xlsx", XLSXOut.FileExtension())
	assert.Equal(t, ".csv", CSVOut.FileExtension())
	assert.Equal(t, ".parquet", ParquetOut.FileExtension())
	assert.Equal(t, ".txt", TextOut.FileExtension())
}

func TestMetricKinds(t *testing.T) {
	assert.True(t, NoisePercent.IsPercent())
	assert.False(t, Noise.IsPercent())
	assert.True(t, UnresolvedDefect.IsAge())
	assert.False(t, Resolved.IsAge())
}
