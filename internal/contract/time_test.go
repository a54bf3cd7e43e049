package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

// TestParseRelativeTimeUnit covers various valid and invalid cases.
func TestParseRelativeTimeUnit(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{
			name:     "valid plural months (mixed case)",
			input:    "3 MoNtHs AgO",
			expected: fixedNow.AddDate(0, -3, 0),
		},
		{
			name:     "valid singular week (capitalized)",
			input:    "1 Week Ago",
			expected: fixedNow.AddDate(0, 0, -7),
		},
		{
			name:     "valid 10 days (upper case)",
			input:    "10 DAYS AGO",
			expected: fixedNow.AddDate(0, 0, -10),
		},
		{
			name:     "valid hours",
			input:    "5 hours ago",
			expected: fixedNow.Add(-5 * time.Hour),
		},
		{
			name:        "invalid missing ago",
			input:       "2 years",
			expectError: true,
		},
		{
			name:        "invalid bad unit (decades)",
			input:       "4 decades ago",
			expectError: true,
		},
		{
			name:        "invalid non-numeric value",
			input:       "one year ago",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseDuration(t *testing.T) {
	const day = 24 * time.Hour

	tests := []struct {
		name      string
		input     string
		want      time.Duration
		expectErr bool
	}{
		{"go duration", "90m", 90 * time.Minute, false},
		{"go duration seconds", "30s", 30 * time.Second, false},
		{"1 hour", "1 hour", time.Hour, false},
		{"12 hours", "12 hours", 12 * time.Hour, false},
		{"2 days", "2 days", 2 * day, false},
		{"45 seconds", "45 seconds", 45 * time.Second, false},
		{"mixed case", "3 HoUrS", 3 * time.Hour, false},
		{"extra space", " 1  day ", day, false},

		{"zero quantity", "0 days", 0, true},
		{"zero go duration", "0s", 0, true},
		{"negative go duration", "-5m", 0, true},
		{"invalid unit", "3 decades", 0, true},
		{"missing unit", "3", 0, true},
		{"empty string", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDateInput(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      time.Time
		expectErr bool
	}{
		{"date only", "2024-01-15", time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339 truncated to day", "2024-01-15T23:10:00Z", time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), false},
		{"rfc3339 with offset uses utc day", "2024-01-15T01:00:00+05:00", time.Date(2024, time.January, 14, 0, 0, 0, 0, time.UTC), false},
		{"relative", "2 months ago", time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC), false},
		{"garbage", "last tuesday", time.Time{}, true},
		{"wrong order", "15-01-2024", time.Time{}, true},
		{"no such day", "2023-02-29", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateInput(tt.input, fixedNow)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
