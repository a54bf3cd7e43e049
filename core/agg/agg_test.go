package agg

import (
	"errors"
	"testing"
	"time"

	"github.com/jirametrics/jirametrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func issue(key, priority string) schema.Issue {
	return schema.Issue{Key: key, Priority: priority, Created: now.AddDate(0, 0, -10)}
}

func resolvedIssue(key string, created time.Time, age time.Duration) schema.Issue {
	r := created.Add(age)
	return schema.Issue{Key: key, Priority: "Major", Created: created, Resolved: &r}
}

func TestBucketIssues(t *testing.T) {
	issues := []schema.Issue{
		issue("A", "Blocker"),
		issue("B", "Critical"),
		issue("C", "Critical"),
		issue("D", "Major"),
		issue("E", ""),
		issue("F", "blocker"),
	}

	assert.Len(t, BucketIssues(issues, schema.Blocker), 1)
	assert.Len(t, BucketIssues(issues, schema.Critical), 2)
	others := BucketIssues(issues, schema.Others)
	require.Len(t, others, 3)
	assert.Equal(t, []string{"D", "E", "F"}, []string{others[0].Key, others[1].Key, others[2].Key})
}

func TestCountBuckets(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected map[schema.Priority]int
	}{
		{
			name:     "blocker and critical",
			input:    []string{"Blocker", "Critical", "Critical"},
			expected: map[schema.Priority]int{schema.Blocker: 1, schema.Critical: 2, schema.Others: 0},
		},
		{
			name:     "empty",
			input:    nil,
			expected: map[schema.Priority]int{schema.Blocker: 0, schema.Critical: 0, schema.Others: 0},
		},
		{
			name:     "others catch all",
			input:    []string{"Major", "Minor", "Trivial", ""},
			expected: map[schema.Priority]int{schema.Blocker: 0, schema.Critical: 0, schema.Others: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var issues []schema.Issue
			for _, p := range tt.input {
				issues = append(issues, issue("X", p))
			}
			counts := CountBuckets(issues)
			assert.Equal(t, tt.expected, counts)

			total := 0
			for _, n := range counts {
				total += n
			}
			assert.Equal(t, len(issues), total, "buckets must partition the input")

			for _, p := range schema.Priorities {
				assert.Len(t, BucketIssues(issues, p), counts[p])
			}
		})
	}
}

func TestAverageAgeDaysEmpty(t *testing.T) {
	assert.Equal(t, 0, AverageAgeDays(nil, true, now))
	assert.Equal(t, 0, AverageAgeDays(nil, false, now))
	assert.Equal(t, 0, AverageAgeDays([]schema.Issue{}, true, now))
}

func TestAverageAgeDaysResolved(t *testing.T) {
	created := now.AddDate(0, -1, 0)
	issues := []schema.Issue{
		resolvedIssue("A", created, 4*24*time.Hour),
		resolvedIssue("B", created, 2*24*time.Hour+12*time.Hour),
		issue("C", "Major"), // unresolved, still counts in the divisor
	}

	// (4 + 2.5) / 3 = 2.1666 -> 2
	assert.Equal(t, 2, AverageAgeDays(issues, true, now))
}

func TestAverageAgeDaysUnresolved(t *testing.T) {
	issues := []schema.Issue{
		{Key: "A", Created: now.Add(-10 * 24 * time.Hour)},
		{Key: "B", Created: now.Add(-5*24*time.Hour - 23*time.Hour)},
	}

	// (10 + 5.96) / 2 = 7.98 -> 7
	assert.Equal(t, 7, AverageAgeDays(issues, false, now))
}

func TestAverageAgeDaysSkipsBadDates(t *testing.T) {
	created := now.AddDate(0, -1, 0)
	issues := []schema.Issue{
		resolvedIssue("A", created, 9*24*time.Hour),
		{Key: "B", DateErr: errors.New("bad date")},
	}

	// 9 / 2 = 4.5 -> 4
	assert.Equal(t, 4, AverageAgeDays(issues, true, now))
}

func TestAverageAgeDaysNonNegative(t *testing.T) {
	created := now.AddDate(0, -2, 0)
	for hours := 0; hours < 24*40; hours += 7 {
		issues := []schema.Issue{resolvedIssue("A", created, time.Duration(hours)*time.Hour)}
		assert.GreaterOrEqual(t, AverageAgeDays(issues, true, now), 0)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		num, den int
		expected string
	}{
		{5, 10, "50.00%"},
		{1, 3, "33.33%"},
		{2, 3, "66.67%"},
		{10, 10, "100.00%"},
		{0, 10, "0.00%"},
		{3, 0, ZeroPercent},
		{0, 0, ZeroPercent},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatPercent(tt.num, tt.den), "%d/%d", tt.num, tt.den)
	}
}

func TestResolutionPercent(t *testing.T) {
	assert.Equal(t, "50.00%", ResolutionPercent(5, 10))
	assert.Equal(t, "0.0%", ResolutionPercent(0, 10))
	assert.Equal(t, "0.0%", ResolutionPercent(0, 0))
	assert.Equal(t, "0.0%", ResolutionPercent(3, 0))
}

func qmrTable(t *testing.T) *schema.ReportTable {
	t.Helper()
	table := schema.NewReportTable("QMR", schema.QMRRows)
	set := func(row schema.Metric, cat schema.Category, p schema.Priority, n int) {
		require.NoError(t, table.Set(row, cat, p, schema.CountValue(n)))
	}
	set(schema.BugsRaised, schema.Regression, schema.Blocker, 10)
	set(schema.Resolved, schema.Regression, schema.Blocker, 5)
	set(schema.Noise, schema.Regression, schema.Blocker, 1)
	set(schema.Fixed, schema.Regression, schema.Blocker, 4)
	set(schema.GerritFix, schema.Regression, schema.Blocker, 2)
	set(schema.BugsRaised, schema.Exploratory, schema.Others, 10)
	set(schema.Resolved, schema.Exploratory, schema.Others, 0)
	return table
}

func TestApplyPercentages(t *testing.T) {
	table := qmrTable(t)
	require.NoError(t, ApplyPercentages(table))

	get := func(row schema.Metric, cat schema.Category, p schema.Priority) string {
		c, ok := table.Get(row, cat, p)
		require.True(t, ok)
		return c.Format(2)
	}

	assert.Equal(t, "20.00%", get(schema.NoisePercent, schema.Regression, schema.Blocker))
	assert.Equal(t, "80.00%", get(schema.FixedPercent, schema.Regression, schema.Blocker))
	assert.Equal(t, "40.00%", get(schema.GerritPercent, schema.Regression, schema.Blocker))
	assert.Equal(t, "50.00%", get(schema.ResolutionPercent, schema.Regression, schema.Blocker))

	assert.Equal(t, "0.0%", get(schema.NoisePercent, schema.Exploratory, schema.Others))
	assert.Equal(t, "0.0%", get(schema.ResolutionPercent, schema.Exploratory, schema.Others))
	assert.Equal(t, "0.0%", get(schema.FixedPercent, schema.Regression, schema.Critical))

	// Overall stays blank until rolled up
	assert.Equal(t, "", get(schema.NoisePercent, schema.Overall, schema.NoPriority))
}

func TestOverallRollup(t *testing.T) {
	table := qmrTable(t)
	for _, row := range schema.QMRSubQueries {
		require.NoError(t, RollupCounts(table, row))
	}
	require.NoError(t, ApplyOverallPercentages(table))

	assert.Equal(t, 20, table.Count(schema.BugsRaised, schema.Overall, schema.NoPriority))
	assert.Equal(t, 5, table.Count(schema.Resolved, schema.Overall, schema.NoPriority))

	c, _ := table.Get(schema.ResolutionPercent, schema.Overall, schema.NoPriority)
	assert.Equal(t, "25.00%", c.Percent)
	c, _ = table.Get(schema.NoisePercent, schema.Overall, schema.NoPriority)
	assert.Equal(t, "20.00%", c.Percent)
}

func TestOverallRollupAllZero(t *testing.T) {
	table := schema.NewReportTable("QMR", schema.QMRRows)
	for _, row := range schema.QMRSubQueries {
		require.NoError(t, RollupCounts(table, row))
	}
	require.NoError(t, ApplyPercentages(table))
	require.NoError(t, ApplyOverallPercentages(table))

	for _, row := range table.Rows() {
		if !row.IsPercent() {
			continue
		}
		for _, col := range schema.Columns() {
			c, _ := table.Get(row, col.Category, col.Priority)
			assert.Equal(t, ZeroPercent, c.Percent, "%s %s", row, col)
		}
	}
}

func TestSetCounts(t *testing.T) {
	table := schema.NewReportTable("QMR", schema.QMRRows)
	issues := []schema.Issue{issue("A", "Blocker"), issue("B", "Critical"), issue("C", "Critical")}
	require.NoError(t, SetCounts(table, schema.BugsRaised, schema.Regression, issues))

	assert.Equal(t, 1, table.Count(schema.BugsRaised, schema.Regression, schema.Blocker))
	assert.Equal(t, 2, table.Count(schema.BugsRaised, schema.Regression, schema.Critical))
	assert.Equal(t, 0, table.Count(schema.BugsRaised, schema.Regression, schema.Others))

	assert.Error(t, SetCounts(table, schema.ResolvedDefect, schema.Regression, issues))
	assert.Error(t, SetCounts(table, schema.BugsRaised, schema.Overall, issues))
}

func TestRollupAges(t *testing.T) {
	table := schema.NewReportTable("Defect Age", schema.DefectAgeRows)
	values := []float64{10, 20, 0, 5, 0, 0}
	for i, col := range schema.CategoryColumns() {
		require.NoError(t, table.Set(schema.ResolvedDefect, col.Category, col.Priority, schema.DaysValue(values[i])))
	}
	require.NoError(t, RollupAges(table, schema.ResolvedDefect))
	require.NoError(t, RollupAges(table, schema.UnresolvedDefect))

	assert.Equal(t, 5.83, table.Days(schema.ResolvedDefect, schema.Overall, schema.NoPriority))
	assert.Equal(t, 0.0, table.Days(schema.UnresolvedDefect, schema.Overall, schema.NoPriority))
}
