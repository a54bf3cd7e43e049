package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReportTable(t *testing.T) {
	table := NewReportTable("QMR", QMRRows)

	for _, row := range QMRRows {
		for _, col := range Columns() {
			c, ok := table.Get(row, col.Category, col.Priority)
			require.True(t, ok, "cell %s/%s should exist", row, col)
			if row.IsPercent() {
				assert.Equal(t, BlankCell, c.Kind)
			} else {
				assert.Equal(t, CountValue(0), c)
			}
		}
	}

	ages := NewReportTable("Defect Age", DefectAgeRows)
	c, ok := ages.Get(ResolvedDefect, Overall, NoPriority)
	require.True(t, ok)
	assert.Equal(t, DaysValue(0), c)
}

func TestReportTableSet(t *testing.T) {
	tests := []struct {
		name     string
		row      Metric
		category Category
		priority Priority
		wantErr  bool
	}{
		{"category cell", BugsRaised, Regression, Blocker, false},
		{"overall cell", BugsRaised, Overall, NoPriority, false},
		{"overall with priority", BugsRaised, Overall, Blocker, true},
		{"category without priority", BugsRaised, Regression, NoPriority, true},
		{"unknown category", BugsRaised, Category("Smoke"), Blocker, true},
		{"unknown row", ResolvedDefect, Regression, Blocker, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewReportTable("QMR", QMRRows)
			err := table.Set(tt.row, tt.category, tt.priority, CountValue(3))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 3, table.Count(tt.row, tt.category, tt.priority))
		})
	}
}

func TestReportTableDropRow(t *testing.T) {
	table := NewReportTable("QMR", QMRRows)
	require.NoError(t, table.Set(Resolution, Regression, Others, CountValue(4)))

	table.DropRow(Resolution)
	table.DropRow(Resolution) // no-op

	assert.False(t, table.HasRow(Resolution))
	_, ok := table.Get(Resolution, Regression, Others)
	assert.False(t, ok)
	assert.Len(t, table.Rows(), len(QMRRows)-1)
	assert.Error(t, table.Set(Resolution, Regression, Others, CountValue(1)))
}

func TestReportTableRender(t *testing.T) {
	table := NewReportTable("Defect Age", DefectAgeRows)
	require.NoError(t, table.Set(ResolvedDefect, Regression, Blocker, DaysValue(12)))
	require.NoError(t, table.Set(ResolvedDefect, Overall, NoPriority, DaysValue(2.0/3.0)))

	rendered := table.Render(2)
	require.Len(t, rendered, 4)
	assert.Equal(t, []string{"Metrics", "Regression", "Regression", "Regression", "Exploratory", "Exploratory", "Exploratory", "Overall"}, rendered[0])
	assert.Equal(t, []string{"Priority", "Blocker", "Critical", "Others", "Blocker", "Critical", "Others", ""}, rendered[1])
	assert.Equal(t, []string{"Resolved-Defect", "12", "0", "0", "0", "0", "0", "0.67"}, rendered[2])
	assert.Equal(t, "Unresolved-Defect", rendered[3][0])
}

func TestReportTableRecords(t *testing.T) {
	table := NewReportTable("QMR", []Metric{Resolved, NoisePercent})
	require.NoError(t, table.Set(Resolved, Exploratory, Critical, CountValue(5)))
	require.NoError(t, table.Set(NoisePercent, Exploratory, Critical, PercentValue("20.00%")))

	records := table.Records(2)
	require.Len(t, records, 14)

	resolved := records[4]
	assert.Equal(t, "Resolved", resolved.Metric)
	assert.Equal(t, "Exploratory", resolved.Category)
	assert.Equal(t, "Critical", resolved.Priority)
	assert.Equal(t, "count", resolved.Kind)
	require.NotNil(t, resolved.Number)
	assert.InDelta(t, 5.0, *resolved.Number, 1e-9)

	noise := records[7+4]
	assert.Equal(t, "percent", noise.Kind)
	assert.Equal(t, "20.00%", noise.Value)
	assert.Nil(t, noise.Number)

	out := table.Output(2)
	assert.Len(t, out.Header, 2)
	assert.Len(t, out.Rows, 2)
	assert.Len(t, out.Cells, 14)
}

func TestRoundTo(t *testing.T) {
	assert.InDelta(t, 1.67, RoundTo(5.0/3.0, 2), 1e-9)
	assert.InDelta(t, 0.13, RoundTo(0.125, 2), 1e-9)
	assert.InDelta(t, -1.5, RoundTo(-1.5, 1), 1e-9)
}
