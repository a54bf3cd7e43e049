package outwriter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jirametrics/jirametrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetName(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Report January 2024", "Report January 2024"},
		{"Defect Age 2024-01-15 to 2024-03-10", "Defect Age 2024-01-15 to 2024-0"},
		{"a/b:c?[d]", "a-b-c(d)"},
		{"", "Report"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := sheetName(tt.title)
			assert.Equal(t, tt.expected, got)
			assert.LessOrEqual(t, len([]rune(got)), maxSheetName)
		})
	}
}

func TestMonthOf(t *testing.T) {
	got, ok := monthOf("report_March_2024.xlsx")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), got)

	_, ok = monthOf("defect_age_2024-01-01_2024-03-31.xlsx")
	assert.False(t, ok)
	_, ok = monthOf("notes.xlsx")
	assert.False(t, ok)
}

func writeReportFile(t *testing.T, dir, name string, table *schema.ReportTable) {
	t.Helper()
	sink := NewFileSink(sinkConfig(schema.XLSXOut), &bytes.Buffer{})
	require.NoError(t, sink.WriteReport(table, filepath.Join(dir, name)))
}

func TestReportFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"report_March_2024.xlsx", "report_January_2024.xlsx", "zz_custom.xlsx",
		"report_December_2023.xlsx", "combined_report.xlsx", "~$report_March_2024.xlsx", "report.csv",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.xlsx"), 0o755))

	files, err := reportFiles(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{
		"report_December_2023.xlsx", "report_January_2024.xlsx", "report_March_2024.xlsx", "zz_custom.xlsx",
	}, names)
}

func TestCombineDirectory(t *testing.T) {
	dir := t.TempDir()
	writeReportFile(t, dir, "report_February_2024.xlsx", sampleTable(time.February))
	writeReportFile(t, dir, "report_January_2024.xlsx", sampleTable(time.January))

	out, n, err := CombineDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, filepath.Join(dir, "combined_report.xlsx"), out)

	rows, err := readXLSXRows(out)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 14)
	assert.Equal(t, "report_January_2024", rows[0][0])
	assert.Equal(t, "Metrics", rows[1][0])
	assert.Equal(t, "BugsRaised", rows[3][0])
	assert.Equal(t, "4", rows[3][1])
	assert.Equal(t, "report_February_2024", rows[13][0])

	// A second run replaces the combined file instead of including it.
	_, n, err = CombineDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCombineDirectoryErrors(t *testing.T) {
	_, _, err := CombineDirectory(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	empty := t.TempDir()
	_, _, err = CombineDirectory(empty)
	assert.ErrorContains(t, err, "no xlsx reports")

	broken := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(broken, "report_May_2024.xlsx"), []byte("not a workbook"), 0o644))
	_, _, err = CombineDirectory(broken)
	assert.Error(t, err)
}

func TestSetCellValue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeXLSXBlocks(&buf, []sheetBlock{{title: "t", rows: [][]string{{"Noise%", "12", "0.0%", "1.5"}}}}))

	path := filepath.Join(t.TempDir(), "cells.xlsx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	rows, err := readXLSXRows(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, []string{"Noise%", "12", "0.0%"}, rows[1][:3])
}
