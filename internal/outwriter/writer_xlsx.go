package outwriter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jirametrics/jirametrics/schema"
	"github.com/tealeg/xlsx"
)

const (
	maxSheetName      = 31
	combinedSheetName = "Combined"
)

var sheetNameReplacer = strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")")

// sheetName makes a table title usable as a worksheet name.
func sheetName(title string) string {
	name := []rune(sheetNameReplacer.Replace(title))
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	if len(name) == 0 {
		return "Report"
	}
	return string(name)
}

// setCellValue stores integers and decimals as numbers and everything else as text.
func setCellValue(cell *xlsx.Cell, value string) {
	if n, err := strconv.Atoi(value); err == nil {
		cell.SetInt(n)
		return
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		cell.SetFloat(f)
		return
	}
	cell.SetString(value)
}

func addRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		setCellValue(row.AddCell(), v)
	}
}

// addTable appends a rendered table to the sheet.
func addTable(sheet *xlsx.Sheet, rows [][]string) {
	for _, r := range rows {
		addRow(sheet, r)
	}
}

// writeXLSXTable writes a single table into a workbook named after its title.
func writeXLSXTable(w io.Writer, table *schema.ReportTable, precision int) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName(table.Title))
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	addTable(sheet, table.Render(precision))
	return file.Write(w)
}

// writeXLSXCombined stacks every table on one sheet, each preceded by its
// title and followed by an empty row.
func writeXLSXCombined(w io.Writer, tables []*schema.ReportTable, precision int) error {
	blocks := make([]sheetBlock, 0, len(tables))
	for _, table := range tables {
		blocks = append(blocks, sheetBlock{title: table.Title, rows: table.Render(precision)})
	}
	return writeXLSXBlocks(w, blocks)
}

type sheetBlock struct {
	title string
	rows  [][]string
}

func writeXLSXBlocks(w io.Writer, blocks []sheetBlock) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(combinedSheetName)
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	for _, b := range blocks {
		addRow(sheet, []string{b.title})
		addTable(sheet, b.rows)
		sheet.AddRow()
	}
	return file.Write(w)
}

// readXLSXRows returns the cell texts of the first sheet of a workbook.
func readXLSXRows(path string) ([][]string, error) {
	file, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if len(file.Sheets) == 0 {
		return nil, nil
	}
	var rows [][]string
	for _, row := range file.Sheets[0].Rows {
		line := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			line = append(line, cell.String())
		}
		rows = append(rows, line)
	}
	return rows, nil
}

// reportFiles lists the xlsx reports of a directory, skipping the combined
// file and editor lock files. Files whose name ends in a Month_Year label are
// ordered chronologically and come before any other file.
func reportFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	combined := schema.CombinedReportName + schema.XLSXOut.FileExtension()
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".xlsx" || name == combined || strings.HasPrefix(name, "~$") {
			continue
		}
		files = append(files, name)
	}

	slices.SortStableFunc(files, func(a, b string) int {
		ta, okA := monthOf(a)
		tb, okB := monthOf(b)
		switch {
		case okA && okB:
			return ta.Compare(tb)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = filepath.Join(dir, f)
	}
	return paths, nil
}

// monthOf parses the trailing Month_Year label of a report file name.
func monthOf(name string) (time.Time, bool) {
	parts := strings.Split(strings.TrimSuffix(name, filepath.Ext(name)), "_")
	if len(parts) < 2 {
		return time.Time{}, false
	}
	t, err := time.Parse("January_2006", strings.Join(parts[len(parts)-2:], "_"))
	return t, err == nil
}

// CombineDirectory concatenates every xlsx report of dir into
// combined_report.xlsx in the same directory. It returns the path of the
// combined file and the number of reports it holds.
func CombineDirectory(dir string) (string, int, error) {
	files, err := reportFiles(dir)
	if err != nil {
		return "", 0, err
	}
	if len(files) == 0 {
		return "", 0, fmt.Errorf("no xlsx reports found in %s", dir)
	}

	blocks := make([]sheetBlock, 0, len(files))
	for _, f := range files {
		rows, err := readXLSXRows(f)
		if err != nil {
			return "", 0, err
		}
		title := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		blocks = append(blocks, sheetBlock{title: title, rows: rows})
	}

	out := filepath.Join(dir, schema.CombinedReportName+schema.XLSXOut.FileExtension())
	err = writeWithFile(out, func(w io.Writer) error {
		return writeXLSXBlocks(w, blocks)
	}, fmt.Sprintf("Combined %d reports", len(files)))
	if err != nil {
		return "", 0, err
	}
	return out, len(files), nil
}
