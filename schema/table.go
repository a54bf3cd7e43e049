package schema

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

// ColumnKey identifies a report column as a (category, priority) pair.
type ColumnKey struct {
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
}

// String returns a readable column label such as "Regression/Blocker".
func (k ColumnKey) String() string {
	if k.Priority == NoPriority {
		return string(k.Category)
	}
	return string(k.Category) + "/" + string(k.Priority)
}

// OverallColumn is the rollup column of every report.
var OverallColumn = ColumnKey{Category: Overall, Priority: NoPriority}

// reportColumns is the fixed column layout shared by every report table.
var reportColumns = []ColumnKey{
	{Regression, Blocker}, {Regression, Critical}, {Regression, Others},
	{Exploratory, Blocker}, {Exploratory, Critical}, {Exploratory, Others},
	OverallColumn,
}

// Columns returns the fixed column layout in render order.
func Columns() []ColumnKey {
	return slices.Clone(reportColumns)
}

// CategoryColumns returns the six (category, priority) columns, excluding Overall.
func CategoryColumns() []ColumnKey {
	return slices.Clone(reportColumns[:len(reportColumns)-1])
}

// IsValidColumn reports whether the key is part of the fixed column layout.
func IsValidColumn(key ColumnKey) bool {
	return slices.Contains(reportColumns, key)
}

// CellKind describes what a cell holds.
type CellKind int

// All cell kinds.
const (
	BlankCell CellKind = iota
	CountCell
	DaysCell
	PercentCell
)

// String returns the name of the cell kind.
func (k CellKind) String() string {
	switch k {
	case CountCell:
		return "count"
	case DaysCell:
		return "days"
	case PercentCell:
		return "percent"
	default:
		return "blank"
	}
}

// Cell is a single value of a report table.
type Cell struct {
	Kind    CellKind
	Count   int
	Days    float64
	Percent string // Already formatted, e.g. "50.00%" or "0.0%"
}

// CountValue returns a count cell.
func CountValue(n int) Cell { return Cell{Kind: CountCell, Count: n} }

// DaysValue returns an average-age cell.
func DaysValue(d float64) Cell { return Cell{Kind: DaysCell, Days: d} }

// PercentValue returns a formatted percentage cell.
func PercentValue(s string) Cell { return Cell{Kind: PercentCell, Percent: s} }

// Format renders the cell. Day values are rounded to precision decimals and
// printed without trailing zeros.
func (c Cell) Format(precision int) string {
	switch c.Kind {
	case CountCell:
		return strconv.Itoa(c.Count)
	case DaysCell:
		return strconv.FormatFloat(RoundTo(c.Days, precision), 'f', -1, 64)
	case PercentCell:
		return c.Percent
	default:
		return ""
	}
}

// Number returns the numeric value of count and day cells.
func (c Cell) Number() (float64, bool) {
	switch c.Kind {
	case CountCell:
		return float64(c.Count), true
	case DaysCell:
		return c.Days, true
	default:
		return 0, false
	}
}

// RoundTo rounds v half away from zero to the given number of decimals.
func RoundTo(v float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	return math.Round(v*p) / p
}

// cellKey addresses a single cell.
type cellKey struct {
	row Metric
	col ColumnKey
}

// ReportTable is a fixed-shape table of metric rows by (category, priority) columns.
type ReportTable struct {
	Title  string
	Kind   ReportKind
	Period Period

	rows  []Metric
	cells map[cellKey]Cell
}

// NewReportTable creates a table with the given rows and the fixed columns.
// Count rows start at zero, age rows at zero days and percentage rows blank.
func NewReportTable(title string, rows []Metric) *ReportTable {
	t := &ReportTable{
		Title: title,
		rows:  slices.Clone(rows),
		cells: make(map[cellKey]Cell, len(rows)*len(reportColumns)),
	}
	for _, row := range t.rows {
		for _, col := range reportColumns {
			var c Cell
			switch {
			case row.IsPercent():
				c = Cell{Kind: BlankCell}
			case row.IsAge():
				c = DaysValue(0)
			default:
				c = CountValue(0)
			}
			t.cells[cellKey{row, col}] = c
		}
	}
	return t
}

// Set assigns a cell. It fails when the row or the column is not part of the table.
func (t *ReportTable) Set(row Metric, category Category, priority Priority, cell Cell) error {
	col := ColumnKey{Category: category, Priority: priority}
	if !IsValidColumn(col) {
		return fmt.Errorf("unknown report column %s", col)
	}
	if !t.HasRow(row) {
		return fmt.Errorf("unknown report row %q", row)
	}
	t.cells[cellKey{row, col}] = cell
	return nil
}

// Get returns a cell and whether it exists.
func (t *ReportTable) Get(row Metric, category Category, priority Priority) (Cell, bool) {
	c, ok := t.cells[cellKey{row, ColumnKey{Category: category, Priority: priority}}]
	return c, ok
}

// Count returns the count stored in a cell, or zero for any other kind of cell.
func (t *ReportTable) Count(row Metric, category Category, priority Priority) int {
	c, ok := t.Get(row, category, priority)
	if !ok || c.Kind != CountCell {
		return 0
	}
	return c.Count
}

// Days returns the day value stored in a cell, or zero for any other kind of cell.
func (t *ReportTable) Days(row Metric, category Category, priority Priority) float64 {
	c, ok := t.Get(row, category, priority)
	if !ok || c.Kind != DaysCell {
		return 0
	}
	return c.Days
}

// HasRow reports whether the row is part of the table.
func (t *ReportTable) HasRow(row Metric) bool {
	return slices.Contains(t.rows, row)
}

// DropRow removes a row and its cells. Dropping an absent row is a no-op.
func (t *ReportTable) DropRow(row Metric) {
	idx := slices.Index(t.rows, row)
	if idx < 0 {
		return
	}
	t.rows = slices.Delete(t.rows, idx, idx+1)
	for _, col := range reportColumns {
		delete(t.cells, cellKey{row, col})
	}
}

// Rows returns the rows in render order.
func (t *ReportTable) Rows() []Metric {
	return slices.Clone(t.rows)
}

// HeaderRows returns the two header rows: categories, then priorities.
func HeaderRows() [][]string {
	categories := []string{"Metrics"}
	priorities := []string{"Priority"}
	for _, col := range reportColumns {
		categories = append(categories, string(col.Category))
		priorities = append(priorities, string(col.Priority))
	}
	return [][]string{categories, priorities}
}

// Render returns the table as strings: two header rows, then one line per metric.
func (t *ReportTable) Render(precision int) [][]string {
	out := HeaderRows()
	for _, row := range t.rows {
		line := []string{string(row)}
		for _, col := range reportColumns {
			line = append(line, t.cells[cellKey{row, col}].Format(precision))
		}
		out = append(out, line)
	}
	return out
}

// Records flattens the table into one record per cell, in render order.
func (t *ReportTable) Records(precision int) []CellRecord {
	records := make([]CellRecord, 0, len(t.rows)*len(reportColumns))
	for _, row := range t.rows {
		for _, col := range reportColumns {
			c := t.cells[cellKey{row, col}]
			rec := CellRecord{
				Metric:   string(row),
				Category: string(col.Category),
				Priority: string(col.Priority),
				Kind:     c.Kind.String(),
				Value:    c.Format(precision),
			}
			if n, ok := c.Number(); ok {
				rec.Number = &n
			}
			records = append(records, rec)
		}
	}
	return records
}

// CellRecord is a single flattened cell, used by the JSON, Parquet and history layers.
type CellRecord struct {
	Metric   string   `json:"metric"`
	Category string   `json:"category"`
	Priority string   `json:"priority"`
	Kind     string   `json:"kind"`
	Value    string   `json:"value"`
	Number   *float64 `json:"number,omitempty"`
}

// ReportOutput is the JSON shape of a rendered report.
type ReportOutput struct {
	Title  string       `json:"title"`
	Kind   ReportKind   `json:"kind"`
	Period Period       `json:"period"`
	Header [][]string   `json:"header"`
	Rows   [][]string   `json:"rows"`
	Cells  []CellRecord `json:"cells"`
}

// Output converts the table into its JSON shape.
func (t *ReportTable) Output(precision int) ReportOutput {
	rendered := t.Render(precision)
	return ReportOutput{
		Title:  t.Title,
		Kind:   t.Kind,
		Period: t.Period,
		Header: rendered[:2],
		Rows:   rendered[2:],
		Cells:  t.Records(precision),
	}
}
