package agg

import "github.com/jirametrics/jirametrics/schema"

// overallAgePrecision is the number of decimals kept for Overall age values.
const overallAgePrecision = 2

// SetCounts stores the bucket counts of one category in a count row.
func SetCounts(t *schema.ReportTable, row schema.Metric, category schema.Category, issues []schema.Issue) error {
	counts := CountBuckets(issues)
	for _, p := range schema.Priorities {
		if err := t.Set(row, category, p, schema.CountValue(counts[p])); err != nil {
			return err
		}
	}
	return nil
}

// RollupCounts sets the Overall cell of a count row to the sum of the six category cells.
func RollupCounts(t *schema.ReportTable, row schema.Metric) error {
	sum := 0
	for _, col := range schema.CategoryColumns() {
		sum += t.Count(row, col.Category, col.Priority)
	}
	return t.Set(row, schema.Overall, schema.NoPriority, schema.CountValue(sum))
}

// RollupAges sets the Overall cell of an age row to the mean of the six category
// cells, rounded to two decimals.
func RollupAges(t *schema.ReportTable, row schema.Metric) error {
	cols := schema.CategoryColumns()
	sum := 0.0
	for _, col := range cols {
		sum += t.Days(row, col.Category, col.Priority)
	}
	avg := schema.RoundTo(sum/float64(len(cols)), overallAgePrecision)
	return t.Set(row, schema.Overall, schema.NoPriority, schema.DaysValue(avg))
}
