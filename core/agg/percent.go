package agg

import (
	"fmt"

	"github.com/jirametrics/jirametrics/schema"
)

// ZeroPercent is rendered whenever a percentage has no meaningful denominator.
const ZeroPercent = "0.0%"

// FormatPercent renders num/den as a percentage with two decimals.
// A zero denominator renders ZeroPercent.
func FormatPercent(num, den int) string {
	if den == 0 {
		return ZeroPercent
	}
	return fmt.Sprintf("%.2f%%", float64(num)/float64(den)*100)
}

// ResolutionPercent renders resolved/raised. Nothing raised or nothing resolved
// renders ZeroPercent.
func ResolutionPercent(resolved, raised int) string {
	if resolved == 0 {
		return ZeroPercent
	}
	return FormatPercent(resolved, raised)
}

// percentRule derives one percentage row from two count rows.
type percentRule struct {
	row    schema.Metric
	num    schema.Metric
	den    schema.Metric
	format func(num, den int) string
}

var percentRules = []percentRule{
	{schema.NoisePercent, schema.Noise, schema.Resolved, FormatPercent},
	{schema.FixedPercent, schema.Fixed, schema.Resolved, FormatPercent},
	{schema.GerritPercent, schema.GerritFix, schema.Resolved, FormatPercent},
	{schema.ResolutionPercent, schema.Resolved, schema.BugsRaised, ResolutionPercent},
}

// ApplyPercentages fills the percentage rows of the six category columns from
// the count rows of the same column.
func ApplyPercentages(t *schema.ReportTable) error {
	for _, col := range schema.CategoryColumns() {
		if err := applyColumnPercentages(t, col); err != nil {
			return err
		}
	}
	return nil
}

// ApplyOverallPercentages fills the percentage rows of the Overall column from
// the Overall counts.
func ApplyOverallPercentages(t *schema.ReportTable) error {
	return applyColumnPercentages(t, schema.OverallColumn)
}

func applyColumnPercentages(t *schema.ReportTable, col schema.ColumnKey) error {
	for _, rule := range percentRules {
		if !t.HasRow(rule.row) {
			continue
		}
		num := t.Count(rule.num, col.Category, col.Priority)
		den := t.Count(rule.den, col.Category, col.Priority)
		if err := t.Set(rule.row, col.Category, col.Priority, schema.PercentValue(rule.format(num, den))); err != nil {
			return err
		}
	}
	return nil
}
