package cmd

import (
	"context"

	"github.com/jirametrics/jirametrics/core"
	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/spf13/cobra"
)

// defectAgeCmd generates the defect age report.
var defectAgeCmd = &cobra.Command{
	Use:   "defect-age",
	Short: "Generate the defect age report for each month in the date range.",
	Long: `Compute the average age in days of resolved and unresolved defects for
each category and priority.

Resolved defects age from creation to resolution, unresolved defects from
creation to now. The Overall column averages the six category cells.

One file per period is written to <output-dir>/defect, e.g.
defect_age_January_2024.xlsx.

Like the report command, the date range is split into calendar months by
default and every query runs once per month. Pass --split none to run each
query once over the whole range; the single file is then named after the
range, e.g. defect_age_2024-01-01_2024-03-31.xlsx.

Examples:
  # Defect ages for last year, one table per month
  jirametrics defect-age --template Option2 --start 2023-01-01 --end 2023-12-31

  # One table for the last 90 days
  jirametrics defect-age --template Option2 --start "90 days ago" --split none`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := executeReport(rootCtx, cfg, func(ctx context.Context, g *core.Generator, ts *schema.TemplateSet) (*core.RunResult, error) {
			return g.RunDefectAge(ctx, ts)
		})
		if err != nil {
			contract.LogFatal("Cannot generate defect age report", err)
		}
		printRunSummary(result)
	},
}
