package cmd

import (
	"context"

	"github.com/jirametrics/jirametrics/core"
	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/spf13/cobra"
)

// reportCmd generates the quality metrics report.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the QMR report for each month in the date range.",
	Long: `Run the Regression and Exploratory queries of a template and build the
quality metrics report (QMR) for every period in the date range.

Each table counts, per priority (Blocker, Critical, Others) and category:
- Bugs raised, resolved and fixed
- Gerrit fixes and noise
- Resolution and noise percentages, with an Overall column

One file per period is written to <output-dir>/reports, e.g.
report_January_2024.xlsx, followed by combined_report.xlsx when more than
one period was generated. Failed queries count as empty; only authentication
failures stop the run.

Examples:
  # Monthly reports for the first quarter
  jirametrics report --template Option1 --start 2024-01-01 --end 2024-03-31

  # One report for the whole range, as CSV
  jirametrics report --template-file q.json --start "3 months ago" --split none --output csv

  # Prompt for the missing template and dates
  jirametrics report`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		result, err := executeReport(rootCtx, cfg, func(ctx context.Context, g *core.Generator, ts *schema.TemplateSet) (*core.RunResult, error) {
			return g.RunQMR(ctx, ts)
		})
		if err != nil {
			contract.LogFatal("Cannot generate QMR report", err)
		}
		printRunSummary(result)
	},
}
