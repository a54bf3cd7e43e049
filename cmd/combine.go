package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// combineCmd merges existing xlsx reports into one workbook.
var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Combine every xlsx report in a directory into one workbook.",
	Long: `Concatenate the xlsx reports already present in a directory into
combined_report.xlsx, oldest period first.

The combined file itself, Office lock files and subdirectories are skipped.
Use this after several separate report runs over the same directory.

Examples:
  # Combine <output-dir>/reports
  jirametrics combine

  # Combine a specific directory
  jirametrics combine --dir ./archive/2024`,
	Args: cobra.NoArgs,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return loadConfigFile()
	},
	Run: func(_ *cobra.Command, _ []string) {
		dir := viper.GetString("dir")
		if dir == "" {
			dir = filepath.Join(viper.GetString("output-dir"), contract.DefaultReportDir)
		}
		path, n, err := outwriter.CombineDirectory(dir)
		if err != nil {
			contract.LogFatal("Cannot combine reports", err)
		}
		_, _ = fmt.Fprintf(os.Stderr, "📎 Combined %d reports into %s\n", n, path)
	},
}
