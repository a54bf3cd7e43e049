// Package cmd defines the command-line interface for jirametrics.
package cmd

import (
	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(defectAgeCmd)
	rootCmd.AddCommand(combineCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("template", "t", "", "Named query template (config 'templates' entry or <templates-dir>/<name>.json)")
	rootCmd.PersistentFlags().String("template-file", "", "Path to a query template file")
	rootCmd.PersistentFlags().String("templates-dir", contract.DefaultTemplatesDir, "Directory holding named query templates")
	rootCmd.PersistentFlags().String("start", "", "Start date as YYYY-MM-DD, RFC3339 or time ago")
	rootCmd.PersistentFlags().String("end", "", "End date as YYYY-MM-DD, RFC3339 or time ago (defaults to today)")
	rootCmd.PersistentFlags().String("split", string(schema.MonthlySplit), "Period split: month or none")
	rootCmd.PersistentFlags().String("output", string(schema.XLSXOut), "Output format: xlsx or csv or json or parquet or text")
	rootCmd.PersistentFlags().String("output-dir", ".", "Directory that receives the reports and defect folders")
	rootCmd.PersistentFlags().Bool("combine", true, "Write a combined file after a multi-period run")
	rootCmd.PersistentFlags().String("auth-url", "", "Authentication endpoint that issues bearer tokens")
	rootCmd.PersistentFlags().String("auth-service", contract.DefaultAuthService, "Service name sent to the authentication endpoint")
	rootCmd.PersistentFlags().String("username", "", "Username (overrides the template credentials)")
	rootCmd.PersistentFlags().String("password", "", "Password (overrides the template credentials, prefer JIRAMETRICS_PASSWORD)")
	rootCmd.PersistentFlags().String("search-url", "", "Search endpoint (overrides the template api_url)")
	rootCmd.PersistentFlags().Int("max-results", contract.DefaultMaxResults, "Maximum number of issues per query")
	rootCmd.PersistentFlags().String("timeout", "30s", "HTTP timeout per request")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Search cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL, "How long cached search responses stay valid")
	rootCmd.PersistentFlags().String("history-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for percentages and ages (1 or 2)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug, info, warning, error")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of combineCmd to Viper
	combineCmd.Flags().String("dir", "", "Directory of xlsx reports to combine (defaults to <output-dir>/reports)")
	if err := viper.BindPFlags(combineCmd.Flags()); err != nil {
		contract.LogFatal("Error binding combine flags", err)
	}

	// Bind all flags of historyExportCmd to Viper
	historyExportCmd.Flags().String("output-file", "", "Prefix of the exported Parquet files")
	if err := viper.BindPFlags(historyExportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history export flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
