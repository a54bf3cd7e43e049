package contract

import (
	"fmt"
	"maps"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jirametrics/jirametrics/schema"
)

// Default values for configuration.
const (
	DefaultPrecision    = 2
	DefaultMaxResults   = 10000
	DefaultTimeout      = 30 * time.Second
	DefaultCacheTTL     = "1 hour"
	DefaultTemplatesDir = "templates"
	DefaultReportDir    = "reports"
	DefaultDefectDir    = "defect"
	DefaultAuthService  = "jira"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for report generation.
// This struct remains the "final, validated" config.
type Config struct {
	TemplateName string
	TemplateFile string // Resolved path of the query template file
	TemplatesDir string
	Templates    map[string]string // Named templates from the config file

	StartTime time.Time
	EndTime   time.Time
	Split     schema.SplitMode

	Output    schema.OutputMode
	OutputDir string
	ReportDir string
	DefectDir string
	Combine   bool

	AuthURL     string
	AuthService string
	Username    string // Overrides the template credentials when set
	Password    string // Please use env var as this is plaintext
	SearchURL   string // Overrides the template api_url when set
	MaxResults  int
	Timeout     time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	Precision int
	UseColors bool
	Width     int // Terminal width override (0 = auto-detect)
	LogLevel  string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Template         string `mapstructure:"template"`
	TemplateFile     string `mapstructure:"template-file"`
	TemplatesDir     string `mapstructure:"templates-dir"`
	Start            string `mapstructure:"start"`
	End              string `mapstructure:"end"`
	Split            string `mapstructure:"split"`
	Output           string `mapstructure:"output"`
	OutputDir        string `mapstructure:"output-dir"`
	Combine          bool   `mapstructure:"combine"`
	AuthURL          string `mapstructure:"auth-url"`
	AuthService      string `mapstructure:"auth-service"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	SearchURL        string `mapstructure:"search-url"`
	MaxResults       int    `mapstructure:"max-results"`
	Timeout          string `mapstructure:"timeout"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	CacheTTL         string `mapstructure:"cache-ttl"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Precision        int    `mapstructure:"precision"`
	Color            string `mapstructure:"color"`
	Width            int    `mapstructure:"width"`
	LogLevel         string `mapstructure:"log-level"`

	// --- Named templates from config file ---
	Templates map[string]string `mapstructure:"templates"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Templates != nil {
		clone.Templates = make(map[string]string, len(c.Templates))
		maps.Copy(clone.Templates, c.Templates)
	}
	return &clone
}

// NeedsPrompt reports whether template or date range inputs are still missing.
func (c *Config) NeedsPrompt() bool {
	return c.TemplateFile == "" || c.StartTime.IsZero() || c.EndTime.IsZero()
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	return processAndValidateAt(cfg, input, time.Now())
}

func processAndValidateAt(cfg *Config, input *ConfigRawInput, now time.Time) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processConnection(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input, now); err != nil {
		return err
	}
	return resolveTemplate(cfg, input)
}

// ValidateReportInputs checks the inputs that only report generation needs.
func ValidateReportInputs(cfg *Config) error {
	if cfg.TemplateFile == "" {
		return fmt.Errorf("no query template selected. Use --template or --template-file")
	}
	if cfg.StartTime.IsZero() {
		return fmt.Errorf("no start date given. Use --start")
	}
	if cfg.EndTime.IsZero() {
		return fmt.Errorf("no end date given. Use --end")
	}
	if cfg.AuthURL == "" {
		return fmt.Errorf("no authentication endpoint configured. Use --auth-url")
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
		if _, err := mysql.ParseDSN(connStr); err != nil {
			return fmt.Errorf("invalid MySQL connection string: %w", err)
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
		if _, err := pgx.ParseConfig(connStr); err != nil {
			return fmt.Errorf("invalid PostgreSQL connection string: %w", err)
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// validateSimpleInputs processes and validates the output and display fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Combine = input.Combine
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be xlsx, csv, json, parquet, text", input.Output)
	}

	cfg.Split = schema.SplitMode(strings.ToLower(input.Split))
	if _, ok := schema.ValidSplitModes[cfg.Split]; !ok {
		return fmt.Errorf("invalid split mode '%s'. must be month, none", input.Split)
	}

	cfg.OutputDir = input.OutputDir
	cfg.ReportDir = filepath.Join(cfg.OutputDir, DefaultReportDir)
	cfg.DefectDir = filepath.Join(cfg.OutputDir, DefaultDefectDir)
	return nil
}

// processConnection handles the endpoint, credential and HTTP settings.
func processConnection(cfg *Config, input *ConfigRawInput) error {
	cfg.AuthURL = strings.TrimSpace(input.AuthURL)
	cfg.AuthService = strings.TrimSpace(input.AuthService)
	if cfg.AuthService == "" {
		cfg.AuthService = DefaultAuthService
	}
	cfg.Username = input.Username
	cfg.Password = input.Password
	cfg.SearchURL = strings.TrimSpace(input.SearchURL)

	for name, u := range map[string]string{"auth-url": cfg.AuthURL, "search-url": cfg.SearchURL} {
		if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("--%s must be an http or https URL (received %q)", name, u)
		}
	}

	if input.MaxResults <= 0 || input.MaxResults > DefaultMaxResults {
		return fmt.Errorf("max-results must be greater than 0 and cannot exceed %d (received %d)", DefaultMaxResults, input.MaxResults)
	}
	cfg.MaxResults = input.MaxResults

	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		timeout, err := ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	ttl := input.CacheTTL
	if ttl == "" {
		ttl = DefaultCacheTTL
	}
	parsed, err := ParseDuration(ttl)
	if err != nil {
		return fmt.Errorf("invalid cache-ttl: %w", err)
	}
	cfg.CacheTTL = parsed

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		cfg.HistoryBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// Cache and history must not share one SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// processTimeRange parses the optional start and end dates.
// A missing end defaults to today when a start is given.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.StartTime = time.Time{}
	cfg.EndTime = time.Time{}

	if input.Start != "" {
		t, err := ParseDateInput(input.Start, now)
		if err != nil {
			return fmt.Errorf("invalid start date: %w", err)
		}
		cfg.StartTime = t
	}

	if input.End != "" {
		t, err := ParseDateInput(input.End, now)
		if err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		cfg.EndTime = t
	} else if !cfg.StartTime.IsZero() {
		cfg.EndTime = TruncateDay(now)
	}

	if !cfg.StartTime.IsZero() && !cfg.EndTime.IsZero() && cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start date (%s) cannot be after end date (%s)",
			cfg.StartTime.Format(time.DateOnly), cfg.EndTime.Format(time.DateOnly))
	}
	return nil
}

// resolveTemplate picks the query template file: an explicit path wins, then a
// named template from the config file, then <templates-dir>/<name>.json.
func resolveTemplate(cfg *Config, input *ConfigRawInput) error {
	cfg.TemplatesDir = input.TemplatesDir
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = DefaultTemplatesDir
	}
	cfg.Templates = make(map[string]string, len(input.Templates))
	maps.Copy(cfg.Templates, input.Templates)

	cfg.TemplateName = strings.TrimSpace(input.Template)
	cfg.TemplateFile = strings.TrimSpace(input.TemplateFile)
	if cfg.TemplateFile != "" {
		if cfg.TemplateName == "" {
			cfg.TemplateName = strings.TrimSuffix(filepath.Base(cfg.TemplateFile), filepath.Ext(cfg.TemplateFile))
		}
		return nil
	}
	if cfg.TemplateName == "" {
		return nil
	}
	cfg.TemplateFile = ResolveTemplatePath(cfg.TemplateName, cfg.Templates, cfg.TemplatesDir)
	return nil
}

// ResolveTemplatePath maps a template name onto a file path.
func ResolveTemplatePath(name string, templates map[string]string, dir string) string {
	if path, ok := templates[name]; ok {
		return path
	}
	// Viper lowercases map keys read from config files
	if path, ok := templates[strings.ToLower(name)]; ok {
		return path
	}
	if strings.HasSuffix(name, ".json") {
		return filepath.Join(dir, name)
	}
	return filepath.Join(dir, name+".json")
}
