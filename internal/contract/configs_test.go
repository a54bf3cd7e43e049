package contract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jirametrics/jirametrics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns the raw input the CLI produces with all defaults applied.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		TemplateFile:   "templates/qmr.json",
		Start:          "2024-01-15",
		End:            "2024-03-10",
		Split:          "month",
		Output:         "xlsx",
		Combine:        true,
		AuthURL:        "https://auth.example.com/token",
		MaxResults:     DefaultMaxResults,
		CacheBackend:   "none",
		HistoryBackend: "none",
		Precision:      2,
		Color:          "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{name: "valid defaults", mutate: func(*ConfigRawInput) {}},
		{name: "invalid output", mutate: func(in *ConfigRawInput) { in.Output = "pdf" }, expectError: true},
		{name: "invalid split", mutate: func(in *ConfigRawInput) { in.Split = "week" }, expectError: true},
		{name: "precision too high", mutate: func(in *ConfigRawInput) { in.Precision = 3 }, expectError: true},
		{name: "precision zero", mutate: func(in *ConfigRawInput) { in.Precision = 0 }, expectError: true},
		{name: "invalid color", mutate: func(in *ConfigRawInput) { in.Color = "maybe" }, expectError: true},
		{name: "max results zero", mutate: func(in *ConfigRawInput) { in.MaxResults = 0 }, expectError: true},
		{name: "max results over cap", mutate: func(in *ConfigRawInput) { in.MaxResults = DefaultMaxResults + 1 }, expectError: true},
		{name: "bad timeout", mutate: func(in *ConfigRawInput) { in.Timeout = "soon" }, expectError: true},
		{name: "human timeout", mutate: func(in *ConfigRawInput) { in.Timeout = "45 seconds" }},
		{name: "auth url without scheme", mutate: func(in *ConfigRawInput) { in.AuthURL = "auth.example.com" }, expectError: true},
		{name: "search url without scheme", mutate: func(in *ConfigRawInput) { in.SearchURL = "ftp://x" }, expectError: true},
		{name: "start after end", mutate: func(in *ConfigRawInput) { in.Start, in.End = "2024-05-01", "2024-04-01" }, expectError: true},
		{name: "bad start", mutate: func(in *ConfigRawInput) { in.Start = "01/15/2024" }, expectError: true},
		{name: "invalid cache backend", mutate: func(in *ConfigRawInput) { in.CacheBackend = "redis" }, expectError: true},
		{name: "invalid history backend", mutate: func(in *ConfigRawInput) { in.HistoryBackend = "mongo" }, expectError: true},
		{name: "mysql without connect", mutate: func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, expectError: true},
		{name: "bad cache ttl", mutate: func(in *ConfigRawInput) { in.CacheTTL = "forever" }, expectError: true},
		{
			name: "same sqlite file",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend, in.HistoryBackend = "sqlite", "sqlite"
				in.CacheDBConnect, in.HistoryDBConnect = "/tmp/one.db", "/tmp/one.db"
			},
			expectError: true,
		},
		{
			name: "different sqlite files",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend, in.HistoryBackend = "sqlite", "sqlite"
				in.CacheDBConnect, in.HistoryDBConnect = "/tmp/one.db", "/tmp/two.db"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := processAndValidateAt(cfg, input, fixedNow)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.OutputDir = "out"
	require.NoError(t, processAndValidateAt(cfg, input, fixedNow))

	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), cfg.StartTime)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), cfg.EndTime)
	assert.Equal(t, schema.MonthlySplit, cfg.Split)
	assert.Equal(t, schema.XLSXOut, cfg.Output)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, DefaultAuthService, cfg.AuthService)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, filepath.Join("out", "reports"), cfg.ReportDir)
	assert.Equal(t, filepath.Join("out", "defect"), cfg.DefectDir)
	assert.Equal(t, "qmr", cfg.TemplateName)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.NeedsPrompt())
	assert.NoError(t, ValidateReportInputs(cfg))
}

func TestProcessTimeRangeEndDefaultsToToday(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.End = ""
	require.NoError(t, processAndValidateAt(cfg, input, fixedNow))
	assert.Equal(t, time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC), cfg.EndTime)
}

func TestMissingReportInputs(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.TemplateFile = ""
	input.Start = ""
	input.End = ""
	require.NoError(t, processAndValidateAt(cfg, input, fixedNow))

	assert.True(t, cfg.NeedsPrompt())
	assert.Error(t, ValidateReportInputs(cfg))
}

func TestResolveTemplatePath(t *testing.T) {
	templates := map[string]string{
		"option1": "/etc/jirametrics/qmr.json",
	}

	tests := []struct {
		name     string
		template string
		expected string
	}{
		{"configured name", "option1", "/etc/jirametrics/qmr.json"},
		{"configured name case-insensitive", "Option1", "/etc/jirametrics/qmr.json"},
		{"plain name", "defects", filepath.Join("templates", "defects.json")},
		{"name with extension", "defects.json", filepath.Join("templates", "defects.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveTemplatePath(tt.template, templates, "templates"))
		})
	}
}

func TestNamedTemplateResolution(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.TemplateFile = ""
	input.Template = "Option2"
	input.Templates = map[string]string{"option2": "q/defect.json"}
	require.NoError(t, processAndValidateAt(cfg, input, fixedNow))

	assert.Equal(t, "Option2", cfg.TemplateName)
	assert.Equal(t, "q/defect.json", cfg.TemplateFile)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name      string
		backend   schema.DatabaseBackend
		connStr   string
		expectErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/jirametrics", false},
		{"mysql missing tcp", schema.MySQLBackend, "user:pass@localhost/jirametrics", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"mysql bad option", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/jirametrics?parseTime=maybe", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=jirametrics", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=jirametrics", true},
		{"postgres bad port", schema.PostgreSQLBackend, "host=localhost port=notaport dbname=jirametrics", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	original := &Config{
		TemplateName: "qmr",
		Templates:    map[string]string{"a": "a.json"},
		StartTime:    fixedNow,
	}
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	clone := original.Clone()
	clone.StartTime = start
	clone.Templates["b"] = "b.json"

	assert.Equal(t, start, clone.StartTime)
	assert.Equal(t, "qmr", clone.TemplateName)
	assert.Equal(t, fixedNow, original.StartTime)
	assert.Len(t, original.Templates, 1)
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "run"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run", profile.Prefix)
}
