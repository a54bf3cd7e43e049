package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and run history.
	DatabaseBackend string

	// Priority represents a priority bucket of an issue.
	Priority string

	// Category represents a query category (a top-level column group).
	Category string

	// Metric represents a row of a report table.
	Metric string

	// ReportKind represents the kind of report being generated.
	ReportKind string

	// SplitMode represents how a date range is split into reporting periods.
	SplitMode string
)

// All output modes supported.
const (
	XLSXOut    OutputMode = "xlsx" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	TextOut    OutputMode = "text"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Priority buckets. Others is the catch-all for every priority that is
// neither Blocker nor Critical.
const (
	Blocker    Priority = "Blocker"
	Critical   Priority = "Critical"
	Others     Priority = "Others"
	NoPriority Priority = "" // only used by the Overall column
)

// Column categories.
const (
	Regression  Category = "Regression"
	Exploratory Category = "Exploratory"
	Overall     Category = "Overall"
)

// Count rows of the QMR report. Resolution is an intermediate row that is
// dropped before rendering.
const (
	BugsRaised Metric = "BugsRaised"
	Resolved   Metric = "Resolved"
	Noise      Metric = "Noise"
	GerritFix  Metric = "GerritFix"
	Fixed      Metric = "Fixed"
	Resolution Metric = "Resolution"
)

// Percentage rows of the QMR report.
const (
	NoisePercent      Metric = "Noise%"
	FixedPercent      Metric = "Fixed%"
	GerritPercent     Metric = "Gerrit%"
	ResolutionPercent Metric = "Resolution%"
)

// Age rows of the defect-age report.
const (
	ResolvedDefect   Metric = "Resolved-Defect"
	UnresolvedDefect Metric = "Unresolved-Defect"
)

// All report kinds supported.
const (
	QMRReport       ReportKind = "qmr"
	DefectAgeReport ReportKind = "defect-age"
)

// All split modes supported.
const (
	MonthlySplit SplitMode = "month" // default
	NoSplit      SplitMode = "none"
)

// CombinedReportName is the base name of the combined report file.
const CombinedReportName = "combined_report"

// Placeholders substituted into query templates.
const (
	StartDatePlaceholder = "{{start_date}}"
	EndDatePlaceholder   = "{{end_date}}"
)

// ValidOutputModes contains all valid output modes.
var ValidOutputModes = map[OutputMode]bool{
	XLSXOut:    true,
	CSVOut:     true,
	JSONOut:    true,
	ParquetOut: true,
	TextOut:    true,
}

// ValidDatabaseBackends contains all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]bool{
	SQLiteBackend:     true,
	MySQLBackend:      true,
	PostgreSQLBackend: true,
	NoneBackend:       true,
}

// ValidSplitModes contains all valid split modes.
var ValidSplitModes = map[SplitMode]bool{
	MonthlySplit: true,
	NoSplit:      true,
}

// Priorities lists the priority buckets in column order.
var Priorities = []Priority{Blocker, Critical, Others}

// Categories lists the query categories in column order, excluding Overall.
var Categories = []Category{Regression, Exploratory}

// QMRSubQueries lists the sub-queries every QMR category must define, in fetch order.
var QMRSubQueries = []Metric{BugsRaised, Resolved, Fixed, GerritFix, Noise, Resolution}

// QMRRows lists the rows of a QMR table in render order.
var QMRRows = []Metric{
	BugsRaised, Resolved, Noise, GerritFix, Fixed,
	NoisePercent, FixedPercent, GerritPercent, ResolutionPercent,
	Resolution,
}

// DefectAgeRows lists the rows of a defect-age table in render order.
var DefectAgeRows = []Metric{ResolvedDefect, UnresolvedDefect}

// IsPercent reports whether the metric is rendered as a percentage.
func (m Metric) IsPercent() bool {
	switch m {
	case NoisePercent, FixedPercent, GerritPercent, ResolutionPercent:
		return true
	default:
		return false
	}
}

// IsAge reports whether the metric holds an average age in days.
func (m Metric) IsAge() bool {
	return m == ResolvedDefect || m == UnresolvedDefect
}

// FileExtension returns the file extension used for the output mode.
func (o OutputMode) FileExtension() string {
	if o == TextOut {
		return ".txt"
	}
	return "." + string(o)
}
