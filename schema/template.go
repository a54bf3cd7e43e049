package schema

import (
	"maps"
	"slices"
	"strings"
)

// APICredentials is the credentials block of a query template file.
type APICredentials struct {
	Username string `json:"api_username"`
	Password string `json:"api_password"`
	URL      string `json:"api_url"`
}

// Keys of the defect-age query lists in a template file.
const (
	RegressionResolvedKey    = "regression_resolved_queries"
	RegressionUnresolvedKey  = "regression_unresolved_queries"
	ExploratoryResolvedKey   = "exploratory_resolved_queries"
	ExploratoryUnresolvedKey = "exploratory_unresolved_queries"
)

// DefectAgeKey returns the template key holding the queries for a category and mode.
func DefectAgeKey(category Category, resolved bool) string {
	switch {
	case category == Regression && resolved:
		return RegressionResolvedKey
	case category == Regression:
		return RegressionUnresolvedKey
	case resolved:
		return ExploratoryResolvedKey
	default:
		return ExploratoryUnresolvedKey
	}
}

// TemplateSet is a loaded query template file.
//
// Categories maps a category to its named sub-queries (QMR report).
// DefectAge maps a list key to three queries ordered Blocker, Critical, Others.
type TemplateSet struct {
	Name        string
	Categories  map[Category]map[Metric]string
	DefectAge   map[string][]string
	Credentials *APICredentials
}

// Query returns the sub-query of a category, if present.
func (ts *TemplateSet) Query(category Category, name Metric) (string, bool) {
	queries, ok := ts.Categories[category]
	if !ok {
		return "", false
	}
	q, ok := queries[name]
	return q, ok
}

// DefectAgeQuery returns the defect-age query of a category, mode and priority, if present.
func (ts *TemplateSet) DefectAgeQuery(category Category, resolved bool, priority Priority) (string, bool) {
	queries, ok := ts.DefectAge[DefectAgeKey(category, resolved)]
	if !ok {
		return "", false
	}
	idx := slices.Index(Priorities, priority)
	if idx < 0 || idx >= len(queries) {
		return "", false
	}
	return queries[idx], true
}

// Substitute returns a copy of the set with the date placeholders replaced.
// The receiver is left untouched.
func (ts *TemplateSet) Substitute(startDate, endDate string) *TemplateSet {
	r := strings.NewReplacer(StartDatePlaceholder, startDate, EndDatePlaceholder, endDate)

	out := &TemplateSet{
		Name:       ts.Name,
		Categories: make(map[Category]map[Metric]string, len(ts.Categories)),
		DefectAge:  make(map[string][]string, len(ts.DefectAge)),
	}
	for cat, queries := range ts.Categories {
		replaced := make(map[Metric]string, len(queries))
		for name, q := range queries {
			replaced[name] = r.Replace(q)
		}
		out.Categories[cat] = replaced
	}
	for key, queries := range ts.DefectAge {
		replaced := make([]string, len(queries))
		for i, q := range queries {
			replaced[i] = r.Replace(q)
		}
		out.DefectAge[key] = replaced
	}
	if ts.Credentials != nil {
		creds := *ts.Credentials
		out.Credentials = &creds
	}
	return out
}

// AllQueries returns every query string of the set, sorted.
func (ts *TemplateSet) AllQueries() []string {
	var all []string
	for _, queries := range ts.Categories {
		all = slices.AppendSeq(all, maps.Values(queries))
	}
	for _, queries := range ts.DefectAge {
		all = append(all, queries...)
	}
	slices.Sort(all)
	return all
}
