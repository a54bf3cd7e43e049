package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/schema"
)

// credentialsKey is the template key of the API credentials block.
const credentialsKey = "api_credentials"

// defectAgeKeys lists the defect-age query list keys in a stable order.
var defectAgeKeys = []string{
	schema.RegressionResolvedKey,
	schema.RegressionUnresolvedKey,
	schema.ExploratoryResolvedKey,
	schema.ExploratoryUnresolvedKey,
}

// LoadTemplateSet reads a query template file.
func LoadTemplateSet(path string) (*schema.TemplateSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read template %s: %w", path, err)
	}
	ts, err := ParseTemplateSet(data)
	if err != nil {
		return nil, fmt.Errorf("cannot parse template %s: %w", path, err)
	}
	ts.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ts, nil
}

// ParseTemplateSet decodes the JSON of a query template file.
// Unknown top-level keys are ignored.
func ParseTemplateSet(data []byte) (*schema.TemplateSet, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	ts := &schema.TemplateSet{
		Categories: make(map[schema.Category]map[schema.Metric]string),
		DefectAge:  make(map[string][]string),
	}
	for _, cat := range schema.Categories {
		msg, ok := raw[string(cat)]
		if !ok {
			continue
		}
		var queries map[schema.Metric]string
		if err := json.Unmarshal(msg, &queries); err != nil {
			return nil, fmt.Errorf("section %s: %w", cat, err)
		}
		ts.Categories[cat] = queries
	}
	for _, key := range defectAgeKeys {
		msg, ok := raw[key]
		if !ok {
			continue
		}
		var queries []string
		if err := json.Unmarshal(msg, &queries); err != nil {
			return nil, fmt.Errorf("section %s: %w", key, err)
		}
		ts.DefectAge[key] = queries
	}
	if msg, ok := raw[credentialsKey]; ok {
		var creds schema.APICredentials
		if err := json.Unmarshal(msg, &creds); err != nil {
			return nil, fmt.Errorf("section %s: %w", credentialsKey, err)
		}
		ts.Credentials = &creds
	}
	return ts, nil
}

// ValidateQMR checks that both categories define every sub-query.
func ValidateQMR(ts *schema.TemplateSet) error {
	var missing []string
	for _, cat := range schema.Categories {
		for _, name := range schema.QMRSubQueries {
			if q, ok := ts.Query(cat, name); !ok || strings.TrimSpace(q) == "" {
				missing = append(missing, string(cat)+"."+string(name))
			}
		}
	}
	if len(missing) > 0 {
		return &contract.ValidationError{Template: ts.Name, Missing: missing}
	}
	return nil
}

// ValidateDefectAge checks that every defect-age list holds one query per priority.
func ValidateDefectAge(ts *schema.TemplateSet) error {
	var missing []string
	for _, key := range defectAgeKeys {
		queries := ts.DefectAge[key]
		if len(queries) < len(schema.Priorities) {
			missing = append(missing, fmt.Sprintf("%s (%d of %d queries)", key, len(queries), len(schema.Priorities)))
		}
	}
	if len(missing) > 0 {
		return &contract.ValidationError{Template: ts.Name, Missing: missing}
	}
	return nil
}

// Credentials is the resolved login for a run.
type Credentials struct {
	Username  string
	Password  string
	SearchURL string
}

// ResolveCredentials merges the template credentials with the configured overrides.
// Configured values win; every field must end up non-empty.
func ResolveCredentials(cfg *contract.Config, ts *schema.TemplateSet) (Credentials, error) {
	var creds Credentials
	if ts.Credentials != nil {
		creds = Credentials{
			Username:  ts.Credentials.Username,
			Password:  ts.Credentials.Password,
			SearchURL: ts.Credentials.URL,
		}
	}
	if cfg.Username != "" {
		creds.Username = cfg.Username
	}
	if cfg.Password != "" {
		creds.Password = cfg.Password
	}
	if cfg.SearchURL != "" {
		creds.SearchURL = cfg.SearchURL
	}

	var missing []string
	if creds.Username == "" {
		missing = append(missing, credentialsKey+".api_username")
	}
	if creds.Password == "" {
		missing = append(missing, credentialsKey+".api_password")
	}
	if creds.SearchURL == "" {
		missing = append(missing, credentialsKey+".api_url")
	}
	if len(missing) > 0 {
		return Credentials{}, &contract.ValidationError{Template: ts.Name, Missing: missing}
	}
	return creds, nil
}

// ListTemplates returns the selectable template names: the configured ones
// plus every *.json file in dir, sorted and without duplicates.
func ListTemplates(templates map[string]string, dir string) []string {
	var names []string
	for name := range templates {
		names = append(names, name)
	}
	if entries, err := os.ReadDir(dir); err == nil {
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
				continue
			}
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}
