// Package core has core logic for building and writing report tables.
package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/sirupsen/logrus"
)

// RunResult summarizes one report run.
type RunResult struct {
	Kind     schema.ReportKind
	Tables   []*schema.ReportTable
	Files    []string
	Combined string          // Empty when no combined file was written
	Skipped  []schema.Period // Periods left out because of template errors
}

// Generator drives report generation: one table per period, written through a sink.
type Generator struct {
	cfg      *contract.Config
	searcher contract.IssueSearcher
	sink     contract.ReportSink
	history  contract.HistoryStore
	now      func() time.Time
	log      *logrus.Entry
}

// Option customizes a Generator.
type Option func(*Generator)

// WithHistory records every run in the given store. A nil store disables tracking.
func WithHistory(store contract.HistoryStore) Option {
	return func(g *Generator) { g.history = store }
}

// WithClock replaces the wall clock used for unresolved ages and run tracking.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a generator for the given configuration.
func NewGenerator(cfg *contract.Config, searcher contract.IssueSearcher, sink contract.ReportSink, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		searcher: searcher,
		sink:     sink,
		now:      time.Now,
		log:      logrus.WithField("component", "generator"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// tableBuilder builds the table of one report kind for one period.
type tableBuilder func(ctx context.Context, ts *schema.TemplateSet, period schema.Period) (*schema.ReportTable, error)

// reportDef describes how a report kind is built and where it is written.
type reportDef struct {
	kind     schema.ReportKind
	prefix   string
	dir      string
	validate func(*schema.TemplateSet) error
	build    tableBuilder
}

// RunQMR generates the QMR report for every configured period.
func (g *Generator) RunQMR(ctx context.Context, ts *schema.TemplateSet) (*RunResult, error) {
	return g.run(ctx, ts, reportDef{
		kind:     schema.QMRReport,
		prefix:   "report",
		dir:      g.cfg.ReportDir,
		validate: ValidateQMR,
		build:    g.BuildQMRTable,
	})
}

// RunDefectAge generates the defect-age report for every configured period.
func (g *Generator) RunDefectAge(ctx context.Context, ts *schema.TemplateSet) (*RunResult, error) {
	return g.run(ctx, ts, reportDef{
		kind:     schema.DefectAgeReport,
		prefix:   "defect_age",
		dir:      g.cfg.DefectDir,
		validate: ValidateDefectAge,
		build:    g.BuildDefectAgeTable,
	})
}

func (g *Generator) run(ctx context.Context, ts *schema.TemplateSet, def reportDef) (*RunResult, error) {
	result := &RunResult{Kind: def.kind}
	periods := PeriodsFor(g.cfg.Split, g.cfg.StartTime, g.cfg.EndTime)
	if len(periods) == 0 {
		return nil, fmt.Errorf("no reporting period between %s and %s",
			g.cfg.StartTime.Format(time.DateOnly), g.cfg.EndTime.Format(time.DateOnly))
	}

	if err := contract.EnsureDir(def.dir); err != nil {
		return nil, err
	}

	runID := g.beginRun(def.kind, ts)

	validationErr := def.validate(ts)
	for _, period := range periods {
		log := g.log.WithField("period", period.Label)
		if validationErr != nil {
			log.WithError(validationErr).Error("Skipping period")
			result.Skipped = append(result.Skipped, period)
			continue
		}

		table, err := def.build(ctx, ts, period)
		if err != nil {
			g.endRun(runID, len(result.Tables))
			return result, err
		}

		path := filepath.Join(def.dir, def.prefix+"_"+period.Label+g.cfg.Output.FileExtension())
		if err := g.sink.WriteReport(table, path); err != nil {
			g.endRun(runID, len(result.Tables))
			return result, fmt.Errorf("cannot write %s: %w", path, err)
		}
		if err := g.sink.Display(table); err != nil {
			log.WithError(err).Warn("Failed to display report")
		}
		g.recordReport(runID, table, path)

		result.Tables = append(result.Tables, table)
		result.Files = append(result.Files, path)
	}

	if g.cfg.Combine && len(result.Tables) > 1 {
		path := filepath.Join(def.dir, schema.CombinedReportName+g.cfg.Output.FileExtension())
		if err := g.sink.WriteCombined(result.Tables, path); err != nil {
			g.endRun(runID, len(result.Tables))
			return result, fmt.Errorf("cannot write %s: %w", path, err)
		}
		result.Combined = path
	}

	g.endRun(runID, len(result.Tables))
	return result, nil
}

// search runs one query. Query failures are logged and yield an empty result;
// authentication failures and cancellation abort the run.
func (g *Generator) search(ctx context.Context, jql string, log *logrus.Entry) ([]schema.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	issues, err := g.searcher.Search(ctx, jql)
	if err == nil {
		return issues, nil
	}

	var authErr *contract.AuthError
	if errors.As(err, &authErr) {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	log.WithError(err).Error("Query failed, counting it as empty")
	return nil, nil
}

// beginRun starts history tracking and returns the run ID, or 0 when tracking is off.
func (g *Generator) beginRun(kind schema.ReportKind, ts *schema.TemplateSet) int64 {
	if g.history == nil {
		return 0
	}
	params := map[string]any{
		"template":   ts.Name,
		"start":      g.cfg.StartTime.Format(time.DateOnly),
		"end":        g.cfg.EndTime.Format(time.DateOnly),
		"split":      string(g.cfg.Split),
		"output":     string(g.cfg.Output),
		"precision":  g.cfg.Precision,
		"combine":    g.cfg.Combine,
		"maxResults": g.cfg.MaxResults,
		"queries":    len(ts.AllQueries()),
	}
	runID, err := g.history.BeginRun(kind, g.now(), params)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return 0
	}
	return runID
}

func (g *Generator) recordReport(runID int64, table *schema.ReportTable, path string) {
	if g.history == nil || runID == 0 {
		return
	}
	if err := g.history.RecordReport(runID, table, path, g.cfg.Precision); err != nil {
		contract.LogWarn("Failed to record report", err)
	}
}

func (g *Generator) endRun(runID int64, totalReports int) {
	if g.history == nil || runID == 0 {
		return
	}
	if err := g.history.EndRun(runID, g.now(), totalReports); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// periodTitle renders a period for table titles, e.g. "January 2024".
func periodTitle(p schema.Period) string {
	if p.Start.Day() == 1 && p.End.Equal(p.Start.AddDate(0, 1, -1)) {
		return p.Start.Format("January 2006")
	}
	return p.StartDate() + " to " + p.EndDate()
}
