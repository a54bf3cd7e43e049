package core

import (
	"context"

	"github.com/jirametrics/jirametrics/core/agg"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/sirupsen/logrus"
)

// BuildDefectAgeTable builds the defect-age table of one period: the average
// age of resolved and unresolved defects per category and priority.
func (g *Generator) BuildDefectAgeTable(ctx context.Context, ts *schema.TemplateSet, period schema.Period) (*schema.ReportTable, error) {
	queries := ts.Substitute(period.StartDate(), period.EndDate())
	table := schema.NewReportTable("Defect Age "+periodTitle(period), schema.DefectAgeRows)
	table.Kind = schema.DefectAgeReport
	table.Period = period
	now := g.now()

	modes := []struct {
		row      schema.Metric
		resolved bool
	}{
		{schema.ResolvedDefect, true},
		{schema.UnresolvedDefect, false},
	}

	for _, mode := range modes {
		for _, cat := range schema.Categories {
			for _, p := range schema.Priorities {
				jql, _ := queries.DefectAgeQuery(cat, mode.resolved, p)
				log := g.log.WithFields(logrus.Fields{"period": period.Label, "category": cat, "priority": p, "query": mode.row})

				issues, err := g.search(ctx, jql, log)
				if err != nil {
					return nil, err
				}
				days := agg.AverageAgeDays(issues, mode.resolved, now)
				if err := table.Set(mode.row, cat, p, schema.DaysValue(float64(days))); err != nil {
					return nil, err
				}
			}
		}
		if err := agg.RollupAges(table, mode.row); err != nil {
			return nil, err
		}
	}
	return table, nil
}
