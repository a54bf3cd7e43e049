package core

import (
	"context"

	"github.com/jirametrics/jirametrics/core/agg"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/sirupsen/logrus"
)

// BuildQMRTable builds the QMR table of one period. Every sub-query of both
// categories is searched once, in fetch order.
func (g *Generator) BuildQMRTable(ctx context.Context, ts *schema.TemplateSet, period schema.Period) (*schema.ReportTable, error) {
	queries := ts.Substitute(period.StartDate(), period.EndDate())
	table := schema.NewReportTable("Report "+periodTitle(period), schema.QMRRows)
	table.Kind = schema.QMRReport
	table.Period = period

	for _, name := range schema.QMRSubQueries {
		for _, cat := range schema.Categories {
			jql, _ := queries.Query(cat, name)
			log := g.log.WithFields(logrus.Fields{"period": period.Label, "category": cat, "query": name})

			issues, err := g.search(ctx, jql, log)
			if err != nil {
				return nil, err
			}
			if err := agg.SetCounts(table, name, cat, issues); err != nil {
				return nil, err
			}
		}
		if err := agg.RollupCounts(table, name); err != nil {
			return nil, err
		}
	}

	if err := agg.ApplyPercentages(table); err != nil {
		return nil, err
	}
	if err := agg.ApplyOverallPercentages(table); err != nil {
		return nil, err
	}
	table.DropRow(schema.Resolution)
	return table, nil
}
