package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jirametrics/jirametrics/core"
	"github.com/jirametrics/jirametrics/internal/auth"
	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/internal/jira"
	"github.com/jirametrics/jirametrics/internal/outwriter"
	"github.com/jirametrics/jirametrics/internal/prompt"
	"github.com/jirametrics/jirametrics/schema"
)

// runFunc runs one report kind with a ready generator.
type runFunc func(ctx context.Context, g *core.Generator, ts *schema.TemplateSet) (*core.RunResult, error)

// newSearcher authenticates with the resolved credentials and returns a search
// client that stores raw responses in the search cache.
func newSearcher(ctx context.Context, c *contract.Config, ts *schema.TemplateSet) (contract.IssueSearcher, error) {
	creds, err := core.ResolveCredentials(c, ts)
	if err != nil {
		return nil, err
	}
	if c.AuthURL == "" {
		return nil, errors.New("no authentication endpoint configured. Use --auth-url")
	}

	tokens, err := auth.NewTokenClient(ctx, auth.TokenConfig{
		URL:      c.AuthURL,
		Username: creds.Username,
		Password: creds.Password,
		Service:  c.AuthService,
		Timeout:  c.Timeout,
	})
	if err != nil {
		return nil, err
	}

	var opts []jira.Option
	if cacheManager != nil {
		opts = append(opts, jira.WithCache(cacheManager.GetSearchStore()))
	}
	return jira.NewSearchClient(jira.SearchConfig{
		URL:        creds.SearchURL,
		MaxResults: c.MaxResults,
		Timeout:    c.Timeout,
		CacheTTL:   c.CacheTTL,
	}, tokens, opts...), nil
}

// fillMissingInputs prompts for the template and dates when they were not
// given, then checks that everything a report needs is set.
func fillMissingInputs(c *contract.Config) error {
	if c.NeedsPrompt() {
		choices := core.ListTemplates(c.Templates, c.TemplatesDir)
		err := prompt.Fill(c, choices, time.Now())
		if err != nil && !errors.Is(err, prompt.ErrNotInteractive) {
			return err
		}
	}
	return contract.ValidateReportInputs(c)
}

// executeReport wires the token client, search client, sink and history store
// into a generator and runs one report kind.
func executeReport(ctx context.Context, c *contract.Config, run runFunc) (*core.RunResult, error) {
	if err := fillMissingInputs(c); err != nil {
		return nil, err
	}

	ts, err := core.LoadTemplateSet(c.TemplateFile)
	if err != nil {
		return nil, err
	}

	searcher, err := newSearcher(ctx, c, ts)
	if err != nil {
		return nil, err
	}

	var opts []core.Option
	if cacheManager != nil {
		opts = append(opts, core.WithHistory(cacheManager.GetHistoryStore()))
	}
	g := core.NewGenerator(c, searcher, outwriter.NewFileSink(c, nil), opts...)
	return run(ctx, g, ts)
}

// printRunSummary reports what a run produced on stderr.
func printRunSummary(result *core.RunResult) {
	for _, p := range result.Skipped {
		_, _ = fmt.Fprintf(os.Stderr, "⚠️  Skipped %s: the query template is incomplete\n", p.Label)
	}
	_, _ = fmt.Fprintf(os.Stderr, "✅ Generated %d %s report(s)\n", len(result.Tables), result.Kind)
	if result.Combined != "" {
		_, _ = fmt.Fprintf(os.Stderr, "📎 Combined report: %s\n", result.Combined)
	}
}
