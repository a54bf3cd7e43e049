package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jirametrics/jirametrics/core"
	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/internal/outwriter"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	factory SearcherFactory
	now     func() time.Time
}

// reportResponse is the JSON payload returned by the report tools.
type reportResponse struct {
	Kind     schema.ReportKind     `json:"kind"`
	Template string                `json:"template"`
	Files    []string              `json:"files"`
	Combined string                `json:"combined,omitempty"`
	Skipped  []string              `json:"skipped,omitempty"`
	Reports  []schema.ReportOutput `json:"reports"`
}

func (h *toolHandler) handleGenerateQMR(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.runReport(ctx, request, func(g *core.Generator, ts *schema.TemplateSet) (*core.RunResult, error) {
		return g.RunQMR(ctx, ts)
	})
}

func (h *toolHandler) handleDefectAge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.runReport(ctx, request, func(g *core.Generator, ts *schema.TemplateSet) (*core.RunResult, error) {
		return g.RunDefectAge(ctx, ts)
	})
}

func (h *toolHandler) handleListTemplates(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := core.ListTemplates(h.baseCfg.Templates, h.baseCfg.TemplatesDir)
	if names == nil {
		names = []string{}
	}
	jsonData, _ := json.MarshalIndent(names, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) runReport(
	ctx context.Context,
	request mcp.CallToolRequest,
	run func(*core.Generator, *schema.TemplateSet) (*core.RunResult, error),
) (*mcp.CallToolResult, error) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid report parameters: %v", err)), nil
	}

	ts, err := core.LoadTemplateSet(cfg.TemplateFile)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	searcher, err := h.factory(ctx, cfg, ts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cannot connect to the tracker: %v", err)), nil
	}

	// Tables must not be rendered to stdout, which carries the protocol
	sink := outwriter.NewFileSink(cfg, io.Discard)
	var opts []core.Option
	if h.mgr != nil {
		if store := h.mgr.GetHistoryStore(); store != nil {
			opts = append(opts, core.WithHistory(store))
		}
	}

	result, err := run(core.NewGenerator(cfg, searcher, sink, opts...), ts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("report failed: %v", err)), nil
	}

	resp := reportResponse{
		Kind:     result.Kind,
		Template: ts.Name,
		Files:    result.Files,
		Combined: result.Combined,
		Reports:  make([]schema.ReportOutput, 0, len(result.Tables)),
	}
	for _, p := range result.Skipped {
		resp.Skipped = append(resp.Skipped, p.Label)
	}
	for _, table := range result.Tables {
		resp.Reports = append(resp.Reports, table.Output(cfg.Precision))
	}
	jsonData, _ := json.MarshalIndent(resp, "", "  ")

	return mcp.NewToolResultText(string(jsonData)), nil
}

// requestConfig applies the tool arguments on top of a copy of the base config.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	now := time.Now()
	if h.now != nil {
		now = h.now()
	}
	cfg := h.baseCfg.Clone()

	startStr := strings.TrimSpace(request.GetString("start_date", ""))
	if startStr == "" {
		return nil, fmt.Errorf("start_date is required")
	}
	start, err := contract.ParseDateInput(startStr, now)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}
	end := contract.TruncateDay(now)
	if endStr := strings.TrimSpace(request.GetString("end_date", "")); endStr != "" {
		if end, err = contract.ParseDateInput(endStr, now); err != nil {
			return nil, fmt.Errorf("end_date: %w", err)
		}
	}
	if start.After(end) {
		return nil, fmt.Errorf("start_date %s is after end_date %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	cfg.StartTime, cfg.EndTime = start, end

	if split := strings.ToLower(request.GetString("split", "")); split != "" {
		mode := schema.SplitMode(split)
		if _, ok := schema.ValidSplitModes[mode]; !ok {
			return nil, fmt.Errorf("invalid split %q. must be month, none", split)
		}
		cfg.Split = mode
	}

	if file := strings.TrimSpace(request.GetString("template_file", "")); file != "" {
		cfg.TemplateFile = file
	} else if name := strings.TrimSpace(request.GetString("template", "")); name != "" {
		cfg.TemplateName = name
		cfg.TemplateFile = contract.ResolveTemplatePath(name, cfg.Templates, cfg.TemplatesDir)
	}
	if cfg.TemplateFile == "" {
		return nil, fmt.Errorf("template or template_file is required")
	}
	return cfg, nil
}
