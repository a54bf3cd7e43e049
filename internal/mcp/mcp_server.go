// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/jirametrics/jirametrics/internal/contract"
	"github.com/jirametrics/jirametrics/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SearcherFactory builds the issue searcher for one tool call, usually by
// authenticating with the credentials of the loaded template.
type SearcherFactory func(ctx context.Context, cfg *contract.Config, ts *schema.TemplateSet) (contract.IssueSearcher, error)

// NewMCPServer initializes and configures the reporting MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, factory SearcherFactory) *server.MCPServer {
	s := server.NewMCPServer(
		"Jira Metrics Report Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		factory: factory,
	}

	reportArgs := []mcp.ToolOption{
		mcp.WithString("start_date", mcp.Description("Start of the reporting window (YYYY-MM-DD, RFC 3339 or '3 months ago')."), mcp.Required()),
		mcp.WithString("end_date", mcp.Description("End of the reporting window. Defaults to today.")),
		mcp.WithString("template", mcp.Description("Name of a configured query template.")),
		mcp.WithString("template_file", mcp.Description("Path to a query template file. Takes precedence over template.")),
		mcp.WithString("split", mcp.Description("Period split. Defaults to the configured split."), mcp.Enum(string(schema.MonthlySplit), string(schema.NoSplit))),
	}

	// --- 1. Tool: generate_qmr_report ---
	s.AddTool(mcp.NewTool("generate_qmr_report",
		append([]mcp.ToolOption{
			mcp.WithDescription("Generate the quality metrics report (bugs raised, resolved, fixed, noise and resolution rate per priority)."),
		}, reportArgs...)...,
	), h.handleGenerateQMR)

	// --- 2. Tool: get_defect_age ---
	s.AddTool(mcp.NewTool("get_defect_age",
		append([]mcp.ToolOption{
			mcp.WithDescription("Generate the defect age report (average age in days of resolved and unresolved defects per priority)."),
		}, reportArgs...)...,
	), h.handleDefectAge)

	// --- 3. Tool: list_templates ---
	s.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the query templates that can be passed as 'template'."),
	), h.handleListTemplates)

	return s
}

// StartMCPServer starts the reporting MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager, factory SearcherFactory) error {
	s := NewMCPServer(baseCfg, mgr, factory)
	return server.ServeStdio(s)
}
