package cmd

import (
	"github.com/jirametrics/jirametrics/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the jirametrics MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents generate QMR and defect-age reports via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, newSearcher)
	},
}
