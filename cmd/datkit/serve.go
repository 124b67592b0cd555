package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	datkitmcp "github.com/randalmurphal/datkit/internal/mcp"
)

// newServeCmd creates the serve command for running as an MCP server.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run as MCP server (stdio transport)",
		Long: `Run datkit as a Model Context Protocol (MCP) server over stdio, exposing
the repository in --dir as MCP tools.

Configure in your agent's MCP settings:
  {
    "mcpServers": {
      "datkit": {
        "command": "datkit",
        "args": ["serve", "--dir", "/path/to/repo"]
      }
    }
  }

Available tools: log, commit_hashes, datasets, forks, status, diff, import`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := openRepo(cmd)
			if err != nil {
				return err
			}
			server := datkitmcp.NewServer(buildVersion(), repo)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}
