// Package mcp provides a Model Context Protocol server for datkit.
// It exposes dat repository operations as MCP tools that any MCP-capable agent can use.
package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/randalmurphal/datkit/dat"
)

// NewServer creates an MCP server with all datkit tools registered.
func NewServer(version string, repo *dat.Repository) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "datkit",
		Version: version,
	}, nil)
	registerTools(server, repo)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for write tools (additive, not destructive).
func writeAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		OpenWorldHint:   boolPtr(false),
	}
}

// registerTools adds all datkit tools to the server.
func registerTools(server *mcp.Server, repo *dat.Repository) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "log",
		Description: "List the commits of the dat repository, oldest first, as dat reports them.",
		Annotations: readOnlyAnnotations(),
	}, handleLog(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "commit_hashes",
		Description: "List the version hash of every commit in the dat repository, oldest first.",
		Annotations: readOnlyAnnotations(),
	}, handleCommitHashes(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "datasets",
		Description: "List the datasets stored in the dat repository.",
		Annotations: readOnlyAnnotations(),
	}, handleDatasets(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "forks",
		Description: "List the forks of the dat repository.",
		Annotations: readOnlyAnnotations(),
	}, handleForks(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Show the status record of the dat repository.",
		Annotations: readOnlyAnnotations(),
	}, handleStatus(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "diff",
		Description: "Show per-key differences between two versions. With patch=true, also render them as a unified diff.",
		Annotations: readOnlyAnnotations(),
	}, handleDiff(repo))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "import",
		Description: "Import inline data or a file into a dataset, creating a new commit.",
		Annotations: writeAnnotations(),
	}, handleImport(repo))
}
