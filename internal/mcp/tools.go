package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/randalmurphal/datkit/dat"
	"github.com/randalmurphal/datkit/diffview"
	"github.com/randalmurphal/datkit/ndjson"
)

// --- Shared helpers ---

// plain converts records to plain values for structured tool output.
func plain(records []ndjson.Value) []any {
	out := make([]any, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Interface())
	}
	return out
}

// NoInput is the input for tools without parameters.
type NoInput struct{}

// --- Log tool ---

// LogOutput is the output for the log tool.
type LogOutput struct {
	Count   int   `json:"count"   jsonschema:"number of commits"`
	Entries []any `json:"entries" jsonschema:"commit records, oldest first"`
}

func handleLog(repo *dat.Repository) mcp.ToolHandlerFor[NoInput, LogOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, LogOutput, error) {
		entries, err := repo.Log(ctx)
		if err != nil {
			return nil, LogOutput{}, err
		}
		return nil, LogOutput{Count: len(entries), Entries: plain(entries)}, nil
	}
}

// --- Commit hashes tool ---

// HashesOutput is the output for the commit_hashes tool.
type HashesOutput struct {
	Hashes []string `json:"hashes" jsonschema:"commit versions, oldest first"`
}

func handleCommitHashes(repo *dat.Repository) mcp.ToolHandlerFor[NoInput, HashesOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, HashesOutput, error) {
		hashes, err := repo.CommitHashes(ctx)
		if err != nil {
			return nil, HashesOutput{}, err
		}
		return nil, HashesOutput{Hashes: hashes}, nil
	}
}

// --- Datasets and forks tools ---

// DatasetsOutput is the output for the datasets tool.
type DatasetsOutput struct {
	Datasets []string `json:"datasets" jsonschema:"dataset names"`
}

func handleDatasets(repo *dat.Repository) mcp.ToolHandlerFor[NoInput, DatasetsOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, DatasetsOutput, error) {
		names, err := repo.Datasets(ctx)
		if err != nil {
			return nil, DatasetsOutput{}, err
		}
		return nil, DatasetsOutput{Datasets: names}, nil
	}
}

// ForksOutput is the output for the forks tool.
type ForksOutput struct {
	Forks []string `json:"forks" jsonschema:"fork identifiers"`
}

func handleForks(repo *dat.Repository) mcp.ToolHandlerFor[NoInput, ForksOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, ForksOutput, error) {
		forks, err := repo.Forks(ctx)
		if err != nil {
			return nil, ForksOutput{}, err
		}
		return nil, ForksOutput{Forks: forks}, nil
	}
}

// --- Status tool ---

// StatusOutput is the output for the status tool.
type StatusOutput struct {
	Dir    string `json:"dir"    jsonschema:"absolute repository directory"`
	Status any    `json:"status" jsonschema:"status record reported by dat"`
}

func handleStatus(repo *dat.Repository) mcp.ToolHandlerFor[NoInput, StatusOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, StatusOutput, error) {
		st, err := repo.Status(ctx)
		if err != nil {
			return nil, StatusOutput{}, err
		}
		return nil, StatusOutput{Dir: repo.Dir(), Status: st.Interface()}, nil
	}
}

// --- Diff tool ---

// DiffInput is the input for the diff tool.
type DiffInput struct {
	From  string `json:"from"            jsonschema:"version to compare from"`
	To    string `json:"to,omitempty"    jsonschema:"version to compare to (default: current)"`
	Patch bool   `json:"patch,omitempty" jsonschema:"also render a unified diff"`
}

// DiffOutput is the output for the diff tool.
type DiffOutput struct {
	Count int    `json:"count"           jsonschema:"number of changed keys"`
	Diffs []any  `json:"diffs"           jsonschema:"diff records reported by dat"`
	Patch string `json:"patch,omitempty" jsonschema:"unified diff of the changed rows"`
}

func handleDiff(repo *dat.Repository) mcp.ToolHandlerFor[DiffInput, DiffOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DiffInput) (*mcp.CallToolResult, DiffOutput, error) {
		diffs, err := repo.Diff(ctx, input.From, input.To)
		if err != nil {
			return nil, DiffOutput{}, err
		}
		out := DiffOutput{Count: len(diffs), Diffs: plain(diffs)}
		if input.Patch {
			patch, err := diffview.RenderAll(diffs)
			if err != nil {
				return nil, DiffOutput{}, fmt.Errorf("rendering diff: %w", err)
			}
			out.Patch = patch
		}
		return nil, out, nil
	}
}

// --- Import tool ---

// ImportInput is the input for the import tool.
type ImportInput struct {
	Dataset string `json:"dataset"           jsonschema:"dataset to import into"`
	Data    string `json:"data,omitempty"    jsonschema:"inline data (CSV or NDJSON); mutually exclusive with file"`
	File    string `json:"file,omitempty"    jsonschema:"path of a file to import; mutually exclusive with data"`
	Key     string `json:"key,omitempty"     jsonschema:"field used as the row key"`
	Message string `json:"message,omitempty" jsonschema:"commit message"`
}

// ImportOutput is the output for the import tool.
type ImportOutput struct {
	Result any `json:"result" jsonschema:"summary record reported by dat"`
}

func handleImport(repo *dat.Repository) mcp.ToolHandlerFor[ImportInput, ImportOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ImportInput) (*mcp.CallToolResult, ImportOutput, error) {
		req := dat.ImportRequest{
			Dataset: input.Dataset,
			File:    input.File,
			Key:     input.Key,
			Message: input.Message,
		}
		if input.Data != "" {
			req.Data = []byte(input.Data)
		}
		res, err := repo.Import(ctx, req)
		if err != nil {
			return nil, ImportOutput{}, err
		}
		return nil, ImportOutput{Result: res.Interface()}, nil
	}
}
