// Package datkit drives the dat versioned dataset tool from Go.
//
// datkit runs the dat command-line tool inside a repository directory and turns its
// newline-delimited JSON output into Go values and errors. Each subpackage can be
// used on its own:
//
//   - dat: the Repository façade (init, import, export, diff, log, remotes, status)
//   - ndjson: NDJSON decoding and batched streaming
//   - export: compressed (gzip, zstd) sinks for streamed exports
//   - diffview: unified diffs of per-key row changes
//
// # Quick Start
//
//	import "github.com/randalmurphal/datkit/dat"
//
//	repo, err := dat.NewRepository("./flights")
//	if err != nil {
//		return err
//	}
//	hashes, err := repo.CommitHashes(ctx)
//
// Streaming a large dataset:
//
//	err := repo.ExportInBatches(ctx, "flights", 500, func(lines []string) error {
//		return sink.WriteBatch(lines)
//	})
//
// The datkit command in cmd/datkit exposes the same operations on the command line
// and as an MCP server.
package datkit
