// Package dat provides a Go binding for the dat command-line tool.
//
// Every operation runs the dat binary in the repository directory, reads the
// newline-delimited JSON it prints, and turns error records into typed errors.
// The process working directory is never changed, so repositories in different
// directories can be used concurrently.
//
// # Basic Usage
//
//	repo, err := dat.NewRepository("data/flights")
//	if _, err := repo.Init(ctx); err != nil {
//	    return err
//	}
//	_, err = repo.Import(ctx, dat.ImportRequest{
//	    Dataset: "flights",
//	    File:    "flights.csv",
//	    Key:     "id",
//	})
//	hashes, err := repo.CommitHashes(ctx)
//
// # Streaming
//
// Large exports and diffs are read as they are produced and handed over in batches:
//
//	err := repo.ExportInBatches(ctx, "flights", 500, func(lines []string) error {
//	    return load(lines)
//	})
//
// ExportStream and DiffStream return the raw output as an io.ReadCloser instead.
//
// # Errors
//
// Anything dat writes to standard error fails the call with an *ExecutionError.
// Error records on standard output become a *ToolError; use IsNotARepository and
// IsAutoDetect to tell the common ones apart:
//
//	if _, err := repo.Log(ctx); dat.IsNotARepository(err) {
//	    _, err = repo.Init(ctx)
//	}
//
// Arguments are checked before dat runs; those failures match ErrInvalidArgument.
package dat
