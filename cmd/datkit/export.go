package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/datkit/dat"
	"github.com/randalmurphal/datkit/export"
	"github.com/randalmurphal/datkit/internal/output"
)

// newExportCmd creates the export command.
func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Stream the rows of a dataset",
		Long: `Stream every row of a dataset as NDJSON, in batches.

Rows go to standard output unless --out names a file. The file is compressed
according to --compress, or by its extension (.gz, .zst) when --compress is
not given.

Examples:
  datkit export --dataset people
  datkit export --dataset people --out people.ndjson.zst
  datkit export --dataset people --out dump --compress gzip --batch-size 1000`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringP("dataset", "d", "", "Dataset to export")
	cmd.Flags().Int("batch-size", 0, "Rows per batch (default from config)")
	cmd.Flags().StringP("out", "o", "", "Write rows to this file instead of standard output")
	cmd.Flags().String("compress", "", "Output compression: none, gzip or zstd")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	dataset, _ := cmd.Flags().GetString("dataset")
	outPath, _ := cmd.Flags().GetString("out")
	compress, _ := cmd.Flags().GetString("compress")

	repo, err := openRepo(cmd)
	if err != nil {
		return fail(printer, err)
	}
	size := repo.BatchSize()
	if cmd.Flags().Changed("batch-size") {
		size, _ = cmd.Flags().GetInt("batch-size")
	}

	if outPath == "" {
		if compress != "" {
			return fail(printer, output.NewUserError("--compress requires --out"))
		}
		err := repo.ExportInBatches(cmd.Context(), dataset, size, printer.Lines)
		if err != nil {
			return fail(printer, err)
		}
		return nil
	}

	comp := export.FromPath(outPath)
	if compress != "" {
		comp, err = export.ParseCompression(compress)
		if err != nil {
			return fail(printer, err)
		}
	}

	lines, err := exportToFile(cmd.Context(), repo, dataset, size, outPath, comp)
	if err != nil {
		return fail(printer, err)
	}
	return printer.Success(fmt.Sprintf("Exported %d rows from %s to %s", lines, dataset, outPath))
}

// exportToFile streams dataset into path through a compressing sink and returns
// the number of rows written. path is removed when the export fails.
func exportToFile(ctx context.Context, repo *dat.Repository, dataset string, size int, path string, comp export.Compression) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	// Runs after the file is closed.
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	sink, err := export.NewSink(f, comp)
	if err != nil {
		return 0, err
	}
	if err := repo.ExportInBatches(ctx, dataset, size, sink.WriteBatch); err != nil {
		_ = sink.Close()
		return sink.Lines(), err
	}
	if err := sink.Close(); err != nil {
		return sink.Lines(), fmt.Errorf("finishing %s: %w", path, err)
	}
	return sink.Lines(), nil
}
