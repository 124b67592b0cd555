package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/datkit/dat"
)

// newImportCmd creates the import command.
func newImportCmd() *cobra.Command {
	var req dat.ImportRequest
	var data string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a file or inline data into a dataset",
		Long: `Import CSV or NDJSON into a dataset, creating a new commit.

Use --file for a file on disk, or --data for inline content. --data - reads
the content from standard input.

Examples:
  datkit import --dataset people --file people.csv --key id
  cat rows.ndjson | datkit import --dataset people --data - -m "nightly load"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd, req, data)
		},
	}

	cmd.Flags().StringVarP(&req.Dataset, "dataset", "d", "", "Dataset to import into")
	cmd.Flags().StringVarP(&req.File, "file", "f", "", "File to import")
	cmd.Flags().StringVar(&data, "data", "", "Inline data to import (- reads standard input)")
	cmd.Flags().StringVarP(&req.Key, "key", "k", "", "Field used as the row key")
	cmd.Flags().StringVarP(&req.Message, "message", "m", "", "Commit message")

	return cmd
}

func runImport(cmd *cobra.Command, req dat.ImportRequest, data string) error {
	printer := newPrinter(cmd)

	if cmd.Flags().Changed("data") {
		if data == "-" {
			in, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fail(printer, fmt.Errorf("reading standard input: %w", err))
			}
			req.Data = in
		} else {
			req.Data = []byte(data)
		}
	}

	repo, err := openRepo(cmd)
	if err != nil {
		return fail(printer, err)
	}
	rec, err := repo.Import(cmd.Context(), req)
	if err != nil {
		return fail(printer, err)
	}
	return printer.Record(rec)
}
