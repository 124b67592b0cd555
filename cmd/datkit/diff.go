package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/datkit/diffview"
	"github.com/randalmurphal/datkit/ndjson"
)

// newDiffCmd creates the diff command.
func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <from> [to]",
		Short: "Show per-key changes between two versions",
		Long: `Show the rows that differ between two versions. Without <to>, compare
<from> against the current version.

Diff records stream in batches as dat produces them. With --patch, each
changed row is rendered as a unified diff of its versions instead.

Examples:
  datkit diff 3f2a91
  datkit diff 3f2a91 8cc01d --patch`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runDiff,
	}

	cmd.Flags().Bool("patch", false, "Render changed rows as a unified diff")
	cmd.Flags().Int("batch-size", 0, "Records per batch (default from config)")

	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	from := args[0]
	var to string
	if len(args) > 1 {
		to = args[1]
	}
	patch, _ := cmd.Flags().GetBool("patch")

	repo, err := openRepo(cmd)
	if err != nil {
		return fail(printer, err)
	}
	size := repo.BatchSize()
	if cmd.Flags().Changed("batch-size") {
		size, _ = cmd.Flags().GetInt("batch-size")
	}

	if !patch {
		if err := repo.DiffRecordsInBatches(cmd.Context(), from, to, size, printer.Records); err != nil {
			return fail(printer, err)
		}
		return nil
	}

	changed := 0
	err = repo.DiffRecordsInBatches(cmd.Context(), from, to, size, func(batch []ndjson.Value) error {
		text, err := diffview.RenderAll(batch)
		if err != nil {
			return fmt.Errorf("rendering diff: %w", err)
		}
		if text != "" {
			changed++
			printer.Diff(text)
		}
		return nil
	})
	if err != nil {
		return fail(printer, err)
	}
	if changed == 0 {
		printer.Diff("")
	}
	return nil
}
