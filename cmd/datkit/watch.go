package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/datkit/dat"
)

// newWatchCmd creates the watch command.
func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report new commits as they land",
		Long: `Watch the repository directory and print the version of every commit made
after the watch started. Runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
	cmd.Flags().Duration("debounce", 0, "Quiet period before checking for commits (default from config)")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	var opts []dat.Option
	if cmd.Flags().Changed("debounce") {
		debounce, _ := cmd.Flags().GetDuration("debounce")
		opts = append(opts, dat.WithWatchDebounce(debounce))
	}
	repo, err := openRepo(cmd, opts...)
	if err != nil {
		return fail(printer, err)
	}

	if !printer.IsJSON() {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for commits (Ctrl-C to stop)\n", repo.Dir())
	}
	err = repo.Watch(cmd.Context(), func(hashes []string) error {
		if printer.IsJSON() {
			return printer.List("hashes", hashes)
		}
		for _, h := range hashes {
			printer.KeyValue("commit", h)
		}
		return nil
	})
	if err != nil {
		return fail(printer, err)
	}
	return nil
}
