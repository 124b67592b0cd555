package main

import (
	"github.com/spf13/cobra"
)

// newLogCmd creates the log command.
func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "List commits, oldest first",
		Args:  cobra.NoArgs,
		RunE:  runLog,
	}
}

func runLog(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	repo, err := openRepo(cmd)
	if err != nil {
		return fail(printer, err)
	}
	entries, err := repo.Log(cmd.Context())
	if err != nil {
		return fail(printer, err)
	}
	return printer.Records(entries)
}

// newHashesCmd creates the hashes command.
func newHashesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hashes",
		Short: "List commit version hashes, oldest first",
		Args:  cobra.NoArgs,
		RunE:  runHashes,
	}
}

func runHashes(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	repo, err := openRepo(cmd)
	if err != nil {
		return fail(printer, err)
	}
	hashes, err := repo.CommitHashes(cmd.Context())
	if err != nil {
		return fail(printer, err)
	}
	return printer.List("hashes", hashes)
}
