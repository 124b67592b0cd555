package main

import (
	"github.com/spf13/cobra"
)

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a dat repository in --dir",
		Long: `Create a dat repository in the --dir directory, creating the directory first
if it does not exist.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	repo, err := openRepo(cmd)
	if err != nil {
		return fail(printer, err)
	}
	rec, err := repo.Init(cmd.Context())
	if err != nil {
		return fail(printer, err)
	}
	if printer.IsJSON() {
		return printer.Record(rec)
	}
	msg, ok := rec.GetString("message")
	if !ok || msg == "" {
		msg = "Initialized dat repository in " + repo.Dir()
	}
	return printer.Success(msg)
}
