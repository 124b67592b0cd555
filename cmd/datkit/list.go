package main

import (
	"github.com/spf13/cobra"
)

// newDatasetsCmd creates the datasets command.
func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the datasets in the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer := newPrinter(cmd)

			repo, err := openRepo(cmd)
			if err != nil {
				return fail(printer, err)
			}
			names, err := repo.Datasets(cmd.Context())
			if err != nil {
				return fail(printer, err)
			}
			return printer.List("datasets", names)
		},
	}
}

// newForksCmd creates the forks command.
func newForksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forks",
		Short: "List the forks of the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer := newPrinter(cmd)

			repo, err := openRepo(cmd)
			if err != nil {
				return fail(printer, err)
			}
			forks, err := repo.Forks(cmd.Context())
			if err != nil {
				return fail(printer, err)
			}
			return printer.List("forks", forks)
		},
	}
}

// newStatusCmd creates the status command.
func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the repository status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer := newPrinter(cmd)

			repo, err := openRepo(cmd)
			if err != nil {
				return fail(printer, err)
			}
			st, err := repo.Status(cmd.Context())
			if err != nil {
				return fail(printer, err)
			}
			if !printer.IsJSON() {
				printer.KeyValue("Repository", repo.Dir())
			}
			return printer.Record(st)
		},
	}
}
