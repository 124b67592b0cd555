package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/datkit/dat"
	"github.com/randalmurphal/datkit/ndjson"
)

type remoteOp func(r *dat.Repository, ctx context.Context, remote string) (ndjson.Value, error)

var remoteOps = map[string]remoteOp{
	"push":      (*dat.Repository).Push,
	"pull":      (*dat.Repository).Pull,
	"replicate": (*dat.Repository).Replicate,
}

// newRemoteCmd creates one of the push, pull and replicate commands.
func newRemoteCmd(name, short string) *cobra.Command {
	op, ok := remoteOps[name]
	if !ok {
		panic("unknown remote command: " + name)
	}
	return &cobra.Command{
		Use:   name + " <remote>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer := newPrinter(cmd)

			repo, err := openRepo(cmd)
			if err != nil {
				return fail(printer, err)
			}
			rec, err := op(repo, cmd.Context(), args[0])
			if err != nil {
				return fail(printer, err)
			}
			return printer.Record(rec)
		},
	}
}
