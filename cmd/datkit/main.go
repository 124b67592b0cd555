// Package main provides the entry point for the datkit CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/randalmurphal/datkit/internal/output"
)

// Build info set via ldflags at build time.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// buildVersion returns the full version string including commit and date.
func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return fmt.Sprintf("%s (%s, %s)", version, shortCommit, date)
}

func main() {
	code := run()
	os.Exit(code)
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	err := fang.Execute(ctx, cmd, fang.WithVersion(buildVersion()))
	return output.ExitCodeFor(err)
}

// newRootCmd creates the root command for the datkit CLI.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "datkit",
		Short: "Drive dat repositories from the command line",
		Long: `datkit - A front end for the dat versioned dataset tool.

datkit runs dat in a repository directory and:
  - Turns dat's error records into clear errors and exit codes
  - Streams large exports and diffs in batches, optionally compressed
  - Renders diffs between row versions as unified diffs
  - Watches a repository for new commits
  - Serves repository operations to agents over MCP

All commands support --json for structured output.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isJSONMode(cmd) {
				printer := newPrinter(cmd)
				err := output.NewUserError("no command specified. Run 'datkit --help' for usage")
				printer.Error(err)
				return err
			}
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("dir", ".", "Repository directory")
	flags.Bool("json", false, "Output in JSON format")
	flags.String("config", "", "Config file (.yaml, .yml, .json, or .toml)")
	flags.String("dat", "", "Path to the dat binary")
	flags.Duration("timeout", 0, "Deadline for each dat invocation (0 for none)")
	flags.BoolP("verbose", "v", false, "Log dat invocations to stderr")

	lipgloss.SetHasDarkBackground(true)

	addCommandGroups(cmd)
	addCommands(cmd)

	return cmd
}

// addCommandGroups defines the command groups for help output.
func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(&cobra.Group{ID: "data", Title: "Data Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "history", Title: "History Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "sync", Title: "Sync Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

// addCommands adds all subcommands with their group assignments.
func addCommands(cmd *cobra.Command) {
	addGroupedCommand(cmd, newImportCmd(), "data")
	addGroupedCommand(cmd, newExportCmd(), "data")
	addGroupedCommand(cmd, newDatasetsCmd(), "data")

	addGroupedCommand(cmd, newLogCmd(), "history")
	addGroupedCommand(cmd, newHashesCmd(), "history")
	addGroupedCommand(cmd, newDiffCmd(), "history")
	addGroupedCommand(cmd, newWatchCmd(), "history")

	addGroupedCommand(cmd, newRemoteCmd("push", "Push local commits to a remote"), "sync")
	addGroupedCommand(cmd, newRemoteCmd("pull", "Pull commits from a remote"), "sync")
	addGroupedCommand(cmd, newRemoteCmd("replicate", "Copy a remote repository into this one"), "sync")
	addGroupedCommand(cmd, newForksCmd(), "sync")

	addGroupedCommand(cmd, newInitCmd(), "admin")
	addGroupedCommand(cmd, newStatusCmd(), "admin")
	addGroupedCommand(cmd, newConfigCmd(), "admin")
	addGroupedCommand(cmd, newServeCmd(), "admin")
}

// addGroupedCommand adds a subcommand with a group assignment.
func addGroupedCommand(parent *cobra.Command, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}
