package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/datkit/dat"
	"github.com/randalmurphal/datkit/internal/output"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// newPrinter creates a printer for the command's output streams.
func newPrinter(cmd *cobra.Command) *output.Printer {
	out := cmd.OutOrStdout()
	return output.NewPrinter(out, isJSONMode(cmd), output.IsTTY(out)).WithStderr(cmd.ErrOrStderr())
}

// fail reports err through the printer and returns it with an exit code attached.
func fail(printer *output.Printer, err error) error {
	printer.Error(err)
	return output.FromError(err)
}

// loadConfig builds the effective configuration: defaults, then the --config file,
// then DATKIT_* environment variables, then flags.
func loadConfig(cmd *cobra.Command) (dat.Config, error) {
	cfg := dat.DefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := dat.LoadFile(path)
		if err != nil {
			return dat.Config{}, output.NewUserError(err.Error())
		}
		cfg = loaded
	}
	cfg.LoadFromEnv()

	if f := cmd.Flags().Lookup("dat"); f != nil && f.Changed {
		cfg.DatPath = f.Value.String()
	}
	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Changed {
		timeout, err := cmd.Flags().GetDuration("timeout")
		if err != nil {
			return dat.Config{}, output.NewUserError(err.Error())
		}
		cfg.Timeout = timeout
	}
	return cfg, nil
}

// newLogger returns a text logger on the command's stderr. --verbose enables debug
// output, which traces every dat invocation.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// openRepo opens the repository named by --dir with the effective configuration.
// opts are applied last.
func openRepo(cmd *cobra.Command, opts ...dat.Option) (*dat.Repository, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dir, _ := cmd.Flags().GetString("dir")
	repo, err := dat.NewFromConfig(dir, cfg, append([]dat.Option{dat.WithLogger(newLogger(cmd))}, opts...)...)
	if err != nil {
		return nil, output.NewUserError(err.Error())
	}
	return repo, nil
}
