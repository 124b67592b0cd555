package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/datkit/dat"
)

// newConfigCmd creates the config command and its subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect datkit configuration",
		Long: `Inspect datkit configuration.

Configuration is resolved from defaults, then the --config file, then
DATKIT_* environment variables, then flags.`,
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSchemaCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer := newPrinter(cmd)

			cfg, err := loadConfig(cmd)
			if err != nil {
				return fail(printer, err)
			}
			if err := cfg.Validate(); err != nil {
				return fail(printer, dat.NewError("config", err))
			}
			if printer.IsJSON() {
				return printer.WriteJSON(cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fail(printer, err)
			}
			_, err = printer.Writer().Write(data)
			return err
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of config files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printer := newPrinter(cmd)

			schema, err := dat.ConfigSchema()
			if err != nil {
				return fail(printer, err)
			}
			return printer.Lines([]string{string(schema)})
		},
	}
}
