package main

import (
	"github.com/spf13/cobra"

	schema "github.com/hanpama/hellograph/internal/schema"
)

func newPrintSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print-schema",
		Short: "Print the SDL of the selected app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			app, _ := schema.Lookup(cfg.GraphQL.App)
			if _, err := schema.Build(app); err != nil {
				return err
			}
			return schema.Print(cmd.OutOrStdout(), app)
		},
	}
	appFlags(cmd)
	return cmd
}
