package main

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	config "github.com/hanpama/hellograph/internal/config"
	executor "github.com/hanpama/hellograph/internal/executor"
	logging "github.com/hanpama/hellograph/internal/logging"
	schema "github.com/hanpama/hellograph/internal/schema"
	server "github.com/hanpama/hellograph/internal/server"
)

func queryFlags(fs *pflag.FlagSet) {
	fs.String("variables", "", "Variables as a JSON object")
	fs.String("operation-name", "", "Operation to run in a multi-operation document")
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <document>",
		Short: "Execute one GraphQL document and print the JSON result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			op := server.Operation{Query: args[0]}
			op.OperationName, _ = cmd.Flags().GetString("operation-name")
			if raw, _ := cmd.Flags().GetString("variables"); raw != "" {
				vars, err := executor.ParseVariables([]byte(raw))
				if err != nil {
					return errors.New(server.MsgInvalidVariables)
				}
				op.Variables = vars
			}

			app, _ := schema.Lookup(cfg.GraphQL.App)
			sch, err := schema.Build(app)
			if err != nil {
				return err
			}
			opts := []server.Option{server.WithExecutorDiagnostics(), server.WithLogger(log)}
			if cfg.Server.Pretty {
				opts = append(opts, server.WithPretty())
			}
			h, err := server.New(executor.NewGraphQLExecutor(sch), opts...)
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), log)
			status, body, err := h.Execute(ctx, op)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(body))
			if status != http.StatusOK {
				return errors.Errorf("query failed with status %d", status)
			}
			return nil
		},
	}
	appFlags(cmd, config.LogFlags, queryFlags)
	cmd.Flags().Bool("server.pretty", false, "Pretty-print the JSON result")
	return cmd
}
