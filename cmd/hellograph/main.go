package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	config "github.com/hanpama/hellograph/internal/config"
	logging "github.com/hanpama/hellograph/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "hellograph",
		Short:         "GraphQL over HTTP for the hellograph demo schemas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().String("config", "",
		"Configuration file. Overridden by environment variables and flags.")

	root.AddCommand(
		newServeCmd(),
		newQueryCmd(),
		newPrintSchemaCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig binds cmd's flags to a fresh viper instance and loads the config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return nil, err
	}
	file, _ := cmd.Flags().GetString("config")
	return config.Load(v, file)
}

// newLogger builds the process logger. Without a log file, output goes to the
// command's error stream.
func newLogger(cmd *cobra.Command, c config.Log) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:  c.Level,
		Format: c.Format,
		File:   c.File,
		Output: cmd.ErrOrStderr(),
	})
}

func appFlags(cmd *cobra.Command, extra ...func(*pflag.FlagSet)) {
	config.AppFlags(cmd.Flags())
	for _, f := range extra {
		f(cmd.Flags())
	}
}
