package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "github.com/hanpama/hellograph/internal/config"
	eventbus "github.com/hanpama/hellograph/internal/eventbus"
	executor "github.com/hanpama/hellograph/internal/executor"
	logging "github.com/hanpama/hellograph/internal/logging"
	metrics "github.com/hanpama/hellograph/internal/metrics"
	otel "github.com/hanpama/hellograph/internal/otel"
	schema "github.com/hanpama/hellograph/internal/schema"
	server "github.com/hanpama/hellograph/internal/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP GraphQL endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log, err := newLogger(cmd, cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return serve(cmd.Context(), cfg, log)
		},
	}
	appFlags(cmd, config.LogFlags, config.ServeFlags)
	return cmd
}

// newMux wires the GraphQL endpoint and, when enabled, the metrics endpoint.
// The returned function detaches the event subscribers.
func newMux(cfg *config.Config, log *zap.Logger) (http.Handler, func(), error) {
	app, ok := schema.Lookup(cfg.GraphQL.App)
	if !ok {
		return nil, nil, errors.Errorf("unknown app %q", cfg.GraphQL.App)
	}
	sch, err := schema.Build(app)
	if err != nil {
		return nil, nil, err
	}

	opts := []server.Option{
		server.WithTimeout(cfg.Server.Timeout),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithLogger(log),
	}
	if cfg.Server.Pretty {
		opts = append(opts, server.WithPretty())
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		opts = append(opts, server.WithCORS(cfg.Server.CORSOrigins...))
	}
	h, err := server.New(executor.NewGraphQLExecutor(sch), opts...)
	if err != nil {
		return nil, nil, errors.Wrap(err, "server init")
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, h)
	unsubs := []func(){logging.Subscribe(log)}
	if cfg.Metrics.Enabled {
		reg := metrics.NewRegistry()
		unsubs = append(unsubs, reg.Subscribe())
		mux.Handle(cfg.Metrics.Path, reg.Handler())
	}
	return mux, func() {
		for _, u := range unsubs {
			u()
		}
	}, nil
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	shutdownTracing, err := otel.Setup(ctx, otel.Options{Endpoint: cfg.Otel.Endpoint, Service: cfg.Otel.Service})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("otel shutdown", zap.Error(err))
		}
	}()

	mux, detach, err := newMux(cfg, log)
	if err != nil {
		return err
	}
	defer detach()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(log),
	}
	log.Info("GraphQL server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("path", cfg.Server.Path),
		zap.String("app", cfg.GraphQL.App),
	)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	log.Info("GraphQL server stopped")
	return nil
}
