package logging

import (
	"context"

	"go.uber.org/zap"

	eventbus "github.com/hanpama/hellograph/internal/eventbus"
	events "github.com/hanpama/hellograph/internal/events"
	reqid "github.com/hanpama/hellograph/internal/reqid"
)

// Subscribe attaches l to the global event bus as the access log.
func Subscribe(l *zap.Logger) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			l.Info("http request",
				requestID(ctx),
				zap.String("method", e.Request.Method),
				zap.String("path", e.Request.URL.Path),
				zap.Int("status", e.Status),
				zap.Duration("duration", e.Duration),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.RequestRejected) {
			l.Debug("request rejected",
				requestID(ctx),
				zap.Int("status", e.Status),
				zap.String("reason", e.Message),
			)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			l.Debug("graphql operation",
				requestID(ctx),
				zap.String("operation", e.OperationName),
				zap.String("type", e.OperationType),
				zap.Int("status", e.Status),
				zap.Int("errors", len(e.Errors)),
				zap.Duration("duration", e.Duration),
				zap.Error(e.Fault),
			)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func requestID(ctx context.Context) zap.Field {
	id, _ := reqid.FromContext(ctx)
	return zap.String("request_id", id)
}
