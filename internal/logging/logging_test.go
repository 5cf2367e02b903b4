package logging

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	eventbus "github.com/hanpama/hellograph/internal/eventbus"
	events "github.com/hanpama/hellograph/internal/events"
	reqid "github.com/hanpama/hellograph/internal/reqid"
)

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
	_, err = New(Options{Format: "xml"})
	require.Error(t, err)
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "debug", Format: "json", Output: &buf})
	require.NoError(t, err)
	l.Debug("hello", zap.String("k", "v"))
	require.Contains(t, buf.String(), `"msg":"hello"`)
	require.Contains(t, buf.String(), `"k":"v"`)
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("inside")
	require.Equal(t, 1, logs.Len())

	FromContext(WithLogger(ctx, Discard())).Info("dropped")
	require.Equal(t, 1, logs.Len())

	require.NotNil(t, FromContext(context.Background()))

	var unset context.Context
	require.Same(t, zap.L(), FromContext(unset))
}

func TestSubscribeLogsLifecycle(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	core, logs := observer.New(zapcore.DebugLevel)
	unsub := Subscribe(zap.New(core))
	defer unsub()

	ctx, id := reqid.NewContext(context.Background(), "")
	r := httptest.NewRequest("POST", "/graphql", nil)
	eventbus.Publish(ctx, events.RequestRejected{Request: r, Status: 400, Message: "Must provide query string."})
	eventbus.Publish(ctx, events.GraphQLFinish{OperationName: "Op", Fault: errors.New("boom")})
	eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: 400, Duration: time.Millisecond})

	entries := logs.All()
	require.Len(t, entries, 3)
	require.Equal(t, "request rejected", entries[0].Message)
	require.Equal(t, "graphql operation", entries[1].Message)
	require.Equal(t, "boom", entries[1].ContextMap()["error"])
	require.Equal(t, "http request", entries[2].Message)
	require.Equal(t, id, entries[2].ContextMap()["request_id"])
	require.EqualValues(t, 400, entries[2].ContextMap()["status"])
}
