// Package server implements the GraphQL HTTP endpoint: it normalizes the
// supported request encodings into one operation, runs it through an
// executor.Executor and writes the JSON result.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	eventbus "github.com/hanpama/hellograph/internal/eventbus"
	events "github.com/hanpama/hellograph/internal/events"
	executor "github.com/hanpama/hellograph/internal/executor"
	language "github.com/hanpama/hellograph/internal/language"
	logging "github.com/hanpama/hellograph/internal/logging"
	reqid "github.com/hanpama/hellograph/internal/reqid"
)

// Handler is an http.Handler that serves a GraphQL endpoint.
type Handler struct {
	exec executor.Executor
	opt  Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the decoded size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// Logger is the base request logger. Nil means the logger carried by the
	// request context.
	Logger *zap.Logger

	// ExecutorDiagnostics lets the executor log through the request logger.
	// By default its diagnostics are discarded.
	ExecutorDiagnostics bool
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}
func WithLogger(l *zap.Logger) Option { return func(o *Options) { o.Logger = l } }
func WithExecutorDiagnostics() Option { return func(o *Options) { o.ExecutorDiagnostics = true } }

// New creates a GraphQL HTTP handler running operations on exec.
func New(exec executor.Executor, opts ...Option) (*Handler, error) {
	if exec == nil {
		return nil, errors.New("server: nil executor")
	}
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	if op.MaxBodyBytes < 0 {
		return nil, errors.Errorf("server: negative MaxBodyBytes %d", op.MaxBodyBytes)
	}
	return &Handler{exec: exec, opt: op}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, rid := reqid.NewContext(ctx, r.Header.Get(reqid.Header))
	base := h.opt.Logger
	if base == nil {
		base = logging.FromContext(ctx)
	}
	ctx = logging.WithLogger(ctx, base.With(zap.String("request_id", rid)))
	w.Header().Set(reqid.Header, rid)

	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if h.opt.CORS.enabled() {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	switch r.Method {
	case http.MethodPost:
	case http.MethodOptions:
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		status = h.reject(ctx, w, r, &ClientError{Status: http.StatusMethodNotAllowed, Message: MsgMethodNotAllowed})
		return
	}

	// URL variables are checked before the body is read.
	if _, err := NormalizeParams(r.URL.Query()); err != nil {
		status = h.rejectErr(ctx, w, r, err)
		return
	}
	req, err := Capture(r, h.opt.MaxBodyBytes)
	if err != nil {
		status = h.rejectErr(ctx, w, r, err)
		return
	}
	op, err := Normalize(req)
	if err != nil {
		status = h.rejectErr(ctx, w, r, err)
		return
	}
	status = h.serveOperation(ctx, w, op)
}

func (h *Handler) rejectErr(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) int {
	ce, ok := clientError(err)
	if !ok {
		ce = badRequest(err.Error())
	}
	return h.reject(ctx, w, r, ce)
}

func (h *Handler) reject(ctx context.Context, w http.ResponseWriter, r *http.Request, ce *ClientError) int {
	eventbus.Publish(ctx, events.RequestRejected{Request: r, Status: ce.Status, Message: ce.Message})
	h.write(ctx, w, ce.Status, errorResponse(ce.Message))
	return ce.Status
}

func (h *Handler) serveOperation(ctx context.Context, w http.ResponseWriter, op Operation) int {
	opType := language.OperationType(op.Query, op.OperationName)
	start := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{Query: op.Query, OperationName: op.OperationName, OperationType: opType})

	status, body, err := h.execute(ctx, op)
	if err != nil {
		logging.FromContext(ctx).Error("executor contract violated",
			zap.String("operation", op.OperationName),
			zap.Error(err),
		)
	}
	var errs []error
	if status == http.StatusBadRequest {
		errs = make([]error, len(body.Errors))
		for i := range body.Errors {
			errs[i] = body.Errors[i]
		}
	}
	eventbus.Publish(ctx, events.GraphQLFinish{
		Query:         op.Query,
		OperationName: op.OperationName,
		OperationType: opType,
		Status:        status,
		Errors:        errs,
		Fault:         err,
		Duration:      time.Since(start),
	})
	return h.write(ctx, w, status, body)
}

// Execute runs op outside of HTTP and returns the status and encoded body the
// endpoint would have answered with.
func (h *Handler) Execute(ctx context.Context, op Operation) (status int, body []byte, err error) {
	resp := errorResponse(MsgMissingQuery)
	status = http.StatusBadRequest
	if op.Query != "" {
		status, resp, err = h.execute(ctx, op)
	}
	b, encErr := encodeJSON(resp, h.opt.Pretty)
	if encErr != nil {
		return http.StatusInternalServerError, nil, errors.Wrap(encErr, "encode response")
	}
	return status, b, err
}

// execute runs op and translates the result. A non-nil error is always a
// *executor.ContractError and comes with a 500 response.
func (h *Handler) execute(ctx context.Context, op Operation) (status int, body response, err error) {
	execCtx := ctx
	if !h.opt.ExecutorDiagnostics {
		execCtx = logging.WithLogger(ctx, logging.Discard())
	}
	res, err := h.run(execCtx, op)
	if err != nil {
		return http.StatusInternalServerError, errorResponse(MsgInternal), err
	}
	return translate(op, res)
}

func (h *Handler) run(ctx context.Context, op Operation) (res *executor.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, executor.NewContractError(executor.ErrPanic, fmt.Sprint(p))
		}
	}()
	res = h.exec.Execute(ctx, op.Params())
	if res == nil {
		return nil, executor.NewContractError(executor.ErrEmptyResult, "nil result")
	}
	return res, nil
}

func (h *Handler) write(ctx context.Context, w http.ResponseWriter, status int, body response) int {
	if err := writeJSON(w, status, body, h.opt.Pretty); err != nil {
		logging.FromContext(ctx).Error("encode response", zap.Error(err))
		return http.StatusInternalServerError
	}
	return status
}
