package executor

import (
	"context"
	"sync"
)

// MockFunc produces a result for a single Execute call.
type MockFunc func(ctx context.Context, p Params) *Result

// Call is a recorded Execute invocation.
type Call struct {
	Query         string
	Variables     *Variables
	OperationName string
}

// MockExecutor implements Executor with a configurable response and a call log.
type MockExecutor struct {
	mu    sync.Mutex
	fn    MockFunc
	calls []Call
}

// NewMockExecutor creates a MockExecutor that answers with fn.
// A nil fn answers every call with a nil Result.
func NewMockExecutor(fn MockFunc) *MockExecutor {
	return &MockExecutor{fn: fn}
}

// NewMockResult returns a MockExecutor that always answers with res.
func NewMockResult(res *Result) *MockExecutor {
	return NewMockExecutor(func(context.Context, Params) *Result { return res })
}

// NewMockData returns a MockExecutor that always answers with data.
func NewMockData(data any) *MockExecutor {
	return NewMockResult(&Result{Data: data})
}

// NewMockErrors returns a MockExecutor that always answers with the given error messages.
func NewMockErrors(messages ...string) *MockExecutor {
	errs := make([]GraphQLError, len(messages))
	for i, m := range messages {
		errs[i] = GraphQLError{Message: m}
	}
	return NewMockResult(&Result{Errors: errs})
}

// SetFunc replaces the response function.
func (m *MockExecutor) SetFunc(fn MockFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
}

// Execute implements Executor.
func (m *MockExecutor) Execute(ctx context.Context, p Params) *Result {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Query: p.Query, Variables: p.Variables, OperationName: p.OperationName})
	fn := m.fn
	m.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(ctx, p)
}

// Calls returns a copy of the recorded calls in order.
func (m *MockExecutor) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears recorded calls.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
