package executor

import (
	"fmt"

	"github.com/pkg/errors"
)

// Location is a position in the query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError represents an error that occurred during execution
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// Result represents the result of executing a GraphQL query
type Result struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

var (
	// ErrEmptyResult marks a result carrying neither data nor errors.
	ErrEmptyResult = errors.New("executor returned neither data nor errors")
	// ErrPanic marks an executor call that panicked.
	ErrPanic = errors.New("executor panicked")
)

// ContractError reports an executor that broke the Executor contract.
// It is an internal fault, never a client error.
type ContractError struct {
	Err    error
	Detail string
}

// NewContractError wraps one of the contract sentinels with a detail message.
func NewContractError(err error, detail string) *ContractError {
	return &ContractError{Err: err, Detail: detail}
}

func (e *ContractError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Detail)
}

func (e *ContractError) Unwrap() error { return e.Err }
