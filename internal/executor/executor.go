package executor

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Executor runs one GraphQL operation to completion.
//
// Implementations must be safe for concurrent use and must return a Result
// with Data or Errors populated for any call they accept.
// Diagnostic output belongs on the logger carried by ctx
// (see logging.FromContext); callers may silence it by swapping that logger.
type Executor interface {
	Execute(ctx context.Context, p Params) *Result
}

// Params is a normalized GraphQL operation.
type Params struct {
	// Query is the GraphQL document source. Never empty.
	Query string
	// Variables holds the variable values in client order. Nil means none were supplied.
	Variables *Variables
	// OperationName selects an operation in a multi-operation document.
	// Empty means none was supplied.
	OperationName string
}

// Variables is a JSON object whose top-level keys keep their insertion order.
type Variables = orderedmap.OrderedMap[string, any]

// ErrInvalidVariables is returned by ParseVariables for malformed input.
var ErrInvalidVariables = errors.New("variables are not a JSON object")

// ParseVariables decodes raw as a variables object. The JSON literal null
// decodes to nil with no error.
func ParseVariables(raw []byte) (*Variables, error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, ErrInvalidVariables
	}
	vars := orderedmap.New[string, any]()
	if err := vars.UnmarshalJSON(raw); err != nil {
		return nil, errors.Wrap(ErrInvalidVariables, err.Error())
	}
	return vars, nil
}

// VariablesMap flattens v into a plain map. It returns nil for nil v.
func VariablesMap(v *Variables) map[string]any {
	if v == nil {
		return nil
	}
	out := make(map[string]any, v.Len())
	for pair := v.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}
