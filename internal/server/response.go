package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"reflect"

	executor "github.com/hanpama/hellograph/internal/executor"
	language "github.com/hanpama/hellograph/internal/language"
)

// response is the JSON document written to clients. Exactly one field is set.
type response struct {
	Data   any            `json:"data,omitempty"`
	Errors []errorMessage `json:"errors,omitempty"`
}

// errorMessage is a GraphQL error reduced to its message.
type errorMessage struct {
	Message string `json:"message"`
}

func (m errorMessage) Error() string { return m.Message }

func errorResponse(messages ...string) response {
	out := response{Errors: make([]errorMessage, len(messages))}
	for i, m := range messages {
		out.Errors[i] = errorMessage{Message: m}
	}
	return out
}

// translate maps an executor result onto a status and response. Data wins
// over errors; a result with neither is a contract fault.
func translate(op Operation, res *executor.Result) (int, response, error) {
	switch {
	case hasData(res.Data):
		return http.StatusOK, response{Data: language.OrderData(op.Query, op.OperationName, res.Data)}, nil
	case len(res.Errors) > 0:
		out := response{Errors: make([]errorMessage, len(res.Errors))}
		for i, e := range res.Errors {
			out.Errors[i] = errorMessage{Message: e.Message}
		}
		return http.StatusBadRequest, out, nil
	default:
		return http.StatusInternalServerError, errorResponse(MsgInternal),
			executor.NewContractError(executor.ErrEmptyResult, "")
	}
}

// hasData reports whether v is a non-empty data value.
func hasData(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func encodeJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) error {
	b, err := encodeJSON(v, pretty)
	if err != nil {
		status = http.StatusInternalServerError
		b, _ = encodeJSON(errorResponse(MsgInternal), pretty)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
	return err
}
