package server

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	executor "github.com/hanpama/hellograph/internal/executor"
)

const (
	mediaJSON    = "application/json"
	mediaGraphQL = "application/graphql"
	mediaForm    = "application/x-www-form-urlencoded"
)

// Client error messages. Clients match on these strings.
const (
	MsgInvalidVariables = "Variables are invalid JSON."
	MsgInvalidJSONBody  = "POST body sent invalid JSON."
	MsgMissingQuery     = "Must provide query string."
	MsgInvalidUTF8Body  = "POST body sent invalid UTF-8."
	MsgUndecodableBody  = "Could not decode request body."
	MsgBodyTooLarge     = "Request body too large."
	MsgMethodNotAllowed = "Method not allowed."
	MsgInternal         = "Internal server error."
)

// ClientError is a request the handler refuses before execution.
type ClientError struct {
	Status  int
	Message string
}

func (e *ClientError) Error() string { return e.Message }

func badRequest(msg string) *ClientError {
	return &ClientError{Status: http.StatusBadRequest, Message: msg}
}

// Request is an HTTP request reduced to what normalization reads.
type Request struct {
	Method string
	// MediaType is the Content-Type without parameters, lowercased.
	MediaType string
	// ContentLength is the declared length, -1 when unknown.
	ContentLength int64
	// Body is the request body after Content-Encoding was removed.
	Body []byte
	// Params holds URL query parameters. For form bodies the form fields
	// are merged in and take precedence.
	Params url.Values
}

// Operation is a request normalized into executor input.
type Operation struct {
	Query         string
	Variables     *executor.Variables
	OperationName string
}

// Params converts op into executor parameters.
func (op Operation) Params() executor.Params {
	return executor.Params{Query: op.Query, Variables: op.Variables, OperationName: op.OperationName}
}

// Capture reads r into a Request. maxBody > 0 limits the decoded body size.
func Capture(r *http.Request, maxBody int64) (Request, error) {
	req := Request{
		Method:        r.Method,
		MediaType:     mediaType(r.Header.Get("Content-Type")),
		ContentLength: r.ContentLength,
		Params:        r.URL.Query(),
	}
	if r.Body == nil {
		return req, nil
	}
	defer r.Body.Close()

	var body io.Reader = r.Body
	if strings.EqualFold(strings.TrimSpace(r.Header.Get("Content-Encoding")), "gzip") {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			return Request{}, badRequest(MsgUndecodableBody)
		}
		defer gz.Close()
		body = gz
	}
	if maxBody > 0 {
		body = io.LimitReader(body, maxBody+1)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return Request{}, badRequest(MsgUndecodableBody)
	}
	if maxBody > 0 && int64(len(b)) > maxBody {
		return Request{}, &ClientError{Status: http.StatusRequestEntityTooLarge, Message: MsgBodyTooLarge}
	}
	req.Body = b

	if req.MediaType == mediaForm {
		// Malformed pairs are skipped; whatever parsed is kept.
		form, _ := url.ParseQuery(string(b))
		for k, v := range form {
			req.Params[k] = v
		}
	}
	return req, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
		return strings.ToLower(strings.TrimSpace(mt))
	}
	return mt
}

// NormalizeParams applies the URL parameter precedence rules: a non-empty
// query, variables or operationName parameter fixes that field.
func NormalizeParams(params url.Values) (Operation, error) {
	var op Operation
	op.Query = params.Get("query")
	if v := params.Get("variables"); v != "" {
		vars, err := executor.ParseVariables([]byte(v))
		if err != nil {
			return Operation{}, badRequest(MsgInvalidVariables)
		}
		op.Variables = vars
	}
	op.OperationName = params.Get("operationName")
	return op, nil
}

// Normalize resolves req into an Operation. URL parameters win over body
// fields; the body is interpreted according to its media type.
func Normalize(req Request) (Operation, error) {
	op, err := NormalizeParams(req.Params)
	if err != nil {
		return Operation{}, err
	}
	switch req.MediaType {
	case mediaJSON:
		err = normalizeJSON(req, &op)
	case mediaGraphQL:
		err = normalizeGraphQL(req, &op)
	}
	if err != nil {
		return Operation{}, err
	}
	if op.Query == "" {
		return Operation{}, badRequest(MsgMissingQuery)
	}
	return op, nil
}

type jsonBody = orderedmap.OrderedMap[string, json.RawMessage]

func normalizeJSON(req Request, op *Operation) error {
	if req.ContentLength == 0 || len(req.Body) == 0 {
		return badRequest(MsgInvalidJSONBody)
	}
	if !utf8.Valid(req.Body) || !json.Valid(req.Body) {
		return badRequest(MsgInvalidJSONBody)
	}
	body := orderedmap.New[string, json.RawMessage]()
	if err := body.UnmarshalJSON(req.Body); err != nil {
		return badRequest(MsgInvalidJSONBody)
	}

	if op.Query == "" {
		var q string
		if raw, ok := body.Get("query"); !ok || json.Unmarshal(raw, &q) != nil || q == "" {
			return badRequest(MsgMissingQuery)
		}
		op.Query = q
	}
	if op.Variables == nil {
		vars, err := bodyVariables(body)
		if err != nil {
			return err
		}
		op.Variables = vars
	}
	if op.OperationName == "" {
		var name string
		if raw, ok := body.Get("operationName"); ok && json.Unmarshal(raw, &name) == nil {
			op.OperationName = name
		}
	}
	return nil
}

// bodyVariables decodes the variables field of a JSON body. The field may hold
// an object or a string containing one. Empty values leave variables absent.
func bodyVariables(body *jsonBody) (*executor.Variables, error) {
	raw, ok := body.Get("variables")
	if !ok || emptyJSON(raw) {
		return nil, nil
	}
	doc := []byte(raw)
	var s string
	if json.Unmarshal(raw, &s) == nil {
		doc = []byte(s)
	}
	vars, err := executor.ParseVariables(doc)
	if err != nil {
		return nil, badRequest(MsgInvalidVariables)
	}
	return vars, nil
}

// emptyJSON reports whether raw is null, false, 0, "", [] or {}.
func emptyJSON(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func normalizeGraphQL(req Request, op *Operation) error {
	if op.Query != "" {
		return nil
	}
	if !utf8.Valid(req.Body) {
		return badRequest(MsgInvalidUTF8Body)
	}
	if len(req.Body) == 0 {
		return badRequest(MsgMissingQuery)
	}
	op.Query = string(req.Body)
	return nil
}

// clientError extracts the ClientError from err, if any.
func clientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
