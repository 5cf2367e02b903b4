package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/hellograph/internal/executor"
)

func jsonRequest(body string, params url.Values) Request {
	return Request{
		Method:        http.MethodPost,
		MediaType:     mediaJSON,
		ContentLength: int64(len(body)),
		Body:          []byte(body),
		Params:        params,
	}
}

func TestMediaType(t *testing.T) {
	cases := map[string]string{
		"":                                  "",
		"application/json":                  "application/json",
		"Application/JSON; charset=UTF-8":   "application/json",
		"application/graphql;charset=utf-8": "application/graphql",
		"application/json; broken=":         "application/json",
	}
	for in, want := range cases {
		require.Equal(t, want, mediaType(in), in)
	}
}

func TestNormalizeParams(t *testing.T) {
	op, err := NormalizeParams(url.Values{
		"query":         {"{a}", "{ignored}"},
		"variables":     {`{"z":1,"a":2}`},
		"operationName": {"A"},
	})
	require.NoError(t, err)
	require.Equal(t, "{a}", op.Query)
	require.Equal(t, "A", op.OperationName)
	require.Equal(t, "z", op.Variables.Oldest().Key)

	op, err = NormalizeParams(url.Values{"variables": {"null"}})
	require.NoError(t, err)
	require.Nil(t, op.Variables)

	_, err = NormalizeParams(url.Values{"variables": {"[1,2]"}})
	ce, ok := clientError(err)
	require.True(t, ok)
	require.Equal(t, MsgInvalidVariables, ce.Message)
	require.Equal(t, http.StatusBadRequest, ce.Status)
}

func TestNormalizeJSONOperationName(t *testing.T) {
	op, err := Normalize(jsonRequest(`{"query":"{a}","operationName":"B"}`, url.Values{}))
	require.NoError(t, err)
	require.Equal(t, "B", op.OperationName)

	op, err = Normalize(jsonRequest(`{"query":"{a}","operationName":null}`, url.Values{}))
	require.NoError(t, err)
	require.Empty(t, op.OperationName)

	op, err = Normalize(jsonRequest(`{"query":"{a}","operationName":7}`, url.Values{}))
	require.NoError(t, err)
	require.Empty(t, op.OperationName)
}

func TestNormalizeJSONDeclaredEmpty(t *testing.T) {
	req := jsonRequest(`{"query":"{a}"}`, url.Values{"query": {"{b}"}})
	req.ContentLength = 0
	_, err := Normalize(req)
	ce, _ := clientError(err)
	require.Equal(t, MsgInvalidJSONBody, ce.Message)

	req.ContentLength = -1
	op, err := Normalize(req)
	require.NoError(t, err)
	require.Equal(t, "{b}", op.Query)
}

// Re-encoding the variables field and parsing the text again must give the
// same ordered object as parsing the sub-object directly.
func TestVariablesDoubleEncodeIsIdempotent(t *testing.T) {
	docs := []string{
		`{"dice":5}`,
		`{"b":1,"a":2,"c":3}`,
		`{"nested":{"z":[1,{"y":null}],"a":"x"},"list":[true,false],"s":"é\"q"}`,
		`{"n":1.5e3,"neg":-0.25,"big":12345678901234}`,
	}
	for _, doc := range docs {
		direct, err := executor.ParseVariables([]byte(doc))
		require.NoError(t, err)
		want, err := direct.MarshalJSON()
		require.NoError(t, err)

		encoded, err := json.Marshal(doc)
		require.NoError(t, err)
		for _, field := range []string{doc, string(encoded)} {
			op, err := Normalize(jsonRequest(`{"query":"{a}","variables":`+field+`}`, url.Values{}))
			require.NoError(t, err, field)
			got, err := op.Variables.MarshalJSON()
			require.NoError(t, err)
			require.Equal(t, string(want), string(got), field)
		}
	}
}

func TestCaptureForm(t *testing.T) {
	r := httptest.NewRequest("POST", "/graphql?query=url&operationName=Keep", strings.NewReader("query=form&bad=%zz"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	req, err := Capture(r, 0)
	require.NoError(t, err)
	require.Equal(t, mediaForm, req.MediaType)
	require.Equal(t, "form", req.Params.Get("query"))
	require.Equal(t, "Keep", req.Params.Get("operationName"))
}

func TestCaptureNoBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/graphql?query={a}", nil)
	req, err := Capture(r, 10)
	require.NoError(t, err)
	require.Empty(t, req.Body)
	require.Equal(t, "{a}", req.Params.Get("query"))
}

func TestClientErrorFromForeignError(t *testing.T) {
	_, ok := clientError(executor.ErrInvalidVariables)
	require.False(t, ok)
}
