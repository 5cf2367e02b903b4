package executor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func keys(v *Variables) []string {
	var out []string
	for pair := v.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

func TestParseVariablesKeepsOrder(t *testing.T) {
	v, err := ParseVariables([]byte(`{"sides": 9, "dice": 5, "alpha": {"z": 1, "a": 2}}`))
	require.NoError(t, err)
	require.Equal(t, []string{"sides", "dice", "alpha"}, keys(v))

	out, err := json.Marshal(v)
	require.NoError(t, err)
	require.Equal(t, `{"sides":9,"dice":5,"alpha":{"a":2,"z":1}}`, string(out))
}

func TestParseVariablesNull(t *testing.T) {
	v, err := ParseVariables([]byte(" null "))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestParseVariablesRejects(t *testing.T) {
	for _, in := range []string{``, `{`, `[1,2]`, `"x"`, `5`, `{"a":1} trailing`, `{'a': 1}`} {
		_, err := ParseVariables([]byte(in))
		require.Error(t, err, "input %q", in)
		require.True(t, errors.Is(err, ErrInvalidVariables), "input %q: %v", in, err)
	}
}

// Encoding a parsed variables object and parsing it again yields the same object.
func TestVariablesReencodeIsIdempotent(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"dice": 8, "sides": 9}`,
		`{"b": [1, {"x": null}], "a": "s", "c": true, "d": 1.5}`,
	}
	for _, in := range inputs {
		direct, err := ParseVariables([]byte(in))
		require.NoError(t, err)
		enc, err := json.Marshal(direct)
		require.NoError(t, err)
		again, err := ParseVariables(enc)
		require.NoError(t, err)
		require.Equal(t, keys(direct), keys(again))
		if diff := cmp.Diff(VariablesMap(direct), VariablesMap(again)); diff != "" {
			t.Fatalf("re-encoded variables mismatch for %s (-direct +again):\n%s", in, diff)
		}
	}
}

func TestVariablesMap(t *testing.T) {
	require.Nil(t, VariablesMap(nil))
	v, err := ParseVariables([]byte(`{"dice": 5}`))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"dice": float64(5)}, VariablesMap(v))
}

func TestContractError(t *testing.T) {
	err := error(NewContractError(ErrEmptyResult, "mock"))
	require.True(t, errors.Is(err, ErrEmptyResult))
	require.False(t, errors.Is(err, ErrPanic))
	require.Equal(t, "executor returned neither data nor errors: mock", err.Error())

	var ce *ContractError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "executor panicked", NewContractError(ErrPanic, "").Error())
}

func TestMockExecutorRecordsCalls(t *testing.T) {
	m := NewMockData(map[string]any{"hello": "world"})
	vars, _ := ParseVariables([]byte(`{"a":1}`))
	res := m.Execute(context.Background(), Params{Query: "{hello}", Variables: vars, OperationName: "Op"})
	require.Equal(t, map[string]any{"hello": "world"}, res.Data)

	calls := m.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "{hello}", calls[0].Query)
	require.Equal(t, "Op", calls[0].OperationName)
	require.Same(t, vars, calls[0].Variables)

	m.Reset()
	require.Empty(t, m.Calls())

	require.Nil(t, NewMockExecutor(nil).Execute(context.Background(), Params{Query: "{a}"}))
	errs := NewMockErrors("a", "b").Execute(context.Background(), Params{Query: "{a}"})
	require.Equal(t, []GraphQLError{{Message: "a"}, {Message: "b"}}, errs.Errors)
}
