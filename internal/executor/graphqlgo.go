package executor

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"go.uber.org/zap"

	logging "github.com/hanpama/hellograph/internal/logging"
)

// GraphQLExecutor executes operations against a graphql-go schema.
type GraphQLExecutor struct {
	schema graphql.Schema
}

// NewGraphQLExecutor returns an Executor backed by sch.
func NewGraphQLExecutor(sch graphql.Schema) *GraphQLExecutor {
	return &GraphQLExecutor{schema: sch}
}

func (e *GraphQLExecutor) Execute(ctx context.Context, p Params) *Result {
	log := logging.FromContext(ctx)
	params := graphql.Params{
		Schema:         e.schema,
		RequestString:  p.Query,
		VariableValues: VariablesMap(p.Variables),
		Context:        ctx,
	}
	if p.OperationName != "" {
		params.OperationName = p.OperationName
	}

	log.Debug("executing operation",
		zap.String("operation", p.OperationName),
		zap.Int("query_bytes", len(p.Query)),
		zap.Int("variables", len(params.VariableValues)),
	)
	res := graphql.Do(params)
	out := fromGraphQL(res)
	for _, ge := range out.Errors {
		log.Debug("operation error", zap.String("message", ge.Message), zap.Any("path", ge.Path))
	}
	log.Debug("operation finished",
		zap.Bool("data", out.Data != nil),
		zap.Int("errors", len(out.Errors)),
	)
	return out
}

func fromGraphQL(res *graphql.Result) *Result {
	if res == nil {
		return nil
	}
	out := &Result{}
	// graphql-go leaves a typed-nil map behind on request errors.
	if m, ok := res.Data.(map[string]any); !ok || m != nil {
		out.Data = res.Data
	}
	if len(res.Errors) > 0 {
		out.Errors = make([]GraphQLError, len(res.Errors))
		for i, fe := range res.Errors {
			out.Errors[i] = fromFormatted(fe)
		}
	}
	return out
}

func fromFormatted(fe gqlerrors.FormattedError) GraphQLError {
	ge := GraphQLError{Message: fe.Message, Path: fe.Path, Extensions: fe.Extensions}
	if len(fe.Locations) > 0 {
		ge.Locations = make([]Location, len(fe.Locations))
		for i, l := range fe.Locations {
			ge.Locations[i] = Location{Line: l.Line, Column: l.Column}
		}
	}
	return ge
}
