// Package executor defines the boundary between the HTTP layer and the
// engine that parses, validates and runs GraphQL documents.
//
// The HTTP layer only ever sees the Executor interface: it hands over a
// normalized operation (query text, ordered variables, optional operation
// name) and receives a Result. Everything past that boundary, including
// validation rules and resolver scheduling, belongs to the engine.
//
// # Result contract
//
// A well-formed Result has Data, Errors, or both populated. A Result
// with neither is a defect in the engine, not a client mistake; callers
// surface it as a *ContractError wrapping ErrEmptyResult and must never turn
// it into an empty success. A panic escaping Execute is reported the same way
// with ErrPanic.
//
// # Diagnostics
//
// Engines write diagnostics to logging.FromContext(ctx). Callers that must keep
// an engine quiet derive a context carrying logging.Discard() for the single
// call.
//
// # Implementations
//
//   - GraphQLExecutor runs documents with github.com/graphql-go/graphql.
//   - MockExecutor records calls and replays canned results for tests.
package executor
