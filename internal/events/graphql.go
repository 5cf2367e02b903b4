package events

import "time"

// GraphQLStart is emitted before a normalized operation is handed to the executor.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is emitted once the executor result has been translated.
// Fault is set when the executor broke its result contract; Status is then 500.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Status        int
	Errors        []error
	Fault         error
	Duration      time.Duration
}
