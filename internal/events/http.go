package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when an HTTP request is received.
// Context carries the request context.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted after the handler has written its response.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}

// RequestRejected is emitted when a request is answered with a client error
// before any execution was attempted.
type RequestRejected struct {
	Request *http.Request
	Status  int
	Message string
}
