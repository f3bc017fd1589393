package stoxyapi

import (
	"fmt"
)

// Result is the outcome of one gateway call.
//
// Data is always usable: the decoded payload on success, or the method's
// fallback value when the call failed. Callers that need to tell "empty" from
// "backend down" check Failed.
type Result[T any] struct {
	Data     T
	Err      error
	Fallback bool
}

// Failed reports whether Data is a fallback value
func (r Result[T]) Failed() bool {
	return r.Fallback
}

func success[T any](data T) Result[T] {
	return Result[T]{Data: data}
}

func fallback[T any](data T, err error) Result[T] {
	return Result[T]{Data: data, Err: err, Fallback: true}
}

// HTTPError is returned in Result.Err for non-2xx responses
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}
