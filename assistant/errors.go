package assistant

import (
	"errors"
	"fmt"
)

// Reason tells why a model response could not be turned into actions.
type Reason int

const (
	EmptyResponse Reason = iota
	MalformedResponse
)

func (r Reason) String() string {
	switch r {
	case EmptyResponse:
		return "empty response"
	case MalformedResponse:
		return "malformed response"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// InterpreterError reports a model response that is unusable.
type InterpreterError struct {
	Reason Reason
	Raw    string // the text returned by the model, if any
	Err    error  // underlying decoding error, if any
}

func (e *InterpreterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("interpreter: %s: %v", e.Reason, e.Err)
	}
	return "interpreter: " + e.Reason.String()
}

func (e *InterpreterError) Unwrap() error { return e.Err }

// NetworkError reports a failed or timed out completion call.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network: %v", e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// isMalformed reports whether err is a MalformedResponse.
func isMalformed(err error) bool {
	var ierr *InterpreterError
	return errors.As(err, &ierr) && ierr.Reason == MalformedResponse
}
