package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSubmissionInFlight is returned when a workflow already has a request running
	ErrSubmissionInFlight = errors.New("a submission is already in progress")

	// ErrWorkflowClosed is returned when a workflow is used after its page was left
	ErrWorkflowClosed = errors.New("workflow closed")

	// ErrVisitNotFound is returned when a page visit id is unknown or expired
	ErrVisitNotFound = errors.New("page visit not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)

// User-facing messages.
const (
	MsgNoFile           = "Please choose an image to upload."
	MsgBlankQuestion    = "Please enter a question."
	MsgGenericFailure   = "Something went wrong. Please try again."
	MsgTimeoutFailure   = "The analysis service did not respond in time."
	msgStatusFailureFmt = "Request failed with status code %d"
)

// ValidationError is raised for bad local input. It never reaches the
// transport client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError is a non-success HTTP response from the analysis service.
type TransportError struct {
	StatusCode int
	Detail     string
}

func (e *TransportError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("analysis service returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("analysis service returned %d", e.StatusCode)
}

// NetworkError covers a round trip that could not complete: timeouts,
// connection failures, malformed responses.
type NetworkError struct {
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("analysis service timed out: %v", e.Err)
	}
	return fmt.Sprintf("analysis service unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UserMessage turns any submission error into the message displayed next to
// the form. It never returns an empty string.
func UserMessage(err error) string {
	var vErr *ValidationError
	var tErr *TransportError
	var nErr *NetworkError
	switch {
	case err == nil:
		return MsgGenericFailure
	case errors.As(err, &vErr):
		return vErr.Message
	case errors.As(err, &tErr):
		if tErr.Detail != "" {
			return tErr.Detail
		}
		return fmt.Sprintf(msgStatusFailureFmt, tErr.StatusCode)
	case errors.As(err, &nErr):
		if nErr.Timeout {
			return MsgTimeoutFailure
		}
		return MsgGenericFailure
	default:
		return MsgGenericFailure
	}
}

// ErrorKind classifies err for metrics labels.
func ErrorKind(err error) string {
	var vErr *ValidationError
	var tErr *TransportError
	var nErr *NetworkError
	switch {
	case errors.As(err, &vErr):
		return "validation"
	case errors.As(err, &tErr):
		return "transport"
	case errors.As(err, &nErr):
		return "network"
	default:
		return "internal"
	}
}
