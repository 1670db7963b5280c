package canvasnet

import (
	"errors"
	"fmt"
)

// Standard error messages
const (
	// Connection errors
	ErrConnectionClosed     = "transport connection is closed"
	ErrContextCancelled     = "transport context cancelled"
	ErrMessageTooLarge      = "message too large"
	ErrServerAlreadyRunning = "server already running"
	ErrEndpointExists       = "endpoint already mounted"
	ErrEndpointNotFound     = "endpoint not found"
)

// Sentinel errors matched with errors.Is.
var (
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrMalformedMessage     = errors.New("malformed message")
	ErrArgumentCount        = errors.New("wrong number of arguments")
	ErrCanvasClosed         = errors.New("canvas closed")
	ErrQueryCancelled       = errors.New("query cancelled")
	ErrNotQuery             = errors.New("operation does not produce a response")
)

// UnsupportedOperationError is returned when an operation name is absent from
// both the draw and the query tables. No message is sent.
type UnsupportedOperationError struct {
	Op string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported operation %q", e.Op)
}

func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// MalformedMessageError reports an inbound line that could not be parsed.
type MalformedMessageError struct {
	Raw    string
	Reason string
}

func (e *MalformedMessageError) Error() string {
	return fmt.Sprintf("malformed message %q: %s", e.Raw, e.Reason)
}

func (e *MalformedMessageError) Is(target error) bool {
	return target == ErrMalformedMessage
}

// ArgumentCountError is returned when an operation is called with a number of
// arguments outside its accepted range.
type ArgumentCountError struct {
	Op       string
	Got      int
	Min, Max int
}

func (e *ArgumentCountError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("%s: got %d arguments, want %d", e.Op, e.Got, e.Min)
	}
	return fmt.Sprintf("%s: got %d arguments, want %d to %d", e.Op, e.Got, e.Min, e.Max)
}

func (e *ArgumentCountError) Is(target error) bool {
	return target == ErrArgumentCount
}
