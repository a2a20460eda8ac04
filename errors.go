package respond

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrChainAlreadyRun is returned when a lifecycle hook is registered on
	// a chain that has already fired.
	ErrChainAlreadyRun = errors.New("respond: hook chain already ran")

	// ErrResponseFreed is returned when a response is used after Free.
	ErrResponseFreed = errors.New("respond: response already freed")
)

// InvalidStateError reports a mutation attempted after the response left the
// Initial state. Callers observe this as "response already started".
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("respond: %s: response already started (state %s)", e.Op, e.State)
}

// IsInvalidState reports whether err is or wraps an [*InvalidStateError].
func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}

// FramingError reports a Content-Length contract violation: either more
// bytes were written than declared, or completion happened short of the
// declared length. A response that violates its framing is fatal, it must
// not claim a length it did not deliver.
type FramingError struct {
	Declared int64
	Written  int64
}

func (e *FramingError) Error() string {
	if e.Written > e.Declared {
		return fmt.Sprintf("respond: body exceeds declared content-length: %d > %d", e.Written, e.Declared)
	}

	return fmt.Sprintf("respond: body short of declared content-length: %d < %d", e.Written, e.Declared)
}

// IsFramingViolation reports whether err is or wraps a [*FramingError].
func IsFramingViolation(err error) bool {
	var target *FramingError
	return errors.As(err, &target)
}

// HookError wraps one or more failures from a lifecycle hook chain. A failing
// hook never stops its siblings, so Err may aggregate several failures.
type HookError struct {
	Chain string
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("respond: %s hook failed: %s", e.Chain, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

// AbortError reports that the transport connection was lost or terminated
// mid-response. Writes after an abort fail with this error.
type AbortError struct {
	Reason error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("respond: transport aborted: %s", e.Reason)
}

func (e *AbortError) Unwrap() error { return e.Reason }

// Error carries an HTTP status code for a handler failure. When the
// exception boundary recovers a failure before any header commit it uses
// this status instead of the default 500.
type Error struct {
	status int
	err    error
}

// NewError inits a handler failure with an explicit status code.
func NewError(status int, underlying error) *Error {
	return &Error{status: status, err: underlying}
}

func (e *Error) Status() int { return e.status }

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Error() string {
	text := http.StatusText(e.status)
	if text == "" {
		text = "Unknown"
	}

	return fmt.Sprintf("%s: %s", text, e.err.Error())
}

// StatusOf returns the failure status of err if it is or wraps an [*Error],
// and zero otherwise.
func StatusOf(err error) int {
	var target *Error
	if errors.As(err, &target) {
		return target.Status()
	}

	return 0
}
