package backend

import (
	"fmt"
	"time"
)

// RequestError indicates the backend answered with a non-2xx status.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// TimeoutError indicates a single request produced no response within
// the configured per-call timeout.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no response from backend within %s", e.Timeout)
}

// PollTimeoutError indicates the poll attempt budget was exhausted
// without the operation reaching a terminal status.
type PollTimeoutError struct {
	Attempts int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("operation did not complete after %d status checks", e.Attempts)
}

// OperationFailedError indicates the backend reported a failure status
// for an asynchronous operation.
type OperationFailedError struct {
	Status string
	Reason string
}

func (e *OperationFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("operation failed with status %q", e.Status)
	}

	return fmt.Sprintf("operation failed with status %q: %s", e.Status, e.Reason)
}
