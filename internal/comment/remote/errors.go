package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers unreachable hosts, timeouts and non-success statuses.
	ErrTransport = errors.New("transport error")
	// ErrAuth covers missing, rejected or expired bearer tokens.
	ErrAuth = errors.New("auth error")
	// ErrNoToken is returned without sending anything when an authenticated
	// call has no token available.
	ErrNoToken = fmt.Errorf("%w: no token", ErrAuth)
)

// Error describes a failed call to the book service.
type Error struct {
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func statusErr(op string, status int, body string) error {
	kind := ErrTransport
	if status == 401 || status == 403 {
		kind = ErrAuth
	}
	if body != "" {
		kind = fmt.Errorf("%w: %s", kind, body)
	}
	return &Error{Op: op, Status: status, Err: kind}
}

func transportErr(op string, err error) error {
	return &Error{Op: op, Err: fmt.Errorf("%w: %v", ErrTransport, err)}
}
