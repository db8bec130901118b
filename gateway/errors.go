package gateway

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("gateway: not found")
	ErrUnavailable   = errors.New("gateway: unavailable")
	ErrTooLarge      = errors.New("gateway: response too large")
	ErrCIDMismatch   = errors.New("gateway: cid mismatch")
	ErrNoAccessPoint = errors.New("gateway: no access points configured")
)

// StatusError carries the HTTP status of a failed gateway response.
// It unwraps to ErrNotFound for 404/410 and ErrUnavailable otherwise.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway: %s: status %d", e.URL, e.Code)
}

func (e *StatusError) Unwrap() error {
	if e.Code == 404 || e.Code == 410 {
		return ErrNotFound
	}
	return ErrUnavailable
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
