package handshake

import (
	"fmt"
	"http_relay/internal/http/header"
	"http_relay/internal/http/stream"
)

var (
	ErrWriteFailed                 = fmt.Errorf("writing HTTP request failed")
	ErrUnsuccessfulStatus          = fmt.Errorf("HTTP response indicates failure")
	ErrConnectionClosedPrematurely = stream.ErrConnectionClosedPrematurely
	ErrHeaderTooLarge              = stream.ErrHeaderTooLarge
	ErrPolledAfterCompletion       = stream.ErrPolledAfterCompletion
	ErrReadFailed                  = stream.ErrReadFailed
	ErrMalformedResponseHead       = header.ErrMalformedHead
	ErrInvalidRequest              = header.ErrInvalidRequest
)

// StatusError is returned when the server answered with a status other than
// 1xx or 2xx. It matches ErrUnsuccessfulStatus.
type StatusError struct {
	Code   int
	Reason string
}

func (e *StatusError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %d", ErrUnsuccessfulStatus, e.Code)
	}
	return fmt.Sprintf("%s: %d %s", ErrUnsuccessfulStatus, e.Code, e.Reason)
}

func (e *StatusError) Unwrap() error {
	return ErrUnsuccessfulStatus
}
