package providers

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable is returned when no upstream source is configured.
var ErrSourceUnavailable = errors.New("poll source unavailable")

// ErrSeasonFilesUnsupported is returned when the configured source cannot list stored poll files.
var ErrSeasonFilesUnsupported = errors.New("source does not list season files")

// TransportError captures failures reaching the upstream API (DNS, refused, timeout, canceled).
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError captures non-2xx responses.
type HTTPStatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// MalformedResponseError captures bodies that are not valid JSON or match no accepted shape.
type MalformedResponseError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	msg := e.Reason
	if msg == "" {
		msg = "malformed response"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Endpoint, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, msg)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// AsTransportError attempts to unwrap an error into a TransportError.
func AsTransportError(err error) (*TransportError, bool) {
	var target *TransportError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// AsHTTPStatusError attempts to unwrap an error into an HTTPStatusError.
func AsHTTPStatusError(err error) (*HTTPStatusError, bool) {
	var target *HTTPStatusError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// AsMalformedResponseError attempts to unwrap an error into a MalformedResponseError.
func AsMalformedResponseError(err error) (*MalformedResponseError, bool) {
	var target *MalformedResponseError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// Outcome classifies an error for metrics and reports.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case isHTTPStatus(err):
		return OutcomeHTTPStatus
	case isMalformed(err):
		return OutcomeMalformed
	default:
		return OutcomeTransport
	}
}

// Outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeHTTPStatus = "http_status"
	OutcomeTransport  = "transport"
	OutcomeMalformed  = "malformed"
)

func isHTTPStatus(err error) bool {
	_, ok := AsHTTPStatusError(err)
	return ok
}

func isMalformed(err error) bool {
	_, ok := AsMalformedResponseError(err)
	return ok
}
