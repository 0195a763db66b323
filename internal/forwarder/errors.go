package forwarder

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// Sentinel errors the Forwarder returns for upstream failures. Callers
// use errors.Is against these, never string matching.
var (
	// ErrUpstreamUnreachable indicates the upstream connection was
	// refused or otherwise could not be established.
	ErrUpstreamUnreachable = errors.New("forwarder: upstream unreachable")

	// ErrUpstreamTimeout indicates the upstream did not respond within
	// the configured timeout.
	ErrUpstreamTimeout = errors.New("forwarder: upstream timeout")

	// ErrUpstreamProtocolError indicates the upstream sent a response
	// the HTTP client could not parse.
	ErrUpstreamProtocolError = errors.New("forwarder: upstream protocol error")
)

// classify maps a raw error from http.Client.Do into one of the
// Forwarder's sentinel errors, wrapping the original for diagnostics.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errorsJoin(ErrUpstreamTimeout, err)
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return errorsJoin(ErrUpstreamUnreachable, err)
	}

	msg := err.Error()
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") || strings.Contains(msg, "network is unreachable") {
		return errorsJoin(ErrUpstreamUnreachable, err)
	}
	if strings.Contains(msg, "malformed HTTP") || strings.Contains(msg, "unexpected EOF") || strings.Contains(msg, "transport connection broken") {
		return errorsJoin(ErrUpstreamProtocolError, err)
	}

	return errorsJoin(ErrUpstreamUnreachable, err)
}

// errorsJoin pairs a sentinel with the underlying cause so errors.Is
// against the sentinel still succeeds while the original text survives.
func errorsJoin(sentinel, cause error) error {
	return &classifiedError{sentinel: sentinel, cause: cause}
}

type classifiedError struct {
	sentinel error
	cause    error
}

func (e *classifiedError) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.sentinel
}
