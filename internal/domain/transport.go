package domain

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// TransportErrorKind is a high-level classification of network failures.
type TransportErrorKind string

const (
	TransportUnknown   TransportErrorKind = "unknown"
	TransportTimeout   TransportErrorKind = "timeout"
	TransportDNS       TransportErrorKind = "dns"
	TransportConn      TransportErrorKind = "connection"
	TransportCanceled  TransportErrorKind = "canceled"
	TransportMalformed TransportErrorKind = "malformed_response"
)

// TransportError is a network-level failure: no usable response was received.
type TransportError struct {
	Kind TransportErrorKind
	Err  error
}

func NewTransportError(err error) *TransportError {
	return &TransportError{Kind: ClassifyTransport(err), Err: err}
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ClassifyTransport maps a client error onto a TransportErrorKind.
func ClassifyTransport(err error) TransportErrorKind {
	if err == nil {
		return TransportUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TransportTimeout
	}
	if errors.Is(err, context.Canceled) {
		return TransportCanceled
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return TransportDNS
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return TransportTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.ETIMEDOUT) {
		return TransportConn
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return TransportConn
	}

	return TransportUnknown
}
