package client

import (
	"context"
	"errors"
	"net"
)

// ErrorKind classifies an upstream call failure at the HTTP-client boundary.
// The orchestrator's fallback decision and the error metrics depend on this
// classification, never on error-string matching.
type ErrorKind string

const (
	KindTimeout    ErrorKind = "timeout"
	KindHTTPStatus ErrorKind = "http_status"
	KindConnection ErrorKind = "connection"
	KindDecode     ErrorKind = "decode"
	KindUnknown    ErrorKind = "unknown"
)

// Classify maps an error returned by an OpenWeatherClient call to its kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return KindHTTPStatus
	}
	if errors.Is(err, errDecode) {
		return KindDecode
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnection
	}
	return KindUnknown
}
