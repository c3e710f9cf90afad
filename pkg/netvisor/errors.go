package netvisor

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Sentinels matched with errors.Is against the typed errors below
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrTransport         = errors.New("transport failure")
	ErrProtocol          = errors.New("protocol failure")
	ErrRemoteRejected    = errors.New("rejected by netvisor")
)

// ConfigError is an invalid client configuration
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("netvisor: invalid configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TransportError is a failure to complete the HTTP exchange: network
// errors, timeouts, cancellation and non-2xx responses. StatusCode is zero
// when no response was received.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("netvisor: %s %s: HTTP %d: %v", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("netvisor: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// Timeout reports whether the call failed because its deadline passed
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ProtocolError is a response that is not well-formed XML or lacks the
// response envelope
type ProtocolError struct {
	Resource string
	Err      error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("netvisor: %s: unreadable response: %v", e.Resource, e.Err)
}

func (e *ProtocolError) Unwrap() []error {
	return []error{ErrProtocol, e.Err}
}

// RemoteError is a response whose status is not OK. The fields are the
// service's values verbatim.
type RemoteError struct {
	Resource  string
	Status    string
	Code      string
	Message   string
	Detail    string
	Timestamp string
}

func (e *RemoteError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("netvisor: %s: status %s", e.Resource, e.Status)
	}
	return fmt.Sprintf("netvisor: %s: status %s: %s", e.Resource, e.Status, e.Detail)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteRejected
}
