package errors

import (
	"errors"
	"fmt"
)

// BotlinkError is the base interface for all bridge errors.
type BotlinkError interface {
	error
	IsBotlinkError() bool
}

// Compile-time verification that all error types implement BotlinkError.
var (
	_ BotlinkError = (*TransportError)(nil)
	_ BotlinkError = (*DecodeError)(nil)
	_ BotlinkError = (*RemoteError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrCallTimeout indicates no reply arrived within the call window.
	ErrCallTimeout = errors.New("call timeout")

	// ErrBridgeClosed indicates the bridge has been shut down.
	ErrBridgeClosed = errors.New("bridge closed")

	// ErrNotStarted indicates the client has not been started.
	ErrNotStarted = errors.New("client not started")

	// ErrAlreadyStarted indicates Start was called on a running client.
	ErrAlreadyStarted = errors.New("client already started")

	// ErrEmptyMethod indicates a call was issued without a method name.
	ErrEmptyMethod = errors.New("empty method name")

	// ErrNilTransport indicates a client or dispatcher was constructed without a transport.
	ErrNilTransport = errors.New("nil transport")
)

// TransportError indicates the transport failed during send or handler
// registration.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsBotlinkError implements BotlinkError.
func (e *TransportError) IsBotlinkError() bool { return true }

// DecodeError indicates a reply payload could not be interpreted as the
// caller's expected result type. The raw value that failed to decode is
// preserved for diagnostics.
type DecodeError struct {
	Method string
	Value  any
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode reply for %s: %v", e.Method, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsBotlinkError implements BotlinkError.
func (e *DecodeError) IsBotlinkError() bool { return true }

// RemoteError indicates the remote dispatcher replied with an error subtype.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error from %s: %s", e.Method, e.Message)
}

// IsBotlinkError implements BotlinkError.
func (e *RemoteError) IsBotlinkError() bool { return true }
