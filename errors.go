package botlink

import "github.com/valgard/botlink/internal/errors"

// Re-export error types from internal package

// TransportError indicates the host messaging layer failed during send or
// handler registration.
type TransportError = errors.TransportError

// DecodeError indicates a reply could not be interpreted as the expected type.
type DecodeError = errors.DecodeError

// RemoteError indicates the remote dispatcher replied with an error.
type RemoteError = errors.RemoteError

// BotlinkError is the base interface for all bridge errors.
type BotlinkError = errors.BotlinkError

// Re-export sentinel errors from internal package.
var (
	// ErrCallTimeout indicates no reply arrived within the call window.
	ErrCallTimeout = errors.ErrCallTimeout

	// ErrBridgeClosed indicates the client has been shut down.
	ErrBridgeClosed = errors.ErrBridgeClosed

	// ErrNotStarted indicates the client has not been started.
	ErrNotStarted = errors.ErrNotStarted

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.ErrAlreadyStarted

	// ErrEmptyMethod indicates a call was issued without a method name.
	ErrEmptyMethod = errors.ErrEmptyMethod

	// ErrNilTransport indicates construction without a transport.
	ErrNilTransport = errors.ErrNilTransport
)
