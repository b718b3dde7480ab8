package config

// Handler receives the raw payload of an inbound message on a channel.
// The transport invokes it from its own delivery context; handlers must not
// block and must not panic past their boundary.
type Handler func(payload []byte)

// Transport defines the interface for the host's one-way broadcast messaging.
// Implement this to bind the bridge to a real game host; the loopback pair in
// the root package serves tests and in-process use.
//
// Delivery is at-most-once and unacknowledged: a sent payload may never
// arrive, and nothing correlates it to earlier traffic. The bridge layers
// request IDs on top.
type Transport interface {
	// Send transmits a payload on the given channel. Fire-and-forget:
	// a nil error means the payload was handed to the host, not that
	// anyone received it.
	Send(channel Channel, payload []byte) error

	// RegisterHandler subscribes a handler to inbound payloads on a channel.
	// At most one handler per channel; registering again replaces it.
	RegisterHandler(channel Channel, handler Handler) error

	// UnregisterHandler removes the handler for a channel.
	// Removing a channel with no handler is a no-op.
	UnregisterHandler(channel Channel) error

	// Close releases transport resources. Safe to call multiple times.
	Close() error
}
