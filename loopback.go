package botlink

import (
	"fmt"
	"sync"
)

// Loopback returns two connected in-process transports: what one end sends
// on a channel is delivered synchronously to the handler the other end
// registered for that channel. A channel with no handler on the far end
// swallows the payload, matching the host's fire-and-forget semantics.
//
// Typical use binds a Client to one end and a Dispatcher to the other, for
// tests or for running both halves in a single process.
func Loopback() (Transport, Transport) {
	a := &loopbackEnd{handlers: make(map[Channel]Handler, 2)}
	b := &loopbackEnd{handlers: make(map[Channel]Handler, 2)}
	a.peer = b
	b.peer = a

	return a, b
}

// loopbackEnd is one side of a Loopback pair.
type loopbackEnd struct {
	peer *loopbackEnd

	mu       sync.Mutex
	handlers map[Channel]Handler
	closed   bool
}

func (e *loopbackEnd) Send(channel Channel, payload []byte) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()

	if closed {
		return fmt.Errorf("loopback transport closed")
	}

	e.peer.mu.Lock()
	handler := e.peer.handlers[channel]
	closed = e.peer.closed
	e.peer.mu.Unlock()

	// No receiver is not an error: delivery is unacknowledged.
	if closed || handler == nil {
		return nil
	}

	// Handlers see their own copy; senders may reuse the buffer.
	buf := make([]byte, len(payload))
	copy(buf, payload)

	handler(buf)

	return nil
}

func (e *loopbackEnd) RegisterHandler(channel Channel, handler Handler) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("loopback transport closed")
	}

	e.handlers[channel] = handler

	return nil
}

func (e *loopbackEnd) UnregisterHandler(channel Channel) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("loopback transport closed")
	}

	delete(e.handlers, channel)

	return nil
}

func (e *loopbackEnd) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.handlers = make(map[Channel]Handler)

	return nil
}
