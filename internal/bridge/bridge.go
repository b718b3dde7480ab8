package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/valgard/botlink/internal/config"
	"github.com/valgard/botlink/internal/errors"
	"github.com/valgard/botlink/internal/wire"
)

// Bridge turns the one-way message transport into request/response call
// semantics.
//
// The Bridge handles:
//   - Sending bot_request envelopes with unique request IDs
//   - Receiving and routing bot_response envelopes to waiting calls
//   - Timeout enforcement per call
//   - Failing all outstanding calls on shutdown
//
// The Bridge must be started with Start() before use; Start registers its
// inbound handler on the response channel.
type Bridge struct {
	log       *slog.Logger
	transport config.Transport

	requestChannel  config.Channel
	responseChannel config.Channel

	// Call tracking
	pendingMu sync.Mutex
	pending   map[string]chan *wire.Reply

	// Lifecycle management
	startMu   sync.Mutex
	started   bool
	closeOnce sync.Once
	done      chan struct{}
}

// New creates a bridge over the given transport. The transport must outlive
// the bridge; the bridge never closes it.
func New(log *slog.Logger, transport config.Transport, requestChannel, responseChannel config.Channel) *Bridge {
	return &Bridge{
		log:             log.With("component", "bridge"),
		transport:       transport,
		requestChannel:  requestChannel,
		responseChannel: responseChannel,
		pending:         make(map[string]chan *wire.Reply, 8),
		done:            make(chan struct{}),
	}
}

// Start registers the inbound reply handler on the response channel.
// Start must be called exactly once before Invoke.
func (b *Bridge) Start() error {
	b.startMu.Lock()
	defer b.startMu.Unlock()

	if b.started {
		return errors.ErrAlreadyStarted
	}

	if err := b.transport.RegisterHandler(b.responseChannel, b.handleInbound); err != nil {
		return &errors.TransportError{Op: "register", Err: err}
	}

	b.started = true
	b.log.Info("Bridge started",
		"request_channel", b.requestChannel,
		"response_channel", b.responseChannel,
	)

	return nil
}

// Stop shuts the bridge down: the inbound handler is unregistered and every
// outstanding call fails with ErrBridgeClosed. Safe to call multiple times,
// and never panics even if the transport is already gone.
func (b *Bridge) Stop() {
	b.closeOnce.Do(func() {
		b.log.Debug("Stopping bridge")

		close(b.done)

		b.startMu.Lock()
		started := b.started
		b.startMu.Unlock()

		if started {
			if err := b.transport.UnregisterHandler(b.responseChannel); err != nil {
				// Transport may already be torn down; log and continue.
				b.log.Warn("Failed to unregister reply handler", "error", err)
			}
		}

		b.log.Info("Bridge stopped")
	})
}

// Done returns a channel that is closed when the bridge stops.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Invoke sends a method invocation and blocks until the matching reply
// arrives, the timeout elapses, the context is cancelled, or the bridge
// stops.
//
// The returned reply is always a success reply; error replies surface as
// *errors.RemoteError. Concurrent invocations are correlated by request ID
// and never observe each other's replies.
func (b *Bridge) Invoke(
	ctx context.Context,
	method string,
	args []any,
	timeout time.Duration,
) (*wire.Reply, error) {
	if method == "" {
		return nil, errors.ErrEmptyMethod
	}

	b.startMu.Lock()
	started := b.started
	b.startMu.Unlock()

	if !started {
		return nil, errors.ErrNotStarted
	}

	select {
	case <-b.done:
		return nil, errors.ErrBridgeClosed
	default:
	}

	requestID := ulid.Make().String()

	b.log.Debug("Sending request", "request_id", requestID, "method", method)

	replyChan := make(chan *wire.Reply, 1)

	b.pendingMu.Lock()
	b.pending[requestID] = replyChan
	b.pendingMu.Unlock()

	data, err := json.Marshal(wire.NewRequest(requestID, method, args))
	if err != nil {
		b.removePending(requestID)

		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := b.transport.Send(b.requestChannel, data); err != nil {
		b.removePending(requestID)
		b.log.Error("Failed to send request", "request_id", requestID, "error", err)

		return nil, &errors.TransportError{Op: "send", Err: err}
	}

	b.log.Debug("Request sent, waiting for reply", "request_id", requestID)

	select {
	case reply := <-replyChan:
		if reply.IsError() {
			errMsg := reply.ErrorMessage()
			b.log.Warn("Request returned error", "request_id", requestID, "error", errMsg)

			return nil, &errors.RemoteError{Method: method, Message: errMsg}
		}

		b.log.Debug("Received reply", "request_id", requestID)

		return reply, nil

	case <-b.done:
		b.removePending(requestID)
		b.log.Debug("Bridge stopped during request", "request_id", requestID)

		return nil, errors.ErrBridgeClosed

	case <-time.After(timeout):
		b.removePending(requestID)
		b.log.Warn("Request timed out", "request_id", requestID, "method", method, "timeout", timeout)

		return nil, fmt.Errorf("%w after %s", errors.ErrCallTimeout, timeout)

	case <-ctx.Done():
		b.removePending(requestID)
		b.log.Debug("Request cancelled", "request_id", requestID)

		return nil, ctx.Err()
	}
}

// removePending drops a call's tracking entry after it stopped waiting.
func (b *Bridge) removePending(requestID string) {
	b.pendingMu.Lock()
	delete(b.pending, requestID)
	b.pendingMu.Unlock()
}

// handleInbound routes a reply payload to the waiting call. It is invoked
// from the transport's delivery context and never blocks: lookup and
// delivery are a map access and a buffered channel send.
func (b *Bridge) handleInbound(payload []byte) {
	reply, err := wire.ParseReply(payload)
	if err != nil {
		b.log.Warn("Dropping malformed reply", "error", err)

		return
	}

	requestID := reply.RequestID()

	// Find and claim the pending call atomically
	b.pendingMu.Lock()

	replyChan, exists := b.pending[requestID]
	if exists {
		delete(b.pending, requestID)
	}

	b.pendingMu.Unlock()

	if !exists {
		// Late reply after timeout, or a reply this bridge never asked for.
		b.log.Warn("No pending call for reply", "request_id", requestID)

		return
	}

	// We own the entry now; the channel is buffered so this never blocks.
	replyChan <- reply
}
