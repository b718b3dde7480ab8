package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"golang.org/x/sync/errgroup"

	"github.com/valgard/botlink/internal/config"
	"github.com/valgard/botlink/internal/errors"
	"github.com/valgard/botlink/internal/wire"
)

// Handler executes one named operation against the bot subsystem.
// Args are the request's positional arguments after JSON decoding; the
// returned value becomes the reply's result.
type Handler func(ctx context.Context, args []any) (any, error)

// methodEntry pairs a handler with its optional resolved argument schema.
type methodEntry struct {
	schema  *jsonschema.Resolved
	handler Handler
}

// Dispatcher is the server-side half of the bridge: it listens for
// bot_request envelopes, invokes the registered operation, and sends a
// single reply on the response channel.
//
// Handlers run off the transport's delivery context on a bounded worker
// group, so a slow operation never blocks inbound delivery.
type Dispatcher struct {
	log       *slog.Logger
	transport config.Transport

	requestChannel  config.Channel
	responseChannel config.Channel

	handlersMu sync.RWMutex
	handlers   map[string]methodEntry

	group errgroup.Group

	// Lifecycle management
	startMu   sync.Mutex
	started   bool
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates a dispatcher over the given transport. maxConcurrent bounds
// how many handlers may run at once; zero or negative means a small default.
func New(
	log *slog.Logger,
	transport config.Transport,
	requestChannel, responseChannel config.Channel,
	maxConcurrent int,
) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}

	d := &Dispatcher{
		log:             log.With("component", "dispatch"),
		transport:       transport,
		requestChannel:  requestChannel,
		responseChannel: responseChannel,
		handlers:        make(map[string]methodEntry, 16),
	}
	d.group.SetLimit(maxConcurrent)

	return d
}

// Register registers a handler for a method name with no argument
// validation. Registering the same method twice replaces the handler.
func (d *Dispatcher) Register(method string, handler Handler) {
	d.handlersMu.Lock()
	defer d.handlersMu.Unlock()

	d.log.Debug("Registering method handler", "method", method)
	d.handlers[method] = methodEntry{handler: handler}
}

// RegisterWithSchema registers a handler whose positional arguments are
// validated against a JSON Schema before the handler runs. The schema
// describes the args array itself, e.g.:
//
//	&jsonschema.Schema{
//	    Type:        "array",
//	    PrefixItems: []*jsonschema.Schema{{Type: "string"}, {Type: "integer"}},
//	}
func (d *Dispatcher) RegisterWithSchema(method string, schema *jsonschema.Schema, handler Handler) error {
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolve schema for %s: %w", method, err)
	}

	d.handlersMu.Lock()
	defer d.handlersMu.Unlock()

	d.log.Debug("Registering method handler with schema", "method", method)
	d.handlers[method] = methodEntry{schema: resolved, handler: handler}

	return nil
}

// Start registers the inbound request handler on the request channel.
func (d *Dispatcher) Start() error {
	d.startMu.Lock()
	defer d.startMu.Unlock()

	if d.started {
		return errors.ErrAlreadyStarted
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())

	if err := d.transport.RegisterHandler(d.requestChannel, d.handleInbound); err != nil {
		d.cancel()

		return &errors.TransportError{Op: "register", Err: err}
	}

	d.started = true
	d.log.Info("Dispatcher started",
		"request_channel", d.requestChannel,
		"response_channel", d.responseChannel,
	)

	return nil
}

// Close unregisters the inbound handler, cancels in-flight handlers, and
// waits for them to finish. Safe to call multiple times.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.log.Debug("Closing dispatcher")

		d.startMu.Lock()
		started := d.started
		d.startMu.Unlock()

		if !started {
			return
		}

		if err := d.transport.UnregisterHandler(d.requestChannel); err != nil {
			d.log.Warn("Failed to unregister request handler", "error", err)
		}

		d.cancel()
		_ = d.group.Wait()
		d.log.Info("Dispatcher stopped")
	})
}

// handleInbound parses a request payload and hands it to a worker.
// Invoked from the transport's delivery context; never blocks.
func (d *Dispatcher) handleInbound(payload []byte) {
	req, err := wire.ParseRequest(payload)
	if err != nil {
		// Without a request ID there is nothing to reply to.
		d.log.Warn("Dropping malformed request", "error", err)

		return
	}

	method := req.Method()

	d.log.Debug("Received request", "request_id", req.RequestID, "method", method)

	d.handlersMu.RLock()
	entry, exists := d.handlers[method]
	d.handlersMu.RUnlock()

	if !exists {
		d.log.Warn("No handler registered for method", "method", method)
		d.sendErrorReply(req.RequestID, fmt.Sprintf("unknown method: %s", method))

		return
	}

	if entry.schema != nil {
		if err := entry.schema.Validate(req.Args()); err != nil {
			d.log.Warn("Request args failed validation",
				"request_id", req.RequestID,
				"method", method,
				"error", err,
			)
			d.sendErrorReply(req.RequestID, fmt.Sprintf("invalid arguments: %v", err))

			return
		}
	}

	// TryGo keeps the delivery context non-blocking when the worker group
	// is saturated; the caller sees an error reply instead of a timeout.
	scheduled := d.group.TryGo(func() error {
		d.runHandler(req, entry.handler)

		return nil
	})

	if !scheduled {
		d.log.Warn("Dispatcher at concurrency limit", "method", method)
		d.sendErrorReply(req.RequestID, "dispatcher overloaded")
	}
}

// runHandler invokes a handler and sends the reply.
func (d *Dispatcher) runHandler(req *wire.Request, handler Handler) {
	result, err := handler(d.ctx, req.Args())
	if err != nil {
		d.log.Warn("Handler returned error",
			"request_id", req.RequestID,
			"method", req.Method(),
			"error", err.Error(),
		)
		d.sendErrorReply(req.RequestID, err.Error())

		return
	}

	d.sendSuccessReply(req.RequestID, result)
}

// sendSuccessReply sends a success reply on the response channel.
func (d *Dispatcher) sendSuccessReply(requestID string, result any) {
	data, err := json.Marshal(wire.NewSuccessReply(requestID, result))
	if err != nil {
		d.log.Error("Failed to marshal reply", "request_id", requestID, "error", err)

		return
	}

	if err := d.transport.Send(d.responseChannel, data); err != nil {
		d.log.Error("Failed to send reply", "request_id", requestID, "error", err)
	}
}

// sendErrorReply sends an error reply on the response channel.
func (d *Dispatcher) sendErrorReply(requestID, errMsg string) {
	data, err := json.Marshal(wire.NewErrorReply(requestID, errMsg))
	if err != nil {
		d.log.Error("Failed to marshal error reply", "request_id", requestID, "error", err)

		return
	}

	if err := d.transport.Send(d.responseChannel, data); err != nil {
		d.log.Error("Failed to send error reply", "request_id", requestID, "error", err)
	}
}
