package botlink

import (
	"log/slog"
	"time"

	"github.com/valgard/botlink/internal/bridge"
	"github.com/valgard/botlink/internal/config"
	"github.com/valgard/botlink/internal/errors"
)

// Client is the caller-facing end of the bridge.
//
// A Client owns one correlation bridge over an injected Transport. Any
// number of calls may be outstanding at once; each is correlated to its own
// reply by request ID.
//
// Lifecycle: New does not touch the transport. Start registers the inbound
// reply handler; Close unregisters it and fails outstanding calls. Clients
// are single-use: after Close, create a new one.
//
// Example usage:
//
//	client, err := botlink.New(transport)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	ok, err := botlink.Call[bool](ctx, client, "CanSpawn")
type Client struct {
	log      *slog.Logger
	opts     *config.Options
	bridge   *bridge.Bridge
	executor func(fn func())
}

// New creates a client over the given transport. The transport is injected,
// never owned: Close leaves it open for other users of the channel pair.
func New(transport Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, errors.ErrNilTransport
	}

	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	return &Client{
		log:      log,
		opts:     options,
		bridge:   bridge.New(log, transport, options.RequestChannel, options.ResponseChannel),
		executor: options.CallbackExecutor,
	}, nil
}

// Start registers the inbound reply handler on the response channel.
// Must be called once before any calls are issued.
func (c *Client) Start() error {
	return c.bridge.Start()
}

// Close shuts the client down: the reply handler is unregistered and every
// outstanding call fails with ErrBridgeClosed. Safe to call multiple times,
// and never fails even if the transport is already gone.
func (c *Client) Close() error {
	c.bridge.Stop()

	return nil
}

// CallTimeout returns the configured per-call timeout.
func (c *Client) CallTimeout() time.Duration {
	return c.opts.CallTimeout
}

// deliver runs fn through the configured callback executor, or inline on
// the calling goroutine when none is set.
func (c *Client) deliver(fn func()) {
	if c.executor != nil {
		c.executor(fn)

		return
	}

	fn()
}
