package botlink

import (
	"fmt"
)

// WithClient manages client lifecycle with automatic cleanup.
//
// This helper creates a client over the transport, starts it, executes the
// callback function, and ensures cleanup via Close() when done.
//
// The callback receives a started Client that is ready for calls.
// If the callback returns an error, it is returned to the caller.
//
// Example usage:
//
//	err := botlink.WithClient(transport, func(c *botlink.Client) error {
//	    ok, err := botlink.Call[bool](ctx, c, "CanSpawn")
//	    if err != nil {
//	        return err
//	    }
//	    // ...
//	    return nil
//	}, botlink.WithLogger(log))
func WithClient(transport Transport, fn func(*Client) error, opts ...Option) error {
	client, err := New(transport, opts...)
	if err != nil {
		return err
	}

	if err := client.Start(); err != nil {
		return fmt.Errorf("failed to start client: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	return fn(client)
}
