package botlink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valgard/botlink/internal/errors"
)

// Call invokes a named operation on the remote bot subsystem and blocks
// until the reply arrives, the client's call timeout elapses, the context
// is cancelled, or the client closes.
//
// The reply's result is decoded into T: an exact type match is returned
// directly, an absent result yields the zero value with a nil error, and
// anything else goes through a JSON round trip. A result that cannot be
// decoded yields the zero value and a *DecodeError. Timeouts surface as
// ErrCallTimeout, never as a silent zero value.
func Call[T any](ctx context.Context, c *Client, method string, args ...any) (T, error) {
	return CallWithTimeout[T](ctx, c, c.opts.CallTimeout, method, args...)
}

// CallWithTimeout is Call with a per-call timeout override.
func CallWithTimeout[T any](
	ctx context.Context,
	c *Client,
	timeout time.Duration,
	method string,
	args ...any,
) (T, error) {
	var zero T

	reply, err := c.bridge.Invoke(ctx, method, args, timeout)
	if err != nil {
		return zero, err
	}

	return decodeResult[T](method, reply.Result())
}

// CallAsync invokes a named operation without blocking the caller. The
// blocking wait runs on its own goroutine; on completion the callback is
// delivered through the client's callback executor with the same value and
// error an equivalent Call would have produced. A nil callback discards the
// result. Once issued, an async call always runs to completion or timeout;
// only Close aborts it early.
func CallAsync[T any](c *Client, method string, args []any, callback func(T, error)) {
	go func() {
		// No per-call cancellation: the call runs until reply or timeout.
		result, err := CallWithTimeout[T](context.Background(), c, c.opts.CallTimeout, method, args...)

		if callback == nil {
			return
		}

		c.deliver(func() {
			callback(result, err)
		})
	}()
}

// decodeResult interprets a reply result as T.
func decodeResult[T any](method string, value any) (T, error) {
	var zero T

	// Absent result means the operation had nothing to return.
	if value == nil {
		return zero, nil
	}

	// Exact type match skips the JSON round trip.
	if v, ok := value.(T); ok {
		return v, nil
	}

	// Best-effort conversion through JSON: reply results arrive as
	// encoding/json's generic types (float64, map[string]any, []any).
	data, err := json.Marshal(value)
	if err != nil {
		return zero, &errors.DecodeError{Method: method, Value: value, Err: err}
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, &errors.DecodeError{Method: method, Value: value, Err: err}
	}

	return out, nil
}
