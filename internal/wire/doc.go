// Package wire defines the JSON envelopes exchanged over the message
// channels: bot_request invocations and bot_response replies. Both the
// client-side bridge and the server-side dispatcher speak this shape.
package wire
