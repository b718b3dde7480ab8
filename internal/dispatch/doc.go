// Package dispatch implements the server-side method dispatcher.
//
// The dispatcher is the remote half of the bridge: it receives bot_request
// envelopes on the request channel, looks the method up in its registry,
// optionally validates the positional arguments against a JSON Schema, runs
// the handler on a bounded worker group, and sends exactly one reply on the
// response channel. Unknown methods and validation failures produce error
// replies so callers fail fast instead of waiting out their timeout.
package dispatch
