package botlink

import "github.com/valgard/botlink/internal/config"

// Transport defines the interface for the host's one-way broadcast
// messaging. Implement this to bind the bridge to a real game host;
// Loopback provides a connected in-process pair for testing and
// single-process use.
type Transport = config.Transport

// Handler receives the raw payload of an inbound message on a channel.
type Handler = config.Handler

// Channel identifies one of the fixed numeric message channels both ends
// agree on out of band.
type Channel = config.Channel

// Default channel identifiers, shared with the server-side mod.
const (
	DefaultRequestChannel  = config.DefaultRequestChannel
	DefaultResponseChannel = config.DefaultResponseChannel
)
