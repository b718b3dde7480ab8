// Package bridge implements request/response correlation over the one-way
// message channels.
//
// The host transport only offers fire-and-forget broadcast sends and an
// inbound handler per channel: no acknowledgement, no correlation. The
// Bridge layers call semantics on top by stamping every outgoing request
// with a ULID, keeping a map from request ID to a one-shot reply channel,
// and having the inbound handler fulfill exactly the matching entry. Any
// number of calls may be outstanding at once.
//
// Example usage:
//
//	b := bridge.New(log, transport, config.DefaultRequestChannel, config.DefaultResponseChannel)
//	if err := b.Start(); err != nil { ... }
//	defer b.Stop()
//
//	reply, err := b.Invoke(ctx, "CanSpawn", nil, 5*time.Second)
package bridge
