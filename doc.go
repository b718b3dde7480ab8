// Package botlink provides synchronous and callback-based call semantics
// over a game host's one-way broadcast message channels.
//
// The host messaging primitive is fire-and-forget: a mod can send a payload
// on a numbered channel and register a handler for inbound payloads, but
// nothing acknowledges delivery or correlates a reply to the request that
// caused it. botlink layers a correlation bridge on top so that invoking an
// operation on the server-resident bot subsystem looks like an ordinary
// function call with a timeout and a typed result.
//
// # Basic Usage
//
// Construct a client over a Transport bound to your host, start it, and
// call methods by name with positional arguments:
//
//	client, err := botlink.New(transport, botlink.WithLogger(slog.Default()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	ok, err := botlink.Call[bool](ctx, client, "CanSpawn")
//	if err != nil {
//	    // errors.Is(err, botlink.ErrCallTimeout), *botlink.DecodeError, ...
//	}
//
//	botID, err := botlink.Call[int64](ctx, client, "SpawnBot", "raider", 3)
//
// # Asynchronous Calls
//
// CallAsync runs the blocking wait on a background goroutine and delivers
// the result through the configured callback executor, so a frame-update
// loop never blocks:
//
//	client, _ := botlink.New(transport,
//	    botlink.WithCallbackExecutor(mainLoop.Post),
//	)
//
//	botlink.CallAsync[bool](client, "CanSpawn", nil, func(ok bool, err error) {
//	    // runs on the main loop
//	})
//
// # Serving the Other End
//
// The server-side mod registers named operations on a Dispatcher bound to
// the same channel pair:
//
//	d, _ := botlink.NewDispatcher(transport)
//	d.Register("CanSpawn", func(ctx context.Context, args []any) (any, error) {
//	    return roster.HasCapacity(), nil
//	})
//	d.Start()
//	defer d.Close()
//
// # Error Handling
//
// Every failure kind is distinguishable: ErrCallTimeout when no reply
// arrives in the window, *DecodeError when a reply cannot be interpreted as
// the expected type, *TransportError when the host messaging layer fails,
// and *RemoteError when the dispatcher replies with an error. The zero
// value of the result type accompanies every error.
//
// # Configuration
//
// Channel IDs and the call timeout are agreed with the server side out of
// band. They default to DefaultRequestChannel/DefaultResponseChannel and
// five seconds, and can be set with options or loaded from a TOML file via
// WithConfigFile.
package botlink
