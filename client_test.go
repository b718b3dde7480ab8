package botlink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestPair wires a client and a dispatcher over a loopback transport
// with a small roster of bot operations registered.
func newTestPair(t *testing.T, opts ...Option) (*Client, *Dispatcher) {
	t.Helper()

	clientSide, serverSide := Loopback()

	d, err := NewDispatcher(serverSide, opts...)
	require.NoError(t, err)

	d.Register("CanSpawn", func(_ context.Context, _ []any) (any, error) {
		return true, nil
	})
	d.Register("BotCount", func(_ context.Context, _ []any) (any, error) {
		return 42, nil
	})
	d.Register("SpawnBot", func(_ context.Context, args []any) (any, error) {
		if len(args) < 1 {
			return nil, errors.New("missing bot kind")
		}

		return 1234, nil
	})
	d.Register("Despawn", func(_ context.Context, _ []any) (any, error) {
		return nil, nil
	})

	require.NoError(t, d.Start())
	t.Cleanup(d.Close)

	client, err := New(clientSide, opts...)
	require.NoError(t, err)
	require.NoError(t, client.Start())
	t.Cleanup(func() { _ = client.Close() })

	return client, d
}

func TestCall_Bool(t *testing.T) {
	client, _ := newTestPair(t)

	ok, err := Call[bool](context.Background(), client, "CanSpawn")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCall_Int64(t *testing.T) {
	client, _ := newTestPair(t)

	id, err := Call[int64](context.Background(), client, "SpawnBot", "raider", 3)
	require.NoError(t, err)
	require.Equal(t, int64(1234), id)
}

func TestCall_NilResultYieldsZeroValue(t *testing.T) {
	client, _ := newTestPair(t)

	n, err := Call[int](context.Background(), client, "Despawn")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestCall_Timeout(t *testing.T) {
	// No dispatcher on the far end: the call must return the zero value
	// and ErrCallTimeout once the window elapses.
	clientSide, _ := Loopback()

	client, err := New(clientSide, WithCallTimeout(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, client.Start())

	defer func() { _ = client.Close() }()

	start := time.Now()

	id, err := Call[int64](context.Background(), client, "SpawnBot", "raider")
	require.ErrorIs(t, err, ErrCallTimeout)
	require.Zero(t, id)
	require.Less(t, time.Since(start), time.Second)
}

func TestCall_RemoteError(t *testing.T) {
	client, _ := newTestPair(t)

	_, err := Call[int64](context.Background(), client, "SpawnBot")

	var remoteErr *RemoteError

	require.ErrorAs(t, err, &remoteErr)
	require.Equal(t, "missing bot kind", remoteErr.Message)
}

func TestCall_UnknownMethodFailsFast(t *testing.T) {
	client, _ := newTestPair(t)

	start := time.Now()

	_, err := Call[bool](context.Background(), client, "NoSuchOperation")

	var remoteErr *RemoteError

	require.ErrorAs(t, err, &remoteErr)
	require.Contains(t, remoteErr.Message, "unknown method")
	// Fails via an error reply, not by waiting out the call timeout.
	require.Less(t, time.Since(start), time.Second)
}

func TestCall_DecodeError(t *testing.T) {
	clientSide, serverSide := Loopback()

	d, err := NewDispatcher(serverSide)
	require.NoError(t, err)

	d.Register("BotName", func(_ context.Context, _ []any) (any, error) {
		return "shambler", nil
	})

	require.NoError(t, d.Start())
	t.Cleanup(d.Close)

	client, err := New(clientSide)
	require.NoError(t, err)
	require.NoError(t, client.Start())

	defer func() { _ = client.Close() }()

	n, err := Call[int](context.Background(), client, "BotName")

	var decodeErr *DecodeError

	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, "BotName", decodeErr.Method)
	require.Equal(t, "shambler", decodeErr.Value)
	require.Zero(t, n)
}

func TestCall_StructResult(t *testing.T) {
	type BotInfo struct {
		ID      int64  `json:"id"`
		Kind    string `json:"kind"`
		Hostile bool   `json:"hostile"`
	}

	clientSide, serverSide := Loopback()

	d, err := NewDispatcher(serverSide)
	require.NoError(t, err)

	d.Register("BotInfo", func(_ context.Context, _ []any) (any, error) {
		return map[string]any{"id": 7, "kind": "raider", "hostile": true}, nil
	})

	require.NoError(t, d.Start())
	t.Cleanup(d.Close)

	client, err := New(clientSide)
	require.NoError(t, err)
	require.NoError(t, client.Start())

	defer func() { _ = client.Close() }()

	info, err := Call[BotInfo](context.Background(), client, "BotInfo")
	require.NoError(t, err)
	require.Equal(t, BotInfo{ID: 7, Kind: "raider", Hostile: true}, info)
}

func TestCall_BeforeStart(t *testing.T) {
	clientSide, _ := Loopback()

	client, err := New(clientSide)
	require.NoError(t, err)

	_, err = Call[bool](context.Background(), client, "CanSpawn")
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestCallWithTimeout_Override(t *testing.T) {
	clientSide, _ := Loopback()

	client, err := New(clientSide) // default 5s timeout
	require.NoError(t, err)
	require.NoError(t, client.Start())

	defer func() { _ = client.Close() }()

	start := time.Now()

	_, err = CallWithTimeout[bool](context.Background(), client, 20*time.Millisecond, "CanSpawn")
	require.ErrorIs(t, err, ErrCallTimeout)
	require.Less(t, time.Since(start), time.Second)
}

func TestCallAsync_DeliversOnExecutor(t *testing.T) {
	executed := make(chan func(), 4)
	executor := func(fn func()) {
		executed <- fn
	}

	client, _ := newTestPair(t, WithCallbackExecutor(executor))

	results := make(chan bool, 1)

	CallAsync[bool](client, "CanSpawn", nil, func(ok bool, err error) {
		require.NoError(t, err)
		results <- ok
	})

	// The callback must not fire until the executor runs it.
	var fn func()

	select {
	case fn = <-executed:
	case <-time.After(2 * time.Second):
		t.Fatal("executor never received the callback")
	}

	require.Empty(t, results)

	fn()

	select {
	case ok := <-results:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("callback did not deliver the result")
	}

	// Exactly once.
	select {
	case <-executed:
		t.Fatal("callback delivered more than once")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCallAsync_NilCallbackDiscardsResult(t *testing.T) {
	clientSide, serverSide := Loopback()

	d, err := NewDispatcher(serverSide)
	require.NoError(t, err)

	handled := make(chan struct{}, 1)

	d.Register("Ping", func(_ context.Context, _ []any) (any, error) {
		handled <- struct{}{}

		return "pong", nil
	})

	require.NoError(t, d.Start())
	t.Cleanup(d.Close)

	client, err := New(clientSide)
	require.NoError(t, err)
	require.NoError(t, client.Start())

	defer func() { _ = client.Close() }()

	CallAsync[string](client, "Ping", nil, nil)

	select {
	case <-handled:
		// The call still ran; the result was discarded without panic.
	case <-time.After(2 * time.Second):
		t.Fatal("async call never reached the dispatcher")
	}
}

func TestCallAsync_ErrorReachesCallback(t *testing.T) {
	clientSide, _ := Loopback()

	client, err := New(clientSide, WithCallTimeout(20*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, client.Start())

	defer func() { _ = client.Close() }()

	type outcome struct {
		id  int64
		err error
	}

	outcomes := make(chan outcome, 1)

	CallAsync[int64](client, "SpawnBot", []any{"raider"}, func(id int64, err error) {
		outcomes <- outcome{id: id, err: err}
	})

	select {
	case o := <-outcomes:
		require.Zero(t, o.id)
		require.ErrorIs(t, o.err, ErrCallTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}
}

func TestConcurrentCalls_EachGetOwnReply(t *testing.T) {
	clientSide, serverSide := Loopback()

	d, err := NewDispatcher(serverSide)
	require.NoError(t, err)

	// Slow completes after Fast, so replies arrive out of issue order.
	d.Register("Slow", func(_ context.Context, _ []any) (any, error) {
		time.Sleep(50 * time.Millisecond)

		return "slow-result", nil
	})
	d.Register("Fast", func(_ context.Context, _ []any) (any, error) {
		return "fast-result", nil
	})

	require.NoError(t, d.Start())
	t.Cleanup(d.Close)

	client, err := New(clientSide)
	require.NoError(t, err)
	require.NoError(t, client.Start())

	defer func() { _ = client.Close() }()

	var wg sync.WaitGroup

	var slowResult, fastResult string

	var slowErr, fastErr error

	wg.Add(2)

	go func() {
		defer wg.Done()

		slowResult, slowErr = Call[string](context.Background(), client, "Slow")
	}()

	go func() {
		defer wg.Done()

		fastResult, fastErr = Call[string](context.Background(), client, "Fast")
	}()

	wg.Wait()

	require.NoError(t, slowErr)
	require.NoError(t, fastErr)
	require.Equal(t, "slow-result", slowResult)
	require.Equal(t, "fast-result", fastResult)
}

func TestNew_NilTransport(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilTransport)

	_, err = NewDispatcher(nil)
	require.ErrorIs(t, err, ErrNilTransport)
}

func TestNew_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "botlink.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[channels]
request = 200
response = 201

[calls]
timeoutMs = 1234
`), 0o600))

	client, d := newTestPair(t, WithConfigFile(path))

	require.Equal(t, 1234*time.Millisecond, client.CallTimeout())

	// Both ends picked up the same channel pair from the file.
	ok, err := Call[bool](context.Background(), client, "CanSpawn")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, d)
}

func TestNew_ConfigFileMissing(t *testing.T) {
	clientSide, _ := Loopback()

	_, err := New(clientSide, WithConfigFile(filepath.Join(t.TempDir(), "nope.toml")))
	require.Error(t, err)
}

func TestClose_Twice(t *testing.T) {
	client, _ := newTestPair(t)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}

func TestClose_FailsOutstandingCalls(t *testing.T) {
	clientSide, serverSide := Loopback()

	d, err := NewDispatcher(serverSide)
	require.NoError(t, err)

	d.Register("Hang", func(ctx context.Context, _ []any) (any, error) {
		<-ctx.Done()

		return nil, ctx.Err()
	})

	require.NoError(t, d.Start())
	t.Cleanup(d.Close)

	client, err := New(clientSide)
	require.NoError(t, err)
	require.NoError(t, client.Start())

	errChan := make(chan error, 1)

	go func() {
		_, err := Call[bool](context.Background(), client, "Hang")
		errChan <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, client.Close())

	select {
	case err := <-errChan:
		require.ErrorIs(t, err, ErrBridgeClosed)
	case <-time.After(time.Second):
		t.Fatal("outstanding call did not fail after Close")
	}
}

func TestClose_AfterTransportGone(t *testing.T) {
	clientSide, _ := Loopback()

	client, err := New(clientSide)
	require.NoError(t, err)
	require.NoError(t, client.Start())

	// Tearing the transport down first must not make Close fail.
	require.NoError(t, clientSide.Close())
	require.NoError(t, client.Close())
}

func TestWithClient_Lifecycle(t *testing.T) {
	clientSide, serverSide := Loopback()

	d, err := NewDispatcher(serverSide)
	require.NoError(t, err)

	d.Register("CanSpawn", func(_ context.Context, _ []any) (any, error) {
		return true, nil
	})

	require.NoError(t, d.Start())
	t.Cleanup(d.Close)

	var seen *Client

	err = WithClient(clientSide, func(c *Client) error {
		seen = c

		ok, err := Call[bool](context.Background(), c, "CanSpawn")
		if err != nil {
			return err
		}

		require.True(t, ok)

		return nil
	})
	require.NoError(t, err)

	// The helper closed the client on the way out.
	_, err = Call[bool](context.Background(), seen, "CanSpawn")
	require.ErrorIs(t, err, ErrBridgeClosed)
}

func TestWithClient_PropagatesCallbackError(t *testing.T) {
	clientSide, _ := Loopback()

	wantErr := errors.New("roster full")

	err := WithClient(clientSide, func(_ *Client) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
}
