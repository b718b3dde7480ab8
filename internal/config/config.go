package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Channel identifies one of the fixed numeric message channels the bridge
// and dispatcher agree on out of band. The game host multiplexes many mod
// channels over one broadcast pipe; these IDs are configuration, never
// negotiated.
type Channel uint16

const (
	// DefaultRequestChannel carries bot_request envelopes to the server.
	DefaultRequestChannel Channel = 0x42

	// DefaultResponseChannel carries bot_response envelopes back.
	DefaultResponseChannel Channel = 0x43
)

const (
	// DefaultCallTimeout bounds how long a blocking call waits for a reply.
	DefaultCallTimeout = 5 * time.Second
)

// Options configures the behavior of a botlink client.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// RequestChannel is the channel requests are sent on.
	// Zero means DefaultRequestChannel.
	RequestChannel Channel

	// ResponseChannel is the channel replies arrive on.
	// Zero means DefaultResponseChannel.
	ResponseChannel Channel

	// CallTimeout bounds every blocking call. Zero means DefaultCallTimeout.
	CallTimeout time.Duration

	// CallbackExecutor resynchronizes async callbacks onto a designated
	// execution context (e.g. a game-tick loop). If nil, callbacks run on
	// the background goroutine that performed the call.
	CallbackExecutor func(fn func())

	// MaxConcurrent bounds dispatcher handler concurrency.
	// Zero means the dispatcher default. Ignored by clients.
	MaxConcurrent int
}

// Normalize fills zero fields with defaults.
func (o *Options) Normalize() {
	if o.RequestChannel == 0 {
		o.RequestChannel = DefaultRequestChannel
	}

	if o.ResponseChannel == 0 {
		o.ResponseChannel = DefaultResponseChannel
	}

	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
}

// FileConfig is the on-disk TOML shape for bridge settings. Channel IDs are
// shared with the server-side mod, so deployments keep them in a config file
// next to the mod's own.
type FileConfig struct {
	Channels ChannelsConfig `toml:"channels"`
	Calls    CallsConfig    `toml:"calls"`
}

// ChannelsConfig defines the request/response channel IDs.
type ChannelsConfig struct {
	Request  uint16 `toml:"request"`
	Response uint16 `toml:"response"`
}

// CallsConfig defines call timing knobs.
type CallsConfig struct {
	TimeoutMs int `toml:"timeoutMs"`
}

// LoadFile reads bridge settings from a TOML file.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg FileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (cfg *FileConfig) validate() error {
	if cfg.Channels.Request != 0 && cfg.Channels.Request == cfg.Channels.Response {
		return fmt.Errorf("channels.request and channels.response must differ (both %d)", cfg.Channels.Request)
	}

	if cfg.Calls.TimeoutMs < 0 {
		return fmt.Errorf("calls.timeoutMs must not be negative (got %d)", cfg.Calls.TimeoutMs)
	}

	return nil
}

// Apply overlays file settings onto options. Unset file fields leave the
// options untouched.
func (cfg *FileConfig) Apply(o *Options) {
	if cfg.Channels.Request != 0 {
		o.RequestChannel = Channel(cfg.Channels.Request)
	}

	if cfg.Channels.Response != 0 {
		o.ResponseChannel = Channel(cfg.Channels.Response)
	}

	if cfg.Calls.TimeoutMs > 0 {
		o.CallTimeout = time.Duration(cfg.Calls.TimeoutMs) * time.Millisecond
	}
}
