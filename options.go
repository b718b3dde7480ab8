package botlink

import (
	"log/slog"
	"time"

	"github.com/valgard/botlink/internal/config"
)

// Option configures a client or dispatcher using the functional options
// pattern. Options are applied in order; later options win.
type Option func(*settings)

// settings accumulates applied options plus any deferred error
// (e.g. a config file that failed to load).
type settings struct {
	cfg config.Options
	err error
}

// applyOptions applies functional options and normalizes defaults.
func applyOptions(opts []Option) (*config.Options, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	if s.err != nil {
		return nil, s.err
	}

	s.cfg.Normalize()

	return &s.cfg, nil
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.cfg.Logger = logger
	}
}

// WithRequestChannel overrides the channel requests are sent on.
func WithRequestChannel(channel Channel) Option {
	return func(s *settings) {
		s.cfg.RequestChannel = channel
	}
}

// WithResponseChannel overrides the channel replies arrive on.
func WithResponseChannel(channel Channel) Option {
	return func(s *settings) {
		s.cfg.ResponseChannel = channel
	}
}

// WithCallTimeout sets how long blocking calls wait for a reply.
// The default is five seconds.
func WithCallTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.cfg.CallTimeout = timeout
	}
}

// WithCallbackExecutor sets the function used to deliver async callbacks.
// The executor receives a closure and is expected to run it on the
// designated context (e.g. post it to the game's main loop). If not set,
// callbacks run on the background goroutine that performed the call.
func WithCallbackExecutor(executor func(fn func())) Option {
	return func(s *settings) {
		s.cfg.CallbackExecutor = executor
	}
}

// WithMaxConcurrent bounds how many dispatcher handlers may run at once.
// Requests past the limit fail fast with an error reply. Ignored by clients.
func WithMaxConcurrent(n int) Option {
	return func(s *settings) {
		s.cfg.MaxConcurrent = n
	}
}

// WithConfigFile loads channel IDs and call timing from a TOML file and
// applies them at this option's position, so explicit options placed after
// it still win. Construction fails if the file cannot be read or parsed.
func WithConfigFile(path string) Option {
	return func(s *settings) {
		cfg, err := config.LoadFile(path)
		if err != nil {
			if s.err == nil {
				s.err = err
			}

			return
		}

		cfg.Apply(&s.cfg)
	}
}
