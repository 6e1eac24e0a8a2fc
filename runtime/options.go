package runtime

import (
	"go.uber.org/zap"

	"github.com/wippyai/argon2-wasm/arena"
	"github.com/wippyai/argon2-wasm/engine"
)

type options struct {
	logger  *zap.Logger
	engine  *engine.Config
	arena   *arena.Config
	lenient bool
}

// Option configures a Hasher.
type Option func(*options)

// WithLenientVerify makes Verify report false for a malformed encoded hash
// instead of failing.
func WithLenientVerify() Option {
	return func(o *options) { o.lenient = true }
}

// WithLogger sets the logger of one Hasher. The package logger is used
// otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEngineConfig configures the wazero engine behind New.
func WithEngineConfig(cfg *engine.Config) Option {
	return func(o *options) { o.engine = cfg }
}

// WithArenaConfig configures the in-process heap behind NewNative.
func WithArenaConfig(cfg *arena.Config) Option {
	return func(o *options) { o.arena = cfg }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return o
}
