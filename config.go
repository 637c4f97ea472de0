package extjson

import (
	"context"
	"sync/atomic"
)

// Config controls the escape hatch for exact timezone reconstruction.
//
// AllowPickle embeds a restore blob in every encoded timezone and honours it on
// decode, bringing back the original named zone with its full transition rules
// instead of a fixed-offset equivalent. Restoring drives zone-database lookups by
// names taken from the input, so leave it off for untrusted data unless PickleKey
// is set: with a key, blobs carry a keyed BLAKE2b-256 sum and unsigned or
// mis-signed blobs are rejected.
type Config struct {
	AllowPickle bool
	PickleKey   []byte
}

var allowPickle atomic.Bool

// SetAllowPickle toggles the process-wide escape hatch. It is off by default.
func SetAllowPickle(enabled bool) {
	allowPickle.Store(enabled)
}

// AllowPickle reports the process-wide escape hatch setting.
func AllowPickle() bool {
	return allowPickle.Load()
}

// DefaultConfig returns the process-wide configuration.
func DefaultConfig() Config {
	return Config{AllowPickle: AllowPickle()}
}

// DefaultFunc encodes a value the walk cannot encode natively. Return an error
// wrapping ErrUnsupportedType to hand the value on to the built-in registry.
type DefaultFunc func(v any) (any, error)

// ObjectHook transforms every decoded JSON object. Return the input unchanged
// for objects the hook does not handle.
type ObjectHook func(m map[string]any) any

// Option configures a single encode or decode call.
type Option func(*options)

type options struct {
	ctx        context.Context
	def        DefaultFunc
	hook       ObjectHook
	prefix     string
	indent     string
	escapeHTML bool
	useNumber  bool
	maxBytes   int64
	config     *Config
}

// WithDefault supplies a caller fallback encoder. It runs before the built-in
// registry, so it may shadow built-in types.
func WithDefault(fn DefaultFunc) Option {
	return func(o *options) {
		o.def = fn
	}
}

// WithObjectHook supplies a caller object hook. It runs before the built-in
// hook on every decoded object.
func WithObjectHook(fn ObjectHook) Option {
	return func(o *options) {
		o.hook = fn
	}
}

// WithIndent formats output like json.MarshalIndent.
func WithIndent(prefix, indent string) Option {
	return func(o *options) {
		o.prefix = prefix
		o.indent = indent
	}
}

// WithEscapeHTML controls escaping of <, > and & in strings. Defaults to true.
func WithEscapeHTML(escape bool) Option {
	return func(o *options) {
		o.escapeHTML = escape
	}
}

// WithUseNumber decodes numbers as json.Number instead of float64.
func WithUseNumber() Option {
	return func(o *options) {
		o.useNumber = true
	}
}

// WithMaxBytes rejects inputs larger than n bytes. Zero or less disables the limit.
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		o.maxBytes = n
	}
}

// WithConfig overrides the process-wide configuration for one call.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		c := cfg
		o.config = &c
	}
}

// WithContext sets the context passed to emitted signals.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// buildOptions applies opts and snapshots the configuration for the call.
func buildOptions(opts []Option) *options {
	o := &options{
		ctx:        context.Background(),
		escapeHTML: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	if o.config == nil {
		cfg := DefaultConfig()
		o.config = &cfg
	}
	return o
}
