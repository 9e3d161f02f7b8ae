package caff

import "log/slog"

// Option configures decoding and encoding.
type Option func(*codec)

// MagicCheck selects how a header with a bad signature is handled.
type MagicCheck uint8

const (
	// MagicCheckStrict fails decoding with ErrBadMagic.
	MagicCheckStrict MagicCheck = iota

	// MagicCheckLenient logs and reports the bad signature through the
	// observer, then keeps decoding.
	MagicCheckLenient
)

// String returns the name of the check mode.
func (m MagicCheck) String() string {
	switch m {
	case MagicCheckStrict:
		return "strict"
	case MagicCheckLenient:
		return "lenient"
	default:
		return "unknown"
	}
}

// WithMagicCheck sets the magic check mode (default: MagicCheckStrict).
func WithMagicCheck(mode MagicCheck) Option {
	return func(c *codec) {
		c.magicCheck = mode
	}
}

// WithLogger sets the logger used for diagnostics.
//
// At debug level, regions read from or written to a seekable stream are
// traced with their offset and size. Non-empty opaque regions are logged at
// debug (all bytes 0xFF) or warn (anything else).
func WithLogger(logger *slog.Logger) Option {
	return func(c *codec) {
		c.logger = logger
	}
}

// WithObserver registers a hook that receives diagnostic events while
// decoding. The observer never changes the outcome of a call.
func WithObserver(fn Observer) Option {
	return func(c *codec) {
		c.observer = fn
	}
}

// WithMaxTrailingSize limits the number of trailing bytes accepted after the
// last payload. Larger trailers fail with ErrSizeOverflow.
// Set limit to 0 to disable the limit (default).
func WithMaxTrailingSize(limit uint64) Option {
	return func(c *codec) {
		c.maxTrailingSize = limit
	}
}
