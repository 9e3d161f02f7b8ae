package caff

import (
	"context"
	"io"
	"log/slog"
)

// codec carries the options of a single decode or encode call.
type codec struct {
	magicCheck      MagicCheck
	logger          *slog.Logger
	observer        Observer
	maxTrailingSize uint64
}

func newCodec(opts []Option) *codec {
	c := &codec{magicCheck: MagicCheckStrict}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// log returns the logger, falling back to a discard logger if nil.
func (c *codec) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

func (c *codec) emit(ev Event) {
	if c.observer != nil {
		c.observer(ev)
	}
}

// trace runs fn and, when debug logging is enabled and stream is seekable,
// logs the offset and size of the region fn consumed or produced.
// Seek failures only disable the trace; they never fail the call.
func (c *codec) trace(stream any, op, region string, fn func() error) error {
	seeker, ok := stream.(io.Seeker)
	if !ok || !c.log().Enabled(context.Background(), slog.LevelDebug) {
		return fn()
	}

	start, startErr := seeker.Seek(0, io.SeekCurrent)
	if err := fn(); err != nil {
		return err
	}
	if startErr != nil {
		return nil
	}
	end, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil //nolint:nilerr // tracing is best-effort
	}
	c.log().Debug(op, "region", region, "offset", start, "size", end-start)
	return nil
}
