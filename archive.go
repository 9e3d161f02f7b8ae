package caff

import (
	"fmt"
	"io"
)

// Archive is a decoded CAFF archive.
type Archive struct {
	Header Header
	Body   Body
}

// Read decodes an archive: the header first, then the body masked with the
// header's key. r is consumed to EOF.
//
// If r also implements io.Seeker and debug logging is enabled, regions are
// traced with their offsets. Parsing itself never seeks.
func Read(r io.Reader, opts ...Option) (*Archive, error) {
	c := newCodec(opts)
	a := &Archive{}
	err := c.trace(r, "read", "archive", func() error {
		var err error
		if a.Header, err = c.readHeader(r); err != nil {
			return err
		}
		a.Body, err = c.readBody(r, a.Header.Key)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("caff: read archive: %w", err)
	}
	return a, nil
}

// Write encodes a to w. It is shorthand for a.Write(w, opts...).
func Write(w io.Writer, a *Archive, opts ...Option) error {
	return a.Write(w, opts...)
}

// Write encodes the header, then the body masked with the header's key.
//
// The body is validated before anything is written. On a write failure,
// w may hold a partial archive; truncating it is up to the caller.
func (a *Archive) Write(w io.Writer, opts ...Option) error {
	if err := a.Body.Validate(); err != nil {
		return fmt.Errorf("caff: write archive: %w", err)
	}
	c := newCodec(opts)
	err := c.trace(w, "write", "archive", func() error {
		if err := c.writeHeader(w, &a.Header); err != nil {
			return err
		}
		return c.writeBody(w, a.Header.Key, &a.Body)
	})
	if err != nil {
		return fmt.Errorf("caff: write archive: %w", err)
	}
	return nil
}
