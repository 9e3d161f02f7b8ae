package caff

import (
	"fmt"
	"io"
)

// HeaderSize is the encoded size of a Header in bytes.
const HeaderSize = 54

// Header is the fixed-size block at the start of an archive.
//
// Only Magic has an expected value; FormatIdentifier and both padding
// regions are opaque and survive a round trip unchanged.
type Header struct {
	Magic            Magic
	ArchiveVersion   Version
	FormatIdentifier [4]byte
	FormatVersion    Version
	Key              Key
	Unknown          Padding[[8]byte]
	PreviewImage     PreviewImage
	Trailing         Padding[[12]byte]
}

// ReadHeader decodes a header.
//
// With the default MagicCheckStrict, a bad signature fails with ErrBadMagic
// before anything past the signature is read.
func ReadHeader(r io.Reader, opts ...Option) (Header, error) {
	return newCodec(opts).readHeader(r)
}

// Write encodes the header. The stored Magic is written as-is.
func (h Header) Write(w io.Writer, opts ...Option) error {
	return newCodec(opts).writeHeader(w, &h)
}

func (c *codec) readHeader(r io.Reader) (Header, error) {
	var h Header
	err := c.trace(r, "read", "header", func() error {
		var err error
		if h.Magic, err = ReadMagic(r); err != nil {
			return fmt.Errorf("read header magic: %w", err)
		}
		if !h.Magic.IsValid() {
			if err := c.badMagic(h.Magic); err != nil {
				return err
			}
		}
		if h.ArchiveVersion, err = ReadVersion(r); err != nil {
			return fmt.Errorf("read header archive_version: %w", err)
		}
		if _, err = io.ReadFull(r, h.FormatIdentifier[:]); err != nil {
			return fmt.Errorf("read header format_identifier: %w", err)
		}
		if h.FormatVersion, err = ReadVersion(r); err != nil {
			return fmt.Errorf("read header format_version: %w", err)
		}
		if h.Key, err = ReadKey(r); err != nil {
			return fmt.Errorf("read header key: %w", err)
		}
		if h.Unknown, err = readPadding[[8]byte](c, r, "header.unknown", -1); err != nil {
			return err
		}
		if h.PreviewImage, err = c.readPreviewImage(r); err != nil {
			return err
		}
		h.Trailing, err = readPadding[[12]byte](c, r, "header.trailing", -1)
		return err
	})
	if err != nil {
		return Header{}, err
	}

	c.log().Debug("header",
		"magic", h.Magic.String(),
		"archive_version", h.ArchiveVersion.String(),
		"format_identifier", fmt.Sprintf("% X", h.FormatIdentifier[:]),
		"format_version", h.FormatVersion.String(),
		"key", h.Key.String(),
	)
	c.emit(Event{Kind: EventHeader, Region: "header", Index: -1, Header: &h})
	return h, nil
}

func (c *codec) badMagic(m Magic) error {
	c.emit(Event{Kind: EventBadMagic, Region: "header.magic", Index: -1, Bytes: m[:]})
	if c.magicCheck == MagicCheckLenient {
		c.log().Warn("bad magic", "value", m.String())
		return nil
	}
	c.log().Error("bad magic", "value", m.String())
	return fmt.Errorf("%w: % X", ErrBadMagic, m[:])
}

func (c *codec) writeHeader(w io.Writer, h *Header) error {
	return c.trace(w, "write", "header", func() error {
		if err := h.Magic.Write(w); err != nil {
			return fmt.Errorf("write header magic: %w", err)
		}
		if err := h.ArchiveVersion.Write(w); err != nil {
			return fmt.Errorf("write header archive_version: %w", err)
		}
		if _, err := w.Write(h.FormatIdentifier[:]); err != nil {
			return fmt.Errorf("write header format_identifier: %w", err)
		}
		if err := h.FormatVersion.Write(w); err != nil {
			return fmt.Errorf("write header format_version: %w", err)
		}
		if err := WriteKey(w, h.Key); err != nil {
			return fmt.Errorf("write header key: %w", err)
		}
		if err := writePadding(c, w, "header.unknown", h.Unknown); err != nil {
			return err
		}
		if err := c.writePreviewImage(w, h.PreviewImage); err != nil {
			return err
		}
		return writePadding(c, w, "header.trailing", h.Trailing)
	})
}
