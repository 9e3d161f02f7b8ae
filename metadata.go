package caff

import (
	"fmt"
	"io"

	"github.com/meigma/caff/internal/xorio"
)

// Metadata describes one entry in the archive body.
//
// FileName, Tag, FileSize, IsObfuscated and Compression are stored
// obfuscated with the archive key. The padding regions are stored verbatim.
type Metadata struct {
	FileName string
	Tag      string
	Unknown1 Padding[[4]byte]
	Unknown2 Padding[[4]byte]

	// FileSize is the byte length of the entry's payload.
	FileSize uint32

	// IsObfuscated selects whether the payload bytes are masked with the key.
	IsObfuscated bool

	// Compression is stored as-is; payloads are never decompressed.
	Compression uint8

	Trailing Padding[[8]byte]
}

// ReadMetadata decodes one metadata record.
//
// An empty file name fails with ErrEmptyFilename; nothing after the file
// name is read in that case.
func ReadMetadata(r io.Reader, key Key, opts ...Option) (Metadata, error) {
	return newCodec(opts).readMetadata(r, key, -1)
}

// Write encodes the record. It does not validate FileName.
func (m Metadata) Write(w io.Writer, key Key, opts ...Option) error {
	return newCodec(opts).writeMetadata(w, key, &m)
}

func (c *codec) readMetadata(r io.Reader, key Key, index int) (Metadata, error) {
	var m Metadata
	xr := xorio.NewReader(r, key)
	err := c.trace(r, "read", "metadata", func() error {
		var err error
		if m.FileName, err = xr.ReadString(); err != nil {
			return fmt.Errorf("read metadata file_name: %w", err)
		}
		if m.FileName == "" {
			return ErrEmptyFilename
		}
		if m.Tag, err = xr.ReadString(); err != nil {
			return fmt.Errorf("read metadata %q tag: %w", m.FileName, err)
		}
		if m.Unknown1, err = readPadding[[4]byte](c, r, "metadata.unknown_1", index); err != nil {
			return err
		}
		if m.Unknown2, err = readPadding[[4]byte](c, r, "metadata.unknown_2", index); err != nil {
			return err
		}
		if m.FileSize, err = xr.ReadU32(); err != nil {
			return fmt.Errorf("read metadata %q file_size: %w", m.FileName, err)
		}
		if m.IsObfuscated, err = xr.ReadBool(); err != nil {
			return fmt.Errorf("read metadata %q is_obfuscated: %w", m.FileName, err)
		}
		if m.Compression, err = xr.ReadU8(); err != nil {
			return fmt.Errorf("read metadata %q compression: %w", m.FileName, err)
		}
		m.Trailing, err = readPadding[[8]byte](c, r, "metadata.trailing", index)
		return err
	})
	if err != nil {
		return Metadata{}, err
	}

	c.log().Debug("metadata",
		"index", index,
		"file_name", m.FileName,
		"tag", m.Tag,
		"file_size", m.FileSize,
		"obfuscated", m.IsObfuscated,
		"compression", m.Compression,
	)
	c.emit(Event{Kind: EventMetadata, Region: "metadata", Index: index, Metadata: &m})
	return m, nil
}

func (c *codec) writeMetadata(w io.Writer, key Key, m *Metadata) error {
	xw := xorio.NewWriter(w, key)
	return c.trace(w, "write", "metadata", func() error {
		if err := xw.WriteString(m.FileName); err != nil {
			return fmt.Errorf("write metadata file_name: %w", err)
		}
		if err := xw.WriteString(m.Tag); err != nil {
			return fmt.Errorf("write metadata %q tag: %w", m.FileName, err)
		}
		if err := writePadding(c, w, "metadata.unknown_1", m.Unknown1); err != nil {
			return err
		}
		if err := writePadding(c, w, "metadata.unknown_2", m.Unknown2); err != nil {
			return err
		}
		if err := xw.WriteU32(m.FileSize); err != nil {
			return fmt.Errorf("write metadata %q file_size: %w", m.FileName, err)
		}
		if err := xw.WriteBool(m.IsObfuscated); err != nil {
			return fmt.Errorf("write metadata %q is_obfuscated: %w", m.FileName, err)
		}
		if err := xw.WriteU8(m.Compression); err != nil {
			return fmt.Errorf("write metadata %q compression: %w", m.FileName, err)
		}
		return writePadding(c, w, "metadata.trailing", m.Trailing)
	})
}
