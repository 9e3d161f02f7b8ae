package caff

import (
	"fmt"
	"io"
	"iter"
	"math"

	"github.com/meigma/caff/internal/sizing"
	"github.com/meigma/caff/internal/xorio"
)

// Body holds the entries of an archive and whatever follows them.
//
// Data[i] is the payload of Metadata[i]; the two slices always have the
// same length and len(Data[i]) == Metadata[i].FileSize. Payloads are held
// unmasked; they are masked on the wire iff Metadata[i].IsObfuscated.
type Body struct {
	Metadata []Metadata
	Data     [][]byte

	// Trailing is every byte after the last payload, kept verbatim.
	Trailing []byte
}

// Entry pairs a metadata record with its payload.
type Entry struct {
	Metadata Metadata
	Data     []byte
}

// maxInitialEntries caps preallocation driven by the untrusted entry count.
const maxInitialEntries = 1024

// Add appends an entry, setting m.FileSize from len(data).
func (b *Body) Add(m Metadata, data []byte) error {
	if uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("add %q: %w", m.FileName, ErrSizeOverflow)
	}
	m.FileSize = uint32(len(data))
	b.Metadata = append(b.Metadata, m)
	b.Data = append(b.Data, data)
	return nil
}

// Len returns the number of entries.
func (b *Body) Len() int {
	return len(b.Metadata)
}

// Entries returns an iterator over the entries in archive order.
func (b *Body) Entries() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i := range b.Metadata {
			var data []byte
			if i < len(b.Data) {
				data = b.Data[i]
			}
			if !yield(i, Entry{Metadata: b.Metadata[i], Data: data}) {
				return
			}
		}
	}
}

// Validate checks that the payloads line up with the metadata records.
func (b *Body) Validate() error {
	if len(b.Data) != len(b.Metadata) {
		return fmt.Errorf("%w: %d metadata records, %d payloads",
			ErrBodyMismatch, len(b.Metadata), len(b.Data))
	}
	if uint64(len(b.Metadata)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d entries", ErrSizeOverflow, len(b.Metadata))
	}
	for i := range b.Metadata {
		if uint64(len(b.Data[i])) != uint64(b.Metadata[i].FileSize) {
			return fmt.Errorf("%w: entry %d (%q) has %d bytes, file_size %d",
				ErrBodyMismatch, i, b.Metadata[i].FileName, len(b.Data[i]), b.Metadata[i].FileSize)
		}
	}
	return nil
}

// ReadBody decodes a body masked with key, consuming r to EOF.
func ReadBody(r io.Reader, key Key, opts ...Option) (Body, error) {
	return newCodec(opts).readBody(r, key)
}

// Write encodes the body masked with key.
//
// The entry count is derived from len(Metadata). Write fails with
// ErrBodyMismatch before writing anything if Validate fails.
func (b *Body) Write(w io.Writer, key Key, opts ...Option) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return newCodec(opts).writeBody(w, key, b)
}

func (c *codec) readBody(r io.Reader, key Key) (Body, error) {
	var b Body
	err := c.trace(r, "read", "body", func() error {
		xr := xorio.NewReader(r, key)
		count, err := xr.ReadU32()
		if err != nil {
			return fmt.Errorf("read body entry_count: %w", err)
		}

		if count > 0 {
			b.Metadata = make([]Metadata, 0, min(count, maxInitialEntries))
			b.Data = make([][]byte, 0, min(count, maxInitialEntries))
		}
		for i := range count {
			m, err := c.readMetadata(r, key, int(i))
			if err != nil {
				return fmt.Errorf("read entry %d: %w", i, err)
			}
			b.Metadata = append(b.Metadata, m)
		}

		for i := range b.Metadata {
			data, err := c.readPayload(xr, &b.Metadata[i])
			if err != nil {
				return fmt.Errorf("read entry %d (%q) payload: %w", i, b.Metadata[i].FileName, err)
			}
			b.Data = append(b.Data, data)
		}

		b.Trailing, err = sizing.ReadAll(r, c.maxTrailingSize, ErrSizeOverflow)
		if err != nil {
			return fmt.Errorf("read body trailing: %w", err)
		}
		if len(b.Trailing) == 0 {
			b.Trailing = nil
		} else {
			c.log().Debug("trailing bytes", "size", len(b.Trailing))
		}
		return nil
	})
	if err != nil {
		return Body{}, err
	}
	return b, nil
}

func (c *codec) readPayload(xr *xorio.Reader, m *Metadata) ([]byte, error) {
	n, err := sizing.ToInt(uint64(m.FileSize), ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	if m.IsObfuscated {
		return xr.ReadMasked(n)
	}
	return xr.ReadRaw(n)
}

// writeBody expects b to have passed Validate.
func (c *codec) writeBody(w io.Writer, key Key, b *Body) error {
	return c.trace(w, "write", "body", func() error {
		xw := xorio.NewWriter(w, key)
		if err := xw.WriteU32(uint32(len(b.Metadata))); err != nil {
			return fmt.Errorf("write body entry_count: %w", err)
		}
		for i := range b.Metadata {
			if err := c.writeMetadata(w, key, &b.Metadata[i]); err != nil {
				return fmt.Errorf("write entry %d: %w", i, err)
			}
		}
		for i, data := range b.Data {
			var err error
			if b.Metadata[i].IsObfuscated {
				err = xw.WriteMasked(data)
			} else {
				err = xw.WriteRaw(data)
			}
			if err != nil {
				return fmt.Errorf("write entry %d (%q) payload: %w", i, b.Metadata[i].FileName, err)
			}
		}
		if _, err := w.Write(b.Trailing); err != nil {
			return fmt.Errorf("write body trailing: %w", err)
		}
		return nil
	})
}
