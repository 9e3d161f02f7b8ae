package xorio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"unicode/utf8"
)

// MaxVarint is the largest length a bounded varint prefix can carry.
const MaxVarint = 0x7F

const continuationBit = 0x80

// Reader decodes obfuscated fields from an underlying reader.
//
// Reader performs no buffering: every call consumes exactly the bytes of
// the field it decodes, so the underlying stream position stays in sync.
type Reader struct {
	r   io.Reader
	key Key
	buf [4]byte
}

// NewReader returns a Reader that unmasks fields with key.
func NewReader(r io.Reader, key Key) *Reader {
	return &Reader{r: r, key: key}
}

// Key returns the key used to unmask fields.
func (r *Reader) Key() Key {
	return r.key
}

func (r *Reader) fill(n int) ([]byte, error) {
	p := r.buf[:n]
	if _, err := io.ReadFull(r.r, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadU8 reads one obfuscated byte.
func (r *Reader) ReadU8() (uint8, error) {
	p, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return r.key.XOR8(p[0]), nil
}

// ReadU16 reads an obfuscated big-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	p, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return r.key.XOR16(binary.BigEndian.Uint16(p)), nil
}

// ReadU32 reads an obfuscated big-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	p, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return r.key.XOR32(binary.BigEndian.Uint32(p)), nil
}

// ReadBool reads an obfuscated byte; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadVarint reads a single-byte length prefix.
// A set continuation bit fails with ErrVarIntUnsupported.
func (r *Reader) ReadVarint() (int, error) {
	v, err := r.ReadU8()
	if err != nil {
		return 0, err
	}
	if v&continuationBit != 0 {
		return 0, ErrVarIntUnsupported
	}
	return int(v & MaxVarint), nil
}

// ReadBytes reads a length-prefixed obfuscated byte sequence.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	return r.ReadMasked(n)
}

// ReadString reads a length-prefixed obfuscated UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	p, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(p) {
		return "", ErrInvalidUTF8
	}
	return string(p), nil
}

// ReadMasked reads n bytes and unmasks each one with the low byte of the key.
func (r *Reader) ReadMasked(n int) ([]byte, error) {
	p, err := r.ReadRaw(n)
	if err != nil {
		return nil, err
	}
	r.key.Mask(p)
	return p, nil
}

// rawChunk bounds the up-front allocation for a raw read. Longer reads
// grow with the data actually received, so a corrupt length cannot force a
// huge allocation.
const rawChunk = 1 << 20

// ReadRaw reads n bytes without unmasking them.
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if n <= rawChunk {
		p := make([]byte, n)
		if _, err := io.ReadFull(r.r, p); err != nil {
			return nil, err
		}
		return p, nil
	}

	var buf bytes.Buffer
	buf.Grow(rawChunk)
	if _, err := io.CopyN(&buf, r.r, int64(n)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}
