package xorio

import (
	"encoding/binary"
	"io"
)

// Writer encodes obfuscated fields to an underlying writer.
type Writer struct {
	w   io.Writer
	key Key
	buf [4]byte
}

// NewWriter returns a Writer that masks fields with key.
func NewWriter(w io.Writer, key Key) *Writer {
	return &Writer{w: w, key: key}
}

// Key returns the key used to mask fields.
func (w *Writer) Key() Key {
	return w.key
}

// WriteU8 writes one obfuscated byte.
func (w *Writer) WriteU8(v uint8) error {
	w.buf[0] = w.key.XOR8(v)
	_, err := w.w.Write(w.buf[:1])
	return err
}

// WriteU16 writes an obfuscated big-endian uint16.
func (w *Writer) WriteU16(v uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], w.key.XOR16(v))
	_, err := w.w.Write(w.buf[:2])
	return err
}

// WriteU32 writes an obfuscated big-endian uint32.
func (w *Writer) WriteU32(v uint32) error {
	binary.BigEndian.PutUint32(w.buf[:4], w.key.XOR32(v))
	_, err := w.w.Write(w.buf[:4])
	return err
}

// WriteBool writes true as 1 and false as 0, obfuscated.
func (w *Writer) WriteBool(v bool) error {
	var b uint8
	if v {
		b = 1
	}
	return w.WriteU8(b)
}

// WriteVarint writes a single-byte length prefix.
// Lengths outside 0..MaxVarint fail with ErrVarIntUnsupported.
func (w *Writer) WriteVarint(n int) error {
	if n < 0 || n > MaxVarint {
		return ErrVarIntUnsupported
	}
	return w.WriteU8(uint8(n))
}

// WriteBytes writes a length-prefixed obfuscated byte sequence.
func (w *Writer) WriteBytes(p []byte) error {
	if err := w.WriteVarint(len(p)); err != nil {
		return err
	}
	return w.WriteMasked(p)
}

// WriteString writes s as a length-prefixed obfuscated byte sequence.
func (w *Writer) WriteString(s string) error {
	return w.WriteBytes([]byte(s))
}

// WriteMasked writes p with every byte masked by the low byte of the key.
// p itself is left untouched.
func (w *Writer) WriteMasked(p []byte) error {
	masked := make([]byte, len(p))
	copy(masked, p)
	w.key.Mask(masked)
	_, err := w.w.Write(masked)
	return err
}

// WriteRaw writes p without masking.
func (w *Writer) WriteRaw(p []byte) error {
	_, err := w.w.Write(p)
	return err
}
