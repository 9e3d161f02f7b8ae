package caff

import (
	"fmt"
	"io"
)

// PaddingArray is the set of opaque region sizes used by the format.
type PaddingArray interface {
	~[2]byte | ~[4]byte | ~[8]byte | ~[12]byte
}

// PaddingClass classifies the contents of an opaque region.
type PaddingClass uint8

const (
	// PaddingEmpty means every byte is zero.
	PaddingEmpty PaddingClass = iota

	// PaddingAllMax means every byte is 0xFF.
	PaddingAllMax

	// PaddingOther means anything else.
	PaddingOther
)

// String returns the string representation of the class.
func (c PaddingClass) String() string {
	switch c {
	case PaddingEmpty:
		return "empty"
	case PaddingAllMax:
		return "all-max"
	case PaddingOther:
		return "other"
	default:
		return "unknown"
	}
}

// Padding is a fixed-size region whose meaning is unknown.
//
// Its bytes are read and written verbatim. The classification methods exist
// for diagnostics only and never affect decoding or encoding.
type Padding[A PaddingArray] struct {
	b A
}

// NewPadding returns a Padding holding b.
func NewPadding[A PaddingArray](b A) Padding[A] {
	return Padding[A]{b: b}
}

// PaddingFromBytes builds a Padding from p, which must be exactly as long
// as the region.
func PaddingFromBytes[A PaddingArray](p []byte) (Padding[A], error) {
	var b A
	if len(p) != len(b) {
		return Padding[A]{}, fmt.Errorf("padding: got %d bytes, want %d", len(p), len(b))
	}
	for i := range len(b) {
		b[i] = p[i]
	}
	return Padding[A]{b: b}, nil
}

// Array returns the raw bytes.
func (p Padding[A]) Array() A {
	return p.b
}

// Bytes returns a copy of the raw bytes.
func (p Padding[A]) Bytes() []byte {
	out := make([]byte, len(p.b))
	for i := range out {
		out[i] = p.b[i]
	}
	return out
}

// Len returns the size of the region in bytes.
func (p Padding[A]) Len() int {
	return len(p.b)
}

// IsEmpty reports whether every byte is zero.
func (p Padding[A]) IsEmpty() bool {
	return p.Class() == PaddingEmpty
}

// IsAllMax reports whether every byte is 0xFF.
func (p Padding[A]) IsAllMax() bool {
	return p.Class() == PaddingAllMax
}

// Class classifies the region's contents.
func (p Padding[A]) Class() PaddingClass {
	return classify(p.Bytes())
}

func (p Padding[A]) String() string {
	switch p.Class() {
	case PaddingEmpty:
		return fmt.Sprintf("Padding(%d bytes) - EMPTY", p.Len())
	case PaddingAllMax:
		return fmt.Sprintf("Padding(%d bytes) - ALL MAXES", p.Len())
	default:
		return fmt.Sprintf("Padding(%d bytes) - NOT EMPTY - % X", p.Len(), p.Bytes())
	}
}

// ReadPadding reads a region verbatim.
func ReadPadding[A PaddingArray](r io.Reader) (Padding[A], error) {
	var b A
	buf := make([]byte, len(b))
	if _, err := io.ReadFull(r, buf); err != nil {
		return Padding[A]{}, err
	}
	return PaddingFromBytes[A](buf)
}

// Write writes the region verbatim.
func (p Padding[A]) Write(w io.Writer) error {
	_, err := w.Write(p.Bytes())
	return err
}

// classify never has an empty input: the format has no zero-size regions.
func classify(p []byte) PaddingClass {
	zero, allMax := true, true
	for _, b := range p {
		if b != 0 {
			zero = false
		}
		if b != 0xFF {
			allMax = false
		}
	}
	switch {
	case zero:
		return PaddingEmpty
	case allMax:
		return PaddingAllMax
	default:
		return PaddingOther
	}
}

// readPadding reads a region and reports it when it is not all zero.
func readPadding[A PaddingArray](c *codec, r io.Reader, region string, index int) (Padding[A], error) {
	var p Padding[A]
	err := c.trace(r, "read", region, func() error {
		var err error
		p, err = ReadPadding[A](r)
		return err
	})
	if err != nil {
		return p, fmt.Errorf("read %s: %w", region, err)
	}

	class := p.Class()
	if class == PaddingEmpty {
		return p, nil
	}
	attrs := []any{"region", region, "value", p.String()}
	if index >= 0 {
		attrs = append(attrs, "index", index)
	}
	if class == PaddingAllMax {
		c.log().Debug("opaque region", attrs...)
	} else {
		c.log().Warn("opaque region", attrs...)
	}
	c.emit(Event{Kind: EventPadding, Region: region, Index: index, Class: class, Bytes: p.Bytes()})
	return p, nil
}

func writePadding[A PaddingArray](c *codec, w io.Writer, region string, p Padding[A]) error {
	err := c.trace(w, "write", region, func() error {
		return p.Write(w)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", region, err)
	}
	return nil
}
