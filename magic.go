package caff

import (
	"fmt"
	"io"
)

// Magic is the 4-byte signature at the start of every archive.
type Magic [4]byte

// DefaultMagic is the expected signature, "CAFF".
var DefaultMagic = Magic{0x43, 0x41, 0x46, 0x46}

// IsValid reports whether m equals DefaultMagic.
func (m Magic) IsValid() bool {
	return m == DefaultMagic
}

func (m Magic) String() string {
	if m.IsValid() {
		return fmt.Sprintf("Magic(%q) - VALID", m[:])
	}
	return fmt.Sprintf("Magic(%q) - INVALID", m[:])
}

// ReadMagic reads the signature without validating it.
func ReadMagic(r io.Reader) (Magic, error) {
	var m Magic
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return Magic{}, err
	}
	return m, nil
}

// Write writes the stored signature as-is.
func (m Magic) Write(w io.Writer) error {
	_, err := w.Write(m[:])
	return err
}
