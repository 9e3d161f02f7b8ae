package caff

import (
	"io"

	"github.com/meigma/caff/internal/xorio"
)

// Key is the 32-bit obfuscation key carried in the header.
//
// It is stored unobfuscated and masks every obfuscated field of the body.
// Fields narrower than 32 bits are masked with the key's low-order bits.
type Key = xorio.Key

// ReadKey reads a plain big-endian key.
func ReadKey(r io.Reader) (Key, error) {
	return xorio.ReadKey(r)
}

// WriteKey writes k as a plain big-endian uint32.
func WriteKey(w io.Writer, k Key) error {
	return xorio.WriteKey(w, k)
}
