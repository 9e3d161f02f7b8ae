// Package xorio implements the single-key XOR obfuscation used by CAFF
// archives, along with readers and writers for obfuscated fields.
//
// Integers are serialized big-endian and the XOR is applied to the numeric
// value, using the key narrowed to the width of the field. Byte sequences
// are masked byte by byte with the low byte of the key.
package xorio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Key is the 32-bit obfuscation key stored in an archive header.
type Key uint32

// Word is the set of integer widths that can be obfuscated with a Key.
type Word interface {
	~uint8 | ~uint16 | ~uint32
}

// XOR masks v with k narrowed to the width of T.
// Applying XOR twice with the same key returns the original value.
func XOR[T Word](k Key, v T) T {
	return v ^ T(k)
}

// U8 returns the low-order 8 bits of the key.
func (k Key) U8() uint8 { return uint8(k) }

// U16 returns the low-order 16 bits of the key.
func (k Key) U16() uint16 { return uint16(k) }

// U32 returns the key value.
func (k Key) U32() uint32 { return uint32(k) }

// XOR8 masks an 8-bit value.
func (k Key) XOR8(v uint8) uint8 { return XOR(k, v) }

// XOR16 masks a 16-bit value.
func (k Key) XOR16(v uint16) uint16 { return XOR(k, v) }

// XOR32 masks a 32-bit value.
func (k Key) XOR32(v uint32) uint32 { return XOR(k, v) }

// Mask XORs every byte of p in place with the low byte of the key.
func (k Key) Mask(p []byte) {
	m := k.U8()
	if m == 0 {
		return
	}
	for i := range p {
		p[i] ^= m
	}
}

func (k Key) String() string {
	return fmt.Sprintf("Key(0x%08X)", uint32(k))
}

// ReadKey reads a key stored as a plain big-endian uint32.
// The key is never obfuscated itself.
func ReadKey(r io.Reader) (Key, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return Key(binary.BigEndian.Uint32(buf[:])), nil
}

// WriteKey writes k as a plain big-endian uint32.
func WriteKey(w io.Writer, k Key) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(k))
	_, err := w.Write(buf[:])
	return err
}
