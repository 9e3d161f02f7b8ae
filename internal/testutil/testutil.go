// Package testutil provides helpers shared by the package tests.
package testutil

import (
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"strconv"
	"testing"
	"unicode/utf8"
)

// SeedEnv overrides the random seed used by NewRand.
const SeedEnv = "CAFF_TEST_SEED"

// NewRand returns a deterministic generator for tb.
// The seed is logged so a failing run can be replayed via SeedEnv.
func NewRand(tb testing.TB) *rand.Rand {
	tb.Helper()

	seed := uint64(0x5EED)
	if s := os.Getenv(SeedEnv); s != "" {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			tb.Fatalf("parse %s: %v", SeedEnv, err)
		}
		seed = v
	}
	tb.Logf("%s=%d", SeedEnv, seed)
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// Bytes returns n random bytes.
func Bytes(rng *rand.Rand, n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(rng.Uint32())
	}
	return p
}

// BytesUpTo returns between 0 and maxLen random bytes.
func BytesUpTo(rng *rand.Rand, maxLen int) []byte {
	return Bytes(rng, rng.IntN(maxLen+1))
}

var runes = []rune("abcdefghijklmnopqrstuvwxyz0123456789._-/ éü漢字🙂")

// String returns a valid UTF-8 string of at least minLen runes whose
// encoding is at most maxLen bytes.
func String(rng *rand.Rand, minLen, maxLen int) string {
	want := minLen + rng.IntN(maxLen-minLen+1)
	buf := make([]byte, 0, maxLen)
	for i := 0; i < want; i++ {
		r := runes[rng.IntN(len(runes))]
		if len(buf)+utf8.RuneLen(r) > maxLen {
			r = 'x'
			if len(buf)+1 > maxLen {
				break
			}
		}
		buf = utf8.AppendRune(buf, r)
	}
	return string(buf)
}

// SeekBuffer is an in-memory io.ReadWriteSeeker for tests that need a
// seekable destination.
type SeekBuffer struct {
	data []byte
	pos  int64
}

// NewSeekBuffer returns a SeekBuffer holding data, positioned at 0.
func NewSeekBuffer(data []byte) *SeekBuffer {
	return &SeekBuffer{data: data}
}

// Read implements io.Reader.
func (b *SeekBuffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

// Write implements io.Writer, overwriting or extending at the current position.
func (b *SeekBuffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

// Seek implements io.Seeker.
func (b *SeekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.pos + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.New("testutil: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("testutil: negative position")
	}
	b.pos = abs
	return abs, nil
}

// Bytes returns the backing slice.
func (b *SeekBuffer) Bytes() []byte {
	return b.data
}
