package caff

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/caff/internal/testutil"
	"github.com/meigma/caff/internal/xorio"
)

// propertyRuns is the number of random values checked per property.
const propertyRuns = 256

func randomPadding[A PaddingArray](t testing.TB, rng *rand.Rand) Padding[A] {
	t.Helper()
	var zero A
	n := len(zero)

	var raw []byte
	switch rng.IntN(4) {
	case 0:
		raw = make([]byte, n)
	case 1:
		raw = make([]byte, n)
		for i := range raw {
			raw[i] = 0xFF
		}
	default:
		raw = testutil.Bytes(rng, n)
	}
	p, err := PaddingFromBytes[A](raw)
	require.NoError(t, err)
	return p
}

func randomVersion(rng *rand.Rand) Version {
	return NewVersion(uint8(rng.Uint32()), uint8(rng.Uint32()), uint8(rng.Uint32()))
}

func randomPreviewImage(t testing.TB, rng *rand.Rand) PreviewImage {
	t.Helper()
	return PreviewImage{
		ImageType: ImageType(rng.IntN(int(ImageTypeNone) + 1)),
		ColorType: ColorType(rng.IntN(int(ColorTypeNone) + 1)),
		Unknown:   randomPadding[[2]byte](t, rng),
		Width:     uint16(rng.Uint32()),
		Height:    uint16(rng.Uint32()),
		Trailing:  randomPadding[[8]byte](t, rng),
	}
}

func randomHeader(t testing.TB, rng *rand.Rand) Header {
	t.Helper()
	h := Header{
		Magic:          DefaultMagic,
		ArchiveVersion: randomVersion(rng),
		FormatVersion:  randomVersion(rng),
		Key:            Key(rng.Uint32()),
		Unknown:        randomPadding[[8]byte](t, rng),
		PreviewImage:   randomPreviewImage(t, rng),
		Trailing:       randomPadding[[12]byte](t, rng),
	}
	copy(h.FormatIdentifier[:], testutil.Bytes(rng, 4))
	return h
}

func randomMetadata(t testing.TB, rng *rand.Rand) Metadata {
	t.Helper()
	return Metadata{
		FileName:     testutil.String(rng, 1, xorio.MaxVarint),
		Tag:          testutil.String(rng, 0, xorio.MaxVarint),
		Unknown1:     randomPadding[[4]byte](t, rng),
		Unknown2:     randomPadding[[4]byte](t, rng),
		FileSize:     rng.Uint32(),
		IsObfuscated: rng.IntN(2) == 1,
		Compression:  uint8(rng.Uint32()),
		Trailing:     randomPadding[[8]byte](t, rng),
	}
}

func randomBody(t testing.TB, rng *rand.Rand, entries int) Body {
	t.Helper()
	var b Body
	for range entries {
		require.NoError(t, b.Add(randomMetadata(t, rng), testutil.BytesUpTo(rng, 64)))
	}
	if trailing := testutil.BytesUpTo(rng, 16); len(trailing) > 0 {
		b.Trailing = trailing
	}
	return b
}

func randomArchive(t testing.TB, rng *rand.Rand) *Archive {
	t.Helper()
	return &Archive{
		Header: randomHeader(t, rng),
		Body:   randomBody(t, rng, rng.IntN(5)),
	}
}
