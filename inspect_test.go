package caff

import (
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	t.Parallel()

	unknown, err := PaddingFromBytes[[8]byte]([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	require.NoError(t, err)
	trailing, err := PaddingFromBytes[[12]byte]([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 7})
	require.NoError(t, err)
	entryPad, err := PaddingFromBytes[[4]byte]([]byte{1, 2, 3, 4})
	require.NoError(t, err)

	a := &Archive{
		Header: Header{
			Magic:    DefaultMagic,
			Unknown:  unknown,
			Trailing: trailing,
			PreviewImage: PreviewImage{
				ImageType: ImageTypeNone,
				ColorType: ColorTypeNone,
			},
		},
		Body: Body{Trailing: []byte{9, 9}},
	}
	require.NoError(t, a.Body.Add(Metadata{FileName: "a.txt", Tag: "t", IsObfuscated: true}, []byte("hello")))
	require.NoError(t, a.Body.Add(Metadata{FileName: "b.bin", Unknown2: entryPad, Compression: 2}, []byte("world!")))

	r := Inspect(a)
	assert.Same(t, a, r.Archive())
	assert.True(t, r.MagicValid())
	assert.Equal(t, 2, r.FileCount())
	assert.Equal(t, 2, r.TrailingSize())
	assert.False(t, r.HasPreview())
	assert.Equal(t, uint64(11), r.TotalSize())

	regions := r.HeaderRegions()
	require.Len(t, regions, 4)
	assert.Equal(t, "header.unknown", regions[0].Region)
	assert.Equal(t, PaddingAllMax, regions[0].Class)
	assert.Equal(t, PaddingEmpty, regions[1].Class)
	assert.Equal(t, PaddingEmpty, regions[2].Class)
	assert.Equal(t, PaddingOther, regions[3].Class)

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].FileName)
	assert.Equal(t, "t", entries[0].Tag)
	assert.True(t, entries[0].IsObfuscated)
	assert.Equal(t, digest.FromString("hello"), entries[0].Digest)
	assert.Equal(t, uint32(6), entries[1].FileSize)
	assert.Equal(t, uint8(2), entries[1].Compression)
	assert.Equal(t, digest.FromString("world!"), entries[1].Digest)

	suspicious := r.Suspicious()
	require.Len(t, suspicious, 2)
	assert.Equal(t, "header.trailing", suspicious[0].Region)
	assert.Equal(t, "entry[1].unknown_2", suspicious[1].Region)
	assert.Equal(t, []byte{1, 2, 3, 4}, suspicious[1].Bytes)
}

func TestInspect_Empty(t *testing.T) {
	t.Parallel()

	r := Inspect(&Archive{Header: Header{Magic: Magic{'J', 'U', 'N', 'K'}}})
	assert.False(t, r.MagicValid())
	assert.Zero(t, r.FileCount())
	assert.Zero(t, r.TotalSize())
	assert.Empty(t, r.Entries())
	assert.Empty(t, r.Suspicious())
	assert.True(t, r.HasPreview(), "zero-valued descriptor uses the Unknown variants")
}
