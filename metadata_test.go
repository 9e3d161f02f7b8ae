package caff

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/caff/internal/testutil"
	"github.com/meigma/caff/internal/xorio"
)

func TestMetadata_RoundTrip(t *testing.T) {
	t.Parallel()

	rng := testutil.NewRand(t)
	for range propertyRuns {
		want := randomMetadata(t, rng)
		key := Key(rng.Uint32())

		var buf bytes.Buffer
		require.NoError(t, want.Write(&buf, key))
		wantSize := 1 + len(want.FileName) + 1 + len(want.Tag) + 4 + 4 + 4 + 1 + 1 + 8
		require.Equal(t, wantSize, buf.Len())

		got, err := ReadMetadata(&buf, key)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestMetadata_Layout(t *testing.T) {
	t.Parallel()

	m := Metadata{
		FileName:     "ab",
		Tag:          "",
		Unknown1:     NewPadding([4]byte{1, 2, 3, 4}),
		Unknown2:     NewPadding([4]byte{5, 6, 7, 8}),
		FileSize:     0x00000100,
		IsObfuscated: true,
		Compression:  3,
		Trailing:     NewPadding([8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}),
	}
	key := Key(0x11223344)

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf, key))

	want := []byte{
		2 ^ 0x44, 'a' ^ 0x44, 'b' ^ 0x44,
		0 ^ 0x44,
		1, 2, 3, 4,
		5, 6, 7, 8,
		0x11, 0x22, 0x33 ^ 0x01, 0x44,
		1 ^ 0x44,
		3 ^ 0x44,
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestReadMetadata_EmptyFilename(t *testing.T) {
	t.Parallel()

	key := Key(0xDEADBEEF)
	m := Metadata{FileName: "", Tag: "tag", FileSize: 9}

	var buf bytes.Buffer
	require.NoError(t, m.Write(&buf, key), "encode does not validate file names")
	total := buf.Len()

	r := bytes.NewReader(buf.Bytes())
	_, err := ReadMetadata(r, key)
	require.ErrorIs(t, err, ErrEmptyFilename)
	assert.Equal(t, total-1, r.Len(), "only the empty name's length byte is consumed")
}

func TestReadMetadata_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     []byte
		wantErr error
	}{
		{
			name:    "continuation bit in file name length",
			raw:     []byte{0x81, 'a'},
			wantErr: ErrVarIntUnsupported,
		},
		{
			name:    "continuation bit in tag length",
			raw:     []byte{1, 'a', 0x80},
			wantErr: ErrVarIntUnsupported,
		},
		{
			name:    "invalid utf-8 file name",
			raw:     []byte{1, 0xFF},
			wantErr: ErrInvalidUTF8,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ReadMetadata(bytes.NewReader(tt.raw), 0)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMetadata_Write_NameTooLong(t *testing.T) {
	t.Parallel()

	m := Metadata{FileName: strings.Repeat("n", xorio.MaxVarint+1)}
	err := m.Write(&bytes.Buffer{}, Key(1))
	assert.ErrorIs(t, err, ErrVarIntUnsupported)

	m = Metadata{FileName: "ok", Tag: strings.Repeat("t", 200)}
	err = m.Write(&bytes.Buffer{}, Key(1))
	assert.ErrorIs(t, err, ErrVarIntUnsupported)
}
