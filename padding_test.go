package caff

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/caff/internal/testutil"
)

func TestPadding_RoundTrip(t *testing.T) {
	t.Parallel()

	rng := testutil.NewRand(t)
	for range propertyRuns {
		want := randomPadding[[4]byte](t, rng)

		var buf bytes.Buffer
		require.NoError(t, want.Write(&buf))
		require.Equal(t, 4, buf.Len())

		got, err := ReadPadding[[4]byte](&buf)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestPadding_Class(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       [8]byte
		want      PaddingClass
		wantEmpty bool
		wantMax   bool
		wantStr   string
	}{
		{
			name:      "zero",
			want:      PaddingEmpty,
			wantEmpty: true,
			wantStr:   "Padding(8 bytes) - EMPTY",
		},
		{
			name:    "all max",
			raw:     [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
			want:    PaddingAllMax,
			wantMax: true,
			wantStr: "Padding(8 bytes) - ALL MAXES",
		},
		{
			name:    "mixed",
			raw:     [8]byte{0, 0, 0, 1, 0, 0, 0xFF, 0},
			want:    PaddingOther,
			wantStr: "Padding(8 bytes) - NOT EMPTY - 00 00 00 01 00 00 FF 00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := NewPadding(tt.raw)
			assert.Equal(t, tt.want, p.Class())
			assert.Equal(t, tt.wantEmpty, p.IsEmpty())
			assert.Equal(t, tt.wantMax, p.IsAllMax())
			assert.Equal(t, tt.wantStr, p.String())
			assert.Equal(t, tt.raw, p.Array())
			assert.Equal(t, tt.raw[:], p.Bytes())
		})
	}
}

func TestPadding_ZeroValueIsEmpty(t *testing.T) {
	t.Parallel()

	var p Padding[[12]byte]
	assert.True(t, p.IsEmpty())
	assert.Equal(t, 12, p.Len())
}

func TestPaddingFromBytes_WrongLength(t *testing.T) {
	t.Parallel()

	_, err := PaddingFromBytes[[4]byte]([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestReadPadding_Short(t *testing.T) {
	t.Parallel()

	_, err := ReadPadding[[8]byte](bytes.NewReader([]byte{1, 2, 3}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestPaddingClass_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "empty", PaddingEmpty.String())
	assert.Equal(t, "all-max", PaddingAllMax.String())
	assert.Equal(t, "other", PaddingOther.String())
	assert.Equal(t, "unknown", PaddingClass(99).String())
}
