package sizing

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOverflow = errors.New("overflow")

func TestToInt(t *testing.T) {
	t.Parallel()

	n, err := ToInt(1<<20, errOverflow)
	require.NoError(t, err)
	assert.Equal(t, 1<<20, n)

	_, err = ToInt(math.MaxUint64, errOverflow)
	assert.ErrorIs(t, err, errOverflow)
}

func TestReadAll(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		max     uint64
		wantErr error
	}{
		{"unlimited", bytes.Repeat([]byte{7}, 4096), 0, nil},
		{"empty", nil, 0, nil},
		{"at limit", []byte{1, 2, 3}, 3, nil},
		{"over limit", []byte{1, 2, 3, 4}, 3, errOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ReadAll(bytes.NewReader(tt.data), tt.max, errOverflow)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, len(tt.data))
			if len(tt.data) > 0 {
				assert.Equal(t, tt.data, got)
			}
		})
	}
}
