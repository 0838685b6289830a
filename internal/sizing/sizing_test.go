package sizing

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOverflow = errors.New("overflow")

func TestToInt64(t *testing.T) {
	t.Parallel()

	v, err := ToInt64(42, errOverflow)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	_, err = ToInt64(math.MaxUint64, errOverflow)
	assert.ErrorIs(t, err, errOverflow)
}

func TestToInt(t *testing.T) {
	t.Parallel()

	v, err := ToInt(7, errOverflow)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = ToInt(math.MaxUint64, errOverflow)
	assert.ErrorIs(t, err, errOverflow)
}

func TestAddInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b int64
		want int64
		ok   bool
	}{
		{"simple", 1, 2, 3, true},
		{"zero", 0, 0, 0, true},
		{"overflow", math.MaxInt64, 1, 0, false},
		{"negative a", -1, 1, 0, false},
		{"negative b", 1, -1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := AddInt64(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInRange(t *testing.T) {
	t.Parallel()

	assert.True(t, InRange(0, 10, 10))
	assert.True(t, InRange(10, 0, 10))
	assert.False(t, InRange(5, 6, 10))
	assert.False(t, InRange(-1, 1, 10))
	assert.False(t, InRange(0, 1, -1))
	assert.False(t, InRange(math.MaxInt64, 1, math.MaxInt64))
}

func TestReadFullWithLimit(t *testing.T) {
	t.Parallel()

	data, err := ReadFullWithLimit(bytes.NewReader([]byte("abcdef")), 4, 10, errOverflow)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), data)

	_, err = ReadFullWithLimit(bytes.NewReader([]byte("abcdef")), 11, 10, errOverflow)
	assert.ErrorIs(t, err, errOverflow)

	_, err = ReadFullWithLimit(bytes.NewReader([]byte("abcdef")), -1, 0, errOverflow)
	assert.ErrorIs(t, err, errOverflow)

	_, err = ReadFullWithLimit(bytes.NewReader([]byte("ab")), 4, 0, errOverflow)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
