package duckdb

import (
	"slices"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	t.Run("nil mask", func(t *testing.T) {
		for _, row := range []uint64{0, 1, 63, 64, 2047} {
			require.True(t, isValid(nil, row))
		}
	})

	t.Run("bits across words", func(t *testing.T) {
		mask := make([]uint64, validityWords(130))
		require.Len(t, mask, 3)
		valid := []uint64{0, 5, 63, 64, 127, 129}
		for _, row := range valid {
			mask[row/64] |= 1 << (row % 64)
		}

		ptr := unsafe.Pointer(&mask[0])
		for row := uint64(0); row < 130; row++ {
			require.Equal(t, slices.Contains(valid, row), isValid(ptr, row), "row %d", row)
		}
	})
}
