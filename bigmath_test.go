package duckdb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAPDMath(t *testing.T) {
	m := NewAPDMath(0)
	require.True(t, m.Available())

	tests := []struct {
		name string
		op   func(a, b string) (string, error)
		a, b string
		want string
	}{
		{"add", m.Add, "9223372036854775807", "1", "9223372036854775808"},
		{"sub", m.Sub, "0", "18446744073709551616", "-18446744073709551616"},
		{"mul", m.Mul, "-1", "18446744073709551616", "-18446744073709551616"},
		{"div", m.Div, "100", "4", "25"},
		{"mod", m.Mod, "17", "5", "2"},
		{"pow", m.Pow, "2", "64", "18446744073709551616"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(tt.a, tt.b)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := m.Add("twelve", "1")
	require.Error(t, err)
}

func TestNoBigIntMath(t *testing.T) {
	m := NoBigIntMath{}
	require.False(t, m.Available())
	for _, op := range []func(a, b string) (string, error){m.Add, m.Sub, m.Mul, m.Div, m.Mod, m.Pow} {
		_, err := op("1", "2")
		require.ErrorIs(t, err, ErrBigNumberUnsupported)
	}
}

func TestComposeHugeInt(t *testing.T) {
	bm := NewAPDMath(0)

	t.Run("fits int64", func(t *testing.T) {
		for _, want := range []int64{0, 1, -1, math.MaxInt64, math.MinInt64} {
			got, err := composeHugeInt(NoBigIntMath{}, uint64(want), want>>63)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	})

	t.Run("2^63", func(t *testing.T) {
		_, err := composeHugeInt(NoBigIntMath{}, 1<<63, 0)
		require.ErrorIs(t, err, ErrBigNumberUnsupported)

		got, err := composeHugeInt(bm, 1<<63, 0)
		require.NoError(t, err)
		require.Equal(t, "9223372036854775808", got)
	})

	t.Run("negative beyond int64", func(t *testing.T) {
		got, err := composeHugeInt(bm, math.MaxUint64, -2)
		require.NoError(t, err)
		require.Equal(t, "-18446744073709551617", got)
	})

	t.Run("HUGEINT minimum", func(t *testing.T) {
		got, err := composeHugeInt(bm, 0, math.MinInt64)
		require.NoError(t, err)
		require.Equal(t, "-170141183460469231731687303715884105728", got)
	})

	t.Run("nil math", func(t *testing.T) {
		_, err := composeHugeInt(nil, 0, 1)
		require.ErrorIs(t, err, ErrBigNumberUnsupported)
	})
}

func TestComposeUnsigned(t *testing.T) {
	bm := NewAPDMath(0)

	got, err := composeUBigInt(NoBigIntMath{}, math.MaxInt64)
	require.NoError(t, err)
	require.Equal(t, int64(math.MaxInt64), got)

	_, err = composeUBigInt(NoBigIntMath{}, math.MaxUint64)
	require.ErrorIs(t, err, ErrBigNumberUnsupported)

	got, err = composeUBigInt(bm, math.MaxUint64)
	require.NoError(t, err)
	require.Equal(t, "18446744073709551615", got)

	got, err = composeUHugeInt(bm, math.MaxUint64, math.MaxUint64)
	require.NoError(t, err)
	require.Equal(t, "340282366920938463463374607431768211455", got)

	got, err = composeUHugeInt(NoBigIntMath{}, 42, 0)
	require.NoError(t, err)
	require.Equal(t, int64(42), got)
}
