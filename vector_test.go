package duckdb

import (
	"encoding/binary"
	"math"
	"runtime"
	"testing"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// stringSlots lays out strs as native string_t descriptors. The returned
// buffers back the long strings and must stay alive while the slots are read.
func stringSlots(strs []string) ([]uint64, [][]byte) {
	slots := make([]uint64, 2*len(strs))
	var keep [][]byte
	for i, s := range strs {
		p := unsafe.Pointer(&slots[2*i])
		*(*uint32)(p) = uint32(len(s))
		if len(s) <= stringInlineLength {
			copy(unsafe.Slice((*byte)(unsafe.Add(p, 4)), stringInlineLength), s)
			continue
		}
		buf := []byte(s)
		keep = append(keep, buf)
		copy(unsafe.Slice((*byte)(unsafe.Add(p, 4)), 4), s[:4])
		*(*unsafe.Pointer)(unsafe.Add(p, 8)) = unsafe.Pointer(&buf[0])
	}
	return slots, keep
}

func validityOf(n int, nulls ...int) []uint64 {
	mask := make([]uint64, validityWords(uint64(n)))
	for i := range mask {
		mask[i] = math.MaxUint64
	}
	for _, row := range nulls {
		mask[row/64] &^= 1 << (row % 64)
	}
	return mask
}

func rawVector(t *testing.T, info *TypeInfo, data unsafe.Pointer, mask []uint64, bm BigIntMath) *Vector {
	var maskPtr unsafe.Pointer
	if mask != nil {
		maskPtr = unsafe.Pointer(&mask[0])
	}
	v, err := newRawVector(info, data, maskPtr, newConverter(bm, false))
	require.NoError(t, err)
	return v
}

func collect(t *testing.T, v *Vector, n uint64) []any {
	var out []any
	for val, err := range v.Values(n) {
		require.NoError(t, err)
		out = append(out, val)
	}
	return out
}

func TestVectorPrimitives(t *testing.T) {
	t.Run("INTEGER with NULLs", func(t *testing.T) {
		data := []int32{1, 2, 3, 4}
		mask := validityOf(4, 1, 3)
		v := rawVector(t, mustTypeInfo(TYPE_INTEGER), unsafe.Pointer(&data[0]), mask, nil)
		require.Equal(t, []any{int32(1), nil, int32(3), nil}, collect(t, v, 4))
	})

	t.Run("BOOLEAN without mask", func(t *testing.T) {
		data := []bool{true, false}
		v := rawVector(t, mustTypeInfo(TYPE_BOOLEAN), unsafe.Pointer(&data[0]), nil, nil)
		require.Equal(t, []any{true, false}, collect(t, v, 2))
	})

	t.Run("DOUBLE", func(t *testing.T) {
		data := []float64{1.5, math.Inf(-1)}
		v := rawVector(t, mustTypeInfo(TYPE_DOUBLE), unsafe.Pointer(&data[0]), nil, nil)
		require.Equal(t, []any{1.5, math.Inf(-1)}, collect(t, v, 2))
	})

	t.Run("type", func(t *testing.T) {
		data := []int8{1}
		v := rawVector(t, mustTypeInfo(TYPE_TINYINT), unsafe.Pointer(&data[0]), nil, nil)
		require.Equal(t, TYPE_TINYINT, v.Type().Type)
	})
}

func TestVectorStrings(t *testing.T) {
	strs := []string{"", "short", "twelve chars", "thirteen char", "a much longer string that lives out of line"}
	slots, keep := stringSlots(strs)
	defer runtime.KeepAlive(keep)

	t.Run("VARCHAR", func(t *testing.T) {
		v := rawVector(t, mustTypeInfo(TYPE_VARCHAR), unsafe.Pointer(&slots[0]), nil, nil)
		got := collect(t, v, uint64(len(strs)))
		for i, s := range strs {
			require.Equal(t, s, got[i])
		}
	})

	t.Run("inline boundary", func(t *testing.T) {
		require.Len(t, strs[2], stringInlineLength)
		require.Len(t, strs[3], stringInlineLength+1)
	})

	t.Run("BLOB is copied", func(t *testing.T) {
		v := rawVector(t, mustTypeInfo(TYPE_BLOB), unsafe.Pointer(&slots[0]), nil, nil)
		val, err := v.Value(4)
		require.NoError(t, err)
		b := val.([]byte)
		require.Equal(t, []byte(strs[4]), b)
		b[0] = 'X'
		require.Equal(t, byte('a'), keep[1][0])
	})
}

func TestVectorBigIntegers(t *testing.T) {
	t.Run("HUGEINT", func(t *testing.T) {
		// (lower, upper) pairs: 2^63-1, 2^63, -1.
		data := []uint64{math.MaxInt64, 0, 1 << 63, 0, math.MaxUint64, math.MaxUint64}
		info := mustTypeInfo(TYPE_HUGEINT)

		v := rawVector(t, info, unsafe.Pointer(&data[0]), nil, NoBigIntMath{})
		val, err := v.Value(0)
		require.NoError(t, err)
		require.Equal(t, int64(math.MaxInt64), val)
		_, err = v.Value(1)
		require.ErrorIs(t, err, ErrBigNumberUnsupported)
		val, err = v.Value(2)
		require.NoError(t, err)
		require.Equal(t, int64(-1), val)

		v = rawVector(t, info, unsafe.Pointer(&data[0]), nil, NewAPDMath(0))
		val, err = v.Value(1)
		require.NoError(t, err)
		require.Equal(t, "9223372036854775808", val)
	})

	t.Run("UBIGINT -1", func(t *testing.T) {
		data := []uint64{math.MaxUint64, 7}
		v := rawVector(t, mustTypeInfo(TYPE_UBIGINT), unsafe.Pointer(&data[0]), nil, NewAPDMath(0))
		require.Equal(t, []any{"18446744073709551615", int64(7)}, collect(t, v, 2))

		v = rawVector(t, mustTypeInfo(TYPE_UBIGINT), unsafe.Pointer(&data[0]), nil, nil)
		_, err := v.Value(0)
		require.ErrorIs(t, err, ErrBigNumberUnsupported)
	})

	t.Run("UUID", func(t *testing.T) {
		id := uuid.MustParse("01234567-89ab-cdef-0123-456789abcdef")
		data := []uint64{
			binary.BigEndian.Uint64(id[8:]),
			binary.BigEndian.Uint64(id[:8]) ^ (1 << 63),
		}
		v := rawVector(t, mustTypeInfo(TYPE_UUID), unsafe.Pointer(&data[0]), nil, nil)
		val, err := v.Value(0)
		require.NoError(t, err)
		require.Equal(t, id, val)
	})
}

func TestVectorDecimal(t *testing.T) {
	decimal := func(width, scale uint8) *TypeInfo {
		info, err := NewDecimalInfo(width, scale)
		require.NoError(t, err)
		return info
	}

	t.Run("precision 2", func(t *testing.T) {
		data := []int16{45}
		v := rawVector(t, decimal(2, 2), unsafe.Pointer(&data[0]), nil, nil)
		require.Equal(t, []any{0.45}, collect(t, v, 1))
	})

	t.Run("precision 5", func(t *testing.T) {
		data := []int32{12345}
		v := rawVector(t, decimal(5, 2), unsafe.Pointer(&data[0]), nil, nil)
		require.Equal(t, []any{123.45}, collect(t, v, 1))
	})

	t.Run("precision 8", func(t *testing.T) {
		data := []int32{12345}
		v := rawVector(t, decimal(8, 2), unsafe.Pointer(&data[0]), nil, nil)
		require.Equal(t, []any{123.45}, collect(t, v, 1))
	})

	t.Run("precision 17", func(t *testing.T) {
		data := []int64{12345}
		v := rawVector(t, decimal(17, 2), unsafe.Pointer(&data[0]), nil, nil)
		require.Equal(t, []any{123.45}, collect(t, v, 1))
	})

	t.Run("precision 30", func(t *testing.T) {
		data := []uint64{12345, 0, 1 << 63, 0}
		v := rawVector(t, decimal(30, 2), unsafe.Pointer(&data[0]), nil, nil)
		val, err := v.Value(0)
		require.NoError(t, err)
		require.Equal(t, 123.45, val)

		_, err = v.Value(1)
		require.ErrorIs(t, err, ErrBigNumberUnsupported)

		v = rawVector(t, decimal(30, 2), unsafe.Pointer(&data[0]), nil, NewAPDMath(0))
		val, err = v.Value(1)
		require.NoError(t, err)
		require.InDelta(t, 9.223372036854776e16, val, 1)
	})
}

func TestVectorTimestamps(t *testing.T) {
	instant := time.Date(2021, 6, 15, 10, 30, 0, 123_456_789, time.UTC)
	tests := []struct {
		typ   Type
		ticks int64
		want  time.Time
		nanos int32
	}{
		{TYPE_TIMESTAMP_S, instant.Unix(), instant.Truncate(time.Second), 0},
		{TYPE_TIMESTAMP_MS, instant.UnixMilli(), instant.Truncate(time.Millisecond), 0},
		{TYPE_TIMESTAMP, instant.UnixMicro(), instant.Truncate(time.Microsecond), 456_000},
		{TYPE_TIMESTAMP_NS, instant.UnixNano(), instant, 456_789},
		{TYPE_TIMESTAMP_TZ, instant.UnixMicro(), instant.Truncate(time.Microsecond), 456_000},
	}
	for _, tt := range tests {
		t.Run(typeName(tt.typ), func(t *testing.T) {
			data := []int64{tt.ticks}
			v := rawVector(t, mustTypeInfo(tt.typ), unsafe.Pointer(&data[0]), nil, nil)
			val, err := v.Value(0)
			require.NoError(t, err)
			ts := val.(Timestamp)
			require.True(t, tt.want.Equal(ts.Time()), "%s != %s", tt.want, ts.Time())
			require.Equal(t, tt.nanos, ts.Nanos)
			require.Equal(t, 0, ts.Base.Nanosecond()%int(time.Millisecond))
			require.Equal(t, tt.typ == TYPE_TIMESTAMP_TZ, ts.TZ)
		})
	}
}

func TestVectorEnum(t *testing.T) {
	info := NewEnumInfo("sad", "ok", "happy")
	data := []uint8{2, 0, 7}
	v := rawVector(t, info, unsafe.Pointer(&data[0]), nil, nil)

	var got []any
	var err error
	for val, e := range v.Values(3) {
		if e != nil {
			err = e
			break
		}
		got = append(got, val)
	}
	require.Equal(t, []any{"happy", "sad"}, got)
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestVectorNested(t *testing.T) {
	t.Run("LIST", func(t *testing.T) {
		elems := []int32{1, 2, 3, 4}
		elemMask := validityOf(4, 2)
		entries := []uint64{0, 3, 3, 1, 4, 0}
		listMask := validityOf(4, 3)

		info := NewListInfo(mustTypeInfo(TYPE_INTEGER))
		v := rawVector(t, info, unsafe.Pointer(&entries[0]), listMask, nil)
		v.children = append(v.children, rawVector(t, info.Children[0], unsafe.Pointer(&elems[0]), elemMask, nil))

		require.Equal(t, []any{
			[]any{int32(1), int32(2), nil},
			[]any{int32(4)},
			[]any{},
			nil,
		}, collect(t, v, 4))
	})

	t.Run("ARRAY", func(t *testing.T) {
		elems := []int64{1, 2, 3, 4}
		info, err := NewArrayInfo(mustTypeInfo(TYPE_BIGINT), 2)
		require.NoError(t, err)
		v := rawVector(t, info, nil, nil, nil)
		v.children = append(v.children, rawVector(t, info.Children[0], unsafe.Pointer(&elems[0]), nil, nil))

		require.Equal(t, []any{[]any{int64(1), int64(2)}, []any{int64(3), int64(4)}}, collect(t, v, 2))
	})

	t.Run("STRUCT", func(t *testing.T) {
		ids := []int32{7, 8}
		names, keep := stringSlots([]string{"quack", ""})
		defer runtime.KeepAlive(keep)

		info, err := NewStructInfo(
			StructEntry{Name: "id", Info: mustTypeInfo(TYPE_INTEGER)},
			StructEntry{Name: "name", Info: mustTypeInfo(TYPE_VARCHAR)},
		)
		require.NoError(t, err)
		v := rawVector(t, info, nil, nil, nil)
		v.children = append(v.children,
			rawVector(t, info.Children[0], unsafe.Pointer(&ids[0]), nil, nil),
			rawVector(t, info.Children[1], unsafe.Pointer(&names[0]), validityOf(2, 1), nil),
		)

		require.Equal(t, []any{
			map[string]any{"id": int32(7), "name": "quack"},
			map[string]any{"id": int32(8), "name": nil},
		}, collect(t, v, 2))
	})

	t.Run("MAP keeps order", func(t *testing.T) {
		keys, keep := stringSlots([]string{"z", "a"})
		defer runtime.KeepAlive(keep)
		values := []int32{1, 2}
		entries := []uint64{0, 2}

		info := NewMapInfo(mustTypeInfo(TYPE_VARCHAR), mustTypeInfo(TYPE_INTEGER))
		v := rawVector(t, info, unsafe.Pointer(&entries[0]), nil, nil)
		entry := rawVector(t, mapEntryInfo(info), nil, nil, nil)
		entry.children = append(entry.children,
			rawVector(t, info.Children[0], unsafe.Pointer(&keys[0]), nil, nil),
			rawVector(t, info.Children[1], unsafe.Pointer(&values[0]), nil, nil),
		)
		v.children = append(v.children, entry)

		require.Equal(t, []any{OrderedMap{{Key: "z", Value: int32(1)}, {Key: "a", Value: int32(2)}}}, collect(t, v, 1))
	})

	t.Run("UNION", func(t *testing.T) {
		tags := []uint8{1, 0}
		nums := []int32{5, 0}
		strs, keep := stringSlots([]string{"", "duck"})
		defer runtime.KeepAlive(keep)

		info, err := NewUnionInfo(
			StructEntry{Name: "num", Info: mustTypeInfo(TYPE_INTEGER)},
			StructEntry{Name: "str", Info: mustTypeInfo(TYPE_VARCHAR)},
		)
		require.NoError(t, err)
		v := rawVector(t, info, nil, nil, nil)
		v.children = append(v.children,
			rawVector(t, mustTypeInfo(TYPE_UTINYINT), unsafe.Pointer(&tags[0]), nil, nil),
			rawVector(t, info.Children[0], unsafe.Pointer(&nums[0]), nil, nil),
			rawVector(t, info.Children[1], unsafe.Pointer(&strs[0]), nil, nil),
		)

		require.Equal(t, []any{Union{Tag: "str", Value: ""}, Union{Tag: "num", Value: int32(0)}}, collect(t, v, 2))
	})
}

func TestPhysicalOf(t *testing.T) {
	decimal := func(width uint8) *TypeInfo {
		info, err := NewDecimalInfo(width, 0)
		require.NoError(t, err)
		return info
	}
	require.Equal(t, physInt16, physicalOf(decimal(4)))
	require.Equal(t, physInt32, physicalOf(decimal(9)))
	require.Equal(t, physInt64, physicalOf(decimal(18)))
	require.Equal(t, physInt128, physicalOf(decimal(38)))

	dict := make([]string, 256)
	for i := range dict {
		dict[i] = string(rune('a' + i%26))
	}
	require.Equal(t, physUint8, physicalOf(NewEnumInfo(dict[0], dict[1:255]...)))
	require.Equal(t, physUint16, physicalOf(NewEnumInfo(dict[0], dict[1:]...)))

	require.Equal(t, uintptr(16), physicalOf(mustTypeInfo(TYPE_VARCHAR)).size())
	require.Equal(t, uintptr(16), physicalOf(mustTypeInfo(TYPE_INTERVAL)).size())
	require.Equal(t, uintptr(16), physicalOf(mustTypeInfo(TYPE_UUID)).size())
	require.Equal(t, uintptr(4), physicalOf(mustTypeInfo(TYPE_DATE)).size())
}
