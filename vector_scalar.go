package duckdb

import (
	"time"
	"unsafe"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// getHugeInt reads the (lower, upper) halves of a 128-bit slot.
func getHugeInt(data unsafe.Pointer, row uint64) (uint64, int64) {
	p := unsafe.Add(data, uintptr(row)*hugeIntSize)
	return *(*uint64)(p), *(*int64)(unsafe.Add(p, 8))
}

// stringBytes views the bytes of a string_t slot. Up to stringInlineLength
// bytes are stored inline after the length; longer strings keep a 4-byte
// prefix and then a pointer to the full data. The view aliases native
// memory and must be copied before the chunk is released.
func (v *Vector) stringBytes(row uint64) []byte {
	return stringTBytes(unsafe.Add(v.data, uintptr(row)*stringTSize))
}

func stringTBytes(p unsafe.Pointer) []byte {
	length := *(*uint32)(p)
	if length == 0 {
		return nil
	}
	if length <= stringInlineLength {
		return unsafe.Slice((*byte)(unsafe.Add(p, 4)), length)
	}
	ptr := *(*unsafe.Pointer)(unsafe.Add(p, 8))
	return unsafe.Slice((*byte)(ptr), length)
}

func (v *Vector) getDate(row uint64) (any, error) {
	date := mapping.FromDate(getPrimitive[mapping.Date](v.data, row))
	y, m, d := mapping.DateStructMembers(&date)
	return Date{Year: int(y), Month: time.Month(m), Day: int(d)}, nil
}

func (v *Vector) getTimeTZ(row uint64) (any, error) {
	tz := mapping.FromTimeTZ(getPrimitive[mapping.TimeTZ](v.data, row))
	ts, offset := mapping.TimeTZStructMembers(&tz)
	h, m, s, micros := mapping.TimeStructMembers(&ts)
	t := Time{Hour: int(h), Minute: int(m), Second: int(s), Micros: int(micros)}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return TimeTZ{Time: t, Offset: int(offset)}, nil
}

func (v *Vector) getEnum(row uint64) (any, error) {
	var idx uint64
	switch v.phys {
	case physUint8:
		idx = uint64(getPrimitive[uint8](v.data, row))
	case physUint16:
		idx = uint64(getPrimitive[uint16](v.data, row))
	default:
		idx = uint64(getPrimitive[uint32](v.data, row))
	}
	if idx >= uint64(len(v.info.Dict)) {
		return nil, newErrorf(ErrorKindUnsupportedType, "ENUM index %d outside dictionary of %d entries", idx, len(v.info.Dict))
	}
	return v.info.Dict[idx], nil
}
