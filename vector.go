package duckdb

import (
	"iter"
	"unsafe"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// Vector decodes one column of a data chunk. Its type and physical layout
// are resolved once when the Vector is built. A Vector borrows the memory of
// its chunk and must not be used after the chunk is closed.
type Vector struct {
	info *TypeInfo
	phys Physical
	conv *converter

	data unsafe.Pointer
	mask unsafe.Pointer

	// getFn decodes a row known to be valid.
	getFn func(row uint64) (any, error)

	children []*Vector
}

// newVector builds the decoder of a native vector, recursing into the
// children of nested types.
func newVector(vec mapping.Vector, info *TypeInfo, conv *converter) (*Vector, error) {
	v := &Vector{
		info: info,
		phys: physicalOf(info),
		conv: conv,
		data: mapping.VectorGetData(vec),
		mask: mapping.VectorGetValidity(vec),
	}

	var err error
	switch info.Type {
	case TYPE_LIST:
		err = v.addChild(mapping.ListVectorGetChild(vec), info.Children[0])
	case TYPE_MAP:
		err = v.addChild(mapping.ListVectorGetChild(vec), mapEntryInfo(info))
	case TYPE_ARRAY:
		err = v.addChild(mapping.ArrayVectorGetChild(vec), info.Children[0])
	case TYPE_STRUCT:
		for i, child := range info.Children {
			if err = v.addChild(mapping.StructVectorGetChild(vec, mapping.IdxT(i)), child); err != nil {
				break
			}
		}
	case TYPE_UNION:
		// Child 0 holds the tags, member i lives in child i+1.
		if err = v.addChild(mapping.StructVectorGetChild(vec, 0), mustTypeInfo(TYPE_UTINYINT)); err != nil {
			break
		}
		for i, child := range info.Children {
			if err = v.addChild(mapping.StructVectorGetChild(vec, mapping.IdxT(i+1)), child); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return v, v.init()
}

func (v *Vector) addChild(vec mapping.Vector, info *TypeInfo) error {
	child, err := newVector(vec, info, v.conv)
	if err != nil {
		return err
	}
	v.children = append(v.children, child)
	return nil
}

// newRawVector decodes a flat, non-nested buffer.
func newRawVector(info *TypeInfo, data unsafe.Pointer, mask unsafe.Pointer, conv *converter) (*Vector, error) {
	v := &Vector{info: info, phys: physicalOf(info), conv: conv, data: data, mask: mask}
	return v, v.init()
}

// mapEntryInfo is the physical child of a MAP: a STRUCT of key and value.
func mapEntryInfo(info *TypeInfo) *TypeInfo {
	return &TypeInfo{
		Type:     TYPE_STRUCT,
		Names:    []string{"key", "value"},
		Children: []*TypeInfo{info.Children[0], info.Children[1]},
	}
}

func (v *Vector) init() error {
	switch v.info.Type {
	case TYPE_BOOLEAN:
		initPrimitive[bool](v)
	case TYPE_TINYINT:
		initPrimitive[int8](v)
	case TYPE_SMALLINT:
		initPrimitive[int16](v)
	case TYPE_INTEGER:
		initPrimitive[int32](v)
	case TYPE_BIGINT:
		initPrimitive[int64](v)
	case TYPE_UTINYINT:
		initPrimitive[uint8](v)
	case TYPE_USMALLINT:
		initPrimitive[uint16](v)
	case TYPE_UINTEGER:
		initPrimitive[uint32](v)
	case TYPE_UBIGINT:
		v.getFn = func(row uint64) (any, error) {
			return composeUBigInt(v.conv.bigMath, getPrimitive[uint64](v.data, row))
		}
	case TYPE_FLOAT:
		initPrimitive[float32](v)
	case TYPE_DOUBLE:
		initPrimitive[float64](v)
	case TYPE_VARCHAR:
		v.getFn = func(row uint64) (any, error) {
			return string(v.stringBytes(row)), nil
		}
	case TYPE_BLOB:
		v.getFn = func(row uint64) (any, error) {
			b := v.stringBytes(row)
			out := make([]byte, len(b))
			copy(out, b)
			return out, nil
		}
	case TYPE_BIT:
		v.getFn = func(row uint64) (any, error) {
			return decodeBit(v.stringBytes(row)), nil
		}
	case TYPE_DATE:
		v.getFn = v.getDate
	case TYPE_TIME:
		v.getFn = func(row uint64) (any, error) {
			ti := getPrimitive[mapping.Time](v.data, row)
			return timeFromMicros(mapping.TimeMembers(&ti))
		}
	case TYPE_TIME_TZ:
		v.getFn = v.getTimeTZ
	case TYPE_TIMESTAMP, TYPE_TIMESTAMP_S, TYPE_TIMESTAMP_MS, TYPE_TIMESTAMP_NS, TYPE_TIMESTAMP_TZ:
		unit := timestampUnit(v.info.Type)
		tz := v.info.Type == TYPE_TIMESTAMP_TZ
		v.getFn = func(row uint64) (any, error) {
			ts := timestampFromTicks(getPrimitive[int64](v.data, row), unit)
			ts.TZ = tz
			return ts, nil
		}
	case TYPE_INTERVAL:
		v.getFn = func(row uint64) (any, error) {
			i := getPrimitive[mapping.Interval](v.data, row)
			months, days, micros := mapping.IntervalMembers(&i)
			return Interval{Months: months, Days: days, Micros: micros}, nil
		}
	case TYPE_HUGEINT:
		v.getFn = func(row uint64) (any, error) {
			lower, upper := getHugeInt(v.data, row)
			return composeHugeInt(v.conv.bigMath, lower, upper)
		}
	case TYPE_UHUGEINT:
		v.getFn = func(row uint64) (any, error) {
			lower, upper := getHugeInt(v.data, row)
			return composeUHugeInt(v.conv.bigMath, lower, uint64(upper))
		}
	case TYPE_UUID:
		v.getFn = func(row uint64) (any, error) {
			lower, upper := getHugeInt(v.data, row)
			return hugeIntToUUID(lower, upper), nil
		}
	case TYPE_DECIMAL:
		v.getFn = v.getDecimal
	case TYPE_ENUM:
		v.getFn = v.getEnum
	case TYPE_SQLNULL:
		v.getFn = func(uint64) (any, error) { return nil, nil }
	case TYPE_LIST:
		v.getFn = v.getList
	case TYPE_MAP:
		v.getFn = v.getMap
	case TYPE_ARRAY:
		v.getFn = v.getArray
	case TYPE_STRUCT:
		v.getFn = v.getStruct
	case TYPE_UNION:
		v.getFn = v.getUnion
	default:
		return unsupportedTypeError(v.info.String())
	}
	return nil
}

// Type returns the logical type of the column.
func (v *Vector) Type() *TypeInfo {
	return v.info
}

// Value decodes one row. NULL decodes to nil.
func (v *Vector) Value(row uint64) (any, error) {
	if !isValid(v.mask, row) {
		return nil, nil
	}
	return v.getFn(row)
}

// Values yields the first n rows in order. Each iteration decodes the native
// buffer again. The sequence stops at the first error.
func (v *Vector) Values(n uint64) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		for row := uint64(0); row < n; row++ {
			val, err := v.Value(row)
			if !yield(val, err) || err != nil {
				return
			}
		}
	}
}

func getPrimitive[T any](data unsafe.Pointer, row uint64) T {
	var zero T
	return *(*T)(unsafe.Add(data, uintptr(row)*unsafe.Sizeof(zero)))
}

func initPrimitive[T any](v *Vector) {
	v.getFn = func(row uint64) (any, error) {
		return getPrimitive[T](v.data, row), nil
	}
}
