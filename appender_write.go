package duckdb

import (
	"math/big"
	"unsafe"

	"github.com/google/uuid"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// columnWriter writes canonical values (see converter) into one staged
// vector. Children mirror the nesting of the type.
type columnWriter struct {
	info *TypeInfo
	phys Physical
	vec  mapping.Vector
	data unsafe.Pointer

	// setFn writes a non-nil canonical value.
	setFn func(w *columnWriter, row uint64, val any) error

	children []*columnWriter
}

func newColumnWriter(vec mapping.Vector, info *TypeInfo) (*columnWriter, error) {
	w := &columnWriter{
		info: info,
		phys: physicalOf(info),
		vec:  vec,
		data: mapping.VectorGetData(vec),
	}

	var err error
	switch info.Type {
	case TYPE_LIST:
		err = w.addChild(mapping.ListVectorGetChild(vec), info.Children[0])
	case TYPE_MAP:
		err = w.addChild(mapping.ListVectorGetChild(vec), mapEntryInfo(info))
	case TYPE_ARRAY:
		err = w.addChild(mapping.ArrayVectorGetChild(vec), info.Children[0])
	case TYPE_STRUCT:
		for i, child := range info.Children {
			if err = w.addChild(mapping.StructVectorGetChild(vec, mapping.IdxT(i)), child); err != nil {
				break
			}
		}
	case TYPE_UNION:
		if err = w.addChild(mapping.StructVectorGetChild(vec, 0), mustTypeInfo(TYPE_UTINYINT)); err != nil {
			break
		}
		for i, child := range info.Children {
			if err = w.addChild(mapping.StructVectorGetChild(vec, mapping.IdxT(i+1)), child); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}
	return w, w.init()
}

func (w *columnWriter) addChild(vec mapping.Vector, info *TypeInfo) error {
	child, err := newColumnWriter(vec, info)
	if err != nil {
		return err
	}
	w.children = append(w.children, child)
	return nil
}

// refresh reloads data pointers after the engine reallocated buffers, which
// happens when a list child grows and when the chunk is reset.
func (w *columnWriter) refresh() {
	w.data = mapping.VectorGetData(w.vec)
	for _, child := range w.children {
		child.refresh()
	}
}

func (w *columnWriter) init() error {
	switch w.info.Type {
	case TYPE_BOOLEAN:
		w.setFn = setPrimitive[bool]
	case TYPE_TINYINT:
		w.setFn = setPrimitive[int8]
	case TYPE_SMALLINT:
		w.setFn = setPrimitive[int16]
	case TYPE_INTEGER:
		w.setFn = setPrimitive[int32]
	case TYPE_BIGINT, TYPE_TIMESTAMP_S, TYPE_TIMESTAMP_MS, TYPE_TIMESTAMP_NS:
		w.setFn = setPrimitive[int64]
	case TYPE_UTINYINT:
		w.setFn = setPrimitive[uint8]
	case TYPE_USMALLINT:
		w.setFn = setPrimitive[uint16]
	case TYPE_UINTEGER:
		w.setFn = setPrimitive[uint32]
	case TYPE_UBIGINT:
		w.setFn = setPrimitive[uint64]
	case TYPE_FLOAT:
		w.setFn = setPrimitive[float32]
	case TYPE_DOUBLE:
		w.setFn = setPrimitive[float64]
	case TYPE_DATE:
		w.setFn = setPrimitive[mapping.Date]
	case TYPE_TIME:
		w.setFn = setPrimitive[mapping.Time]
	case TYPE_TIME_TZ:
		w.setFn = setPrimitive[mapping.TimeTZ]
	case TYPE_TIMESTAMP, TYPE_TIMESTAMP_TZ:
		w.setFn = setPrimitive[mapping.Timestamp]
	case TYPE_INTERVAL:
		w.setFn = setPrimitive[mapping.Interval]
	case TYPE_HUGEINT:
		w.setFn = setPrimitive[mapping.HugeInt]
	case TYPE_UHUGEINT:
		w.setFn = setPrimitive[mapping.UHugeInt]
	case TYPE_VARCHAR:
		w.setFn = func(w *columnWriter, row uint64, val any) error {
			mapping.VectorAssignStringElementLen(w.vec, mapping.IdxT(row), []byte(val.(string)))
			return nil
		}
	case TYPE_BLOB, TYPE_BIT:
		w.setFn = func(w *columnWriter, row uint64, val any) error {
			mapping.VectorAssignStringElementLen(w.vec, mapping.IdxT(row), val.([]byte))
			return nil
		}
	case TYPE_UUID:
		w.setFn = func(w *columnWriter, row uint64, val any) error {
			return setPrimitive[mapping.HugeInt](w, row, uuidToHugeInt(val.(uuid.UUID)))
		}
	case TYPE_DECIMAL:
		w.setFn = (*columnWriter).setDecimal
	case TYPE_ENUM:
		w.setFn = (*columnWriter).setEnum
	case TYPE_LIST:
		w.setFn = (*columnWriter).setList
	case TYPE_MAP:
		w.setFn = (*columnWriter).setMap
	case TYPE_ARRAY:
		w.setFn = (*columnWriter).setArray
	case TYPE_STRUCT:
		w.setFn = (*columnWriter).setStruct
	case TYPE_UNION:
		w.setFn = (*columnWriter).setUnion
	case TYPE_SQLNULL:
		w.setFn = func(*columnWriter, uint64, any) error {
			return newError(ErrorKindAppend, "a NULL column only accepts NULL")
		}
	default:
		return unsupportedTypeError(w.info.String())
	}
	return nil
}

// set writes val, which is either nil or in canonical form.
func (w *columnWriter) set(row uint64, val any) error {
	if val == nil {
		w.setNull(row)
		return nil
	}
	w.setValid(row)
	return w.setFn(w, row, val)
}

func (w *columnWriter) setNull(row uint64) {
	mapping.VectorEnsureValidityWritable(w.vec)
	mapping.ValiditySetRowInvalid(mapping.VectorGetValidity(w.vec), mapping.IdxT(row))

	switch w.info.Type {
	case TYPE_STRUCT, TYPE_UNION:
		for _, child := range w.children {
			child.setNull(row)
		}
	}
}

// setValid clears a NULL left behind by a discarded row in the same slot.
func (w *columnWriter) setValid(row uint64) {
	if mask := mapping.VectorGetValidity(w.vec); mask != nil {
		mapping.ValiditySetRowValid(mask, mapping.IdxT(row))
	}
}

func setPrimitive[T any](w *columnWriter, row uint64, val any) error {
	var zero T
	*(*T)(unsafe.Add(w.data, uintptr(row)*unsafe.Sizeof(zero))) = val.(T)
	return nil
}

func (w *columnWriter) setDecimal(row uint64, val any) error {
	v := val.(*big.Int)
	switch w.phys {
	case physInt16:
		return setPrimitive[int16](w, row, int16(v.Int64()))
	case physInt32:
		return setPrimitive[int32](w, row, int32(v.Int64()))
	case physInt64:
		return setPrimitive[int64](w, row, v.Int64())
	}
	hi, err := hugeIntFromBig(v)
	if err != nil {
		return err
	}
	return setPrimitive[mapping.HugeInt](w, row, hi)
}

func (w *columnWriter) setEnum(row uint64, val any) error {
	idx := val.(uint32)
	switch w.phys {
	case physUint8:
		return setPrimitive[uint8](w, row, uint8(idx))
	case physUint16:
		return setPrimitive[uint16](w, row, uint16(idx))
	}
	return setPrimitive[uint32](w, row, idx)
}

// reserve appends n slots to the list child and returns the offset of the first.
func (w *columnWriter) reserve(n uint64) (uint64, error) {
	offset := uint64(mapping.ListVectorGetSize(w.vec))
	size := mapping.IdxT(offset + n)
	if state := mapping.ListVectorReserve(w.vec, size); state == mapping.StateError {
		return 0, newErrorf(ErrorKindAppend, "could not reserve %d list entries", size)
	}
	if state := mapping.ListVectorSetSize(w.vec, size); state == mapping.StateError {
		return 0, newErrorf(ErrorKindAppend, "could not resize list to %d entries", size)
	}
	w.children[0].refresh()
	return offset, nil
}

func (w *columnWriter) setList(row uint64, val any) error {
	list := val.([]any)
	offset, err := w.reserve(uint64(len(list)))
	if err != nil {
		return err
	}
	if err := setPrimitive[mapping.ListEntry](w, row, mapping.NewListEntry(offset, uint64(len(list)))); err != nil {
		return err
	}
	child := w.children[0]
	for i, elem := range list {
		if err := child.set(offset+uint64(i), elem); err != nil {
			return err
		}
	}
	return nil
}

func (w *columnWriter) setMap(row uint64, val any) error {
	entries := val.([]MapEntry)
	offset, err := w.reserve(uint64(len(entries)))
	if err != nil {
		return err
	}
	if err := setPrimitive[mapping.ListEntry](w, row, mapping.NewListEntry(offset, uint64(len(entries)))); err != nil {
		return err
	}
	entry := w.children[0]
	keys, values := entry.children[0], entry.children[1]
	for i, e := range entries {
		slot := offset + uint64(i)
		entry.setValid(slot)
		if err := keys.set(slot, e.Key); err != nil {
			return err
		}
		if err := values.set(slot, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func (w *columnWriter) setArray(row uint64, val any) error {
	list := val.([]any)
	size := w.info.Size
	child := w.children[0]
	for i, elem := range list {
		if err := child.set(row*size+uint64(i), elem); err != nil {
			return err
		}
	}
	return nil
}

func (w *columnWriter) setStruct(row uint64, val any) error {
	fields := val.([]any)
	for i, child := range w.children {
		if err := child.set(row, fields[i]); err != nil {
			return err
		}
	}
	return nil
}

func (w *columnWriter) setUnion(row uint64, val any) error {
	u := val.(unionValue)
	if err := w.children[0].set(row, u.tag); err != nil {
		return err
	}
	for i, member := range w.children[1:] {
		if i == int(u.tag) {
			if err := member.set(row, u.value); err != nil {
				return err
			}
			continue
		}
		member.setNull(row)
	}
	return nil
}
