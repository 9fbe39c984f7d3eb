package duckdb

import (
	"math"
	"strconv"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

func (v *Vector) getDecimal(row uint64) (any, error) {
	scale := math.Pow10(int(v.info.Scale))
	switch v.phys {
	case physInt16:
		return float64(getPrimitive[int16](v.data, row)) / scale, nil
	case physInt32:
		return float64(getPrimitive[int32](v.data, row)) / scale, nil
	case physInt64:
		return float64(getPrimitive[int64](v.data, row)) / scale, nil
	}

	lower, upper := getHugeInt(v.data, row)
	n, err := composeHugeInt(v.conv.bigMath, lower, upper)
	if err != nil {
		return nil, err
	}
	switch val := n.(type) {
	case int64:
		return float64(val) / scale, nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, wrapError(ErrorKindUnsupportedType, "could not convert DECIMAL", err)
		}
		return f / scale, nil
	}
	return nil, unsupportedTypeError(v.info.String())
}

func (v *Vector) listEntry(row uint64) (uint64, uint64) {
	entry := getPrimitive[mapping.ListEntry](v.data, row)
	return mapping.ListEntryMembers(&entry)
}

func (v *Vector) getList(row uint64) (any, error) {
	offset, length := v.listEntry(row)
	return v.children[0].slice(offset, length)
}

func (v *Vector) getArray(row uint64) (any, error) {
	size := v.info.Size
	return v.children[0].slice(row*size, size)
}

func (v *Vector) slice(offset, length uint64) ([]any, error) {
	out := make([]any, 0, length)
	for i := offset; i < offset+length; i++ {
		val, err := v.Value(i)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

func (v *Vector) getStruct(row uint64) (any, error) {
	out := make(map[string]any, len(v.children))
	for i, child := range v.children {
		val, err := child.Value(row)
		if err != nil {
			return nil, err
		}
		out[v.info.Names[i]] = val
	}
	return out, nil
}

// getMap keeps entries in storage order. Duplicate keys cannot occur in a
// valid MAP, so none are merged.
func (v *Vector) getMap(row uint64) (any, error) {
	offset, length := v.listEntry(row)
	entries := v.children[0]
	keys, values := entries.children[0], entries.children[1]

	out := make(OrderedMap, 0, length)
	for i := offset; i < offset+length; i++ {
		key, err := keys.Value(i)
		if err != nil {
			return nil, err
		}
		value, err := values.Value(i)
		if err != nil {
			return nil, err
		}
		out = append(out, MapEntry{Key: key, Value: value})
	}
	return out, nil
}

func (v *Vector) getUnion(row uint64) (any, error) {
	tag := getPrimitive[uint8](v.children[0].data, row)
	if int(tag) >= len(v.info.Names) {
		return nil, newErrorf(ErrorKindUnsupportedType, "UNION tag %d outside %s", tag, v.info)
	}
	val, err := v.children[int(tag)+1].Value(row)
	if err != nil {
		return nil, err
	}
	return Union{Tag: v.info.Names[tag], Value: val}, nil
}
