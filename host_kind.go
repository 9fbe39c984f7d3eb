package duckdb

import (
	"database/sql/driver"
	"math"
	"math/big"
	"sort"
	"time"

	"github.com/google/uuid"
)

// hostKind is the closed set of Go value kinds the converter understands.
type hostKind uint8

const (
	kindOther hostKind = iota
	kindNull
	kindBool
	kindInt
	kindInt8
	kindInt16
	kindInt32
	kindInt64
	kindUint
	kindUint8
	kindUint16
	kindUint32
	kindUint64
	kindFloat32
	kindFloat64
	kindString
	kindBytes
	kindDate
	kindTime
	kindTimeTZ
	kindTimestamp
	kindGoTime
	kindDuration
	kindInterval
	kindUUID
	kindBigInt
	kindDecimal
	kindList
	kindStruct
	kindMap
	kindUnion
)

// kindOf resolves the kind of v once. Values implementing driver.Valuer are
// classified by the value they produce.
func kindOf(v any) hostKind {
	switch val := v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case int:
		return kindInt
	case int8:
		return kindInt8
	case int16:
		return kindInt16
	case int32:
		return kindInt32
	case int64:
		return kindInt64
	case uint:
		return kindUint
	case uint8:
		return kindUint8
	case uint16:
		return kindUint16
	case uint32:
		return kindUint32
	case uint64:
		return kindUint64
	case float32:
		return kindFloat32
	case float64:
		return kindFloat64
	case string:
		return kindString
	case []byte:
		return kindBytes
	case Date:
		return kindDate
	case Time:
		return kindTime
	case TimeTZ:
		return kindTimeTZ
	case Timestamp:
		return kindTimestamp
	case time.Time:
		return kindGoTime
	case time.Duration:
		return kindDuration
	case Interval:
		return kindInterval
	case uuid.UUID:
		return kindUUID
	case *big.Int:
		if val == nil {
			return kindNull
		}
		return kindBigInt
	case Decimal:
		return kindDecimal
	case []any:
		return kindList
	case map[string]any:
		return kindStruct
	case OrderedMap:
		return kindMap
	case Union:
		return kindUnion
	}
	return kindOther
}

func (k hostKind) isInteger() bool {
	return k >= kindInt && k <= kindUint64
}

// inferTypeInfo derives a target type from a value when none is declared.
// With narrow set, integers that fit in 32 bits infer INTEGER instead of BIGINT.
func inferTypeInfo(v any, narrow bool) (*TypeInfo, error) {
	k := kindOf(v)
	switch k {
	case kindNull:
		return mustTypeInfo(TYPE_SQLNULL), nil
	case kindBool:
		return mustTypeInfo(TYPE_BOOLEAN), nil
	case kindInt, kindInt64:
		if narrow {
			if i, _ := toInt64(v); i >= math.MinInt32 && i <= math.MaxInt32 {
				return mustTypeInfo(TYPE_INTEGER), nil
			}
		}
		return mustTypeInfo(TYPE_BIGINT), nil
	case kindInt8:
		return mustTypeInfo(TYPE_TINYINT), nil
	case kindInt16:
		return mustTypeInfo(TYPE_SMALLINT), nil
	case kindInt32:
		return mustTypeInfo(TYPE_INTEGER), nil
	case kindUint8:
		return mustTypeInfo(TYPE_UTINYINT), nil
	case kindUint16:
		return mustTypeInfo(TYPE_USMALLINT), nil
	case kindUint32:
		return mustTypeInfo(TYPE_UINTEGER), nil
	case kindUint, kindUint64:
		return mustTypeInfo(TYPE_UBIGINT), nil
	case kindFloat32:
		return mustTypeInfo(TYPE_FLOAT), nil
	case kindFloat64:
		return mustTypeInfo(TYPE_DOUBLE), nil
	case kindString:
		return mustTypeInfo(TYPE_VARCHAR), nil
	case kindBytes:
		return mustTypeInfo(TYPE_BLOB), nil
	case kindDate:
		return mustTypeInfo(TYPE_DATE), nil
	case kindTime:
		return mustTypeInfo(TYPE_TIME), nil
	case kindTimeTZ:
		return mustTypeInfo(TYPE_TIME_TZ), nil
	case kindTimestamp:
		return timestampInfo(v.(Timestamp)), nil
	case kindGoTime:
		return mustTypeInfo(TYPE_TIMESTAMP), nil
	case kindDuration, kindInterval:
		return mustTypeInfo(TYPE_INTERVAL), nil
	case kindUUID:
		return mustTypeInfo(TYPE_UUID), nil
	case kindBigInt:
		return mustTypeInfo(TYPE_HUGEINT), nil
	case kindDecimal:
		d := v.(Decimal)
		return NewDecimalInfo(d.Width, d.Scale)
	case kindList:
		return inferListInfo(v.([]any), narrow)
	case kindStruct:
		return inferStructInfo(v.(map[string]any), narrow)
	case kindMap:
		return inferMapInfo(v.(OrderedMap), narrow)
	}

	if valuer, ok := v.(driver.Valuer); ok {
		inner, err := valuer.Value()
		if err != nil {
			return nil, err
		}
		return inferTypeInfo(inner, narrow)
	}
	return nil, unsupportedTypeError(typeOfValue(v))
}

func timestampInfo(ts Timestamp) *TypeInfo {
	if ts.TZ {
		return mustTypeInfo(TYPE_TIMESTAMP_TZ)
	}
	switch ts.Unit {
	case UnitSecond:
		return mustTypeInfo(TYPE_TIMESTAMP_S)
	case UnitMilli:
		return mustTypeInfo(TYPE_TIMESTAMP_MS)
	case UnitNano:
		return mustTypeInfo(TYPE_TIMESTAMP_NS)
	}
	return mustTypeInfo(TYPE_TIMESTAMP)
}

// firstNonNull infers from the first non-nil element. An all-null
// collection defaults to VARCHAR.
func firstNonNull(values []any, narrow bool) (*TypeInfo, error) {
	for _, v := range values {
		if v != nil {
			return inferTypeInfo(v, narrow)
		}
	}
	return mustTypeInfo(TYPE_VARCHAR), nil
}

func inferListInfo(list []any, narrow bool) (*TypeInfo, error) {
	child, err := firstNonNull(list, narrow)
	if err != nil {
		return nil, err
	}
	return NewListInfo(child), nil
}

func inferStructInfo(m map[string]any, narrow bool) (*TypeInfo, error) {
	if len(m) == 0 {
		return nil, unsupportedTypeError("empty STRUCT")
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]StructEntry, len(names))
	for i, name := range names {
		child, err := firstNonNull([]any{m[name]}, narrow)
		if err != nil {
			return nil, err
		}
		entries[i] = StructEntry{Name: name, Info: child}
	}
	return NewStructInfo(entries[0], entries[1:]...)
}

func inferMapInfo(m OrderedMap, narrow bool) (*TypeInfo, error) {
	keys := make([]any, len(m))
	values := make([]any, len(m))
	for i, e := range m {
		keys[i], values[i] = e.Key, e.Value
	}
	key, err := firstNonNull(keys, narrow)
	if err != nil {
		return nil, err
	}
	value, err := firstNonNull(values, narrow)
	if err != nil {
		return nil, err
	}
	return NewMapInfo(key, value), nil
}
