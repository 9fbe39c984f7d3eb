package duckdb

import (
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"

	"github.com/columnar-dev/go-duckdb-marshal/internal/mapping"
)

// converter translates between Go values and the engine's physical values.
// cast maps a Go value onto the canonical Go form of a logical type, which
// both createValue (prepared statements) and the appender's column writers
// consume:
//
//	BOOLEAN..UBIGINT, FLOAT, DOUBLE  the Go type of the same width
//	VARCHAR                          string
//	BLOB, BIT                        []byte (BIT in its storage encoding)
//	DATE, TIME, TIME_TZ              mapping.Date, mapping.Time, mapping.TimeTZ
//	TIMESTAMP, TIMESTAMP_TZ          mapping.Timestamp
//	TIMESTAMP_S/MS/NS                int64 ticks
//	INTERVAL                         mapping.Interval
//	HUGEINT, UHUGEINT                mapping.HugeInt, mapping.UHugeInt
//	UUID                             uuid.UUID
//	DECIMAL                          *big.Int holding the unscaled value
//	ENUM                             uint32 dictionary index
//	LIST, ARRAY                      []any of canonical children
//	STRUCT                           []any in field order
//	MAP                              []MapEntry of canonical keys and values
//	UNION                            unionValue
type converter struct {
	bigMath BigIntMath
	// narrowInts infers INTEGER rather than BIGINT for untyped Go ints that fit.
	narrowInts bool
	decimals   *apd.Context
}

type unionValue struct {
	tag   uint8
	value any
}

func newConverter(bigMath BigIntMath, narrowInts bool) *converter {
	if bigMath == nil {
		bigMath = NoBigIntMath{}
	}
	return &converter{
		bigMath:    bigMath,
		narrowInts: narrowInts,
		decimals:   apd.BaseContext.WithPrecision(DefaultBigIntMathPrecision),
	}
}

func typeOfValue(v any) string {
	return fmt.Sprintf("%T", v)
}

// resolve picks the target type: the declared one when it is concrete,
// otherwise the type inferred from v.
func (c *converter) resolve(info *TypeInfo, v any) (*TypeInfo, error) {
	if info != nil && info.Type != TYPE_INVALID && info.Type != TYPE_ANY {
		return info, nil
	}
	return inferTypeInfo(v, c.narrowInts)
}

// cast converts v into the canonical form of info. nil stays nil.
func (c *converter) cast(info *TypeInfo, v any) (any, error) {
	k := kindOf(v)
	if valuer, ok := v.(driver.Valuer); ok && k == kindOther {
		inner, err := valuer.Value()
		if err != nil {
			return nil, err
		}
		v, k = inner, kindOf(inner)
	}
	if k == kindNull {
		return nil, nil
	}

	switch info.Type {
	case TYPE_BOOLEAN:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TYPE_TINYINT:
		return castSigned[int8](v, math.MinInt8, math.MaxInt8, info)
	case TYPE_SMALLINT:
		return castSigned[int16](v, math.MinInt16, math.MaxInt16, info)
	case TYPE_INTEGER:
		return castSigned[int32](v, math.MinInt32, math.MaxInt32, info)
	case TYPE_BIGINT:
		return castSigned[int64](v, math.MinInt64, math.MaxInt64, info)
	case TYPE_UTINYINT:
		return castUnsigned[uint8](v, math.MaxUint8, info)
	case TYPE_USMALLINT:
		return castUnsigned[uint16](v, math.MaxUint16, info)
	case TYPE_UINTEGER:
		return castUnsigned[uint32](v, math.MaxUint32, info)
	case TYPE_UBIGINT:
		return castUnsigned[uint64](v, math.MaxUint64, info)
	case TYPE_FLOAT:
		if f, ok := toFloat64(v); ok {
			return float32(f), nil
		}
	case TYPE_DOUBLE:
		if f, ok := toFloat64(v); ok {
			return f, nil
		}
	case TYPE_VARCHAR:
		switch val := v.(type) {
		case string:
			return val, nil
		case []byte:
			return string(val), nil
		}
	case TYPE_BLOB:
		switch val := v.(type) {
		case []byte:
			return val, nil
		case string:
			return []byte(val), nil
		}
	case TYPE_BIT:
		if s, ok := v.(string); ok {
			return encodeBit(s)
		}
	case TYPE_DATE:
		return castDate(v, info)
	case TYPE_TIME:
		return castTime(v, info)
	case TYPE_TIME_TZ:
		return castTimeTZ(v, info)
	case TYPE_TIMESTAMP, TYPE_TIMESTAMP_TZ:
		t, err := castGoTime(v, info)
		if err != nil {
			return nil, err
		}
		return timestampStruct(t), nil
	case TYPE_TIMESTAMP_S, TYPE_TIMESTAMP_MS, TYPE_TIMESTAMP_NS:
		t, err := castGoTime(v, info)
		if err != nil {
			return nil, err
		}
		return Timestamp{Base: t, Unit: timestampUnit(info.Type)}.ticks(), nil
	case TYPE_INTERVAL:
		switch val := v.(type) {
		case Interval:
			return mapping.NewInterval(val.Months, val.Days, val.Micros), nil
		case time.Duration:
			return mapping.NewInterval(0, 0, val.Microseconds()), nil
		}
	case TYPE_HUGEINT:
		i, err := toBigInt(v, info)
		if err != nil {
			return nil, err
		}
		return hugeIntFromBig(i)
	case TYPE_UHUGEINT:
		i, err := toBigInt(v, info)
		if err != nil {
			return nil, err
		}
		return uhugeIntFromBig(i)
	case TYPE_UUID:
		return castUUID(v, info)
	case TYPE_DECIMAL:
		return c.unscaled(v, info)
	case TYPE_ENUM:
		if s, ok := v.(string); ok {
			for i, name := range info.Dict {
				if name == s {
					return uint32(i), nil
				}
			}
			return nil, newErrorf(ErrorKindUnsupportedType, "%q is not a member of %s", s, info)
		}
	case TYPE_LIST:
		return c.castList(info.Children[0], v, -1, info)
	case TYPE_ARRAY:
		return c.castList(info.Children[0], v, int(info.Size), info)
	case TYPE_STRUCT:
		return c.castStruct(info, v)
	case TYPE_MAP:
		return c.castMap(info, v)
	case TYPE_UNION:
		return c.castUnion(info, v)
	case TYPE_SQLNULL:
		// Only nil converts to NULL, handled above.
	default:
		return nil, unsupportedTypeError(info.String())
	}
	return nil, castError(typeOfValue(v), info.String())
}

// castVia converts v to given and the result on to target, the way the
// engine casts a value of one type into a column of another. Values whose
// canonical form under given is not a plain Go value are converted to
// target directly once they were checked against given.
func (c *converter) castVia(given, target *TypeInfo, v any) (any, error) {
	boxed, err := c.cast(given, v)
	if err != nil {
		return nil, err
	}
	if given.String() == target.String() {
		return boxed, nil
	}

	host := v
	if plainValue(boxed) {
		host = boxed
	}
	val, err := c.cast(target, host)
	if err != nil && target.Type == TYPE_VARCHAR && plainValue(boxed) && boxed != nil {
		if b, ok := boxed.([]byte); ok {
			return string(b), nil
		}
		return fmt.Sprint(boxed), nil
	}
	return val, err
}

func plainValue(v any) bool {
	switch v.(type) {
	case nil, bool, string, []byte, float32, float64,
		int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint:
		return int64(val), uint64(val) <= math.MaxInt64
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		return int64(val), val <= math.MaxInt64
	case *big.Int:
		return val.Int64(), val.IsInt64()
	}
	return 0, false
}

func toUint64(v any) (uint64, bool) {
	switch val := v.(type) {
	case uint:
		return uint64(val), true
	case uint8:
		return uint64(val), true
	case uint16:
		return uint64(val), true
	case uint32:
		return uint64(val), true
	case uint64:
		return val, true
	case *big.Int:
		return val.Uint64(), val.IsUint64()
	}
	if i, ok := toInt64(v); ok && i >= 0 {
		return uint64(i), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float32:
		return float64(val), true
	case float64:
		return val, true
	}
	if kindOf(v).isInteger() {
		if i, ok := toInt64(v); ok {
			return float64(i), true
		}
		if u, ok := toUint64(v); ok {
			return float64(u), true
		}
	}
	return 0, false
}

func castSigned[T int8 | int16 | int32 | int64](v any, lo, hi int64, info *TypeInfo) (any, error) {
	if k := kindOf(v); !k.isInteger() && k != kindBigInt {
		return nil, castError(typeOfValue(v), info.String())
	}
	i, ok := toInt64(v)
	if !ok || i < lo || i > hi {
		return nil, newErrorf(ErrorKindUnsupportedType, "%v out of range for %s", v, info)
	}
	return T(i), nil
}

func castUnsigned[T uint8 | uint16 | uint32 | uint64](v any, hi uint64, info *TypeInfo) (any, error) {
	if k := kindOf(v); !k.isInteger() && k != kindBigInt {
		return nil, castError(typeOfValue(v), info.String())
	}
	u, ok := toUint64(v)
	if !ok || u > hi {
		return nil, newErrorf(ErrorKindUnsupportedType, "%v out of range for %s", v, info)
	}
	return T(u), nil
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05.999999"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	dateLayout,
}

func castDate(v any, info *TypeInfo) (any, error) {
	var d Date
	switch val := v.(type) {
	case Date:
		d = val
	case time.Time:
		d = NewDate(val)
	case Timestamp:
		d = NewDate(val.Time())
	case string:
		t, err := time.Parse(dateLayout, val)
		if err != nil {
			return nil, wrapError(ErrorKindUnsupportedType, castErrMsg, err)
		}
		d = NewDate(t)
	default:
		return nil, castError(typeOfValue(v), info.String())
	}
	return dateStruct(d), nil
}

func dateStruct(d Date) mapping.Date {
	return mapping.ToDate(mapping.NewDateStruct(int32(d.Year), int8(d.Month), int8(d.Day)))
}

func toHostTime(v any) (Time, bool, error) {
	switch val := v.(type) {
	case Time:
		return val, true, val.validate()
	case time.Time:
		return NewTime(val), true, nil
	case time.Duration:
		t, err := timeFromMicros(val.Microseconds())
		return t, true, err
	case string:
		t, err := time.Parse(timeLayout, val)
		if err != nil {
			return Time{}, true, wrapError(ErrorKindInvalidTime, "could not parse time of day", err)
		}
		return NewTime(t), true, nil
	}
	return Time{}, false, nil
}

func castTime(v any, info *TypeInfo) (any, error) {
	t, ok, err := toHostTime(v)
	if !ok {
		return nil, castError(typeOfValue(v), info.String())
	}
	if err != nil {
		return nil, err
	}
	return timeStruct(t), nil
}

func timeStruct(t Time) mapping.Time {
	return mapping.ToTime(mapping.NewTimeStruct(int8(t.Hour), int8(t.Minute), int8(t.Second), int32(t.Micros)))
}

func castTimeTZ(v any, info *TypeInfo) (any, error) {
	var tz TimeTZ
	switch val := v.(type) {
	case TimeTZ:
		if err := val.validate(); err != nil {
			return nil, err
		}
		tz = val
	case time.Time:
		_, offset := val.Zone()
		tz = TimeTZ{Time: NewTime(val), Offset: offset}
	default:
		t, ok, err := toHostTime(v)
		if !ok {
			return nil, castError(typeOfValue(v), info.String())
		}
		if err != nil {
			return nil, err
		}
		tz = TimeTZ{Time: t}
	}
	return mapping.CreateTimeTZ(tz.micros(), int32(tz.Offset)), nil
}

func castGoTime(v any, info *TypeInfo) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case Timestamp:
		return val.Time(), nil
	case Date:
		return val.Time(), nil
	case string:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t, nil
			}
		}
		return time.Time{}, newErrorf(ErrorKindUnsupportedType, "%s: cannot parse %q as %s", castErrMsg, val, info)
	}
	return time.Time{}, castError(typeOfValue(v), info.String())
}

// timestampStruct builds the microsecond timestamp from its date and time
// fields through the engine's own struct conversion.
func timestampStruct(t time.Time) mapping.Timestamp {
	t = t.UTC()
	date := mapping.NewDateStruct(int32(t.Year()), int8(t.Month()), int8(t.Day()))
	tm := mapping.NewTimeStruct(int8(t.Hour()), int8(t.Minute()), int8(t.Second()), int32(t.Nanosecond()/1000))
	return mapping.ToTimestamp(mapping.NewTimestampStruct(date, tm))
}

func toBigInt(v any, info *TypeInfo) (*big.Int, error) {
	switch val := v.(type) {
	case *big.Int:
		return val, nil
	case big.Int:
		return &val, nil
	case string:
		i, ok := new(big.Int).SetString(val, 10)
		if !ok {
			return nil, newErrorf(ErrorKindUnsupportedType, "%s: cannot parse %q as %s", castErrMsg, val, info)
		}
		return i, nil
	}
	if i, ok := toInt64(v); ok {
		return big.NewInt(i), nil
	}
	if u, ok := toUint64(v); ok {
		return new(big.Int).SetUint64(u), nil
	}
	return nil, castError(typeOfValue(v), info.String())
}

var (
	bigTwo64  = new(big.Int).Lsh(big.NewInt(1), 64)
	bigMaxU64 = new(big.Int).SetUint64(math.MaxUint64)
)

func hugeIntFromBig(i *big.Int) (mapping.HugeInt, error) {
	q, r := new(big.Int).DivMod(i, bigTwo64, new(big.Int))
	if !q.IsInt64() {
		return mapping.HugeInt{}, newErrorf(ErrorKindUnsupportedType, "%s is out of range for HUGEINT", i)
	}
	return mapping.NewHugeInt(r.Uint64(), q.Int64()), nil
}

func uhugeIntFromBig(i *big.Int) (mapping.UHugeInt, error) {
	if i.Sign() < 0 {
		return mapping.UHugeInt{}, newErrorf(ErrorKindUnsupportedType, "%s is out of range for UHUGEINT", i)
	}
	q, r := new(big.Int).DivMod(i, bigTwo64, new(big.Int))
	if q.Cmp(bigMaxU64) > 0 {
		return mapping.UHugeInt{}, newErrorf(ErrorKindUnsupportedType, "%s is out of range for UHUGEINT", i)
	}
	return mapping.NewUHugeInt(r.Uint64(), q.Uint64()), nil
}

func castUUID(v any, info *TypeInfo) (any, error) {
	switch val := v.(type) {
	case uuid.UUID:
		return val, nil
	case [16]byte:
		return uuid.UUID(val), nil
	case []byte:
		id, err := uuid.FromBytes(val)
		if err != nil {
			return nil, wrapError(ErrorKindUnsupportedType, castErrMsg, err)
		}
		return id, nil
	case string:
		id, err := uuid.Parse(val)
		if err != nil {
			return nil, wrapError(ErrorKindUnsupportedType, castErrMsg, err)
		}
		return id, nil
	}
	return nil, castError(typeOfValue(v), info.String())
}

// uuidToHugeInt flips the sign bit, so that the signed ordering of the
// stored hugeint matches the byte ordering of the UUID.
func uuidToHugeInt(id uuid.UUID) mapping.HugeInt {
	upper := binary.BigEndian.Uint64(id[:8]) ^ (1 << 63)
	return mapping.NewHugeInt(binary.BigEndian.Uint64(id[8:]), int64(upper))
}

func hugeIntToUUID(lower uint64, upper int64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[:8], uint64(upper)^(1<<63))
	binary.BigEndian.PutUint64(id[8:], lower)
	return id
}

// unscaled rounds v to the scale of info and returns its unscaled integer.
func (c *converter) unscaled(v any, info *TypeInfo) (*big.Int, error) {
	var x *apd.Decimal
	switch val := v.(type) {
	case Decimal:
		x = apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(val.Value), -int32(val.Scale))
	case float32, float64:
		f, _ := toFloat64(val)
		d, err := new(apd.Decimal).SetFloat64(f)
		if err != nil {
			return nil, wrapError(ErrorKindUnsupportedType, castErrMsg, err)
		}
		x = d
	case string:
		d, _, err := apd.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return nil, wrapError(ErrorKindUnsupportedType, castErrMsg, err)
		}
		x = d
	default:
		i, err := toBigInt(v, info)
		if err != nil {
			return nil, err
		}
		x = apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(i), 0)
	}

	var q apd.Decimal
	if _, err := c.decimals.Quantize(&q, x, -int32(info.Scale)); err != nil {
		return nil, wrapError(ErrorKindUnsupportedType, castErrMsg, err)
	}
	unscaled := q.Coeff.MathBigInt()
	if q.Negative {
		unscaled.Neg(unscaled)
	}

	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(info.Width)), nil)
	if new(big.Int).Abs(unscaled).Cmp(limit) >= 0 {
		return nil, newErrorf(ErrorKindUnsupportedType, "%v out of range for %s", v, info)
	}
	return unscaled, nil
}

// sliceOf views any Go slice or array as []any.
func sliceOf(v any) ([]any, bool) {
	if list, ok := v.([]any); ok {
		return list, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}

func (c *converter) castList(child *TypeInfo, v any, size int, info *TypeInfo) (any, error) {
	if _, isBytes := v.([]byte); isBytes && child.Type != TYPE_UTINYINT {
		return nil, castError(typeOfValue(v), info.String())
	}
	list, ok := sliceOf(v)
	if !ok {
		return nil, castError(typeOfValue(v), info.String())
	}
	if size >= 0 && len(list) != size {
		return nil, newErrorf(ErrorKindUnsupportedType, "%s expects %d elements, got %d", info, size, len(list))
	}
	out := make([]any, len(list))
	for i, elem := range list {
		val, err := c.cast(child, elem)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// structFields accepts map[string]any or any Go struct, which is decoded
// into a map with mapstructure.
func structFields(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	m := map[string]any{}
	if err := mapstructure.Decode(v, &m); err != nil {
		return nil, false
	}
	return m, true
}

func (c *converter) castStruct(info *TypeInfo, v any) (any, error) {
	fields, ok := structFields(v)
	if !ok {
		return nil, castError(typeOfValue(v), info.String())
	}
	for name := range fields {
		if !containsName(info.Names, name) {
			return nil, newErrorf(ErrorKindUnsupportedType, "%s has no field %q", info, name)
		}
	}
	out := make([]any, len(info.Children))
	for i, name := range info.Names {
		val, err := c.cast(info.Children[i], fields[name])
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func mapEntries(v any) (OrderedMap, bool) {
	switch val := v.(type) {
	case OrderedMap:
		return val, true
	case []MapEntry:
		return val, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	entries := make(OrderedMap, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, MapEntry{Key: iter.Key().Interface(), Value: iter.Value().Interface()})
	}
	return entries, true
}

func (c *converter) castMap(info *TypeInfo, v any) (any, error) {
	entries, ok := mapEntries(v)
	if !ok {
		return nil, castError(typeOfValue(v), info.String())
	}
	out := make([]MapEntry, len(entries))
	for i, e := range entries {
		if e.Key == nil {
			return nil, newErrorf(ErrorKindUnsupportedType, "%s keys must not be NULL", info)
		}
		key, err := c.cast(info.Children[0], e.Key)
		if err != nil {
			return nil, err
		}
		value, err := c.cast(info.Children[1], e.Value)
		if err != nil {
			return nil, err
		}
		out[i] = MapEntry{Key: key, Value: value}
	}
	return out, nil
}

func (c *converter) castUnion(info *TypeInfo, v any) (any, error) {
	u, ok := v.(Union)
	if !ok {
		return nil, castError(typeOfValue(v), info.String())
	}
	for i, name := range info.Names {
		if name != u.Tag {
			continue
		}
		val, err := c.cast(info.Children[i], u.Value)
		if err != nil {
			return nil, err
		}
		return unionValue{tag: uint8(i), value: val}, nil
	}
	return nil, newErrorf(ErrorKindUnsupportedType, "%s has no member %q", info, u.Tag)
}

// createValue boxes v as a native value of type info, inferring the type
// when info is nil. The caller must destroy the returned value.
func (c *converter) createValue(info *TypeInfo, v any) (mapping.Value, error) {
	info, err := c.resolve(info, v)
	if err != nil {
		return mapping.Value{}, err
	}
	val, err := c.cast(info, v)
	if err != nil {
		return mapping.Value{}, err
	}
	return c.createCanonical(info, val)
}

func (c *converter) createCanonical(info *TypeInfo, val any) (mapping.Value, error) {
	if val == nil {
		return mapping.CreateNullValue(), nil
	}

	switch info.Type {
	case TYPE_BOOLEAN:
		return mapping.CreateBool(val.(bool)), nil
	case TYPE_TINYINT:
		return mapping.CreateInt8(val.(int8)), nil
	case TYPE_SMALLINT:
		return mapping.CreateInt16(val.(int16)), nil
	case TYPE_INTEGER:
		return mapping.CreateInt32(val.(int32)), nil
	case TYPE_BIGINT:
		return mapping.CreateInt64(val.(int64)), nil
	case TYPE_UTINYINT:
		return mapping.CreateUInt8(val.(uint8)), nil
	case TYPE_USMALLINT:
		return mapping.CreateUInt16(val.(uint16)), nil
	case TYPE_UINTEGER:
		return mapping.CreateUInt32(val.(uint32)), nil
	case TYPE_UBIGINT:
		return mapping.CreateUInt64(val.(uint64)), nil
	case TYPE_FLOAT:
		return mapping.CreateFloat(val.(float32)), nil
	case TYPE_DOUBLE:
		return mapping.CreateDouble(val.(float64)), nil
	case TYPE_VARCHAR:
		return mapping.CreateVarchar(val.(string)), nil
	case TYPE_BLOB:
		return mapping.CreateBlob(val.([]byte)), nil
	case TYPE_BIT:
		// Bound as text and cast by the engine.
		return mapping.CreateVarchar(decodeBit(val.([]byte))), nil
	case TYPE_DATE:
		return mapping.CreateDate(val.(mapping.Date)), nil
	case TYPE_TIME:
		return mapping.CreateTime(val.(mapping.Time)), nil
	case TYPE_TIME_TZ:
		return mapping.CreateTimeTZValue(val.(mapping.TimeTZ)), nil
	case TYPE_TIMESTAMP:
		return mapping.CreateTimestamp(val.(mapping.Timestamp)), nil
	case TYPE_TIMESTAMP_TZ:
		return mapping.CreateTimestampTZ(val.(mapping.Timestamp)), nil
	case TYPE_TIMESTAMP_S:
		return mapping.CreateTimestampS(mapping.NewTimestampS(val.(int64))), nil
	case TYPE_TIMESTAMP_MS:
		return mapping.CreateTimestampMS(mapping.NewTimestampMS(val.(int64))), nil
	case TYPE_TIMESTAMP_NS:
		return mapping.CreateTimestampNS(mapping.NewTimestampNS(val.(int64))), nil
	case TYPE_INTERVAL:
		return mapping.CreateInterval(val.(mapping.Interval)), nil
	case TYPE_HUGEINT:
		return mapping.CreateHugeInt(val.(mapping.HugeInt)), nil
	case TYPE_UHUGEINT:
		return mapping.CreateUHugeInt(val.(mapping.UHugeInt)), nil
	case TYPE_UUID:
		id := val.(uuid.UUID)
		return mapping.CreateUUID(mapping.NewUHugeInt(binary.BigEndian.Uint64(id[8:]), binary.BigEndian.Uint64(id[:8]))), nil
	case TYPE_DECIMAL:
		hi, err := hugeIntFromBig(val.(*big.Int))
		if err != nil {
			return mapping.Value{}, err
		}
		return mapping.CreateDecimal(mapping.NewDecimal(info.Width, info.Scale, hi)), nil
	case TYPE_ENUM, TYPE_LIST, TYPE_ARRAY, TYPE_STRUCT, TYPE_MAP, TYPE_UNION:
		return c.createNested(info, val)
	}
	return mapping.Value{}, unsupportedTypeError(info.String())
}

func (c *converter) createNested(info *TypeInfo, val any) (mapping.Value, error) {
	lt := info.logicalType()
	defer mapping.DestroyLogicalType(&lt)

	switch info.Type {
	case TYPE_ENUM:
		return mapping.CreateEnumValue(lt, uint64(val.(uint32))), nil

	case TYPE_LIST, TYPE_ARRAY, TYPE_STRUCT:
		list := val.([]any)
		values := make([]mapping.Value, 0, len(list))
		defer func() { destroyValues(values) }()
		for i, elem := range list {
			child := info.Children[0]
			if info.Type == TYPE_STRUCT {
				child = info.Children[i]
			}
			v, err := c.createCanonical(child, elem)
			if err != nil {
				return mapping.Value{}, err
			}
			values = append(values, v)
		}
		switch info.Type {
		case TYPE_LIST:
			return mapping.CreateListValue(lt, values), nil
		case TYPE_ARRAY:
			return mapping.CreateArrayValue(lt, values), nil
		}
		return mapping.CreateStructValue(lt, values), nil

	case TYPE_MAP:
		entries := val.([]MapEntry)
		keys := make([]mapping.Value, 0, len(entries))
		values := make([]mapping.Value, 0, len(entries))
		defer func() {
			destroyValues(keys)
			destroyValues(values)
		}()
		for _, e := range entries {
			k, err := c.createCanonical(info.Children[0], e.Key)
			if err != nil {
				return mapping.Value{}, err
			}
			keys = append(keys, k)
			v, err := c.createCanonical(info.Children[1], e.Value)
			if err != nil {
				return mapping.Value{}, err
			}
			values = append(values, v)
		}
		return mapping.CreateMapValue(lt, keys, values), nil

	case TYPE_UNION:
		u := val.(unionValue)
		member, err := c.createCanonical(info.Children[u.tag], u.value)
		if err != nil {
			return mapping.Value{}, err
		}
		defer mapping.DestroyValue(&member)
		return mapping.CreateUnionValue(lt, mapping.IdxT(u.tag), member), nil
	}
	return mapping.Value{}, unsupportedTypeError(info.String())
}

func destroyValues(values []mapping.Value) {
	for i := range values {
		mapping.DestroyValue(&values[i])
	}
}

// encodeBit packs a string of '0' and '1' into the BIT storage layout: a
// padding count byte, then the bits most significant first, left-padded
// with ones.
func encodeBit(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, newError(ErrorKindUnsupportedType, "BIT value must not be empty")
	}
	padding := (8 - len(s)%8) % 8
	out := make([]byte, 1+(len(s)+padding)/8)
	out[0] = byte(padding)
	for i := 0; i < padding; i++ {
		out[1] |= 1 << (7 - i)
	}
	for i, ch := range s {
		pos := i + padding
		switch ch {
		case '1':
			out[1+pos/8] |= 1 << (7 - pos%8)
		case '0':
		default:
			return nil, newErrorf(ErrorKindUnsupportedType, "invalid BIT character %q", ch)
		}
	}
	return out, nil
}

// decodeBit is the inverse of encodeBit.
func decodeBit(b []byte) string {
	if len(b) < 1 {
		return ""
	}
	padding := int(b[0])
	var sb strings.Builder
	for pos := padding; pos < (len(b)-1)*8; pos++ {
		if b[1+pos/8]&(1<<(7-pos%8)) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
