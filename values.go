package duckdb

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the date part of t in its own location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Time returns midnight of d in UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time is a time of day with microsecond precision.
type Time struct {
	Hour   int
	Minute int
	Second int
	Micros int
}

const microsPerDay = int64(24 * time.Hour / time.Microsecond)

// timeFromMicros splits micros since midnight into its fields. 24:00:00 is
// a valid TIME in the engine and is kept as such.
func timeFromMicros(micros int64) (Time, error) {
	if micros < 0 || micros > microsPerDay {
		return Time{}, newErrorf(ErrorKindInvalidTime, "time of day out of range: %d microseconds", micros)
	}
	t := Time{
		Hour:   int(micros / int64(time.Hour/time.Microsecond)),
		Minute: int(micros / int64(time.Minute/time.Microsecond) % 60),
		Second: int(micros / int64(time.Second/time.Microsecond) % 60),
		Micros: int(micros % int64(time.Second/time.Microsecond)),
	}
	return t, t.validate()
}

func (t Time) validate() error {
	if t.Hour == 24 && t.Minute == 0 && t.Second == 0 && t.Micros == 0 {
		return nil
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 ||
		t.Micros < 0 || t.Micros > 999999 {
		return newErrorf(ErrorKindInvalidTime, "invalid time of day %02d:%02d:%02d.%06d", t.Hour, t.Minute, t.Second, t.Micros)
	}
	return nil
}

// Duration returns the offset of t from midnight.
func (t Time) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second + time.Duration(t.Micros)*time.Microsecond
}

func (t Time) micros() int64 {
	return int64(t.Duration() / time.Microsecond)
}

func (t Time) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Micros != 0 {
		s += fmt.Sprintf(".%06d", t.Micros)
	}
	return s
}

// NewTime returns the time of day of t.
func NewTime(t time.Time) Time {
	return Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Micros: t.Nanosecond() / 1000}
}

// TimeTZ is a time of day with a UTC offset in seconds.
type TimeTZ struct {
	Time
	Offset int
}

func (t TimeTZ) String() string {
	sign := '+'
	off := t.Offset
	if off < 0 {
		sign, off = '-', -off
	}
	s := fmt.Sprintf("%s%c%02d", t.Time, sign, off/3600)
	if rem := off % 3600; rem != 0 {
		s += fmt.Sprintf(":%02d", rem/60)
	}
	return s
}

// TimestampUnit is the resolution a timestamp was stored with.
type TimestampUnit uint8

const (
	UnitSecond TimestampUnit = iota
	UnitMilli
	UnitMicro
	UnitNano
)

// Timestamp is a point in time split into a millisecond-truncated Base and a
// sub-millisecond remainder in Nanos (0 to 999999). Offset is the UTC offset
// in seconds of timezone-bearing values.
type Timestamp struct {
	Base   time.Time
	Nanos  int32
	Unit   TimestampUnit
	Offset int
	TZ     bool
}

// NewTimestamp splits t for storage at the given unit.
func NewTimestamp(t time.Time, unit TimestampUnit) Timestamp {
	t = t.UTC()
	rem := t.Nanosecond() % int(time.Millisecond)
	return Timestamp{Base: t.Add(-time.Duration(rem)), Nanos: int32(rem), Unit: unit}
}

// Time recombines the base and the remainder.
func (ts Timestamp) Time() time.Time {
	return ts.Base.Add(time.Duration(ts.Nanos))
}

func (ts Timestamp) String() string {
	return ts.Time().Format(time.RFC3339Nano)
}

// ticks returns ts in units of its own resolution since the epoch.
func (ts Timestamp) ticks() int64 {
	t := ts.Time()
	switch ts.Unit {
	case UnitSecond:
		return t.Unix()
	case UnitMilli:
		return t.UnixMilli()
	case UnitNano:
		return t.UnixNano()
	}
	return t.UnixMicro()
}

func floorDivMod(a, b int64) (int64, int64) {
	q, r := a/b, a%b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}

// timestampFromTicks decodes a physical int64 timestamp of the given unit.
func timestampFromTicks(ticks int64, unit TimestampUnit) Timestamp {
	ts := Timestamp{Unit: unit}
	switch unit {
	case UnitSecond:
		ts.Base = time.Unix(ticks, 0).UTC()
	case UnitMilli:
		ts.Base = time.UnixMilli(ticks).UTC()
	case UnitMicro:
		ms, us := floorDivMod(ticks, 1000)
		ts.Base = time.UnixMilli(ms).UTC()
		ts.Nanos = int32(us * 1000)
	case UnitNano:
		ms, ns := floorDivMod(ticks, int64(time.Millisecond))
		ts.Base = time.UnixMilli(ms).UTC()
		ts.Nanos = int32(ns)
	}
	return ts
}

func timestampUnit(t Type) TimestampUnit {
	switch t {
	case TYPE_TIMESTAMP_S:
		return UnitSecond
	case TYPE_TIMESTAMP_MS:
		return UnitMilli
	case TYPE_TIMESTAMP_NS:
		return UnitNano
	}
	return UnitMicro
}

// Interval is a (months, days, microseconds) triple. The parts are kept
// independent and never normalized into each other.
type Interval struct {
	Months int32 `json:"months"`
	Days   int32 `json:"days"`
	Micros int64 `json:"micros"`
}

// MapEntry is one key/value pair of a MAP value.
type MapEntry struct {
	Key   any
	Value any
}

// OrderedMap is a decoded MAP value. Entries keep the engine's order, and
// keys are neither deduplicated nor sorted.
type OrderedMap []MapEntry

// Get returns the value of the first entry whose key equals key.
func (m OrderedMap) Get(key any) (any, bool) {
	for _, e := range m {
		if reflect.DeepEqual(e.Key, key) {
			return e.Value, true
		}
	}
	return nil, false
}

// Scan implements sql.Scanner.
func (m *OrderedMap) Scan(v any) error {
	data, ok := v.(OrderedMap)
	if !ok {
		return fmt.Errorf("invalid type `%T` for scanning `OrderedMap`, expected `OrderedMap`", v)
	}
	*m = data
	return nil
}

// Union is a decoded UNION value: the selected member's name and value.
type Union struct {
	Tag   string
	Value any
}

// Decimal is an exact fixed-point value, used to append or bind a DECIMAL
// without going through float64.
type Decimal struct {
	Width uint8
	Scale uint8
	Value *big.Int
}

func (d Decimal) Float64() float64 {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.Scale)), nil)
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(d.Value), new(big.Float).SetInt(scale)).Float64()
	return f
}

func (d Decimal) String() string {
	if d.Value.Sign() == 0 {
		return "0"
	}
	sign, digits := "", d.Value.String()
	if d.Value.Sign() < 0 {
		sign, digits = "-", digits[1:]
	}
	scale := int(d.Scale)
	if scale == 0 {
		return sign + digits
	}
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	return sign + digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
}

// Composite scans STRUCT, LIST, and MAP values into a Go value of type T.
type Composite[T any] struct {
	t T
}

func (c Composite[T]) Get() T {
	return c.t
}

func (c *Composite[T]) Scan(v any) error {
	if m, ok := v.(OrderedMap); ok {
		plain := make(map[any]any, len(m))
		for _, e := range m {
			plain[e.Key] = e.Value
		}
		v = plain
	}
	return mapstructure.Decode(v, &c.t)
}
