package duckdb

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ArrowSchema returns the Arrow schema records of the result set are built with.
func (rs *ResultSet) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(rs.infos))
	for i, info := range rs.infos {
		fields[i] = arrow.Field{Name: rs.names[i], Type: arrowType(info), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// NextRecord decodes the next chunk into an Arrow record. It returns nil,
// nil once the set is exhausted. The caller must release the record.
func (rs *ResultSet) NextRecord(alloc memory.Allocator) (arrow.Record, error) {
	chunk, err := rs.NextChunk()
	if err != nil || chunk == nil {
		return nil, err
	}
	defer chunk.Close()
	return chunk.ToArrow(alloc, rs.ArrowSchema())
}

// ToArrow copies the chunk into an Arrow record of the given schema.
func (c *DataChunk) ToArrow(alloc memory.Allocator, schema *arrow.Schema) (arrow.Record, error) {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	builder := array.NewRecordBuilder(alloc, schema)
	defer builder.Release()

	for col, vec := range c.columns {
		field := builder.Field(col)
		for val, err := range vec.Values(c.size) {
			if err != nil {
				return nil, columnError(err, col)
			}
			appendArrow(field, vec.info, val)
		}
	}
	return builder.NewRecord(), nil
}

func arrowType(info *TypeInfo) arrow.DataType {
	switch info.Type {
	case TYPE_BOOLEAN:
		return arrow.FixedWidthTypes.Boolean
	case TYPE_TINYINT:
		return arrow.PrimitiveTypes.Int8
	case TYPE_SMALLINT:
		return arrow.PrimitiveTypes.Int16
	case TYPE_INTEGER:
		return arrow.PrimitiveTypes.Int32
	case TYPE_BIGINT:
		return arrow.PrimitiveTypes.Int64
	case TYPE_UTINYINT:
		return arrow.PrimitiveTypes.Uint8
	case TYPE_USMALLINT:
		return arrow.PrimitiveTypes.Uint16
	case TYPE_UINTEGER:
		return arrow.PrimitiveTypes.Uint32
	case TYPE_FLOAT:
		return arrow.PrimitiveTypes.Float32
	case TYPE_DOUBLE, TYPE_DECIMAL:
		return arrow.PrimitiveTypes.Float64
	case TYPE_BLOB:
		return arrow.BinaryTypes.Binary
	case TYPE_DATE:
		return arrow.FixedWidthTypes.Date32
	case TYPE_TIMESTAMP_S:
		return arrow.FixedWidthTypes.Timestamp_s
	case TYPE_TIMESTAMP_MS:
		return arrow.FixedWidthTypes.Timestamp_ms
	case TYPE_TIMESTAMP:
		return arrow.FixedWidthTypes.Timestamp_us
	case TYPE_TIMESTAMP_NS:
		return arrow.FixedWidthTypes.Timestamp_ns
	case TYPE_TIMESTAMP_TZ:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	case TYPE_INTERVAL:
		return arrow.FixedWidthTypes.MonthDayNanoInterval
	case TYPE_LIST:
		return arrow.ListOf(arrowType(info.Children[0]))
	case TYPE_STRUCT:
		fields := make([]arrow.Field, len(info.Children))
		for i, child := range info.Children {
			fields[i] = arrow.Field{Name: info.Names[i], Type: arrowType(child), Nullable: true}
		}
		return arrow.StructOf(fields...)
	}
	return arrow.BinaryTypes.String
}

func appendArrow(builder array.Builder, info *TypeInfo, val any) {
	if val == nil {
		builder.AppendNull()
		return
	}

	switch b := builder.(type) {
	case *array.BooleanBuilder:
		b.Append(val.(bool))
	case *array.Int8Builder:
		b.Append(val.(int8))
	case *array.Int16Builder:
		b.Append(val.(int16))
	case *array.Int32Builder:
		b.Append(val.(int32))
	case *array.Int64Builder:
		b.Append(val.(int64))
	case *array.Uint8Builder:
		b.Append(val.(uint8))
	case *array.Uint16Builder:
		b.Append(val.(uint16))
	case *array.Uint32Builder:
		b.Append(val.(uint32))
	case *array.Float32Builder:
		b.Append(val.(float32))
	case *array.Float64Builder:
		b.Append(val.(float64))
	case *array.BinaryBuilder:
		b.Append(val.([]byte))
	case *array.Date32Builder:
		b.Append(arrow.Date32FromTime(val.(Date).Time()))
	case *array.TimestampBuilder:
		b.Append(arrow.Timestamp(val.(Timestamp).ticks()))
	case *array.MonthDayNanoIntervalBuilder:
		i := val.(Interval)
		b.Append(arrow.MonthDayNanoInterval{Months: i.Months, Days: i.Days, Nanoseconds: i.Micros * int64(time.Microsecond)})
	case *array.ListBuilder:
		b.Append(true)
		for _, elem := range val.([]any) {
			appendArrow(b.ValueBuilder(), info.Children[0], elem)
		}
	case *array.StructBuilder:
		b.Append(true)
		fields := val.(map[string]any)
		for i, name := range info.Names {
			appendArrow(b.FieldBuilder(i), info.Children[i], fields[name])
		}
	case *array.StringBuilder:
		b.Append(fmt.Sprint(val))
	default:
		builder.AppendNull()
	}
}
